package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShippingCost(t *testing.T) {
	cases := []struct {
		name   string
		weight float64
		price  float64
		rate   float64
		want   string
	}{
		{"phone at rate 100", 0.2, 90000, 100, "90010.00"},
		{"minimal values", 0.01, 0.01, 1, "0.01"},
		{"weight only component", 2, 0, 80, "80.00"},
		{"price only component", 0, 500, 80, "400.00"},
		{"fractional rounding", 1, 1, 77.777, "39.67"},
		{"zero rate", 5, 100, 0, "0.00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ShippingCost(tc.weight, tc.price, tc.rate))
		})
	}
}

func TestPackagePriced(t *testing.T) {
	p := &Package{ShippingCost: CostPending}
	assert.False(t, p.Priced())

	p.ShippingCost = ""
	assert.False(t, p.Priced())

	p.ShippingCost = "90010.00"
	assert.True(t, p.Priced())
}

func TestValidatePackageInput(t *testing.T) {
	t.Run("valid input", func(t *testing.T) {
		problems := ValidatePackageInput("Phone", 0.2, 90000, 1)
		assert.Empty(t, problems)
	})

	t.Run("name surrounded by spaces is valid", func(t *testing.T) {
		problems := ValidatePackageInput("  Phone  ", 1, 1, 1)
		assert.Empty(t, problems)
	})

	t.Run("all fields invalid", func(t *testing.T) {
		problems := ValidatePackageInput("   ", 0, -5, 0)
		assert.Len(t, problems, 4)
		assert.Contains(t, problems, "name")
		assert.Contains(t, problems, "weight")
		assert.Contains(t, problems, "price")
		assert.Contains(t, problems, "type_id")
	})

	t.Run("upper bounds", func(t *testing.T) {
		assert.Empty(t, ValidatePackageInput("x", MaxWeightKg, MaxPrice, 1))

		problems := ValidatePackageInput("x", MaxWeightKg+0.1, MaxPrice+1, 1)
		assert.Contains(t, problems, "weight")
		assert.Contains(t, problems, "price")
	})
}
