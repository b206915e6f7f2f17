package domain

import (
	"strings"

	"github.com/google/uuid"
)

// CostPending is the shipping_cost placeholder a package carries from
// creation until the pricing worker stores a computed value.
const CostPending = "not_calculated"

// Validation bounds for inbound package data.
const (
	MaxNameLength = 255
	MaxWeightKg   = 1000.0
	MaxPrice      = 10_000_000.0
)

// Represents a single shipment record owned by an anonymous browser session.
// ShippingCost is either CostPending or a fixed two-decimal string produced
// by the pricing worker.
type Package struct {
	ID           uuid.UUID
	Name         string
	Weight       float64
	Price        float64
	TypeID       int
	SessionID    uuid.UUID
	ShippingCost string
}

// Priced reports whether the shipping cost has been computed.
func (p *Package) Priced() bool {
	return p.ShippingCost != "" && p.ShippingCost != CostPending
}

// PackageType is immutable reference data seeded once at startup.
type PackageType struct {
	ID   int
	Name string
}

// ValidatePackageInput checks creation input against the domain bounds and
// returns a field -> message map, empty when the input is valid. The name is
// validated in trimmed form; callers should persist strings.TrimSpace(name).
func ValidatePackageInput(name string, weight, price float64, typeID int) map[string]string {
	problems := make(map[string]string)

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		problems["name"] = "name must not be empty"
	} else if len(trimmed) > MaxNameLength {
		problems["name"] = "name must not exceed 255 characters"
	}

	if weight <= 0 {
		problems["weight"] = "weight must be greater than 0"
	} else if weight > MaxWeightKg {
		problems["weight"] = "weight must not exceed 1000 kg"
	}

	if price <= 0 {
		problems["price"] = "price must be greater than 0"
	} else if price > MaxPrice {
		problems["price"] = "price must not exceed 10000000"
	}

	if typeID <= 0 {
		problems["type_id"] = "type_id must be a positive integer"
	}

	return problems
}
