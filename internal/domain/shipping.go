package domain

import "strconv"

// ShippingCost prices a shipment: half the weight in kilograms plus one
// percent of the declared price, converted at the given USD/RUB rate.
// The result is rendered with exactly two decimal places.
func ShippingCost(weight, price, rate float64) string {
	cost := ((weight * 0.5) + (price * 0.01)) * rate
	return strconv.FormatFloat(cost, 'f', 2, 64)
}
