package asmm

import "math"

// ReservationPrice returns s - q*gamma*variance*horizon.
func ReservationPrice(mid float64, inventory int64, gamma, variance, horizon float64) float64 {
	return mid - float64(inventory)*gamma*variance*horizon
}

// OptimalSpread returns the full bid/ask width
// gamma*variance*horizon + (2/gamma)*ln(1 + gamma/k).
func OptimalSpread(gamma, k, variance, horizon float64) float64 {
	return gamma*variance*horizon + (2/gamma)*math.Log(1+gamma/k)
}

// QuantizeUp rounds a price in whole ticks up to the next integer tick and
// converts it to minor units. Both sides of the quote round up.
func QuantizeUp(price float64, tickSize int64) int64 {
	return int64(math.Ceil(price)) * tickSize
}
