package utils

import "math"

// RoundFloat rounds val to the given number of decimal places.
func RoundFloat(val float64, precision int) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

// RoundMoney rounds a currency amount to two decimals. Wallet balances and
// transaction amounts go through this before being persisted.
func RoundMoney(val float64) float64 {
	return RoundFloat(val, 2)
}
