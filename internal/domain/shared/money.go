package shared

import "github.com/shopspring/decimal"

// MoneyPlaces is the number of decimal places kept for stored amounts
const MoneyPlaces = 2

// RoundMoney rounds an amount to MoneyPlaces, half away from zero
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// HasAtMostPlaces reports whether d can be represented with the given number
// of decimal places without loss
func HasAtMostPlaces(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Round(places))
}
