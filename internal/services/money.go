package services

import "github.com/shopspring/decimal"

// Amounts are stored as NUMERIC(10,2).
const (
	moneyScale         = 2
	moneyIntegerDigits = 8
)

var moneyLimit = decimal.New(1, moneyIntegerDigits)

// validateMoney checks that v is a positive amount the store can hold
// without rounding.
func validateMoney(field string, v decimal.Decimal) error {
	if !v.IsPositive() {
		return NewValidationError("%s must be greater than zero", field)
	}
	if !v.Equal(v.Truncate(moneyScale)) {
		return NewValidationError("%s must have at most %d decimal places", field, moneyScale)
	}
	if v.GreaterThanOrEqual(moneyLimit) {
		return NewValidationError("%s must be less than %s", field, moneyLimit.String())
	}
	return nil
}
