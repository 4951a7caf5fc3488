package models

import (
	"errors"

	"github.com/shopspring/decimal"
)

var errNegativeAmount = errors.New("amount must not be negative")

func init() {
	// Prices are rendered as JSON numbers, e.g. 100.5 rather than "100.5"
	decimal.MarshalJSONWithoutQuotes = true
}

// ParseMoney parses a non-negative decimal amount
func ParseMoney(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, errNegativeAmount
	}
	return d, nil
}
