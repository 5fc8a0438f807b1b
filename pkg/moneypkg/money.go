// Package moneypkg provides fixed-point money parsing, validation and formatting.
//
// Amounts are shopspring decimals with at most two fractional digits. Floating point
// values are never used to carry money.
package moneypkg

import (
	"errors"
	"reflect"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits every amount carries.
const Scale = 2

// Currency is the single currency the ledger books in.
const Currency = money.USD

// ErrMalformedAmount indicates that a value is not a valid money amount.
var ErrMalformedAmount = errors.New("malformed amount")

// maxAmount is the exclusive upper bound of NUMERIC(15,2).
var maxAmount = decimal.New(1, 13)

// Valid reports whether d fits the storage precision: no more than Scale fractional digits
// and an absolute value below 10^13.
func Valid(d decimal.Decimal) bool {
	if !d.Equal(d.Truncate(Scale)) {
		return false
	}

	return d.Abs().LessThan(maxAmount)
}

// Parse converts s to an amount. Values with more than two fractional digits are rejected
// instead of rounded.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrMalformedAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrMalformedAmount
	}

	if !Valid(d) {
		return decimal.Zero, ErrMalformedAmount
	}

	return d, nil
}

// String renders d with exactly two fractional digits, e.g. "150.00".
func String(d decimal.Decimal) string {
	return d.StringFixed(Scale)
}

// Format renders d for reports, e.g. "$1,250.00".
func Format(d decimal.Decimal) string {
	cents := d.Shift(Scale).Round(0).IntPart()
	return money.New(cents, Currency).Display()
}

// ValidAmount validates whether a string field, json.Number included, holds a parsable
// money amount.
var ValidAmount validator.Func = func(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}

	_, err := Parse(fl.Field().String())

	return err == nil
}
