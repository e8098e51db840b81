// Package money converts between major-unit decimal amounts and integer minor units.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Exponents for currencies whose minor unit is not 1/100.
var exponents = map[string]int32{
	"JPY": 0,
	"KRW": 0,
	"VND": 0,
	"BHD": 3,
	"KWD": 3,
	"OMR": 3,
}

func Exponent(currency string) int32 {
	if e, ok := exponents[currency]; ok {
		return e
	}
	return 2
}

// ToMinor parses a major-unit amount such as "1000.50" into minor units.
// Amounts with more precision than the currency allows are rejected.
func ToMinor(amount string, currency string) (int64, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return DecimalToMinor(d, currency)
}

func DecimalToMinor(d decimal.Decimal, currency string) (int64, error) {
	shifted := d.Shift(Exponent(currency))
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("amount %s has more than %d decimal places", d.String(), Exponent(currency))
	}
	if shifted.Abs().GreaterThan(decimal.NewFromInt(1 << 53)) {
		return 0, fmt.Errorf("amount %s is out of range", d.String())
	}
	return shifted.IntPart(), nil
}

// FromMinor returns the major-unit decimal for a minor-unit amount.
func FromMinor(minor int64, currency string) decimal.Decimal {
	return decimal.New(minor, -Exponent(currency))
}

// Format renders a minor-unit amount like "1000.50 INR".
func Format(minor int64, currency string) string {
	return fmt.Sprintf("%s %s", FromMinor(minor, currency).StringFixed(Exponent(currency)), currency)
}
