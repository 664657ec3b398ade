// Package money provides fixed-point monetary arithmetic for proposal
// pricing. Amounts carry a currency tag; the package never converts
// between currencies.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency identifies the proposal currency. Tag only, no FX.
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	SAR Currency = "SAR"
)

var ErrInvalidCurrency = errors.New("money: invalid currency")

// ParseCurrency validates a currency code against the supported set.
// Unknown values are rejected at the boundary rather than stored.
func ParseCurrency(s string) (Currency, error) {
	switch Currency(strings.ToUpper(strings.TrimSpace(s))) {
	case USD:
		return USD, nil
	case EUR:
		return EUR, nil
	case SAR:
		return SAR, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, s)
	}
}

// Valid reports whether the currency is one of the supported codes.
func (c Currency) Valid() bool {
	switch c {
	case USD, EUR, SAR:
		return true
	}
	return false
}

// scale is the number of fractional digits all amounts are kept at.
const scale = 2

// Round normalizes a value to two fractional digits, half-up.
// decimal.Round rounds half away from zero; amounts here are
// non-negative so the two modes coincide.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(scale)
}

// Mul multiplies two values and rounds the product to two fractional
// digits. Pricing rounds at each multiplication, not only at the end,
// to match currency display expectations.
func Mul(a, b decimal.Decimal) decimal.Decimal {
	return Round(a.Mul(b))
}

// Tax computes round(amount × ratePercent / 100).
func Tax(amount, ratePercent decimal.Decimal) decimal.Decimal {
	return Round(amount.Mul(ratePercent).Div(decimal.NewFromInt(100)))
}

// Amount is a currency-tagged fixed-point value.
type Amount struct {
	Currency Currency        `json:"currency"`
	Value    decimal.Decimal `json:"value"`
}

// New builds an Amount normalized to two fractional digits.
func New(value decimal.Decimal, cur Currency) (Amount, error) {
	if !cur.Valid() {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidCurrency, cur)
	}
	return Amount{Currency: cur, Value: Round(value)}, nil
}

// Add sums two amounts of the same currency.
func (a Amount) Add(b Amount) (Amount, error) {
	if a.Currency != b.Currency {
		return Amount{}, fmt.Errorf("%w: cannot add %s to %s", ErrInvalidCurrency, b.Currency, a.Currency)
	}
	return Amount{Currency: a.Currency, Value: a.Value.Add(b.Value)}, nil
}

func (a Amount) IsNegative() bool { return a.Value.IsNegative() }
func (a Amount) IsZero() bool     { return a.Value.IsZero() }

func (a Amount) String() string {
	return a.Value.StringFixed(scale) + " " + string(a.Currency)
}
