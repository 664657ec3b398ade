// Package pricing derives proposal totals from structured pricing
// inputs. ComputeTotals is pure: it never mutates its input and either
// returns a complete set of derived figures or an error.
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"rfpdesk.io/internal/money"
)

// ErrValidation marks malformed or out-of-range pricing input. The
// caller rejects the request before any state mutation.
var ErrValidation = errors.New("pricing: invalid input")

// ConsultantType prices one role heterogeneously. Currency, when set,
// must match the proposal currency; the engine never converts.
type ConsultantType struct {
	Role     string          `json:"role"`
	Rate     decimal.Decimal `json:"rate"`
	Count    int             `json:"count"`
	Currency money.Currency  `json:"currency,omitempty"`
}

// AdditionalCost is a one-off line item (travel, equipment, licences).
type AdditionalCost struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// Input carries everything the engine needs. When ConsultantTypes is
// non-empty it takes precedence and the flat fields become a legacy
// convenience path.
type Input struct {
	Currency        money.Currency
	DurationMonths  int
	Consultants     int
	RatePerMonth    decimal.Decimal // per consultant per month
	TaxRate         decimal.Decimal // percent, [0,100]
	ConsultantTypes []ConsultantType
	AdditionalCosts []AdditionalCost
}

// Totals are the derived figures, fixed-point with two fractional
// digits. FinalTotalCost == TotalProjectCost + TaxAmount exactly.
type Totals struct {
	TotalProjectCost decimal.Decimal
	TaxAmount        decimal.Decimal
	FinalTotalCost   decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// ComputeTotals validates the input and derives total, tax and final
// cost. Rounding is half-up at each multiplication.
func ComputeTotals(in Input) (Totals, error) {
	if err := validate(in); err != nil {
		return Totals{}, err
	}

	months := decimal.NewFromInt(int64(in.DurationMonths))

	var total decimal.Decimal
	if len(in.ConsultantTypes) > 0 {
		for _, ct := range in.ConsultantTypes {
			perMonth := money.Mul(ct.Rate, decimal.NewFromInt(int64(ct.Count)))
			total = total.Add(money.Mul(perMonth, months))
		}
	} else {
		perMonth := money.Mul(in.RatePerMonth, decimal.NewFromInt(int64(in.Consultants)))
		total = money.Mul(perMonth, months)
	}

	for _, ac := range in.AdditionalCosts {
		total = total.Add(money.Round(ac.Amount))
	}

	tax := money.Tax(total, in.TaxRate)
	return Totals{
		TotalProjectCost: total,
		TaxAmount:        tax,
		FinalTotalCost:   total.Add(tax),
	}, nil
}

func validate(in Input) error {
	if !in.Currency.Valid() {
		return fmt.Errorf("%w: currency %q", ErrValidation, in.Currency)
	}
	if in.DurationMonths <= 0 {
		return fmt.Errorf("%w: duration must be > 0 months", ErrValidation)
	}
	if in.TaxRate.IsNegative() || in.TaxRate.GreaterThan(hundred) {
		return fmt.Errorf("%w: tax rate must be within [0,100]", ErrValidation)
	}
	if len(in.ConsultantTypes) > 0 {
		for i, ct := range in.ConsultantTypes {
			if ct.Count <= 0 {
				return fmt.Errorf("%w: consultant type %d: count must be > 0", ErrValidation, i)
			}
			if ct.Rate.IsNegative() {
				return fmt.Errorf("%w: consultant type %d: rate must be >= 0", ErrValidation, i)
			}
			if ct.Currency != "" && ct.Currency != in.Currency {
				return fmt.Errorf("%w: consultant type %d: currency %s does not match %s",
					ErrValidation, i, ct.Currency, in.Currency)
			}
		}
	} else {
		if in.Consultants <= 0 {
			return fmt.Errorf("%w: consultants must be > 0", ErrValidation)
		}
		if in.RatePerMonth.IsNegative() {
			return fmt.Errorf("%w: rate must be >= 0", ErrValidation)
		}
	}
	for i, ac := range in.AdditionalCosts {
		if ac.Amount.IsNegative() {
			return fmt.Errorf("%w: additional cost %d: amount must be >= 0", ErrValidation, i)
		}
	}
	return nil
}
