// Package core holds the domain values shared by storage, aggregation and
// rendering: transaction types, dates and money.
//
// Amounts are kept as integer cents. Stored amounts are decimal strings and are
// parsed with shopspring/decimal so that no float rounding ever reaches a total.
package core

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrAmountOverflow = errors.New("amount overflow")
)

var maxCents = decimal.NewFromInt(math.MaxInt64)

type Money struct {
	Cents int64
}

// ParseAmount converts a stored amount string to Money.
//
// It accepts a dot (12.34) or, when no dot is present, a comma (12,34) as the
// decimal separator and rounds half-up to the cent. Negative values are
// rejected: stored amounts are magnitudes and the sign comes from the type.
//
// Examples:
//
//	ParseAmount("100")    -> 10000
//	ParseAmount("12,34")  -> 1234
//	ParseAmount("12.345") -> 1235
//	ParseAmount("0")      -> 0
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	if d.IsNegative() {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0)
	if cents.GreaterThan(maxCents) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents.IntPart()}, nil
}

// Add returns m+o, or ErrAmountOverflow when the sum does not fit in int64.
func (m Money) Add(o Money) (Money, error) {
	sum := m.Cents + o.Cents
	if (o.Cents > 0 && sum < m.Cents) || (o.Cents < 0 && sum > m.Cents) {
		return Money{}, ErrAmountOverflow
	}
	return Money{Cents: sum}, nil
}

// Sub returns m-o, or ErrAmountOverflow when the difference does not fit in int64.
func (m Money) Sub(o Money) (Money, error) {
	diff := m.Cents - o.Cents
	if (o.Cents > 0 && diff > m.Cents) || (o.Cents < 0 && diff < m.Cents) {
		return Money{}, ErrAmountOverflow
	}
	return Money{Cents: diff}, nil
}

func (m Money) IsNegative() bool { return m.Cents < 0 }

// Decimal returns the amount in currency units, e.g. 1234 cents -> 12.34.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}
