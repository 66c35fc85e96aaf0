package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Positive TransactionType = "positive"
	Negative TransactionType = "negative"
)

type (
	// TransactionType tags a record as income (positive) or expense (negative).
	TransactionType string

	Date struct {
		time.Time
	}
)

var (
	ErrInvalidType = errors.New("invalid transaction type")
	ErrInvalidDate = errors.New("invalid date")
)

// dateLayouts are tried in order. The first ones cover what a JS client
// writes with Date.toJSON; the last one covers hand-written seed files.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTransactionType accepts the stored tag, ignoring case and surrounding space.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", ErrInvalidType
	}
	return t, nil
}

func (t TransactionType) Valid() bool {
	switch t {
	case Positive, Negative:
		return true
	default:
		return false
	}
}

// ParseDate parses a stored timestamp. Values without an explicit offset are
// interpreted in loc.
func ParseDate(s string, loc *time.Location) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return Date{Time: t}, nil
		}
	}
	return Date{}, ErrInvalidDate
}

// In returns the same instant expressed in loc.
func (d Date) In(loc *time.Location) Date {
	if loc == nil {
		return d
	}
	return Date{Time: d.Time.In(loc)}
}
