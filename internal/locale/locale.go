// Package locale formats money and dates for display.
//
// Only Brazilian Portuguese is supported. The locale is fixed for the whole
// process; configuration may name it but cannot change how it formats.
package locale

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"gofinances/internal/core"
)

var ErrUnsupportedLocale = errors.New("unsupported locale")

// Locale holds the pieces of CLDR data the dashboard needs. Digit grouping
// and the decimal separator come from x/text for Tag.
type Locale struct {
	Tag            language.Tag
	CurrencySymbol string
	Months         [12]string
	// Preposition joins day and month in long dates ("10 de janeiro").
	Preposition string
}

var PtBR = Locale{
	Tag:            language.BrazilianPortuguese,
	CurrencySymbol: "R$",
	Months: [12]string{
		"janeiro", "fevereiro", "março", "abril", "maio", "junho",
		"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
	},
	Preposition: "de",
}

var matcher = language.NewMatcher([]language.Tag{language.BrazilianPortuguese})

// Parse resolves a BCP 47 tag to a supported Locale. Any Portuguese variant is
// accepted and served with pt-BR data.
func Parse(s string) (Locale, error) {
	tag, err := language.Parse(strings.TrimSpace(s))
	if err != nil {
		return Locale{}, fmt.Errorf("%w: %q: %v", ErrUnsupportedLocale, s, err)
	}
	if _, _, conf := matcher.Match(tag); conf == language.No {
		return Locale{}, fmt.Errorf("%w: %q", ErrUnsupportedLocale, s)
	}
	return PtBR, nil
}

// Currency formats m as "R$ 1.234,56"; negative values get a leading minus
// ("-R$ 60,00").
//
// Whole units and cents are printed separately so amounts beyond float64
// precision keep every digit.
func (l Locale) Currency(m core.Money) string {
	cents := uint64(m.Cents)
	if m.IsNegative() {
		cents = -cents
	}
	p := message.NewPrinter(l.Tag)
	units := p.Sprint(number.Decimal(cents / 100))
	frac := p.Sprint(number.Decimal(float64(cents%100)/100, number.Scale(2)))
	s := l.CurrencySymbol + " " + units + strings.TrimPrefix(frac, "0")
	if m.IsNegative() {
		return "-" + s
	}
	return s
}

// ShortDate formats t as dd/mm/yy.
func (l Locale) ShortDate(t time.Time) string {
	return fmt.Sprintf("%02d/%02d/%02d", t.Day(), int(t.Month()), t.Year()%100)
}

// DayMonth formats t as "<day> de <month>", e.g. "5 de março".
func (l Locale) DayMonth(t time.Time) string {
	return strconv.Itoa(t.Day()) + " " + l.Preposition + " " + l.MonthName(t.Month())
}

func (l Locale) MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return l.Months[m-1]
}
