package dashboard

import (
	"errors"
	"fmt"
	"time"

	"gofinances/internal/core"
	"gofinances/internal/locale"
)

// Labels holds the fixed strings used to build highlight labels.
type Labels struct {
	LastEntryPrefix   string
	LastExpensePrefix string
	// RangeStart opens the total's date range. The range always ends on the
	// last expense date.
	RangeStart     string
	RangeJoin      string
	NoTransactions string
}

func DefaultLabels() Labels {
	return Labels{
		LastEntryPrefix:   "Última entrada dia",
		LastExpensePrefix: "Última saída dia",
		RangeStart:        "01",
		RangeJoin:         "a",
		NoTransactions:    "Não há transações",
	}
}

type (
	// Transaction is a record with display-formatted amount and date. Type is
	// the stored tag as written; Expense is its parsed meaning.
	Transaction struct {
		ID       string `json:"id"`
		Name     string `json:"name,omitempty"`
		Type     string `json:"type"`
		Amount   string `json:"amount"`
		Category string `json:"category,omitempty"`
		Date     string `json:"date"`
		Expense  bool   `json:"-"`
	}

	Highlight struct {
		Amount          string `json:"amount"`
		LastTransaction string `json:"lastTransaction"`
	}

	Highlights struct {
		Entries   Highlight `json:"entries"`
		Expensive Highlight `json:"expensive"`
		Total     Highlight `json:"total"`
	}

	// Totals are the raw sums in cents.
	Totals struct {
		Entries   int64 `json:"entries"`
		Expensive int64 `json:"expensive"`
		Total     int64 `json:"total"`
	}

	// Summary is the pure result of aggregating one read.
	Summary struct {
		Transactions []Transaction `json:"transactions"`
		Highlights   Highlights    `json:"highlights"`
		Totals       Totals        `json:"totals"`
	}
)

// Aggregator turns stored records into a Summary. The zero value is not
// usable; build one with NewAggregator.
type Aggregator struct {
	locale   locale.Locale
	location *time.Location
	labels   Labels
}

type Option func(*Aggregator)

func WithLocale(l locale.Locale) Option { return func(a *Aggregator) { a.locale = l } }

func WithLocation(loc *time.Location) Option {
	return func(a *Aggregator) {
		if loc != nil {
			a.location = loc
		}
	}
}

func WithLabels(l Labels) Option { return func(a *Aggregator) { a.labels = l } }

func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{
		locale:   locale.PtBR,
		location: time.UTC,
		labels:   DefaultLabels(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Aggregator) Labels() Labels { return a.labels }

type parsed struct {
	typ    core.TransactionType
	amount core.Money
	date   time.Time
}

func (a *Aggregator) parse(r Record) (parsed, error) {
	typ, err := core.ParseTransactionType(r.Type)
	if err != nil {
		return parsed{}, fmt.Errorf("%w: record %q: %v", ErrCorruptedData, r.ID, err)
	}
	amount, err := core.ParseAmount(string(r.Amount))
	if err != nil {
		return parsed{}, fmt.Errorf("%w: record %q: %v", ErrCorruptedData, r.ID, err)
	}
	d, err := core.ParseDate(r.Date, a.location)
	if err != nil {
		return parsed{}, fmt.Errorf("%w: record %q: %v", ErrCorruptedData, r.ID, err)
	}
	return parsed{typ: typ, amount: amount, date: d.In(a.location).Time}, nil
}

// Aggregate computes totals, last dates and the enriched list in one pass.
// Any invalid record fails the whole collection with ErrCorruptedData.
func (a *Aggregator) Aggregate(records []Record) (Summary, error) {
	rows := make([]parsed, 0, len(records))
	txs := make([]Transaction, 0, len(records))
	var entries, expensive core.Money

	for _, r := range records {
		p, err := a.parse(r)
		if err != nil {
			return Summary{}, err
		}
		switch p.typ {
		case core.Positive:
			entries, err = entries.Add(p.amount)
		case core.Negative:
			expensive, err = expensive.Add(p.amount)
		}
		if err != nil {
			return Summary{}, fmt.Errorf("%w: record %q: %v", ErrCorruptedData, r.ID, err)
		}
		rows = append(rows, p)
		txs = append(txs, Transaction{
			ID:       r.ID,
			Name:     r.Name,
			Type:     r.Type,
			Amount:   a.locale.Currency(p.amount),
			Category: r.Category,
			Date:     a.locale.ShortDate(p.date),
			Expense:  p.typ == core.Negative,
		})
	}
	total, err := entries.Sub(expensive)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: total: %v", ErrCorruptedData, err)
	}

	lastEntry, entryErr := lastDate(rows, core.Positive)
	lastExpense, expenseErr := lastDate(rows, core.Negative)

	return Summary{
		Transactions: txs,
		Highlights: Highlights{
			Entries: Highlight{
				Amount:          a.locale.Currency(entries),
				LastTransaction: a.lastLabel(a.labels.LastEntryPrefix, lastEntry, entryErr),
			},
			Expensive: Highlight{
				Amount:          a.locale.Currency(expensive),
				LastTransaction: a.lastLabel(a.labels.LastExpensePrefix, lastExpense, expenseErr),
			},
			Total: Highlight{
				Amount:          a.locale.Currency(total),
				LastTransaction: a.rangeLabel(lastExpense, expenseErr),
			},
		},
		Totals: Totals{
			Entries:   entries.Cents,
			Expensive: expensive.Cents,
			Total:     total.Cents,
		},
	}, nil
}

// lastDate returns the most recent date among rows of type t, or
// ErrNoTransactionsInCategory when there are none.
func lastDate(rows []parsed, t core.TransactionType) (time.Time, error) {
	var last time.Time
	found := false
	for _, r := range rows {
		if r.typ != t {
			continue
		}
		if !found || r.date.After(last) {
			last = r.date
			found = true
		}
	}
	if !found {
		return time.Time{}, ErrNoTransactionsInCategory
	}
	return last, nil
}

func (a *Aggregator) lastLabel(prefix string, last time.Time, err error) string {
	if errors.Is(err, ErrNoTransactionsInCategory) {
		return a.labels.NoTransactions
	}
	return prefix + " " + a.locale.DayMonth(last)
}

func (a *Aggregator) rangeLabel(lastExpense time.Time, err error) string {
	if errors.Is(err, ErrNoTransactionsInCategory) {
		return a.labels.NoTransactions
	}
	return a.labels.RangeStart + " " + a.labels.RangeJoin + " " + a.locale.DayMonth(lastExpense)
}
