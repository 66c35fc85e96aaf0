package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gofinances/internal/core"
)

func rec(id, typ, amount, date string) Record {
	return Record{ID: id, Type: typ, Amount: FlexString(amount), Date: date}
}

func TestAggregateScenario(t *testing.T) {
	a := NewAggregator()
	s, err := a.Aggregate([]Record{
		rec("1", "positive", "100", "2021-01-10"),
		rec("2", "negative", "40", "2021-01-15"),
	})
	require.NoError(t, err)

	assert.Equal(t, Totals{Entries: 10000, Expensive: 4000, Total: 6000}, s.Totals)
	assert.Equal(t, "R$ 100,00", s.Highlights.Entries.Amount)
	assert.Equal(t, "R$ 40,00", s.Highlights.Expensive.Amount)
	assert.Equal(t, "R$ 60,00", s.Highlights.Total.Amount)
	assert.Equal(t, "Última entrada dia 10 de janeiro", s.Highlights.Entries.LastTransaction)
	assert.Equal(t, "Última saída dia 15 de janeiro", s.Highlights.Expensive.LastTransaction)
	assert.Equal(t, "01 a 15 de janeiro", s.Highlights.Total.LastTransaction)

	require.Len(t, s.Transactions, 2)
	assert.Equal(t, Transaction{ID: "1", Type: "positive", Amount: "R$ 100,00", Date: "10/01/21"}, s.Transactions[0])
	assert.True(t, s.Transactions[1].Expense)
	assert.Equal(t, "15/01/21", s.Transactions[1].Date)
}

func TestAggregateEmpty(t *testing.T) {
	a := NewAggregator()
	for _, in := range [][]Record{nil, {}} {
		s, err := a.Aggregate(in)
		require.NoError(t, err)
		assert.Equal(t, Totals{}, s.Totals)
		assert.Equal(t, "R$ 0,00", s.Highlights.Entries.Amount)
		assert.Equal(t, "R$ 0,00", s.Highlights.Expensive.Amount)
		assert.Equal(t, "R$ 0,00", s.Highlights.Total.Amount)
		assert.Equal(t, "Não há transações", s.Highlights.Entries.LastTransaction)
		assert.Equal(t, "Não há transações", s.Highlights.Expensive.LastTransaction)
		assert.Equal(t, "Não há transações", s.Highlights.Total.LastTransaction)
		assert.Empty(t, s.Transactions)
	}
}

func TestAggregateNegativeTotal(t *testing.T) {
	s, err := NewAggregator().Aggregate([]Record{
		rec("1", "positive", "10", "2021-02-01"),
		rec("2", "negative", "1070.5", "2021-02-03"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(-106050), s.Totals.Total)
	assert.Equal(t, "-R$ 1.060,50", s.Highlights.Total.Amount)
	assert.Equal(t, s.Totals.Entries-s.Totals.Expensive, s.Totals.Total)
}

func TestAggregateOnlyEntries(t *testing.T) {
	s, err := NewAggregator().Aggregate([]Record{rec("1", "positive", "5", "2021-03-05")})
	require.NoError(t, err)
	assert.Equal(t, "Última entrada dia 5 de março", s.Highlights.Entries.LastTransaction)
	assert.Equal(t, "Não há transações", s.Highlights.Expensive.LastTransaction)
	assert.Equal(t, "Não há transações", s.Highlights.Total.LastTransaction)
}

func TestAggregateBucketsAndOrder(t *testing.T) {
	in := []Record{
		rec("c", "negative", "1", "2021-01-03"),
		rec("a", "POSITIVE", "2", "2021-01-01"),
		rec("b", " negative ", "3", "2021-01-02"),
		rec("d", "positive", "4", "2021-01-04"),
	}
	s, err := NewAggregator().Aggregate(in)
	require.NoError(t, err)

	assert.Equal(t, int64(600), s.Totals.Entries)
	assert.Equal(t, int64(400), s.Totals.Expensive)

	ids := make([]string, len(s.Transactions))
	for i, tx := range s.Transactions {
		ids[i] = tx.ID
	}
	assert.Equal(t, []string{"c", "a", "b", "d"}, ids)
	assert.Equal(t, "POSITIVE", s.Transactions[1].Type)
	assert.Equal(t, " negative ", s.Transactions[2].Type)
	assert.False(t, s.Transactions[1].Expense)
	assert.True(t, s.Transactions[2].Expense)
}

func TestAggregateLatestDateWinsOverPosition(t *testing.T) {
	s, err := NewAggregator().Aggregate([]Record{
		rec("1", "negative", "1", "2021-06-20"),
		rec("2", "negative", "1", "2021-06-02"),
		rec("3", "positive", "1", "2021-07-01T10:00:00.000Z"),
		rec("9", "positive", "1", "2021-05-30"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Última saída dia 20 de junho", s.Highlights.Expensive.LastTransaction)
	assert.Equal(t, "Última entrada dia 1 de julho", s.Highlights.Entries.LastTransaction)
}

func TestAggregateIdempotent(t *testing.T) {
	in := []Record{
		rec("1", "positive", "100", "2021-01-10"),
		rec("2", "negative", "40", "2021-01-15"),
	}
	a := NewAggregator()
	first, err := a.Aggregate(in)
	require.NoError(t, err)
	second, err := a.Aggregate(in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAggregateCorrupted(t *testing.T) {
	tests := []struct {
		name string
		r    Record
	}{
		{"bad type", rec("1", "income", "1", "2021-01-01")},
		{"bad amount", rec("1", "positive", "abc", "2021-01-01")},
		{"negative amount", rec("1", "positive", "-3", "2021-01-01")},
		{"bad date", rec("1", "positive", "1", "yesterday")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAggregator().Aggregate([]Record{tt.r})
			assert.ErrorIs(t, err, ErrCorruptedData)
		})
	}
}

func TestAggregateUsesDisplayLocation(t *testing.T) {
	brt := time.FixedZone("BRT", -3*60*60)
	s, err := NewAggregator(WithLocation(brt)).Aggregate([]Record{
		rec("1", "negative", "1", "2021-01-10T01:00:00Z"),
	})
	require.NoError(t, err)
	assert.Equal(t, "09/01/21", s.Transactions[0].Date)
	assert.Equal(t, "Última saída dia 9 de janeiro", s.Highlights.Expensive.LastTransaction)
}

func TestAggregateCustomLabels(t *testing.T) {
	l := DefaultLabels()
	l.RangeStart = "02"
	s, err := NewAggregator(WithLabels(l)).Aggregate([]Record{rec("1", "negative", "1", "2021-01-10")})
	require.NoError(t, err)
	assert.Equal(t, "02 a 10 de janeiro", s.Highlights.Total.LastTransaction)
}

func TestLastDate(t *testing.T) {
	a := NewAggregator()
	var rows []parsed
	for _, r := range []Record{
		rec("1", "positive", "1", "2021-01-10"),
		rec("2", "positive", "1", "2021-01-12"),
	} {
		p, err := a.parse(r)
		require.NoError(t, err)
		rows = append(rows, p)
	}

	got, err := lastDate(rows, core.Positive)
	require.NoError(t, err)
	assert.Equal(t, 12, got.Day())

	_, err = lastDate(rows, core.Negative)
	assert.ErrorIs(t, err, ErrNoTransactionsInCategory)

	_, err = lastDate(nil, core.Positive)
	assert.ErrorIs(t, err, ErrNoTransactionsInCategory)
}

func TestAggregateOverflowIsCorrupted(t *testing.T) {
	a := NewAggregator()

	_, err := a.Aggregate([]Record{
		rec("1", "positive", "50000000000000000", "2021-01-10"),
		rec("2", "positive", "50000000000000000", "2021-01-11"),
	})
	require.ErrorIs(t, err, ErrCorruptedData)
	assert.ErrorContains(t, err, `record "2"`)

	_, err = a.Aggregate([]Record{
		rec("1", "negative", "50000000000000000", "2021-01-10"),
		rec("2", "negative", "50000000000000000", "2021-01-11"),
	})
	assert.ErrorIs(t, err, ErrCorruptedData)

	s, err := a.Aggregate([]Record{
		rec("1", "positive", "50000000000000000", "2021-01-10"),
		rec("2", "negative", "50000000000000000", "2021-01-11"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), s.Totals.Total)
	assert.Equal(t, s.Totals.Entries-s.Totals.Expensive, s.Totals.Total)
}
