package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gofinances/internal/dashboard"
	applog "gofinances/internal/log"
	"gofinances/internal/storage/memory"
)

type fakeNotifier struct {
	keys []string
	err  error
}

func (f *fakeNotifier) PublishTransactionsChanged(_ context.Context, key string) error {
	f.keys = append(f.keys, key)
	return f.err
}

type failingWriter struct{}

func (failingWriter) Set(context.Context, string, string) error { return errors.New("read-only fs") }

const input = `[
  {"id":"1","name":"Salário","type":"positive","amount":100,"category":"work","date":"2021-01-10"},
  {"id":"2","name":"Mercado","type":"negative","amount":"40","category":"food","date":"2021-01-15"}
]`

func TestImportService_StoresAndNotifies(t *testing.T) {
	store := memory.New()
	notifier := &fakeNotifier{}
	im := NewImportService(store, "k", notifier, applog.Discard())

	res, err := im.Import(context.Background(), []byte(input))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, dashboard.Totals{Entries: 10000, Expensive: 4000, Total: 6000}, res.Totals)
	assert.True(t, res.Notified)
	assert.Equal(t, []string{"k"}, notifier.keys)

	stored, found, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	require.True(t, found)
	records, err := dashboard.Decode(stored)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "100", string(records[0].Amount))
}

func TestImportService_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{name: "empty", raw: "", wantErr: ErrEmptyInput},
		{name: "not json", raw: "{", wantErr: dashboard.ErrCorruptedData},
		{name: "bad type", raw: `[{"id":"1","type":"refund","amount":"1","date":"2021-01-10"}]`, wantErr: dashboard.ErrCorruptedData},
		{name: "bad date", raw: `[{"id":"1","type":"positive","amount":"1","date":"yesterday"}]`, wantErr: dashboard.ErrCorruptedData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.New()
			notifier := &fakeNotifier{}
			_, err := NewImportService(store, "k", notifier, applog.Discard()).Import(context.Background(), []byte(tt.raw))
			assert.ErrorIs(t, err, tt.wantErr)

			_, found, _ := store.Get(context.Background(), "k")
			assert.False(t, found, "nothing is written on failure")
			assert.Empty(t, notifier.keys)
		})
	}
}

func TestImportService_WriteFailure(t *testing.T) {
	_, err := NewImportService(failingWriter{}, "k", nil, applog.Discard()).Import(context.Background(), []byte(input))
	assert.ErrorIs(t, err, dashboard.ErrStorageUnavailable)
}

func TestImportService_NotificationFailureIsNotFatal(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("broker down")}
	res, err := NewImportService(memory.New(), "k", notifier, applog.Discard()).Import(context.Background(), []byte(input))
	require.NoError(t, err)
	assert.False(t, res.Notified)
	assert.Equal(t, 2, res.Count)
}

func TestImportService_WithoutNotifier(t *testing.T) {
	res, err := NewImportService(memory.New(), "k", nil, applog.Discard()).Import(context.Background(), []byte(`[]`))
	require.NoError(t, err)
	assert.Zero(t, res.Count)
	assert.False(t, res.Notified)
}
