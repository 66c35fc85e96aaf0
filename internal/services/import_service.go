// Package services orchestrates writes to the transaction store and the
// change notifications that follow them.
package services

import (
	"context"
	"errors"
	"fmt"

	"gofinances/internal/dashboard"
	applog "gofinances/internal/log"
	"gofinances/internal/storage"
)

var ErrEmptyInput = errors.New("import input is empty")

// ChangeNotifier announces that a key was rewritten.
type ChangeNotifier interface {
	PublishTransactionsChanged(ctx context.Context, key string) error
}

type ImportService struct {
	writer   storage.Writer
	key      string
	agg      *dashboard.Aggregator
	notifier ChangeNotifier
	logger   *applog.Logger
}

// NewImportService returns a service writing to key. notifier may be nil.
func NewImportService(w storage.Writer, key string, notifier ChangeNotifier, logger *applog.Logger) *ImportService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &ImportService{
		writer:   w,
		key:      key,
		agg:      dashboard.NewAggregator(),
		notifier: notifier,
		logger:   logger.WithComponent(applog.ComponentImport),
	}
}

// ImportResult describes a completed import.
type ImportResult struct {
	Count    int
	Totals   dashboard.Totals
	Notified bool
}

// Import validates raw as a transaction collection, stores it in canonical
// form and publishes a change. Nothing is written when validation fails. A
// failed notification is logged and reported through ImportResult.Notified only.
func (s *ImportService) Import(ctx context.Context, raw []byte) (ImportResult, error) {
	if len(raw) == 0 {
		return ImportResult{}, ErrEmptyInput
	}
	records, err := dashboard.Decode(string(raw))
	if err != nil {
		return ImportResult{}, err
	}
	summary, err := s.agg.Aggregate(records)
	if err != nil {
		return ImportResult{}, fmt.Errorf("validate records: %w", err)
	}
	canonical, err := dashboard.Encode(records)
	if err != nil {
		return ImportResult{}, err
	}
	if err := s.writer.Set(ctx, s.key, canonical); err != nil {
		return ImportResult{}, fmt.Errorf("%w: %w", dashboard.ErrStorageUnavailable, err)
	}

	res := ImportResult{Count: len(records), Totals: summary.Totals}
	fields := applog.NewFields().
		WithOperation(applog.OpImport).
		WithTotals(res.Totals.Entries, res.Totals.Expensive, res.Totals.Total)
	fields[applog.FieldStorageKey] = s.key
	fields[applog.FieldTxCount] = res.Count
	s.logger.InfoContext(ctx, "Imported transactions", fields.ToSlice()...)

	if s.notifier == nil {
		return res, nil
	}
	if err := s.notifier.PublishTransactionsChanged(ctx, s.key); err != nil {
		s.logger.WarnContext(ctx, "Change notification failed",
			applog.FieldError, err, applog.FieldStorageKey, s.key)
		return res, nil
	}
	res.Notified = true
	return res, nil
}
