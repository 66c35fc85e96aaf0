package worker

import (
	"context"
	"time"

	applog "gofinances/internal/log"
)

// ChangeHandler reacts to a change of the collection under key.
type ChangeHandler interface {
	HandleChange(ctx context.Context, key string) error
}

// RefreshWorker periodically treats the collection as changed. It covers
// backends whose writers never publish change messages, such as a
// spreadsheet edited by hand.
type RefreshWorker struct {
	handler  ChangeHandler
	key      string
	interval time.Duration
	logger   *applog.Logger
}

func NewRefreshWorker(handler ChangeHandler, key string, interval time.Duration, logger *applog.Logger) *RefreshWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &RefreshWorker{
		handler:  handler,
		key:      key,
		interval: interval,
		logger:   logger.WithComponent(applog.ComponentDashboard),
	}
}

// Run ticks until ctx is done. Failed refreshes are logged and retried on the
// next tick.
func (w *RefreshWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.InfoContext(ctx, "Periodic refresh started", "interval", w.interval, applog.FieldStorageKey, w.key)
	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "Periodic refresh stopped")
			return nil
		case <-ticker.C:
			if err := w.handler.HandleChange(ctx, w.key); err != nil && ctx.Err() == nil {
				w.logger.WarnContext(ctx, "Periodic refresh failed",
					applog.FieldError, err,
					applog.FieldOperation, applog.OpRefresh,
					applog.FieldTrigger, "interval")
			}
		}
	}
}
