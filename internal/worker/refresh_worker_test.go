package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applog "gofinances/internal/log"
)

type recordingHandler struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (h *recordingHandler) HandleChange(_ context.Context, key string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.keys = append(h.keys, key)
	return h.err
}

func (h *recordingHandler) calls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.keys)
}

func TestRefreshWorker_TicksUntilCancelled(t *testing.T) {
	h := &recordingHandler{}
	w := NewRefreshWorker(h, "k", 5*time.Millisecond, applog.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return h.calls() >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, k := range h.keys {
		assert.Equal(t, "k", k)
	}
}

func TestRefreshWorker_KeepsGoingAfterFailure(t *testing.T) {
	h := &recordingHandler{err: errors.New("storage down")}
	w := NewRefreshWorker(h, "k", 5*time.Millisecond, applog.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	require.Eventually(t, func() bool { return h.calls() >= 3 }, time.Second, time.Millisecond)
}
