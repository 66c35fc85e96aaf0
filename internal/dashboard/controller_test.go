package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applog "gofinances/internal/log"
)

type getFunc func(ctx context.Context, key string) (string, bool, error)

func (f getFunc) Get(ctx context.Context, key string) (string, bool, error) { return f(ctx, key) }

const scenario = `[{"id":"1","type":"positive","amount":"100","date":"2021-01-10"},
{"id":"2","type":"negative","amount":"40","date":"2021-01-15"}]`

func newTestController(r getFunc) *Controller {
	return NewController(Config{
		Reader:   r,
		Key:      "k",
		Greeting: Greeting{Salutation: "Olá,", UserName: "Bruno"},
		Logger:   applog.Discard(),
		Now:      func() time.Time { return time.Date(2021, 1, 20, 0, 0, 0, 0, time.UTC) },
	})
}

func static(value string, found bool, err error) getFunc {
	return func(context.Context, string) (string, bool, error) { return value, found, err }
}

func TestControllerInitialState(t *testing.T) {
	c := newTestController(static("", false, nil))
	v := c.View()
	assert.Equal(t, StateLoading, v.State)
	assert.True(t, v.Loading())
	assert.Nil(t, v.Snapshot)
	assert.False(t, c.Ready())
}

func TestControllerReloadPublishes(t *testing.T) {
	var gotKey string
	c := newTestController(func(_ context.Context, key string) (string, bool, error) {
		gotKey = key
		return scenario, true, nil
	})

	v, err := c.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "k", gotKey)
	assert.Equal(t, StateLoaded, v.State)
	require.NotNil(t, v.Snapshot)
	assert.Equal(t, uint64(1), v.Snapshot.Generation)
	assert.Equal(t, int64(6000), v.Snapshot.Totals.Total)
	assert.Equal(t, "Bruno", v.Snapshot.Greeting.UserName)
	assert.Equal(t, 20, v.Snapshot.LoadedAt.Day())
	assert.True(t, c.Ready())
	assert.Equal(t, v, c.View())
}

func TestControllerMissingKeyIsEmpty(t *testing.T) {
	c := newTestController(static("", false, nil))
	v, err := c.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateLoaded, v.State)
	assert.Empty(t, v.Snapshot.Transactions)
	assert.Equal(t, "Não há transações", v.Snapshot.Highlights.Entries.LastTransaction)
}

func TestControllerFailures(t *testing.T) {
	t.Run("storage error", func(t *testing.T) {
		cause := errors.New("disk gone")
		c := newTestController(static("", false, cause))
		v, err := c.Reload(context.Background())
		assert.ErrorIs(t, err, ErrStorageUnavailable)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, StateFailed, v.State)
		assert.Equal(t, "storage_unavailable", ErrorCode(v.Err))
		assert.False(t, c.Ready())
	})

	t.Run("corrupted data", func(t *testing.T) {
		c := newTestController(static("{not json", true, nil))
		v, err := c.Reload(context.Background())
		assert.ErrorIs(t, err, ErrCorruptedData)
		assert.Equal(t, StateFailed, v.State)
		assert.Equal(t, "corrupted_data", ErrorCode(v.Err))
	})

	t.Run("failure keeps last good snapshot", func(t *testing.T) {
		var mu sync.Mutex
		fail := false
		c := newTestController(func(context.Context, string) (string, bool, error) {
			mu.Lock()
			defer mu.Unlock()
			if fail {
				return "", false, errors.New("boom")
			}
			return scenario, true, nil
		})
		_, err := c.Reload(context.Background())
		require.NoError(t, err)

		mu.Lock()
		fail = true
		mu.Unlock()
		v, err := c.Reload(context.Background())
		require.Error(t, err)
		assert.Equal(t, StateFailed, v.State)
		require.NotNil(t, v.Snapshot)
		assert.Equal(t, uint64(1), v.Snapshot.Generation)
		assert.True(t, c.Ready())
	})
}

func TestControllerTimeout(t *testing.T) {
	c := NewController(Config{
		Reader: getFunc(func(ctx context.Context, _ string) (string, bool, error) {
			<-ctx.Done()
			return "", false, ctx.Err()
		}),
		LoadTimeout: 10 * time.Millisecond,
		Logger:      applog.Discard(),
	})
	_, err := c.Reload(context.Background())
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestControllerOverlappingLoadsPublishLatest(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	calls := 0

	c := newTestController(func(ctx context.Context, _ string) (string, bool, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			close(started)
			// Ignores cancellation and answers with stale data once released.
			<-release
			return `[{"id":"old","type":"positive","amount":"1","date":"2021-01-01"}]`, true, nil
		}
		return scenario, true, nil
	})

	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Reload(context.Background())
		firstErr <- err
	}()
	<-started

	v, err := c.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), v.Snapshot.Generation)

	close(release)
	assert.ErrorIs(t, <-firstErr, ErrSuperseded)

	final := c.View()
	assert.Equal(t, StateLoaded, final.State)
	assert.Equal(t, uint64(2), final.Snapshot.Generation)
	assert.Len(t, final.Snapshot.Transactions, 2)
	assert.Equal(t, "1", final.Snapshot.Transactions[0].ID)
}

func TestControllerNewTriggerCancelsInFlight(t *testing.T) {
	cancelled := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	c := newTestController(func(ctx context.Context, _ string) (string, bool, error) {
		first := false
		once.Do(func() { first = true })
		if first {
			close(started)
			<-ctx.Done()
			close(cancelled)
			return "", false, ctx.Err()
		}
		return scenario, true, nil
	})

	c.Trigger(context.Background())
	<-started
	_, err := c.Reload(context.Background())
	require.NoError(t, err)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("in-flight load was not cancelled")
	}
	assert.Equal(t, uint64(2), c.Generation())
}

func TestControllerReloadShowsLoadingAndKeepsSnapshot(t *testing.T) {
	gate := make(chan struct{})
	var mu sync.Mutex
	calls := 0
	c := newTestController(func(context.Context, string) (string, bool, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 2 {
			<-gate
		}
		return scenario, true, nil
	})
	_, err := c.Reload(context.Background())
	require.NoError(t, err)

	views, stop := c.Subscribe()
	defer stop()

	c.Trigger(context.Background())
	v := <-views
	assert.Equal(t, StateLoading, v.State)
	require.NotNil(t, v.Snapshot)
	assert.Equal(t, uint64(1), v.Snapshot.Generation)

	close(gate)
	v = <-views
	assert.Equal(t, StateLoaded, v.State)
	assert.Equal(t, uint64(2), v.Snapshot.Generation)
}

func TestSubscribeStop(t *testing.T) {
	c := newTestController(static("", false, nil))
	views, stop := c.Subscribe()
	stop()
	stop()
	_, ok := <-views
	assert.False(t, ok)

	_, err := c.Reload(context.Background())
	require.NoError(t, err)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "loading", StateLoading.String())
	assert.Equal(t, "loaded", StateLoaded.String())
	assert.Equal(t, "failed", StateFailed.String())
	b, _ := StateFailed.MarshalText()
	assert.Equal(t, "failed", string(b))
	assert.Equal(t, "internal", ErrorCode(errors.New("x")))
	assert.Equal(t, "", ErrorCode(nil))
}

func TestErrorMessage(t *testing.T) {
	assert.Empty(t, ErrorMessage(nil))
	assert.Equal(t, "Os dados salvos estão corrompidos.", ErrorMessage(fmt.Errorf("%w: x", ErrCorruptedData)))
	assert.Equal(t, "Não foi possível ler as transações.", ErrorMessage(fmt.Errorf("%w: x", ErrStorageUnavailable)))
	assert.Equal(t, "Erro inesperado ao carregar o painel.", ErrorMessage(errors.New("x")))
}

func TestControllerGreetingBeforeLoad(t *testing.T) {
	c := newTestController(static("", false, nil))
	assert.Equal(t, "Bruno", c.Greeting().UserName)
	assert.False(t, c.Ready())
}
