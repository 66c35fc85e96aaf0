package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	applog "gofinances/internal/log"
	"gofinances/internal/storage"
)

// State of the dashboard as seen by renderers.
type State int

const (
	StateLoading State = iota
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Greeting is the header shown above the highlights.
type Greeting struct {
	Salutation string `json:"salutation"`
	UserName   string `json:"userName"`
	PhotoURL   string `json:"photoUrl,omitempty"`
}

// Snapshot is one published load. It is never mutated after publication.
type Snapshot struct {
	Generation uint64    `json:"generation"`
	LoadedAt   time.Time `json:"loadedAt"`
	Greeting   Greeting  `json:"greeting"`
	Summary
}

// View is what a renderer needs: the state, the last good snapshot (nil until
// the first successful load) and the failure, if any.
type View struct {
	State    State
	Snapshot *Snapshot
	Err      error
}

func (v View) Loading() bool { return v.State == StateLoading }

const DefaultLoadTimeout = 5 * time.Second

type Config struct {
	Reader      storage.Reader
	Key         string
	Aggregator  *Aggregator
	Greeting    Greeting
	LoadTimeout time.Duration
	Logger      *applog.Logger
	Now         func() time.Time
}

// Controller runs loads against the store and publishes their results.
//
// Every call to Reload starts a new generation and cancels the previous
// in-flight load. Only the latest generation may publish.
type Controller struct {
	reader   storage.Reader
	key      string
	agg      *Aggregator
	greeting Greeting
	timeout  time.Duration
	logger   *applog.Logger
	slog     *applog.StructuredLogger
	now      func() time.Time

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	view       View
	everLoaded bool
	subs       map[chan View]struct{}
}

func NewController(cfg Config) *Controller {
	if cfg.Key == "" {
		cfg.Key = storage.DefaultKey
	}
	if cfg.Aggregator == nil {
		cfg.Aggregator = NewAggregator()
	}
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = DefaultLoadTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = applog.New(applog.DefaultConfig())
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	logger := cfg.Logger.WithComponent(applog.ComponentDashboard)
	return &Controller{
		reader:   cfg.Reader,
		key:      cfg.Key,
		agg:      cfg.Aggregator,
		greeting: cfg.Greeting,
		timeout:  cfg.LoadTimeout,
		logger:   logger,
		slog:     applog.NewStructuredLogger(logger),
		now:      cfg.Now,
		view:     View{State: StateLoading},
		subs:     make(map[chan View]struct{}),
	}
}

// View returns the current state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Greeting is the configured greeting, available before any load.
func (c *Controller) Greeting() Greeting { return c.greeting }

// Ready reports whether at least one load has succeeded.
func (c *Controller) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.everLoaded
}

// Generation returns the number of loads triggered so far.
func (c *Controller) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Subscribe returns a channel receiving every published View. Slow readers
// only see the newest one. The returned func stops delivery and closes the
// channel.
func (c *Controller) Subscribe() (<-chan View, func()) {
	ch := make(chan View, 1)
	c.mu.Lock()
	c.subs[ch] = struct{}{}
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, ch)
			c.mu.Unlock()
			close(ch)
		})
	}
}

// Trigger starts a reload in the background and returns immediately.
func (c *Controller) Trigger(ctx context.Context) {
	gen, loadCtx, cancel := c.begin(ctx)
	go func() {
		defer cancel()
		_, _ = c.finish(loadCtx, gen)
	}()
}

// Reload runs a load and waits for it. A load overtaken by a newer trigger
// returns the current view and ErrSuperseded.
func (c *Controller) Reload(ctx context.Context) (View, error) {
	gen, loadCtx, cancel := c.begin(ctx)
	defer cancel()
	return c.finish(loadCtx, gen)
}

func (c *Controller) begin(ctx context.Context) (uint64, context.Context, context.CancelFunc) {
	loadCtx, cancel := context.WithTimeout(ctx, c.timeout)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
	c.generation++
	c.cancel = cancel
	c.view = View{State: StateLoading, Snapshot: c.view.Snapshot}
	c.notifyLocked()
	return c.generation, loadCtx, cancel
}

func (c *Controller) finish(ctx context.Context, gen uint64) (View, error) {
	snap, err := c.load(ctx, gen)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		c.logger.Debug("Discarding stale load", applog.FieldGeneration, gen, "latest", c.generation)
		return c.view, ErrSuperseded
	}
	c.cancel = nil
	if err != nil {
		c.view = View{State: StateFailed, Snapshot: c.view.Snapshot, Err: err}
		c.slog.LogError(ctx, "Dashboard load failed", err, applog.ComponentDashboard, applog.OpLoad, errorType(err),
			applog.NewFields().WithLoad(c.key, gen, 0))
	} else {
		c.view = View{State: StateLoaded, Snapshot: snap}
		c.everLoaded = true
		c.slog.LogDashboardLoaded(ctx, c.key, gen, len(snap.Transactions),
			snap.Totals.Entries, snap.Totals.Expensive, snap.Totals.Total)
	}
	c.notifyLocked()
	return c.view, err
}

func (c *Controller) load(ctx context.Context, gen uint64) (*Snapshot, error) {
	raw, found, err := c.reader.Get(ctx, c.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	var records []Record
	if found {
		if records, err = Decode(raw); err != nil {
			return nil, err
		}
	}
	summary, err := c.agg.Aggregate(records)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Generation: gen,
		LoadedAt:   c.now(),
		Greeting:   c.greeting,
		Summary:    summary,
	}, nil
}

func (c *Controller) notifyLocked() {
	v := c.view
	for ch := range c.subs {
		select {
		case ch <- v:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- v:
			default:
			}
		}
	}
}

func errorType(err error) string {
	switch {
	case errors.Is(err, ErrCorruptedData):
		return applog.ErrorTypeCorruptedData
	case errors.Is(err, context.DeadlineExceeded):
		return applog.ErrorTypeTimeout
	case errors.Is(err, ErrStorageUnavailable):
		return applog.ErrorTypeStorage
	default:
		return applog.ErrorTypeInternal
	}
}

// ErrorCode is the stable code renderers expose for a failed view.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCorruptedData):
		return "corrupted_data"
	case errors.Is(err, ErrStorageUnavailable):
		return "storage_unavailable"
	default:
		return "internal"
	}
}

// ErrorMessage is the pt-BR text shown to the user for a load failure.
func ErrorMessage(err error) string {
	switch ErrorCode(err) {
	case "":
		return ""
	case "corrupted_data":
		return "Os dados salvos estão corrompidos."
	case "storage_unavailable":
		return "Não foi possível ler as transações."
	default:
		return "Erro inesperado ao carregar o painel."
	}
}
