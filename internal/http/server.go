// Package http serves the dashboard as an HTML page with htmx partials and
// as a JSON API.
package http

import (
	"context"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"gofinances/internal/cache"
	"gofinances/internal/dashboard"
	applog "gofinances/internal/log"
	"gofinances/internal/middleware/ratelimit"
	"gofinances/internal/middleware/security"
	"gofinances/internal/middleware/trace"
	"gofinances/internal/storage"
	appweb "gofinances/web"
)

// Options configures NewServer. Dashboard is required.
type Options struct {
	Addr      string
	Dashboard *dashboard.Controller
	// Key identifies the collection in the view cache.
	Key    string
	Logger *applog.Logger
	// CacheTTL bounds how long a loaded view is served without re-reading
	// storage. Zero keeps it until invalidated.
	CacheTTL     time.Duration
	RefreshLimit ratelimit.Config
	// Storage, when set, is pinged by the readiness check.
	Storage storage.Pinger
	// TrustedProxies are extra CIDRs whose forwarded client IP is believed.
	TrustedProxies []string
	// Templates and Static default to the embedded web assets.
	Templates fs.FS
	Static    fs.FS
}

type Server struct {
	http.Server
	templates *template.Template
	dash      *dashboard.Controller
	key       string
	logger    *applog.Logger
	storage   storage.Pinger

	views    *cache.LRUCache[dashboard.View]
	caches   *cache.Manager
	loads    singleflight.Group
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	started      time.Time
	shutdownOnce sync.Once
}

func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)
	if opts.Templates == nil {
		opts.Templates = appweb.TemplatesFS
	}
	if opts.Static == nil {
		opts.Static = appweb.StaticFS
	}
	if opts.Key == "" {
		opts.Key = "dashboard"
	}

	detector := security.NewDetector()
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", applog.FieldError, err)
		}
	}
	s := &Server{
		dash:     opts.Dashboard,
		key:      opts.Key,
		logger:   logger,
		storage:  opts.Storage,
		views:    cache.NewLRUCache[dashboard.View](8, opts.CacheTTL),
		caches:   cache.NewManager(logger),
		limiter:  ratelimit.NewLimiter(opts.RefreshLimit),
		detector: detector,
		tracer:   trace.NewMiddleware(logger, detector.ExtractClientIP),
		started:  time.Now(),
	}
	s.caches.Register(s.views)
	if opts.CacheTTL > 0 {
		s.caches.StartCleanup(opts.CacheTTL)
	}

	t, err := template.ParseFS(opts.Templates, "templates/*.html")
	if err != nil {
		logger.WithComponent(applog.ComponentTemplate).Warn("Failed parsing templates", applog.FieldError, err)
	} else {
		s.templates = t
	}

	mux := http.NewServeMux()
	if sub, err := fs.Sub(opts.Static, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount static FS", applog.FieldError, err)
	}

	refreshLimit := s.limiter.Middleware(detector.ExtractClientIP, s.writeRateLimited)

	mux.HandleFunc("GET /{$}", s.handleDashboardPage)
	mux.HandleFunc("GET /ui/dashboard", s.handleDashboardPartial)
	mux.HandleFunc("GET /api/dashboard", s.handleDashboardAPI)
	mux.Handle("POST /api/dashboard/refresh", refreshLimit(http.HandlerFunc(s.handleRefresh)))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	var handler http.Handler = mux
	handler = headers.Middleware(handler)
	handler = detector.Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// currentView serves the cached view when fresh; otherwise one load runs for
// all concurrent callers. The load is detached from the request so a client
// hanging up does not fail the others.
func (s *Server) currentView(ctx context.Context) dashboard.View {
	if v, ok := s.views.Get(s.key); ok {
		return v
	}
	res, _, _ := s.loads.Do(s.key, func() (any, error) {
		return s.reload(context.WithoutCancel(ctx)), nil
	})
	return res.(dashboard.View)
}

func (s *Server) reload(ctx context.Context) dashboard.View {
	v, err := s.dash.Reload(ctx)
	if errors.Is(err, dashboard.ErrSuperseded) {
		v = s.dash.View()
	}
	if v.State == dashboard.StateLoaded {
		s.views.Set(s.key, v)
	}
	return v
}

// Invalidate drops the cached view so the next read goes to storage.
func (s *Server) Invalidate() {
	s.views.Delete(s.key)
	s.loads.Forget(s.key)
}

// HandleChange reacts to a change notification for key: the cached view is
// dropped and a fresh load is published. Changes to other keys are ignored.
func (s *Server) HandleChange(ctx context.Context, key string) error {
	if key != s.key {
		s.logger.DebugContext(ctx, "Ignoring change for other key", applog.FieldStorageKey, key)
		return nil
	}
	s.Invalidate()
	v := s.currentView(ctx)
	if v.State == dashboard.StateFailed {
		return v.Err
	}
	return nil
}

// Shutdown stops background work and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

var errTemplatesUnavailable = errors.New("templates not loaded")
