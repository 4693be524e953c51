// ABOUTME: Gateway orchestrator that wires the HTTP server, routes, and relay core
// ABOUTME: Owns server lifecycle: start, serve, and graceful shutdown

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/2389/babel-gateway/internal/auth"
	"github.com/2389/babel-gateway/internal/config"
	"github.com/2389/babel-gateway/internal/metrics"
	"github.com/2389/babel-gateway/internal/router"
	"github.com/2389/babel-gateway/internal/session"
	"github.com/2389/babel-gateway/internal/store"
)

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 10 * time.Second

// Gateway orchestrates the babel-gateway server components: the HTTP API,
// the WebSocket relay endpoint, and the shared session registry.
type Gateway struct {
	config     *config.Config
	store      store.Store
	authSvc    *auth.Service
	registry   *session.Registry
	router     *router.Router
	collector  *metrics.Collector
	promReg    *prometheus.Registry
	limiter    *rateLimiter
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a Gateway with all components wired together.
func New(cfg *config.Config, st store.Store, authSvc *auth.Service, registry *session.Registry, msgRouter *router.Router, collector *metrics.Collector, promReg *prometheus.Registry) *Gateway {
	g := &Gateway{
		config:    cfg,
		store:     st,
		authSvc:   authSvc,
		registry:  registry,
		router:    msgRouter,
		collector: collector,
		promReg:   promReg,
		limiter:   newRateLimiter(defaultAuthRate, defaultAuthBurst),
		logger:    slog.Default().With("component", "gateway"),
	}

	g.httpServer = &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: g.Handler(),
	}

	return g
}

// Handler builds the HTTP route tree. Exposed for tests.
func (g *Gateway) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(g.logger))
	r.Use(chimiddleware.Recoverer)

	// Public endpoints (rate limited: credential guessing surface)
	r.Group(func(r chi.Router) {
		r.Use(g.limiter.middleware)
		r.Post("/register", g.handleRegister)
		r.Post("/token", g.handleLogin)
	})

	// Authenticated API
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(g.authSvc))
		r.Get("/users/me", g.handleMe)
		r.Get("/users", g.handleListUsers)
		r.Get("/messages/{userID}", g.handleMessages)
	})

	// WebSocket relay; the token travels in the path, auth happens after upgrade
	r.Get("/ws/{token}", g.handleWebSocket)

	r.Get("/healthz", g.handleHealth)

	if g.config.Metrics.Enabled {
		path := g.config.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, promhttp.HandlerFor(g.promReg, promhttp.HandlerOpts{}))
	}

	return r
}

// Start runs the HTTP server until the context is cancelled, then shuts down
// gracefully.
func (g *Gateway) Start(ctx context.Context) error {
	g.limiter.start()

	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("HTTP server listening", "addr", g.httpServer.Addr)
		if err := g.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	g.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := g.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}

	g.limiter.Close()
	return nil
}

// handleHealth handles GET /healthz requests.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"active_sessions": g.registry.Len(),
	})
}

// requestLogger logs each HTTP request with method, path, and duration.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
			)
		})
	}
}
