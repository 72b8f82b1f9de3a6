package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/proppoint/internal/api"
	"github.com/eugenenazirov/proppoint/internal/config"
	"github.com/eugenenazirov/proppoint/internal/export"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	state   *State
	handler *api.Handler
	router  http.Handler
	logger  *zap.Logger
	server  *http.Server
}

// New initializes the application from a bootstrapped state.
func New(state *State, logger *zap.Logger) (*App, error) {
	if state == nil || state.Registry == nil || state.Values == nil {
		return nil, errors.New("application state is not bootstrapped")
	}
	cfg := state.Config

	handler := api.NewHandler(state.Registry, state.Values)
	opts := []api.RouterOption{
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}
	if cfg.EnableMetrics && state.Metrics != nil {
		opts = append(opts, api.WithMetrics(state.Metrics.Handler()))
	}
	apiRouter := api.NewRouter(handler, logger, opts...)

	return &App{
		state:   state,
		handler: handler,
		router:  apiRouter,
		logger:  logger,
		server:  NewServer(cfg, BuildRootHandler(apiRouter)),
	}, nil
}

// BuildRootHandler mounts the API router and sends bare visits to the property listing.
func BuildRootHandler(apiHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	mux.Handle("/metrics", apiHandler)
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/api/properties", http.StatusFound)
	}))
	return mux
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start publishes every export group and then serves HTTP in a goroutine.
// Export failures are returned before the server starts.
func (a *App) Start(ctx context.Context) error {
	if err := export.Run(ctx, a.state.Registry, a.state.Values, a.logger); err != nil {
		return fmt.Errorf("export properties: %w", err)
	}

	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Close flushes exporters that buffer output.
func (a *App) Close() error {
	return a.state.Close()
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}
