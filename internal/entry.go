// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/designa/internal/api"
	"github.com/starford/designa/internal/catalog"
	"github.com/starford/designa/internal/contact"
	"github.com/starford/designa/internal/effects"
	"github.com/starford/designa/internal/emailjs"
	"github.com/starford/designa/internal/models"
	"github.com/starford/designa/internal/session"
	"github.com/starford/designa/internal/sse"
	"github.com/starford/designa/internal/store"
	"github.com/starford/designa/internal/sweeper"
	"github.com/starford/designa/internal/viewer"
)

const shutdownTimeout = 10 * time.Second

// markerBackend is a success marker store that can drop expired entries.
type markerBackend interface {
	contact.MarkerStore
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := app.logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: cfg.App.LogLevel,
		}))
	}
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("env", cfg.App.Env),
		slog.String("catalog_dir", cfg.Catalog.Dir),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("marker_backend", cfg.Markers.Backend),
		slog.String("navigation", cfg.Gallery.Navigation),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Load fixtures.
	provider, err := catalog.NewFS(cfg.Catalog.Dir)
	if err != nil {
		return fmt.Errorf("init catalog: %w", err)
	}
	cat, err := catalog.New(provider)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	snap := cat.Snapshot()
	logger.Info("Catalog loaded",
		slog.Int("artworks", len(snap.Artworks)),
		slog.Int("workshops", len(snap.Workshops)),
		slog.String("version", snap.Version))

	// Initialize SQLite store.
	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer db.Close()

	markers, ready, closeMarkers, err := openMarkers(ctx, cfg, db)
	if err != nil {
		return err
	}
	defer closeMarkers()

	// Email delivery.
	creds := contact.Credentials{
		ServiceID:  cfg.Email.ServiceID,
		TemplateID: cfg.Email.TemplateID,
		PublicKey:  cfg.Email.PublicKey,
	}
	if missing := creds.Missing(); len(missing) > 0 {
		logger.Warn("Email credentials missing, contact form will report a configuration error",
			slog.Any("missing", missing))
	}
	sender := app.sender
	if sender == nil {
		sender = emailjs.New(cfg.Email.Endpoint, creds, cfg.Email.Timeout)
	}

	// Artwork viewer.
	policy, err := viewer.ParsePolicy(cfg.Gallery.Navigation)
	if err != nil {
		return fmt.Errorf("gallery: %w", err)
	}
	var prefetcher viewer.Prefetcher = viewer.NopPrefetcher{}
	if cfg.Gallery.PrefetchBaseURL != "" {
		p, err := viewer.NewHTTPPrefetcher(cfg.Gallery.PrefetchBaseURL, logger)
		if err != nil {
			return fmt.Errorf("gallery: %w", err)
		}
		prefetcher = p
	}
	lookup := func(id int) (*models.Artwork, bool) {
		return cat.Snapshot().Artwork(id)
	}

	rules := contact.Rules{
		MinNameLength:    cfg.Contact.MinNameLength,
		MinMessageLength: cfg.Contact.MinMessageLength,
		MaxMessageLength: cfg.Contact.MaxMessageLength,
	}
	sessions := session.NewRegistry(func(id string) (*viewer.Viewer, *contact.Controller) {
		v := viewer.New(lookup,
			viewer.WithPolicy(policy),
			viewer.WithPrefetcher(prefetcher),
			viewer.WithLogger(logger))
		c := contact.NewController(contact.Options{
			VisitorID:       id,
			Rules:           rules,
			Credentials:     creds,
			Sender:          sender,
			Markers:         markers,
			Log:             db,
			SuccessTTL:      cfg.Contact.SuccessTTL,
			ErrorResetDelay: cfg.Contact.ErrorResetDelay,
			Logger:          logger,
		})
		return v, c
	}, cfg.Sessions.IdleTimeout)
	defer sessions.Close()

	// SSE broker.
	broker := sse.NewBroker(cfg.Events.GalleryThrottle)
	defer broker.Close()

	handler := api.NewHandler(api.Deps{
		Catalog:      cat,
		Sessions:     sessions,
		Events:       broker,
		Submissions:  db,
		Ready:        ready,
		PreviewCount: cfg.Gallery.PreviewCount,
		SecureCookie: cfg.Sessions.SecureCookie,
		Effects:      effects.Config{FrameInterval: cfg.Effects.FrameInterval},
		Logger:       logger,
	})
	if !cfg.Auth.AuthEnabled() {
		logger.Warn("Admin routes disabled, set auth.mode to token to enable reload and the submission log")
	}
	router := api.NewRouter(handler, routerConfig(cfg, broker))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start fixture watcher with SSE callback.
	if cfg.Catalog.Watch {
		g.Go(func() error {
			return catalog.Watch(gCtx, cat, logger, broker.PublishCatalogEvent)
		})
	}

	// Drop idle visitor sessions.
	g.Go(func() error {
		return sweeper.New("sessions", cfg.Sessions.SweepInterval, func(_ context.Context, now time.Time) (int, error) {
			return sessions.Sweep(now), nil
		}, logger).Run(gCtx)
	})

	// Drop expired success markers.
	g.Go(func() error {
		return sweeper.New("markers", cfg.Markers.SweepInterval, markers.SweepExpired, logger).Run(gCtx)
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Long-lived SSE streams would hold Shutdown open until the timeout.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		// Unblock the watcher and sweepers when the signal arrived first.
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

var errShutdown = errors.New("shutdown")

func routerConfig(cfg *Config, events http.Handler) api.RouterConfig {
	return api.RouterConfig{
		AuthEnabled:    cfg.Auth.AuthEnabled(),
		Token:          cfg.Auth.Token,
		AllowedOrigins: cfg.App.AllowedOrigins,
		Development:    cfg.App.Development(),
		StaticDir:      cfg.Static.Dir,
		Events:         events,
	}
}

// openMarkers selects the success marker backend. The returned ready func
// checks every external dependency the server needs.
func openMarkers(ctx context.Context, cfg *Config, db *store.DB) (markerBackend, func(context.Context) error, func(), error) {
	sqliteReady := func(context.Context) error { return db.Ping() }

	switch cfg.Markers.Backend {
	case MarkerBackendRedis:
		rm, err := store.NewRedisMarkers(ctx, cfg.Markers.Redis.Address, cfg.Markers.Redis.Password, cfg.Markers.Redis.DB)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("init redis markers: %w", err)
		}
		ready := func(ctx context.Context) error {
			if err := db.Ping(); err != nil {
				return err
			}
			return rm.Ping(ctx)
		}
		return rm, ready, func() { _ = rm.Close() }, nil
	case MarkerBackendMemory:
		return contact.NewMemoryStore(), sqliteReady, func() {}, nil
	default:
		return db, sqliteReady, func() {}, nil
	}
}
