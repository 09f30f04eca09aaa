package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Atul17-std/pokemon-tracker/internal/cloudsync"
	"github.com/Atul17-std/pokemon-tracker/internal/creature"
	"github.com/Atul17-std/pokemon-tracker/internal/curriculum"
	"github.com/Atul17-std/pokemon-tracker/internal/httpapi"
	"github.com/Atul17-std/pokemon-tracker/internal/live"
	"github.com/Atul17-std/pokemon-tracker/internal/platform/cache"
	"github.com/Atul17-std/pokemon-tracker/internal/platform/config"
	"github.com/Atul17-std/pokemon-tracker/internal/platform/database"
	"github.com/Atul17-std/pokemon-tracker/internal/platform/metrics"
	"github.com/Atul17-std/pokemon-tracker/internal/tracker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(os.Stdout, cfg.Log))

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

// newLogger builds the process logger from the log settings.
func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// deps holds the opened backing services. Close releases all of them.
type deps struct {
	store   tracker.RecordStore
	events  tracker.EventLogger
	cache   *cache.Cache
	checks  map[string]httpapi.Check
	closers []func()
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// openDeps connects the configured store and cache.
func openDeps(ctx context.Context, cfg *config.Config) (*deps, error) {
	d := &deps{
		events: tracker.NopEventLogger{},
		checks: make(map[string]httpapi.Check),
	}

	switch cfg.Storage.Driver {
	case config.StorageMemory:
		d.store = tracker.NewMemoryStore()
	case config.StorageSQLite:
		s, err := tracker.OpenSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		d.store = s
		d.checks["sqlite"] = s.HealthCheck
		d.closers = append(d.closers, func() { _ = s.Close() })
	case config.StoragePostgres:
		db, err := database.Open(ctx, cfg.Database.URL, databaseOptions(cfg.Database)...)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		d.closers = append(d.closers, db.Close)
		s, err := tracker.NewPostgresStore(db.Pool)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.store = s
		d.events = tracker.NewPostgresEventLogger(db.Pool)
		d.checks["database"] = db.HealthCheck
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	if cfg.Cache.Enabled {
		c, err := cache.New(ctx, cfg.Cache.URL, cacheOptions(cfg.Cache)...)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("connect cache: %w", err)
		}
		d.cache = c
		d.checks["cache"] = c.HealthCheck
		d.closers = append(d.closers, func() { _ = c.Close() })
	}
	return d, nil
}

func databaseOptions(c config.DatabaseConfig) []database.Option {
	return []database.Option{
		database.WithPoolSize(c.MaxConns, c.MinConns),
		database.WithConnLifetime(
			time.Duration(c.MaxConnLifetimeMinutes)*time.Minute,
			time.Duration(c.MaxConnIdleMinutes)*time.Minute,
		),
	}
}

func cacheOptions(c config.CacheConfig) []cache.Option {
	return []cache.Option{
		cache.WithTimeouts(time.Duration(c.DialTimeoutSeconds)*time.Second, time.Duration(c.IOTimeoutSeconds)*time.Second),
	}
}

func liveOptions(c config.ServerConfig, m *metrics.Metrics) []live.Option {
	opts := []live.Option{live.WithClientCounter(m.LiveClients)}
	if len(c.WSOrigins) > 0 {
		opts = append(opts, live.WithOriginPatterns(c.WSOrigins...))
	}
	return opts
}

// trackerOptions wires the optional collaborators from config.
func trackerOptions(cfg *config.Config, d *deps, m *metrics.Metrics) ([]tracker.Option, error) {
	var lookup creature.Lookup = creature.NewClient(
		creature.WithBaseURL(cfg.Creature.BaseURL),
		creature.WithTimeout(time.Duration(cfg.Creature.TimeoutSeconds)*time.Second),
	)
	if d.cache != nil {
		lookup = creature.NewCachedLookup(lookup, d.cache.Client, time.Duration(cfg.Creature.CacheTTLMinutes)*time.Minute)
	}

	opts := []tracker.Option{
		tracker.WithEventLogger(d.events),
		tracker.WithRecorder(m),
		tracker.WithLookup(lookup, cfg.Creature.MaxID),
	}

	if cfg.Sync.Enabled {
		signer, err := cloudsync.NewSigner([]byte(cfg.Sync.Secret))
		if err != nil {
			return nil, err
		}
		ttl := time.Duration(cfg.Sync.TTLDays) * 24 * time.Hour
		opts = append(opts, tracker.WithPusher(cloudsync.NewRedisPusher(d.cache.Client, signer, ttl)))
	}
	return opts, nil
}

func run(ctx context.Context, cfg *config.Config) error {
	catalog, err := curriculum.Resolve(cfg.Curriculum.Path, cfg.Curriculum.CatalogID)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	slog.Info("catalog loaded", "id", catalog.ID, "semesters", len(catalog.Semesters), "credits", catalog.TotalCredits())

	d, err := openDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	m := metrics.New()
	opts, err := trackerOptions(cfg, d, m)
	if err != nil {
		return err
	}

	// The hub is created after the tracker, which it reads on connect.
	var hub *live.Hub
	opts = append(opts, tracker.WithObserver(observerFunc(func(s tracker.Summary) {
		if hub != nil {
			hub.Notify(s)
		}
	})))

	tr, err := tracker.New(ctx, cfg.ProfileID, catalog.Catalog, d.store, opts...)
	if err != nil {
		return err
	}
	hub = live.NewHub(tr.Summary, liveOptions(cfg.Server, m)...)

	apiOpts := []httpapi.Option{
		httpapi.WithLive(hub),
		httpapi.WithMetrics(m.Handler()),
	}
	for name, check := range d.checks {
		apiOpts = append(apiOpts, httpapi.WithReadinessCheck(name, check))
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      httpapi.New(tr, apiOpts...).Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr, "storage", cfg.Storage.Driver, "sync", cfg.Sync.Enabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	return nil
}

type observerFunc func(tracker.Summary)

func (f observerFunc) Notify(s tracker.Summary) { f(s) }
