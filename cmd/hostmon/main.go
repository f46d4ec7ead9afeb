package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/OldStager01/hostmon/api"
	"github.com/OldStager01/hostmon/internal/logger"
	"github.com/OldStager01/hostmon/internal/metrics"
	"github.com/OldStager01/hostmon/internal/orchestrator"
	"github.com/OldStager01/hostmon/internal/resilience"
	"github.com/OldStager01/hostmon/internal/sampler"
	"github.com/OldStager01/hostmon/internal/store"
	"github.com/OldStager01/hostmon/pkg/config"
	"github.com/OldStager01/hostmon/pkg/database"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	migrate := flag.Bool("migrate", false, "run database migrations and exit")
	dryRun := flag.Bool("dry-run", false, "take one sample into an in-memory store, print it and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if *dryRun {
		cfg.Store.Type = config.StoreMemory
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Setup(cfg.App.LogLevel, cfg.App.Mode)
	logger.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *migrate {
		return runMigrations(ctx, cfg)
	}

	m := metrics.New()

	st, closeStore, err := openStore(ctx, cfg, m)
	if err != nil {
		return err
	}
	defer closeStore()

	host := sampler.Hostname(ctx)
	orch := orchestrator.New(orchestrator.Config{
		Host:            host,
		Source:          newSource(cfg.Source),
		Sink:            st,
		Metrics:         m,
		EventBufferSize: cfg.Events.BufferSize,
	})

	if *dryRun {
		return runDry(ctx, orch)
	}

	server := api.NewServer(api.ServerConfig{
		Mode:       cfg.App.Mode,
		API:        cfg.API,
		WebSocket:  cfg.WebSocket,
		Prometheus: cfg.Prometheus,
		Store:      st,
		Loop:       orch,
		Metrics:    m,
		Events:     orch.SubscribeAllEvents(),
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(server.Start)
	g.Go(func() error {
		return orch.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("Stopped gracefully")
	return nil
}

func newSource(cfg config.SourceConfig) sampler.Source {
	if cfg.Type == config.SourceSynthetic {
		logger.Warn("Using synthetic metrics source")
		return sampler.NewSyntheticSource(sampler.SyntheticSourceConfig{
			BaseCPU:          cfg.Synthetic.BaseCPU,
			BaseMemory:       cfg.Synthetic.BaseMemory,
			Variance:         cfg.Synthetic.Variance,
			TotalMemoryBytes: cfg.Synthetic.TotalMemoryBytes,
		})
	}
	return sampler.NewHostSource()
}

func openStore(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (store.Store, func(), error) {
	if cfg.Store.Type == config.StoreMemory {
		logger.Info("Using in-memory store")
		return store.NewMemoryStore(), func() {}, nil
	}

	db, err := database.New(ctx, cfg.Database.ToDBConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if version, err := db.GetVersion(ctx); err == nil {
		logger.Infof("Database connection established (%s)", version)
	}

	for _, table := range []string{"system_snapshot", "alert"} {
		exists, err := db.TableExists(ctx, table)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		if !exists {
			db.Close()
			return nil, nil, fmt.Errorf("table %s is missing, run with -migrate first", table)
		}
	}

	resilient := store.NewResilientStore(store.NewPostgresStore(db), store.ResilientConfig{
		CircuitBreaker: resilience.CircuitBreakerConfig{
			MaxFailures: cfg.Store.CircuitBreaker.MaxFailures,
			Timeout:     cfg.Store.CircuitBreaker.Timeout,
		},
		Metrics: m,
	})

	return resilient, func() { db.Close() }, nil
}

func runMigrations(ctx context.Context, cfg *config.Config) error {
	db, err := database.New(ctx, cfg.Database.ToDBConfig())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	migrateCtx, cancel := context.WithTimeout(ctx, cfg.Database.MigrationTimeout)
	defer cancel()

	logger.Info("Running database migrations")
	applied, err := database.NewMigrator(db).Run(migrateCtx)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	logger.Infof("Migrations completed successfully (%d applied)", len(applied))
	return nil
}

func runDry(ctx context.Context, orch *orchestrator.Orchestrator) error {
	result, err := orch.RunOnce(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
