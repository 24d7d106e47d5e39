package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/pushcola/coupon-indexer/internal/adapter"
	"github.com/pushcola/coupon-indexer/internal/config"
	"github.com/pushcola/coupon-indexer/internal/diagnostics"
	"github.com/pushcola/coupon-indexer/internal/engine"
	"github.com/pushcola/coupon-indexer/internal/logger"
	"github.com/pushcola/coupon-indexer/internal/metadata"
	"github.com/pushcola/coupon-indexer/internal/metrics"
	"github.com/pushcola/coupon-indexer/internal/providers/jetstream"
	"github.com/pushcola/coupon-indexer/internal/runner"
	"github.com/pushcola/coupon-indexer/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadIndexerConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "indexer",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Indexer")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	if err := store.Migrate(db); err != nil {
		logger.FatalCtx(ctx, "Failed to migrate database", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database")

	// Initialize store
	dataStore := store.NewPGStore(db)

	// Initialize adapters
	clockAdapter := adapter.NewClock()
	eventCodec := adapter.NewEventCodec()
	natsJS := adapter.NewNatsJetStream()
	httpClient := adapter.NewHTTPClient(cfg.Metadata.HTTPTimeout, cfg.Metadata.MaxElapsedTime)

	// Metadata documents are fetched out of band and fed back through the runner
	fetcher := metadata.NewFetcher(ctx, metadata.FetcherConfig{
		Gateways:  cfg.Metadata.IPFSGateways,
		Workers:   cfg.Metadata.Workers,
		QueueSize: cfg.Metadata.QueueSize,
	}, httpClient)
	defer fetcher.Close()

	reconciler := engine.New(dataStore, diagnostics.NewZapSink(), fetcher, clockAdapter)

	eventRunner, err := runner.NewRunner(
		runner.Config{
			JetStream: jetstream.Config{
				URL:             cfg.NATS.URL,
				StreamName:      cfg.NATS.StreamName,
				SubjectPrefix:   cfg.NATS.SubjectPrefix,
				DuplicateWindow: cfg.NATS.DuplicateWindow,
				MaxReconnects:   cfg.NATS.MaxReconnects,
				ReconnectWait:   cfg.NATS.ReconnectWait,
				ConnectionName:  cfg.NATS.ConnectionName,
			},
			ConsumerName:   cfg.NATS.ConsumerName,
			AckWaitTimeout: cfg.NATS.AckWait,
			MaxDeliver:     cfg.NATS.MaxDeliver,
		},
		natsJS,
		reconciler,
		fetcher,
		dataStore,
		eventCodec,
	)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create event runner", zap.Error(err), zap.String("url", cfg.NATS.URL))
	}
	defer eventRunner.Close()
	logger.InfoCtx(ctx, "Connected to NATS JetStream")

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 2)

	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Address); err != nil {
				errCh <- err
			}
		}()
	}

	go func() {
		if err := eventRunner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "runner"))
		cancel()
	}

	// Let the in-flight event finish before closing the connection
	time.Sleep(time.Second)

	logger.Info("Indexer stopped")
}
