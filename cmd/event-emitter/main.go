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
	"github.com/pushcola/coupon-indexer/internal/block"
	"github.com/pushcola/coupon-indexer/internal/config"
	"github.com/pushcola/coupon-indexer/internal/emitter"
	"github.com/pushcola/coupon-indexer/internal/logger"
	"github.com/pushcola/coupon-indexer/internal/metrics"
	"github.com/pushcola/coupon-indexer/internal/providers/ethereum"
	"github.com/pushcola/coupon-indexer/internal/providers/jetstream"
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
	cfg, err := config.LoadEmitterConfig(*configFile, *envPath)
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
			"service": "event-emitter",
			"chain":   string(cfg.Ethereum.ChainID),
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Event Emitter", zap.String("chain", string(cfg.Ethereum.ChainID)))

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

	// Initialize ethereum client
	ethDialer := adapter.NewEthClientDialer()
	adapterEthClient, err := ethDialer.Dial(ctx, cfg.Ethereum.RPCURL)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to dial Ethereum RPC", zap.Error(err))
	}
	ethereumClient := ethereum.NewClient(ethereum.ClientConfig{
		ChainID:      cfg.Ethereum.ChainID,
		LogStep:      cfg.Ethereum.LogStep,
		QueryTimeout: cfg.Ethereum.QueryTimeout,
	}, adapterEthClient)
	defer ethereumClient.Close()
	if err := ethereumClient.VerifyChain(ctx); err != nil {
		logger.FatalCtx(ctx, "Ethereum RPC serves the wrong chain", zap.Error(err))
	}

	blockProvider := block.NewProvider(ethereum.NewBlockFetcher(ethereumClient), block.Config{
		TTL:           cfg.Ethereum.BlockHeadTTL,
		StaleWindow:   cfg.Ethereum.BlockHeadStaleWindow,
		Confirmations: cfg.Ethereum.Confirmations,
	}, clockAdapter)

	// Initialize NATS publisher
	natsPublisher, err := jetstream.NewPublisher(
		ctx,
		jetstream.Config{
			URL:             cfg.NATS.URL,
			StreamName:      cfg.NATS.StreamName,
			SubjectPrefix:   cfg.NATS.SubjectPrefix,
			DuplicateWindow: cfg.NATS.DuplicateWindow,
			MaxReconnects:   cfg.NATS.MaxReconnects,
			ReconnectWait:   cfg.NATS.ReconnectWait,
			ConnectionName:  cfg.NATS.ConnectionName,
		}, natsJS, eventCodec)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create NATS publisher", zap.Error(err), zap.String("url", cfg.NATS.URL))
	}
	defer natsPublisher.Close()
	logger.InfoCtx(ctx, "Connected to NATS JetStream")

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	eventEmitter := emitter.NewEmitter(
		ethereumClient,
		blockProvider,
		natsPublisher,
		dataStore,
		emitter.Config{
			ChainID:              cfg.Ethereum.ChainID,
			FactoryAddress:       cfg.Ethereum.FactoryAddress,
			StartBlock:           cfg.Ethereum.StartBlock,
			BatchSize:            cfg.Polling.BatchSize,
			PollInterval:         cfg.Polling.Interval,
			MaxAddressesPerQuery: cfg.Polling.MaxAddressesPerQuery,
			MaxRetries:           cfg.Polling.MaxRetries,
		},
		clockAdapter,
	)
	defer eventEmitter.Close()

	errCh := make(chan error, 2)

	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Address); err != nil {
				errCh <- err
			}
		}()
	}

	// Start the emitter
	go func() {
		if err := eventEmitter.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "emitter"))
		cancel()
	}

	// Give in-flight publishes time to settle
	time.Sleep(time.Second)

	logger.Info("Event Emitter stopped")
}
