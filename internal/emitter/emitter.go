package emitter

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/pushcola/coupon-indexer/internal/adapter"
	"github.com/pushcola/coupon-indexer/internal/block"
	"github.com/pushcola/coupon-indexer/internal/domain"
	"github.com/pushcola/coupon-indexer/internal/identity"
	"github.com/pushcola/coupon-indexer/internal/logger"
	"github.com/pushcola/coupon-indexer/internal/messaging"
	"github.com/pushcola/coupon-indexer/internal/metrics"
	ethprovider "github.com/pushcola/coupon-indexer/internal/providers/ethereum"
	"github.com/pushcola/coupon-indexer/internal/store"
	"github.com/pushcola/coupon-indexer/internal/store/schema"
)

const (
	DEFAULT_BATCH_SIZE              = uint64(2_000)
	DEFAULT_POLL_INTERVAL           = 12 * time.Second
	DEFAULT_MAX_ADDRESSES_PER_QUERY = 500
	DEFAULT_MAX_RETRIES             = 5
)

// Config holds the configuration for the event emitter
type Config struct {
	ChainID        domain.Chain
	FactoryAddress string
	// StartBlock is used when no cursor is stored yet; 0 starts from the confirmed head
	StartBlock           uint64
	BatchSize            uint64
	PollInterval         time.Duration
	MaxAddressesPerQuery int
	MaxRetries           uint64
}

// Store is the persistence used by the emitter: its cursor, the coupon
// contracts it discovered itself and those registered by the indexer
//
//go:generate mockgen -source=emitter.go -destination=../mocks/emitter.go -package=mocks -mock_names=Store=MockEmitterStore
type Store interface {
	store.CursorStore
	GetDataSources(ctx context.Context, template schema.DataSourceTemplate) ([]schema.DataSource, error)
}

// Emitter defines the interface for the event emitter
type Emitter interface {
	// Run polls confirmed blocks and publishes their events until ctx is done
	Run(ctx context.Context) error
	// Close closes the emitter and cleans up resources
	Close()
}

type emitter struct {
	client    ethprovider.EthereumClient
	blocks    block.Provider
	publisher messaging.Publisher
	store     Store
	config    Config
	clock     adapter.Clock
	metrics   *metrics.IndexerMetrics
}

// NewEmitter creates a new event emitter
func NewEmitter(
	client ethprovider.EthereumClient,
	blocks block.Provider,
	pub messaging.Publisher,
	st Store,
	cfg Config,
	clock adapter.Clock,
) Emitter {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = DEFAULT_BATCH_SIZE
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = DEFAULT_POLL_INTERVAL
	}
	if cfg.MaxAddressesPerQuery <= 0 {
		cfg.MaxAddressesPerQuery = DEFAULT_MAX_ADDRESSES_PER_QUERY
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DEFAULT_MAX_RETRIES
	}
	return &emitter{
		client:    client,
		blocks:    blocks,
		publisher: pub,
		store:     st,
		config:    cfg,
		clock:     clock,
		metrics:   metrics.Indexer(),
	}
}

// Run starts the polling loop
func (e *emitter) Run(ctx context.Context) error {
	next, err := e.startBlock(ctx)
	if err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		confirmed, err := e.blocks.GetConfirmedBlock(ctx)
		if err != nil {
			return fmt.Errorf("failed to get confirmed block: %w", err)
		}

		if next > confirmed {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-e.clock.After(e.config.PollInterval):
			}
			continue
		}

		to := confirmed
		if to-next+1 > e.config.BatchSize {
			to = next + e.config.BatchSize - 1
		}

		op := func() error {
			return e.processRange(ctx, next, to)
		}
		policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), e.config.MaxRetries), ctx)
		notify := func(err error, d time.Duration) {
			logger.WarnCtx(ctx, "Block range failed, retrying",
				zap.Error(err),
				zap.Uint64("from", next),
				zap.Uint64("to", to),
				zap.Duration("backoff", d))
		}
		if err := backoff.RetryNotify(op, policy, notify); err != nil {
			return fmt.Errorf("%w: blocks %d-%d: %v", domain.ErrSubscriptionFailed, next, to, err)
		}

		next = to + 1
	}
}

// startBlock resumes after the stored cursor, falling back to the configured
// start block and then to the confirmed head
func (e *emitter) startBlock(ctx context.Context) (uint64, error) {
	chain := string(e.config.ChainID)

	cursor, err := e.store.GetBlockCursor(ctx, chain)
	if err != nil {
		return 0, fmt.Errorf("failed to get block cursor: %w", err)
	}
	if cursor > 0 {
		logger.InfoCtx(ctx, "Resuming from last processed block", zap.String("chain", chain), zap.Uint64("block", cursor+1))
		return cursor + 1, nil
	}

	if e.config.StartBlock > 0 {
		logger.InfoCtx(ctx, "Starting from configured block", zap.String("chain", chain), zap.Uint64("block", e.config.StartBlock))
		return e.config.StartBlock, nil
	}

	confirmed, err := e.blocks.GetConfirmedBlock(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get confirmed block: %w", err)
	}
	logger.InfoCtx(ctx, "Starting from confirmed head", zap.String("chain", chain), zap.Uint64("block", confirmed))
	return confirmed, nil
}

// processRange publishes every event in [from, to] in chain order and then
// advances the cursor to `to`
func (e *emitter) processRange(ctx context.Context, from, to uint64) error {
	events, discovered, err := e.collect(ctx, from, to)
	if err != nil {
		return err
	}

	for _, event := range events {
		if err := e.publisher.Publish(ctx, event); err != nil {
			return fmt.Errorf("failed to publish event %s#%d: %w", event.TxHash, event.LogIndex, err)
		}
	}

	chain := string(e.config.ChainID)
	if err := e.store.CommitRange(ctx, chain, to, discovered); err != nil {
		return fmt.Errorf("failed to save block cursor: %w", err)
	}
	e.metrics.SetCursor(chain, to)

	if len(events) > 0 {
		logger.InfoCtx(ctx, "Published block range",
			zap.String("chain", chain),
			zap.Uint64("from", from),
			zap.Uint64("to", to),
			zap.Int("events", len(events)))
	}
	return nil
}

// collect fetches factory logs and the logs of every watched coupon contract,
// including contracts deployed inside the range, which are returned as discovered
func (e *emitter) collect(ctx context.Context, from, to uint64) ([]domain.Event, []schema.WatchedContract, error) {
	factory := common.HexToAddress(e.config.FactoryAddress)
	factoryEvents, err := e.fetch(ctx, from, to, []common.Address{factory}, ethprovider.FactoryTopics())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch factory logs: %w", err)
	}

	discovered := deployedContracts(factoryEvents)
	watched, err := e.watchedCoupons(ctx, discovered)
	if err != nil {
		return nil, nil, err
	}

	events := factoryEvents
	for start := 0; start < len(watched); start += e.config.MaxAddressesPerQuery {
		end := min(start+e.config.MaxAddressesPerQuery, len(watched))
		couponEvents, err := e.fetch(ctx, from, to, watched[start:end], ethprovider.CouponTopics())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to fetch coupon logs: %w", err)
		}
		events = append(events, couponEvents...)
	}

	return orderEvents(events), discovered, nil
}

// deployedContracts lists the coupon contracts deployed by factoryEvents
func deployedContracts(factoryEvents []domain.Event) []schema.WatchedContract {
	var contracts []schema.WatchedContract
	for _, event := range factoryEvents {
		deployed, ok := event.Payload.(*domain.LazyMintDeployed)
		if !ok || domain.IsZeroAddress(deployed.LazyMintAddress) || !common.IsHexAddress(deployed.LazyMintAddress) {
			continue
		}
		contracts = append(contracts, schema.WatchedContract{
			Address:         identity.CouponID(deployed.LazyMintAddress),
			DeployedAtBlock: event.BlockNumber,
		})
	}
	return contracts
}

// watchedCoupons merges the emitter's own watch list, the coupons registered by
// the indexer and the contracts discovered in the current range. The indexer may
// lag behind, so its registrations alone are never enough.
func (e *emitter) watchedCoupons(ctx context.Context, discovered []schema.WatchedContract) ([]common.Address, error) {
	own, err := e.store.GetWatchedContracts(ctx, string(e.config.ChainID))
	if err != nil {
		return nil, fmt.Errorf("failed to get watched contracts: %w", err)
	}
	sources, err := e.store.GetDataSources(ctx, schema.DataSourceLazyMint)
	if err != nil {
		return nil, fmt.Errorf("failed to get watched coupons: %w", err)
	}

	seen := make(map[common.Address]struct{}, len(own)+len(sources)+len(discovered))
	var watched []common.Address
	add := func(addr string) {
		if domain.IsZeroAddress(addr) || !common.IsHexAddress(addr) {
			return
		}
		a := common.HexToAddress(addr)
		if _, ok := seen[a]; ok {
			return
		}
		seen[a] = struct{}{}
		watched = append(watched, a)
	}

	for _, addr := range own {
		add(addr)
	}
	for _, source := range sources {
		add(source.Param)
	}
	for _, contract := range discovered {
		add(contract.Address)
	}
	return watched, nil
}

// fetch queries logs and decodes them; undecodable logs are logged and skipped
func (e *emitter) fetch(ctx context.Context, from, to uint64, addresses []common.Address, topics []common.Hash) ([]domain.Event, error) {
	logs, err := e.client.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(to),
		Addresses: addresses,
		Topics:    [][]common.Hash{topics},
	})
	if err != nil {
		return nil, err
	}

	events := make([]domain.Event, 0, len(logs))
	for _, vLog := range logs {
		if vLog.Removed {
			continue
		}

		ts, err := e.blocks.GetBlockTimestamp(ctx, vLog.BlockNumber)
		if err != nil {
			return nil, err
		}

		event, err := ethprovider.DecodeLog(vLog, ts)
		if err != nil {
			fields := []zap.Field{
				zap.Error(err),
				zap.String("tx", vLog.TxHash.Hex()),
				zap.Uint("logIndex", vLog.Index),
				zap.Uint64("block", vLog.BlockNumber),
			}
			if errors.Is(err, domain.ErrUnsupportedLog) {
				logger.DebugCtx(ctx, "Skipping unsupported log", fields...)
			} else {
				logger.WarnCtx(ctx, "Skipping malformed log", fields...)
			}
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

// orderEvents sorts by (block, logIndex) and drops repeated logs
func orderEvents(events []domain.Event) []domain.Event {
	seen := make(map[string]struct{}, len(events))
	unique := events[:0]
	for _, event := range events {
		id := identity.EventID(event.TxHash, event.LogIndex)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, event)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].Before(unique[j].Envelope)
	})
	return unique
}

// Close closes the chain connection and the publisher
func (e *emitter) Close() {
	e.client.Close()
	e.publisher.Close()
}
