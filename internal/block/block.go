package block

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pushcola/coupon-indexer/internal/adapter"
	"github.com/pushcola/coupon-indexer/internal/logger"
)

// DEFAULT_MAX_CACHED_TIMESTAMPS bounds the block timestamp cache
const DEFAULT_MAX_CACHED_TIMESTAMPS = 10_000

// BlockInfo represents cached block information
type BlockInfo struct {
	Number    uint64
	Timestamp time.Time
}

// BlockTimestampCache represents cached timestamp for a specific block number
type BlockTimestampCache struct {
	Timestamp time.Time
	CachedAt  time.Time
}

// Provider provides cached access to the chain head and block timestamps.
// The emitter only reads ranges up to GetConfirmedBlock so that reorged logs
// are never published.
//
//go:generate mockgen -source=block.go -destination=../mocks/block.go -package=mocks -mock_names=Provider=MockBlockProvider
type Provider interface {
	// GetLatestBlock returns the latest block number, potentially from cache
	GetLatestBlock(ctx context.Context) (uint64, error)

	// GetConfirmedBlock returns the latest block that is Confirmations deep, 0 when the chain is shorter
	GetConfirmedBlock(ctx context.Context) (uint64, error)

	// GetBlockTimestamp returns the timestamp for a given block number, potentially from cache
	GetBlockTimestamp(ctx context.Context, blockNumber uint64) (time.Time, error)
}

// BlockFetcher is the interface for fetching block information from the blockchain
//
//go:generate mockgen -source=block.go -destination=../mocks/block.go -package=mocks -mock_names=BlockFetcher=MockBlockFetcher
type BlockFetcher interface {
	// FetchLatestBlock fetches the latest block from the blockchain
	FetchLatestBlock(ctx context.Context) (uint64, error)

	// FetchBlockTimestamp fetches the timestamp for a given block number
	FetchBlockTimestamp(ctx context.Context, blockNumber uint64) (time.Time, error)
}

// Config holds configuration for the Provider
type Config struct {
	// TTL is how long to cache the block number
	TTL time.Duration

	// StaleWindow is how long to use stale data if fetching fails
	StaleWindow time.Duration

	// BlockTimestampTTL is how long to cache block timestamps, 0 caches forever
	BlockTimestampTTL time.Duration

	// Confirmations is the depth a block must reach before it is considered final
	Confirmations uint64

	// MaxCachedTimestamps bounds the timestamp cache, DEFAULT_MAX_CACHED_TIMESTAMPS when 0
	MaxCachedTimestamps int
}

type provider struct {
	fetcher BlockFetcher
	config  Config
	clock   adapter.Clock

	mu              sync.RWMutex
	blockInfo       *BlockInfo
	blockTimestamps map[uint64]*BlockTimestampCache
}

// NewProvider creates a new Provider with caching
func NewProvider(fetcher BlockFetcher, config Config, clock adapter.Clock) Provider {
	if config.MaxCachedTimestamps <= 0 {
		config.MaxCachedTimestamps = DEFAULT_MAX_CACHED_TIMESTAMPS
	}
	return &provider{
		fetcher:         fetcher,
		config:          config,
		clock:           clock,
		blockTimestamps: make(map[uint64]*BlockTimestampCache),
	}
}

// GetLatestBlock returns the latest block number, using cache if valid
func (p *provider) GetLatestBlock(ctx context.Context) (uint64, error) {
	p.mu.RLock()
	cached := p.blockInfo
	p.mu.RUnlock()

	now := p.clock.Now()

	if cached != nil && now.Sub(cached.Timestamp) < p.config.TTL {
		logger.DebugCtx(ctx, "Using cached block number", zap.Uint64("block_number", cached.Number))
		return cached.Number, nil
	}

	logger.DebugCtx(ctx, "Fetching latest block number from chain")
	blockNumber, err := p.fetcher.FetchLatestBlock(ctx)
	if err != nil {
		if cached != nil && now.Sub(cached.Timestamp) < p.config.StaleWindow {
			logger.DebugCtx(ctx, "Using stale block number", zap.Uint64("block_number", cached.Number))
			return cached.Number, nil
		}
		return 0, fmt.Errorf("failed to fetch latest block and no valid cache available: %w", err)
	}

	p.mu.Lock()
	p.blockInfo = &BlockInfo{
		Number:    blockNumber,
		Timestamp: now,
	}
	p.mu.Unlock()

	return blockNumber, nil
}

// GetConfirmedBlock returns the head minus the configured confirmation depth
func (p *provider) GetConfirmedBlock(ctx context.Context) (uint64, error) {
	latest, err := p.GetLatestBlock(ctx)
	if err != nil {
		return 0, err
	}
	if latest < p.config.Confirmations {
		return 0, nil
	}
	return latest - p.config.Confirmations, nil
}

// GetBlockTimestamp returns the timestamp for a given block number, using cache if valid
func (p *provider) GetBlockTimestamp(ctx context.Context, blockNumber uint64) (time.Time, error) {
	p.mu.RLock()
	cached := p.blockTimestamps[blockNumber]
	p.mu.RUnlock()

	now := p.clock.Now()

	if cached != nil && (p.config.BlockTimestampTTL == 0 || now.Sub(cached.CachedAt) < p.config.BlockTimestampTTL) {
		logger.DebugCtx(ctx, "Using cached block timestamp",
			zap.Uint64("block_number", blockNumber),
			zap.Time("timestamp", cached.Timestamp))
		return cached.Timestamp, nil
	}

	logger.DebugCtx(ctx, "Fetching block timestamp from chain", zap.Uint64("block_number", blockNumber))
	timestamp, err := p.fetcher.FetchBlockTimestamp(ctx, blockNumber)
	if err != nil {
		if cached != nil && now.Sub(cached.CachedAt) < p.config.StaleWindow {
			logger.DebugCtx(ctx, "Using stale block timestamp",
				zap.Uint64("block_number", blockNumber),
				zap.Time("timestamp", cached.Timestamp))
			return cached.Timestamp, nil
		}
		return time.Time{}, fmt.Errorf("failed to fetch block timestamp for block %d and no valid cache available: %w", blockNumber, err)
	}

	p.mu.Lock()
	if len(p.blockTimestamps) >= p.config.MaxCachedTimestamps {
		p.evictBelow(blockNumber)
	}
	p.blockTimestamps[blockNumber] = &BlockTimestampCache{
		Timestamp: timestamp,
		CachedAt:  now,
	}
	p.mu.Unlock()

	return timestamp, nil
}

// evictBelow drops cached timestamps older than blockNumber. The emitter
// walks forward, so older blocks are not asked for again. Caller holds mu.
func (p *provider) evictBelow(blockNumber uint64) {
	for n := range p.blockTimestamps {
		if n < blockNumber {
			delete(p.blockTimestamps, n)
		}
	}
	if len(p.blockTimestamps) >= p.config.MaxCachedTimestamps {
		p.blockTimestamps = make(map[uint64]*BlockTimestampCache)
	}
}
