package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/pushcola/coupon-indexer/internal/adapter"
	"github.com/pushcola/coupon-indexer/internal/domain"
	"github.com/pushcola/coupon-indexer/internal/logger"
)

const (
	// DEFAULT_LOG_STEP is the widest block range requested in one eth_getLogs call
	DEFAULT_LOG_STEP = uint64(10_000)
	// DEFAULT_QUERY_TIMEOUT bounds one paginated FilterLogs call
	DEFAULT_QUERY_TIMEOUT = time.Minute
)

// EthereumClient is the chain access used by the event emitter
//
//go:generate mockgen -source=client.go -destination=../../mocks/ethereum_client.go -package=mocks -mock_names=EthereumClient=MockEthereumClient
type EthereumClient interface {
	// FilterLogs retrieves every log matching query, splitting the block range as needed
	FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error)

	// VerifyChain fails when the node serves a different chain than configured
	VerifyChain(ctx context.Context) error

	// HeaderByNumber returns a header by number
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)

	// Close closes the connection
	Close()
}

// ClientConfig tunes log pagination
type ClientConfig struct {
	ChainID      domain.Chain
	LogStep      uint64
	QueryTimeout time.Duration
}

type ethereumClient struct {
	config ClientConfig
	client adapter.EthClient
}

// NewClient wraps a dialed node connection
func NewClient(cfg ClientConfig, client adapter.EthClient) EthereumClient {
	if cfg.LogStep == 0 {
		cfg.LogStep = DEFAULT_LOG_STEP
	}
	if cfg.QueryTimeout == 0 {
		cfg.QueryTimeout = DEFAULT_QUERY_TIMEOUT
	}
	return &ethereumClient{config: cfg, client: client}
}

// FilterLogs pages through the query's block range to work around provider
// result limits (10k logs on Infura)
func (c *ethereumClient) FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, c.config.QueryTimeout)
	defer cancel()

	if query.BlockHash != nil {
		return c.client.FilterLogs(timeoutCtx, query)
	}

	fromBlock := big.NewInt(0)
	if query.FromBlock != nil {
		fromBlock = query.FromBlock
	}

	toBlock := query.ToBlock
	if toBlock == nil {
		latest, err := c.client.HeaderByNumber(timeoutCtx, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to get latest block: %w", err)
		}
		toBlock = latest.Number
	}

	if fromBlock.Cmp(toBlock) > 0 {
		return nil, nil
	}

	rangeQuery := query
	rangeQuery.FromBlock = new(big.Int).Set(fromBlock)
	rangeQuery.ToBlock = new(big.Int).Set(toBlock)

	logs, err := c.getLogsWithRetry(timeoutCtx, rangeQuery, c.config.LogStep)
	if err != nil {
		return nil, fmt.Errorf("failed to get logs for range %d-%d: %w", fromBlock.Uint64(), toBlock.Uint64(), err)
	}
	return logs, nil
}

// getLogsWithRetry walks the range in chunks of stepSize blocks and halves the
// step whenever the node rejects a chunk for returning too many results
func (c *ethereumClient) getLogsWithRetry(ctx context.Context, query ethereum.FilterQuery, stepSize uint64) ([]types.Log, error) {
	currentStepSize := stepSize

	var allLogs []types.Log
	currentFrom := new(big.Int).Set(query.FromBlock)

	for currentFrom.Cmp(query.ToBlock) <= 0 {
		currentTo := new(big.Int).Add(currentFrom, new(big.Int).SetUint64(currentStepSize-1))
		if currentTo.Cmp(query.ToBlock) > 0 {
			currentTo.Set(query.ToBlock)
		}

		chunk := query
		chunk.FromBlock = new(big.Int).Set(currentFrom)
		chunk.ToBlock = new(big.Int).Set(currentTo)

		logs, err := c.client.FilterLogs(ctx, chunk)
		if err == nil {
			allLogs = append(allLogs, logs...)
			currentFrom.SetUint64(currentTo.Uint64() + 1)
			continue
		}

		if !isTooManyResultsError(err) {
			return nil, err
		}
		if currentStepSize == 1 {
			return nil, fmt.Errorf("block %d alone exceeds the provider limit: %w", currentFrom.Uint64(), err)
		}

		currentStepSize = currentStepSize / 2

		logger.WarnCtx(ctx, "Too many results, reducing step size",
			zap.String("chain", string(c.config.ChainID)),
			zap.Uint64("oldStepSize", currentStepSize*2),
			zap.Uint64("newStepSize", currentStepSize),
			zap.Uint64("fromBlock", currentFrom.Uint64()),
			zap.Uint64("toBlock", currentTo.Uint64()))
	}

	return allLogs, nil
}

// isTooManyResultsError checks if the error is related to too many results
func isTooManyResultsError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "query returned more than 10000 results") ||
		strings.Contains(errStr, "query timeout exceeded") ||
		strings.Contains(errStr, "too many results") ||
		strings.Contains(errStr, "exceeded maximum") ||
		strings.Contains(errStr, "block range is too wide")
}

// VerifyChain compares the node's chain id with the configured chain
func (c *ethereumClient) VerifyChain(ctx context.Context) error {
	want, ok := c.config.ChainID.EVMChainID()
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedChain, c.config.ChainID)
	}

	got, err := c.client.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("failed to get chain id: %w", err)
	}
	if got.Cmp(want) != 0 {
		return fmt.Errorf("%w: node serves eip155:%s, configured %s", domain.ErrUnsupportedChain, got, c.config.ChainID)
	}
	return nil
}

// HeaderByNumber returns a header by number
func (c *ethereumClient) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	return c.client.HeaderByNumber(ctx, number)
}

// Close closes the connection
func (c *ethereumClient) Close() {
	if c.client == nil {
		return
	}
	c.client.Close()
	logger.Info("Ethereum RPC connection closed", zap.String("chain", string(c.config.ChainID)))
}
