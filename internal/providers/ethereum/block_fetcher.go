package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/pushcola/coupon-indexer/internal/block"
)

type blockFetcher struct {
	client EthereumClient
}

// NewBlockFetcher adapts the client to block.BlockFetcher
func NewBlockFetcher(client EthereumClient) block.BlockFetcher {
	return &blockFetcher{client: client}
}

// FetchLatestBlock fetches the latest block number
func (f *blockFetcher) FetchLatestBlock(ctx context.Context) (uint64, error) {
	header, err := f.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest block: %w", err)
	}
	return header.Number.Uint64(), nil
}

// FetchBlockTimestamp fetches the timestamp of a block from its header
func (f *blockFetcher) FetchBlockTimestamp(ctx context.Context, blockNumber uint64) (time.Time, error) {
	header, err := f.client.HeaderByNumber(ctx, new(big.Int).SetUint64(blockNumber))
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get block %d: %w", blockNumber, err)
	}
	return time.Unix(int64(header.Time), 0).UTC(), nil //nolint:gosec,G115
}
