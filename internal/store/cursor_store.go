package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pushcola/coupon-indexer/internal/store/schema"
)

// CursorStore keeps the emitter's position per chain.
// A cursor is the last block whose events were fully published.
type CursorStore interface {
	// GetBlockCursor returns the cursor of a chain, 0 when unset
	GetBlockCursor(ctx context.Context, chain string) (uint64, error)
	// SetBlockCursor advances the cursor of a chain. Lower block numbers are ignored.
	SetBlockCursor(ctx context.Context, chain string, blockNumber uint64) error
	// GetWatchedContracts lists the watched contracts of a chain in deployment order
	GetWatchedContracts(ctx context.Context, chain string) ([]string, error)
	// CommitRange records the contracts discovered in a published range and
	// advances the cursor to blockNumber in one transaction
	CommitRange(ctx context.Context, chain string, blockNumber uint64, discovered []schema.WatchedContract) error
}

type cursorStore struct {
	db *gorm.DB
}

// NewCursorStore creates a cursor store on db
func NewCursorStore(db *gorm.DB) CursorStore {
	return &cursorStore{db: db}
}

func (s *cursorStore) GetBlockCursor(ctx context.Context, chain string) (uint64, error) {
	var cursor schema.BlockCursor
	err := s.db.WithContext(ctx).Where("chain = ?", chain).First(&cursor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get block cursor: %w", err)
	}
	return cursor.BlockNumber, nil
}

func (s *cursorStore) SetBlockCursor(ctx context.Context, chain string, blockNumber uint64) error {
	return setBlockCursor(s.db.WithContext(ctx), chain, blockNumber)
}

func (s *cursorStore) GetWatchedContracts(ctx context.Context, chain string) ([]string, error) {
	var addresses []string
	err := s.db.WithContext(ctx).
		Model(&schema.WatchedContract{}).
		Where("chain = ?", chain).
		Order("deployed_at_block ASC, address ASC").
		Pluck("address", &addresses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get watched contracts: %w", err)
	}
	return addresses, nil
}

func (s *cursorStore) CommitRange(ctx context.Context, chain string, blockNumber uint64, discovered []schema.WatchedContract) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(discovered) > 0 {
			rows := make([]schema.WatchedContract, len(discovered))
			for i, contract := range discovered {
				contract.Chain = chain
				rows[i] = contract
			}
			err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
			if err != nil {
				return fmt.Errorf("failed to save watched contracts: %w", err)
			}
		}
		return setBlockCursor(tx, chain, blockNumber)
	})
}

func setBlockCursor(db *gorm.DB, chain string, blockNumber uint64) error {
	cursor := schema.BlockCursor{Chain: chain, BlockNumber: blockNumber}

	err := db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chain"}},
			DoUpdates: clause.AssignmentColumns([]string{"block_number", "updated_at"}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: "block_cursors.block_number < excluded.block_number"},
			}},
		}).
		Create(&cursor).Error
	if err != nil {
		return fmt.Errorf("failed to set block cursor: %w", err)
	}
	return nil
}
