package schema

import "time"

// BlockCursor represents the block_cursors table - the last block of each chain
// whose events were all published by the emitter
type BlockCursor struct {
	// Chain is the CAIP-2 chain id
	Chain       string    `gorm:"column:chain;primaryKey;type:text"`
	BlockNumber uint64    `gorm:"column:block_number;not null"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for the BlockCursor model
func (BlockCursor) TableName() string {
	return "block_cursors"
}
