package schema

import "time"

// WatchedContract represents the watched_contracts table - coupon contracts the
// emitter queries for logs. Rows are written with the cursor of the range that
// deployed the contract, so the emitter never depends on the indexer to learn them.
type WatchedContract struct {
	// Chain is the CAIP-2 chain id
	Chain string `gorm:"column:chain;primaryKey;type:text"`
	// Address is the lower-cased contract address
	Address string `gorm:"column:address;primaryKey;type:text"`
	// DeployedAtBlock is the block of the deployment log
	DeployedAtBlock uint64    `gorm:"column:deployed_at_block;not null;index"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName specifies the table name for the WatchedContract model
func (WatchedContract) TableName() string {
	return "watched_contracts"
}
