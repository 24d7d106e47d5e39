package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

// TokenClaimed represents the token_claims table - write-once claim records
type TokenClaimed struct {
	// ID is the transaction hash followed by the little-endian log index
	ID          string          `gorm:"column:id;primaryKey;type:text"`
	CouponID    string          `gorm:"column:coupon_id;type:text;not null;index:idx_token_claims_coupon_id"`
	ProjectID   string          `gorm:"column:project_id;type:text;not null;index:idx_token_claims_project_id"`
	AffiliateID *string         `gorm:"column:affiliate_id;type:text;index:idx_token_claims_affiliate_id"`
	Claimer     string          `gorm:"column:claimer;type:text;not null;index:idx_token_claims_claimer"`
	Receiver    string          `gorm:"column:receiver;type:text;not null"`
	TokenID     decimal.Decimal `gorm:"column:token_id;type:numeric(78,0);not null"`
	Quantity    decimal.Decimal `gorm:"column:quantity;type:numeric(78,0);not null"`
	// Timestamp is the contract-reported claim time in seconds
	Timestamp      decimal.Decimal `gorm:"column:timestamp;type:numeric(78,0);not null"`
	BlockNumber    uint64          `gorm:"column:block_number;not null"`
	BlockTimestamp time.Time       `gorm:"column:block_timestamp;not null"`
	TxHash         string          `gorm:"column:tx_hash;type:text;not null"`
	LogIndex       uint            `gorm:"column:log_index;not null"`
}

// TableName specifies the table name for the TokenClaimed model
func (TokenClaimed) TableName() string {
	return "token_claims"
}
