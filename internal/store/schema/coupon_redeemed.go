package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

// CouponRedeemed represents the coupon_redemptions table - write-once redemption records
type CouponRedeemed struct {
	// ID is the transaction hash followed by the little-endian log index
	ID        string `gorm:"column:id;primaryKey;type:text"`
	CouponID  string `gorm:"column:coupon_id;type:text;not null;index:idx_coupon_redemptions_coupon_id"`
	ProjectID string `gorm:"column:project_id;type:text;not null;index:idx_coupon_redemptions_project_id"`
	// AffiliateID is set when the redemption credited an affiliate
	AffiliateID *string         `gorm:"column:affiliate_id;type:text;index:idx_coupon_redemptions_affiliate_id"`
	Owner       string          `gorm:"column:owner;type:text;not null;index:idx_coupon_redemptions_owner"`
	TokenID     decimal.Decimal `gorm:"column:token_id;type:numeric(78,0);not null"`
	// Fee is the fee credited to the affiliate, zero without one
	Fee      decimal.Decimal `gorm:"column:fee;type:numeric(78,0);not null"`
	Currency string          `gorm:"column:currency;type:text"`
	// Timestamp is the contract-reported redemption time in seconds
	Timestamp      decimal.Decimal `gorm:"column:timestamp;type:numeric(78,0);not null"`
	BlockNumber    uint64          `gorm:"column:block_number;not null"`
	BlockTimestamp time.Time       `gorm:"column:block_timestamp;not null"`
	TxHash         string          `gorm:"column:tx_hash;type:text;not null"`
	LogIndex       uint            `gorm:"column:log_index;not null"`
}

// TableName specifies the table name for the CouponRedeemed model
func (CouponRedeemed) TableName() string {
	return "coupon_redemptions"
}
