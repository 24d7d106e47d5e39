package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

// Coupon represents the coupons table - one row per deployed lazy-mint contract
type Coupon struct {
	// Address is the lower-case contract address (primary key)
	Address string `gorm:"column:address;primaryKey;type:text"`
	// Owner is the creator, or the latest owner announced by the contract
	Owner string `gorm:"column:owner;type:text;not null;index:idx_coupons_owner"`
	// ProjectID references the owning project
	ProjectID string `gorm:"column:project_id;type:text;not null;index:idx_coupons_project_id"`
	// URI is the contract metadata URI
	URI string `gorm:"column:uri;type:text"`
	// Metadata is the content identifier of the metadata document, when the URI carries one
	Metadata         *string         `gorm:"column:metadata;type:text;index:idx_coupons_metadata"`
	MaxSupply        decimal.Decimal `gorm:"column:max_supply;type:numeric(78,0);not null"`
	LockedBudget     decimal.Decimal `gorm:"column:locked_budget;type:numeric(78,0);not null"`
	Fee              decimal.Decimal `gorm:"column:fee;type:numeric(78,0);not null"`
	ClaimStart       decimal.Decimal `gorm:"column:claim_start;type:numeric(78,0);not null"`
	ClaimEnd         decimal.Decimal `gorm:"column:claim_end;type:numeric(78,0);not null"`
	RedeemExpiration decimal.Decimal `gorm:"column:redeem_expiration;type:numeric(78,0);not null"`
	Currency         string          `gorm:"column:currency;type:text"`
	TokenID          decimal.Decimal `gorm:"column:token_id;type:numeric(78,0);not null"`
	// IsRedeemed is set by the first redemption and never unset
	IsRedeemed bool `gorm:"column:is_redeemed;not null"`
	// RedeemedAt is the block timestamp of the first redemption
	RedeemedAt             *time.Time      `gorm:"column:redeemed_at"`
	TotalClaims            decimal.Decimal `gorm:"column:total_claims;type:numeric(78,0);not null"`
	TotalRedemptions       uint64          `gorm:"column:total_redemptions;not null"`
	TotalAffiliatePayments decimal.Decimal `gorm:"column:total_affiliate_payments;type:numeric(78,0);not null"`
	// Owners lists token receivers in first-seen order
	Owners         []string  `gorm:"column:owners;type:jsonb;serializer:json"`
	CreatedAtBlock uint64    `gorm:"column:created_at_block;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;not null"`
	UpdatedAtBlock uint64    `gorm:"column:updated_at_block;not null"`
}

// TableName specifies the table name for the Coupon model
func (Coupon) TableName() string {
	return "coupons"
}
