package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

// AffiliateStatus tells how an affiliate row came to exist
type AffiliateStatus string

const (
	// AffiliateStatusRegistered is set once the coupon contract announced the affiliate
	AffiliateStatusRegistered AffiliateStatus = "registered"
	// AffiliateStatusSynthesized is set when activity referenced the affiliate before registration
	AffiliateStatusSynthesized AffiliateStatus = "synthesized"
)

// Affiliate represents the affiliates table - one row per (affiliate address, coupon) pair
type Affiliate struct {
	// ID is keccak256(affiliate-coupon)
	ID        string `gorm:"column:id;primaryKey;type:text"`
	UserID    string `gorm:"column:user_id;type:text;not null;index:idx_affiliates_user_id"`
	CouponID  string `gorm:"column:coupon_id;type:text;not null;index:idx_affiliates_coupon_id"`
	ProjectID string `gorm:"column:project_id;type:text;not null;index:idx_affiliates_project_id"`
	// Status is registered or synthesized
	Status           AffiliateStatus `gorm:"column:status;type:text;not null"`
	TotalClaims      decimal.Decimal `gorm:"column:total_claims;type:numeric(78,0);not null"`
	TotalRedemptions uint64          `gorm:"column:total_redemptions;not null"`
	TotalEarnings    decimal.Decimal `gorm:"column:total_earnings;type:numeric(78,0);not null"`
	TotalPaidOut     decimal.Decimal `gorm:"column:total_paid_out;type:numeric(78,0);not null"`
	// TotalAccrued is the fee earned through claims, fee times quantity.
	// It only grows; settled fees are counted in TotalPaidOut.
	TotalAccrued decimal.Decimal `gorm:"column:total_accrued;type:numeric(78,0);not null"`
	// UniqueClaimers lists claimer addresses in first-seen order
	UniqueClaimers []string  `gorm:"column:unique_claimers;type:jsonb;serializer:json"`
	CreatedAtBlock uint64    `gorm:"column:created_at_block;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;not null"`
	UpdatedAtBlock uint64    `gorm:"column:updated_at_block;not null"`
}

// TableName specifies the table name for the Affiliate model
func (Affiliate) TableName() string {
	return "affiliates"
}
