package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

// Project represents the projects table - a campaign grouping coupons
type Project struct {
	// ID is the 32-byte hex encoding of the on-chain project id
	ID string `gorm:"column:id;primaryKey;type:text"`
	// OnchainID is the project id as emitted by the factory
	OnchainID decimal.Decimal `gorm:"column:onchain_id;type:numeric(78,0);not null"`
	// Name is the first non-empty name announced for the project
	Name string `gorm:"column:name;type:text;not null"`
	// Creator is the address that opened the project
	Creator string `gorm:"column:creator;type:text;index:idx_projects_creator"`
	// TotalClaims is the number of tokens claimed across all coupons
	TotalClaims decimal.Decimal `gorm:"column:total_claims;type:numeric(78,0);not null"`
	// UniqueClaimers lists claimer addresses in first-seen order
	UniqueClaimers []string `gorm:"column:unique_claimers;type:jsonb;serializer:json"`
	// TotalBudgetLocked is the sum of budgets locked by deployments and affiliate onboarding
	TotalBudgetLocked decimal.Decimal `gorm:"column:total_budget_locked;type:numeric(78,0);not null"`
	// TotalAffiliatePayments is the sum of fees paid to affiliates on redemption
	TotalAffiliatePayments decimal.Decimal `gorm:"column:total_affiliate_payments;type:numeric(78,0);not null"`
	// TotalRedemptions is the number of redemptions across all coupons
	TotalRedemptions uint64 `gorm:"column:total_redemptions;not null"`
	// CouponCount is the number of coupons deployed under the project
	CouponCount uint64 `gorm:"column:coupon_count;not null"`
	CreatedAtBlock uint64    `gorm:"column:created_at_block;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;not null"`
	UpdatedAtBlock uint64    `gorm:"column:updated_at_block;not null"`
}

// TableName specifies the table name for the Project model
func (Project) TableName() string {
	return "projects"
}
