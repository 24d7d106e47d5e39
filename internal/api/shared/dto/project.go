package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pushcola/coupon-indexer/internal/store/schema"
)

// ProjectResponse represents a project with optional expansions
type ProjectResponse struct {
	ID                     string          `json:"id"`
	OnchainID              decimal.Decimal `json:"onchain_id"`
	Name                   string          `json:"name"`
	Creator                string          `json:"creator"`
	TotalClaims            decimal.Decimal `json:"total_claims"`
	UniqueClaimers         []string        `json:"unique_claimers"`
	TotalBudgetLocked      decimal.Decimal `json:"total_budget_locked"`
	TotalAffiliatePayments decimal.Decimal `json:"total_affiliate_payments"`
	TotalRedemptions       uint64          `json:"total_redemptions"`
	CouponCount            uint64          `json:"coupon_count"`
	CreatedAtBlock         uint64          `json:"created_at_block"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAtBlock         uint64          `json:"updated_at_block"`

	// Expansions
	Coupons *PaginatedCoupons `json:"coupons,omitempty"`
}

// MapProjectToDTO maps a project row to its response
func MapProjectToDTO(p *schema.Project) *ProjectResponse {
	return &ProjectResponse{
		ID:                     p.ID,
		OnchainID:              p.OnchainID,
		Name:                   p.Name,
		Creator:                p.Creator,
		TotalClaims:            p.TotalClaims,
		UniqueClaimers:         nonNil(p.UniqueClaimers),
		TotalBudgetLocked:      p.TotalBudgetLocked,
		TotalAffiliatePayments: p.TotalAffiliatePayments,
		TotalRedemptions:       p.TotalRedemptions,
		CouponCount:            p.CouponCount,
		CreatedAtBlock:         p.CreatedAtBlock,
		CreatedAt:              p.CreatedAt,
		UpdatedAtBlock:         p.UpdatedAtBlock,
	}
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
