package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pushcola/coupon-indexer/internal/store/schema"
)

// AffiliateResponse represents an affiliate of a coupon
type AffiliateResponse struct {
	ID               string                 `json:"id"`
	Address          string                 `json:"address"`
	CouponAddress    string                 `json:"coupon_address"`
	ProjectID        string                 `json:"project_id"`
	Status           schema.AffiliateStatus `json:"status"`
	TotalClaims      decimal.Decimal        `json:"total_claims"`
	TotalRedemptions uint64                 `json:"total_redemptions"`
	TotalEarnings    decimal.Decimal        `json:"total_earnings"`
	TotalPaidOut     decimal.Decimal        `json:"total_paid_out"`
	TotalAccrued     decimal.Decimal        `json:"total_accrued"`
	UniqueClaimers   []string               `json:"unique_claimers"`
	CreatedAtBlock   uint64                 `json:"created_at_block"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAtBlock   uint64                 `json:"updated_at_block"`
}

// PaginatedAffiliates represents paginated affiliates
type PaginatedAffiliates struct {
	Affiliates []AffiliateResponse `json:"items"`
	Offset     *uint64             `json:"offset,omitempty"`
	Total      uint64              `json:"total"`
}

// MapAffiliateToDTO maps an affiliate row to its response
func MapAffiliateToDTO(a *schema.Affiliate) *AffiliateResponse {
	return &AffiliateResponse{
		ID:               a.ID,
		Address:          a.UserID,
		CouponAddress:    a.CouponID,
		ProjectID:        a.ProjectID,
		Status:           a.Status,
		TotalClaims:      a.TotalClaims,
		TotalRedemptions: a.TotalRedemptions,
		TotalEarnings:    a.TotalEarnings,
		TotalPaidOut:     a.TotalPaidOut,
		TotalAccrued:     a.TotalAccrued,
		UniqueClaimers:   nonNil(a.UniqueClaimers),
		CreatedAtBlock:   a.CreatedAtBlock,
		CreatedAt:        a.CreatedAt,
		UpdatedAtBlock:   a.UpdatedAtBlock,
	}
}
