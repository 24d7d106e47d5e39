package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pushcola/coupon-indexer/internal/store/schema"
)

// CouponResponse represents a coupon contract with optional expansions
type CouponResponse struct {
	Address                string          `json:"address"`
	Owner                  string          `json:"owner"`
	ProjectID              string          `json:"project_id"`
	URI                    string          `json:"uri"`
	MetadataID             *string         `json:"metadata_id"`
	MaxSupply              decimal.Decimal `json:"max_supply"`
	LockedBudget           decimal.Decimal `json:"locked_budget"`
	Fee                    decimal.Decimal `json:"fee"`
	ClaimStart             decimal.Decimal `json:"claim_start"`
	ClaimEnd               decimal.Decimal `json:"claim_end"`
	RedeemExpiration       decimal.Decimal `json:"redeem_expiration"`
	Currency               string          `json:"currency"`
	TokenID                decimal.Decimal `json:"token_id"`
	IsRedeemed             bool            `json:"is_redeemed"`
	RedeemedAt             *time.Time      `json:"redeemed_at"`
	TotalClaims            decimal.Decimal `json:"total_claims"`
	TotalRedemptions       uint64          `json:"total_redemptions"`
	TotalAffiliatePayments decimal.Decimal `json:"total_affiliate_payments"`
	Owners                 []string        `json:"owners"`
	CreatedAtBlock         uint64          `json:"created_at_block"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAtBlock         uint64          `json:"updated_at_block"`

	// Expansions
	Metadata   *MetadataResponse    `json:"metadata,omitempty"`
	Affiliates *PaginatedAffiliates `json:"affiliates,omitempty"`
}

// PaginatedCoupons represents paginated coupons
type PaginatedCoupons struct {
	Coupons []CouponResponse `json:"items"`
	Offset  *uint64          `json:"offset,omitempty"`
	Total   uint64           `json:"total"`
}

// MapCouponToDTO maps a coupon row to its response
func MapCouponToDTO(c *schema.Coupon) *CouponResponse {
	return &CouponResponse{
		Address:                c.Address,
		Owner:                  c.Owner,
		ProjectID:              c.ProjectID,
		URI:                    c.URI,
		MetadataID:             c.Metadata,
		MaxSupply:              c.MaxSupply,
		LockedBudget:           c.LockedBudget,
		Fee:                    c.Fee,
		ClaimStart:             c.ClaimStart,
		ClaimEnd:               c.ClaimEnd,
		RedeemExpiration:       c.RedeemExpiration,
		Currency:               c.Currency,
		TokenID:                c.TokenID,
		IsRedeemed:             c.IsRedeemed,
		RedeemedAt:             c.RedeemedAt,
		TotalClaims:            c.TotalClaims,
		TotalRedemptions:       c.TotalRedemptions,
		TotalAffiliatePayments: c.TotalAffiliatePayments,
		Owners:                 nonNil(c.Owners),
		CreatedAtBlock:         c.CreatedAtBlock,
		CreatedAt:              c.CreatedAt,
		UpdatedAtBlock:         c.UpdatedAtBlock,
	}
}
