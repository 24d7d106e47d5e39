package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pushcola/coupon-indexer/internal/store/schema"
)

// RedemptionResponse represents a coupon redemption
type RedemptionResponse struct {
	ID             string          `json:"id"`
	CouponAddress  string          `json:"coupon_address"`
	ProjectID      string          `json:"project_id"`
	AffiliateID    *string         `json:"affiliate_id"`
	Owner          string          `json:"owner"`
	TokenID        decimal.Decimal `json:"token_id"`
	Fee            decimal.Decimal `json:"fee"`
	Currency       string          `json:"currency"`
	Timestamp      decimal.Decimal `json:"timestamp"`
	BlockNumber    uint64          `json:"block_number"`
	BlockTimestamp time.Time       `json:"block_timestamp"`
	TxHash         string          `json:"tx_hash"`
	LogIndex       uint            `json:"log_index"`
}

// ClaimResponse represents a token claim
type ClaimResponse struct {
	ID             string          `json:"id"`
	CouponAddress  string          `json:"coupon_address"`
	ProjectID      string          `json:"project_id"`
	AffiliateID    *string         `json:"affiliate_id"`
	Claimer        string          `json:"claimer"`
	Receiver       string          `json:"receiver"`
	TokenID        decimal.Decimal `json:"token_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	Timestamp      decimal.Decimal `json:"timestamp"`
	BlockNumber    uint64          `json:"block_number"`
	BlockTimestamp time.Time       `json:"block_timestamp"`
	TxHash         string          `json:"tx_hash"`
	LogIndex       uint            `json:"log_index"`
}

// RedemptionListResponse represents paginated redemptions in chain order
type RedemptionListResponse struct {
	Redemptions []RedemptionResponse `json:"items"`
	Offset      *uint64              `json:"offset,omitempty"`
	Total       uint64               `json:"total"`
}

// ClaimListResponse represents paginated claims in chain order
type ClaimListResponse struct {
	Claims []ClaimResponse `json:"items"`
	Offset *uint64         `json:"offset,omitempty"`
	Total  uint64          `json:"total"`
}

// MapRedemptionToDTO maps a redemption record to its response
func MapRedemptionToDTO(r *schema.CouponRedeemed) *RedemptionResponse {
	return &RedemptionResponse{
		ID:             r.ID,
		CouponAddress:  r.CouponID,
		ProjectID:      r.ProjectID,
		AffiliateID:    r.AffiliateID,
		Owner:          r.Owner,
		TokenID:        r.TokenID,
		Fee:            r.Fee,
		Currency:       r.Currency,
		Timestamp:      r.Timestamp,
		BlockNumber:    r.BlockNumber,
		BlockTimestamp: r.BlockTimestamp,
		TxHash:         r.TxHash,
		LogIndex:       r.LogIndex,
	}
}

// MapClaimToDTO maps a claim record to its response
func MapClaimToDTO(c *schema.TokenClaimed) *ClaimResponse {
	return &ClaimResponse{
		ID:             c.ID,
		CouponAddress:  c.CouponID,
		ProjectID:      c.ProjectID,
		AffiliateID:    c.AffiliateID,
		Claimer:        c.Claimer,
		Receiver:       c.Receiver,
		TokenID:        c.TokenID,
		Quantity:       c.Quantity,
		Timestamp:      c.Timestamp,
		BlockNumber:    c.BlockNumber,
		BlockTimestamp: c.BlockTimestamp,
		TxHash:         c.TxHash,
		LogIndex:       c.LogIndex,
	}
}
