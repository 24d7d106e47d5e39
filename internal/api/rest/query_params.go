package rest

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"

	"github.com/pushcola/coupon-indexer/internal/api/shared/constants"
	"github.com/pushcola/coupon-indexer/internal/api/shared/executor"
	"github.com/pushcola/coupon-indexer/internal/api/shared/types"
	"github.com/pushcola/coupon-indexer/internal/identity"
)

// PageQueryParams holds pagination parameters for list endpoints
type PageQueryParams struct {
	Limit  int    `form:"limit,default=50"`
	Offset uint64 `form:"offset,default=0"`
}

// GetProjectQueryParams holds query parameters for GET /projects/:id
type GetProjectQueryParams struct {
	Expand []string `form:"expand"`

	// Coupons expansion parameters
	CouponLimit  int    `form:"coupons.limit,default=20"`
	CouponOffset uint64 `form:"coupons.offset,default=0"`
}

// GetCouponQueryParams holds query parameters for GET /coupons/:address
type GetCouponQueryParams struct {
	Expand []string `form:"expand"`

	// Affiliates expansion parameters
	AffiliateLimit  int    `form:"affiliates.limit,default=20"`
	AffiliateOffset uint64 `form:"affiliates.offset,default=0"`
}

// ParsePageQuery parses pagination parameters
func ParsePageQuery(c *gin.Context) (executor.Page, error) {
	var params PageQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return executor.Page{}, err
	}

	limit, err := capLimit(params.Limit)
	if err != nil {
		return executor.Page{}, err
	}
	return executor.Page{Limit: limit, Offset: params.Offset}, nil
}

// ParseGetProjectQuery parses query parameters for GET /projects/:id
func ParseGetProjectQuery(c *gin.Context) ([]types.Expansion, executor.Page, error) {
	var params GetProjectQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, executor.Page{}, err
	}

	expand, err := parseExpansions(params.Expand, types.ExpansionCoupons)
	if err != nil {
		return nil, executor.Page{}, err
	}

	limit, err := capLimit(params.CouponLimit)
	if err != nil {
		return nil, executor.Page{}, err
	}
	return expand, executor.Page{Limit: limit, Offset: params.CouponOffset}, nil
}

// ParseGetCouponQuery parses query parameters for GET /coupons/:address
func ParseGetCouponQuery(c *gin.Context) ([]types.Expansion, executor.Page, error) {
	var params GetCouponQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, executor.Page{}, err
	}

	expand, err := parseExpansions(params.Expand, types.ExpansionAffiliates, types.ExpansionMetadata)
	if err != nil {
		return nil, executor.Page{}, err
	}

	limit, err := capLimit(params.AffiliateLimit)
	if err != nil {
		return nil, executor.Page{}, err
	}
	return expand, executor.Page{Limit: limit, Offset: params.AffiliateOffset}, nil
}

// parseExpansions accepts repeated or comma-separated expansions limited to allowed
func parseExpansions(raw []string, allowed ...types.Expansion) ([]types.Expansion, error) {
	var result []types.Expansion
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			exp := types.Expansion(strings.TrimSpace(part))
			if exp == "" {
				continue
			}
			if !contains(allowed, exp) {
				return nil, fmt.Errorf("unsupported expansion: %s", exp)
			}
			result = append(result, exp)
		}
	}
	return result, nil
}

func contains(allowed []types.Expansion, exp types.Expansion) bool {
	for _, a := range allowed {
		if a == exp {
			return true
		}
	}
	return false
}

func capLimit(limit int) (int, error) {
	if limit < 1 {
		return 0, fmt.Errorf("limit must be positive")
	}
	if limit > constants.MAX_PAGE_SIZE {
		return constants.MAX_PAGE_SIZE, nil
	}
	return limit, nil
}

// ParseProjectID accepts a project id as a decimal number or as 0x-prefixed hex
// of at most 32 bytes, and returns its canonical id
func ParseProjectID(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	id := new(big.Int)
	var ok bool
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		digits := raw[2:]
		if digits == "" || len(digits) > 2*common.HashLength {
			return "", false
		}
		_, ok = id.SetString(digits, 16)
	} else {
		_, ok = id.SetString(raw, 10)
	}
	if !ok || id.Sign() < 0 || id.BitLen() > 8*common.HashLength {
		return "", false
	}

	return identity.ProjectID(id), true
}

// ParseAddress validates a contract address and returns its canonical form
func ParseAddress(raw string) (string, bool) {
	if !common.IsHexAddress(raw) {
		return "", false
	}
	return identity.CouponID(raw), true
}

// ParseHashID validates a 32-byte hex id such as an affiliate id
func ParseHashID(raw string) (string, bool) {
	b, err := hexutil.Decode(strings.TrimSpace(raw))
	if err != nil || len(b) != common.HashLength {
		return "", false
	}
	return hexutil.Encode(b), true
}
