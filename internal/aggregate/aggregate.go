// Package aggregate maintains the derived counters and membership lists shared
// by projects, coupons and affiliates.
//
// Counters only grow: every update is current + delta with delta >= 0, so
// replaying a committed event can never drive a total down.
package aggregate

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pushcola/coupon-indexer/internal/store"
	"github.com/pushcola/coupon-indexer/internal/store/schema"
)

// FromBig converts an on-chain integer to a decimal, treating nil as zero
func FromBig(v *big.Int) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(v, 0)
}

// Add returns current + delta. Nil and negative deltas leave current unchanged.
func Add(current decimal.Decimal, delta *big.Int) decimal.Decimal {
	if delta == nil || delta.Sign() <= 0 {
		return current
	}
	return current.Add(decimal.NewFromBigInt(delta, 0))
}

// AddDecimal returns current + delta. Negative deltas leave current unchanged.
func AddDecimal(current, delta decimal.Decimal) decimal.Decimal {
	if delta.Sign() <= 0 {
		return current
	}
	return current.Add(delta)
}

// Times returns unit * quantity, zero when quantity is nil or negative
func Times(unit decimal.Decimal, quantity *big.Int) decimal.Decimal {
	if quantity == nil || quantity.Sign() <= 0 {
		return decimal.Zero
	}
	return unit.Mul(decimal.NewFromBigInt(quantity, 0))
}

// AppendUnique appends member to list unless already present, preserving
// first-seen order. It reports whether the list changed.
func AppendUnique(list []string, member string) ([]string, bool) {
	for _, existing := range list {
		if existing == member {
			return list, false
		}
	}
	return append(list, member), true
}

// AddUniqueClaimer adds user to the claimer set of (scope, scopeID) and
// returns the ordered list with the user appended when it was not a member.
// Membership is answered by the store index rather than a scan of list.
func AddUniqueClaimer(
	ctx context.Context,
	st store.EntityStore,
	scope schema.ClaimerScope,
	scopeID string,
	list []string,
	user string,
) ([]string, bool, error) {
	member, err := st.HasUniqueClaimer(ctx, scope, scopeID, user)
	if err != nil {
		return list, false, fmt.Errorf("failed to check %s claimer %s: %w", scope, user, err)
	}
	if member {
		return list, false, nil
	}

	if err := st.AddUniqueClaimer(ctx, &schema.UniqueClaimer{
		Scope:    scope,
		ScopeID:  scopeID,
		UserID:   user,
		Position: len(list),
	}); err != nil {
		return list, false, fmt.Errorf("failed to add %s claimer %s: %w", scope, user, err)
	}

	return append(list, user), true, nil
}

// EnsureUser creates the user for address when it does not exist yet.
// It reports whether a user was created.
func EnsureUser(ctx context.Context, st store.EntityStore, address string, block uint64, at time.Time) (bool, error) {
	user, err := st.GetUser(ctx, address)
	if err != nil {
		return false, fmt.Errorf("failed to get user %s: %w", address, err)
	}
	if user != nil {
		return false, nil
	}

	if err := st.SaveUser(ctx, &schema.User{
		Address:        address,
		CreatedAtBlock: block,
		CreatedAt:      at,
	}); err != nil {
		return false, fmt.Errorf("failed to create user %s: %w", address, err)
	}
	return true, nil
}

// NewAffiliate returns an affiliate with zero counters
func NewAffiliate(id, user string, coupon *schema.Coupon, status schema.AffiliateStatus, block uint64, at time.Time) *schema.Affiliate {
	return &schema.Affiliate{
		ID:               id,
		UserID:           user,
		CouponID:         coupon.Address,
		ProjectID:        coupon.ProjectID,
		Status:           status,
		TotalClaims:      decimal.Zero,
		TotalRedemptions: 0,
		TotalEarnings:    decimal.Zero,
		TotalPaidOut:     decimal.Zero,
		TotalAccrued:     decimal.Zero,
		UniqueClaimers:   []string{},
		CreatedAtBlock:   block,
		CreatedAt:        at,
		UpdatedAtBlock:   block,
	}
}
