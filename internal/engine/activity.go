package engine

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pushcola/coupon-indexer/internal/aggregate"
	"github.com/pushcola/coupon-indexer/internal/domain"
	"github.com/pushcola/coupon-indexer/internal/identity"
	"github.com/pushcola/coupon-indexer/internal/store"
	"github.com/pushcola/coupon-indexer/internal/store/schema"
)

// loadActivityParents returns the coupon and project an activity event
// applies to, or nil when either is missing
func (e *Engine) loadActivityParents(ctx context.Context, tx store.Store, couponID string, what string) (*schema.Coupon, *schema.Project, error) {
	coupon, err := e.loadCoupon(ctx, tx, couponID)
	if err != nil {
		return nil, nil, err
	}
	if coupon == nil {
		e.diag.Error(ctx, "%s on unknown coupon %s rejected", what, couponID)
		return nil, nil, nil
	}

	project, err := tx.GetProject(ctx, coupon.ProjectID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get project %s: %w", coupon.ProjectID, err)
	}
	if project == nil {
		e.diag.Error(ctx, "%s on coupon %s of unknown project %s rejected", what, couponID, coupon.ProjectID)
		return nil, nil, nil
	}
	return coupon, project, nil
}

func (e *Engine) handleCouponRedeemed(ctx context.Context, tx store.Store, env domain.Envelope, p *domain.CouponRedeemed) (Outcome, error) {
	coupon, project, err := e.loadActivityParents(ctx, tx, couponAddress(p.ContractAddress, env), "redemption")
	if err != nil {
		return OutcomeNoOp, err
	}
	if coupon == nil {
		return OutcomeRejected, nil
	}

	recordID := identity.EventID(env.TxHash, env.LogIndex)
	existing, err := tx.GetCouponRedeemed(ctx, recordID)
	if err != nil {
		return OutcomeNoOp, fmt.Errorf("failed to get redemption %s: %w", recordID, err)
	}
	if existing != nil {
		return OutcomeNoOp, nil
	}

	owner := identity.UserID(p.Owner)
	if !domain.IsZeroAddress(owner) {
		if _, err := aggregate.EnsureUser(ctx, tx, owner, env.BlockNumber, env.BlockTimestamp); err != nil {
			return OutcomeNoOp, err
		}
	}

	affiliate, err := e.resolveAffiliate(ctx, tx, env, p.AffiliateAddress, coupon)
	if err != nil {
		return OutcomeNoOp, err
	}

	record := &schema.CouponRedeemed{
		ID:             recordID,
		CouponID:       coupon.Address,
		ProjectID:      project.ID,
		Owner:          owner,
		TokenID:        aggregate.FromBig(p.TokenID),
		Fee:            decimal.Zero,
		Currency:       identity.Address(p.Currency),
		Timestamp:      aggregate.FromBig(p.Timestamp),
		BlockNumber:    env.BlockNumber,
		BlockTimestamp: env.BlockTimestamp,
		TxHash:         env.TxHash,
		LogIndex:       env.LogIndex,
	}
	if affiliate != nil {
		record.AffiliateID = &affiliate.ID
		record.Fee = coupon.Fee
		if p.Fee != nil {
			record.Fee = aggregate.FromBig(p.Fee)
		}
	}
	if err := tx.CreateCouponRedeemed(ctx, record); err != nil {
		return OutcomeNoOp, fmt.Errorf("failed to create redemption %s: %w", recordID, err)
	}

	if !coupon.IsRedeemed {
		coupon.IsRedeemed = true
		redeemedAt := env.BlockTimestamp
		coupon.RedeemedAt = &redeemedAt
	}
	coupon.TotalRedemptions++
	coupon.UpdatedAtBlock = env.BlockNumber
	project.TotalRedemptions++
	project.UpdatedAtBlock = env.BlockNumber

	if affiliate != nil {
		coupon.TotalAffiliatePayments = aggregate.AddDecimal(coupon.TotalAffiliatePayments, record.Fee)
		project.TotalAffiliatePayments = aggregate.AddDecimal(project.TotalAffiliatePayments, record.Fee)
		affiliate.TotalRedemptions++
		affiliate.TotalEarnings = aggregate.AddDecimal(affiliate.TotalEarnings, record.Fee)
		affiliate.TotalPaidOut = aggregate.AddDecimal(affiliate.TotalPaidOut, record.Fee)
		affiliate.UpdatedAtBlock = env.BlockNumber
		if err := tx.SaveAffiliate(ctx, affiliate); err != nil {
			return OutcomeNoOp, fmt.Errorf("failed to save affiliate %s: %w", affiliate.ID, err)
		}
	}

	if err := tx.SaveCoupon(ctx, coupon); err != nil {
		return OutcomeNoOp, fmt.Errorf("failed to save coupon %s: %w", coupon.Address, err)
	}
	if err := tx.SaveProject(ctx, project); err != nil {
		return OutcomeNoOp, fmt.Errorf("failed to save project %s: %w", project.ID, err)
	}
	return OutcomeApplied, nil
}

func (e *Engine) handleTokenClaimed(ctx context.Context, tx store.Store, env domain.Envelope, p *domain.TokenClaimed) (Outcome, error) {
	coupon, project, err := e.loadActivityParents(ctx, tx, couponAddress(p.ContractAddress, env), "claim")
	if err != nil {
		return OutcomeNoOp, err
	}
	if coupon == nil {
		return OutcomeRejected, nil
	}

	recordID := identity.EventID(env.TxHash, env.LogIndex)
	existing, err := tx.GetTokenClaimed(ctx, recordID)
	if err != nil {
		return OutcomeNoOp, fmt.Errorf("failed to get claim %s: %w", recordID, err)
	}
	if existing != nil {
		return OutcomeNoOp, nil
	}

	claimer := identity.UserID(p.Claimer)
	receiver := identity.UserID(p.Receiver)
	for _, address := range []string{claimer, receiver} {
		if domain.IsZeroAddress(address) {
			continue
		}
		if _, err := aggregate.EnsureUser(ctx, tx, address, env.BlockNumber, env.BlockTimestamp); err != nil {
			return OutcomeNoOp, err
		}
	}

	affiliate, err := e.resolveAffiliate(ctx, tx, env, p.AffiliateAddress, coupon)
	if err != nil {
		return OutcomeNoOp, err
	}

	record := &schema.TokenClaimed{
		ID:             recordID,
		CouponID:       coupon.Address,
		ProjectID:      project.ID,
		Claimer:        claimer,
		Receiver:       receiver,
		TokenID:        aggregate.FromBig(p.TokenID),
		Quantity:       aggregate.FromBig(p.Quantity),
		Timestamp:      aggregate.FromBig(p.Timestamp),
		BlockNumber:    env.BlockNumber,
		BlockTimestamp: env.BlockTimestamp,
		TxHash:         env.TxHash,
		LogIndex:       env.LogIndex,
	}
	if affiliate != nil {
		record.AffiliateID = &affiliate.ID
	}
	if err := tx.CreateTokenClaimed(ctx, record); err != nil {
		return OutcomeNoOp, fmt.Errorf("failed to create claim %s: %w", recordID, err)
	}

	coupon.TotalClaims = aggregate.Add(coupon.TotalClaims, p.Quantity)
	if !domain.IsZeroAddress(receiver) {
		coupon.Owners, _ = aggregate.AppendUnique(coupon.Owners, receiver)
	}
	coupon.UpdatedAtBlock = env.BlockNumber

	project.TotalClaims = aggregate.Add(project.TotalClaims, p.Quantity)
	project.UpdatedAtBlock = env.BlockNumber
	if !domain.IsZeroAddress(claimer) {
		if project.UniqueClaimers, _, err = aggregate.AddUniqueClaimer(ctx, tx, schema.ClaimerScopeProject, project.ID, project.UniqueClaimers, claimer); err != nil {
			return OutcomeNoOp, err
		}
	}

	if affiliate != nil {
		affiliate.TotalClaims = aggregate.Add(affiliate.TotalClaims, p.Quantity)
		affiliate.TotalAccrued = aggregate.AddDecimal(affiliate.TotalAccrued, aggregate.Times(coupon.Fee, p.Quantity))
		affiliate.UpdatedAtBlock = env.BlockNumber
		if !domain.IsZeroAddress(claimer) {
			if affiliate.UniqueClaimers, _, err = aggregate.AddUniqueClaimer(ctx, tx, schema.ClaimerScopeAffiliate, affiliate.ID, affiliate.UniqueClaimers, claimer); err != nil {
				return OutcomeNoOp, err
			}
		}
		if err := tx.SaveAffiliate(ctx, affiliate); err != nil {
			return OutcomeNoOp, fmt.Errorf("failed to save affiliate %s: %w", affiliate.ID, err)
		}
	}

	if err := tx.SaveCoupon(ctx, coupon); err != nil {
		return OutcomeNoOp, fmt.Errorf("failed to save coupon %s: %w", coupon.Address, err)
	}
	if err := tx.SaveProject(ctx, project); err != nil {
		return OutcomeNoOp, fmt.Errorf("failed to save project %s: %w", project.ID, err)
	}
	return OutcomeApplied, nil
}
