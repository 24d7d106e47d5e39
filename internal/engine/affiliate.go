package engine

import (
	"context"
	"fmt"

	"github.com/pushcola/coupon-indexer/internal/aggregate"
	"github.com/pushcola/coupon-indexer/internal/domain"
	"github.com/pushcola/coupon-indexer/internal/identity"
	"github.com/pushcola/coupon-indexer/internal/store"
	"github.com/pushcola/coupon-indexer/internal/store/schema"
)

func (e *Engine) handleAffiliateRegistered(ctx context.Context, tx store.Store, env domain.Envelope, p *domain.AffiliateRegistered) (Outcome, error) {
	couponID := couponAddress(p.ContractAddress, env)
	coupon, err := e.loadCoupon(ctx, tx, couponID)
	if err != nil {
		return OutcomeNoOp, err
	}
	if coupon == nil {
		e.diag.Error(ctx, "affiliate registration on unknown coupon %s rejected", couponID)
		return OutcomeRejected, nil
	}

	userID := identity.UserID(p.Affiliate)
	if domain.IsZeroAddress(userID) {
		e.diag.Error(ctx, "registration of zero affiliate on coupon %s rejected", couponID)
		return OutcomeRejected, nil
	}
	affiliateID := identity.AffiliateID(userID, couponID)

	affiliate, err := tx.GetAffiliate(ctx, affiliateID)
	if err != nil {
		return OutcomeNoOp, fmt.Errorf("failed to get affiliate %s: %w", affiliateID, err)
	}
	if affiliate != nil && affiliate.Status == schema.AffiliateStatusRegistered {
		e.diag.Info(ctx, "affiliate %s already registered on coupon %s", userID, couponID)
		return OutcomeNoOp, nil
	}

	project, err := tx.GetProject(ctx, coupon.ProjectID)
	if err != nil {
		return OutcomeNoOp, fmt.Errorf("failed to get project %s: %w", coupon.ProjectID, err)
	}
	if project == nil {
		e.diag.Error(ctx, "affiliate registration on coupon %s of unknown project %s rejected", couponID, coupon.ProjectID)
		return OutcomeRejected, nil
	}

	if affiliate != nil {
		// synthesized affiliates keep their counters; the budget is locked on registration only
		affiliate.Status = schema.AffiliateStatusRegistered
		affiliate.UpdatedAtBlock = env.BlockNumber
		e.diag.Info(ctx, "synthesized affiliate %s promoted to registered", affiliateID)
	} else {
		if _, err := aggregate.EnsureUser(ctx, tx, userID, env.BlockNumber, env.BlockTimestamp); err != nil {
			return OutcomeNoOp, err
		}
		affiliate = aggregate.NewAffiliate(affiliateID, userID, coupon, schema.AffiliateStatusRegistered, env.BlockNumber, env.BlockTimestamp)
	}
	if err := tx.SaveAffiliate(ctx, affiliate); err != nil {
		return OutcomeNoOp, fmt.Errorf("failed to save affiliate %s: %w", affiliateID, err)
	}

	project.TotalBudgetLocked = aggregate.AddDecimal(project.TotalBudgetLocked, coupon.LockedBudget)
	project.UpdatedAtBlock = env.BlockNumber
	if err := tx.SaveProject(ctx, project); err != nil {
		return OutcomeNoOp, fmt.Errorf("failed to save project %s: %w", project.ID, err)
	}

	e.diag.Info(ctx, "affiliate %s registered on coupon %s", userID, couponID)
	return OutcomeApplied, nil
}

// resolveAffiliate returns the affiliate credited by an activity event, or nil
// when the event names none. Affiliates seen before their registration are
// synthesized with zero counters.
func (e *Engine) resolveAffiliate(ctx context.Context, tx store.Store, env domain.Envelope, address string, coupon *schema.Coupon) (*schema.Affiliate, error) {
	userID := identity.UserID(address)
	if domain.IsZeroAddress(userID) {
		return nil, nil
	}
	affiliateID := identity.AffiliateID(userID, coupon.Address)

	affiliate, err := tx.GetAffiliate(ctx, affiliateID)
	if err != nil {
		return nil, fmt.Errorf("failed to get affiliate %s: %w", affiliateID, err)
	}
	if affiliate != nil {
		return affiliate, nil
	}

	if _, err := aggregate.EnsureUser(ctx, tx, userID, env.BlockNumber, env.BlockTimestamp); err != nil {
		return nil, err
	}
	e.diag.Info(ctx, "affiliate %s on coupon %s synthesized before registration", userID, coupon.Address)
	return aggregate.NewAffiliate(affiliateID, userID, coupon, schema.AffiliateStatusSynthesized, env.BlockNumber, env.BlockTimestamp), nil
}
