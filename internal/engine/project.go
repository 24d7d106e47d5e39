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

func (e *Engine) handleProjectCreated(ctx context.Context, tx store.Store, env domain.Envelope, p *domain.ProjectCreated) (Outcome, error) {
	if p.ProjectID == nil {
		e.diag.Error(ctx, "project creation without project id rejected")
		return OutcomeRejected, nil
	}
	projectID := identity.ProjectID(p.ProjectID)

	project, err := tx.GetProject(ctx, projectID)
	if err != nil {
		return OutcomeNoOp, fmt.Errorf("failed to get project %s: %w", projectID, err)
	}

	if project != nil {
		switch {
		case project.Name == p.Name:
			return OutcomeNoOp, nil
		case project.Name == "" && p.Name != "":
			project.Name = p.Name
			project.UpdatedAtBlock = env.BlockNumber
			if err := tx.SaveProject(ctx, project); err != nil {
				return OutcomeNoOp, fmt.Errorf("failed to save project %s: %w", projectID, err)
			}
			return OutcomeApplied, nil
		default:
			e.diag.Warning(ctx, "project %s created again as %q, keeping %q", projectID, p.Name, project.Name)
			return OutcomeNoOp, nil
		}
	}

	owner := identity.UserID(p.Owner)
	if !domain.IsZeroAddress(owner) {
		if _, err := aggregate.EnsureUser(ctx, tx, owner, env.BlockNumber, env.BlockTimestamp); err != nil {
			return OutcomeNoOp, err
		}
	}

	project = &schema.Project{
		ID:                     projectID,
		OnchainID:              aggregate.FromBig(p.ProjectID),
		Name:                   p.Name,
		Creator:                owner,
		TotalClaims:            decimal.Zero,
		UniqueClaimers:         []string{},
		TotalBudgetLocked:      decimal.Zero,
		TotalAffiliatePayments: decimal.Zero,
		CreatedAtBlock:         env.BlockNumber,
		CreatedAt:              env.BlockTimestamp,
		UpdatedAtBlock:         env.BlockNumber,
	}
	if err := tx.SaveProject(ctx, project); err != nil {
		return OutcomeNoOp, fmt.Errorf("failed to save project %s: %w", projectID, err)
	}

	e.diag.Info(ctx, "project %s created", projectID)
	return OutcomeApplied, nil
}

func (e *Engine) handleProjectUpdated(ctx context.Context, tx store.Store, env domain.Envelope, p *domain.ProjectUpdated) (Outcome, error) {
	if p.ProjectID == nil {
		e.diag.Error(ctx, "project update without project id rejected")
		return OutcomeRejected, nil
	}
	projectID := identity.ProjectID(p.ProjectID)

	project, err := tx.GetProject(ctx, projectID)
	if err != nil {
		return OutcomeNoOp, fmt.Errorf("failed to get project %s: %w", projectID, err)
	}
	if project == nil {
		e.diag.Error(ctx, "update of unknown project %s rejected", projectID)
		return OutcomeRejected, nil
	}
	if project.Name == p.Name {
		return OutcomeNoOp, nil
	}

	project.Name = p.Name
	project.UpdatedAtBlock = env.BlockNumber
	if err := tx.SaveProject(ctx, project); err != nil {
		return OutcomeNoOp, fmt.Errorf("failed to save project %s: %w", projectID, err)
	}
	return OutcomeApplied, nil
}
