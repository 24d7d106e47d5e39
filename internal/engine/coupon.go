package engine

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pushcola/coupon-indexer/internal/aggregate"
	"github.com/pushcola/coupon-indexer/internal/domain"
	"github.com/pushcola/coupon-indexer/internal/identity"
	"github.com/pushcola/coupon-indexer/internal/metadata"
	"github.com/pushcola/coupon-indexer/internal/store"
	"github.com/pushcola/coupon-indexer/internal/store/schema"
)

// couponAddress returns the coupon a contract event refers to. Events that
// carry no explicit contract address refer to their emitter.
func couponAddress(contractAddress string, env domain.Envelope) string {
	if domain.IsZeroAddress(contractAddress) {
		return identity.CouponID(env.Address)
	}
	return identity.CouponID(contractAddress)
}

func (e *Engine) handleLazyMintDeployed(ctx context.Context, tx store.Store, env domain.Envelope, p *domain.LazyMintDeployed, fx *effects) (Outcome, error) {
	couponID := identity.CouponID(p.LazyMintAddress)
	if domain.IsZeroAddress(couponID) {
		e.diag.Error(ctx, "deployment without contract address rejected")
		return OutcomeRejected, nil
	}
	if p.ProjectID == nil {
		e.diag.Error(ctx, "deployment of coupon %s without project rejected", couponID)
		return OutcomeRejected, nil
	}
	projectID := identity.ProjectID(p.ProjectID)

	project, err := tx.GetProject(ctx, projectID)
	if err != nil {
		return OutcomeNoOp, fmt.Errorf("failed to get project %s: %w", projectID, err)
	}
	if project == nil {
		e.diag.Error(ctx, "deployment of coupon %s for unknown project %s rejected", couponID, projectID)
		return OutcomeRejected, nil
	}

	existing, err := tx.GetCoupon(ctx, couponID)
	if err != nil {
		return OutcomeNoOp, fmt.Errorf("failed to get coupon %s: %w", couponID, err)
	}
	if existing != nil {
		e.diag.Info(ctx, "coupon %s already deployed", couponID)
		return OutcomeNoOp, nil
	}

	if err := e.registrar.RegisterTemplate(ctx, tx, &schema.DataSource{
		Template:       schema.DataSourceLazyMint,
		Param:          couponID,
		CreatedAtBlock: env.BlockNumber,
	}); err != nil {
		return OutcomeNoOp, err
	}

	creator := identity.UserID(p.Creator)
	if !domain.IsZeroAddress(creator) {
		if _, err := aggregate.EnsureUser(ctx, tx, creator, env.BlockNumber, env.BlockTimestamp); err != nil {
			return OutcomeNoOp, err
		}
	}

	coupon := &schema.Coupon{
		Address:                couponID,
		Owner:                  creator,
		ProjectID:              projectID,
		URI:                    p.URI,
		MaxSupply:              aggregate.FromBig(p.MaxSupply),
		LockedBudget:           aggregate.FromBig(p.LockedBudget),
		Fee:                    aggregate.FromBig(p.Fee),
		ClaimStart:             aggregate.FromBig(p.ClaimStart),
		ClaimEnd:               aggregate.FromBig(p.ClaimEnd),
		RedeemExpiration:       aggregate.FromBig(p.RedeemExpiration),
		Currency:               identity.Address(p.CurrencyAddress),
		TokenID:                aggregate.FromBig(p.TokenID),
		TotalClaims:            decimal.Zero,
		TotalAffiliatePayments: decimal.Zero,
		Owners:                 []string{},
		CreatedAtBlock:         env.BlockNumber,
		CreatedAt:              env.BlockTimestamp,
		UpdatedAtBlock:         env.BlockNumber,
	}

	if cid, ok := metadata.ExtractCID(p.URI); ok {
		coupon.Metadata = &cid
		if err := e.trackMetadata(ctx, tx, cid, env.BlockNumber, fx); err != nil {
			return OutcomeNoOp, err
		}
	} else {
		e.diag.Warning(ctx, "coupon %s uri %q has no content identifier, metadata left unset", couponID, p.URI)
	}

	if err := tx.SaveCoupon(ctx, coupon); err != nil {
		return OutcomeNoOp, fmt.Errorf("failed to save coupon %s: %w", couponID, err)
	}

	project.TotalBudgetLocked = aggregate.Add(project.TotalBudgetLocked, p.LockedBudget)
	project.CouponCount++
	project.UpdatedAtBlock = env.BlockNumber
	if err := tx.SaveProject(ctx, project); err != nil {
		return OutcomeNoOp, fmt.Errorf("failed to save project %s: %w", projectID, err)
	}

	e.diag.Info(ctx, "coupon %s deployed under project %s", couponID, projectID)
	return OutcomeApplied, nil
}

// trackMetadata registers cid as a metadata data source and schedules its
// retrieval unless it was already delivered
func (e *Engine) trackMetadata(ctx context.Context, tx store.Store, cid string, block uint64, fx *effects) error {
	if err := e.registrar.RegisterTemplate(ctx, tx, &schema.DataSource{
		Template:       schema.DataSourceTokenMetadata,
		Param:          cid,
		CreatedAtBlock: block,
	}); err != nil {
		return err
	}

	existing, err := tx.GetTokenMetadata(ctx, cid)
	if err != nil {
		return fmt.Errorf("failed to get token metadata %s: %w", cid, err)
	}
	if existing == nil || existing.ParseStatus == schema.ParseStatusPending {
		fx.requestMetadata(cid)
	}
	return nil
}

func (e *Engine) loadCoupon(ctx context.Context, tx store.Store, couponID string) (*schema.Coupon, error) {
	coupon, err := tx.GetCoupon(ctx, couponID)
	if err != nil {
		return nil, fmt.Errorf("failed to get coupon %s: %w", couponID, err)
	}
	return coupon, nil
}

func (e *Engine) handleOwnerUpdated(ctx context.Context, tx store.Store, env domain.Envelope, p *domain.OwnerUpdated) (Outcome, error) {
	couponID := identity.CouponID(env.Address)
	coupon, err := e.loadCoupon(ctx, tx, couponID)
	if err != nil {
		return OutcomeNoOp, err
	}
	if coupon == nil {
		e.diag.Error(ctx, "owner update of unknown coupon %s rejected", couponID)
		return OutcomeRejected, nil
	}

	owner := identity.UserID(p.NewOwner)
	if domain.IsZeroAddress(owner) {
		e.diag.Warning(ctx, "coupon %s ownership renounced, keeping owner %s", couponID, coupon.Owner)
		return OutcomeNoOp, nil
	}
	if coupon.Owner == owner {
		return OutcomeNoOp, nil
	}

	if _, err := aggregate.EnsureUser(ctx, tx, owner, env.BlockNumber, env.BlockTimestamp); err != nil {
		return OutcomeNoOp, err
	}
	coupon.Owner = owner
	coupon.UpdatedAtBlock = env.BlockNumber
	if err := tx.SaveCoupon(ctx, coupon); err != nil {
		return OutcomeNoOp, fmt.Errorf("failed to save coupon %s: %w", couponID, err)
	}
	return OutcomeApplied, nil
}

func (e *Engine) handleContractURIUpdated(ctx context.Context, tx store.Store, env domain.Envelope, p *domain.ContractURIUpdated, fx *effects) (Outcome, error) {
	couponID := identity.CouponID(env.Address)
	coupon, err := e.loadCoupon(ctx, tx, couponID)
	if err != nil {
		return OutcomeNoOp, err
	}
	if coupon == nil {
		e.diag.Error(ctx, "uri update of unknown coupon %s rejected", couponID)
		return OutcomeRejected, nil
	}
	return e.updateCouponURI(ctx, tx, env, coupon, p.NewURI, fx)
}

// handleTokenURIUpdated applies the ERC1155 URI event of the coupon's token;
// other token ids of the contract carry no coupon metadata
func (e *Engine) handleTokenURIUpdated(ctx context.Context, tx store.Store, env domain.Envelope, p *domain.TokenURIUpdated, fx *effects) (Outcome, error) {
	couponID := identity.CouponID(env.Address)
	coupon, err := e.loadCoupon(ctx, tx, couponID)
	if err != nil {
		return OutcomeNoOp, err
	}
	if coupon == nil {
		e.diag.Error(ctx, "token uri update of unknown coupon %s rejected", couponID)
		return OutcomeRejected, nil
	}
	if p.ID == nil || !aggregate.FromBig(p.ID).Equal(coupon.TokenID) {
		e.diag.Info(ctx, "coupon %s uri of token %v ignored, coupon token is %s", couponID, p.ID, coupon.TokenID)
		return OutcomeNoOp, nil
	}
	return e.updateCouponURI(ctx, tx, env, coupon, p.URI, fx)
}

// updateCouponURI stores uri and requests its document when the content
// identifier changed
func (e *Engine) updateCouponURI(ctx context.Context, tx store.Store, env domain.Envelope, coupon *schema.Coupon, uri string, fx *effects) (Outcome, error) {
	if coupon.URI == uri {
		return OutcomeNoOp, nil
	}

	coupon.URI = uri
	coupon.UpdatedAtBlock = env.BlockNumber

	cid, ok := metadata.ExtractCID(uri)
	switch {
	case !ok:
		e.diag.Warning(ctx, "coupon %s uri %q has no content identifier, metadata kept", coupon.Address, uri)
	case coupon.Metadata == nil || *coupon.Metadata != cid:
		coupon.Metadata = &cid
		if err := e.trackMetadata(ctx, tx, cid, env.BlockNumber, fx); err != nil {
			return OutcomeNoOp, err
		}
	}

	if err := tx.SaveCoupon(ctx, coupon); err != nil {
		return OutcomeNoOp, fmt.Errorf("failed to save coupon %s: %w", coupon.Address, err)
	}
	return OutcomeApplied, nil
}

func (e *Engine) handleTransferSingle(ctx context.Context, tx store.Store, env domain.Envelope, p *domain.TransferSingle) (Outcome, error) {
	return e.recordRecipient(ctx, tx, env, p.To)
}

// handleTransferBatch records the recipient once; every token of a batch goes to the same address
func (e *Engine) handleTransferBatch(ctx context.Context, tx store.Store, env domain.Envelope, p *domain.TransferBatch) (Outcome, error) {
	if len(p.IDs) == 0 {
		return OutcomeNoOp, nil
	}
	return e.recordRecipient(ctx, tx, env, p.To)
}

// recordRecipient appends a transfer recipient to the coupon owners
func (e *Engine) recordRecipient(ctx context.Context, tx store.Store, env domain.Envelope, recipient string) (Outcome, error) {
	couponID := identity.CouponID(env.Address)
	coupon, err := e.loadCoupon(ctx, tx, couponID)
	if err != nil {
		return OutcomeNoOp, err
	}
	if coupon == nil {
		e.diag.Error(ctx, "transfer on unknown coupon %s rejected", couponID)
		return OutcomeRejected, nil
	}

	to := identity.UserID(recipient)
	if domain.IsZeroAddress(to) {
		return OutcomeNoOp, nil
	}

	owners, changed := aggregate.AppendUnique(coupon.Owners, to)
	if !changed {
		return OutcomeNoOp, nil
	}
	if _, err := aggregate.EnsureUser(ctx, tx, to, env.BlockNumber, env.BlockTimestamp); err != nil {
		return OutcomeNoOp, err
	}

	coupon.Owners = owners
	coupon.UpdatedAtBlock = env.BlockNumber
	if err := tx.SaveCoupon(ctx, coupon); err != nil {
		return OutcomeNoOp, fmt.Errorf("failed to save coupon %s: %w", couponID, err)
	}
	return OutcomeApplied, nil
}
