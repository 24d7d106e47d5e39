package engine

import (
	"context"

	"github.com/pushcola/coupon-indexer/internal/domain"
	"github.com/pushcola/coupon-indexer/internal/store"
)

func (e *Engine) handleMetadataFetched(ctx context.Context, tx store.Store, p *domain.MetadataFetched) (Outcome, error) {
	if p.DocumentID == "" {
		e.diag.Error(ctx, "metadata delivery without document id rejected")
		return OutcomeRejected, nil
	}

	if _, err := e.normalizer.Normalize(ctx, tx, p.DocumentID, p.Content); err != nil {
		return OutcomeNoOp, err
	}
	return OutcomeApplied, nil
}
