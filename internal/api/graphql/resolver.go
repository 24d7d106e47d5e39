package graphql

import (
	"context"

	"github.com/99designs/gqlgen/graphql"

	"github.com/pushcola/coupon-indexer/internal/api/rest"
	"github.com/pushcola/coupon-indexer/internal/api/shared/constants"
	apierrors "github.com/pushcola/coupon-indexer/internal/api/shared/errors"
	"github.com/pushcola/coupon-indexer/internal/api/shared/executor"
	"github.com/pushcola/coupon-indexer/internal/api/shared/types"
)

// Resolver is the root resolver that holds executor
type Resolver struct {
	executor executor.Executor
}

// NewResolver creates a new root resolver with executor
func NewResolver(exec executor.Executor) *Resolver {
	return &Resolver{
		executor: exec,
	}
}

// queryResolver resolves one root field to a value whose JSON form matches the schema type
type queryResolver func(r *Resolver, ctx context.Context, opCtx *graphql.OperationContext, field graphql.CollectedField) (interface{}, error)

var queryResolvers = map[string]queryResolver{
	"project":     (*Resolver).project,
	"coupon":      (*Resolver).coupon,
	"redemptions": (*Resolver).redemptions,
	"claims":      (*Resolver).claims,
	"affiliate":   (*Resolver).affiliate,
	"metadata":    (*Resolver).metadata,
}

func argumentsOf(opCtx *graphql.OperationContext, field graphql.CollectedField) arguments {
	return field.ArgumentMap(opCtx.Variables)
}

// selected returns the sub field called name, when the selection asks for it
func selected(opCtx *graphql.OperationContext, field graphql.CollectedField, name string) *graphql.CollectedField {
	for _, sub := range graphql.CollectFields(opCtx, field.Selections, []string{field.Definition.Type.Name()}) {
		if sub.Name == name {
			return &sub
		}
	}
	return nil
}

func (r *Resolver) project(ctx context.Context, opCtx *graphql.OperationContext, field graphql.CollectedField) (interface{}, error) {
	id, ok := rest.ParseProjectID(argumentsOf(opCtx, field).str("id"))
	if !ok {
		return nil, apierrors.NewBadRequestError("Invalid project id")
	}

	var expand []types.Expansion
	coupons := executor.Page{Limit: constants.DEFAULT_COUPONS_LIMIT, Offset: constants.DEFAULT_OFFSET}
	if sub := selected(opCtx, field, "coupons"); sub != nil {
		page, err := argumentsOf(opCtx, *sub).page(constants.DEFAULT_COUPONS_LIMIT)
		if err != nil {
			return nil, err
		}
		expand = append(expand, types.ExpansionCoupons)
		coupons = page
	}

	project, err := r.executor.GetProject(ctx, id, expand, coupons)
	if err != nil || project == nil {
		return nil, err
	}
	return project, nil
}

func (r *Resolver) coupon(ctx context.Context, opCtx *graphql.OperationContext, field graphql.CollectedField) (interface{}, error) {
	address, ok := rest.ParseAddress(argumentsOf(opCtx, field).str("address"))
	if !ok {
		return nil, apierrors.NewBadRequestError("Invalid coupon address")
	}

	var expand []types.Expansion
	if selected(opCtx, field, "metadata") != nil {
		expand = append(expand, types.ExpansionMetadata)
	}
	affiliates := executor.Page{Limit: constants.DEFAULT_AFFILIATES_LIMIT, Offset: constants.DEFAULT_OFFSET}
	if sub := selected(opCtx, field, "affiliates"); sub != nil {
		page, err := argumentsOf(opCtx, *sub).page(constants.DEFAULT_AFFILIATES_LIMIT)
		if err != nil {
			return nil, err
		}
		expand = append(expand, types.ExpansionAffiliates)
		affiliates = page
	}

	coupon, err := r.executor.GetCoupon(ctx, address, expand, affiliates)
	if err != nil || coupon == nil {
		return nil, err
	}
	return coupon, nil
}

func (r *Resolver) redemptions(ctx context.Context, opCtx *graphql.OperationContext, field graphql.CollectedField) (interface{}, error) {
	args := argumentsOf(opCtx, field)
	address, ok := rest.ParseAddress(args.str("coupon"))
	if !ok {
		return nil, apierrors.NewBadRequestError("Invalid coupon address")
	}

	page, err := args.page(constants.DEFAULT_ACTIVITY_LIMIT)
	if err != nil {
		return nil, err
	}

	return r.executor.GetCouponRedemptions(ctx, address, page)
}

func (r *Resolver) claims(ctx context.Context, opCtx *graphql.OperationContext, field graphql.CollectedField) (interface{}, error) {
	args := argumentsOf(opCtx, field)
	address, ok := rest.ParseAddress(args.str("coupon"))
	if !ok {
		return nil, apierrors.NewBadRequestError("Invalid coupon address")
	}

	page, err := args.page(constants.DEFAULT_ACTIVITY_LIMIT)
	if err != nil {
		return nil, err
	}

	return r.executor.GetCouponClaims(ctx, address, page)
}

func (r *Resolver) affiliate(ctx context.Context, opCtx *graphql.OperationContext, field graphql.CollectedField) (interface{}, error) {
	id, ok := rest.ParseHashID(argumentsOf(opCtx, field).str("id"))
	if !ok {
		return nil, apierrors.NewBadRequestError("Invalid affiliate id")
	}

	affiliate, err := r.executor.GetAffiliate(ctx, id)
	if err != nil || affiliate == nil {
		return nil, err
	}
	return affiliate, nil
}

func (r *Resolver) metadata(ctx context.Context, opCtx *graphql.OperationContext, field graphql.CollectedField) (interface{}, error) {
	cid := argumentsOf(opCtx, field).str("cid")
	if cid == "" {
		return nil, apierrors.NewBadRequestError("Metadata CID is required")
	}

	metadata, err := r.executor.GetMetadata(ctx, cid)
	if err != nil || metadata == nil {
		return nil, err
	}
	return metadata, nil
}
