package executor

import (
	"context"

	"github.com/pushcola/coupon-indexer/internal/api/shared/dto"
	apierrors "github.com/pushcola/coupon-indexer/internal/api/shared/errors"
	"github.com/pushcola/coupon-indexer/internal/api/shared/types"
	"github.com/pushcola/coupon-indexer/internal/store"
	"github.com/pushcola/coupon-indexer/internal/store/schema"
)

// Page selects a window of a list
type Page struct {
	Limit  int
	Offset uint64
}

// Executor is the interface for the API executor.
// Getters return nil, nil when the entity does not exist.
//
//go:generate mockgen -source=executor.go -destination=../../../mocks/api_executor.go -package=mocks -mock_names=Executor=MockAPIExecutor
type Executor interface {
	// GetProject retrieves a project by id, optionally expanding its coupons
	GetProject(ctx context.Context, id string, expand []types.Expansion, coupons Page) (*dto.ProjectResponse, error)

	// GetCoupon retrieves a coupon by contract address, optionally expanding its metadata and affiliates
	GetCoupon(ctx context.Context, address string, expand []types.Expansion, affiliates Page) (*dto.CouponResponse, error)

	// GetCouponRedemptions lists the redemptions of a coupon in chain order
	GetCouponRedemptions(ctx context.Context, address string, page Page) (*dto.RedemptionListResponse, error)

	// GetCouponClaims lists the claims of a coupon in chain order
	GetCouponClaims(ctx context.Context, address string, page Page) (*dto.ClaimListResponse, error)

	// GetAffiliate retrieves an affiliate by id
	GetAffiliate(ctx context.Context, id string) (*dto.AffiliateResponse, error)

	// GetMetadata retrieves a metadata document by content identifier
	GetMetadata(ctx context.Context, cid string) (*dto.MetadataResponse, error)
}

type executor struct {
	store store.Store
}

func NewExecutor(store store.Store) Executor {
	return &executor{store: store}
}

func (e *executor) GetProject(ctx context.Context, id string, expand []types.Expansion, coupons Page) (*dto.ProjectResponse, error) {
	project, err := e.store.GetProject(ctx, id)
	if err != nil {
		return nil, apierrors.NewDatabaseError("Failed to get project", err)
	}
	if project == nil {
		return nil, nil
	}

	projectDTO := dto.MapProjectToDTO(project)

	for _, exp := range expand {
		if exp != types.ExpansionCoupons {
			continue
		}

		results, total, err := e.store.GetCouponsByProject(ctx, id, coupons.Limit, coupons.Offset)
		if err != nil {
			return nil, apierrors.NewDatabaseError("Failed to get coupons", err)
		}

		items := make([]dto.CouponResponse, len(results))
		for i := range results {
			items[i] = *dto.MapCouponToDTO(&results[i])
		}
		projectDTO.Coupons = &dto.PaginatedCoupons{
			Coupons: items,
			Offset:  nextOffset(coupons.Offset, len(results), total),
			Total:   total,
		}
	}

	return projectDTO, nil
}

func (e *executor) GetCoupon(ctx context.Context, address string, expand []types.Expansion, affiliates Page) (*dto.CouponResponse, error) {
	coupon, err := e.store.GetCoupon(ctx, address)
	if err != nil {
		return nil, apierrors.NewDatabaseError("Failed to get coupon", err)
	}
	if coupon == nil {
		return nil, nil
	}

	couponDTO := dto.MapCouponToDTO(coupon)

	for _, exp := range expand {
		switch exp {
		case types.ExpansionMetadata:
			if coupon.Metadata == nil {
				continue
			}
			metadata, err := e.GetMetadata(ctx, *coupon.Metadata)
			if err != nil {
				return nil, err
			}
			couponDTO.Metadata = metadata

		case types.ExpansionAffiliates:
			results, total, err := e.store.GetAffiliatesByCoupon(ctx, coupon.Address, affiliates.Limit, affiliates.Offset)
			if err != nil {
				return nil, apierrors.NewDatabaseError("Failed to get affiliates", err)
			}

			items := make([]dto.AffiliateResponse, len(results))
			for i := range results {
				items[i] = *dto.MapAffiliateToDTO(&results[i])
			}
			couponDTO.Affiliates = &dto.PaginatedAffiliates{
				Affiliates: items,
				Offset:     nextOffset(affiliates.Offset, len(results), total),
				Total:      total,
			}
		}
	}

	return couponDTO, nil
}

func (e *executor) GetCouponRedemptions(ctx context.Context, address string, page Page) (*dto.RedemptionListResponse, error) {
	coupon, err := e.store.GetCoupon(ctx, address)
	if err != nil {
		return nil, apierrors.NewDatabaseError("Failed to get coupon", err)
	}
	if coupon == nil {
		return nil, nil
	}

	results, total, err := e.store.GetCouponRedemptions(ctx, coupon.Address, page.Limit, page.Offset)
	if err != nil {
		return nil, apierrors.NewDatabaseError("Failed to get redemptions", err)
	}

	items := make([]dto.RedemptionResponse, len(results))
	for i := range results {
		items[i] = *dto.MapRedemptionToDTO(&results[i])
	}

	return &dto.RedemptionListResponse{
		Redemptions: items,
		Offset:      nextOffset(page.Offset, len(results), total),
		Total:       total,
	}, nil
}

func (e *executor) GetCouponClaims(ctx context.Context, address string, page Page) (*dto.ClaimListResponse, error) {
	coupon, err := e.store.GetCoupon(ctx, address)
	if err != nil {
		return nil, apierrors.NewDatabaseError("Failed to get coupon", err)
	}
	if coupon == nil {
		return nil, nil
	}

	results, total, err := e.store.GetTokenClaims(ctx, coupon.Address, page.Limit, page.Offset)
	if err != nil {
		return nil, apierrors.NewDatabaseError("Failed to get claims", err)
	}

	items := make([]dto.ClaimResponse, len(results))
	for i := range results {
		items[i] = *dto.MapClaimToDTO(&results[i])
	}

	return &dto.ClaimListResponse{
		Claims: items,
		Offset: nextOffset(page.Offset, len(results), total),
		Total:  total,
	}, nil
}

func (e *executor) GetAffiliate(ctx context.Context, id string) (*dto.AffiliateResponse, error) {
	affiliate, err := e.store.GetAffiliate(ctx, id)
	if err != nil {
		return nil, apierrors.NewDatabaseError("Failed to get affiliate", err)
	}
	if affiliate == nil {
		return nil, nil
	}
	return dto.MapAffiliateToDTO(affiliate), nil
}

func (e *executor) GetMetadata(ctx context.Context, cid string) (*dto.MetadataResponse, error) {
	metadata, err := e.store.GetTokenMetadata(ctx, cid)
	if err != nil {
		return nil, apierrors.NewDatabaseError("Failed to get metadata", err)
	}
	if metadata == nil {
		return nil, nil
	}

	var location *schema.Location
	if metadata.LocationID != nil {
		location, err = e.store.GetLocation(ctx, *metadata.LocationID)
		if err != nil {
			return nil, apierrors.NewDatabaseError("Failed to get location", err)
		}
	}

	attributes, err := e.store.GetAttributes(ctx, metadata.Attributes)
	if err != nil {
		return nil, apierrors.NewDatabaseError("Failed to get attributes", err)
	}

	return dto.MapMetadataToDTO(metadata, location, attributes), nil
}

// nextOffset returns the offset of the next page, or nil on the last page
func nextOffset(offset uint64, count int, total uint64) *uint64 {
	if offset+uint64(count) < total { //nolint:gosec,G115
		next := offset + uint64(count) //nolint:gosec,G115
		return &next
	}
	return nil
}
