package executor_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pushcola/coupon-indexer/internal/api/shared/executor"
	"github.com/pushcola/coupon-indexer/internal/api/shared/types"
	"github.com/pushcola/coupon-indexer/internal/identity"
	"github.com/pushcola/coupon-indexer/internal/store"
	"github.com/pushcola/coupon-indexer/internal/store/schema"
	"github.com/pushcola/coupon-indexer/internal/store/storetest"
)

const (
	projectID = "0x0000000000000000000000000000000000000000000000000000000000000001"
	creator   = "0x00000000000000000000000000000000000000aa"
	cid       = "QmCouponDocument"
)

var createdAt = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func couponAddress(i int) string {
	return fmt.Sprintf("0x%040x", 0xc00+i)
}

func strPtr(s string) *string { return &s }

func newCoupon(i int) *schema.Coupon {
	return &schema.Coupon{
		Address:                couponAddress(i),
		Owner:                  creator,
		ProjectID:              projectID,
		MaxSupply:              decimal.NewFromInt(100),
		LockedBudget:           decimal.NewFromInt(1000),
		Fee:                    decimal.NewFromInt(10),
		ClaimStart:             decimal.Zero,
		ClaimEnd:               decimal.Zero,
		RedeemExpiration:       decimal.Zero,
		TokenID:                decimal.NewFromInt(int64(i)),
		TotalClaims:            decimal.Zero,
		TotalAffiliatePayments: decimal.Zero,
		Owners:                 []string{},
		CreatedAtBlock:         uint64(100 + i), //nolint:gosec,G115
		CreatedAt:              createdAt,
		UpdatedAtBlock:         uint64(100 + i), //nolint:gosec,G115
	}
}

// seed writes a project with three coupons; the first coupon has a metadata
// document, two affiliates and three redemptions
func seed(t *testing.T) store.Store {
	t.Helper()
	ctx := context.Background()
	st := store.NewPGStore(storetest.NewSQLiteDB(t))

	require.NoError(t, st.SaveProject(ctx, &schema.Project{
		ID:                     projectID,
		OnchainID:              decimal.NewFromInt(1),
		Name:                   "Spring",
		Creator:                creator,
		TotalClaims:            decimal.Zero,
		UniqueClaimers:         []string{},
		TotalBudgetLocked:      decimal.NewFromInt(3000),
		TotalAffiliatePayments: decimal.Zero,
		CouponCount:            3,
		CreatedAtBlock:         99,
		CreatedAt:              createdAt,
		UpdatedAtBlock:         102,
	}))

	for i := 0; i < 3; i++ {
		c := newCoupon(i)
		if i == 0 {
			c.URI = "ipfs://" + cid
			c.Metadata = strPtr(cid)
		}
		require.NoError(t, st.SaveCoupon(ctx, c))
	}

	first := couponAddress(0)
	for i, user := range []string{"0x00000000000000000000000000000000000000b1", "0x00000000000000000000000000000000000000b2"} {
		require.NoError(t, st.SaveAffiliate(ctx, &schema.Affiliate{
			ID:             identity.AffiliateID(user, first),
			UserID:         user,
			CouponID:       first,
			ProjectID:      projectID,
			Status:         schema.AffiliateStatusRegistered,
			TotalClaims:    decimal.Zero,
			TotalEarnings:  decimal.Zero,
			TotalPaidOut:   decimal.Zero,
			TotalAccrued:   decimal.Zero,
			UniqueClaimers: []string{},
			CreatedAtBlock: uint64(200 + i), //nolint:gosec,G115
			CreatedAt:      createdAt,
			UpdatedAtBlock: uint64(200 + i), //nolint:gosec,G115
		}))
	}

	for i := 0; i < 3; i++ {
		txHash := fmt.Sprintf("0x%064x", 0xf0+i)
		require.NoError(t, st.CreateCouponRedeemed(ctx, &schema.CouponRedeemed{
			ID:             identity.EventID(txHash, 0),
			CouponID:       first,
			ProjectID:      projectID,
			Owner:          creator,
			TokenID:        decimal.Zero,
			Fee:            decimal.Zero,
			Timestamp:      decimal.NewFromInt(1700000000),
			BlockNumber:    uint64(300 - i), //nolint:gosec,G115
			BlockTimestamp: createdAt,
			TxHash:         txHash,
			LogIndex:       0,
		}))
	}

	locationID := identity.LocationID(cid)
	require.NoError(t, st.SaveLocation(ctx, &schema.Location{
		ID:         locationID,
		MetadataID: cid,
		City:       strPtr("Lisbon"),
		Country:    strPtr("Portugal"),
	}))
	attributes := []string{identity.AttributeID(cid, 0), identity.AttributeID(cid, 1)}
	for i, id := range attributes {
		require.NoError(t, st.SaveAttribute(ctx, &schema.Attribute{
			ID:         id,
			MetadataID: cid,
			Position:   i,
			TraitType:  fmt.Sprintf("trait-%d", i),
			Value:      fmt.Sprintf("value-%d", i),
		}))
	}
	require.NoError(t, st.SaveTokenMetadata(ctx, &schema.TokenMetadata{
		ID:          cid,
		Name:        "Free coffee",
		LocationID:  &locationID,
		City:        strPtr("Lisbon"),
		Attributes:  attributes,
		ParseStatus: schema.ParseStatusParsed,
	}))

	return st
}

func TestExecutor_GetProject(t *testing.T) {
	exec := executor.NewExecutor(seed(t))
	ctx := context.Background()

	t.Run("without expansion", func(t *testing.T) {
		project, err := exec.GetProject(ctx, projectID, nil, executor.Page{Limit: 20})
		require.NoError(t, err)
		require.NotNil(t, project)
		assert.Equal(t, "Spring", project.Name)
		assert.Equal(t, "3000", project.TotalBudgetLocked.String())
		assert.Nil(t, project.Coupons)
	})

	t.Run("coupons paginate in deployment order", func(t *testing.T) {
		project, err := exec.GetProject(ctx, projectID, []types.Expansion{types.ExpansionCoupons}, executor.Page{Limit: 2})
		require.NoError(t, err)
		require.NotNil(t, project.Coupons)
		require.Len(t, project.Coupons.Coupons, 2)
		assert.Equal(t, couponAddress(0), project.Coupons.Coupons[0].Address)
		assert.Equal(t, couponAddress(1), project.Coupons.Coupons[1].Address)
		assert.Equal(t, uint64(3), project.Coupons.Total)
		require.NotNil(t, project.Coupons.Offset)
		assert.Equal(t, uint64(2), *project.Coupons.Offset)

		project, err = exec.GetProject(ctx, projectID, []types.Expansion{types.ExpansionCoupons}, executor.Page{Limit: 2, Offset: 2})
		require.NoError(t, err)
		require.Len(t, project.Coupons.Coupons, 1)
		assert.Equal(t, couponAddress(2), project.Coupons.Coupons[0].Address)
		assert.Nil(t, project.Coupons.Offset)
	})

	t.Run("unknown project", func(t *testing.T) {
		project, err := exec.GetProject(ctx, "0x"+fmt.Sprintf("%064x", 9), nil, executor.Page{Limit: 20})
		require.NoError(t, err)
		assert.Nil(t, project)
	})
}

func TestExecutor_GetCoupon(t *testing.T) {
	exec := executor.NewExecutor(seed(t))
	ctx := context.Background()

	t.Run("metadata and affiliates expansions", func(t *testing.T) {
		coupon, err := exec.GetCoupon(ctx, couponAddress(0),
			[]types.Expansion{types.ExpansionMetadata, types.ExpansionAffiliates},
			executor.Page{Limit: 1})
		require.NoError(t, err)
		require.NotNil(t, coupon)

		require.NotNil(t, coupon.Metadata)
		assert.Equal(t, "Free coffee", coupon.Metadata.Name)
		require.NotNil(t, coupon.Metadata.Location)
		assert.Equal(t, "Portugal", *coupon.Metadata.Location.Country)
		require.Len(t, coupon.Metadata.Attributes, 2)
		assert.Equal(t, "trait-0", coupon.Metadata.Attributes[0].TraitType)

		require.NotNil(t, coupon.Affiliates)
		require.Len(t, coupon.Affiliates.Affiliates, 1)
		assert.Equal(t, "0x00000000000000000000000000000000000000b1", coupon.Affiliates.Affiliates[0].Address)
		assert.Equal(t, uint64(2), coupon.Affiliates.Total)
		require.NotNil(t, coupon.Affiliates.Offset)
		assert.Equal(t, uint64(1), *coupon.Affiliates.Offset)
	})

	t.Run("metadata expansion without document", func(t *testing.T) {
		coupon, err := exec.GetCoupon(ctx, couponAddress(1), []types.Expansion{types.ExpansionMetadata}, executor.Page{Limit: 20})
		require.NoError(t, err)
		require.NotNil(t, coupon)
		assert.Nil(t, coupon.Metadata)
		assert.Nil(t, coupon.Affiliates)
	})

	t.Run("unknown coupon", func(t *testing.T) {
		coupon, err := exec.GetCoupon(ctx, couponAddress(9), nil, executor.Page{Limit: 20})
		require.NoError(t, err)
		assert.Nil(t, coupon)
	})
}

func TestExecutor_GetCouponRedemptions(t *testing.T) {
	exec := executor.NewExecutor(seed(t))
	ctx := context.Background()

	list, err := exec.GetCouponRedemptions(ctx, couponAddress(0), executor.Page{Limit: 10})
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Len(t, list.Redemptions, 3)
	assert.Equal(t, uint64(298), list.Redemptions[0].BlockNumber)
	assert.Equal(t, uint64(300), list.Redemptions[2].BlockNumber)
	assert.Equal(t, uint64(3), list.Total)
	assert.Nil(t, list.Offset)

	list, err = exec.GetCouponRedemptions(ctx, couponAddress(1), executor.Page{Limit: 10})
	require.NoError(t, err)
	require.NotNil(t, list)
	assert.Empty(t, list.Redemptions)

	list, err = exec.GetCouponRedemptions(ctx, couponAddress(9), executor.Page{Limit: 10})
	require.NoError(t, err)
	assert.Nil(t, list)
}

func TestExecutor_GetCouponClaims(t *testing.T) {
	exec := executor.NewExecutor(seed(t))

	list, err := exec.GetCouponClaims(context.Background(), couponAddress(0), executor.Page{Limit: 10})
	require.NoError(t, err)
	require.NotNil(t, list)
	assert.Empty(t, list.Claims)
	assert.Equal(t, uint64(0), list.Total)
}

func TestExecutor_GetAffiliate(t *testing.T) {
	exec := executor.NewExecutor(seed(t))
	ctx := context.Background()

	id := identity.AffiliateID("0x00000000000000000000000000000000000000b2", couponAddress(0))
	affiliate, err := exec.GetAffiliate(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, affiliate)
	assert.Equal(t, couponAddress(0), affiliate.CouponAddress)

	affiliate, err = exec.GetAffiliate(ctx, identity.AffiliateID(creator, couponAddress(0)))
	require.NoError(t, err)
	assert.Nil(t, affiliate)
}

func TestExecutor_GetMetadata(t *testing.T) {
	exec := executor.NewExecutor(seed(t))
	ctx := context.Background()

	metadata, err := exec.GetMetadata(ctx, cid)
	require.NoError(t, err)
	require.NotNil(t, metadata)
	assert.Equal(t, schema.ParseStatusParsed, metadata.ParseStatus)
	assert.Equal(t, "Lisbon", *metadata.City)

	metadata, err = exec.GetMetadata(ctx, "QmMissing")
	require.NoError(t, err)
	assert.Nil(t, metadata)
}
