package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/pushcola/coupon-indexer/internal/store/schema"
)

// =============================================================================
// Test Data Builders
// =============================================================================

var testBlockTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func buildTestProject(id string) *schema.Project {
	return &schema.Project{
		ID:                     id,
		OnchainID:              decimal.NewFromInt(1),
		Name:                   "Summer Campaign",
		Creator:                "0x1111111111111111111111111111111111111111",
		TotalClaims:            decimal.Zero,
		TotalBudgetLocked:      decimal.NewFromInt(1000),
		TotalAffiliatePayments: decimal.Zero,
		CreatedAtBlock:         100,
		CreatedAt:              testBlockTime,
		UpdatedAtBlock:         100,
	}
}

func buildTestCoupon(address, projectID string) *schema.Coupon {
	return &schema.Coupon{
		Address:                address,
		Owner:                  "0x1111111111111111111111111111111111111111",
		ProjectID:              projectID,
		URI:                    "ipfs://bafytest/metadata.json",
		MaxSupply:              decimal.NewFromInt(100),
		LockedBudget:           decimal.NewFromInt(1000),
		Fee:                    decimal.NewFromInt(10),
		ClaimStart:             decimal.Zero,
		ClaimEnd:               decimal.Zero,
		RedeemExpiration:       decimal.Zero,
		TokenID:                decimal.Zero,
		TotalClaims:            decimal.Zero,
		TotalAffiliatePayments: decimal.Zero,
		CreatedAtBlock:         101,
		CreatedAt:              testBlockTime,
		UpdatedAtBlock:         101,
	}
}

func buildTestRedemption(id, couponID string, block uint64, logIndex uint) *schema.CouponRedeemed {
	return &schema.CouponRedeemed{
		ID:             id,
		CouponID:       couponID,
		ProjectID:      "project",
		Owner:          "0x2222222222222222222222222222222222222222",
		TokenID:        decimal.Zero,
		Fee:            decimal.NewFromInt(10),
		Timestamp:      decimal.NewFromInt(testBlockTime.Unix()),
		BlockNumber:    block,
		BlockTimestamp: testBlockTime,
		TxHash:         "0xabc",
		LogIndex:       logIndex,
	}
}

// RunStoreTests runs the store test suite against the store returned by initDB
func RunStoreTests(t *testing.T, initDB func(t *testing.T) Store) {
	t.Run("UserRoundTrip", func(t *testing.T) { testUserRoundTrip(t, initDB(t)) })
	t.Run("ProjectUpsert", func(t *testing.T) { testProjectUpsert(t, initDB(t)) })
	t.Run("CouponFields", func(t *testing.T) { testCouponFields(t, initDB(t)) })
	t.Run("TransactionRollback", func(t *testing.T) { testTransactionRollback(t, initDB(t)) })
	t.Run("TransactionCommit", func(t *testing.T) { testTransactionCommit(t, initDB(t)) })
	t.Run("WriteOnceRecords", func(t *testing.T) { testWriteOnceRecords(t, initDB(t)) })
	t.Run("UniqueClaimers", func(t *testing.T) { testUniqueClaimers(t, initDB(t)) })
	t.Run("DataSources", func(t *testing.T) { testDataSources(t, initDB(t)) })
	t.Run("BlockCursor", func(t *testing.T) { testBlockCursor(t, initDB(t)) })
	t.Run("CommitRange", func(t *testing.T) { testCommitRange(t, initDB(t)) })
	t.Run("PendingMetadata", func(t *testing.T) { testPendingMetadata(t, initDB(t)) })
	t.Run("Attributes", func(t *testing.T) { testAttributes(t, initDB(t)) })
	t.Run("Pagination", func(t *testing.T) { testPagination(t, initDB(t)) })
}

func testUserRoundTrip(t *testing.T, s Store) {
	ctx := context.Background()

	user, err := s.GetUser(ctx, "0xabc")
	require.NoError(t, err)
	assert.Nil(t, user)

	require.NoError(t, s.SaveUser(ctx, &schema.User{Address: "0xabc", CreatedAtBlock: 7, CreatedAt: testBlockTime}))

	user, err = s.GetUser(ctx, "0xabc")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, uint64(7), user.CreatedAtBlock)
	assert.True(t, testBlockTime.Equal(user.CreatedAt))
}

func testProjectUpsert(t *testing.T, s Store) {
	ctx := context.Background()

	project := buildTestProject("p1")
	require.NoError(t, s.SaveProject(ctx, project))

	project.TotalBudgetLocked = project.TotalBudgetLocked.Add(decimal.NewFromInt(1000))
	project.UniqueClaimers = []string{"0xa", "0xb"}
	project.UpdatedAtBlock = 120
	require.NoError(t, s.SaveProject(ctx, project))

	loaded, err := s.GetProject(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.True(t, loaded.TotalBudgetLocked.Equal(decimal.NewFromInt(2000)), loaded.TotalBudgetLocked.String())
	assert.Equal(t, []string{"0xa", "0xb"}, loaded.UniqueClaimers)
	assert.Equal(t, uint64(120), loaded.UpdatedAtBlock)
	assert.Equal(t, "Summer Campaign", loaded.Name)
}

func testCouponFields(t *testing.T, s Store) {
	ctx := context.Background()

	cid := "bafytest"
	redeemedAt := testBlockTime.Add(time.Hour)
	coupon := buildTestCoupon("0xc1", "p1")
	coupon.Metadata = &cid
	coupon.IsRedeemed = true
	coupon.RedeemedAt = &redeemedAt
	coupon.Owners = []string{"0xr1"}
	require.NoError(t, s.SaveCoupon(ctx, coupon))

	loaded, err := s.GetCoupon(ctx, "0xc1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.NotNil(t, loaded.Metadata)
	assert.Equal(t, cid, *loaded.Metadata)
	assert.True(t, loaded.IsRedeemed)
	require.NotNil(t, loaded.RedeemedAt)
	assert.True(t, redeemedAt.Equal(*loaded.RedeemedAt))
	assert.Equal(t, []string{"0xr1"}, loaded.Owners)
	assert.True(t, loaded.Fee.Equal(decimal.NewFromInt(10)))

	missing, err := s.GetCoupon(ctx, "0xmissing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func testTransactionRollback(t *testing.T, s Store) {
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Transaction(ctx, func(tx Store) error {
		if err := tx.SaveProject(ctx, buildTestProject("p-rollback")); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	project, err := s.GetProject(ctx, "p-rollback")
	require.NoError(t, err)
	assert.Nil(t, project)
}

func testTransactionCommit(t *testing.T, s Store) {
	ctx := context.Background()

	err := s.Transaction(ctx, func(tx Store) error {
		if err := tx.SaveProject(ctx, buildTestProject("p-commit")); err != nil {
			return err
		}
		// Reads inside the transaction observe its own writes
		project, err := tx.GetProject(ctx, "p-commit")
		if err != nil {
			return err
		}
		if project == nil {
			return errors.New("project not visible inside transaction")
		}
		return tx.SaveCoupon(ctx, buildTestCoupon("0xc-commit", "p-commit"))
	})
	require.NoError(t, err)

	coupon, err := s.GetCoupon(ctx, "0xc-commit")
	require.NoError(t, err)
	assert.NotNil(t, coupon)
}

func testWriteOnceRecords(t *testing.T, s Store) {
	ctx := context.Background()

	record := buildTestRedemption("r1", "0xc1", 10, 0)
	require.NoError(t, s.CreateCouponRedeemed(ctx, record))
	assert.Error(t, s.CreateCouponRedeemed(ctx, buildTestRedemption("r1", "0xc1", 10, 0)))

	loaded, err := s.GetCouponRedeemed(ctx, "r1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Nil(t, loaded.AffiliateID)
	assert.True(t, loaded.Fee.Equal(decimal.NewFromInt(10)))

	claim := &schema.TokenClaimed{
		ID:             "c1",
		CouponID:       "0xc1",
		ProjectID:      "p1",
		Claimer:        "0xa",
		Receiver:       "0xb",
		TokenID:        decimal.Zero,
		Quantity:       decimal.NewFromInt(3),
		Timestamp:      decimal.Zero,
		BlockNumber:    11,
		BlockTimestamp: testBlockTime,
		TxHash:         "0xdef",
		LogIndex:       2,
	}
	require.NoError(t, s.CreateTokenClaimed(ctx, claim))

	loadedClaim, err := s.GetTokenClaimed(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, loadedClaim)
	assert.True(t, loadedClaim.Quantity.Equal(decimal.NewFromInt(3)))

	missing, err := s.GetTokenClaimed(ctx, "c2")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func testUniqueClaimers(t *testing.T, s Store) {
	ctx := context.Background()

	has, err := s.HasUniqueClaimer(ctx, schema.ClaimerScopeProject, "p1", "0xa")
	require.NoError(t, err)
	assert.False(t, has)

	membership := &schema.UniqueClaimer{Scope: schema.ClaimerScopeProject, ScopeID: "p1", UserID: "0xa", Position: 0}
	require.NoError(t, s.AddUniqueClaimer(ctx, membership))
	require.NoError(t, s.AddUniqueClaimer(ctx, &schema.UniqueClaimer{Scope: schema.ClaimerScopeProject, ScopeID: "p1", UserID: "0xa", Position: 5}))

	has, err = s.HasUniqueClaimer(ctx, schema.ClaimerScopeProject, "p1", "0xa")
	require.NoError(t, err)
	assert.True(t, has)

	// Scopes are independent
	has, err = s.HasUniqueClaimer(ctx, schema.ClaimerScopeAffiliate, "p1", "0xa")
	require.NoError(t, err)
	assert.False(t, has)
}

func testDataSources(t *testing.T, s Store) {
	ctx := context.Background()

	require.NoError(t, s.SaveDataSource(ctx, &schema.DataSource{Template: schema.DataSourceLazyMint, Param: "0xc2", CreatedAtBlock: 20}))
	require.NoError(t, s.SaveDataSource(ctx, &schema.DataSource{Template: schema.DataSourceLazyMint, Param: "0xc1", CreatedAtBlock: 10}))
	require.NoError(t, s.SaveDataSource(ctx, &schema.DataSource{Template: schema.DataSourceLazyMint, Param: "0xc1", CreatedAtBlock: 30}))
	require.NoError(t, s.SaveDataSource(ctx, &schema.DataSource{Template: schema.DataSourceTokenMetadata, Param: "bafy", CreatedAtBlock: 10}))

	sources, err := s.GetDataSources(ctx, schema.DataSourceLazyMint)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "0xc1", sources[0].Param)
	assert.Equal(t, uint64(10), sources[0].CreatedAtBlock)
	assert.Equal(t, "0xc2", sources[1].Param)
}

func testBlockCursor(t *testing.T, s Store) {
	ctx := context.Background()

	cursor, err := s.GetBlockCursor(ctx, "eip155:1")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), cursor)

	require.NoError(t, s.SetBlockCursor(ctx, "eip155:1", 100))
	require.NoError(t, s.SetBlockCursor(ctx, "eip155:1", 150))
	require.NoError(t, s.SetBlockCursor(ctx, "eip155:8453", 7))
	// a stale writer cannot move the cursor back
	require.NoError(t, s.SetBlockCursor(ctx, "eip155:1", 120))

	cursor, err = s.GetBlockCursor(ctx, "eip155:1")
	require.NoError(t, err)
	assert.Equal(t, uint64(150), cursor)

	cursor, err = s.GetBlockCursor(ctx, "eip155:8453")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), cursor)
}

func testCommitRange(t *testing.T, s Store) {
	ctx := context.Background()

	contracts, err := s.GetWatchedContracts(ctx, "eip155:1")
	require.NoError(t, err)
	assert.Empty(t, contracts)

	require.NoError(t, s.CommitRange(ctx, "eip155:1", 100, []schema.WatchedContract{
		{Address: "0xc2", DeployedAtBlock: 95},
		{Address: "0xc1", DeployedAtBlock: 91},
	}))
	require.NoError(t, s.CommitRange(ctx, "eip155:1", 110, nil))
	// a replayed range keeps the first registration
	require.NoError(t, s.CommitRange(ctx, "eip155:1", 100, []schema.WatchedContract{{Address: "0xc1", DeployedAtBlock: 91}}))
	require.NoError(t, s.CommitRange(ctx, "eip155:8453", 5, []schema.WatchedContract{{Address: "0xc9", DeployedAtBlock: 5}}))

	contracts, err = s.GetWatchedContracts(ctx, "eip155:1")
	require.NoError(t, err)
	assert.Equal(t, []string{"0xc1", "0xc2"}, contracts)

	cursor, err := s.GetBlockCursor(ctx, "eip155:1")
	require.NoError(t, err)
	assert.Equal(t, uint64(110), cursor)
}

func testPendingMetadata(t *testing.T, s Store) {
	ctx := context.Background()

	require.NoError(t, s.SaveDataSource(ctx, &schema.DataSource{Template: schema.DataSourceTokenMetadata, Param: "bafy1", CreatedAtBlock: 1}))
	require.NoError(t, s.SaveDataSource(ctx, &schema.DataSource{Template: schema.DataSourceTokenMetadata, Param: "bafy2", CreatedAtBlock: 2}))
	require.NoError(t, s.SaveDataSource(ctx, &schema.DataSource{Template: schema.DataSourceTokenMetadata, Param: "bafy3", CreatedAtBlock: 3}))
	require.NoError(t, s.SaveDataSource(ctx, &schema.DataSource{Template: schema.DataSourceLazyMint, Param: "0xc1", CreatedAtBlock: 1}))

	require.NoError(t, s.SaveTokenMetadata(ctx, &schema.TokenMetadata{
		ID:          "bafy1",
		Name:        "Delivered",
		ParseStatus: schema.ParseStatusParsed,
		Raw:         datatypes.JSON(`{"name":"Delivered"}`),
	}))
	require.NoError(t, s.SaveTokenMetadata(ctx, &schema.TokenMetadata{
		ID:          "bafy3",
		Name:        "Unnamed",
		ParseStatus: schema.ParseStatusPending,
	}))

	pending, err := s.GetPendingMetadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"bafy2", "bafy3"}, pending)
}

func testAttributes(t *testing.T, s Store) {
	ctx := context.Background()

	for i, trait := range []string{"size", "color", "shape"} {
		require.NoError(t, s.SaveAttribute(ctx, &schema.Attribute{
			ID:         "doc-attribute-" + trait,
			MetadataID: "doc",
			Position:   i,
			TraitType:  trait,
			Value:      "v",
		}))
	}

	attributes, err := s.GetAttributes(ctx, []string{"doc-attribute-shape", "doc-attribute-missing", "doc-attribute-size"})
	require.NoError(t, err)
	require.Len(t, attributes, 2)
	assert.Equal(t, "shape", attributes[0].TraitType)
	assert.Equal(t, "size", attributes[1].TraitType)

	empty, err := s.GetAttributes(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testPagination(t *testing.T, s Store) {
	ctx := context.Background()

	require.NoError(t, s.CreateCouponRedeemed(ctx, buildTestRedemption("r3", "0xc1", 12, 0)))
	require.NoError(t, s.CreateCouponRedeemed(ctx, buildTestRedemption("r1", "0xc1", 10, 4)))
	require.NoError(t, s.CreateCouponRedeemed(ctx, buildTestRedemption("r2", "0xc1", 10, 9)))
	require.NoError(t, s.CreateCouponRedeemed(ctx, buildTestRedemption("other", "0xc2", 1, 0)))

	records, total, err := s.GetCouponRedemptions(ctx, "0xc1", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), total)
	require.Len(t, records, 2)
	assert.Equal(t, "r1", records[0].ID)
	assert.Equal(t, "r2", records[1].ID)

	records, total, err = s.GetCouponRedemptions(ctx, "0xc1", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), total)
	require.Len(t, records, 1)
	assert.Equal(t, "r3", records[0].ID)

	require.NoError(t, s.SaveCoupon(ctx, buildTestCoupon("0xc1", "p1")))
	coupons, total, err := s.GetCouponsByProject(ctx, "p1", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), total)
	require.Len(t, coupons, 1)
}
