package engine

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pushcola/coupon-indexer/internal/diagnostics"
	"github.com/pushcola/coupon-indexer/internal/domain"
	"github.com/pushcola/coupon-indexer/internal/identity"
	"github.com/pushcola/coupon-indexer/internal/store/schema"
)

func redeemed(affiliate string, fee *big.Int) *domain.CouponRedeemed {
	return &domain.CouponRedeemed{
		Owner:            ownerU2,
		TokenID:          big.NewInt(0),
		AffiliateAddress: affiliate,
		Fee:              fee,
		ContractAddress:  couponC1,
		Timestamp:        big.NewInt(1700000500),
		Currency:         currency,
	}
}

func claimed(claimer, affiliate string, quantity int64) *domain.TokenClaimed {
	return &domain.TokenClaimed{
		Claimer:          claimer,
		Receiver:         claimer,
		TokenID:          big.NewInt(0),
		Quantity:         big.NewInt(quantity),
		AffiliateAddress: affiliate,
		ContractAddress:  couponC1,
		Timestamp:        big.NewInt(1700000600),
	}
}

func TestAffiliateRegistered(t *testing.T) {
	te := setup(t)

	t.Run("unknown coupon is rejected", func(t *testing.T) {
		assert.Equal(t, OutcomeRejected, te.apply(t, couponC1, &domain.AffiliateRegistered{Affiliate: affiliateA1, ContractAddress: couponC1}))
		affiliate, err := te.store.GetAffiliate(te.ctx, identity.AffiliateID(affiliateA1, couponC1))
		require.NoError(t, err)
		assert.Nil(t, affiliate)
		user, err := te.store.GetUser(te.ctx, identity.UserID(affiliateA1))
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	te.seedCoupon(t, 1000, 10)

	t.Run("first registration wins", func(t *testing.T) {
		assert.Equal(t, OutcomeApplied, te.apply(t, couponC1, &domain.AffiliateRegistered{Affiliate: affiliateA1, ContractAddress: couponC1}))
		assert.Equal(t, OutcomeNoOp, te.apply(t, couponC1, &domain.AffiliateRegistered{Affiliate: affiliateA1, ContractAddress: couponC1}))

		project, err := te.store.GetProject(te.ctx, identity.ProjectID(big.NewInt(1)))
		require.NoError(t, err)
		assertDecimal(t, 2000, project.TotalBudgetLocked)
	})

	t.Run("contract address falls back to emitter", func(t *testing.T) {
		assert.Equal(t, OutcomeApplied, te.apply(t, couponC1, &domain.AffiliateRegistered{Affiliate: affiliateA2}))
		affiliate, err := te.store.GetAffiliate(te.ctx, identity.AffiliateID(affiliateA2, couponC1))
		require.NoError(t, err)
		require.NotNil(t, affiliate)
		assert.Equal(t, identity.ProjectID(big.NewInt(1)), affiliate.ProjectID)
	})

	t.Run("zero affiliate is rejected", func(t *testing.T) {
		assert.Equal(t, OutcomeRejected, te.apply(t, couponC1, &domain.AffiliateRegistered{Affiliate: domain.ETHEREUM_ZERO_ADDRESS, ContractAddress: couponC1}))
	})
}

func TestCouponRedeemed_SynthesizedAffiliate(t *testing.T) {
	te := setup(t)
	te.seedCoupon(t, 1000, 10)

	assert.Equal(t, OutcomeApplied, te.apply(t, couponC1, redeemed(affiliateA1, nil)))
	assert.True(t, te.diag.Contains(diagnostics.LevelInfo, "synthesized"))

	affiliateID := identity.AffiliateID(affiliateA1, couponC1)
	affiliate, err := te.store.GetAffiliate(te.ctx, affiliateID)
	require.NoError(t, err)
	require.NotNil(t, affiliate)
	assert.Equal(t, schema.AffiliateStatusSynthesized, affiliate.Status)
	assert.Equal(t, uint64(1), affiliate.TotalRedemptions)
	assertDecimal(t, 10, affiliate.TotalEarnings)
	assertDecimal(t, 10, affiliate.TotalPaidOut)

	redemptions, _, err := te.store.GetCouponRedemptions(te.ctx, identity.CouponID(couponC1), 10, 0)
	require.NoError(t, err)
	require.Len(t, redemptions, 1)
	assert.Equal(t, affiliateID, *redemptions[0].AffiliateID)
	assertDecimal(t, 10, redemptions[0].Fee)

	// the late registration promotes and locks the budget once
	assert.Equal(t, OutcomeApplied, te.apply(t, couponC1, &domain.AffiliateRegistered{Affiliate: affiliateA1, ContractAddress: couponC1}))
	affiliate, err = te.store.GetAffiliate(te.ctx, affiliateID)
	require.NoError(t, err)
	assert.Equal(t, schema.AffiliateStatusRegistered, affiliate.Status)
	assertDecimal(t, 10, affiliate.TotalEarnings)

	project, err := te.store.GetProject(te.ctx, identity.ProjectID(big.NewInt(1)))
	require.NoError(t, err)
	assertDecimal(t, 2000, project.TotalBudgetLocked)

	assert.Equal(t, OutcomeNoOp, te.apply(t, couponC1, &domain.AffiliateRegistered{Affiliate: affiliateA1, ContractAddress: couponC1}))
	project, err = te.store.GetProject(te.ctx, identity.ProjectID(big.NewInt(1)))
	require.NoError(t, err)
	assertDecimal(t, 2000, project.TotalBudgetLocked)
}

func TestCouponRedeemed(t *testing.T) {
	tests := []struct {
		name        string
		affiliate   string
		fee         *big.Int
		paid        int64
		hasAffilite bool
	}{
		{name: "event fee", affiliate: affiliateA1, fee: big.NewInt(7), paid: 7, hasAffilite: true},
		{name: "coupon fee fallback", affiliate: affiliateA1, fee: nil, paid: 10, hasAffilite: true},
		{name: "no affiliate", affiliate: domain.ETHEREUM_ZERO_ADDRESS, fee: big.NewInt(7), paid: 0},
		{name: "empty affiliate", affiliate: "", fee: nil, paid: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			te := setup(t)
			te.seedCoupon(t, 1000, 10)

			assert.Equal(t, OutcomeApplied, te.apply(t, couponC1, redeemed(tt.affiliate, tt.fee)))

			coupon, err := te.store.GetCoupon(te.ctx, identity.CouponID(couponC1))
			require.NoError(t, err)
			assert.True(t, coupon.IsRedeemed)
			assert.Equal(t, uint64(1), coupon.TotalRedemptions)
			assertDecimal(t, tt.paid, coupon.TotalAffiliatePayments)

			project, err := te.store.GetProject(te.ctx, coupon.ProjectID)
			require.NoError(t, err)
			assert.Equal(t, uint64(1), project.TotalRedemptions)
			assertDecimal(t, tt.paid, project.TotalAffiliatePayments)

			redemptions, _, err := te.store.GetCouponRedemptions(te.ctx, coupon.Address, 10, 0)
			require.NoError(t, err)
			require.Len(t, redemptions, 1)
			assert.Equal(t, tt.hasAffilite, redemptions[0].AffiliateID != nil)
			assertDecimal(t, tt.paid, redemptions[0].Fee)
		})
	}
}

func TestCouponRedeemed_Duplicate(t *testing.T) {
	te := setup(t)
	te.seedCoupon(t, 1000, 10)

	env := te.envelope(couponC1)
	assert.Equal(t, OutcomeApplied, te.dispatch(t, env, redeemed(affiliateA1, nil)))
	assert.Equal(t, OutcomeNoOp, te.dispatch(t, env, redeemed(affiliateA1, nil)))

	coupon, err := te.store.GetCoupon(te.ctx, identity.CouponID(couponC1))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), coupon.TotalRedemptions)
	assertDecimal(t, 10, coupon.TotalAffiliatePayments)

	affiliate, err := te.store.GetAffiliate(te.ctx, identity.AffiliateID(affiliateA1, couponC1))
	require.NoError(t, err)
	assertDecimal(t, 10, affiliate.TotalEarnings)
}

func TestCouponRedeemed_FirstRedemptionTimeKept(t *testing.T) {
	te := setup(t)
	te.seedCoupon(t, 1000, 10)

	first := te.envelope(couponC1)
	require.Equal(t, OutcomeApplied, te.dispatch(t, first, redeemed("", nil)))
	require.Equal(t, OutcomeApplied, te.apply(t, couponC1, redeemed("", nil)))

	coupon, err := te.store.GetCoupon(te.ctx, identity.CouponID(couponC1))
	require.NoError(t, err)
	require.NotNil(t, coupon.RedeemedAt)
	assert.True(t, first.BlockTimestamp.Equal(*coupon.RedeemedAt))
	assert.Equal(t, uint64(2), coupon.TotalRedemptions)
}

func TestCouponRedeemed_UnknownCoupon(t *testing.T) {
	te := setup(t)

	assert.Equal(t, OutcomeRejected, te.apply(t, couponC1, redeemed(affiliateA1, nil)))

	user, err := te.store.GetUser(te.ctx, identity.UserID(ownerU2))
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestTokenClaimed_AggregateConservation(t *testing.T) {
	te := setup(t)
	te.seedCoupon(t, 1000, 10)
	require.Equal(t, OutcomeApplied, te.apply(t, couponC1, &domain.AffiliateRegistered{Affiliate: affiliateA1, ContractAddress: couponC1}))

	claims := []struct {
		claimer   string
		affiliate string
		quantity  int64
	}{
		{claimer: ownerU2, affiliate: affiliateA1, quantity: 2},
		{claimer: claimerU3, affiliate: affiliateA1, quantity: 3},
		{claimer: ownerU2, affiliate: affiliateA1, quantity: 1},
		{claimer: claimerU3, affiliate: "", quantity: 4},
		{claimer: ownerU2, affiliate: affiliateA2, quantity: 5},
	}

	var total int64
	for _, c := range claims {
		require.Equal(t, OutcomeApplied, te.apply(t, couponC1, claimed(c.claimer, c.affiliate, c.quantity)))
		total += c.quantity
	}

	coupon, err := te.store.GetCoupon(te.ctx, identity.CouponID(couponC1))
	require.NoError(t, err)
	assertDecimal(t, total, coupon.TotalClaims)
	assert.Equal(t, []string{identity.UserID(ownerU2), identity.UserID(claimerU3)}, coupon.Owners)

	project, err := te.store.GetProject(te.ctx, coupon.ProjectID)
	require.NoError(t, err)
	assertDecimal(t, total, project.TotalClaims)
	assert.Equal(t, []string{identity.UserID(ownerU2), identity.UserID(claimerU3)}, project.UniqueClaimers)

	a1, err := te.store.GetAffiliate(te.ctx, identity.AffiliateID(affiliateA1, couponC1))
	require.NoError(t, err)
	assertDecimal(t, 6, a1.TotalClaims)
	assertDecimal(t, 60, a1.TotalAccrued)
	assert.Equal(t, []string{identity.UserID(ownerU2), identity.UserID(claimerU3)}, a1.UniqueClaimers)

	a2, err := te.store.GetAffiliate(te.ctx, identity.AffiliateID(affiliateA2, couponC1))
	require.NoError(t, err)
	require.NotNil(t, a2)
	assert.Equal(t, schema.AffiliateStatusSynthesized, a2.Status)
	assertDecimal(t, 5, a2.TotalClaims)
	assertDecimal(t, 50, a2.TotalAccrued)

	records, count, err := te.store.GetTokenClaims(te.ctx, coupon.Address, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(len(claims)), count)
	assert.Len(t, records, len(claims))

	// sum of per-affiliate claims plus unattributed claims equals the coupon total
	assertDecimal(t, total, a1.TotalClaims.Add(a2.TotalClaims).Add(records[3].Quantity))
}

func TestAffiliate_AccruedKeptAfterPayout(t *testing.T) {
	te := setup(t)
	te.seedCoupon(t, 1000, 10)
	require.Equal(t, OutcomeApplied, te.apply(t, couponC1, &domain.AffiliateRegistered{Affiliate: affiliateA1, ContractAddress: couponC1}))

	require.Equal(t, OutcomeApplied, te.apply(t, couponC1, claimed(claimerU3, affiliateA1, 3)))
	require.Equal(t, OutcomeApplied, te.apply(t, couponC1, redeemed(affiliateA1, big.NewInt(7))))

	affiliate, err := te.store.GetAffiliate(te.ctx, identity.AffiliateID(affiliateA1, couponC1))
	require.NoError(t, err)
	assertDecimal(t, 30, affiliate.TotalAccrued)
	assertDecimal(t, 7, affiliate.TotalPaidOut)
	assertDecimal(t, 7, affiliate.TotalEarnings)
}

func TestTokenClaimed_Duplicate(t *testing.T) {
	te := setup(t)
	te.seedCoupon(t, 1000, 10)

	env := te.envelope(couponC1)
	assert.Equal(t, OutcomeApplied, te.dispatch(t, env, claimed(ownerU2, affiliateA1, 2)))
	assert.Equal(t, OutcomeNoOp, te.dispatch(t, env, claimed(ownerU2, affiliateA1, 2)))

	coupon, err := te.store.GetCoupon(te.ctx, identity.CouponID(couponC1))
	require.NoError(t, err)
	assertDecimal(t, 2, coupon.TotalClaims)
}

func TestTokenClaimed_UnknownCoupon(t *testing.T) {
	te := setup(t)
	assert.Equal(t, OutcomeRejected, te.apply(t, couponC1, claimed(ownerU2, affiliateA1, 2)))
	assert.Equal(t, 1, te.diag.Count(diagnostics.LevelError))
}
