package engine

import (
	"context"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pushcola/coupon-indexer/internal/adapter"
	"github.com/pushcola/coupon-indexer/internal/diagnostics"
	"github.com/pushcola/coupon-indexer/internal/domain"
	"github.com/pushcola/coupon-indexer/internal/mocks"
	"github.com/pushcola/coupon-indexer/internal/store"
	"github.com/pushcola/coupon-indexer/internal/store/storetest"
)

const (
	factoryAddr = "0x00000000000000000000000000000000000000f0"
	ownerU1     = "0x00000000000000000000000000000000000000a1"
	ownerU2     = "0x00000000000000000000000000000000000000a2"
	claimerU3   = "0x00000000000000000000000000000000000000a3"
	affiliateA1 = "0x00000000000000000000000000000000000000b1"
	affiliateA2 = "0x00000000000000000000000000000000000000b2"
	couponC1    = "0x00000000000000000000000000000000000000c1"
	couponC2    = "0x00000000000000000000000000000000000000c2"
	currency    = "0x00000000000000000000000000000000000000d1"
)

type testEnv struct {
	engine    *Engine
	store     store.Store
	diag      *diagnostics.Recorder
	requester *mocks.MockMetadataRequester
	ctx       context.Context
	txCount   int
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	st := store.NewPGStore(storetest.NewSQLiteDB(t))
	rec := diagnostics.NewRecorder()
	requester := mocks.NewMockMetadataRequester(ctrl)

	return &testEnv{
		engine:    New(st, rec, requester, adapter.NewClock()),
		store:     st,
		diag:      rec,
		requester: requester,
		ctx:       context.Background(),
	}
}

// envelope returns a distinct envelope on each call, in increasing chain order
func (e *testEnv) envelope(address string) domain.Envelope {
	e.txCount++
	return domain.Envelope{
		BlockNumber:    uint64(100 + e.txCount),
		BlockTimestamp: time.Unix(1700000000+int64(e.txCount)*12, 0).UTC(),
		TxHash:         common32(e.txCount),
		LogIndex:       uint(e.txCount % 3),
		Address:        address,
	}
}

func common32(n int) string {
	return fmt.Sprintf("0x%064x", n)
}

func (e *testEnv) dispatch(t *testing.T, env domain.Envelope, payload domain.Payload) Outcome {
	t.Helper()
	outcome, err := e.engine.Dispatch(e.ctx, domain.Event{Envelope: env, Payload: payload})
	require.NoError(t, err)
	return outcome
}

func (e *testEnv) apply(t *testing.T, address string, payload domain.Payload) Outcome {
	t.Helper()
	return e.dispatch(t, e.envelope(address), payload)
}

func projectCreated(id int64, owner, name string) *domain.ProjectCreated {
	return &domain.ProjectCreated{ProjectID: big.NewInt(id), Owner: owner, Name: name}
}

func lazyMintDeployed(projectID int64, coupon, uri string, budget, fee int64) *domain.LazyMintDeployed {
	return &domain.LazyMintDeployed{
		Creator:          ownerU1,
		LazyMintAddress:  coupon,
		URI:              uri,
		MaxSupply:        big.NewInt(100),
		ClaimStart:       big.NewInt(1700000000),
		ClaimEnd:         big.NewInt(1800000000),
		RedeemExpiration: big.NewInt(1900000000),
		LockedBudget:     big.NewInt(budget),
		CurrencyAddress:  currency,
		TokenID:          big.NewInt(0),
		Fee:              big.NewInt(fee),
		ProjectID:        big.NewInt(projectID),
	}
}

func assertDecimal(t *testing.T, expected int64, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.NewFromInt(expected).Equal(actual), "expected %d, got %s", expected, actual.String())
}

// seedCoupon creates project 1 and coupon C1 with the given budget and fee
func (e *testEnv) seedCoupon(t *testing.T, budget, fee int64) {
	t.Helper()
	e.requester.EXPECT().RequestMetadata(gomock.Any(), "abc123").Return(nil).AnyTimes()
	require.Equal(t, OutcomeApplied, e.apply(t, factoryAddr, projectCreated(1, ownerU1, "Fall Promo")))
	require.Equal(t, OutcomeApplied, e.apply(t, factoryAddr, lazyMintDeployed(1, couponC1, "ipfs://abc123/meta.json", budget, fee)))
}
