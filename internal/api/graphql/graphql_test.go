package graphql_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pushcola/coupon-indexer/internal/api/graphql"
	"github.com/pushcola/coupon-indexer/internal/api/shared/dto"
	apierrors "github.com/pushcola/coupon-indexer/internal/api/shared/errors"
	"github.com/pushcola/coupon-indexer/internal/api/shared/executor"
	"github.com/pushcola/coupon-indexer/internal/api/shared/types"
	"github.com/pushcola/coupon-indexer/internal/logger"
	"github.com/pushcola/coupon-indexer/internal/mocks"
)

const (
	couponAddress = "0x00000000000000000000000000000000000000c1"
	projectHexID  = "0x0000000000000000000000000000000000000000000000000000000000000007"
	affiliateID   = "0x1111111111111111111111111111111111111111111111111111111111111111"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	gin.SetMode(gin.TestMode)

	os.Exit(m.Run())
}

type gqlError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path"`
	Extensions map[string]any `json:"extensions"`
}

type gqlResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []gqlError                 `json:"errors"`
}

func setupRouter(t *testing.T) (*gin.Engine, *mocks.MockAPIExecutor) {
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockAPIExecutor(ctrl)

	router := gin.New()
	graphql.SetupRoutes(router, graphql.NewHandler(exec))
	return router, exec
}

func post(t *testing.T, router *gin.Engine, query string, variables map[string]any) gqlResponse {
	body, err := json.Marshal(map[string]any{"query": query, "variables": variables})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var resp gqlResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestGraphQL_CouponSelection(t *testing.T) {
	router, exec := setupRouter(t)
	exec.EXPECT().
		GetCoupon(gomock.Any(), couponAddress,
			[]types.Expansion{types.ExpansionMetadata, types.ExpansionAffiliates},
			executor.Page{Limit: 5, Offset: 0}).
		Return(&dto.CouponResponse{
			Address:  couponAddress,
			Fee:      decimal.RequireFromString("1000000000000000000000"),
			Currency: "USDC",
			Owners:   []string{},
			Metadata: &dto.MetadataResponse{Name: "Cola Coupon"},
			Affiliates: &dto.PaginatedAffiliates{
				Affiliates: []dto.AffiliateResponse{
					{ID: affiliateID, TotalAccrued: decimal.NewFromInt(30)},
				},
				Total: 1,
			},
		}, nil)

	resp := post(t, router, `{
		c: coupon(address: "0x00000000000000000000000000000000000000C1") {
			__typename
			fee
			metadata { name }
			affiliates(limit: 5) { items { id total_accrued } total offset }
		}
	}`, nil)

	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `{
		"__typename": "Coupon",
		"fee": "1000000000000000000000",
		"metadata": {"name": "Cola Coupon"},
		"affiliates": {
			"items": [{"id": "`+affiliateID+`", "total_accrued": "30"}],
			"total": 1,
			"offset": null
		}
	}`, string(resp.Data["c"]))
}

func TestGraphQL_Query(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		variables map[string]any
		setup     func(exec *mocks.MockAPIExecutor)
		wantData  string
		wantCode  apierrors.ErrorCode
	}{
		{
			name:  "coupon without expansions",
			query: `{ coupon(address: "` + couponAddress + `") { address currency } }`,
			setup: func(exec *mocks.MockAPIExecutor) {
				exec.EXPECT().
					GetCoupon(gomock.Any(), couponAddress, gomock.Nil(), executor.Page{Limit: 20, Offset: 0}).
					Return(&dto.CouponResponse{Address: couponAddress, Currency: "USDC"}, nil)
			},
			wantData: `{"coupon": {"address": "` + couponAddress + `", "currency": "USDC"}}`,
		},
		{
			name:  "project with coupons page",
			query: `{ project(id: "7") { name coupons(limit: 500, offset: "3") { total } } }`,
			setup: func(exec *mocks.MockAPIExecutor) {
				exec.EXPECT().
					GetProject(gomock.Any(), projectHexID, []types.Expansion{types.ExpansionCoupons}, executor.Page{Limit: 100, Offset: 3}).
					Return(&dto.ProjectResponse{
						ID:      projectHexID,
						Name:    "Spring",
						Coupons: &dto.PaginatedCoupons{Coupons: []dto.CouponResponse{}, Total: 4},
					}, nil)
			},
			wantData: `{"project": {"name": "Spring", "coupons": {"total": 4}}}`,
		},
		{
			name:  "unknown project is null",
			query: `{ project(id: "0x7") { id } }`,
			setup: func(exec *mocks.MockAPIExecutor) {
				exec.EXPECT().GetProject(gomock.Any(), projectHexID, gomock.Any(), gomock.Any()).Return(nil, nil)
			},
			wantData: `{"project": null}`,
		},
		{
			name:      "redemptions with variables",
			query:     `query Activity($coupon: String!, $limit: Int) { redemptions(coupon: $coupon, limit: $limit) { total items { fee } } }`,
			variables: map[string]any{"coupon": couponAddress, "limit": 500},
			setup: func(exec *mocks.MockAPIExecutor) {
				exec.EXPECT().
					GetCouponRedemptions(gomock.Any(), couponAddress, executor.Page{Limit: 100, Offset: 0}).
					Return(&dto.RedemptionListResponse{
						Redemptions: []dto.RedemptionResponse{{Fee: decimal.NewFromInt(7)}},
						Total:       1,
					}, nil)
			},
			wantData: `{"redemptions": {"total": 1, "items": [{"fee": "7"}]}}`,
		},
		{
			name:  "claims default page",
			query: `{ claims(coupon: "` + couponAddress + `") { total } }`,
			setup: func(exec *mocks.MockAPIExecutor) {
				exec.EXPECT().
					GetCouponClaims(gomock.Any(), couponAddress, executor.Page{Limit: 50, Offset: 0}).
					Return(&dto.ClaimListResponse{Claims: []dto.ClaimResponse{}}, nil)
			},
			wantData: `{"claims": {"total": 0}}`,
		},
		{
			name:     "invalid address",
			query:    `{ coupon(address: "0x1234") { address } }`,
			setup:    func(exec *mocks.MockAPIExecutor) {},
			wantData: `{"coupon": null}`,
			wantCode: apierrors.ErrCodeBadRequest,
		},
		{
			name:     "non positive limit",
			query:    `{ claims(coupon: "` + couponAddress + `", limit: 0) { total } }`,
			setup:    func(exec *mocks.MockAPIExecutor) {},
			wantData: `{"claims": null}`,
			wantCode: apierrors.ErrCodeValidationFailed,
		},
		{
			name:  "database error is masked",
			query: `{ metadata(cid: "bafy") { name } }`,
			setup: func(exec *mocks.MockAPIExecutor) {
				exec.EXPECT().
					GetMetadata(gomock.Any(), "bafy").
					Return(nil, apierrors.NewDatabaseError("Failed to get metadata", errors.New("connection reset")))
			},
			wantData: `{"metadata": null}`,
			wantCode: apierrors.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, exec := setupRouter(t)
			tt.setup(exec)

			resp := post(t, router, tt.query, tt.variables)

			data, err := json.Marshal(resp.Data)
			require.NoError(t, err)
			assert.JSONEq(t, tt.wantData, string(data))

			if tt.wantCode == "" {
				assert.Empty(t, resp.Errors)
				return
			}
			require.Len(t, resp.Errors, 1)
			assert.Equal(t, string(tt.wantCode), resp.Errors[0].Extensions["code"])
		})
	}
}

func TestGraphQL_PartialFailure(t *testing.T) {
	router, exec := setupRouter(t)
	exec.EXPECT().
		GetMetadata(gomock.Any(), "bafy").
		Return(&dto.MetadataResponse{ID: "bafy", Name: "Cola Coupon", Attributes: []dto.AttributeResponse{}}, nil)

	resp := post(t, router, `{
		a: affiliate(id: "0x12") { id }
		m: metadata(cid: "bafy") { id name attributes { trait_type } }
	}`, nil)

	assert.JSONEq(t, `null`, string(resp.Data["a"]))
	assert.JSONEq(t, `{"id": "bafy", "name": "Cola Coupon", "attributes": []}`, string(resp.Data["m"]))

	require.Len(t, resp.Errors, 1)
	assert.Equal(t, []any{"a"}, resp.Errors[0].Path)
	assert.Equal(t, string(apierrors.ErrCodeBadRequest), resp.Errors[0].Extensions["code"])
}

func TestGraphQL_Rejected(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{name: "unknown field", query: `{ coupon(address: "` + couponAddress + `") { holders } }`},
		{name: "missing argument", query: `{ affiliate { id } }`},
		{name: "mutation", query: `mutation { coupon(address: "x") { address } }`},
		{name: "syntax", query: `{ coupon(`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// no executor call is expected
			router, _ := setupRouter(t)

			resp := post(t, router, tt.query, nil)
			assert.NotEmpty(t, resp.Errors)
			assert.Empty(t, resp.Data)
		})
	}
}

func TestGraphQL_Typename(t *testing.T) {
	router, _ := setupRouter(t)

	resp := post(t, router, `{ __typename }`, nil)
	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `"Query"`, string(resp.Data["__typename"]))
}
