package rest

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pushcola/coupon-indexer/internal/api/shared/dto"
	"github.com/pushcola/coupon-indexer/internal/api/shared/executor"
)

// Handler defines the interface for REST API handlers
// This interface allows for easy mocking and testing
type Handler interface {
	// GetProject retrieves a project by its on-chain id (decimal or 32-byte hex)
	// GET /v1/projects/:id?expand=coupons&coupons.limit=<limit>&coupons.offset=<offset>
	GetProject(c *gin.Context)

	// GetCoupon retrieves a coupon by contract address
	// GET /v1/coupons/:address?expand=metadata,affiliates&affiliates.limit=<limit>&affiliates.offset=<offset>
	GetCoupon(c *gin.Context)

	// GetCouponRedemptions lists the redemptions of a coupon in chain order
	// GET /v1/coupons/:address/redemptions?limit=<limit>&offset=<offset>
	GetCouponRedemptions(c *gin.Context)

	// GetCouponClaims lists the claims of a coupon in chain order
	// GET /v1/coupons/:address/claims?limit=<limit>&offset=<offset>
	GetCouponClaims(c *gin.Context)

	// GetAffiliate retrieves an affiliate by id
	// GET /v1/affiliates/:id
	GetAffiliate(c *gin.Context)

	// GetMetadata retrieves a normalized metadata document by content identifier
	// GET /v1/metadata/:cid
	GetMetadata(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /healthz
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	executor executor.Executor
}

// NewHandler creates a new REST API handler using the shared executor
func NewHandler(exec executor.Executor) Handler {
	return &handler{
		executor: exec,
	}
}

// GetProject retrieves a project by its on-chain id
func (h *handler) GetProject(c *gin.Context) {
	id, ok := ParseProjectID(c.Param("id"))
	if !ok {
		respondBadRequest(c, "Invalid project id")
		return
	}

	expand, coupons, err := ParseGetProjectQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	project, err := h.executor.GetProject(c.Request.Context(), id, expand, coupons)
	if err != nil {
		respondInternalError(c, err, "Failed to get project")
		return
	}

	if project == nil {
		respondNotFound(c, "Project not found")
		return
	}

	c.JSON(http.StatusOK, project)
}

// GetCoupon retrieves a coupon by contract address
func (h *handler) GetCoupon(c *gin.Context) {
	address, ok := ParseAddress(c.Param("address"))
	if !ok {
		respondBadRequest(c, "Invalid coupon address")
		return
	}

	expand, affiliates, err := ParseGetCouponQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	coupon, err := h.executor.GetCoupon(c.Request.Context(), address, expand, affiliates)
	if err != nil {
		respondInternalError(c, err, "Failed to get coupon")
		return
	}

	if coupon == nil {
		respondNotFound(c, "Coupon not found")
		return
	}

	c.JSON(http.StatusOK, coupon)
}

// GetCouponRedemptions lists the redemptions of a coupon
func (h *handler) GetCouponRedemptions(c *gin.Context) {
	address, ok := ParseAddress(c.Param("address"))
	if !ok {
		respondBadRequest(c, "Invalid coupon address")
		return
	}

	page, err := ParsePageQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	redemptions, err := h.executor.GetCouponRedemptions(c.Request.Context(), address, page)
	if err != nil {
		respondInternalError(c, err, "Failed to get redemptions")
		return
	}

	if redemptions == nil {
		respondNotFound(c, "Coupon not found")
		return
	}

	c.JSON(http.StatusOK, redemptions)
}

// GetCouponClaims lists the claims of a coupon
func (h *handler) GetCouponClaims(c *gin.Context) {
	address, ok := ParseAddress(c.Param("address"))
	if !ok {
		respondBadRequest(c, "Invalid coupon address")
		return
	}

	page, err := ParsePageQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	claims, err := h.executor.GetCouponClaims(c.Request.Context(), address, page)
	if err != nil {
		respondInternalError(c, err, "Failed to get claims")
		return
	}

	if claims == nil {
		respondNotFound(c, "Coupon not found")
		return
	}

	c.JSON(http.StatusOK, claims)
}

// GetAffiliate retrieves an affiliate by id
func (h *handler) GetAffiliate(c *gin.Context) {
	id, ok := ParseHashID(c.Param("id"))
	if !ok {
		respondBadRequest(c, "Invalid affiliate id")
		return
	}

	affiliate, err := h.executor.GetAffiliate(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "Failed to get affiliate")
		return
	}

	if affiliate == nil {
		respondNotFound(c, "Affiliate not found")
		return
	}

	c.JSON(http.StatusOK, affiliate)
}

// GetMetadata retrieves a metadata document by content identifier
func (h *handler) GetMetadata(c *gin.Context) {
	cid := strings.TrimSpace(c.Param("cid"))
	if cid == "" {
		respondBadRequest(c, "Metadata CID is required")
		return
	}

	metadata, err := h.executor.GetMetadata(c.Request.Context(), cid)
	if err != nil {
		respondInternalError(c, err, "Failed to get metadata")
		return
	}

	if metadata == nil {
		respondNotFound(c, "Metadata not found")
		return
	}

	c.JSON(http.StatusOK, metadata)
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:  "ok",
		Service: "coupon-indexer-api",
	})
}
