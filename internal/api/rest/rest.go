package rest

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler) {
	// Health check endpoint (no version prefix)
	router.GET("/healthz", handler.HealthCheck)

	v1 := router.Group("/v1")
	{
		v1.GET("/projects/:id", handler.GetProject)

		v1.GET("/coupons/:address", handler.GetCoupon)
		v1.GET("/coupons/:address/redemptions", handler.GetCouponRedemptions)
		v1.GET("/coupons/:address/claims", handler.GetCouponClaims)

		v1.GET("/affiliates/:id", handler.GetAffiliate)

		v1.GET("/metadata/:cid", handler.GetMetadata)
	}
}
