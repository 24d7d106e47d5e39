package rest

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/pushcola/coupon-indexer/internal/api/shared/errors"
	"github.com/pushcola/coupon-indexer/internal/logger"
)

func respond(c *gin.Context, apiErr *apierrors.APIError) {
	c.AbortWithStatusJSON(apiErr.HTTPStatus(), apiErr)
}

func respondBadRequest(c *gin.Context, message string, details ...string) {
	respond(c, apierrors.NewBadRequestError(message, details...))
}

func respondNotFound(c *gin.Context, message string, details ...string) {
	respond(c, apierrors.NewNotFoundError(message, details...))
}

func respondValidationError(c *gin.Context, message string) {
	respond(c, apierrors.NewValidationError(message))
}

// respondInternalError logs err and answers with a 5xx envelope.
// Executor errors keep their own code.
func respondInternalError(c *gin.Context, err error, message string) {
	logger.ErrorCtx(c.Request.Context(), err,
		zap.String("message", message),
		zap.String("path", c.Request.URL.Path))

	var apiErr *apierrors.APIError
	if !errors.As(err, &apiErr) {
		apiErr = apierrors.NewInternalError(message)
	}
	respond(c, apiErr)
}
