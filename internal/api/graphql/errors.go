package graphql

import (
	"context"
	"errors"
	"fmt"

	"github.com/vektah/gqlparser/v2/gqlerror"
	"go.uber.org/zap"

	apierrors "github.com/pushcola/coupon-indexer/internal/api/shared/errors"
	"github.com/pushcola/coupon-indexer/internal/logger"
)

// ErrorPresenter formats errors with the same codes as the REST envelope.
// Parse and validation errors from gqlparser pass through unchanged.
func ErrorPresenter(ctx context.Context, err error) *gqlerror.Error {
	var apiErr *apierrors.APIError
	if !errors.As(err, &apiErr) {
		var gqlErr *gqlerror.Error
		if errors.As(err, &gqlErr) && gqlErr.Unwrap() == nil {
			return gqlErr
		}
		return handleInternalError(ctx, err)
	}

	switch apiErr.Code {
	case apierrors.ErrCodeInternalError, apierrors.ErrCodeDatabaseError:
		return handleInternalError(ctx, err)
	}

	gqlErr := &gqlerror.Error{
		Message: apiErr.Message,
		Extensions: map[string]interface{}{
			"code":    string(apiErr.Code),
			"message": apiErr.Message,
		},
	}
	if apiErr.Details != "" {
		gqlErr.Extensions["details"] = apiErr.Details
	}
	return gqlErr
}

func handleInternalError(ctx context.Context, err error) *gqlerror.Error {
	logger.ErrorCtx(ctx, err, zap.String("error", "Unhandled GraphQL error"))
	return &gqlerror.Error{
		Message: "Internal server error",
		Extensions: map[string]interface{}{
			"code":    string(apierrors.ErrCodeInternalError),
			"message": "Internal server error",
		},
	}
}

// RecoverFunc handles panics while executing an operation
func RecoverFunc(ctx context.Context, err interface{}) error {
	logger.ErrorCtx(ctx, fmt.Errorf("panic: %v", err), zap.Any("panic", err))
	return apierrors.NewInternalError("Internal server error")
}
