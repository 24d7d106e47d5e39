package graphql

import (
	"context"

	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/handler/extension"
	"github.com/99designs/gqlgen/graphql/handler/transport"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pushcola/coupon-indexer/internal/api/shared/executor"
	"github.com/pushcola/coupon-indexer/internal/logger"
)

// complexityLimit bounds one operation; a full page of coupons with every field fits
const complexityLimit = 5000

// Handler defines the interface for GraphQL handlers
type Handler interface {
	// HandleGraphQL processes GraphQL queries
	HandleGraphQL(c *gin.Context)
}

type gqlHandler struct {
	server *handler.Server
}

// NewHandler creates a new GraphQL handler using the shared executor
func NewHandler(exec executor.Executor) Handler {
	srv := handler.New(NewExecutableSchema(NewResolver(exec)))
	srv.AddTransport(transport.GET{})
	srv.AddTransport(transport.POST{})
	srv.Use(extension.FixedComplexityLimit(complexityLimit))

	srv.SetErrorPresenter(ErrorPresenter)
	srv.SetRecoverFunc(RecoverFunc)
	srv.AroundOperations(func(ctx context.Context, next graphql.OperationHandler) graphql.ResponseHandler {
		opctx := graphql.GetOperationContext(ctx)
		logger.DebugCtx(ctx, "GraphQL operation",
			zap.String("operation", opctx.OperationName),
		)
		return next(ctx)
	})

	return &gqlHandler{server: srv}
}

// HandleGraphQL processes GraphQL queries
func (h *gqlHandler) HandleGraphQL(c *gin.Context) {
	h.server.ServeHTTP(c.Writer, c.Request)
}

// SetupRoutes configures GraphQL API routes
func SetupRoutes(router *gin.Engine, handler Handler) {
	router.POST("/graphql", handler.HandleGraphQL)
	router.GET("/graphql", handler.HandleGraphQL)
}
