// Package diagnostics records the non-fatal decisions taken while applying
// events: skipped fields, rejected events, synthesized entities.
package diagnostics

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pushcola/coupon-indexer/internal/logger"
	"github.com/pushcola/coupon-indexer/internal/metrics"
)

// Level is the severity of a diagnostic entry
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Sink receives leveled diagnostics. Implementations must not fail.
type Sink interface {
	Info(ctx context.Context, format string, args ...interface{})
	Warning(ctx context.Context, format string, args ...interface{})
	Error(ctx context.Context, format string, args ...interface{})
}

type zapSink struct {
	metrics *metrics.IndexerMetrics
}

// NewZapSink returns a Sink writing through the global logger and counting
// entries per level
func NewZapSink() Sink {
	return &zapSink{metrics: metrics.Indexer()}
}

func (s *zapSink) Info(ctx context.Context, format string, args ...interface{}) {
	s.metrics.ObserveDiagnostic(string(LevelInfo))
	logger.InfoCtx(ctx, fmt.Sprintf(format, args...), zap.String("diagnostic", string(LevelInfo)))
}

func (s *zapSink) Warning(ctx context.Context, format string, args ...interface{}) {
	s.metrics.ObserveDiagnostic(string(LevelWarning))
	logger.WarnCtx(ctx, fmt.Sprintf(format, args...), zap.String("diagnostic", string(LevelWarning)))
}

func (s *zapSink) Error(ctx context.Context, format string, args ...interface{}) {
	s.metrics.ObserveDiagnostic(string(LevelError))
	// Logged at warn level: diagnostics never carry an error value and must
	// not page through sentry.
	logger.WarnCtx(ctx, fmt.Sprintf(format, args...), zap.String("diagnostic", string(LevelError)))
}
