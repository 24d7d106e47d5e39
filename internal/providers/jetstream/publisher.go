package jetstream

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/pushcola/coupon-indexer/internal/adapter"
	"github.com/pushcola/coupon-indexer/internal/domain"
	"github.com/pushcola/coupon-indexer/internal/identity"
	"github.com/pushcola/coupon-indexer/internal/logger"
	"github.com/pushcola/coupon-indexer/internal/messaging"
	"github.com/pushcola/coupon-indexer/internal/metrics"
)

const (
	// DEFAULT_SUBJECT_PREFIX is the subject namespace of published chain events
	DEFAULT_SUBJECT_PREFIX = "coupons.events"
	// DEFAULT_DUPLICATE_WINDOW is how long the broker remembers message ids
	DEFAULT_DUPLICATE_WINDOW = 24 * time.Hour
)

// Config holds the configuration for NATS JetStream connection
type Config struct {
	URL             string
	StreamName      string
	SubjectPrefix   string
	DuplicateWindow time.Duration
	MaxReconnects   int
	ReconnectWait   time.Duration
	ConnectionName  string
}

// Subject returns the subject an event kind is published on
func (c Config) Subject(kind domain.EventKind) string {
	return fmt.Sprintf("%s.%s", c.subjectPrefix(), kind)
}

// SubjectFilter matches every event subject
func (c Config) SubjectFilter() string {
	return c.subjectPrefix() + ".>"
}

func (c Config) subjectPrefix() string {
	if c.SubjectPrefix == "" {
		return DEFAULT_SUBJECT_PREFIX
	}
	return strings.TrimSuffix(c.SubjectPrefix, ".")
}

// ConnectOptions returns the connection options shared by publisher and consumer
func ConnectOptions(cfg Config) []nats.Option {
	return []nats.Option{
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error(err, zap.String("message", "Disconnected from NATS"))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}
}

// EnsureStream creates the event stream or updates its subjects and duplicate window
func EnsureStream(ctx context.Context, js adapter.JetStream, cfg Config) error {
	window := cfg.DuplicateWindow
	if window == 0 {
		window = DEFAULT_DUPLICATE_WINDOW
	}

	err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       cfg.StreamName,
		Subjects:   []string{cfg.SubjectFilter()},
		Storage:    jetstream.FileStorage,
		Retention:  jetstream.LimitsPolicy,
		Duplicates: window,
	})
	if err != nil {
		return fmt.Errorf("failed to ensure stream %s: %w", cfg.StreamName, err)
	}
	return nil
}

type publisher struct {
	nc      adapter.NatsConn
	js      adapter.JetStream
	config  Config
	codec   adapter.EventCodec
	metrics *metrics.IndexerMetrics
}

// NewPublisher connects to NATS, ensures the event stream and returns a publisher
func NewPublisher(ctx context.Context, cfg Config, natsJS adapter.NatsJetStream, codec adapter.EventCodec) (messaging.Publisher, error) {
	nc, js, err := natsJS.Connect(cfg.URL, ConnectOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	if err := EnsureStream(ctx, js, cfg); err != nil {
		nc.Close()
		return nil, err
	}

	return &publisher{
		nc:      nc,
		js:      js,
		config:  cfg,
		codec:   codec,
		metrics: metrics.Indexer(),
	}, nil
}

// Publish publishes a chain event with its event id as the message id
func (p *publisher) Publish(ctx context.Context, event domain.Event) error {
	kind := event.Kind()
	if kind == "" {
		return fmt.Errorf("%w: missing payload", domain.ErrInvalidEvent)
	}

	data, err := p.codec.Encode(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	msgID := identity.EventID(event.TxHash, event.LogIndex)
	logger.DebugCtx(ctx, "Publishing NATS event",
		zap.String("kind", string(kind)),
		zap.String("msgID", msgID),
		zap.Uint64("block", event.BlockNumber))

	ack, err := p.js.Publish(ctx, p.config.Subject(kind), data, jetstream.WithMsgID(msgID))
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	if ack != nil && ack.Duplicate {
		logger.DebugCtx(ctx, "Event already in stream", zap.String("msgID", msgID))
	}

	p.metrics.ObservePublished(string(kind))
	return nil
}

// Close closes the NATS connection
func (p *publisher) Close() {
	if p.nc == nil {
		return
	}

	p.nc.Close()
}
