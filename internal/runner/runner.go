package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/pushcola/coupon-indexer/internal/adapter"
	"github.com/pushcola/coupon-indexer/internal/domain"
	"github.com/pushcola/coupon-indexer/internal/logger"
	jsprovider "github.com/pushcola/coupon-indexer/internal/providers/jetstream"
)

// Config holds the configuration for the indexer runner
type Config struct {
	JetStream      jsprovider.Config
	ConsumerName   string
	AckWaitTimeout time.Duration
	MaxDeliver     int
}

// Dispatcher applies one event to the entity store
//
//go:generate mockgen -source=runner.go -destination=../mocks/runner.go -package=mocks -mock_names=Dispatcher=MockDispatcher
type Dispatcher interface {
	Dispatch(ctx context.Context, event domain.Event) (domain.Outcome, error)
}

// MetadataSource fetches metadata documents out of band
//
//go:generate mockgen -source=runner.go -destination=../mocks/runner.go -package=mocks -mock_names=MetadataSource=MockMetadataSource
type MetadataSource interface {
	RequestMetadata(ctx context.Context, cid string) error
	Results() <-chan domain.MetadataFetched
}

// PendingMetadata lists documents registered but not delivered yet
//
//go:generate mockgen -source=runner.go -destination=../mocks/runner.go -package=mocks -mock_names=PendingMetadata=MockPendingMetadata
type PendingMetadata interface {
	GetPendingMetadata(ctx context.Context) ([]string, error)
}

// Runner defines the interface for the indexer runner
type Runner interface {
	// Run consumes chain events and metadata deliveries until ctx is done
	Run(ctx context.Context) error
	// Close closes the broker connection
	Close()
}

type runner struct {
	nc         adapter.NatsConn
	js         adapter.JetStream
	dispatcher Dispatcher
	metadata   MetadataSource
	pending    PendingMetadata
	codec      adapter.EventCodec
	config     Config
}

// NewRunner connects to NATS and returns a runner feeding dispatcher
func NewRunner(
	cfg Config,
	natsJS adapter.NatsJetStream,
	dispatcher Dispatcher,
	metadata MetadataSource,
	pending PendingMetadata,
	codec adapter.EventCodec,
) (Runner, error) {
	nc, js, err := natsJS.Connect(cfg.JetStream.URL, jsprovider.ConnectOptions(cfg.JetStream)...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	return &runner{
		nc:         nc,
		js:         js,
		dispatcher: dispatcher,
		metadata:   metadata,
		pending:    pending,
		codec:      codec,
		config:     cfg,
	}, nil
}

// Run applies events strictly one at a time. Stream messages and fetched
// metadata share a single loop so the engine never runs concurrently.
func (r *runner) Run(ctx context.Context) error {
	logger.InfoCtx(ctx, "Starting indexer runner",
		zap.String("stream", r.config.JetStream.StreamName),
		zap.String("consumer", r.config.ConsumerName))

	if err := r.requestPending(ctx); err != nil {
		return err
	}

	consumer, err := r.js.CreateOrUpdateConsumer(ctx, r.config.JetStream.StreamName, jetstream.ConsumerConfig{
		Durable:       r.config.ConsumerName,
		DeliverPolicy: jetstream.DeliverAllPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       r.config.AckWaitTimeout,
		MaxDeliver:    r.config.MaxDeliver,
		MaxAckPending: 1,
		FilterSubject: r.config.JetStream.SubjectFilter(),
	})
	if err != nil {
		return fmt.Errorf("failed to create/update consumer: %w", err)
	}

	info, err := consumer.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to get consumer info: %w", err)
	}
	logger.InfoCtx(ctx, "Consumer created/retrieved",
		zap.String("consumer", info.Name),
		zap.Uint64("pending", info.NumPending))

	msgChan := make(chan adapter.Message)
	sub, err := consumer.Consume(func(msg adapter.Message) {
		select {
		case msgChan <- msg:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	defer sub.Stop()

	results := r.metadata.Results()
	for {
		select {
		case <-ctx.Done():
			logger.InfoCtx(ctx, "Shutting down indexer runner")
			return ctx.Err()
		case msg := <-msgChan:
			r.handleMessage(ctx, msg)
		case fetched, ok := <-results:
			if !ok {
				results = nil
				continue
			}
			if err := r.handleMetadata(ctx, fetched); err != nil {
				return err
			}
		}
	}
}

// requestPending re-requests documents that were registered but never delivered
func (r *runner) requestPending(ctx context.Context) error {
	ids, err := r.pending.GetPendingMetadata(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pending metadata: %w", err)
	}

	for _, id := range ids {
		if err := r.metadata.RequestMetadata(ctx, id); err != nil {
			logger.WarnCtx(ctx, "Failed to re-request pending metadata", zap.String("cid", id), zap.Error(err))
		}
	}
	if len(ids) > 0 {
		logger.InfoCtx(ctx, "Re-requested pending metadata", zap.Int("count", len(ids)))
	}
	return nil
}

// handleMessage applies one stream message. Undecodable messages are
// terminated; infrastructure failures are NAK'ed for redelivery.
func (r *runner) handleMessage(ctx context.Context, msg adapter.Message) {
	var deliveries uint64
	if md, err := msg.Metadata(); err == nil && md != nil {
		deliveries = md.NumDelivered
	}

	event, err := r.codec.Decode(msg.Data())
	if err != nil {
		logger.ErrorCtx(ctx, err, zap.String("message", "Failed to decode event"))
		if err := msg.Term(); err != nil {
			logger.ErrorCtx(ctx, err, zap.String("message", "Failed to terminate message"))
		}
		return
	}

	outcome, err := r.dispatcher.Dispatch(ctx, event)
	if err != nil {
		logger.ErrorCtx(ctx, err,
			zap.String("message", "Failed to apply event"),
			zap.String("kind", string(event.Kind())),
			zap.String("txHash", event.TxHash),
			zap.Uint64("deliveryCount", deliveries))
		if err := msg.Nak(); err != nil {
			logger.ErrorCtx(ctx, err, zap.String("message", "Failed to NAK message"))
		}
		return
	}

	logger.DebugCtx(ctx, "Event applied",
		zap.String("kind", string(event.Kind())),
		zap.Uint64("block", event.BlockNumber),
		zap.Uint("logIndex", event.LogIndex),
		zap.String("outcome", outcome.String()))

	if err := msg.Ack(); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("message", "Failed to ACK message"))
	}
}

// handleMetadata applies a fetched document. A store failure stops the
// runner; the document stays pending and is re-requested on restart.
func (r *runner) handleMetadata(ctx context.Context, fetched domain.MetadataFetched) error {
	payload := fetched
	_, err := r.dispatcher.Dispatch(ctx, domain.Event{Payload: &payload})
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("failed to apply metadata %s: %w", fetched.DocumentID, err)
}

// Close closes the broker connection
func (r *runner) Close() {
	if r.nc == nil {
		return
	}

	r.nc.Close()
}
