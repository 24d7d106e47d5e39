// Package engine applies indexed events to the entity store. Events must be
// dispatched one at a time in (block, log index) order; each one runs in its
// own store transaction.
package engine

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/pushcola/coupon-indexer/internal/adapter"
	"github.com/pushcola/coupon-indexer/internal/diagnostics"
	"github.com/pushcola/coupon-indexer/internal/domain"
	"github.com/pushcola/coupon-indexer/internal/logger"
	"github.com/pushcola/coupon-indexer/internal/metadata"
	"github.com/pushcola/coupon-indexer/internal/metrics"
	"github.com/pushcola/coupon-indexer/internal/store"
	"github.com/pushcola/coupon-indexer/internal/store/schema"
)

// Outcome is the result of applying one event
type Outcome = domain.Outcome

const (
	OutcomeApplied  = domain.OutcomeApplied
	OutcomeNoOp     = domain.OutcomeNoOp
	OutcomeRejected = domain.OutcomeRejected
)

// MetadataRequester schedules the retrieval of a metadata document.
// Retrieved documents come back as MetadataFetched events.
//
//go:generate mockgen -source=engine.go -destination=../mocks/engine.go -package=mocks -mock_names=MetadataRequester=MockMetadataRequester
type MetadataRequester interface {
	RequestMetadata(ctx context.Context, cid string) error
}

// TemplateRegistrar records the dynamic data sources discovered while
// applying events, inside the event's transaction
type TemplateRegistrar interface {
	RegisterTemplate(ctx context.Context, st store.EntityStore, source *schema.DataSource) error
}

// StoreTemplateRegistrar keeps data sources in the data_sources table
type StoreTemplateRegistrar struct{}

func (StoreTemplateRegistrar) RegisterTemplate(ctx context.Context, st store.EntityStore, source *schema.DataSource) error {
	if err := st.SaveDataSource(ctx, source); err != nil {
		return fmt.Errorf("failed to register %s data source %s: %w", source.Template, source.Param, err)
	}
	return nil
}

// errRejected rolls back the transaction of a rejected event
var errRejected = errors.New("event rejected")

// Engine is the event dispatcher
type Engine struct {
	store      store.Store
	diag       diagnostics.Sink
	normalizer *metadata.Normalizer
	requester  MetadataRequester
	registrar  TemplateRegistrar
	clock      adapter.Clock
	metrics    *metrics.IndexerMetrics
}

// New creates an engine. requester may be nil, in which case metadata
// documents are only registered as pending.
func New(st store.Store, diag diagnostics.Sink, requester MetadataRequester, clock adapter.Clock) *Engine {
	return &Engine{
		store:      st,
		diag:       diag,
		normalizer: metadata.NewNormalizer(diag),
		requester:  requester,
		registrar:  StoreTemplateRegistrar{},
		clock:      clock,
		metrics:    metrics.Indexer(),
	}
}

// effects collects the work to run once the event's transaction committed
type effects struct {
	metadata []string
}

func (f *effects) requestMetadata(cid string) {
	for _, existing := range f.metadata {
		if existing == cid {
			return
		}
	}
	f.metadata = append(f.metadata, cid)
}

// Dispatch applies ev. The returned error is always an infrastructure
// failure; the event can be redelivered once it is resolved.
func (e *Engine) Dispatch(ctx context.Context, ev domain.Event) (Outcome, error) {
	start := e.clock.Now()
	kind := eventKind(ev)
	ctx = logger.WithFields(ctx,
		zap.String("kind", string(kind)),
		zap.Uint64("block", ev.BlockNumber),
		zap.String("tx", ev.TxHash),
		zap.Uint("logIndex", ev.LogIndex))

	var (
		outcome Outcome
		fx      effects
	)
	err := e.store.Transaction(ctx, func(tx store.Store) error {
		fx = effects{}
		var err error
		outcome, err = e.apply(ctx, tx, ev, &fx)
		if err != nil {
			return err
		}
		if outcome == OutcomeRejected {
			return errRejected
		}
		return nil
	})
	if err != nil && !errors.Is(err, errRejected) {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to apply event: %w", err))
		return outcome, fmt.Errorf("failed to apply %s event: %w", kind, err)
	}

	for _, cid := range fx.metadata {
		e.requestMetadata(ctx, cid)
	}

	e.metrics.ObserveEvent(string(kind), outcome.String(), e.clock.Since(start))
	logger.DebugCtx(ctx, "event dispatched", zap.String("outcome", outcome.String()))
	return outcome, nil
}

func (e *Engine) requestMetadata(ctx context.Context, cid string) {
	if e.requester == nil {
		return
	}
	if err := e.requester.RequestMetadata(ctx, cid); err != nil {
		e.diag.Warning(ctx, "metadata %s: request failed, left pending: %v", cid, err)
	}
}

func (e *Engine) apply(ctx context.Context, tx store.Store, ev domain.Event, fx *effects) (Outcome, error) {
	if isNilPayload(ev.Payload) {
		e.diag.Error(ctx, "event %s:%d has no payload", ev.TxHash, ev.LogIndex)
		return OutcomeRejected, nil
	}

	env := ev.Envelope
	switch p := ev.Payload.(type) {
	case *domain.ProjectCreated:
		return e.handleProjectCreated(ctx, tx, env, p)
	case domain.ProjectCreated:
		return e.handleProjectCreated(ctx, tx, env, &p)
	case *domain.ProjectUpdated:
		return e.handleProjectUpdated(ctx, tx, env, p)
	case domain.ProjectUpdated:
		return e.handleProjectUpdated(ctx, tx, env, &p)
	case *domain.LazyMintDeployed:
		return e.handleLazyMintDeployed(ctx, tx, env, p, fx)
	case domain.LazyMintDeployed:
		return e.handleLazyMintDeployed(ctx, tx, env, &p, fx)
	case *domain.AffiliateRegistered:
		return e.handleAffiliateRegistered(ctx, tx, env, p)
	case domain.AffiliateRegistered:
		return e.handleAffiliateRegistered(ctx, tx, env, &p)
	case *domain.CouponRedeemed:
		return e.handleCouponRedeemed(ctx, tx, env, p)
	case domain.CouponRedeemed:
		return e.handleCouponRedeemed(ctx, tx, env, &p)
	case *domain.TokenClaimed:
		return e.handleTokenClaimed(ctx, tx, env, p)
	case domain.TokenClaimed:
		return e.handleTokenClaimed(ctx, tx, env, &p)
	case *domain.OwnerUpdated:
		return e.handleOwnerUpdated(ctx, tx, env, p)
	case domain.OwnerUpdated:
		return e.handleOwnerUpdated(ctx, tx, env, &p)
	case *domain.ContractURIUpdated:
		return e.handleContractURIUpdated(ctx, tx, env, p, fx)
	case domain.ContractURIUpdated:
		return e.handleContractURIUpdated(ctx, tx, env, &p, fx)
	case *domain.TransferSingle:
		return e.handleTransferSingle(ctx, tx, env, p)
	case domain.TransferSingle:
		return e.handleTransferSingle(ctx, tx, env, &p)
	case *domain.TransferBatch:
		return e.handleTransferBatch(ctx, tx, env, p)
	case domain.TransferBatch:
		return e.handleTransferBatch(ctx, tx, env, &p)
	case *domain.TokenURIUpdated:
		return e.handleTokenURIUpdated(ctx, tx, env, p, fx)
	case domain.TokenURIUpdated:
		return e.handleTokenURIUpdated(ctx, tx, env, &p, fx)
	case *domain.MetadataFetched:
		return e.handleMetadataFetched(ctx, tx, p)
	case domain.MetadataFetched:
		return e.handleMetadataFetched(ctx, tx, &p)
	default:
		e.diag.Warning(ctx, "unknown event kind %q skipped", ev.Kind())
		return OutcomeNoOp, nil
	}
}

func eventKind(ev domain.Event) domain.EventKind {
	if isNilPayload(ev.Payload) {
		return ""
	}
	return ev.Kind()
}

func isNilPayload(p domain.Payload) bool {
	if p == nil {
		return true
	}
	v := reflect.ValueOf(p)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
