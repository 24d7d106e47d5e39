package metadata

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/alitto/pond/v2"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/pushcola/coupon-indexer/internal/adapter"
	"github.com/pushcola/coupon-indexer/internal/domain"
	"github.com/pushcola/coupon-indexer/internal/logger"
	"github.com/pushcola/coupon-indexer/internal/metrics"
)

const (
	DEFAULT_FETCH_WORKERS    = 4
	DEFAULT_FETCH_QUEUE_SIZE = 256
)

// ErrFetcherClosed is returned when a document is requested after Close
var ErrFetcherClosed = errors.New("metadata fetcher is closed")

// FetcherConfig holds the configuration of a Fetcher
type FetcherConfig struct {
	// Gateways are IPFS gateway base URLs, tried in order
	Gateways  []string
	Workers   int
	QueueSize int
}

// Fetcher retrieves metadata documents out of band. Fetched documents are
// published on Results; documents that cannot be fetched from any gateway are
// dropped and stay pending in the store.
type Fetcher struct {
	httpClient adapter.HTTPClient
	gateways   []string
	pool       pond.Pool
	results    chan domain.MetadataFetched
	metrics    *metrics.IndexerMetrics

	mu       sync.Mutex
	inFlight map[string]struct{}
	closed   bool
}

// NewFetcher creates a fetcher whose workers stop when ctx is cancelled
func NewFetcher(ctx context.Context, cfg FetcherConfig, httpClient adapter.HTTPClient) *Fetcher {
	workers := cfg.Workers
	if workers <= 0 {
		workers = DEFAULT_FETCH_WORKERS
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = DEFAULT_FETCH_QUEUE_SIZE
	}
	gateways := cfg.Gateways
	if len(gateways) == 0 {
		gateways = []string{domain.DEFAULT_IPFS_GATEWAY}
	}

	return &Fetcher{
		httpClient: httpClient,
		gateways:   gateways,
		pool:       pond.NewPool(workers, pond.WithQueueSize(queueSize), pond.WithContext(ctx)),
		results:    make(chan domain.MetadataFetched, queueSize),
		metrics:    metrics.Indexer(),
		inFlight:   make(map[string]struct{}),
	}
}

// Results returns the channel of fetched documents. It is closed by Close.
func (f *Fetcher) Results() <-chan domain.MetadataFetched {
	return f.results
}

// RequestMetadata schedules the retrieval of cid. A document already being
// fetched is not scheduled twice.
func (f *Fetcher) RequestMetadata(ctx context.Context, cid string) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrFetcherClosed
	}
	if _, ok := f.inFlight[cid]; ok {
		f.mu.Unlock()
		logger.DebugCtx(ctx, "metadata fetch already in flight", zap.String("cid", cid))
		return nil
	}
	f.inFlight[cid] = struct{}{}
	f.metrics.SetFetchesInFlight(len(f.inFlight))
	f.mu.Unlock()

	if _, ok := f.pool.TrySubmit(func() { f.fetch(ctx, cid) }); !ok {
		f.done(cid)
		return fmt.Errorf("failed to schedule metadata fetch for %s: queue is full", cid)
	}
	return nil
}

func (f *Fetcher) fetch(ctx context.Context, cid string) {
	defer f.done(cid)

	content, err := f.download(ctx, cid)
	if err != nil {
		f.metrics.ObserveMetadataFetch("failed")
		logger.WarnCtx(ctx, "failed to fetch metadata from every gateway", zap.String("cid", cid), zap.Error(err))
		return
	}

	mtype := mimetype.Detect(content)
	if !mtype.Is("application/json") {
		logger.WarnCtx(ctx, "metadata document is not JSON",
			zap.String("cid", cid),
			zap.String("mimeType", mtype.String()))
	}

	select {
	case f.results <- domain.MetadataFetched{DocumentID: cid, Content: content}:
		f.metrics.ObserveMetadataFetch("fetched")
	case <-ctx.Done():
	}
}

func (f *Fetcher) download(ctx context.Context, cid string) ([]byte, error) {
	var errs []error
	for _, gateway := range f.gateways {
		url := GatewayURL(gateway, cid)
		content, err := f.httpClient.GetBytes(ctx, url)
		if err == nil {
			logger.DebugCtx(ctx, "fetched metadata", zap.String("url", url), zap.Int("bytes", len(content)))
			return content, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", gateway, err))
		if ctx.Err() != nil {
			break
		}
	}
	return nil, errors.Join(errs...)
}

func (f *Fetcher) done(cid string) {
	f.mu.Lock()
	delete(f.inFlight, cid)
	f.metrics.SetFetchesInFlight(len(f.inFlight))
	f.mu.Unlock()
}

// Close waits for scheduled fetches and closes Results
func (f *Fetcher) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	f.mu.Unlock()

	logger.Info("Shutting down metadata fetcher",
		zap.Uint64("submitted", f.pool.SubmittedTasks()),
		zap.Uint64("waiting", f.pool.WaitingTasks()))
	f.pool.StopAndWait()
	close(f.results)
}
