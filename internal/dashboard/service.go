package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ledgerlink/ledgerlink/internal/docstore"
	"github.com/ledgerlink/ledgerlink/internal/documents"
)

// watchedCollections are the input streams of the read model.
var watchedCollections = []string{
	documents.CollectionOrders,
	documents.CollectionInvoices,
	documents.CollectionLegacyInvoices,
	documents.CollectionCustomSales,
	documents.CollectionPurchaseOrders,
}

// Options tune the aggregator.
type Options struct {
	// Window is the rolling KPI window; defaults to 30 days.
	Window time.Duration
	// Limit bounds each collection subscription; defaults to the store's
	// default and is clamped to its maximum.
	Limit int
	// Clock is the time source for window cutoffs; defaults to wall clock.
	Clock docstore.Clock
}

// Service is the aggregation engine. All snapshot handling runs on one
// goroutine, so recomputation needs no locking beyond the summary swap.
type Service struct {
	store  docstore.Store
	cache  *Cache
	logger *slog.Logger
	window time.Duration
	limit  int
	clock  docstore.Clock

	mu      sync.RWMutex
	summary Summary

	cancel context.CancelFunc
	subs   []docstore.Subscription
	wg     sync.WaitGroup
}

// NewService constructs the aggregator. cache may be nil.
func NewService(store docstore.Store, cache *Cache, logger *slog.Logger, opts Options) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Window <= 0 {
		opts.Window = Window
	}
	if opts.Clock == nil {
		opts.Clock = docstore.WallClock{}
	}
	return &Service{
		store:  store,
		cache:  cache,
		logger: logger,
		window: opts.Window,
		limit:  opts.Limit,
		clock:  opts.Clock,
	}
}

// Start subscribes to every watched collection and runs the aggregator until
// Close or context cancellation. Subscriptions opened before a failure are
// torn down on error.
func (s *Service) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	updates := make(chan docstore.Snapshot)
	for _, collection := range watchedCollections {
		sub, err := s.store.Subscribe(runCtx, collection, docstore.ListOptions{Limit: s.limit})
		if err != nil {
			s.teardown()
			return err
		}
		s.subs = append(s.subs, sub)
		s.wg.Add(1)
		go s.forward(runCtx, sub, updates)
	}

	s.wg.Add(1)
	go s.aggregate(runCtx, updates)
	return nil
}

// forward funnels one subscription into the shared update channel.
func (s *Service) forward(ctx context.Context, sub docstore.Subscription, updates chan<- docstore.Snapshot) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-sub.Snapshots():
			if !ok {
				return
			}
			select {
			case updates <- snap:
			case <-ctx.Done():
				return
			}
		}
	}
}

// aggregate is the single consumer: it owns the raw state and recomputes the
// summary synchronously on every incoming snapshot.
func (s *Service) aggregate(ctx context.Context, updates <-chan docstore.Snapshot) {
	defer s.wg.Done()
	var state collectionState
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-updates:
			switch snap.Collection {
			case documents.CollectionOrders:
				state.orders = snap.Docs
			case documents.CollectionInvoices:
				state.invoices = snap.Docs
			case documents.CollectionLegacyInvoices:
				state.legacyInvoices = snap.Docs
			case documents.CollectionCustomSales:
				state.customSales = snap.Docs
			case documents.CollectionPurchaseOrders:
				state.purchaseOrders = snap.Docs
			default:
				continue
			}
			summary := buildSummary(state, s.clock.Now(), s.window)
			s.mu.Lock()
			s.summary = summary
			s.mu.Unlock()
			if err := s.cache.Bump(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("dashboard cache bump failed", slog.Any("error", err))
			}
		}
	}
}

// Summary returns a copy of the latest derived view.
func (s *Service) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.summary
	out.PendingPurchaseLinks = append([]OrderRef(nil), s.summary.PendingPurchaseLinks...)
	out.RecentCustomSales = append([]CustomSaleRef(nil), s.summary.RecentCustomSales...)
	return out
}

// Close cancels every subscription and waits for the aggregator to drain.
func (s *Service) Close() {
	s.teardown()
	s.wg.Wait()
}

func (s *Service) teardown() {
	for _, sub := range s.subs {
		sub.Unsubscribe()
	}
	s.subs = nil
	if s.cancel != nil {
		s.cancel()
	}
}
