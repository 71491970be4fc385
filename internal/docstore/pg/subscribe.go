package pg

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ledgerlink/ledgerlink/internal/docstore"
)

// requeryBackoff spaces retries when a snapshot query fails after a change
// notification.
const requeryBackoff = 2 * time.Second

type subscription struct {
	store      *Store
	collection string
	opts       docstore.ListOptions
	pubsub     *redis.PubSub
	ch         chan docstore.Snapshot
	cancel     context.CancelFunc
	once       sync.Once
}

func (s *subscription) Snapshots() <-chan docstore.Snapshot { return s.ch }

func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		s.cancel()
		_ = s.pubsub.Close()
	})
}

// Subscribe opens a live bounded view over one collection. The first snapshot
// is delivered from the current table state; afterwards every change
// notification triggers a re-query. The caller's context cancels the
// subscription just like Unsubscribe does.
func (s *Store) Subscribe(ctx context.Context, collection string, opts docstore.ListOptions) (docstore.Subscription, error) {
	opts = opts.Normalize()
	if _, err := s.List(ctx, collection, opts); err != nil {
		// Probe the query path up front so a misconfigured subscription
		// fails at Subscribe time, not silently in the pump goroutine.
		return nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &subscription{
		store:      s,
		collection: collection,
		opts:       opts,
		pubsub:     s.rdb.Subscribe(subCtx, changeChannel(collection)),
		ch:         make(chan docstore.Snapshot, 1),
		cancel:     cancel,
	}
	go sub.pump(subCtx)
	return sub, nil
}

// pump is the single goroutine behind a subscription. It serialises all
// snapshot deliveries and closes the channel on teardown.
func (s *subscription) pump(ctx context.Context) {
	defer close(s.ch)

	s.deliver(ctx)
	messages := s.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-messages:
			if !ok {
				return
			}
			s.deliver(ctx)
		}
	}
}

func (s *subscription) deliver(ctx context.Context) {
	docs, err := s.store.List(ctx, s.collection, s.opts)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.store.logger.Warn("docstore snapshot query failed",
			slog.String("collection", s.collection), slog.Any("error", err))
		time.Sleep(requeryBackoff)
		return
	}
	snap := docstore.Snapshot{Collection: s.collection, Docs: docs}
	// Latest wins: replace an unread snapshot rather than blocking the pump.
	select {
	case s.ch <- snap:
	default:
		select {
		case <-s.ch:
		default:
		}
		select {
		case s.ch <- snap:
		case <-ctx.Done():
		}
	}
}
