// Package docstore defines the document store port used by the core. The
// store holds schemaless documents in named collections and exposes ordered,
// bounded live subscriptions alongside plain create/update/read operations.
package docstore

import (
	"context"
	"time"
)

// Fields is the raw key-value body of a document.
type Fields map[string]any

// Document pairs an opaque id with its fields.
type Document struct {
	ID     string
	Fields Fields
}

// Snapshot is one ordered view of a collection delivered to a subscriber.
type Snapshot struct {
	Collection string
	Docs       []Document
}

// DefaultSubscribeLimit bounds a subscription when the caller does not set
// one. Subscriptions are bounded-recency views and must never be unbounded.
const DefaultSubscribeLimit = 200

// MaxSubscribeLimit caps caller-supplied limits.
const MaxSubscribeLimit = 300

// ListOptions controls ordering and bounds for reads and subscriptions.
type ListOptions struct {
	// OrderBy names the timestamp field the snapshot is ordered on,
	// descending. Only "createdAt" ordering is supported by the backends.
	OrderBy string
	Limit   int
}

// Normalize fills defaults and clamps the limit.
func (o ListOptions) Normalize() ListOptions {
	if o.OrderBy == "" {
		o.OrderBy = "createdAt"
	}
	if o.Limit <= 0 {
		o.Limit = DefaultSubscribeLimit
	}
	if o.Limit > MaxSubscribeLimit {
		o.Limit = MaxSubscribeLimit
	}
	return o
}

// Subscription is a live ordered view over one collection. Snapshots delivers
// a fresh full snapshot whenever the collection changes, starting with the
// current state. Unsubscribe releases the listener; the channel is closed
// afterwards.
type Subscription interface {
	Snapshots() <-chan Snapshot
	Unsubscribe()
}

// Store is the document store port. Documents are opaque maps; schema is
// enforced by the callers' read/write contracts, not by the store.
type Store interface {
	Create(ctx context.Context, collection string, fields Fields) (string, error)
	Update(ctx context.Context, collection, id string, patch Fields) error
	Get(ctx context.Context, collection, id string) (Document, error)
	List(ctx context.Context, collection string, opts ListOptions) ([]Document, error)
	Subscribe(ctx context.Context, collection string, opts ListOptions) (Subscription, error)
}

// Clock supplies server-assigned timestamps for createdAt/updatedAt fields.
// Any monotonic or wall-clock source satisfies it.
type Clock interface {
	Now() time.Time
}

// WallClock is the default Clock.
type WallClock struct{}

// Now returns the current wall-clock time.
func (WallClock) Now() time.Time { return time.Now() }
