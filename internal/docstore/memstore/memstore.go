// Package memstore is an in-memory docstore.Store used by tests and local
// tooling. It mirrors the ordering and bounding semantics of the Postgres
// backend and delivers snapshots synchronously on every write.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ledgerlink/ledgerlink/internal/docstore"
	"github.com/ledgerlink/ledgerlink/internal/documents"
)

// Store keeps all documents in process memory. Safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	clock docstore.Clock
	docs  map[string]map[string]docstore.Fields
	subs  map[string][]*subscription
}

// New constructs an empty Store. A nil clock falls back to the wall clock.
func New(clock docstore.Clock) *Store {
	if clock == nil {
		clock = docstore.WallClock{}
	}
	return &Store{
		clock: clock,
		docs:  make(map[string]map[string]docstore.Fields),
		subs:  make(map[string][]*subscription),
	}
}

type subscription struct {
	store      *Store
	collection string
	opts       docstore.ListOptions
	ch         chan docstore.Snapshot
	closed     bool
}

func (s *subscription) Snapshots() <-chan docstore.Snapshot { return s.ch }

func (s *subscription) Unsubscribe() {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	subs := s.store.subs[s.collection]
	for i, candidate := range subs {
		if candidate == s {
			s.store.subs[s.collection] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	close(s.ch)
}

// Create inserts a document, assigning an id and server timestamps.
func (s *Store) Create(ctx context.Context, collection string, fields docstore.Fields) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &docstore.StoreError{Op: "create", Collection: collection, Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	now := s.clock.Now().UnixMilli()
	doc := cloneFields(fields)
	if _, ok := doc["createdAt"]; !ok {
		doc["createdAt"] = now
	}
	doc["updatedAt"] = now

	if s.docs[collection] == nil {
		s.docs[collection] = make(map[string]docstore.Fields)
	}
	s.docs[collection][id] = doc
	s.notifyLocked(collection)
	return id, nil
}

// Update merges the patch into an existing document.
func (s *Store) Update(ctx context.Context, collection, id string, patch docstore.Fields) error {
	if err := ctx.Err(); err != nil {
		return &docstore.StoreError{Op: "update", Collection: collection, Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[collection][id]
	if !ok {
		return docstore.ErrNotFound
	}
	for key, value := range patch {
		doc[key] = value
	}
	doc["updatedAt"] = s.clock.Now().UnixMilli()
	s.notifyLocked(collection)
	return nil
}

// Get returns a single document copy.
func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return docstore.Document{}, &docstore.StoreError{Op: "get", Collection: collection, Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	fields, ok := s.docs[collection][id]
	if !ok {
		return docstore.Document{}, docstore.ErrNotFound
	}
	return docstore.Document{ID: id, Fields: cloneFields(fields)}, nil
}

// List returns an ordered bounded view of the collection.
func (s *Store) List(ctx context.Context, collection string, opts docstore.ListOptions) ([]docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, &docstore.StoreError{Op: "list", Collection: collection, Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(collection, opts.Normalize()), nil
}

// Subscribe registers a live listener and pushes the current snapshot.
func (s *Store) Subscribe(ctx context.Context, collection string, opts docstore.ListOptions) (docstore.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, &docstore.StoreError{Op: "subscribe", Collection: collection, Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := &subscription{
		store:      s,
		collection: collection,
		opts:       opts.Normalize(),
		ch:         make(chan docstore.Snapshot, 16),
	}
	s.subs[collection] = append(s.subs[collection], sub)
	sub.ch <- docstore.Snapshot{Collection: collection, Docs: s.snapshotLocked(collection, sub.opts)}
	return sub, nil
}

// notifyLocked pushes a fresh snapshot to every subscriber, each bounded by
// the options it subscribed with.
func (s *Store) notifyLocked(collection string) {
	for _, sub := range s.subs[collection] {
		snap := docstore.Snapshot{Collection: collection, Docs: s.snapshotLocked(collection, sub.opts)}
		select {
		case sub.ch <- snap:
		default:
			// Latest wins: evict the stale snapshot so the fresh one lands.
			select {
			case <-sub.ch:
			default:
			}
			sub.ch <- snap
		}
	}
}

func (s *Store) snapshotLocked(collection string, opts docstore.ListOptions) []docstore.Document {
	all := s.docs[collection]
	docs := make([]docstore.Document, 0, len(all))
	for id, fields := range all {
		docs = append(docs, docstore.Document{ID: id, Fields: cloneFields(fields)})
	}
	sort.SliceStable(docs, func(i, j int) bool {
		ti := documents.ToMillis(docs[i].Fields[opts.OrderBy])
		tj := documents.ToMillis(docs[j].Fields[opts.OrderBy])
		if ti == tj {
			return docs[i].ID < docs[j].ID
		}
		return ti > tj
	})
	if len(docs) > opts.Limit {
		docs = docs[:opts.Limit]
	}
	return docs
}

func cloneFields(fields docstore.Fields) docstore.Fields {
	out := make(docstore.Fields, len(fields))
	for key, value := range fields {
		out[key] = value
	}
	return out
}
