// Package pg implements docstore.Store on a Postgres JSONB table with change
// fan-out over Redis pub/sub. One table holds every collection; subscribers
// re-query a bounded ordered window whenever a change notification for their
// collection arrives.
package pg

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/ledgerlink/ledgerlink/internal/docstore"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection text NOT NULL,
	id text NOT NULL,
	fields jsonb NOT NULL,
	created_at bigint NOT NULL,
	updated_at bigint NOT NULL,
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS documents_collection_created_at_idx
	ON documents (collection, created_at DESC);
`

// Store is the Postgres-backed document store.
type Store struct {
	pool   *pgxpool.Pool
	rdb    *redis.Client
	clock  docstore.Clock
	logger *slog.Logger
}

// New constructs a Store. The Redis client powers live subscriptions; clock
// may be nil to use the wall clock.
func New(pool *pgxpool.Pool, rdb *redis.Client, clock docstore.Clock, logger *slog.Logger) *Store {
	if clock == nil {
		clock = docstore.WallClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, rdb: rdb, clock: clock, logger: logger}
}

// EnsureSchema creates the documents table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return &docstore.StoreError{Op: "ensure-schema", Collection: "documents", Retryable: classifyRetryable(err), Err: err}
	}
	return nil
}

func changeChannel(collection string) string {
	return "docstore:changed:" + collection
}

// Create inserts a document with server-assigned id and timestamps.
func (s *Store) Create(ctx context.Context, collection string, fields docstore.Fields) (string, error) {
	id := uuid.NewString()
	now := s.clock.Now().UnixMilli()

	body := make(docstore.Fields, len(fields)+2)
	for key, value := range fields {
		body[key] = value
	}
	if _, ok := body["createdAt"]; !ok {
		body["createdAt"] = now
	}
	body["updatedAt"] = now

	payload, err := json.Marshal(body)
	if err != nil {
		return "", &docstore.StoreError{Op: "create", Collection: collection, Err: err}
	}
	const insert = `INSERT INTO documents (collection, id, fields, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := s.pool.Exec(ctx, insert, collection, id, payload, createdAtOf(body, now), now); err != nil {
		return "", &docstore.StoreError{Op: "create", Collection: collection, Retryable: classifyRetryable(err), Err: err}
	}
	s.publishChange(ctx, collection)
	return id, nil
}

// Update merges the patch into the stored JSONB body.
func (s *Store) Update(ctx context.Context, collection, id string, patch docstore.Fields) error {
	now := s.clock.Now().UnixMilli()
	body := make(docstore.Fields, len(patch)+1)
	for key, value := range patch {
		body[key] = value
	}
	body["updatedAt"] = now

	payload, err := json.Marshal(body)
	if err != nil {
		return &docstore.StoreError{Op: "update", Collection: collection, Err: err}
	}
	const update = `UPDATE documents SET fields = fields || $3::jsonb, updated_at = $4 WHERE collection = $1 AND id = $2`
	tag, err := s.pool.Exec(ctx, update, collection, id, payload, now)
	if err != nil {
		return &docstore.StoreError{Op: "update", Collection: collection, Retryable: classifyRetryable(err), Err: err}
	}
	if tag.RowsAffected() == 0 {
		return docstore.ErrNotFound
	}
	s.publishChange(ctx, collection)
	return nil
}

// Get returns a single document.
func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	const query = `SELECT fields FROM documents WHERE collection = $1 AND id = $2`
	var payload []byte
	if err := s.pool.QueryRow(ctx, query, collection, id).Scan(&payload); err != nil {
		if isNoRows(err) {
			return docstore.Document{}, docstore.ErrNotFound
		}
		return docstore.Document{}, &docstore.StoreError{Op: "get", Collection: collection, Retryable: classifyRetryable(err), Err: err}
	}
	fields, err := decodeFields(payload)
	if err != nil {
		return docstore.Document{}, &docstore.StoreError{Op: "get", Collection: collection, Err: err}
	}
	return docstore.Document{ID: id, Fields: fields}, nil
}

// List returns the bounded, createdAt-descending window of a collection.
func (s *Store) List(ctx context.Context, collection string, opts docstore.ListOptions) ([]docstore.Document, error) {
	opts = opts.Normalize()
	if opts.OrderBy != "createdAt" {
		return nil, fmt.Errorf("docstore/pg: unsupported order field %q", opts.OrderBy)
	}
	const query = `SELECT id, fields FROM documents WHERE collection = $1 ORDER BY created_at DESC, id LIMIT $2`
	rows, err := s.pool.Query(ctx, query, collection, opts.Limit)
	if err != nil {
		return nil, &docstore.StoreError{Op: "list", Collection: collection, Retryable: classifyRetryable(err), Err: err}
	}
	defer rows.Close()

	var docs []docstore.Document
	for rows.Next() {
		var (
			id      string
			payload []byte
		)
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, &docstore.StoreError{Op: "list", Collection: collection, Retryable: classifyRetryable(err), Err: err}
		}
		fields, err := decodeFields(payload)
		if err != nil {
			return nil, &docstore.StoreError{Op: "list", Collection: collection, Err: err}
		}
		docs = append(docs, docstore.Document{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, &docstore.StoreError{Op: "list", Collection: collection, Retryable: classifyRetryable(err), Err: err}
	}
	return docs, nil
}

// publishChange notifies subscribers. A failed publish never fails the write;
// subscribers fall behind until the next notification instead.
func (s *Store) publishChange(ctx context.Context, collection string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Publish(ctx, changeChannel(collection), "changed").Err(); err != nil {
		s.logger.Warn("docstore change publish failed",
			slog.String("collection", collection), slog.Any("error", err))
	}
}

func decodeFields(payload []byte) (docstore.Fields, error) {
	var fields docstore.Fields
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func createdAtOf(body docstore.Fields, fallback int64) int64 {
	if v, ok := body["createdAt"]; ok {
		switch n := v.(type) {
		case int64:
			return n
		case float64:
			return int64(n)
		}
	}
	return fallback
}
