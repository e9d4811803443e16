package storage

import (
	"context"

	"github.com/poiesic/marketfeed/core"
)

// DefaultMaxBatchSize keeps atomic batches safely under the store's hard limit.
const DefaultMaxBatchSize = 450

// Operation is a single keyed write inside a batch.
type Operation struct {
	Collection string
	ID         string
	Fields     core.Fields
	// Merge updates only the supplied fields when the document exists.
	// When false the document is replaced.
	Merge bool
}

// DocumentStore is a keyed-collection upsert service.
// Implementations must be thread-safe and support concurrent access.
type DocumentStore interface {
	// Upsert writes a single document. With merge=true an existing document
	// keeps every field not present in fields.
	Upsert(ctx context.Context, collection, id string, fields core.Fields, merge bool) error

	// BatchCommit applies all operations atomically: either every operation
	// is durable or none is. Returns ErrBatchTooLarge when len(ops) exceeds
	// MaxBatchSize.
	BatchCommit(ctx context.Context, ops []Operation) error

	// Exists reports whether a document is stored under id.
	Exists(ctx context.Context, collection, id string) (bool, error)

	// Get returns the stored fields of a document.
	// Returns ErrNotFound if the document doesn't exist.
	Get(ctx context.Context, collection, id string) (core.Fields, error)

	// MaxBatchSize is the largest number of operations BatchCommit accepts.
	MaxBatchSize() int

	// Close releases resources held by the store.
	Close() error
}
