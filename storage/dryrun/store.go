// Package dryrun provides a DocumentStore that records and logs writes
// without persisting them. It backs the CLI's --dry-run flag.
package dryrun

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/poiesic/marketfeed/core"
	"github.com/poiesic/marketfeed/storage"
)

// Store accepts every write and remembers nothing beyond a per-collection count.
type Store struct {
	mu           sync.Mutex
	counts       map[string]int
	maxBatchSize int
	closed       bool
	logger       *slog.Logger
}

var _ storage.DocumentStore = (*Store)(nil)

// New creates a dry-run store. A nil logger uses slog.Default().
func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		counts:       make(map[string]int),
		maxBatchSize: storage.DefaultMaxBatchSize,
		logger:       logger.With("component", "dryrun-store"),
	}
}

func (s *Store) Upsert(ctx context.Context, collection, id string, fields core.Fields, merge bool) error {
	return s.BatchCommit(ctx, []storage.Operation{{Collection: collection, ID: id, Fields: fields, Merge: merge}})
}

func (s *Store) BatchCommit(ctx context.Context, ops []storage.Operation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(ops) > s.maxBatchSize {
		return fmt.Errorf("%w: %d > %d", storage.ErrBatchTooLarge, len(ops), s.maxBatchSize)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrStorageClosed
	}
	for _, op := range ops {
		if op.Collection == "" || op.ID == "" {
			return storage.ErrInvalidKey
		}
	}
	for _, op := range ops {
		s.counts[op.Collection]++
		s.logger.Debug("would write document", "collection", op.Collection, "id", op.ID, "fields", len(op.Fields), "merge", op.Merge)
	}
	if len(ops) > 0 {
		s.logger.Info("dry-run batch", "operations", len(ops), "collection", ops[0].Collection)
	}
	return nil
}

// Exists always reports false so every candidate flows through a dry run.
func (s *Store) Exists(ctx context.Context, collection, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return false, nil
}

// Get always reports ErrNotFound; field values are not retained.
func (s *Store) Get(ctx context.Context, collection, id string) (core.Fields, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, storage.ErrNotFound
}

func (s *Store) MaxBatchSize() int { return s.maxBatchSize }

// Written returns how many operations were accepted for a collection.
func (s *Store) Written(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[collection]
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
