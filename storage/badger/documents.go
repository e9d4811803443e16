package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/marketfeed/core"
	"github.com/poiesic/marketfeed/storage"
)

// UpdatedAtField is stamped on every write, mirroring a server timestamp.
const UpdatedAtField = "updated_at"

// DocumentStore implements storage.DocumentStore for BadgerDB.
// Merge-upserts are read-modify-write inside a single Badger transaction.
type DocumentStore struct {
	backend      *Backend
	ownsBackend  bool
	maxBatchSize int
	now          func() time.Time
	logger       *slog.Logger
}

var _ storage.DocumentStore = (*DocumentStore)(nil)

// StoreOption configures a DocumentStore.
type StoreOption func(*DocumentStore)

// WithMaxBatchSize sets the largest batch BatchCommit accepts.
func WithMaxBatchSize(size int) StoreOption {
	return func(s *DocumentStore) {
		if size > 0 {
			s.maxBatchSize = size
		}
	}
}

// WithClock overrides the clock used for updated_at stamps.
func WithClock(now func() time.Time) StoreOption {
	return func(s *DocumentStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewDocumentStore creates a DocumentStore on an existing backend.
// The caller remains responsible for closing the backend.
func NewDocumentStore(backend *Backend, opts ...StoreOption) *DocumentStore {
	s := &DocumentStore{
		backend:      backend,
		maxBatchSize: storage.DefaultMaxBatchSize,
		now:          time.Now,
		logger:       slog.Default().With("component", "badger-store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open opens a durable document store at path. Closing the store closes the database.
func Open(path string, opts ...StoreOption) (storage.DocumentStore, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	s := NewDocumentStore(backend, opts...)
	s.ownsBackend = true
	return s, nil
}

// MaxBatchSize returns the largest batch BatchCommit accepts.
func (s *DocumentStore) MaxBatchSize() int {
	return s.maxBatchSize
}

// Close closes the underlying database if the store opened it.
func (s *DocumentStore) Close() error {
	if s.ownsBackend && !s.backend.IsClosed() {
		return s.backend.Close()
	}
	return nil
}

// Upsert writes a single document.
func (s *DocumentStore) Upsert(ctx context.Context, collection, id string, fields core.Fields, merge bool) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := s.apply(tx, storage.Operation{Collection: collection, ID: id, Fields: fields, Merge: merge}); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// BatchCommit applies all operations in one transaction.
func (s *DocumentStore) BatchCommit(ctx context.Context, ops []storage.Operation) error {
	if len(ops) > s.maxBatchSize {
		return fmt.Errorf("%w: %d > %d", storage.ErrBatchTooLarge, len(ops), s.maxBatchSize)
	}
	if len(ops) == 0 {
		return nil
	}
	if err := s.check(ctx); err != nil {
		return err
	}

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		for _, op := range ops {
			if err := s.apply(tx, op); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}

	s.logger.Debug("committed batch", "operations", len(ops), "collection", ops[0].Collection)
	return nil
}

// Exists reports whether a document is stored under id.
func (s *DocumentStore) Exists(ctx context.Context, collection, id string) (bool, error) {
	if err := s.check(ctx); err != nil {
		return false, err
	}
	var found bool
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get(makeDocumentKey(collection, id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		found = true
		return nil
	}, false)
	return found, err
}

// Get retrieves the stored fields of a document.
func (s *DocumentStore) Get(ctx context.Context, collection, id string) (core.Fields, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	var fields core.Fields
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		fields, err = readDocument(tx, makeDocumentKey(collection, id))
		if err != nil {
			return err
		}
		if fields == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return fields, err
}

// Count returns the number of documents stored in a collection.
func (s *DocumentStore) Count(ctx context.Context, collection string) (int, error) {
	if err := s.check(ctx); err != nil {
		return 0, err
	}
	count := 0
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = makeCollectionPrefix(collection)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// Helper methods

func (s *DocumentStore) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return nil
}

// apply stages one operation in the transaction.
func (s *DocumentStore) apply(tx *badger.Txn, op storage.Operation) error {
	if op.Collection == "" || op.ID == "" {
		return storage.ErrInvalidKey
	}
	key := makeDocumentKey(op.Collection, op.ID)

	fields := op.Fields
	if op.Merge {
		existing, err := readDocument(tx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			fields = existing.Merge(op.Fields)
		}
	}
	fields = fields.Merge(core.Fields{UpdatedAtField: core.TimeValue(s.now())})

	return tx.Set(key, storage.MarshalFields(fields))
}

// readDocument reads a document from the transaction.
// Returns nil, nil if it doesn't exist.
func readDocument(tx *badger.Txn, key []byte) (core.Fields, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var fields core.Fields
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		fields, unmarshalErr = storage.UnmarshalFields(val)
		return unmarshalErr
	})
	return fields, err
}
