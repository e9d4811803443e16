package ingestion

import (
	"context"
	"log/slog"
	"time"

	"github.com/poiesic/marketfeed/core"
	"github.com/poiesic/marketfeed/storage"
)

const (
	// DefaultBatchSize is the preferred chunk size for batch commits.
	DefaultBatchSize = 400

	// DefaultCommitAttempts is how often a failing chunk is tried in total.
	DefaultCommitAttempts = 2

	// DefaultCommitBackoff is the delay before the first retry of a chunk.
	DefaultCommitBackoff = 200 * time.Millisecond
)

// BatchWriter merge-upserts records in bounded, sequential chunks.
type BatchWriter struct {
	store       storage.DocumentStore
	batchSize   int
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
}

// WriterOption configures a BatchWriter.
type WriterOption func(*BatchWriter)

// WithWriterBatchSize sets the preferred chunk size. The store's own limit still applies.
func WithWriterBatchSize(n int) WriterOption {
	return func(w *BatchWriter) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

// WithChunkRetry sets how often a chunk is attempted and the initial backoff.
func WithChunkRetry(attempts int, baseDelay time.Duration) WriterOption {
	return func(w *BatchWriter) {
		if attempts > 0 {
			w.maxAttempts = attempts
		}
		if baseDelay >= 0 {
			w.baseDelay = baseDelay
		}
	}
}

// WithWriterLogger sets the logger.
func WithWriterLogger(logger *slog.Logger) WriterOption {
	return func(w *BatchWriter) {
		if logger != nil {
			w.logger = logger.With("component", "writer")
		}
	}
}

// NewBatchWriter creates a writer over store.
func NewBatchWriter(store storage.DocumentStore, opts ...WriterOption) *BatchWriter {
	w := &BatchWriter{
		store:       store,
		batchSize:   DefaultBatchSize,
		maxAttempts: DefaultCommitAttempts,
		baseDelay:   DefaultCommitBackoff,
		logger:      slog.Default().With("component", "writer"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// ChunkSize returns the effective chunk size.
func (w *BatchWriter) ChunkSize() int {
	size := w.batchSize
	if limit := w.store.MaxBatchSize(); limit > 0 && limit < size {
		size = limit
	}
	return size
}

// Commit writes records keyed by their IDs with merge semantics. Chunks
// commit in input order; on failure a *CommitError carries the number of
// records committed by the chunks before it.
func (w *BatchWriter) Commit(ctx context.Context, collection string, records []core.Record) (int, error) {
	size := w.ChunkSize()
	written := 0

	for start := 0; start < len(records); start += size {
		chunk := records[start:min(start+size, len(records))]
		ops := make([]storage.Operation, len(chunk))
		for i, r := range chunk {
			ops[i] = storage.Operation{
				Collection: collection,
				ID:         r.RecordID(),
				Fields:     r.Fields(),
				Merge:      true,
			}
		}

		err := RetryWithBackoff(ctx, w.logger, func() error {
			return w.store.BatchCommit(ctx, ops)
		}, w.maxAttempts, w.baseDelay)
		if err != nil {
			w.logger.Error("chunk commit failed", "collection", collection, "chunk_start", start,
				"chunk_size", len(chunk), "written", written, "err", err)
			return written, &CommitError{Collection: collection, Written: written, Err: err}
		}

		written += len(chunk)
		w.logger.Debug("chunk committed", "collection", collection, "chunk_size", len(chunk), "written", written)
	}

	return written, nil
}
