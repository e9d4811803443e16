package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/marketfeed/core"
	"github.com/poiesic/marketfeed/storage"
)

// DefaultPoolSize is the number of concurrent existence lookups.
const DefaultPoolSize = 8

// DedupResult partitions candidates into new articles and the rest.
type DedupResult struct {
	New             []*core.Article // Input order preserved
	Existing        int
	InRunDuplicates int
	LookupErrors    int // Kept as new: a lookup failure must not lose an article
}

// Deduplicator drops articles already present in the store.
type Deduplicator struct {
	store      storage.DocumentStore
	collection string
	pool       *ants.Pool
	logger     *slog.Logger
}

// NewDeduplicator creates a deduplicator that runs lookups on pool.
func NewDeduplicator(store storage.DocumentStore, pool *ants.Pool, logger *slog.Logger) *Deduplicator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Deduplicator{
		store:      store,
		collection: core.CollectionArticles,
		pool:       pool,
		logger:     logger.With("component", "dedup"),
	}
}

// Filter returns the candidates whose ID is not yet stored. Articles sharing
// an ID within one run collapse to the first occurrence.
func (d *Deduplicator) Filter(ctx context.Context, candidates []*core.Article) (DedupResult, error) {
	var result DedupResult

	unique := make([]*core.Article, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, a := range candidates {
		if _, dup := seen[a.ID]; dup {
			result.InRunDuplicates++
			continue
		}
		seen[a.ID] = struct{}{}
		unique = append(unique, a)
	}

	const (
		isNew = iota
		isExisting
		isLookupError
	)
	status := make([]int, len(unique))

	var wg sync.WaitGroup
	for i, a := range unique {
		wg.Add(1)
		err := d.pool.Submit(func() {
			defer wg.Done()
			exists, err := d.store.Exists(ctx, d.collection, a.ID)
			switch {
			case err != nil:
				d.logger.Warn("existence lookup failed, keeping article", "id", a.ID, "err", err)
				status[i] = isLookupError
			case exists:
				status[i] = isExisting
			}
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return result, fmt.Errorf("submitting lookup: %w", err)
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return result, err
	}

	result.New = make([]*core.Article, 0, len(unique))
	for i, a := range unique {
		switch status[i] {
		case isExisting:
			result.Existing++
			continue
		case isLookupError:
			result.LookupErrors++
		}
		result.New = append(result.New, a)
	}

	d.logger.Debug("deduplicated", "candidates", len(candidates), "new", len(result.New),
		"existing", result.Existing, "in_run_duplicates", result.InRunDuplicates, "lookup_errors", result.LookupErrors)
	return result, nil
}
