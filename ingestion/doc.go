// Package ingestion provides pipeline orchestration for market data.
//
// A Pipeline run executes three isolated phases in order:
//   - News: fetch feeds, drop articles already stored, enrich the rest, write
//   - Calendar: fetch today's events, write
//   - Indicators: fetch the catalog, write the series that succeeded
//
// Existence lookups run concurrently on a worker pool. Enrichment requests
// are sub-batched and paced. Writes are merge-upserts in bounded chunks, so
// re-running over the same inputs updates documents in place.
package ingestion
