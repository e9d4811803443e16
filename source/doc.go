// Package source holds the pieces shared by the source adapters: an HTTP
// fetcher that sends browser-like headers, the per-record Outcome/Report
// types, and the error taxonomy.
//
// Adapters live in sub-packages:
//
//   - source/rss: news feeds (gofeed)
//   - source/calendar: HTML economic calendar (goquery)
//   - source/ecos: Bank of Korea ECOS statistics API
//
// Adapters never invent records. A source that yields nothing produces an
// empty report; rows that cannot be mapped are listed in Report.Skipped.
package source
