package ai

import "context"

// Summarizer translates and classifies batches of article titles.
// Implementations must be thread-safe for concurrent use.
type Summarizer interface {
	// Summarize sends one batch of requests and returns whatever items the
	// service produced. Items are correlated to requests by ItemIndex, never
	// by position; callers must discard items whose index is missing, out of
	// range, or repeated.
	// Returns ErrServiceUnavailable when the service cannot be reached and
	// ErrMalformedResponse when the reply is not a list of item objects.
	Summarize(ctx context.Context, requests []SummaryRequest) ([]SummaryItem, error)
}
