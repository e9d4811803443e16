// Package mock provides a test double for ai.Summarizer.
//
// # Usage in Tests
//
//	// Default behavior echoes every request as a well-formed item
//	summarizer := mock.NewMockSummarizer()
//
//	// Custom behavior injection
//	summarizer := mock.NewMockSummarizer().
//	    WithSummarizeFunc(func(ctx context.Context, reqs []ai.SummaryRequest) ([]ai.SummaryItem, error) {
//	        return nil, ai.ErrServiceUnavailable
//	    })
//
//	// Inspect what was sent
//	count := summarizer.CallCount()
//	batches := summarizer.Batches()
package mock
