package mock

import (
	"context"
	"slices"

	"github.com/poiesic/marketfeed/ai"
	"github.com/poiesic/marketfeed/core"
)

// MockSummarizer is a test double for ai.Summarizer.
// It allows custom behavior injection via function fields.
type MockSummarizer struct {
	// SummarizeFunc is called by Summarize if set.
	// If nil, every request is echoed back as a well-formed item.
	SummarizeFunc func(ctx context.Context, requests []ai.SummaryRequest) ([]ai.SummaryItem, error)

	callCount int
	batches   [][]ai.SummaryRequest
}

// NewMockSummarizer creates a mock summarizer with default behavior.
func NewMockSummarizer() *MockSummarizer {
	return &MockSummarizer{}
}

// WithSummarizeFunc sets custom behavior and returns the mock for chaining.
func (m *MockSummarizer) WithSummarizeFunc(fn func(ctx context.Context, requests []ai.SummaryRequest) ([]ai.SummaryItem, error)) *MockSummarizer {
	m.SummarizeFunc = fn
	return m
}

// Summarize records the batch and returns the configured reply.
func (m *MockSummarizer) Summarize(ctx context.Context, requests []ai.SummaryRequest) ([]ai.SummaryItem, error) {
	m.callCount++
	m.batches = append(m.batches, slices.Clone(requests))

	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, requests)
	}

	items := make([]ai.SummaryItem, len(requests))
	for i, r := range requests {
		items[i] = EchoItem(r)
	}
	return items, nil
}

// EchoItem builds a well-formed item answering r.
func EchoItem(r ai.SummaryRequest) ai.SummaryItem {
	index := r.Index
	return ai.SummaryItem{
		ItemIndex:         &index,
		KoreanTitle:       "[KO] " + r.Title,
		KoreanBody:        "요약: " + r.Title,
		ImpactScore:       7,
		MarketSentiment:   string(core.SentimentPositive),
		ActionableInsight: "monitor",
		RelatedAssets:     []string{"KOSPI"},
	}
}

// CallCount returns the number of times Summarize was called.
func (m *MockSummarizer) CallCount() int {
	return m.callCount
}

// Batches returns the request batches received, in call order.
func (m *MockSummarizer) Batches() [][]ai.SummaryRequest {
	return m.batches
}

// Reset clears the call history and custom functions.
func (m *MockSummarizer) Reset() {
	m.callCount = 0
	m.batches = nil
	m.SummarizeFunc = nil
}
