package ingestion

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/marketfeed/core"
	"github.com/poiesic/marketfeed/source"
	"github.com/poiesic/marketfeed/source/ecos"
	"github.com/poiesic/marketfeed/source/rss"
	"github.com/poiesic/marketfeed/storage"
	"github.com/poiesic/marketfeed/storage/badger"
	"github.com/stretchr/testify/require"
)

var (
	testNow       = time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	errCommitDown = errors.New("store unavailable")
)

func newMemoryStore(t *testing.T, opts ...badger.StoreOption) *badger.DocumentStore {
	t.Helper()
	store, err := badger.NewMemoryStore(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// recordingStore wraps a store, records batch sizes and can fail chosen
// commits or lookups.
type recordingStore struct {
	storage.DocumentStore

	mu          sync.Mutex
	batchSizes  []int
	commits     int
	failCommits map[int]bool // 1-based commit numbers that fail
	failAlways  bool
	existsErr   map[string]error
}

func newRecordingStore(inner storage.DocumentStore) *recordingStore {
	return &recordingStore{
		DocumentStore: inner,
		failCommits:   make(map[int]bool),
		existsErr:     make(map[string]error),
	}
}

func (s *recordingStore) BatchCommit(ctx context.Context, ops []storage.Operation) error {
	s.mu.Lock()
	s.commits++
	n := s.commits
	fail := s.failAlways || s.failCommits[n]
	if !fail {
		s.batchSizes = append(s.batchSizes, len(ops))
	}
	s.mu.Unlock()

	if fail {
		return errCommitDown
	}
	return s.DocumentStore.BatchCommit(ctx, ops)
}

func (s *recordingStore) Exists(ctx context.Context, collection, id string) (bool, error) {
	s.mu.Lock()
	err := s.existsErr[id]
	s.mu.Unlock()
	if err != nil {
		return false, err
	}
	return s.DocumentStore.Exists(ctx, collection, id)
}

func (s *recordingStore) committedSizes() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.batchSizes...)
}

func makeArticles(prefix string, n int) []*core.Article {
	out := make([]*core.Article, n)
	for i := range out {
		link := fmt.Sprintf("https://news.example.com/%s/%d", prefix, i)
		out[i] = core.NewArticle(fmt.Sprintf("%s headline %d", prefix, i), link, "TestFeed", testNow)
	}
	return out
}

func storeArticles(t *testing.T, store storage.DocumentStore, articles []*core.Article) {
	t.Helper()
	for _, a := range articles {
		require.NoError(t, store.Upsert(context.Background(), core.CollectionArticles, a.ID, a.Fields(), true))
	}
}

type fakeNews struct {
	results []rss.SourceResult
	calls   int
}

func (f *fakeNews) FetchAll(ctx context.Context, feeds []rss.FeedSource) []rss.SourceResult {
	f.calls++
	return f.results
}

func newsFrom(articles ...[]*core.Article) *fakeNews {
	f := &fakeNews{}
	for i, batch := range articles {
		f.results = append(f.results, rss.SourceResult{
			Source: rss.FeedSource{Name: fmt.Sprintf("feed-%d", i)},
			Report: source.Report[*core.Article]{Records: batch},
		})
	}
	return f
}

type fakeCalendar struct {
	report source.Report[*core.CalendarEvent]
	err    error
}

func (f *fakeCalendar) Fetch(ctx context.Context) (source.Report[*core.CalendarEvent], error) {
	return f.report, f.err
}

type fakeIndicators struct {
	report ecos.IndicatorReport
	err    error
}

func (f *fakeIndicators) FetchAll(ctx context.Context) (ecos.IndicatorReport, error) {
	return f.report, f.err
}

func calendarEvents(n int) []*core.CalendarEvent {
	out := make([]*core.CalendarEvent, n)
	for i := range out {
		out[i] = core.NewCalendarEvent("2026-03-04", fmt.Sprintf("%02d:00", i%24), "United States", fmt.Sprintf("Event %d", i), 2)
	}
	return out
}

func indicatorResult(id string, value float64) ecos.IndicatorResult {
	spec := ecos.Spec{ID: id, StatCode: "731Y001", ItemCode: "0000001", Cycle: ecos.CycleDaily}
	return ecos.IndicatorResult{
		Spec: spec,
		Indicator: &core.Indicator{
			ID: id, Name: id, Value: value, StatCode: spec.StatCode, ItemCode: spec.ItemCode,
			Source: ecos.DefaultSource, CapturedAt: testNow,
		},
	}
}

func failedIndicator(id string) ecos.IndicatorResult {
	return ecos.IndicatorResult{Spec: ecos.Spec{ID: id}, Err: source.ErrSourceUnavailable}
}
