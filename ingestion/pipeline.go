package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/marketfeed/ai"
	"github.com/poiesic/marketfeed/core"
	"github.com/poiesic/marketfeed/source"
	"github.com/poiesic/marketfeed/source/ecos"
	"github.com/poiesic/marketfeed/source/rss"
	"github.com/poiesic/marketfeed/storage"
)

// DefaultRunTimeout bounds a whole run.
const DefaultRunTimeout = 5 * time.Minute

// NewsSource fetches a set of feeds.
type NewsSource interface {
	FetchAll(ctx context.Context, feeds []rss.FeedSource) []rss.SourceResult
}

// CalendarSource fetches today's calendar events.
type CalendarSource interface {
	Fetch(ctx context.Context) (source.Report[*core.CalendarEvent], error)
}

// IndicatorSource fetches the indicator catalog.
type IndicatorSource interface {
	FetchAll(ctx context.Context) (ecos.IndicatorReport, error)
}

// Pipeline runs the news, calendar and indicator phases against one store.
type Pipeline struct {
	store      storage.DocumentStore
	news       NewsSource
	feeds      []rss.FeedSource
	calendar   CalendarSource
	indicators IndicatorSource

	summarizer    ai.Summarizer
	vocabulary    core.Vocabulary
	subBatchSize  int
	subBatchDelay time.Duration
	batchSize     int
	commitTries   int
	commitBackoff time.Duration

	pool       *ants.Pool
	dedup      *Deduplicator
	enricher   *Enricher
	writer     *BatchWriter
	phases     []Phase
	runTimeout time.Duration
	observer   Observer
	now        func() time.Time
	logger     *slog.Logger

	mu           sync.Mutex
	currentPhase Phase
	currentState PhaseState
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithNews enables the news phase over the given feeds.
func WithNews(src NewsSource, feeds []rss.FeedSource) Option {
	return func(p *Pipeline) error {
		p.news = src
		p.feeds = feeds
		return nil
	}
}

// WithCalendar enables the calendar phase.
func WithCalendar(src CalendarSource) Option {
	return func(p *Pipeline) error {
		p.calendar = src
		return nil
	}
}

// WithIndicators enables the indicator phase.
func WithIndicators(src IndicatorSource) Option {
	return func(p *Pipeline) error {
		p.indicators = src
		return nil
	}
}

// WithSummarizer sets the enrichment service. Without one, every new article
// is stored with fallback enrichment.
func WithSummarizer(s ai.Summarizer, vocabulary core.Vocabulary) Option {
	return func(p *Pipeline) error {
		p.summarizer = s
		if vocabulary != 0 {
			p.vocabulary = vocabulary
		}
		return nil
	}
}

// WithPoolSize sets the worker pool size for existence lookups.
// Default is DefaultPoolSize.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if p.pool != nil {
			p.pool.Release()
		}
		p.pool = pool
		return nil
	}
}

// WithSubBatchSize sets the number of articles per enrichment request.
func WithSubBatchSize(n int) Option {
	return func(p *Pipeline) error {
		if n < 1 {
			return fmt.Errorf("sub-batch size must be positive, got %d", n)
		}
		p.subBatchSize = n
		return nil
	}
}

// WithSubBatchInterval sets the minimum spacing between enrichment requests.
func WithSubBatchInterval(d time.Duration) Option {
	return func(p *Pipeline) error {
		p.subBatchDelay = d
		return nil
	}
}

// WithBatchSize sets the preferred write chunk size.
func WithBatchSize(n int) Option {
	return func(p *Pipeline) error {
		if n < 1 {
			return fmt.Errorf("batch size must be positive, got %d", n)
		}
		p.batchSize = n
		return nil
	}
}

// WithCommitRetry sets the attempts per chunk and the initial backoff.
func WithCommitRetry(attempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if attempts < 1 {
			return ErrInvalidMaxAttempts
		}
		p.commitTries = attempts
		p.commitBackoff = baseDelay
		return nil
	}
}

// WithRunTimeout bounds a whole run.
func WithRunTimeout(d time.Duration) Option {
	return func(p *Pipeline) error {
		if d > 0 {
			p.runTimeout = d
		}
		return nil
	}
}

// WithPhases restricts a run to a subset of phases. Run order is fixed.
func WithPhases(phases ...Phase) Option {
	return func(p *Pipeline) error {
		for _, ph := range phases {
			if !slices.Contains(AllPhases, ph) {
				return fmt.Errorf("unknown phase %q", ph)
			}
		}
		p.phases = phases
		return nil
	}
}

// WithObserver registers a callback for state transitions.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) error {
		p.observer = o
		return nil
	}
}

// WithClock overrides the clock used for analysis stamps and run times.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) error {
		if now != nil {
			p.now = now
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a pipeline writing to store.
func NewPipeline(store storage.DocumentStore, opts ...Option) (*Pipeline, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	p := &Pipeline{
		store:         store,
		vocabulary:    core.VocabularyMarket,
		subBatchSize:  DefaultSubBatchSize,
		subBatchDelay: DefaultSubBatchInterval,
		batchSize:     DefaultBatchSize,
		commitTries:   DefaultCommitAttempts,
		commitBackoff: DefaultCommitBackoff,
		phases:        AllPhases,
		runTimeout:    DefaultRunTimeout,
		now:           time.Now,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			p.Release()
			return nil, err
		}
	}

	if p.pool == nil {
		pool, err := ants.NewPool(DefaultPoolSize)
		if err != nil {
			return nil, err
		}
		p.pool = pool
	}

	// Components are built after options so they get the final config.
	p.dedup = NewDeduplicator(store, p.pool, p.logger)
	p.enricher = NewEnricher(p.summarizer,
		WithEnrichBatchSize(p.subBatchSize),
		WithEnrichInterval(p.subBatchDelay),
		WithVocabulary(p.vocabulary),
		WithEnrichLogger(p.logger),
	)
	p.writer = NewBatchWriter(store,
		WithWriterBatchSize(p.batchSize),
		WithChunkRetry(p.commitTries, p.commitBackoff),
		WithWriterLogger(p.logger),
	)

	return p, nil
}

// State returns the current phase and state.
func (p *Pipeline) State() (Phase, PhaseState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentPhase, p.currentState
}

// Run executes the selected phases in order under the run timeout. Each
// phase is isolated: a failed phase is recorded and the next one still runs.
func (p *Pipeline) Run(ctx context.Context) Summary {
	ctx, cancel := context.WithTimeout(ctx, p.runTimeout)
	defer cancel()

	summary := Summary{RunID: uuid.NewString(), Started: p.now()}
	logger := p.logger.With("run_id", summary.RunID)
	logger.Info("ingestion run started", "phases", p.phases)

	for _, phase := range AllPhases {
		if !slices.Contains(p.phases, phase) {
			continue
		}

		p.transition(phase, StateRunning)
		start := time.Now()

		var result PhaseResult
		switch phase {
		case PhaseNews:
			result = p.runNews(ctx, logger)
		case PhaseCalendar:
			result = p.runCalendar(ctx, logger)
		case PhaseIndicators:
			result = p.runIndicators(ctx, logger)
		}
		result.Phase = phase
		result.Duration = time.Since(start)
		if result.Err != nil {
			result.State = StateFailed
			logger.Error("phase failed", "phase", phase, "written", result.Written, "err", result.Err)
		} else {
			result.State = StateSucceeded
			logger.Info("phase succeeded", "phase", phase, "fetched", result.Fetched, "written", result.Written,
				"skipped", result.Skipped, "elapsed", result.Duration)
		}
		p.transition(phase, result.State)
		summary.Phases = append(summary.Phases, result)
	}

	summary.Finished = p.now()
	p.transition("", StateDone)
	logger.Info("ingestion run finished", "written", summary.Written(), "failed_phases", summary.FailedPhases())
	return summary
}

// Release releases resources including the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

func (p *Pipeline) transition(phase Phase, state PhaseState) {
	p.mu.Lock()
	p.currentPhase, p.currentState = phase, state
	p.mu.Unlock()
	if p.observer != nil {
		p.observer(phase, state)
	}
}

func (p *Pipeline) runNews(ctx context.Context, logger *slog.Logger) PhaseResult {
	var res PhaseResult
	if p.news == nil {
		res.Err = ErrSourceNotConfigured
		return res
	}

	results := p.news.FetchAll(ctx, p.feeds)
	var candidates []*core.Article
	var errs []error
	for _, r := range results {
		res.Skipped += len(r.Report.Skipped)
		if r.Err != nil {
			res.Failed++
			errs = append(errs, r.Err)
			continue
		}
		candidates = append(candidates, r.Report.Records...)
	}
	if len(results) > 0 && res.Failed == len(results) {
		res.Err = fmt.Errorf("%w: %w", ErrAllSourcesFailed, errors.Join(errs...))
		return res
	}
	res.Fetched = len(candidates)

	valid := make([]*core.Article, 0, len(candidates))
	for _, a := range candidates {
		if err := core.ValidateArticle(a); err != nil {
			logger.Warn("dropping invalid article", "link", a.Link, "err", err)
			res.Skipped++
			continue
		}
		valid = append(valid, a)
	}

	deduped, err := p.dedup.Filter(ctx, valid)
	if err != nil {
		res.Err = err
		return res
	}
	res.New = len(deduped.New)
	if res.New == 0 {
		return res
	}

	enrichment := p.enricher.Enrich(ctx, deduped.New)
	res.Enriched = enrichment.Enriched
	res.Fallback = enrichment.Fallback

	analyzedAt := p.now().UTC()
	for _, a := range deduped.New {
		e := enrichment.ByID[a.ID]
		a.Enrichment = &e
		a.AnalyzedAt = analyzedAt
	}

	res.Written, res.Err = p.writer.Commit(ctx, core.CollectionArticles, core.Records(deduped.New))
	return res
}

func (p *Pipeline) runCalendar(ctx context.Context, logger *slog.Logger) PhaseResult {
	var res PhaseResult
	if p.calendar == nil {
		res.Err = ErrSourceNotConfigured
		return res
	}

	report, err := p.calendar.Fetch(ctx)
	res.Skipped = len(report.Skipped)
	if err != nil {
		res.Failed = 1
		res.Err = fmt.Errorf("%w: %w", ErrAllSourcesFailed, err)
		return res
	}
	res.Fetched = len(report.Records)

	events := make([]*core.CalendarEvent, 0, len(report.Records))
	for _, ev := range report.Records {
		if err := core.ValidateCalendarEvent(ev); err != nil {
			logger.Warn("dropping invalid calendar event", "title", ev.Title, "err", err)
			res.Skipped++
			continue
		}
		events = append(events, ev)
	}

	res.Written, res.Err = p.writer.Commit(ctx, core.CollectionCalendar, core.Records(events))
	return res
}

func (p *Pipeline) runIndicators(ctx context.Context, logger *slog.Logger) PhaseResult {
	var res PhaseResult
	if p.indicators == nil {
		res.Err = ErrSourceNotConfigured
		return res
	}

	report, err := p.indicators.FetchAll(ctx)
	if err != nil {
		res.Err = err
		return res
	}
	res.Failed = report.Failed()
	res.Skipped = report.Skipped()

	indicators := report.Indicators()
	if len(report.Results) > 0 && len(indicators) == 0 {
		res.Err = fmt.Errorf("%w: %w", ErrAllSourcesFailed, report.Err())
		return res
	}
	res.Fetched = len(indicators)

	valid := make([]*core.Indicator, 0, len(indicators))
	for _, ind := range indicators {
		if err := core.ValidateIndicator(ind); err != nil {
			logger.Warn("dropping invalid indicator", "id", ind.ID, "err", err)
			res.Skipped++
			continue
		}
		valid = append(valid, ind)
	}

	res.Written, res.Err = p.writer.Commit(ctx, core.CollectionIndicators, core.Records(valid))
	return res
}
