// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package marketfeed

import (
	"log/slog"
	"net/http"

	"github.com/poiesic/marketfeed/ai"
	"github.com/poiesic/marketfeed/ai/openai"
	"github.com/poiesic/marketfeed/config"
	"github.com/poiesic/marketfeed/ingestion"
	"github.com/poiesic/marketfeed/source"
	"github.com/poiesic/marketfeed/source/calendar"
	"github.com/poiesic/marketfeed/source/ecos"
	"github.com/poiesic/marketfeed/source/rss"
	"github.com/poiesic/marketfeed/storage"
	"github.com/poiesic/marketfeed/storage/badger"
	"github.com/poiesic/marketfeed/storage/dryrun"
)

// Engine holds the store, the enrichment service and the source adapters of
// one configuration. Handles are explicit; nothing is process-global.
type Engine struct {
	cfg        *config.Config
	store      storage.DocumentStore
	dryRun     bool
	summarizer ai.Summarizer
	news       *rss.Adapter
	calendar   *calendar.Adapter
	indicators *ecos.Adapter
	logger     *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	config        *config.Config
	enrichmentKey string
	ecosKey       string
	store         storage.DocumentStore
	summarizer    ai.Summarizer
	httpClient    *http.Client
	logger        *slog.Logger
}

// WithConfig sets the configuration. Default is config.Default().
func WithConfig(cfg *config.Config) EngineOption {
	return func(o *engineOptions) {
		o.config = cfg
	}
}

// WithEnrichmentKey sets the summarization service credential.
// Without one, articles are stored with fallback enrichment.
func WithEnrichmentKey(key string) EngineOption {
	return func(o *engineOptions) {
		o.enrichmentKey = key
	}
}

// WithECOSKey sets the ECOS credential. Without one, the indicator phase fails.
func WithECOSKey(key string) EngineOption {
	return func(o *engineOptions) {
		o.ecosKey = key
	}
}

// WithStore uses an existing store instead of opening one from the configuration.
// The engine takes ownership and closes it.
func WithStore(store storage.DocumentStore) EngineOption {
	return func(o *engineOptions) {
		o.store = store
	}
}

// WithSummarizer uses an existing summarizer instead of building one from the configuration.
func WithSummarizer(s ai.Summarizer) EngineOption {
	return func(o *engineOptions) {
		o.summarizer = s
	}
}

// WithHTTPClient sets the client used by every source adapter.
func WithHTTPClient(client *http.Client) EngineOption {
	return func(o *engineOptions) {
		o.httpClient = client
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// NewEngine builds an engine. The store is Badger when the configuration names
// a path and a dry-run store otherwise.
func NewEngine(opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		config: config.Default(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	cfg := options.config
	logger := options.logger

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	location, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	e := &Engine{cfg: cfg, logger: logger, store: options.store}
	if e.store == nil {
		if cfg.StorePath == "" {
			logger.Warn("no store path configured, running dry")
			e.store = dryrun.New(logger)
			e.dryRun = true
		} else {
			store, err := badger.Open(cfg.StorePath)
			if err != nil {
				return nil, err
			}
			e.store = store
		}
	}

	e.summarizer = options.summarizer
	if e.summarizer == nil {
		aiConfig := cfg.AIConfig(options.enrichmentKey)
		if aiConfig.Enabled() {
			summarizer, err := openai.NewSummarizer(aiConfig)
			if err != nil {
				e.store.Close()
				return nil, err
			}
			e.summarizer = summarizer
		} else {
			logger.Warn("enrichment key not set, articles will carry fallback enrichment")
		}
	}

	fetcherOpts := []source.FetcherOption{
		source.WithHTTPClient(options.httpClient),
		source.WithTimeout(cfg.HTTPTimeout()),
		source.WithUserAgent(cfg.HTTP.UserAgent),
		source.WithAcceptLanguage(cfg.HTTP.AcceptLanguage),
		source.WithFetcherLogger(logger),
	}
	for k, v := range cfg.HTTP.Headers {
		fetcherOpts = append(fetcherOpts, source.WithHeader(k, v))
	}
	fetcher := source.NewFetcher(fetcherOpts...)

	e.news = rss.NewAdapter(fetcher,
		rss.WithEntryLimit(cfg.News.EntryLimit),
		rss.WithConcurrency(cfg.News.Concurrency),
		rss.WithLogger(logger),
	)
	e.calendar = calendar.NewAdapter(fetcher,
		calendar.WithURL(cfg.Calendar.URL),
		calendar.WithLocation(location),
		calendar.WithLogger(logger),
	)
	client := ecos.NewClient(fetcher, options.ecosKey,
		ecos.WithBaseURL(cfg.Indicators.BaseURL),
		ecos.WithClientLogger(logger),
	)
	e.indicators = ecos.NewAdapter(client,
		ecos.WithCatalog(cfg.Catalog()),
		ecos.WithConcurrency(cfg.Indicators.Concurrency),
		ecos.WithLogger(logger),
	)

	return e, nil
}

// Close releases the store.
func (e *Engine) Close() error {
	if err := e.store.Close(); err != nil {
		e.logger.Error("error closing store", "err", err)
		return err
	}
	return nil
}

// Store returns the document store.
func (e *Engine) Store() storage.DocumentStore {
	return e.store
}

// DryRun reports whether writes are discarded.
func (e *Engine) DryRun() bool {
	return e.dryRun
}

// EnrichmentEnabled reports whether a summarizer is configured.
func (e *Engine) EnrichmentEnabled() bool {
	return e.summarizer != nil
}

// NewPipeline builds a pipeline over the engine's store and adapters.
// Options are applied after the configured ones and override them.
func (e *Engine) NewPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	phases, err := e.cfg.Phases()
	if err != nil {
		return nil, err
	}
	vocabulary, err := e.cfg.Vocabulary()
	if err != nil {
		return nil, err
	}

	base := []ingestion.Option{
		ingestion.WithNews(e.news, e.cfg.News.Feeds),
		ingestion.WithCalendar(e.calendar),
		ingestion.WithIndicators(e.indicators),
		ingestion.WithSummarizer(e.summarizer, vocabulary),
		ingestion.WithPoolSize(e.cfg.Ingestion.PoolSize),
		ingestion.WithSubBatchSize(e.cfg.Enrichment.SubBatchSize),
		ingestion.WithSubBatchInterval(e.cfg.SubBatchInterval()),
		ingestion.WithBatchSize(e.cfg.Ingestion.BatchSize),
		ingestion.WithCommitRetry(e.cfg.Ingestion.CommitAttempts, ingestion.DefaultCommitBackoff),
		ingestion.WithRunTimeout(e.cfg.RunTimeout()),
		ingestion.WithPhases(phases...),
		ingestion.WithLogger(e.logger),
	}
	return ingestion.NewPipeline(e.store, append(base, opts...)...)
}
