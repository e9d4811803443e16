// Package rss adapts news feeds (RSS, Atom, JSON Feed) into canonical articles.
package rss

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/poiesic/marketfeed/core"
	"github.com/poiesic/marketfeed/source"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultEntryLimit is how many entries are taken from the top of each feed.
	DefaultEntryLimit = 10

	// DefaultConcurrency bounds simultaneous feed fetches.
	DefaultConcurrency = 4

	summaryLimit = 500
)

// FeedSource names one feed.
type FeedSource struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// DefaultFeeds is the built-in feed registry.
var DefaultFeeds = []FeedSource{
	{Name: "WSJ_Markets", URL: "https://feeds.a.dj.com/rss/RSSMarketsMain.xml"},
	{Name: "CNBC_Economy", URL: "https://www.cnbc.com/id/20910258/device/rss/rss.html"},
	{Name: "CNBC_Tech", URL: "https://www.cnbc.com/id/19854910/device/rss/rss.html"},
	{Name: "MarketWatch", URL: "https://www.marketwatch.com/rss/topstories"},
	{Name: "Reuters_Business", URL: "https://www.reutersagency.com/feed/?taxonomy=best-topics&post_type=best"},
	{Name: "Investing_News", URL: "https://www.investing.com/rss/news.rss"},
	{Name: "CoinDesk", URL: "https://www.coindesk.com/arc/outboundfeeds/rss/"},
	{Name: "TechCrunch", URL: "https://techcrunch.com/feed/"},
	{Name: "Google_Korea_Economy", URL: "https://news.google.com/rss/search?q=%EA%B2%BD%EC%A0%9C+when:1d&hl=ko&gl=KR&ceid=KR:ko"},
	{Name: "Google_US_Economy", URL: "https://news.google.com/rss/search?q=US+Economy+when:1d&hl=en-US&gl=US&ceid=US:en"},
	{Name: "Google_Global_Markets", URL: "https://news.google.com/rss/search?q=Global+Markets+when:1d&hl=en-US&gl=US&ceid=US:en"},
}

// SourceResult is the outcome of fetching one feed.
type SourceResult struct {
	Source FeedSource
	Report source.Report[*core.Article]
	Err    error
}

// Adapter fetches feeds and maps their entries to articles.
type Adapter struct {
	fetcher     *source.Fetcher
	limit       int
	concurrency int
	now         func() time.Time
	logger      *slog.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithEntryLimit sets how many entries are read per feed.
func WithEntryLimit(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.limit = n
		}
	}
}

// WithConcurrency bounds simultaneous feed fetches in FetchAll.
func WithConcurrency(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithClock overrides the clock used when an entry carries no usable date.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) {
		if now != nil {
			a.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger.With("component", "rss")
		}
	}
}

// NewAdapter creates a feed adapter. A nil fetcher uses source defaults.
func NewAdapter(fetcher *source.Fetcher, opts ...Option) *Adapter {
	if fetcher == nil {
		fetcher = source.NewFetcher()
	}
	a := &Adapter{
		fetcher:     fetcher,
		limit:       DefaultEntryLimit,
		concurrency: DefaultConcurrency,
		now:         time.Now,
		logger:      slog.Default().With("component", "rss"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Fetch reads one feed. Entries without a title or link are skipped.
func (a *Adapter) Fetch(ctx context.Context, src FeedSource) (source.Report[*core.Article], error) {
	var report source.Report[*core.Article]

	body, err := a.fetcher.Get(ctx, src.URL)
	if err != nil {
		return report, fmt.Errorf("feed %s: %w", src.Name, err)
	}

	// gofeed parsers keep per-parse state, so each fetch gets its own.
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return report, fmt.Errorf("feed %s: %w: %w", src.Name, source.ErrMalformedPayload, err)
	}

	if len(feed.Items) == 0 {
		a.logger.Warn("feed has no entries", "source", src.Name)
		return report, nil
	}

	now := a.now()
	for i, item := range feed.Items {
		if i >= a.limit {
			break
		}
		report.Add(a.mapItem(src, item, i, now))
	}

	a.logger.Debug("fetched feed", "source", src.Name, "entries", len(feed.Items),
		"articles", len(report.Records), "skipped", len(report.Skipped))
	return report, nil
}

func (a *Adapter) mapItem(src FeedSource, item *gofeed.Item, pos int, now time.Time) source.Outcome[*core.Article] {
	ref := fmt.Sprintf("%s#%d", src.Name, pos)
	if item == nil {
		return source.Skipped[*core.Article](ref, "empty entry")
	}

	title := strings.TrimSpace(item.Title)
	link := strings.TrimSpace(item.Link)
	if link == "" {
		return source.Skipped[*core.Article](ref, "missing link")
	}
	if title == "" {
		return source.Skipped[*core.Article](link, "missing title")
	}

	article := core.NewArticle(title, link, src.Name, publishedAt(item, now))
	summary := item.Description
	if summary == "" {
		summary = item.Content
	}
	article.RawSummary = truncate(stripHTML(summary), summaryLimit)
	return source.Parsed(article)
}

func publishedAt(item *gofeed.Item, now time.Time) time.Time {
	switch {
	case item.PublishedParsed != nil:
		return item.PublishedParsed.UTC()
	case item.UpdatedParsed != nil:
		return item.UpdatedParsed.UTC()
	}
	t, _ := core.ParseTimestamp(item.Published, now.UTC())
	return t
}

// FetchAll reads every feed concurrently. Each feed runs under its own
// request timeout and a failing feed never affects the others. Results are
// returned in input order once all fetches complete.
func (a *Adapter) FetchAll(ctx context.Context, sources []FeedSource) []SourceResult {
	results := make([]SourceResult, len(sources))

	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, src := range sources {
		g.Go(func() error {
			report, err := a.Fetch(ctx, src)
			if err != nil {
				a.logger.Warn("feed failed", "source", src.Name, "err", err)
			}
			results[i] = SourceResult{Source: src, Report: report, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// stripHTML returns the visible text of an HTML fragment with whitespace collapsed.
func stripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
