package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/marketfeed/ai"
	"github.com/poiesic/marketfeed/core"
	"golang.org/x/time/rate"
)

const (
	// DefaultSubBatchSize is the number of articles per summarization request.
	DefaultSubBatchSize = 5

	// DefaultSubBatchInterval is the minimum spacing between requests.
	DefaultSubBatchInterval = time.Second

	minSummaryForBody = 20

	pendingNotice  = "[AI 번역 대기 중 - 원문 기사입니다. 자세한 내용은 원문 링크를 확인하세요.]"
	pendingInsight = "AI 분석 대기 중 - Gemini API 키를 설정하면 한국어 번역 및 투자 인사이트를 제공합니다."
	missingBody    = "번역 불가"
	missingInsight = "정보 없음"
)

// EnrichResult maps article IDs to the enrichment to store.
// Every input article has an entry.
type EnrichResult struct {
	ByID      map[string]core.Enrichment
	Enriched  int
	Fallback  int
	Discarded int // Reply items dropped for a missing, out-of-range or repeated index
}

// Enricher coordinates sub-batched calls to the summarization service.
type Enricher struct {
	summarizer ai.Summarizer
	vocabulary core.Vocabulary
	batchSize  int
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// EnricherOption configures an Enricher.
type EnricherOption func(*Enricher)

// WithEnrichBatchSize sets the number of articles per request.
func WithEnrichBatchSize(n int) EnricherOption {
	return func(e *Enricher) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// WithEnrichInterval sets the minimum spacing between requests. Zero disables pacing.
func WithEnrichInterval(d time.Duration) EnricherOption {
	return func(e *Enricher) {
		e.limiter = newLimiter(d)
	}
}

// WithVocabulary sets the sentiment vocabulary results are normalized to.
func WithVocabulary(v core.Vocabulary) EnricherOption {
	return func(e *Enricher) {
		if v != 0 {
			e.vocabulary = v
		}
	}
}

// WithEnrichLogger sets the logger.
func WithEnrichLogger(logger *slog.Logger) EnricherOption {
	return func(e *Enricher) {
		if logger != nil {
			e.logger = logger.With("component", "enricher")
		}
	}
}

func newLimiter(d time.Duration) *rate.Limiter {
	if d <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(d), 1)
}

// NewEnricher creates an enricher. A nil summarizer disables enrichment:
// every article receives fallback enrichment.
func NewEnricher(summarizer ai.Summarizer, opts ...EnricherOption) *Enricher {
	e := &Enricher{
		summarizer: summarizer,
		vocabulary: core.VocabularyMarket,
		batchSize:  DefaultSubBatchSize,
		limiter:    newLimiter(DefaultSubBatchInterval),
		logger:     slog.Default().With("component", "enricher"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich produces an enrichment for every article. Sub-batches run
// sequentially; a failed request degrades only its own sub-batch to fallback.
func (e *Enricher) Enrich(ctx context.Context, articles []*core.Article) EnrichResult {
	result := EnrichResult{ByID: make(map[string]core.Enrichment, len(articles))}
	if len(articles) == 0 {
		return result
	}

	if e.summarizer == nil {
		e.logger.Warn("summarization disabled, storing fallback enrichment", "articles", len(articles))
		for _, a := range articles {
			result.ByID[a.ID] = FallbackEnrichment(a)
		}
		result.Fallback = len(articles)
		return result
	}

	for start := 0; start < len(articles); start += e.batchSize {
		batch := articles[start:min(start+e.batchSize, len(articles))]

		var items map[int]ai.SummaryItem
		if err := e.limiter.Wait(ctx); err != nil {
			e.logger.Warn("enrichment interrupted", "remaining", len(articles)-start, "err", err)
		} else {
			items = e.summarize(ctx, batch, &result)
		}

		for i, a := range batch {
			if item, ok := items[i]; ok {
				result.ByID[a.ID] = e.fromItem(a, item)
				result.Enriched++
				continue
			}
			result.ByID[a.ID] = FallbackEnrichment(a)
			result.Fallback++
		}
	}

	e.logger.Info("enriched articles", "articles", len(articles), "enriched", result.Enriched,
		"fallback", result.Fallback, "discarded", result.Discarded)
	return result
}

// summarize sends one sub-batch and correlates the reply strictly by the
// echoed item index. Returns nil when the request failed.
func (e *Enricher) summarize(ctx context.Context, batch []*core.Article, result *EnrichResult) map[int]ai.SummaryItem {
	requests := make([]ai.SummaryRequest, len(batch))
	for i, a := range batch {
		requests[i] = ai.SummaryRequest{Index: i, Title: a.Title}
	}

	items, err := e.summarizer.Summarize(ctx, requests)
	if err != nil {
		e.logger.Error("sub-batch summarization failed, using fallback", "articles", len(batch), "err", err)
		return nil
	}

	byIndex := make(map[int]ai.SummaryItem, len(items))
	answers := make(map[int]int)
	for _, item := range items {
		idx, ok := item.Index()
		switch {
		case !ok:
			e.logger.Warn("discarding reply item without index")
			result.Discarded++
			continue
		case idx < 0 || idx >= len(batch):
			e.logger.Warn("discarding reply item with out-of-range index", "index", idx, "batch", len(batch))
			result.Discarded++
			continue
		}
		answers[idx]++
		byIndex[idx] = item
	}
	// An index answered more than once is ambiguous; none of its answers is trusted.
	for idx, n := range answers {
		if n < 2 {
			continue
		}
		e.logger.Warn("discarding repeated reply index", "index", idx, "answers", n)
		delete(byIndex, idx)
		result.Discarded += n
	}
	return byIndex
}

func (e *Enricher) fromItem(a *core.Article, item ai.SummaryItem) core.Enrichment {
	sentiment, err := core.ParseSentiment(e.vocabulary, item.MarketSentiment)
	if err != nil {
		e.logger.Debug("normalized unknown sentiment", "id", a.ID, "raw", item.MarketSentiment)
	}

	impact := item.ImpactScore
	if impact == 0 {
		impact = core.NeutralImpactScore
	}

	return core.Enrichment{
		TranslatedTitle: firstNonEmpty(item.KoreanTitle, a.Title),
		TranslatedBody:  firstNonEmpty(item.KoreanBody, missingBody),
		ImpactScore:     core.ClampImpact(impact),
		Sentiment:       sentiment,
		InsightText:     firstNonEmpty(item.ActionableInsight, missingInsight),
		RelatedAssets:   cleanAssets(item.RelatedAssets),
	}
}

// FallbackEnrichment is stored when the service is disabled or did not
// answer for an article. It carries only facts from the article itself.
func FallbackEnrichment(a *core.Article) core.Enrichment {
	body := fmt.Sprintf("[AI 분석 대기 중]\n\n이 기사는 %s 소스에서 수집되었습니다.\n제목: %s\n\n자세한 내용은 원문 링크를 확인하세요.",
		a.SourceName, a.Title)
	if summary := strings.TrimSpace(a.RawSummary); len([]rune(summary)) > minSummaryForBody {
		body = summary + "\n\n" + pendingNotice
	}

	return core.Enrichment{
		TranslatedTitle: a.Title,
		TranslatedBody:  body,
		ImpactScore:     core.NeutralImpactScore,
		Sentiment:       core.SentimentNeutral,
		InsightText:     pendingInsight,
		RelatedAssets:   []string{},
		Pending:         true,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func cleanAssets(assets []string) []string {
	out := make([]string, 0, len(assets))
	for _, a := range assets {
		if s := strings.TrimSpace(a); s != "" {
			out = append(out, s)
		}
	}
	return out
}
