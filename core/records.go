package core

import "time"

// Collections used in the document store.
const (
	CollectionArticles   = "investment_insights"
	CollectionCalendar   = "economic_calendar"
	CollectionIndicators = "economic_indicators"
)

// Impact score bounds for enriched articles.
const (
	MinImpactScore     = 1
	MaxImpactScore     = 10
	NeutralImpactScore = 5
)

// Importance bounds for calendar events (3 = highest).
const (
	MinImportance = 1
	MaxImportance = 3
)

// Article is a news item fetched from a feed.
type Article struct {
	ID          string
	Title       string
	Link        string
	PublishedAt time.Time // Best effort; ingestion time when the feed date is unparsable
	SourceName  string
	RawSummary  string      // Optional summary supplied by the feed
	Enrichment  *Enrichment // Populated by the enrichment stage
	AnalyzedAt  time.Time
}

// NewArticle builds an article whose ID is derived from its link.
func NewArticle(title, link, source string, publishedAt time.Time) *Article {
	return &Article{
		ID:          ArticleID(link),
		Title:       title,
		Link:        link,
		PublishedAt: publishedAt,
		SourceName:  source,
	}
}

// Enrichment carries the translated and classified view of an article.
type Enrichment struct {
	TranslatedTitle string
	TranslatedBody  string
	ImpactScore     int // 1-10
	Sentiment       Sentiment
	InsightText     string
	RelatedAssets   []string
	Pending         bool // true when the service was unavailable and this is the fallback record
}

// ClampImpact bounds an impact score to 1-10.
func ClampImpact(score int) int {
	return min(max(score, MinImpactScore), MaxImpactScore)
}

// ClampImportance bounds a calendar importance to 1-3.
func ClampImportance(importance int) int {
	return min(max(importance, MinImportance), MaxImportance)
}

func (a *Article) RecordID() string { return a.ID }

func (a *Article) Fields() Fields {
	f := Fields{
		"id":                     StringValue(a.ID),
		"link":                   StringValue(a.Link),
		"meta_data.source_name":  StringValue(a.SourceName),
		"meta_data.published_at": TimeValue(a.PublishedAt),
		"content.original_title": StringValue(a.Title),
	}
	if !a.AnalyzedAt.IsZero() {
		f["meta_data.analyzed_at"] = TimeValue(a.AnalyzedAt)
	}
	if a.RawSummary != "" {
		f["content.raw_summary"] = StringValue(a.RawSummary)
	}
	if e := a.Enrichment; e != nil {
		f["content.korean_title"] = StringValue(e.TranslatedTitle)
		f["content.korean_body"] = StringValue(e.TranslatedBody)
		f["intelligence.impact_score"] = IntValue(int64(e.ImpactScore))
		f["intelligence.market_sentiment"] = StringValue(string(e.Sentiment))
		f["intelligence.actionable_insight"] = StringValue(e.InsightText)
		f["intelligence.related_assets"] = StringsValue(e.RelatedAssets)
		f["intelligence.pending"] = BoolValue(e.Pending)
	}
	return f
}

// CalendarEvent is a scheduled economic release scraped from a live calendar.
type CalendarEvent struct {
	ID            string
	Date          string // ISO date, always the crawl day
	ScheduledTime string // Free form: "09:30", "All Day"
	Country       string
	Title         string
	Importance    int     // 1-3
	Actual        *string // nil until released
	Forecast      *string
	Previous      *string
}

// NewCalendarEvent builds an event whose ID is derived from date, time and title.
func NewCalendarEvent(date, scheduledTime, country, title string, importance int) *CalendarEvent {
	return &CalendarEvent{
		ID:            CalendarEventID(date, scheduledTime, title),
		Date:          date,
		ScheduledTime: scheduledTime,
		Country:       country,
		Title:         title,
		Importance:    ClampImportance(importance),
	}
}

func (e *CalendarEvent) RecordID() string { return e.ID }

func (e *CalendarEvent) Fields() Fields {
	f := Fields{
		"id":         StringValue(e.ID),
		"date":       StringValue(e.Date),
		"time":       StringValue(e.ScheduledTime),
		"country":    StringValue(e.Country),
		"title":      StringValue(e.Title),
		"importance": IntValue(int64(e.Importance)),
	}
	if e.Actual != nil {
		f["actual"] = StringValue(*e.Actual)
	}
	if e.Forecast != nil {
		f["forecast"] = StringValue(*e.Forecast)
	}
	if e.Previous != nil {
		f["previous"] = StringValue(*e.Previous)
	}
	return f
}

// Category groups indicators for display.
type Category string

const (
	CategoryInterestRate Category = "interest_rate"
	CategoryExchangeRate Category = "exchange_rate"
	CategoryPriceIndex   Category = "price_index"
	CategoryGrowth       Category = "growth"
)

// Indicator is the latest observation of one catalog entry.
type Indicator struct {
	ID         string // Fixed slug from the catalog, e.g. "base_rate"
	Name       string
	Value      float64
	ChangeRate float64 // Latest minus previous observation; 0 with fewer than two
	Unit       string
	Category   Category
	Source     string
	StatCode   string
	ItemCode   string
	CapturedAt time.Time
}

func (i *Indicator) RecordID() string { return i.ID }

func (i *Indicator) Fields() Fields {
	return Fields{
		"id":          StringValue(i.ID),
		"name":        StringValue(i.Name),
		"value":       FloatValue(i.Value),
		"change_rate": FloatValue(i.ChangeRate),
		"unit":        StringValue(i.Unit),
		"type":        StringValue(string(i.Category)),
		"source":      StringValue(i.Source),
		"stat_code":   StringValue(i.StatCode),
		"item_code":   StringValue(i.ItemCode),
		"captured_at": TimeValue(i.CapturedAt),
	}
}

// Records converts a typed slice into the Record interface.
func Records[T Record](items []T) []Record {
	out := make([]Record, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}
