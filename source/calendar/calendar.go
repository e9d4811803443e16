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

// Package calendar scrapes a live HTML economic calendar into calendar events.
package calendar

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/poiesic/marketfeed/core"
	"github.com/poiesic/marketfeed/source"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// DefaultURL is the calendar page scraped when none is configured.
	DefaultURL = "https://ko.tradingeconomics.com/calendar"

	// AllDay is the scheduled time of events without a time cell.
	AllDay = "All Day"

	// DefaultCountry is used when a row names no country.
	DefaultCountry = "Global"

	primarySelector  = "tr[data-id]"
	minFallbackCells = 3
)

var (
	yearPattern  = regexp.MustCompile(`\b20\d{2}\b`)
	monthPattern = regexp.MustCompile(`월|(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\b`)
)

// Adapter fetches and parses the calendar page.
type Adapter struct {
	fetcher  *source.Fetcher
	url      string
	location *time.Location
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithURL sets the calendar page URL.
func WithURL(url string) Option {
	return func(a *Adapter) {
		if url != "" {
			a.url = url
		}
	}
}

// WithLocation sets the time zone that defines "today" for crawled events.
func WithLocation(loc *time.Location) Option {
	return func(a *Adapter) {
		if loc != nil {
			a.location = loc
		}
	}
}

// WithClock overrides the crawl clock.
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
			a.logger = logger.With("component", "calendar")
		}
	}
}

// NewAdapter creates a calendar adapter. A nil fetcher uses source defaults.
func NewAdapter(fetcher *source.Fetcher, opts ...Option) *Adapter {
	if fetcher == nil {
		fetcher = source.NewFetcher()
	}
	a := &Adapter{
		fetcher:  fetcher,
		url:      DefaultURL,
		location: time.Local,
		now:      time.Now,
		logger:   slog.Default().With("component", "calendar"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Fetch downloads the calendar page and maps its rows to events dated today.
// A page without recognizable rows yields an empty report, not an error.
func (a *Adapter) Fetch(ctx context.Context) (source.Report[*core.CalendarEvent], error) {
	body, err := a.fetcher.Get(ctx, a.url)
	if err != nil {
		return source.Report[*core.CalendarEvent]{}, fmt.Errorf("calendar: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return source.Report[*core.CalendarEvent]{}, fmt.Errorf("calendar: %w: %w", source.ErrMalformedPayload, err)
	}

	today := a.now().In(a.location).Format(time.DateOnly)
	report := a.parse(doc, today)
	if report.Empty() {
		a.logger.Warn("no calendar events found", "url", a.url, "page_title", strings.TrimSpace(doc.Find("title").First().Text()))
	}
	return report, nil
}

func (a *Adapter) parse(doc *goquery.Document, date string) source.Report[*core.CalendarEvent] {
	scope := doc.Find("#calendar").First()
	if scope.Length() == 0 {
		a.logger.Debug("no #calendar table, scanning whole document")
		scope = doc.Selection
	}

	rows := scope.Find(primarySelector)
	if rows.Length() == 0 {
		a.logger.Warn("no data-id rows, falling back to content rows")
		rows = scope.Find("tr").FilterFunction(func(_ int, row *goquery.Selection) bool {
			return row.Find("td").Length() > minFallbackCells
		})
	}

	var report source.Report[*core.CalendarEvent]
	rows.Each(func(i int, row *goquery.Selection) {
		report.Add(mapRow(row, i, date))
	})

	a.logger.Debug("parsed calendar", "rows", rows.Length(), "events", len(report.Records), "skipped", len(report.Skipped))
	return report
}

func mapRow(row *goquery.Selection, pos int, date string) source.Outcome[*core.CalendarEvent] {
	ref := "row " + strconv.Itoa(pos)
	if id, ok := row.Attr("data-id"); ok && id != "" {
		ref = "data-id " + id
	}

	cells := row.Find("td")
	if cells.Length() == 0 {
		return source.Skipped[*core.CalendarEvent](ref, "no cells")
	}

	timeText := cellText(cells, 0)
	if isDateHeader(timeText) {
		return source.Skipped[*core.CalendarEvent](ref, "date header")
	}

	title := strings.TrimSpace(row.Find("a").First().Text())
	if title == "" {
		title = cellText(cells, 2)
	}
	if title == "" {
		return source.Skipped[*core.CalendarEvent](ref, "missing title")
	}

	event := core.NewCalendarEvent(date, scheduledTime(timeText), country(row, cells), title, importance(row))
	event.Actual = attr(row, "data-actual")
	event.Forecast = attr(row, "data-forecast")
	event.Previous = attr(row, "data-previous")
	return source.Parsed(event)
}

func cellText(cells *goquery.Selection, i int) string {
	if cells.Length() <= i {
		return ""
	}
	return strings.TrimSpace(cells.Eq(i).Text())
}

func isDateHeader(s string) bool {
	return yearPattern.MatchString(s) && monthPattern.MatchString(s)
}

func scheduledTime(s string) string {
	if s == "" {
		return AllDay
	}
	runes := []rune(s)
	if len(runes) > 5 {
		runes = runes[:5]
	}
	return string(runes)
}

func country(row *goquery.Selection, cells *goquery.Selection) string {
	raw := strings.TrimSpace(row.AttrOr("data-country", ""))
	if raw == "" {
		raw = cellText(cells, 1)
	}
	if raw == "" {
		return DefaultCountry
	}
	return cases.Title(language.Und).String(raw)
}

func importance(row *goquery.Selection) int {
	n, err := strconv.Atoi(strings.TrimSpace(row.AttrOr("data-importance", "")))
	if err != nil {
		return core.MinImportance
	}
	return core.ClampImportance(n)
}

func attr(row *goquery.Selection, name string) *string {
	v := strings.TrimSpace(row.AttrOr(name, ""))
	if v == "" {
		return nil
	}
	return &v
}
