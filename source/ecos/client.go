// Package ecos reads macroeconomic series from the Bank of Korea ECOS
// StatisticSearch API.
package ecos

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/poiesic/marketfeed/source"
	"github.com/shopspring/decimal"
)

const (
	// DefaultBaseURL is the StatisticSearch endpoint.
	DefaultBaseURL = "https://ecos.bok.or.kr/api/StatisticSearch"

	// DefaultMaxRows is the number of rows requested per series.
	DefaultMaxRows = 50

	codeOK     = "INFO-000"
	codeNoData = "INFO-200"
)

// Observation is one dated value of a series.
type Observation struct {
	Time  string // Period as reported by ECOS (YYYYMMDD, YYYYMM, YYYYQn, YYYY)
	Value decimal.Decimal
}

type response struct {
	StatisticSearch *struct {
		Rows []row `json:"row"`
	} `json:"StatisticSearch"`
	Result *result `json:"RESULT"`
}

type result struct {
	Code    string `json:"CODE"`
	Message string `json:"MESSAGE"`
}

type row struct {
	Time      string `json:"TIME"`
	DataValue string `json:"DATA_VALUE"`
}

// Client queries StatisticSearch.
type Client struct {
	fetcher *source.Fetcher
	baseURL string
	apiKey  string
	maxRows int
	logger  *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the endpoint.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimSuffix(u, "/")
		}
	}
}

// WithMaxRows sets how many rows are requested per series.
func WithMaxRows(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxRows = n
		}
	}
}

// WithClientLogger sets the logger.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger.With("component", "ecos")
		}
	}
}

// NewClient creates a client authenticated with apiKey. A nil fetcher uses source defaults.
func NewClient(fetcher *source.Fetcher, apiKey string, opts ...ClientOption) *Client {
	if fetcher == nil {
		fetcher = source.NewFetcher()
	}
	c := &Client{
		fetcher: fetcher,
		baseURL: DefaultBaseURL,
		apiKey:  strings.TrimSpace(apiKey),
		maxRows: DefaultMaxRows,
		logger:  slog.Default().With("component", "ecos"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasCredential reports whether an API key is configured.
func (c *Client) HasCredential() bool {
	return c.apiKey != ""
}

// Observations fetches the trailing window of a series. An INFO-200
// ("no data") answer is an empty report; any other non-success code is ErrAPI, also matching
// source.ErrMalformedPayload.
func (c *Client) Observations(ctx context.Context, spec Spec, now time.Time) (source.Report[Observation], error) {
	var report source.Report[Observation]
	if !c.HasCredential() {
		return report, ErrMissingCredential
	}

	start, end := Window(spec.Cycle, now)
	body, err := c.fetcher.Get(ctx, c.requestURL(spec, start, end))
	if err != nil {
		return report, err
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return report, fmt.Errorf("%w: %w", source.ErrMalformedPayload, err)
	}

	if resp.Result != nil && resp.Result.Code != codeOK {
		if resp.Result.Code == codeNoData {
			c.logger.Info("no data in window", "indicator", spec.ID, "start", start, "end", end)
			return report, nil
		}
		return report, fmt.Errorf("%w: %w: %s: %s", source.ErrMalformedPayload, ErrAPI, resp.Result.Code, resp.Result.Message)
	}
	if resp.StatisticSearch == nil {
		return report, fmt.Errorf("%w: missing StatisticSearch", source.ErrMalformedPayload)
	}

	for _, r := range resp.StatisticSearch.Rows {
		report.Add(parseRow(r))
	}
	return report, nil
}

func (c *Client) requestURL(spec Spec, start, end string) string {
	parts := []string{
		c.baseURL,
		url.PathEscape(c.apiKey),
		"json", "kr", "1", fmt.Sprint(c.maxRows),
		url.PathEscape(spec.StatCode),
		string(spec.Cycle),
		start, end,
		url.PathEscape(spec.ItemCode),
	}
	return strings.Join(parts, "/")
}

func parseRow(r row) source.Outcome[Observation] {
	t := strings.TrimSpace(r.Time)
	if t == "" {
		return source.Skipped[Observation]("", "missing TIME")
	}
	v, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(r.DataValue), ",", ""))
	if err != nil {
		return source.Skipped[Observation](t, "unparseable DATA_VALUE")
	}
	return source.Parsed(Observation{Time: t, Value: v})
}

// Latest returns the most recent value and its change from the previous
// observation. The change is zero with fewer than two observations.
func Latest(obs []Observation) (value, change decimal.Decimal, ok bool) {
	if len(obs) == 0 {
		return decimal.Zero, decimal.Zero, false
	}
	sorted := slices.Clone(obs)
	slices.SortStableFunc(sorted, func(a, b Observation) int {
		return cmp.Compare(b.Time, a.Time)
	})

	value = sorted[0].Value
	if len(sorted) < 2 {
		return value, decimal.Zero, true
	}
	return value, value.Sub(sorted[1].Value), true
}
