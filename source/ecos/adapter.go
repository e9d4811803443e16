package ecos

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/marketfeed/core"
	"github.com/poiesic/marketfeed/source"
	"golang.org/x/sync/errgroup"
)

// DefaultSource is recorded on every indicator.
const DefaultSource = "한국은행"

// IndicatorResult is the outcome for one catalog entry.
type IndicatorResult struct {
	Spec      Spec
	Indicator *core.Indicator // nil when Err is set
	Skipped   []source.Skip
	Err       error
}

// IndicatorReport collects the results of one catalog pass, in catalog order.
type IndicatorReport struct {
	Results []IndicatorResult
}

// Indicators returns the successfully built indicators.
func (r IndicatorReport) Indicators() []*core.Indicator {
	out := make([]*core.Indicator, 0, len(r.Results))
	for _, res := range r.Results {
		if res.Err == nil && res.Indicator != nil {
			out = append(out, res.Indicator)
		}
	}
	return out
}

// Failed returns how many catalog entries could not be fetched.
func (r IndicatorReport) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

// Skipped returns the number of unparseable rows across all entries.
func (r IndicatorReport) Skipped() int {
	n := 0
	for _, res := range r.Results {
		n += len(res.Skipped)
	}
	return n
}

// Err joins the per-indicator errors.
func (r IndicatorReport) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Spec.ID, res.Err))
		}
	}
	return errors.Join(errs...)
}

// Adapter turns catalog entries into indicators.
type Adapter struct {
	client      *Client
	catalog     []Spec
	sourceName  string
	concurrency int
	now         func() time.Time
	logger      *slog.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithCatalog replaces the default catalog.
func WithCatalog(catalog []Spec) Option {
	return func(a *Adapter) {
		if len(catalog) > 0 {
			a.catalog = catalog
		}
	}
}

// WithConcurrency bounds simultaneous series requests.
func WithConcurrency(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithClock overrides the clock used for windows and capture stamps.
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
			a.logger = logger.With("component", "ecos")
		}
	}
}

// NewAdapter creates an indicator adapter over client.
func NewAdapter(client *Client, opts ...Option) *Adapter {
	a := &Adapter{
		client:      client,
		catalog:     DefaultCatalog,
		sourceName:  DefaultSource,
		concurrency: 2,
		now:         time.Now,
		logger:      slog.Default().With("component", "ecos"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Catalog returns the configured catalog.
func (a *Adapter) Catalog() []Spec {
	return a.catalog
}

// FetchAll queries every catalog entry. Entries are independent: one failure
// is recorded in its result and the rest continue. A missing API key fails
// the whole pass with ErrMissingCredential.
func (a *Adapter) FetchAll(ctx context.Context) (IndicatorReport, error) {
	if a.client == nil || !a.client.HasCredential() {
		return IndicatorReport{}, ErrMissingCredential
	}

	now := a.now()
	report := IndicatorReport{Results: make([]IndicatorResult, len(a.catalog))}

	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, spec := range a.catalog {
		g.Go(func() error {
			report.Results[i] = a.fetchOne(ctx, spec, now)
			return nil
		})
	}
	_ = g.Wait()

	a.logger.Info("fetched indicators", "requested", len(a.catalog),
		"succeeded", len(report.Indicators()), "failed", report.Failed())
	return report, nil
}

func (a *Adapter) fetchOne(ctx context.Context, spec Spec, now time.Time) IndicatorResult {
	res := IndicatorResult{Spec: spec}
	if err := spec.Validate(); err != nil {
		res.Err = err
		return res
	}

	obs, err := a.client.Observations(ctx, spec, now)
	res.Skipped = obs.Skipped
	if err != nil {
		a.logger.Warn("indicator failed", "indicator", spec.ID, "err", err)
		res.Err = err
		return res
	}

	value, change, ok := Latest(obs.Records)
	if !ok {
		res.Err = ErrNoObservations
		a.logger.Warn("indicator has no observations", "indicator", spec.ID)
		return res
	}

	res.Indicator = &core.Indicator{
		ID:         spec.ID,
		Name:       spec.Name,
		Value:      value.InexactFloat64(),
		ChangeRate: change.InexactFloat64(),
		Unit:       spec.Unit,
		Category:   spec.Category,
		Source:     a.sourceName,
		StatCode:   spec.StatCode,
		ItemCode:   spec.ItemCode,
		CapturedAt: now.UTC(),
	}
	a.logger.Debug("indicator", "indicator", spec.ID, "value", value.String(), "change", change.StringFixed(2))
	return res
}
