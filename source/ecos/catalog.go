package ecos

import (
	"fmt"
	"time"

	"github.com/poiesic/marketfeed/core"
)

// Cycle is an ECOS observation frequency.
type Cycle string

const (
	CycleDaily     Cycle = "D"
	CycleMonthly   Cycle = "M"
	CycleQuarterly Cycle = "Q"
	CycleAnnual    Cycle = "A"
)

// Spec identifies one statistic series to track.
type Spec struct {
	ID       string        `yaml:"id"`
	Name     string        `yaml:"name"`
	StatCode string        `yaml:"stat_code"`
	ItemCode string        `yaml:"item_code"`
	Cycle    Cycle         `yaml:"cycle"`
	Unit     string        `yaml:"unit"`
	Category core.Category `yaml:"type"`
}

// DefaultCatalog lists the tracked Bank of Korea series.
var DefaultCatalog = []Spec{
	{ID: "base_rate", Name: "기준금리", StatCode: "722Y001", ItemCode: "0101000", Cycle: CycleMonthly, Unit: "%", Category: core.CategoryInterestRate},
	{ID: "treasury_3y", Name: "국고채 3년", StatCode: "817Y002", ItemCode: "010200001", Cycle: CycleDaily, Unit: "%", Category: core.CategoryInterestRate},
	{ID: "treasury_10y", Name: "국고채 10년", StatCode: "817Y002", ItemCode: "010210000", Cycle: CycleDaily, Unit: "%", Category: core.CategoryInterestRate},
	{ID: "cd_91d", Name: "CD 91일", StatCode: "817Y002", ItemCode: "010502000", Cycle: CycleDaily, Unit: "%", Category: core.CategoryInterestRate},
	{ID: "usd_krw", Name: "원/달러", StatCode: "731Y001", ItemCode: "0000001", Cycle: CycleDaily, Unit: "원", Category: core.CategoryExchangeRate},
	{ID: "jpy_krw", Name: "원/엔(100)", StatCode: "731Y001", ItemCode: "0000002", Cycle: CycleDaily, Unit: "원", Category: core.CategoryExchangeRate},
	{ID: "eur_krw", Name: "원/유로", StatCode: "731Y001", ItemCode: "0000003", Cycle: CycleDaily, Unit: "원", Category: core.CategoryExchangeRate},
}

// Validate checks that a spec can be queried.
func (s Spec) Validate() error {
	if s.ID == "" || s.StatCode == "" || s.ItemCode == "" {
		return fmt.Errorf("%w: id, stat_code and item_code are required", ErrInvalidSpec)
	}
	switch s.Cycle {
	case CycleDaily, CycleMonthly, CycleQuarterly, CycleAnnual:
		return nil
	}
	return fmt.Errorf("%w: %s: unknown cycle %q", ErrInvalidSpec, s.ID, s.Cycle)
}

// Window returns the trailing query window for a cycle, formatted the way
// ECOS expects dates for that cycle.
func Window(cycle Cycle, now time.Time) (start, end string) {
	switch cycle {
	case CycleMonthly:
		return formatPeriod(cycle, now.AddDate(0, 0, -365)), formatPeriod(cycle, now)
	case CycleQuarterly:
		return formatPeriod(cycle, now.AddDate(0, 0, -730)), formatPeriod(cycle, now)
	case CycleAnnual:
		return formatPeriod(cycle, now.AddDate(-5, 0, 0)), formatPeriod(cycle, now)
	default:
		return formatPeriod(cycle, now.AddDate(0, 0, -10)), formatPeriod(cycle, now)
	}
}

func formatPeriod(cycle Cycle, t time.Time) string {
	switch cycle {
	case CycleMonthly:
		return t.Format("200601")
	case CycleQuarterly:
		return fmt.Sprintf("%dQ%d", t.Year(), (int(t.Month())-1)/3+1)
	case CycleAnnual:
		return t.Format("2006")
	default:
		return t.Format("20060102")
	}
}
