package ecos

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/marketfeed/core"
	"github.com/poiesic/marketfeed/source"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)

func rowsJSON(pairs ...string) string {
	rows := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		rows = append(rows, fmt.Sprintf(`{"STAT_CODE":"731Y001","TIME":%q,"DATA_VALUE":%q}`, pairs[i], pairs[i+1]))
	}
	return `{"StatisticSearch":{"list_total_count":` + fmt.Sprint(len(rows)) + `,"row":[` + strings.Join(rows, ",") + `]}}`
}

// ecosServer answers by item code, the last path segment.
func ecosServer(t *testing.T, byItem map[string]string) (*httptest.Server, *[]string) {
	t.Helper()
	var mu sync.Mutex
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()

		segs := strings.Split(r.URL.Path, "/")
		body, ok := byItem[segs[len(segs)-1]]
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &paths
}

func newTestClient(baseURL string) *Client {
	return NewClient(source.NewFetcher(), "KEY", WithBaseURL(baseURL))
}

func TestWindow(t *testing.T) {
	tests := []struct {
		cycle      Cycle
		start, end string
	}{
		{CycleDaily, "20260222", "20260304"},
		{CycleMonthly, "202503", "202603"},
		{CycleQuarterly, "2024Q1", "2026Q1"},
		{CycleAnnual, "2021", "2026"},
	}
	for _, tt := range tests {
		t.Run(string(tt.cycle), func(t *testing.T) {
			start, end := Window(tt.cycle, fixedNow)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestLatest(t *testing.T) {
	d := decimal.RequireFromString

	_, _, ok := Latest(nil)
	assert.False(t, ok)

	value, change, ok := Latest([]Observation{{Time: "20260303", Value: d("1450.5")}})
	require.True(t, ok)
	assert.True(t, value.Equal(d("1450.5")))
	assert.True(t, change.IsZero())

	value, change, ok = Latest([]Observation{
		{Time: "20260302", Value: d("1440.1")},
		{Time: "20260304", Value: d("1452.3")},
		{Time: "20260303", Value: d("1450.0")},
	})
	require.True(t, ok)
	assert.True(t, value.Equal(d("1452.3")))
	assert.True(t, change.Equal(d("2.3")), "change is exact: %s", change)
}

func TestObservations_RequestShape(t *testing.T) {
	srv, paths := ecosServer(t, map[string]string{"0000001": rowsJSON("20260303", "1450.0")})
	spec := DefaultCatalog[4] // usd_krw

	report, err := newTestClient(srv.URL).Observations(context.Background(), spec, fixedNow)
	require.NoError(t, err)
	require.Len(t, report.Records, 1)
	require.Len(t, *paths, 1)
	assert.Equal(t, "/KEY/json/kr/1/50/731Y001/D/20260222/20260304/0000001", (*paths)[0])
}

func TestObservations_ResultCodes(t *testing.T) {
	srv, _ := ecosServer(t, map[string]string{
		"nodata": `{"RESULT":{"CODE":"INFO-200","MESSAGE":"해당하는 데이터가 없습니다."}}`,
		"badkey": `{"RESULT":{"CODE":"INFO-100","MESSAGE":"인증키가 유효하지 않습니다."}}`,
		"junk":   `<html>`,
		"nobody": `{}`,
	})
	client := newTestClient(srv.URL)
	spec := func(item string) Spec {
		return Spec{ID: item, StatCode: "X", ItemCode: item, Cycle: CycleDaily}
	}

	report, err := client.Observations(context.Background(), spec("nodata"), fixedNow)
	require.NoError(t, err)
	assert.True(t, report.Empty())

	_, err = client.Observations(context.Background(), spec("badkey"), fixedNow)
	assert.ErrorIs(t, err, ErrAPI)
	assert.ErrorIs(t, err, source.ErrMalformedPayload)
	assert.Contains(t, err.Error(), "INFO-100")

	_, err = client.Observations(context.Background(), spec("junk"), fixedNow)
	assert.ErrorIs(t, err, source.ErrMalformedPayload)

	_, err = client.Observations(context.Background(), spec("nobody"), fixedNow)
	assert.ErrorIs(t, err, source.ErrMalformedPayload)
}

func TestObservations_SkipsUnparseableRows(t *testing.T) {
	srv, _ := ecosServer(t, map[string]string{"i": rowsJSON("20260303", "1,450.5", "20260302", "-", "", "1.0")})

	report, err := newTestClient(srv.URL).Observations(context.Background(),
		Spec{ID: "i", StatCode: "X", ItemCode: "i", Cycle: CycleDaily}, fixedNow)
	require.NoError(t, err)
	require.Len(t, report.Records, 1)
	assert.True(t, report.Records[0].Value.Equal(decimal.RequireFromString("1450.5")))
	assert.Len(t, report.Skipped, 2)
}

func TestFetchAll_IsolatesIndicators(t *testing.T) {
	srv, _ := ecosServer(t, map[string]string{
		"0101000":   rowsJSON("202602", "2.75", "202601", "3.00"),
		"0000001":   rowsJSON("20260303", "1450.0", "20260304", "1452.5"),
		"010200001": `{"RESULT":{"CODE":"INFO-200","MESSAGE":"no data"}}`,
		// every other item code answers 500
	})
	adapter := NewAdapter(newTestClient(srv.URL), WithClock(func() time.Time { return fixedNow }))

	report, err := adapter.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Results, len(DefaultCatalog))

	indicators := report.Indicators()
	require.Len(t, indicators, 2)
	assert.Equal(t, len(DefaultCatalog)-2, report.Failed())
	assert.Error(t, report.Err())

	base := indicators[0]
	assert.Equal(t, "base_rate", base.ID)
	assert.Equal(t, 2.75, base.Value)
	assert.InDelta(t, -0.25, base.ChangeRate, 1e-9)
	assert.Equal(t, "%", base.Unit)
	assert.Equal(t, core.CategoryInterestRate, base.Category)
	assert.Equal(t, DefaultSource, base.Source)
	assert.True(t, base.CapturedAt.Equal(fixedNow))
	assert.NoError(t, core.ValidateIndicator(base))

	usd := indicators[1]
	assert.Equal(t, "usd_krw", usd.ID)
	assert.Equal(t, 1452.5, usd.Value)
	assert.InDelta(t, 2.5, usd.ChangeRate, 1e-9)

	assert.ErrorIs(t, report.Results[1].Err, ErrNoObservations, "treasury_3y had no data")
}

func TestFetchAll_MissingCredential(t *testing.T) {
	adapter := NewAdapter(NewClient(nil, "  "))
	_, err := adapter.FetchAll(context.Background())
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestSpecValidate(t *testing.T) {
	for _, s := range DefaultCatalog {
		assert.NoError(t, s.Validate(), s.ID)
	}
	assert.ErrorIs(t, Spec{ID: "x", StatCode: "s", ItemCode: "i", Cycle: "W"}.Validate(), ErrInvalidSpec)
	assert.ErrorIs(t, Spec{ID: "x"}.Validate(), ErrInvalidSpec)
}
