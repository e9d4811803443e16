package calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/poiesic/marketfeed/core"
	"github.com/poiesic/marketfeed/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seoul = time.FixedZone("KST", 9*60*60)

// 2026-03-04 20:00 UTC is already 2026-03-05 in Seoul.
var crawlTime = time.Date(2026, 3, 4, 20, 0, 0, 0, time.UTC)

const primaryPage = `<html><head><title>Calendar</title></head><body>
<table id="calendar">
  <tr><td colspan="8">2026년 3월 5일 목요일</td></tr>
  <tr data-id="1" data-country="united states" data-importance="3" data-actual="2.9%" data-forecast="3.0%" data-previous="3.1%">
    <td>10:30 AM</td><td>US</td><td><a href="/united-states/inflation">CPI YoY</a></td><td></td>
  </tr>
  <tr data-id="2" data-importance="7">
    <td></td><td>south korea</td><td><a>GDP Growth Rate</a></td><td></td>
  </tr>
  <tr data-id="3" data-importance="abc" data-forecast="">
    <td>08:00</td><td></td><td></td><td></td>
  </tr>
  <tr data-id="4">
    <td>09:00</td><td></td><td>Retail Sales</td><td></td>
  </tr>
</table>
</body></html>`

const fallbackPage = `<html><body>
<table id="calendar">
  <tr><th>Time</th><th>Country</th><th>Event</th></tr>
  <tr><td>07:00</td><td>japan</td><td>Tankan Index</td><td>12</td><td>13</td></tr>
  <tr><td>short</td><td>row</td></tr>
</table>
</body></html>`

func serve(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestAdapter(url string) *Adapter {
	return NewAdapter(source.NewFetcher(),
		WithURL(url),
		WithLocation(seoul),
		WithClock(func() time.Time { return crawlTime }),
	)
}

func TestFetch_PrimaryRows(t *testing.T) {
	srv := serve(t, primaryPage)

	report, err := newTestAdapter(srv.URL).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Records, 3)

	cpi := report.Records[0]
	assert.Equal(t, "2026-03-05", cpi.Date)
	assert.Equal(t, "10:30", cpi.ScheduledTime)
	assert.Equal(t, "United States", cpi.Country)
	assert.Equal(t, "CPI YoY", cpi.Title)
	assert.Equal(t, 3, cpi.Importance)
	require.NotNil(t, cpi.Actual)
	assert.Equal(t, "2.9%", *cpi.Actual)
	assert.Equal(t, "3.0%", *cpi.Forecast)
	assert.Equal(t, "3.1%", *cpi.Previous)
	assert.Equal(t, core.CalendarEventID("2026-03-05", "10:30", "CPI YoY"), cpi.ID)
	assert.NoError(t, core.ValidateCalendarEvent(cpi))

	gdp := report.Records[1]
	assert.Equal(t, AllDay, gdp.ScheduledTime)
	assert.Equal(t, "South Korea", gdp.Country, "country falls back to the second cell")
	assert.Equal(t, 3, gdp.Importance, "importance is clamped")
	assert.Nil(t, gdp.Actual, "absent values stay absent")

	retail := report.Records[2]
	assert.Equal(t, "Retail Sales", retail.Title, "title falls back to the third cell")
	assert.Equal(t, DefaultCountry, retail.Country)
	assert.Equal(t, 1, retail.Importance)

	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "data-id 3", report.Skipped[0].Ref)
	assert.Equal(t, "missing title", report.Skipped[0].Reason)
}

func TestFetch_FallbackRows(t *testing.T) {
	srv := serve(t, fallbackPage)

	report, err := newTestAdapter(srv.URL).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Records, 1)
	assert.Equal(t, "Tankan Index", report.Records[0].Title)
	assert.Equal(t, "Japan", report.Records[0].Country)
	assert.Equal(t, "07:00", report.Records[0].ScheduledTime)
}

func TestFetch_NoRowsIsEmptyNotError(t *testing.T) {
	srv := serve(t, `<html><head><title>Blocked</title></head><body><p>Access denied</p></body></html>`)

	report, err := newTestAdapter(srv.URL).Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Empty())
	assert.Empty(t, report.Skipped)
}

func TestFetch_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestAdapter(srv.URL).Fetch(context.Background())
	assert.ErrorIs(t, err, source.ErrSourceUnavailable)
}

func TestFetch_DateHeaderRowsSkipped(t *testing.T) {
	page := `<table id="calendar">
	  <tr data-id="h"><td>Thursday March 05 2026</td><td></td><td></td><td></td></tr>
	  <tr data-id="e"><td>14:00</td><td>euro area</td><td><a>ECB Rate Decision</a></td><td></td></tr>
	</table>`
	srv := serve(t, page)

	report, err := newTestAdapter(srv.URL).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Records, 1)
	assert.Equal(t, "ECB Rate Decision", report.Records[0].Title)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "date header", report.Skipped[0].Reason)
}

func TestScheduledTime(t *testing.T) {
	assert.Equal(t, AllDay, scheduledTime(""))
	assert.Equal(t, "09:30", scheduledTime("09:30"))
	assert.Equal(t, "10:30", scheduledTime("10:30 AM"))
	assert.Equal(t, "Tenta", scheduledTime("Tentative"))
}
