package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/poiesic/marketfeed/config"
	"github.com/poiesic/marketfeed/core"
	"github.com/poiesic/marketfeed/ingestion"
	"github.com/poiesic/marketfeed/source/rss"
	"github.com/poiesic/marketfeed/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func testApp(out *bytes.Buffer) *cli.App {
	app := newApp()
	app.Writer = out
	app.ExitErrHandler = func(*cli.Context, error) {}
	return app
}

func TestSetupLogger(t *testing.T) {
	t.Run("valid log levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "DEBUG", "WaRn"} {
			t.Run(level, func(t *testing.T) {
				app := &cli.App{
					Name:   "test",
					Flags:  []cli.Flag{&cli.StringFlag{Name: "log-level", Value: "info"}},
					Before: setupLogger,
					Action: func(c *cli.Context) error { return nil },
				}
				require.NoError(t, app.Run([]string{"test", "--log-level", level}))
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		app := &cli.App{
			Name:   "test",
			Flags:  []cli.Flag{&cli.StringFlag{Name: "log-level", Value: "info"}},
			Before: setupLogger,
			Action: func(c *cli.Context) error { return nil },
		}

		err := app.Run([]string{"test", "--log-level", "invalid"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestWriteTable_AlignsWideRunes(t *testing.T) {
	var out bytes.Buffer
	writeTable(&out, []string{"name", "value"}, [][]string{
		{"기준금리", "2.75"},
		{"usd_krw", "1456.3"},
	})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	width := runewidth.StringWidth(lines[0])
	for _, line := range lines {
		assert.Equal(t, width, runewidth.StringWidth(line), line)
	}
}

func TestWriteSummary(t *testing.T) {
	var out bytes.Buffer
	writeSummary(&out, ingestion.Summary{
		RunID: "run-1",
		Phases: []ingestion.PhaseResult{
			{Phase: ingestion.PhaseNews, State: ingestion.StateSucceeded, Fetched: 10, New: 7, Written: 7},
			{Phase: ingestion.PhaseIndicators, State: ingestion.StateFailed, Err: fmt.Errorf("first\nsecond")},
		},
	})

	text := out.String()
	assert.Contains(t, text, "run-1")
	assert.Contains(t, text, "| news ")
	assert.Contains(t, text, "succeeded")
	assert.Contains(t, text, "first; second")
}

func TestFormatValue(t *testing.T) {
	ts := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "a b", formatValue(core.StringValue("a\nb")))
	assert.Equal(t, "7", formatValue(core.IntValue(7)))
	assert.Equal(t, "1456.3", formatValue(core.FloatValue(1456.3)))
	assert.Equal(t, "true", formatValue(core.BoolValue(true)))
	assert.Equal(t, "2026-03-04T09:00:00Z", formatValue(core.TimeValue(ts)))
	assert.Equal(t, "KOSPI, USD/KRW", formatValue(core.StringsValue([]string{"KOSPI", "USD/KRW"})))
}

func TestRunCommand_DryRunNews(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0"?><rss version="2.0"><channel><title>T</title>`+
			`<item><title>Rates hold</title><link>https://news.example.com/1</link></item>`+
			`</channel></rss>`)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.News.Feeds = []rss.FeedSource{{Name: "Test", URL: srv.URL}}
	cfgPath := filepath.Join(t.TempDir(), "marketfeed.yaml")
	require.NoError(t, cfg.Save(cfgPath))

	var out bytes.Buffer
	err := testApp(&out).Run([]string{"marketfeed", "-l", "error", "-c", cfgPath, "run", "--dry-run", "--phase", "news"})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "dry run")
	assert.Contains(t, text, "| news ")
	assert.Contains(t, text, "succeeded")
}

func TestShowCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store")
	store, err := badger.Open(path)
	require.NoError(t, err)
	event := core.NewCalendarEvent("2026-03-04", "21:30", "United States", "Nonfarm Payrolls", 3)
	require.NoError(t, store.Upsert(context.Background(), core.CollectionCalendar, event.ID, event.Fields(), true))
	require.NoError(t, store.Close())

	var out bytes.Buffer
	err = testApp(&out).Run([]string{"marketfeed", "show", "--store", path, core.CollectionCalendar, event.ID})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Nonfarm Payrolls")
	assert.Contains(t, out.String(), "importance")

	err = testApp(&out).Run([]string{"marketfeed", "show", "--store", path, core.CollectionCalendar})
	assert.Error(t, err)
}

func TestInitConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marketfeed.yaml")

	var out bytes.Buffer
	require.NoError(t, testApp(&out).Run([]string{"marketfeed", "init-config", path}))

	_, err := os.Stat(path)
	require.NoError(t, err)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default().News.Feeds, cfg.News.Feeds)
}

func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}
