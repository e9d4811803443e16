package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/poiesic/marketfeed/core"
	"github.com/poiesic/marketfeed/ingestion"
)

// writeTable prints rows as a pipe table. Widths are measured in display
// cells so Korean text lines up.
func writeTable(w io.Writer, header []string, rows [][]string) {
	widths := make([]int, len(header))
	for _, row := range append([][]string{header}, rows...) {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], runewidth.StringWidth(row[i]))
		}
	}

	line := func(cells []string) {
		var sb strings.Builder
		sb.WriteString("|")
		for i, width := range widths {
			content := ""
			if i < len(cells) {
				content = cells[i]
			}
			sb.WriteString(" ")
			sb.WriteString(runewidth.FillRight(content, width))
			sb.WriteString(" |")
		}
		fmt.Fprintln(w, sb.String())
	}

	line(header)
	sep := make([]string, len(widths))
	for i, width := range widths {
		sep[i] = strings.Repeat("-", width)
	}
	line(sep)
	for _, row := range rows {
		line(row)
	}
}

func writeSummary(w io.Writer, summary ingestion.Summary) {
	fmt.Fprintf(w, "run %s (%s)\n", summary.RunID, summary.Finished.Sub(summary.Started).Round(time.Millisecond))

	header := []string{"phase", "state", "fetched", "new", "enriched", "fallback", "written", "failed", "skipped", "error"}
	rows := make([][]string, 0, len(summary.Phases))
	for _, p := range summary.Phases {
		errText := ""
		if p.Err != nil {
			errText = runewidth.Truncate(strings.ReplaceAll(p.Err.Error(), "\n", "; "), 60, "...")
		}
		rows = append(rows, []string{
			string(p.Phase), p.State.String(),
			strconv.Itoa(p.Fetched), strconv.Itoa(p.New), strconv.Itoa(p.Enriched), strconv.Itoa(p.Fallback),
			strconv.Itoa(p.Written), strconv.Itoa(p.Failed), strconv.Itoa(p.Skipped), errText,
		})
	}
	writeTable(w, header, rows)
}

func writeDocument(w io.Writer, fields core.Fields) {
	rows := make([][]string, 0, len(fields))
	for _, key := range fields.Keys() {
		rows = append(rows, []string{key, formatValue(fields[key])})
	}
	writeTable(w, []string{"field", "value"}, rows)
}

func formatValue(v core.Value) string {
	switch v.Kind {
	case core.KindString:
		return strings.ReplaceAll(v.Str, "\n", " ")
	case core.KindInt:
		return strconv.FormatInt(v.Int, 10)
	case core.KindFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case core.KindBool:
		return strconv.FormatBool(v.Bool)
	case core.KindTime:
		return v.Time.Format(time.RFC3339)
	case core.KindStrings:
		return strings.Join(v.Strings, ", ")
	}
	return ""
}
