package stats

import (
	"fmt"
	"io"
	"sort"

	"github.com/verte-zerg/typer/internal/model"
)

// RenderSummary prints a summary of stored sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	var totalWPM, totalAcc int
	var totalMs int64
	best := sessions[0]
	for _, s := range sessions {
		totalWPM += s.WPM
		totalAcc += s.Accuracy
		totalMs += s.DurationMs
		if s.WPM > best.WPM {
			best = s
		}
	}
	count := float64(len(sessions))
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", len(sessions)),
		fmt.Sprintf("Avg WPM: %.1f", float64(totalWPM)/count),
		fmt.Sprintf("Best WPM: %d (%s)", best.WPM, best.EndedAt.Local().Format("2006-01-02")),
		fmt.Sprintf("Avg Accuracy: %.1f%%", float64(totalAcc)/count),
		fmt.Sprintf("Time typed: %s", formatDuration(totalMs)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderSessionTrend prints WPM and accuracy sparklines across sessions.
func RenderSessionTrend(w io.Writer, sessions []model.SessionAggregate, window, totalWidth int) error {
	if len(sessions) < 2 {
		return nil
	}
	wpms := make([]float64, len(sessions))
	accs := make([]float64, len(sessions))
	for i, s := range sessions {
		wpms[i] = float64(s.WPM)
		accs[i] = float64(s.Accuracy)
	}
	return RenderTrend(w, "Trend", []TrendLine{
		{Label: "WPM", Values: wpms},
		{Label: "Accuracy", Values: accs},
	}, window, totalWidth)
}

// RenderCharTable prints per-key aggregates, least accurate first.
func RenderCharTable(w io.Writer, aggs []model.CharAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No key stats found.")
		return err
	}
	rows := make([]model.CharAggregate, len(aggs))
	copy(rows, aggs)
	sort.Slice(rows, func(i, j int) bool {
		ai, aj := aggAccuracy(rows[i]), aggAccuracy(rows[j])
		if ai == aj {
			return rows[i].Char < rows[j].Char
		}
		return ai < aj
	})

	if _, err := fmt.Fprintln(w, "Per-Key"); err != nil {
		return err
	}
	headers := []string{"Key", "Accuracy", "Avg Latency (ms)", "Total", "Errors"}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		lat := 0.0
		if r.LatencyCount > 0 {
			lat = float64(r.LatencySumMs) / float64(r.LatencyCount)
		}
		tableRows = append(tableRows, []string{
			charLabel(r.Char),
			fmt.Sprintf("%.2f%%", aggAccuracy(r)*100),
			fmt.Sprintf("%.1f", lat),
			fmt.Sprintf("%d", r.Total),
			fmt.Sprintf("%d", r.Errors),
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true}
	for _, line := range formatTable(headers, tableRows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

// RenderCharTrend prints per-session accuracy sparklines for selected keys.
func RenderCharTrend(w io.Writer, sessions []model.SessionAggregate, perSession map[int64]map[string]model.CharAggregate, chars []string, window, totalWidth int) error {
	if len(chars) == 0 || len(sessions) < 2 {
		return nil
	}
	lines := make([]TrendLine, 0, len(chars))
	for _, ch := range chars {
		values := make([]float64, 0, len(sessions))
		for _, s := range sessions {
			agg, ok := perSession[s.SessionID][ch]
			if !ok || agg.Total == 0 {
				continue
			}
			values = append(values, aggAccuracy(agg)*100)
		}
		lines = append(lines, TrendLine{Label: "Key " + charLabel(ch), Values: values})
	}
	return RenderTrend(w, "Per-Key Accuracy Trend", lines, window, totalWidth)
}

func charLabel(ch string) string {
	if ch == " " {
		return "<space>"
	}
	return ch
}

func formatDuration(ms int64) string {
	secs := ms / 1000
	if secs < 60 {
		return fmt.Sprintf("%ds", secs)
	}
	if secs < 3600 {
		return fmt.Sprintf("%dm%02ds", secs/60, secs%60)
	}
	return fmt.Sprintf("%dh%02dm", secs/3600, (secs%3600)/60)
}
