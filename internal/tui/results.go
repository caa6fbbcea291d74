package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typer/internal/model"
	"github.com/verte-zerg/typer/internal/stats"
)

// result is the summary of a finished test.
type result struct {
	stats    model.Stats
	rating   stats.Rating
	rawWPM   int
	cps      float64
	problems []stats.ProblemKey
}

func newResult(s model.Stats) result {
	return result{
		stats:    s,
		rating:   stats.RateResult(s.WPM, s.Accuracy),
		rawWPM:   stats.RawWPM(s.WPM, s.Accuracy),
		cps:      stats.CharsPerSecond(s.Correct, s.Errors, s.Elapsed),
		problems: stats.ProblemKeys(s.KeyStats, stats.ProblemKeyLimit),
	}
}

func problemTable(problems []stats.ProblemKey) table.Model {
	columns := []table.Column{
		{Title: "Key", Width: 5},
		{Title: "Errors", Width: 7},
		{Title: "Total", Width: 6},
		{Title: "Acc", Width: 5},
	}
	rows := make([]table.Row, 0, len(problems))
	for _, p := range problems {
		acc := 0
		if p.Total > 0 {
			acc = stats.Accuracy(p.Total-p.Errors, p.Errors)
		}
		rows = append(rows, table.Row{
			string(p.Char),
			strconv.Itoa(p.Errors),
			strconv.Itoa(p.Total),
			strconv.Itoa(acc) + "%",
		})
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(len(rows)+1),
		table.WithFocused(false),
	)
	tableStyles := table.DefaultStyles()
	tableStyles.Selected = lipgloss.NewStyle()
	t.SetStyles(tableStyles)
	return t
}

func (r result) view(st styles) string {
	var b strings.Builder
	b.WriteString(st.accent.Render(string(r.rating)))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("%d wpm  %d%% acc\n", r.stats.WPM, r.stats.Accuracy))
	b.WriteString(st.header.Render(fmt.Sprintf(
		"raw %d  ·  %.1f chars/s  ·  %d correct  ·  %d errors  ·  %.1fs",
		r.rawWPM, r.cps, r.stats.Correct, r.stats.Errors, r.stats.Elapsed.Seconds(),
	)))
	b.WriteString("\n\n")
	if len(r.problems) == 0 {
		b.WriteString(st.header.Render("no problem keys"))
		b.WriteString("\n\n")
		b.WriteString(st.footer.Render("tab next test"))
		return b.String()
	}
	b.WriteString("Problem keys\n")
	b.WriteString(problemTable(r.problems).View())
	b.WriteString("\n\n")
	b.WriteString(st.footer.Render("p practice these keys  ·  tab next test"))
	return b.String()
}
