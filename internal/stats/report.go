package stats

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/verte-zerg/typer/internal/model"
	"github.com/verte-zerg/typer/internal/store"
)

// DefaultTrendWindow is the moving-average window for trend lines.
const DefaultTrendWindow = 5

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions   []model.SessionAggregate
	CharAggs   []model.CharAggregate
	Chars      []string
	PerSession map[int64]map[string]model.CharAggregate
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	sessions, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list sessions: %w", err)
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}

	ids := sessionIDs(sessions)
	aggs, err := st.ListCharAggregatesForSessions(ctx, ids)
	if err != nil {
		return Report{}, fmt.Errorf("failed to aggregate key stats: %w", err)
	}
	chars := ParseChars(cfg.Chars)
	if len(chars) == 0 {
		chars = TopCharsByFrequency(aggs, 3)
	}
	perSession, err := st.ListCharStatsForSessions(ctx, ids, chars)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load per-session key stats: %w", err)
	}
	return Report{
		Sessions:   sessions,
		CharAggs:   aggs,
		Chars:      chars,
		PerSession: perSession,
	}, nil
}

// Render prints the full report.
func (r Report) Render(w io.Writer, totalWidth int) error {
	if err := RenderSummary(w, r.Sessions); err != nil {
		return err
	}
	if len(r.Sessions) == 0 {
		return nil
	}
	if err := RenderSessionTrend(w, r.Sessions, DefaultTrendWindow, totalWidth); err != nil {
		return err
	}
	if err := RenderCharTable(w, r.CharAggs); err != nil {
		return err
	}
	return RenderCharTrend(w, r.Sessions, r.PerSession, r.Chars, DefaultTrendWindow, totalWidth)
}

// ParseChars splits a comma separated key list; "space" names the space bar.
func ParseChars(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	var out []string
	seen := map[string]bool{}
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "space" {
			part = " "
		}
		if part == "" || seen[part] {
			continue
		}
		seen[part] = true
		out = append(out, part)
	}
	return out
}

func sessionIDs(sessions []model.SessionAggregate) []int64 {
	ids := make([]int64, len(sessions))
	for i, s := range sessions {
		ids[i] = s.SessionID
	}
	return ids
}
