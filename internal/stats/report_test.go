package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/typer/internal/model"
	"github.com/verte-zerg/typer/internal/store"
)

func TestBuildReport(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "typer.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	var ids []int64
	for i := 0; i < 3; i++ {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		end := start.Add(30 * time.Second)
		session := model.SessionStats{
			UUID:       "s",
			StartedAt:  start,
			EndedAt:    end,
			TestType:   model.TestWords,
			Category:   model.CategoryCommon,
			Words:      25,
			WPM:        40 + i*10,
			Accuracy:   90,
			Correct:    100,
			Errors:     10,
			DurationMs: end.Sub(start).Milliseconds(),
		}
		keys := []model.CharStats{
			{Char: "a", Total: 5},
			{Char: "b", Total: 5, Errors: 1},
		}
		id, err := st.InsertSession(ctx, session, keys)
		if err != nil {
			t.Fatalf("insert session: %v", err)
		}
		ids = append(ids, id)
	}

	report, err := BuildReport(ctx, st, model.StatsConfig{Last: 2, Chars: "b, space"})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(report.Sessions))
	}
	if report.Sessions[0].SessionID != ids[1] || report.Sessions[1].SessionID != ids[2] {
		t.Fatalf("unexpected session ids: %+v", report.Sessions)
	}
	if len(report.CharAggs) != 2 || report.CharAggs[1].Errors != 2 {
		t.Fatalf("unexpected key aggregates: %+v", report.CharAggs)
	}
	if len(report.Chars) != 2 || report.Chars[1] != " " {
		t.Fatalf("unexpected chars: %q", report.Chars)
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, 80); err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"Sessions: 2", "Best WPM: 60", "Per-Key", "Key b"} {
		if !bytes.Contains(buf.Bytes(), []byte(want)) {
			t.Fatalf("expected %q in output:\n%s", want, buf.String())
		}
	}
}
