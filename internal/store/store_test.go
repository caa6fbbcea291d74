package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/typer/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "typer.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func insertSession(t *testing.T, st *Store, ended time.Time, wpm int, keys []model.CharStats) int64 {
	t.Helper()
	id, err := st.InsertSession(context.Background(), model.SessionStats{
		UUID:       "uuid",
		StartedAt:  ended.Add(-30 * time.Second),
		EndedAt:    ended,
		TestType:   model.TestTime,
		Category:   model.CategoryCommon,
		Words:      200,
		TimeLimit:  30,
		WPM:        wpm,
		Accuracy:   95,
		Correct:    100,
		Errors:     5,
		DurationMs: 30000,
	}, keys)
	require.NoError(t, err)
	return id
}

func TestSessionsRoundTripInOrder(t *testing.T) {
	st := openTestStore(t)
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	// Whole-second and fractional timestamps must still sort chronologically.
	first := insertSession(t, st, base, 40, nil)
	second := insertSession(t, st, base.Add(500*time.Millisecond), 50, nil)
	third := insertSession(t, st, base.Add(2*time.Second), 60, nil)

	sessions, err := st.ListSessions(context.Background(), model.StatsConfig{})
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, []int64{first, second, third}, []int64{sessions[0].SessionID, sessions[1].SessionID, sessions[2].SessionID})
	assert.Equal(t, 60, sessions[2].WPM)
	assert.True(t, sessions[0].EndedAt.Equal(base))

	since := base.Add(time.Second)
	sessions, err = st.ListSessions(context.Background(), model.StatsConfig{Since: &since})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, third, sessions[0].SessionID)
}

func TestCharAggregates(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	a := insertSession(t, st, base, 40, []model.CharStats{
		{Char: "a", Total: 5, Errors: 1, LatencySumMs: 500, LatencyCount: 4},
		{Char: "b", Total: 3},
	})
	b := insertSession(t, st, base.Add(time.Minute), 40, []model.CharStats{
		{Char: "a", Total: 5, Errors: 2, LatencySumMs: 300, LatencyCount: 3},
	})

	aggs, err := st.ListCharAggregatesForSessions(ctx, []int64{a, b})
	require.NoError(t, err)
	assert.Equal(t, []model.CharAggregate{
		{Char: "a", Total: 10, Errors: 3, LatencySumMs: 800, LatencyCount: 7},
		{Char: "b", Total: 3},
	}, aggs)

	weak, err := st.GetWeakChars(ctx, 1)
	require.NoError(t, err)
	require.Len(t, weak, 1)
	assert.Equal(t, 2, weak[0].Errors)

	perSession, err := st.ListCharStatsForSessions(ctx, []int64{a, b}, []string{"b"})
	require.NoError(t, err)
	assert.Len(t, perSession, 1)
	assert.Equal(t, 3, perSession[a]["b"].Total)
}

func TestPoolStoreFIFOAndExpire(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	pool := st.Pool()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	pool.now = func() time.Time { return now }

	require.NoError(t, pool.Put(ctx, "50-general-casual", []string{"one", "two"}))
	now = now.Add(48 * time.Hour)
	require.NoError(t, pool.Put(ctx, "50-general-casual", []string{"three"}))

	n, err := pool.Remaining(ctx, "50-general-casual")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	text, ok, err := pool.Take(ctx, "50-general-casual")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "one", text)

	removed, err := pool.Expire(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	text, ok, err = pool.Take(ctx, "50-general-casual")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "three", text)

	_, ok, err = pool.Take(ctx, "50-general-casual")
	require.NoError(t, err)
	assert.False(t, ok)
}
