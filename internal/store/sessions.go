package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/verte-zerg/typer/internal/model"
)

// InsertSession stores a completed session and its per-key stats.
func (s *Store) InsertSession(ctx context.Context, stats model.SessionStats, keys []model.CharStats) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin session insert: %w", err)
	}
	defer rollback(tx)

	res, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (uuid, started_at, ended_at, mode, category, words, time_limit, wpm, accuracy, correct, errors, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stats.UUID,
		stats.StartedAt.UTC().Format(timeLayout),
		stats.EndedAt.UTC().Format(timeLayout),
		string(stats.TestType),
		string(stats.Category),
		stats.Words,
		stats.TimeLimit,
		stats.WPM,
		stats.Accuracy,
		stats.Correct,
		stats.Errors,
		stats.DurationMs,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(keys) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO session_key_stats (session_id, char, total, errors, latency_sum_ms, latency_count)
			 VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, ks := range keys {
			if _, err := stmt.ExecContext(ctx, id, ks.Char, ks.Total, ks.Errors, ks.LatencySumMs, ks.LatencyCount); err != nil {
				return 0, fmt.Errorf("failed to insert key stats for %q: %w", ks.Char, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit session: %w", err)
	}
	return id, nil
}

// GetWeakChars aggregates key stats over the most recent sessions.
func (s *Store) GetWeakChars(ctx context.Context, window int) ([]model.CharAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	query := `WITH recent_sessions AS (
		SELECT id FROM sessions
		ORDER BY ended_at DESC
		LIMIT ?
	)
	SELECT ks.char, SUM(ks.total), SUM(ks.errors), SUM(ks.latency_sum_ms), SUM(ks.latency_count)
	FROM session_key_stats ks
	JOIN recent_sessions r ON r.id = ks.session_id
	GROUP BY ks.char`
	return s.queryAggregates(ctx, query, window)
}

// ListSessions returns sessions oldest first, filtered by cfg.Since.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.UTC().Format(timeLayout))
	}
	query := fmt.Sprintf(`SELECT id, ended_at, wpm, accuracy, correct, errors, duration_ms
		FROM sessions
		WHERE %s
		ORDER BY ended_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var endedAt string
		if err := rows.Scan(&agg.SessionID, &endedAt, &agg.WPM, &agg.Accuracy, &agg.Correct, &agg.Errors, &agg.DurationMs); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, endedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse ended_at of session %d: %w", agg.SessionID, err)
		}
		agg.EndedAt = parsed
		sessions = append(sessions, agg)
	}
	return sessions, rows.Err()
}

// ListCharAggregatesForSessions aggregates key stats across sessions.
func (s *Store) ListCharAggregatesForSessions(ctx context.Context, sessionIDs []int64) ([]model.CharAggregate, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	placeholders, args := inArgs(sessionIDs)
	query := fmt.Sprintf(`SELECT char, SUM(total), SUM(errors), SUM(latency_sum_ms), SUM(latency_count)
		FROM session_key_stats
		WHERE session_id IN (%s)
		GROUP BY char
		ORDER BY char`, placeholders)
	return s.queryAggregates(ctx, query, args...)
}

// ListCharStatsForSessions returns per-session stats for selected characters.
func (s *Store) ListCharStatsForSessions(ctx context.Context, sessionIDs []int64, chars []string) (map[int64]map[string]model.CharAggregate, error) {
	result := map[int64]map[string]model.CharAggregate{}
	if len(sessionIDs) == 0 || len(chars) == 0 {
		return result, nil
	}
	idPlaceholders, idArgs := inArgs(sessionIDs)
	charPlaceholders, charArgs := inArgs(chars)
	query := fmt.Sprintf(`SELECT session_id, char, total, errors, latency_sum_ms, latency_count
		FROM session_key_stats
		WHERE session_id IN (%s) AND char IN (%s)`, idPlaceholders, charPlaceholders)
	args := append(idArgs, charArgs...)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	for rows.Next() {
		var sessionID int64
		var agg model.CharAggregate
		if err := rows.Scan(&sessionID, &agg.Char, &agg.Total, &agg.Errors, &agg.LatencySumMs, &agg.LatencyCount); err != nil {
			return nil, err
		}
		perChar := result[sessionID]
		if perChar == nil {
			perChar = map[string]model.CharAggregate{}
			result[sessionID] = perChar
		}
		perChar[agg.Char] = agg
	}
	return result, rows.Err()
}

func (s *Store) queryAggregates(ctx context.Context, query string, args ...any) ([]model.CharAggregate, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var result []model.CharAggregate
	for rows.Next() {
		var agg model.CharAggregate
		if err := rows.Scan(&agg.Char, &agg.Total, &agg.Errors, &agg.LatencySumMs, &agg.LatencyCount); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	return result, rows.Err()
}

// inArgs returns a placeholder list for an IN clause and its arguments.
func inArgs[T any](values []T) (string, []any) {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return strings.TrimSuffix(strings.Repeat("?,", len(values)), ","), args
}
