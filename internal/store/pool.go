package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PoolStore persists pooled passages in SQLite so they survive restarts.
type PoolStore struct {
	s   *Store
	now func() time.Time
}

// Pool returns the passage pool view of the store.
func (s *Store) Pool() *PoolStore {
	return &PoolStore{s: s, now: time.Now}
}

// Take removes and returns the oldest passage stored under key.
func (p *PoolStore) Take(ctx context.Context, key string) (string, bool, error) {
	tx, err := p.s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", false, fmt.Errorf("failed to begin pool take: %w", err)
	}
	defer rollback(tx)

	var id int64
	var text string
	err = tx.QueryRowContext(ctx,
		`SELECT id, text FROM pool_entries WHERE pool_key = ? ORDER BY id ASC LIMIT 1`, key,
	).Scan(&id, &text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read pool entry: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM pool_entries WHERE id = ?`, id); err != nil {
		return "", false, fmt.Errorf("failed to delete pool entry: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", false, fmt.Errorf("failed to commit pool take: %w", err)
	}
	return text, true, nil
}

// Put appends passages under key in order.
func (p *PoolStore) Put(ctx context.Context, key string, texts []string) error {
	if len(texts) == 0 {
		return nil
	}
	tx, err := p.s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin pool put: %w", err)
	}
	defer rollback(tx)

	createdAt := p.now().UTC().Format(timeLayout)
	for _, text := range texts {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO pool_entries (pool_key, text, created_at) VALUES (?, ?, ?)`,
			key, text, createdAt,
		); err != nil {
			return fmt.Errorf("failed to insert pool entry: %w", err)
		}
	}
	return tx.Commit()
}

// Remaining counts passages stored under key.
func (p *PoolStore) Remaining(ctx context.Context, key string) (int, error) {
	var n int
	err := p.s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pool_entries WHERE pool_key = ?`, key).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count pool entries: %w", err)
	}
	return n, nil
}

// Expire drops passages created before cutoff and reports how many were removed.
func (p *PoolStore) Expire(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := p.s.db.ExecContext(ctx,
		`DELETE FROM pool_entries WHERE created_at < ?`, cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("failed to expire pool entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
