// Package pool serves pre-generated typing passages, refilling per-key
// batches from an ordered chain of generation providers.
package pool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrUnavailable is returned when no generation provider is configured.
	ErrUnavailable = errors.New("generation backend not configured")
	// ErrEmptyBatch is returned when model output yields no usable passage.
	ErrEmptyBatch = errors.New("failed to parse AI response")
)

const (
	// DefaultRetention bounds how long a pooled passage may be served.
	DefaultRetention = 24 * time.Hour
	// DefaultJanitorInterval is how often expired passages are swept.
	DefaultJanitorInterval = 10 * time.Minute
	// DefaultRefillTimeout bounds a whole batch refill across providers.
	DefaultRefillTimeout = 60 * time.Second
)

// Store holds pooled passages keyed by request.
type Store interface {
	// Take pops the oldest passage under key; ok is false when none is left.
	Take(ctx context.Context, key string) (text string, ok bool, err error)
	// Put appends passages under key.
	Put(ctx context.Context, key string, texts []string) error
	// Remaining counts passages under key.
	Remaining(ctx context.Context, key string) (int, error)
	// Expire drops passages created before cutoff.
	Expire(ctx context.Context, cutoff time.Time) (int, error)
}

// Pool hands out passages from Store and refills it from a provider chain.
type Pool struct {
	store         Store
	chain         *Chain
	logger        *zap.Logger
	retention     time.Duration
	refillTimeout time.Duration
	now           func() time.Time
	group         singleflight.Group
}

// Option configures a Pool.
type Option func(*Pool)

// WithLogger sets the pool logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pool) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithRetention sets how long passages are kept.
func WithRetention(d time.Duration) Option {
	return func(p *Pool) {
		if d > 0 {
			p.retention = d
		}
	}
}

// WithRefillTimeout bounds one batch refill.
func WithRefillTimeout(d time.Duration) Option {
	return func(p *Pool) {
		if d > 0 {
			p.refillTimeout = d
		}
	}
}

// WithClock replaces time.Now for expiry.
func WithClock(now func() time.Time) Option {
	return func(p *Pool) {
		p.now = now
	}
}

// New returns a Pool over store refilled from chain. A nil or empty chain
// leaves the pool unavailable.
func New(store Store, chain *Chain, opts ...Option) *Pool {
	p := &Pool{
		store:         store,
		chain:         chain,
		logger:        zap.NewNop(),
		retention:     DefaultRetention,
		refillTimeout: DefaultRefillTimeout,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Available reports whether a generation backend is configured.
func (p *Pool) Available() bool {
	return p.chain != nil && p.chain.Len() > 0
}

// Next returns one passage for req and the number still pooled under its key.
// An empty pool is refilled with a fresh batch first; concurrent callers for
// the same key share one refill.
func (p *Pool) Next(ctx context.Context, req Request) (string, int, error) {
	if !p.Available() {
		return "", 0, ErrUnavailable
	}
	req = req.Normalize()
	key := req.Key()

	for attempt := 0; attempt < 2; attempt++ {
		text, ok, err := p.store.Take(ctx, key)
		if err != nil {
			return "", 0, fmt.Errorf("failed to take pooled passage: %w", err)
		}
		if ok {
			remaining, err := p.store.Remaining(ctx, key)
			if err != nil {
				return "", 0, fmt.Errorf("failed to count pooled passages: %w", err)
			}
			return text, remaining, nil
		}
		if err := p.refill(ctx, key, req); err != nil {
			return "", 0, err
		}
	}
	// Every refilled passage was taken by concurrent callers before ours.
	return "", 0, fmt.Errorf("pool %q drained during refill: %w", key, ErrEmptyBatch)
}

// refill generates one batch for key. The generation outlives a cancelled
// caller so a shared refill is not lost to the first requester leaving.
func (p *Pool) refill(ctx context.Context, key string, req Request) error {
	ch := p.group.DoChan(key, func() (any, error) {
		gctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.refillTimeout)
		defer cancel()

		start := p.now()
		passages, err := p.chain.GenerateBatch(gctx, req)
		if err != nil {
			return nil, err
		}
		if err := p.store.Put(gctx, key, passages); err != nil {
			return nil, fmt.Errorf("failed to store batch: %w", err)
		}
		p.logger.Info("pool refilled",
			zap.String("key", key),
			zap.Int("passages", len(passages)),
			zap.Duration("took", p.now().Sub(start)),
		)
		return len(passages), nil
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return fmt.Errorf("failed to generate batch: %w", res.Err)
		}
		return nil
	}
}

// Expire removes passages older than the retention window.
func (p *Pool) Expire(ctx context.Context) (int, error) {
	return p.store.Expire(ctx, p.now().Add(-p.retention))
}

// Janitor sweeps expired passages every interval until ctx is done.
func (p *Pool) Janitor(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultJanitorInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := p.Expire(ctx)
			if err != nil {
				p.logger.Warn("pool expiry failed", zap.Error(err))
				continue
			}
			if n > 0 {
				p.logger.Debug("expired pooled passages", zap.Int("count", n))
			}
		}
	}
}
