package pool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Provider is a text generation backend.
type Provider interface {
	// Generate returns the raw model output for prompt.
	Generate(ctx context.Context, prompt string) (string, error)
	// Name identifies the backend in logs (e.g. the model id).
	Name() string
}

// Chain tries providers in order and returns the first batch that parses.
type Chain struct {
	providers []Provider
	timeout   time.Duration
	logger    *zap.Logger
}

// NewChain builds an ordered fallback chain. timeout bounds each attempt; 0 disables it.
func NewChain(logger *zap.Logger, timeout time.Duration, providers ...Provider) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{providers: providers, timeout: timeout, logger: logger}
}

// Len returns the number of providers.
func (c *Chain) Len() int {
	return len(c.providers)
}

// GenerateBatch asks each provider in turn for a batch and returns the parsed
// passages of the first success. The last error is returned when all fail.
func (c *Chain) GenerateBatch(ctx context.Context, req Request) ([]string, error) {
	if len(c.providers) == 0 {
		return nil, ErrUnavailable
	}
	prompt := BuildPrompt(req)
	var errs []error
	for i, p := range c.providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		passages, err := c.attempt(ctx, p, prompt)
		if err == nil {
			if i > 0 {
				c.logger.Info("fallback provider produced batch",
					zap.String("provider", p.Name()),
					zap.Int("passages", len(passages)),
				)
			}
			return passages, nil
		}
		c.logger.Warn("provider failed",
			zap.String("provider", p.Name()),
			zap.Error(err),
		)
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
	}
	return nil, errors.Join(errs...)
}

func (c *Chain) attempt(ctx context.Context, p Provider, prompt string) ([]string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	raw, err := p.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return ParseBatch(raw)
}
