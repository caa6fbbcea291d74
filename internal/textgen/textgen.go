// Package textgen picks the text source for a test and keeps only the most
// recent request's result.
package textgen

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/typer/internal/generator"
	"github.com/verte-zerg/typer/internal/model"
	"github.com/verte-zerg/typer/internal/pool"
	"github.com/verte-zerg/typer/internal/textproc"
)

var (
	// ErrUnavailable reports an unreachable or unconfigured endpoint.
	ErrUnavailable = errors.New("generation endpoint unavailable")
	// ErrStale is returned when a newer request started before this one finished.
	ErrStale = errors.New("superseded by a newer request")
)

const (
	// TimedStandardWords is the text length requested for timed tests.
	TimedStandardWords = 200
	// MinTimedAIWords is the floor for AI text in timed tests.
	MinTimedAIWords = 40
	aiWordsPerSecond = 3.0

	styleCasual    = "casual"
	styleTechnical = "technical"
)

// AI is the remote generation surface.
type AI interface {
	Available(ctx context.Context) bool
	Generate(ctx context.Context, r pool.Request) (string, int, error)
}

// Orchestrator routes requests to the local generator or the AI endpoint.
type Orchestrator struct {
	standard *generator.Generator
	ai       AI
	proc     *textproc.Processor
	logger   *zap.Logger
	seq      atomic.Uint64
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithAI enables the AI source.
func WithAI(ai AI) Option {
	return func(o *Orchestrator) {
		o.ai = ai
	}
}

// WithLogger sets the orchestrator logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithProcessor replaces the processor applied to AI text.
func WithProcessor(p *textproc.Processor) Option {
	return func(o *Orchestrator) {
		o.proc = p
	}
}

// New returns an orchestrator backed by standard.
func New(standard *generator.Generator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		standard: standard,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.proc == nil {
		o.proc = textproc.New(rand.New(rand.NewSource(time.Now().UnixNano())))
	}
	return o
}

// WordCount returns how many words to request for a test.
func WordCount(testType model.TestType, words, seconds int, mode model.TextMode) int {
	if testType != model.TestTime {
		return words
	}
	if mode == model.ModeAI {
		return max(MinTimedAIWords, int(math.Ceil(float64(seconds)*aiWordsPerSecond)))
	}
	return TimedStandardWords
}

// Style maps a category to the AI writing style.
func Style(c model.Category) string {
	if c == model.CategoryProgramming {
		return styleTechnical
	}
	return styleCasual
}

// Standard generates text locally. It never fails, and it supersedes any
// request still in flight.
func (o *Orchestrator) Standard(opts model.TextOptions) string {
	o.Supersede()
	return o.standard.Generate(opts)
}

// Supersede marks every request still in flight as stale. Hosts call it when
// they load text from elsewhere, such as a custom passage.
func (o *Orchestrator) Supersede() {
	o.seq.Add(1)
}

// Generate returns text for opts. AI failures fall back to standard text and
// are never returned. ErrStale means a later call has started; its result
// must not be applied.
func (o *Orchestrator) Generate(ctx context.Context, opts model.TextOptions) (string, error) {
	seq := o.seq.Add(1)
	text := o.generate(ctx, opts)
	if o.seq.Load() != seq {
		return "", ErrStale
	}
	return text, nil
}

func (o *Orchestrator) generate(ctx context.Context, opts model.TextOptions) string {
	if opts.WordCount <= 0 {
		opts.WordCount = model.DefaultTextOptions().WordCount
	}
	if opts.Mode != model.ModeAI || o.ai == nil {
		return o.standard.Generate(opts)
	}
	if !o.ai.Available(ctx) {
		o.logger.Info("ai unavailable, using standard text")
		return o.standard.Generate(opts)
	}
	req := pool.Request{WordCount: opts.WordCount, Topic: opts.Topic, Style: Style(opts.Category)}
	text, remaining, err := o.ai.Generate(ctx, req)
	if err != nil {
		o.logger.Warn("ai generation failed, using standard text", zap.Error(err))
		opts.Category = fallbackCategory(opts.Category, req.Style)
		return o.standard.Generate(opts)
	}
	o.logger.Debug("received ai text", zap.Int("pool_remaining", remaining))
	return o.proc.Process(text, textproc.OptionsFrom(opts))
}

// Practice returns drill text for keys. With ai set the endpoint is asked
// for words containing the keys first.
func (o *Orchestrator) Practice(ctx context.Context, keys []rune, count int, ai bool) (string, error) {
	seq := o.seq.Add(1)
	if count <= 0 {
		count = generator.DefaultPracticeWords
	}
	text := ""
	if ai && o.ai != nil && len(keys) > 0 {
		req := pool.Request{WordCount: count, Topic: PracticeTopic(keys), Style: styleCasual}
		got, _, err := o.ai.Generate(ctx, req)
		if err != nil {
			o.logger.Warn("ai practice failed, using word lists", zap.Error(err))
		} else {
			text = o.proc.Process(got, textproc.Options{Capitalization: model.CapsLowercase})
		}
	}
	if text == "" {
		text = o.standard.Practice(keys, count)
	}
	if o.seq.Load() != seq {
		return "", ErrStale
	}
	return text, nil
}

// PracticeTopic is the AI topic asking for words containing keys.
func PracticeTopic(keys []rune) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = string(k)
	}
	return fmt.Sprintf("words containing letters: %s. Practice these specific keys.", strings.Join(parts, ", "))
}

func fallbackCategory(c model.Category, style string) model.Category {
	if c.Valid() {
		return c
	}
	if style == styleTechnical {
		return model.CategoryProgramming
	}
	return model.CategoryCommon
}
