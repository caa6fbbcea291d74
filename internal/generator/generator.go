// Package generator builds typing text from the local corpora.
package generator

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/verte-zerg/typer/internal/corpus"
	"github.com/verte-zerg/typer/internal/model"
	"github.com/verte-zerg/typer/internal/textproc"
)

// Per-word decoration probabilities for word categories.
const (
	numberAffixProb  = 0.12
	secondDigitProb  = 0.3
	punctuationProb  = 0.1
	symbolAffixProb  = 0.08
	weakCharBoost    = 2.0
	maxSentenceDraws = 10000
)

// DefaultPracticeWords is the practice text length when none is requested.
const DefaultPracticeWords = 40

// Generator produces randomized typing text. It is safe for concurrent use.
type Generator struct {
	mu     sync.Mutex
	rnd    *rand.Rand
	corpus *corpus.Corpus
	proc   *textproc.Processor
}

// Option configures a Generator.
type Option func(*Generator)

// WithRand replaces the time-seeded random source.
func WithRand(rnd *rand.Rand) Option {
	return func(g *Generator) {
		g.rnd = rnd
	}
}

// New returns a Generator over c.
func New(c *corpus.Corpus, opts ...Option) *Generator {
	g := &Generator{
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		corpus: c,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.proc = textproc.New(rand.New(rand.NewSource(g.rnd.Int63())))
	return g
}

// Generate returns exactly opts.WordCount processed words from the category's corpus.
func (g *Generator) Generate(opts model.TextOptions) string {
	if opts.WordCount <= 0 {
		return ""
	}
	if !opts.Category.Valid() {
		opts.Category = model.CategoryCommon
	}
	popts := textproc.OptionsFrom(opts)
	if opts.Category.IsSentence() {
		return g.fromSentences(opts.Category, opts.WordCount, popts)
	}
	return g.fromWords(opts, popts)
}

// Practice builds count words from the curated lists of the given keys, one
// key per word in rotation, then shuffles them. Keys without a list draw
// from a generic fallback.
func (g *Generator) Practice(keys []rune, count int) string {
	if count <= 0 {
		count = DefaultPracticeWords
	}
	g.mu.Lock()
	words := make([]string, count)
	for i := range words {
		letter := ""
		if len(keys) > 0 {
			letter = strings.ToLower(string(keys[i%len(keys)]))
		}
		pool := g.corpus.PracticeWords(letter)
		words[i] = pool[g.rnd.Intn(len(pool))]
	}
	g.rnd.Shuffle(len(words), func(i, j int) {
		words[i], words[j] = words[j], words[i]
	})
	g.mu.Unlock()
	return g.proc.Process(strings.Join(words, " "), textproc.Options{Capitalization: model.CapsLowercase})
}

// fromSentences shuffles the pool, appends sentences until the target is
// met, then samples with replacement. Processing happens before truncation so
// the result always has exactly n words.
func (g *Generator) fromSentences(cat model.Category, n int, popts textproc.Options) string {
	pool := g.corpus.SentencePool(cat)
	g.mu.Lock()
	shuffled := make([]string, len(pool))
	copy(shuffled, pool)
	g.rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	var selected []string
	count := 0
	for _, s := range shuffled {
		if count >= n {
			break
		}
		selected = append(selected, s)
		count += len(strings.Fields(s))
	}
	g.mu.Unlock()

	for draws := 0; ; draws++ {
		words := strings.Fields(g.proc.Process(strings.Join(selected, " "), popts))
		if len(words) >= n || draws >= maxSentenceDraws {
			return strings.Join(words[:min(n, len(words))], " ")
		}
		g.mu.Lock()
		selected = append(selected, pool[g.rnd.Intn(len(pool))])
		g.mu.Unlock()
	}
}

func (g *Generator) fromWords(opts model.TextOptions, popts textproc.Options) string {
	pool := g.corpus.WordPool(opts.Category)
	g.mu.Lock()
	var pick func() string
	if focus := focusSet(opts.FocusChars); len(focus) > 0 {
		pick = g.weightedPicker(pool, focus)
	} else {
		pick = func() string { return pool[g.rnd.Intn(len(pool))] }
	}
	words := make([]string, opts.WordCount)
	for i := range words {
		words[i] = g.decorate(pick(), opts)
	}
	g.mu.Unlock()
	return g.proc.Process(strings.Join(words, " "), popts)
}

// decorate adds the optional numeric affix, trailing punctuation and symbol affix.
func (g *Generator) decorate(word string, opts model.TextOptions) string {
	if opts.IncludeNumbers && g.rnd.Float64() < numberAffixProb {
		num := digit(g.rnd)
		if g.rnd.Float64() < secondDigitProb {
			num += digit(g.rnd)
		}
		if g.rnd.Float64() < 0.5 {
			word = num + word
		} else {
			word += num
		}
	}
	if opts.IncludePunctuation && g.rnd.Float64() < punctuationProb {
		word += corpus.Punctuation[g.rnd.Intn(len(corpus.Punctuation))]
	}
	if opts.IncludeSymbols && g.rnd.Float64() < symbolAffixProb {
		sym := corpus.Symbols[g.rnd.Intn(len(corpus.Symbols))]
		if g.rnd.Float64() < 0.5 {
			word = sym + word
		} else {
			word += sym
		}
	}
	return word
}

// weightedPicker biases selection toward words containing focus characters.
func (g *Generator) weightedPicker(words []string, focus map[rune]struct{}) func() string {
	weights := make([]float64, len(words))
	total := 0.0
	for i, word := range words {
		hits := 0
		for _, r := range strings.ToLower(word) {
			if _, ok := focus[r]; ok {
				hits++
			}
		}
		weights[i] = 1.0 + float64(hits)*weakCharBoost
		total += weights[i]
	}
	return func() string {
		target := g.rnd.Float64() * total
		acc := 0.0
		for i, w := range weights {
			acc += w
			if target <= acc {
				return words[i]
			}
		}
		return words[len(words)-1]
	}
}

func focusSet(chars string) map[rune]struct{} {
	set := map[rune]struct{}{}
	for _, r := range strings.ToLower(chars) {
		if r != ' ' {
			set[r] = struct{}{}
		}
	}
	return set
}

func digit(rnd *rand.Rand) string {
	return string(rune('0' + rnd.Intn(10)))
}
