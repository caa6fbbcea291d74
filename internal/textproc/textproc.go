// Package textproc normalizes and decorates practice text.
package textproc

import (
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/verte-zerg/typer/internal/model"
)

const (
	// PunctuationClass is stripped when punctuation is not wanted.
	PunctuationClass = `.,!?;:'"()-`
	// SymbolClass is stripped when symbols are not wanted.
	SymbolClass = `@#$%&*+=<>/\|_~^`
	// NoiseSymbols are injected when symbols are wanted.
	NoiseSymbols = "!@#$%^&*()_+-=[]{}|;:,.<>?"

	numberDensity = 0.05
	symbolDensity = 0.04
)

// Options selects the processing steps.
type Options struct {
	IncludeNumbers     bool
	IncludePunctuation bool
	IncludeSymbols     bool
	Capitalization     model.Capitalization
}

// OptionsFrom extracts processing options from a generation request.
func OptionsFrom(o model.TextOptions) Options {
	return Options{
		IncludeNumbers:     o.IncludeNumbers,
		IncludePunctuation: o.IncludePunctuation,
		IncludeSymbols:     o.IncludeSymbols,
		Capitalization:     o.Capitalization,
	}
}

// Processor applies the processing pipeline. It is safe for concurrent use.
type Processor struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// New returns a Processor drawing from rnd, or a time-seeded source when nil.
func New(rnd *rand.Rand) *Processor {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Processor{rnd: rnd}
}

// Process strips disallowed classes, collapses whitespace, injects noise
// characters and applies capitalization, in that order.
func (p *Processor) Process(text string, opts Options) string {
	if !opts.IncludePunctuation {
		text = stripClass(text, PunctuationClass)
	}
	if !opts.IncludeSymbols {
		text = stripClass(text, SymbolClass)
	}
	text = strings.Join(strings.Fields(text), " ")

	p.mu.Lock()
	defer p.mu.Unlock()

	runes := []rune(text)
	if opts.IncludeNumbers {
		p.inject(runes, numberDensity, "0123456789")
	}
	if opts.IncludeSymbols {
		p.inject(runes, symbolDensity, NoiseSymbols)
	}
	return p.capitalize(runes, opts.Capitalization)
}

// inject overwrites ceil(len*density) random positions, skipping spaces, with
// characters from set. Positions may repeat.
func (p *Processor) inject(runes []rune, density float64, set string) {
	if len(runes) == 0 {
		return
	}
	choices := []rune(set)
	count := int(math.Ceil(float64(len(runes)) * density))
	for i := 0; i < count; i++ {
		idx := p.rnd.Intn(len(runes))
		if runes[idx] == ' ' {
			continue
		}
		runes[idx] = choices[p.rnd.Intn(len(choices))]
	}
}

func (p *Processor) capitalize(runes []rune, mode model.Capitalization) string {
	switch mode {
	case model.CapsLowercase:
		return strings.ToLower(string(runes))
	case model.CapsRandom:
		for i, r := range runes {
			if p.rnd.Float64() > 0.5 {
				runes[i] = unicode.ToUpper(r)
			} else {
				runes[i] = unicode.ToLower(r)
			}
		}
		return string(runes)
	default:
		return string(runes)
	}
}

func stripClass(text, class string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(class, r) {
			return -1
		}
		return r
	}, text)
}
