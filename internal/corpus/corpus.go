// Package corpus provides the embedded sentence, word, and practice corpora.
package corpus

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/typer/internal/model"
)

//go:embed corpus.yaml
var corpusYAML []byte

// Noise characters appended or prepended by the word generator.
var (
	Punctuation = []string{".", ",", "!", "?", ";", ":", "'", "\"", "-", "(", ")"}
	Symbols     = []string{"@", "#", "$", "%", "&", "*", "+", "=", "<", ">", "/", "\\", "|", "_", "~", "^"}
)

// Corpus holds every built-in text pool.
type Corpus struct {
	Sentences map[model.Category][]string `yaml:"sentences"`
	Words     struct {
		Common      []string `yaml:"common"`
		Programming []string `yaml:"programming"`
	} `yaml:"words"`
	Practice struct {
		Fallback []string            `yaml:"fallback"`
		Letters  map[string][]string `yaml:"letters"`
	} `yaml:"practice"`
}

var (
	loadOnce sync.Once
	loaded   *Corpus
	loadErr  error
)

// Default returns the embedded corpus, parsed once.
func Default() (*Corpus, error) {
	loadOnce.Do(func() {
		loaded, loadErr = Parse(corpusYAML)
	})
	return loaded, loadErr
}

// MustDefault is Default for callers that treat a broken build as fatal.
func MustDefault() *Corpus {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse decodes and validates a corpus document.
func Parse(data []byte) (*Corpus, error) {
	var c Corpus
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse corpus: %w", err)
	}
	for _, cat := range model.Categories {
		if cat.IsSentence() && len(c.Sentences[cat]) == 0 {
			return nil, fmt.Errorf("corpus has no sentences for %q", cat)
		}
	}
	if len(c.Words.Common) == 0 {
		return nil, fmt.Errorf("corpus has no common words")
	}
	if len(c.Practice.Fallback) == 0 {
		return nil, fmt.Errorf("corpus has no practice fallback words")
	}
	return &c, nil
}

// SentencePool returns the sentences for a sentence category.
func (c *Corpus) SentencePool(cat model.Category) []string {
	return c.Sentences[cat]
}

// WordPool returns the flat word list for a word category; mixed adds programming terms.
func (c *Corpus) WordPool(cat model.Category) []string {
	if cat != model.CategoryMixed {
		return c.Words.Common
	}
	pool := make([]string, 0, len(c.Words.Common)+len(c.Words.Programming))
	pool = append(pool, c.Words.Common...)
	return append(pool, c.Words.Programming...)
}

// PracticeWords returns the curated words for a letter, or the generic fallback.
func (c *Corpus) PracticeWords(letter string) []string {
	if words, ok := c.Practice.Letters[letter]; ok && len(words) > 0 {
		return words
	}
	return c.Practice.Fallback
}

// WithCommonWords returns a copy whose common word pool is replaced.
func (c *Corpus) WithCommonWords(words []string) *Corpus {
	if len(words) == 0 {
		return c
	}
	cp := *c
	cp.Words.Common = words
	return &cp
}
