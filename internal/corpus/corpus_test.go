package corpus

import (
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/typer/internal/model"
)

func TestDefaultCorpusIsComplete(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	for _, cat := range model.Categories {
		if !cat.IsSentence() {
			assert.NotEmpty(t, c.WordPool(cat), cat)
			continue
		}
		pool := c.SentencePool(cat)
		assert.GreaterOrEqual(t, len(pool), 20, cat)
		for _, sentence := range pool {
			for _, token := range strings.Fields(sentence) {
				assert.True(t, strings.IndexFunc(token, unicode.IsLetter) >= 0,
					"token %q in %s sentence has no letters", token, cat)
			}
		}
	}
	for r := 'a'; r <= 'z'; r++ {
		words := c.PracticeWords(string(r))
		assert.Len(t, words, 10, string(r))
	}
	assert.Contains(t, c.PracticeWords("f"), "false")
	assert.Contains(t, c.PracticeWords("n"), "null")
	assert.Equal(t, []string{"the", "and", "for"}, c.PracticeWords("7"))
}

func TestWordPools(t *testing.T) {
	c := MustDefault()
	common := c.WordPool(model.CategoryWords)
	mixed := c.WordPool(model.CategoryMixed)
	assert.Len(t, mixed, len(c.Words.Common)+len(c.Words.Programming))
	assert.Contains(t, mixed, "goroutine")
	assert.NotContains(t, common, "goroutine")
	assert.Contains(t, common, "no")

	custom := c.WithCommonWords([]string{"alpha", "beta"})
	assert.Equal(t, []string{"alpha", "beta"}, custom.WordPool(model.CategoryWords))
	assert.NotEqual(t, custom.Words.Common, c.Words.Common)
}

func TestParseRejectsIncompleteCorpus(t *testing.T) {
	_, err := Parse([]byte("sentences:\n  common: [a]\n"))
	assert.Error(t, err)
	_, err = Parse([]byte("sentences: ["))
	assert.Error(t, err)
}
