package pool

import (
	"fmt"
	"strings"
)

const (
	// BatchSize is the number of passages requested per generation call.
	BatchSize = 5
	// Delimiter separates passages in raw model output.
	Delimiter = "|||"
	// MinPassageLen is the exclusive lower bound on accepted passage length.
	MinPassageLen = 20

	singlePassageMinLen = 50
	defaultWordCount    = 50
	defaultTopic        = "general"
	defaultStyle        = "casual"
)

// Request identifies the kind of passage wanted.
type Request struct {
	WordCount int    `json:"wordCount"`
	Topic     string `json:"topic,omitempty"`
	Style     string `json:"style,omitempty"`
}

// Normalize fills defaults.
func (r Request) Normalize() Request {
	if r.WordCount <= 0 {
		r.WordCount = defaultWordCount
	}
	r.Topic = strings.TrimSpace(r.Topic)
	r.Style = strings.TrimSpace(r.Style)
	if r.Style == "" {
		r.Style = defaultStyle
	}
	return r
}

// Key is the pool partition for the request.
func (r Request) Key() string {
	r = r.Normalize()
	topic := strings.ToLower(r.Topic)
	if topic == "" {
		topic = defaultTopic
	}
	return fmt.Sprintf("%d-%s-%s", r.WordCount, topic, r.Style)
}

// BuildPrompt renders the batch instruction for a request.
func BuildPrompt(r Request) string {
	r = r.Normalize()
	topic := r.Topic
	if topic == "" {
		topic = "General Knowledge"
	}
	return fmt.Sprintf(`You are a typing practice generator.
Generate %d distinct %d-word typing practice passages.
Topic: %s.
Style: %s.

STRICT FORMATTING RULES:
1. Do NOT use JSON.
2. Separate each passage with exactly "%s".
3. Do not include any intro text, titles, or numbering.
4. Just the raw passages separated by the delimiter.
5. Plain text only.`, BatchSize, r.WordCount, topic, r.Style, Delimiter)
}

// ParseBatch splits raw model output into passages longer than MinPassageLen.
// Output with no delimiter-separated passage is accepted whole when it is long
// enough to be a passage on its own.
func ParseBatch(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("empty model response: %w", ErrEmptyBatch)
	}
	var passages []string
	for _, part := range strings.Split(raw, Delimiter) {
		part = strings.TrimSpace(part)
		if len(part) > MinPassageLen {
			passages = append(passages, part)
		}
	}
	if len(passages) > 0 {
		return passages, nil
	}
	if trimmed := strings.TrimSpace(raw); len(trimmed) > singlePassageMinLen {
		return []string{trimmed}, nil
	}
	return nil, fmt.Errorf("unparseable model response: %w", ErrEmptyBatch)
}
