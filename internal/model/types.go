// Package model defines shared data structures.
package model

import "time"

// TestType selects how a practice test ends.
type TestType string

// Supported test types.
const (
	TestTime   TestType = "time"
	TestWords  TestType = "words"
	TestCustom TestType = "custom"
)

// Category selects the corpus used by the standard generator.
type Category string

// Supported categories. The first four are sentence corpora, the rest word corpora.
const (
	CategoryCommon      Category = "common"
	CategoryProgramming Category = "programming"
	CategoryLiterature  Category = "literature"
	CategoryQuotes      Category = "quotes"
	CategoryWords       Category = "words"
	CategoryMixed       Category = "mixed"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryCommon,
	CategoryProgramming,
	CategoryLiterature,
	CategoryQuotes,
	CategoryWords,
	CategoryMixed,
}

// IsSentence reports whether the category is backed by a sentence corpus.
func (c Category) IsSentence() bool {
	switch c {
	case CategoryCommon, CategoryProgramming, CategoryLiterature, CategoryQuotes:
		return true
	default:
		return false
	}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Capitalization is the casing mode applied by the text processor.
type Capitalization string

// Supported capitalization modes.
const (
	CapsLowercase Capitalization = "lowercase"
	CapsNormal    Capitalization = "normal"
	CapsRandom    Capitalization = "random"
)

// Valid reports whether c is a known capitalization mode.
func (c Capitalization) Valid() bool {
	switch c {
	case CapsLowercase, CapsNormal, CapsRandom:
		return true
	default:
		return false
	}
}

// TextMode selects the text source.
type TextMode string

// Supported text modes.
const (
	ModeStandard TextMode = "standard"
	ModeAI       TextMode = "ai"
)

// TextOptions describes a text generation request.
type TextOptions struct {
	Mode               TextMode
	WordCount          int
	Category           Category
	IncludeNumbers     bool
	IncludePunctuation bool
	IncludeSymbols     bool
	Capitalization     Capitalization
	Topic              string
	// FocusChars biases word categories toward words containing these characters.
	FocusChars string
}

// DefaultTextOptions returns the options used when nothing is configured.
func DefaultTextOptions() TextOptions {
	return TextOptions{
		Mode:           ModeStandard,
		WordCount:      50,
		Category:       CategoryCommon,
		Capitalization: CapsLowercase,
	}
}

// KeyStat aggregates attempts against one expected character.
type KeyStat struct {
	Total        int
	Errors       int
	LatencySumMs int64
	LatencyCount int64
}

// MeanLatencyMs returns the mean inter-key latency, or 0 without samples.
func (k KeyStat) MeanLatencyMs() float64 {
	if k.LatencyCount == 0 {
		return 0
	}
	return float64(k.LatencySumMs) / float64(k.LatencyCount)
}

// Stats is an immutable snapshot of a running or finished test.
type Stats struct {
	WPM      int
	Accuracy int
	Correct  int
	Errors   int
	// TimeLeft is the remaining whole seconds of a timed test, nil when untimed.
	// A finished test always reports 0.
	TimeLeft *int
	Elapsed  time.Duration
	KeyStats map[rune]KeyStat
	Finished bool
	Paused   bool
}

// KeyResult classifies a single accepted keystroke.
type KeyResult string

// Keystroke classifications.
const (
	KeyCorrect   KeyResult = "correct"
	KeyIncorrect KeyResult = "incorrect"
)

// SessionStats captures a completed typing session.
type SessionStats struct {
	UUID       string
	StartedAt  time.Time
	EndedAt    time.Time
	TestType   TestType
	Category   Category
	Words      int
	TimeLimit  int
	WPM        int
	Accuracy   int
	Correct    int
	Errors     int
	DurationMs int64
}

// CharStats stores per-character stats for a session.
type CharStats struct {
	Char         string
	Total        int
	Errors       int
	LatencySumMs int64
	LatencyCount int64
}

// CharAggregate aggregates character stats across sessions.
type CharAggregate struct {
	Char         string
	Total        int
	Errors       int
	LatencySumMs int64
	LatencyCount int64
}

// SessionAggregate summarizes a session for reporting.
type SessionAggregate struct {
	SessionID  int64
	EndedAt    time.Time
	WPM        int
	Accuracy   int
	Correct    int
	Errors     int
	DurationMs int64
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Since *time.Time
	Last  int
	Chars string
}
