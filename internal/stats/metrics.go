// Package stats contains statistics calculations and reporting.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/verte-zerg/typer/internal/model"
)

// ProblemKeyLimit is how many problem keys the result screen shows.
const ProblemKeyLimit = 6

// WPM returns words per minute for correct characters over elapsed time,
// where a word is five characters. It is 0 before any time has elapsed.
func WPM(correct int, elapsed time.Duration) int {
	minutes := elapsed.Minutes()
	if minutes <= 0 || correct <= 0 {
		return 0
	}
	return int(math.Round((float64(correct) / 5.0) / minutes))
}

// Accuracy returns the rounded percentage of correct attempts, or 100 with no attempts.
func Accuracy(correct, errors int) int {
	total := correct + errors
	if total <= 0 {
		return 100
	}
	acc := int(math.Round(float64(correct) / float64(total) * 100))
	return min(100, max(0, acc))
}

// RawWPM estimates speed before accuracy losses.
func RawWPM(wpm, accuracy int) int {
	return int(math.Round(float64(wpm) * (100 / float64(max(accuracy, 1)))))
}

// CharsPerSecond returns attempted characters per second of typing time.
func CharsPerSecond(correct, errors int, elapsed time.Duration) float64 {
	secs := elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(correct+errors) / secs
}

// Rating is a coarse performance label for a finished test.
type Rating string

// Ratings from best to worst.
const (
	RatingLegendary      Rating = "LEGENDARY"
	RatingExcellent      Rating = "EXCELLENT"
	RatingGreat          Rating = "GREAT"
	RatingGood           Rating = "GOOD"
	RatingKeepPracticing Rating = "KEEP PRACTICING"
)

// RateResult labels a speed/accuracy pair.
func RateResult(wpm, accuracy int) Rating {
	switch {
	case wpm >= 100 && accuracy >= 98:
		return RatingLegendary
	case wpm >= 80 && accuracy >= 95:
		return RatingExcellent
	case wpm >= 60 && accuracy >= 90:
		return RatingGreat
	case wpm >= 40 && accuracy >= 85:
		return RatingGood
	default:
		return RatingKeepPracticing
	}
}

// ProblemKey is a character that was mistyped at least once.
type ProblemKey struct {
	Char   rune
	Errors int
	Total  int
}

// ProblemKeys returns up to limit non-space characters with errors, most errors first.
func ProblemKeys(keyStats map[rune]model.KeyStat, limit int) []ProblemKey {
	keys := make([]ProblemKey, 0, len(keyStats))
	for r, ks := range keyStats {
		if ks.Errors <= 0 || r == ' ' {
			continue
		}
		keys = append(keys, ProblemKey{Char: r, Errors: ks.Errors, Total: ks.Total})
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Errors == keys[j].Errors {
			return keys[i].Char < keys[j].Char
		}
		return keys[i].Errors > keys[j].Errors
	})
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}

// ProblemKeyRunes flattens problem keys for practice text generation.
func ProblemKeyRunes(keys []ProblemKey) []rune {
	out := make([]rune, len(keys))
	for i, k := range keys {
		out[i] = k.Char
	}
	return out
}
