package stats

import (
	"sort"
	"unicode"

	"github.com/verte-zerg/typer/internal/model"
)

// SelectWeakChars picks the lowest-accuracy letters from historical aggregates.
// Characters seen fewer than minTotal times are ignored.
func SelectWeakChars(aggs []model.CharAggregate, top, minTotal int) []rune {
	candidates := make([]model.CharAggregate, 0, len(aggs))
	for _, agg := range aggs {
		runes := []rune(agg.Char)
		if len(runes) != 1 || !unicode.IsLetter(runes[0]) {
			continue
		}
		if agg.Total < minTotal || agg.Errors == 0 {
			continue
		}
		candidates = append(candidates, agg)
	}
	sort.Slice(candidates, func(i, j int) bool {
		ai := aggAccuracy(candidates[i])
		aj := aggAccuracy(candidates[j])
		if ai == aj {
			return candidates[i].Char < candidates[j].Char
		}
		return ai < aj
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	out := make([]rune, 0, top)
	for i := 0; i < top; i++ {
		out = append(out, []rune(candidates[i].Char)[0])
	}
	return out
}

func aggAccuracy(agg model.CharAggregate) float64 {
	if agg.Total == 0 {
		return 1.0
	}
	return float64(agg.Total-agg.Errors) / float64(agg.Total)
}
