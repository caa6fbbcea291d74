package stats

import (
	"sort"

	"github.com/verte-zerg/typer/internal/model"
)

// TopCharsByFrequency returns the n most typed characters, ties broken alphabetically.
func TopCharsByFrequency(aggs []model.CharAggregate, n int) []string {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	sorted := make([]model.CharAggregate, len(aggs))
	copy(sorted, aggs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Total == sorted[j].Total {
			return sorted[i].Char < sorted[j].Char
		}
		return sorted[i].Total > sorted[j].Total
	})
	n = min(n, len(sorted))
	out := make([]string, n)
	for i := range out {
		out[i] = sorted[i].Char
	}
	return out
}
