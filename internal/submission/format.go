package submission

import (
	"fmt"
	"sort"

	"github.com/bbernhard/leaf-playground/internal/datastructures"
)

// Percent renders a score in [0,1] the way the result view shows it.
func Percent(score float64) string {
	return fmt.Sprintf("%.2f%%", score*100)
}

// SortedScores lists per-class scores highest first, ties by label.
func SortedScores(scores map[string]float64) []datastructures.ClassScore {
	out := make([]datastructures.ClassScore, 0, len(scores))
	for label, score := range scores {
		out = append(out, datastructures.ClassScore{Label: label, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Label < out[j].Label
	})
	return out
}
