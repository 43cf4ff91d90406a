package collector

import "strings"

// Word lists for headline scoring. Intentionally small: headline sentiment
// only needs coarse polarity, the engine derives everything else.
var positiveWords = []string{
	"surge", "rally", "gain", "jump", "soar", "record", "beat", "upgrade",
	"growth", "profit", "strong", "buyback", "dividend", "breakthrough",
}

var negativeWords = []string{
	"fall", "drop", "plunge", "slump", "loss", "miss", "downgrade", "cut",
	"lawsuit", "recall", "weak", "decline", "warning", "fraud",
}

// scoreHeadline counts polarity hits in one title and returns the net
// count. Matching is case-insensitive on substrings, so "gains" and
// "upgraded" count.
func scoreHeadline(title string) int {
	lower := strings.ToLower(title)

	score := 0
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			score++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			score--
		}
	}
	return score
}

// Score aggregates headline polarity into a sentiment score in [-1, 1].
// Each headline contributes its clamped polarity sign-ward; zero headlines
// score 0.
func Score(headlines []Headline) float64 {
	if len(headlines) == 0 {
		return 0
	}

	var total float64
	for _, h := range headlines {
		total += clamp(float64(scoreHeadline(h.Title)), -1, 1)
	}
	return total / float64(len(headlines))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
