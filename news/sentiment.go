package news

import "strings"

// SentimentModel scores free text in [-1, 1].
type SentimentModel interface {
	Score(text string) float64
}

// RuleBased counts keyword hits. The score is (pos - neg) / (pos + neg), 0
// when nothing matches.
type RuleBased struct {
	Positive []string
	Negative []string
}

func NewRuleBased() RuleBased {
	return RuleBased{
		Positive: []string{"beat", "outperform", "growth", "surge"},
		Negative: []string{"miss", "downgrade", "loss", "fall"},
	}
}

func (r RuleBased) Score(text string) float64 {
	lower := strings.ToLower(text)
	pos := hits(lower, r.Positive)
	neg := hits(lower, r.Negative)
	if pos+neg == 0 {
		return 0
	}
	return float64(pos-neg) / float64(pos+neg)
}

// hits counts keywords present at least once, as substrings.
func hits(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}
