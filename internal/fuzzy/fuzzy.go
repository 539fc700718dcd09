// Package fuzzy wraps go-fuzzywuzzy's token-set scoring behind the small
// surface the resolver needs.
package fuzzy

import fuzzywuzzy "github.com/paul-mannino/go-fuzzywuzzy"

// TokenSetRatio scores the similarity of two phrases in [0,100]. The
// metric compares distinct word sets, so it is insensitive to word order,
// duplicates, and extra words shared by both phrases.
func TokenSetRatio(a, b string) int {
	return fuzzywuzzy.TokenSetRatio(a, b)
}

// BestScore returns the highest TokenSetRatio of text against each
// candidate phrase, or 0 when candidates is empty.
func BestScore(text string, candidates []string) int {
	best := 0
	for _, candidate := range candidates {
		if score := fuzzywuzzy.TokenSetRatio(text, candidate); score > best {
			best = score
		}
	}
	return best
}
