package textutil

import (
	"regexp"
	"strings"
)

// tokenPattern matches runs of letters or digits in any script.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Tokenize splits text into lowercase word tokens, dropping punctuation.
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// tokenSet returns the distinct tokens of text.
func tokenSet(text string) map[string]struct{} {
	tokens := Tokenize(text)
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	return set
}

// OverlapRatio returns the fraction of distinct query words that also occur
// in reference. A query with no words scores 0.
func OverlapRatio(query, reference string) float64 {
	queryWords := tokenSet(query)
	if len(queryWords) == 0 {
		return 0
	}
	referenceWords := tokenSet(reference)

	var shared int
	for word := range queryWords {
		if _, ok := referenceWords[word]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(queryWords))
}
