package chunking

import (
	"regexp"
	"strings"
)

// Sentence boundaries are runs of terminal punctuation. The punctuation
// stays attached to the sentence it ends so reassembled text reads the
// same as the source.
var sentenceBoundary = regexp.MustCompile(`([.!?]+)\s+`)

// splitSentences splits text after terminal punctuation followed by
// whitespace. Text without any boundary comes back as a single element.
// Blank fragments are dropped.
func splitSentences(text string) []string {
	marked := sentenceBoundary.ReplaceAllString(text, "$1\x00")
	parts := strings.Split(marked, "\x00")

	sentences := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		sentences = append(sentences, part)
	}
	return sentences
}
