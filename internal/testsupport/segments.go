package testsupport

import "earmark/internal/transcript"

// Segments builds a contiguous transcript: each text spans seconds of
// audio, back to back from start.
func Segments(start, seconds float64, texts ...string) []transcript.Segment {
	segments := make([]transcript.Segment, len(texts))
	cursor := start
	for i, text := range texts {
		segments[i] = transcript.Segment{
			Index: i,
			Start: cursor,
			End:   cursor + seconds,
			Text:  text,
		}
		cursor += seconds
	}
	return segments
}
