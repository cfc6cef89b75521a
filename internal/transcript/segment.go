package transcript

import "strings"

// Segment is one ordered transcript segment from the ASR engine.
// Segments are read-only inputs; earmark never mutates them.
type Segment struct {
	Start float64
	End   float64
	Text  string
	Index int
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// FullText concatenates segment texts with single spaces, skipping blanks.
func FullText(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
