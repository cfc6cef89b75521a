package chunking

import (
	"fmt"

	"github.com/google/uuid"
)

// Type tags how a chunk was produced.
type Type string

const (
	// TypeSegment marks a chunk taken verbatim from one transcript segment.
	TypeSegment Type = "segment"
	// TypeSentence marks a chunk split out of an overlong segment at a
	// sentence boundary, with approximated timestamps.
	TypeSentence Type = "sentence"
	// TypeText marks a fixed-window chunk from text-based fallback
	// chunking; it carries no timestamps.
	TypeText Type = "text_chunk"
)

// Chunk is the minimal timestamped unit of transcript text, the atom of
// indexing and matching. Chunks are immutable once produced.
type Chunk struct {
	ID           string
	Text         string
	Start        float64
	End          float64
	Timed        bool
	SegmentIndex int
	Type         Type
}

// Duration returns the chunk length in seconds, 0 for untimed chunks.
func (c Chunk) Duration() float64 {
	if !c.Timed {
		return 0
	}
	return c.End - c.Start
}

// Issue records a malformed segment dropped during chunking. Dropped
// segments are diagnostics, never fatal.
type Issue struct {
	SegmentIndex int
	Reason       string
}

// chunkNamespace seeds deterministic chunk IDs so identical input always
// yields identical chunk lists.
var chunkNamespace = uuid.MustParse("b3a9f2d4-41c7-4e7a-9b26-8e5d03c1f6aa")

func chunkID(kind Type, segmentIndex, ordinal int, text string) string {
	name := fmt.Sprintf("%s|%d|%d|%s", kind, segmentIndex, ordinal, text)
	return uuid.NewSHA1(chunkNamespace, []byte(name)).String()
}
