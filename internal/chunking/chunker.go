package chunking

import (
	"fmt"
	"strings"

	"earmark/internal/transcript"
)

// Config holds the chunking parameters. All sizes are in characters
// (runes) of normalized text.
type Config struct {
	MaxSegmentLength int
	MinChunkSize     int
	MaxChunkSize     int
	OverlapSize      int
}

// Validate reports the first unusable parameter.
func (c Config) Validate() error {
	if c.MaxSegmentLength <= 0 {
		return fmt.Errorf("max segment length must be positive, got %d", c.MaxSegmentLength)
	}
	if c.MinChunkSize <= 0 {
		return fmt.Errorf("min chunk size must be positive, got %d", c.MinChunkSize)
	}
	if c.MaxChunkSize <= 0 {
		return fmt.Errorf("max chunk size must be positive, got %d", c.MaxChunkSize)
	}
	if c.OverlapSize < 0 {
		return fmt.Errorf("overlap size must be non-negative, got %d", c.OverlapSize)
	}
	if c.OverlapSize >= c.MaxChunkSize {
		return fmt.Errorf("overlap size %d must be smaller than max chunk size %d", c.OverlapSize, c.MaxChunkSize)
	}
	return nil
}

// FromSegments produces chunks from ordered transcript segments. Each
// well-formed segment becomes one chunk; segments longer than
// MaxSegmentLength are split at sentence boundaries with timestamps
// distributed by character-length weighting. Chunks shorter than
// MinChunkSize are merged into a neighbor. Malformed segments are dropped
// and reported as issues.
func FromSegments(segments []transcript.Segment, cfg Config) ([]Chunk, []Issue, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	var (
		chunks []Chunk
		issues []Issue
	)
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		if seg.End <= seg.Start {
			issues = append(issues, Issue{SegmentIndex: seg.Index, Reason: "end time not after start time"})
			continue
		}
		if seg.Start < 0 {
			issues = append(issues, Issue{SegmentIndex: seg.Index, Reason: "negative start time"})
			continue
		}
		if len([]rune(text)) > cfg.MaxSegmentLength {
			chunks = append(chunks, splitOverlongSegment(text, seg)...)
			continue
		}
		chunks = append(chunks, Chunk{
			Text:         text,
			Start:        seg.Start,
			End:          seg.End,
			Timed:        true,
			SegmentIndex: seg.Index,
			Type:         TypeSegment,
		})
	}

	chunks = mergeShortChunks(chunks, cfg.MinChunkSize)
	assignIDs(chunks)
	return chunks, issues, nil
}

// FromText slices plain text into fixed MaxChunkSize windows with
// OverlapSize character overlap. Used only when no segments are available;
// the resulting chunks carry no timestamps. A final window shorter than
// MinChunkSize is folded into its predecessor.
func FromText(text string, cfg Config) ([]Chunk, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil, nil
	}

	step := cfg.MaxChunkSize - cfg.OverlapSize
	var chunks []Chunk
	for pos := 0; pos < len(runes); pos += step {
		end := pos + cfg.MaxChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		// Fold a trailing sliver into the previous window instead of
		// emitting a noise-prone short chunk.
		if len(chunks) > 0 && end == len(runes) && end-pos < cfg.MinChunkSize {
			last := &chunks[len(chunks)-1]
			last.Text = string(runes[pos-step : end])
			break
		}
		chunks = append(chunks, Chunk{
			Text:         string(runes[pos:end]),
			Timed:        false,
			SegmentIndex: -1,
			Type:         TypeText,
		})
		if end == len(runes) {
			break
		}
	}

	assignIDs(chunks)
	return chunks, nil
}

// splitOverlongSegment breaks an overlong segment at sentence boundaries
// and spreads the segment's time span across the sentences proportionally
// to their character lengths; no finer timing exists.
func splitOverlongSegment(text string, seg transcript.Segment) []Chunk {
	sentences := splitSentences(text)
	if len(sentences) <= 1 {
		return []Chunk{{
			Text:         text,
			Start:        seg.Start,
			End:          seg.End,
			Timed:        true,
			SegmentIndex: seg.Index,
			Type:         TypeSentence,
		}}
	}

	var total int
	for _, sentence := range sentences {
		total += len([]rune(sentence))
	}

	duration := seg.End - seg.Start
	chunks := make([]Chunk, 0, len(sentences))
	cursor := seg.Start
	consumed := 0
	for i, sentence := range sentences {
		consumed += len([]rune(sentence))
		end := seg.Start + duration*float64(consumed)/float64(total)
		if i == len(sentences)-1 {
			end = seg.End
		}
		chunks = append(chunks, Chunk{
			Text:         sentence,
			Start:        cursor,
			End:          end,
			Timed:        true,
			SegmentIndex: seg.Index,
			Type:         TypeSentence,
		})
		cursor = end
	}
	return chunks
}

// mergeShortChunks folds chunks below minSize into the following chunk, or
// into the preceding chunk when the short chunk is last.
func mergeShortChunks(chunks []Chunk, minSize int) []Chunk {
	if len(chunks) < 2 {
		return chunks
	}

	merged := make([]Chunk, 0, len(chunks))
	var pending *Chunk
	for i := range chunks {
		cur := chunks[i]
		if pending != nil {
			cur = absorbBefore(*pending, cur)
			pending = nil
		}
		if len([]rune(cur.Text)) >= minSize {
			merged = append(merged, cur)
			continue
		}
		if i < len(chunks)-1 {
			pending = &cur
			continue
		}
		// Short final chunk: merge backwards when possible.
		if len(merged) > 0 {
			last := &merged[len(merged)-1]
			*last = absorbAfter(*last, cur)
		} else {
			merged = append(merged, cur)
		}
	}
	return merged
}

func absorbBefore(short, into Chunk) Chunk {
	into.Text = short.Text + " " + into.Text
	into.SegmentIndex = short.SegmentIndex
	if short.Timed && into.Timed {
		if short.Start < into.Start {
			into.Start = short.Start
		}
	}
	return into
}

func absorbAfter(into, short Chunk) Chunk {
	into.Text = into.Text + " " + short.Text
	if short.Timed && into.Timed {
		if short.End > into.End {
			into.End = short.End
		}
	}
	return into
}

func assignIDs(chunks []Chunk) {
	for i := range chunks {
		chunks[i].ID = chunkID(chunks[i].Type, chunks[i].SegmentIndex, i, chunks[i].Text)
	}
}
