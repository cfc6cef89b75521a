package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Input is loaded transcript material. Segments is empty for plain-text
// sources, which only support text-based fallback chunking. Language is
// populated only when the source declares one (WhisperX JSON).
type Input struct {
	Segments []Segment
	Text     string
	Language string
}

type whisperSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type whisperPayload struct {
	Segments []whisperSegment `json:"segments"`
	Text     string           `json:"text"`
	Language string           `json:"language"`
}

// LoadFile reads a transcript file, choosing the parser by extension:
// .json for WhisperX-style output, .srt for subtitles, anything else is
// treated as plain text without timing.
func LoadFile(path string) (Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Input{}, fmt.Errorf("read transcript: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		var payload whisperPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return Input{}, fmt.Errorf("parse transcript json: %w", err)
		}
		segments := payload.toSegments()
		return Input{
			Segments: segments,
			Text:     FullText(segments),
			Language: strings.TrimSpace(payload.Language),
		}, nil
	case ".srt":
		segments, err := ParseSRT(string(data))
		if err != nil {
			return Input{}, err
		}
		return Input{Segments: segments, Text: FullText(segments)}, nil
	default:
		return Input{Text: normText(string(data))}, nil
	}
}

// ParseJSON decodes WhisperX-style JSON output into ordered segments.
func ParseJSON(data []byte) ([]Segment, error) {
	var payload whisperPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse transcript json: %w", err)
	}
	return payload.toSegments(), nil
}

func (p whisperPayload) toSegments() []Segment {
	segments := make([]Segment, 0, len(p.Segments))
	for i, seg := range p.Segments {
		segments = append(segments, Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  normText(seg.Text),
			Index: i,
		})
	}
	return segments
}

// ParseSRT parses SubRip subtitle text into ordered segments. Each subtitle
// block becomes one segment; multi-line cues are joined with spaces.
func ParseSRT(text string) ([]Segment, error) {
	var (
		segments   []Segment
		start, end float64
		haveTiming bool
		lines      []string
	)

	flush := func() {
		if !haveTiming || len(lines) == 0 {
			lines = nil
			return
		}
		segments = append(segments, Segment{
			Start: start,
			End:   end,
			Text:  normText(strings.Join(lines, " ")),
			Index: len(segments),
		})
		lines = nil
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
		if line == "" {
			flush()
			haveTiming = false
			continue
		}
		if isDigitsOnly(line) && !haveTiming {
			continue
		}
		if strings.Contains(line, "-->") {
			flush()
			parts := strings.SplitN(line, "-->", 2)
			var err error
			if start, err = parseSRTTimestamp(parts[0]); err != nil {
				return nil, fmt.Errorf("parse srt: %w", err)
			}
			if end, err = parseSRTTimestamp(parts[1]); err != nil {
				return nil, fmt.Errorf("parse srt: %w", err)
			}
			haveTiming = true
			continue
		}
		lines = append(lines, line)
	}
	flush()

	return segments, nil
}

// parseSRTTimestamp converts "HH:MM:SS,mmm" to seconds.
func parseSRTTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	value = strings.ReplaceAll(value, ",", ".")
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours)*3600 + float64(minutes)*60 + seconds, nil
}

func isDigitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func normText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}
