package transcript_test

import (
	"os"
	"path/filepath"
	"testing"

	"earmark/internal/transcript"
)

func TestParseJSONOrdersAndNormalizes(t *testing.T) {
	data := []byte(`{"segments":[
		{"start":0,"end":2.5,"text":"  Hello there. "},
		{"start":2.5,"end":5,"text":"General Kenobi."}
	]}`)
	segments, err := transcript.ParseJSON(data)
	if err != nil {
		t.Fatalf("ParseJSON returned error: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0].Text != "Hello there." {
		t.Fatalf("expected trimmed text, got %q", segments[0].Text)
	}
	if segments[0].Index != 0 || segments[1].Index != 1 {
		t.Fatalf("unexpected indices: %d %d", segments[0].Index, segments[1].Index)
	}
	if segments[1].Start != 2.5 || segments[1].End != 5 {
		t.Fatalf("unexpected timing: %+v", segments[1])
	}
}

func TestParseSRT(t *testing.T) {
	srt := "1\n00:00:00,000 --> 00:00:01,830\nI'm happy to\nhave you here today.\n\n" +
		"2\n00:01:01,910 --> 00:01:03,610\nAs I'm sure you're aware.\n"
	segments, err := transcript.ParseSRT(srt)
	if err != nil {
		t.Fatalf("ParseSRT returned error: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0].Text != "I'm happy to have you here today." {
		t.Fatalf("unexpected joined cue text: %q", segments[0].Text)
	}
	if segments[0].Start != 0 || segments[0].End != 1.83 {
		t.Fatalf("unexpected timing: %+v", segments[0])
	}
	if segments[1].Start != 61.91 {
		t.Fatalf("expected minute offset applied, got %v", segments[1].Start)
	}
}

func TestParseSRTRejectsBadTimestamp(t *testing.T) {
	if _, err := transcript.ParseSRT("1\nnot-a-time --> 00:00:01,000\nhi\n"); err == nil {
		t.Fatal("expected timestamp error")
	}
}

func TestLoadFileByExtension(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "ref.json")
	if err := os.WriteFile(jsonPath, []byte(`{"segments":[{"start":1,"end":2,"text":"hi"}],"language":"en"}`), 0o644); err != nil {
		t.Fatalf("write json: %v", err)
	}
	input, err := transcript.LoadFile(jsonPath)
	if err != nil {
		t.Fatalf("LoadFile json: %v", err)
	}
	if len(input.Segments) != 1 || input.Text != "hi" {
		t.Fatalf("unexpected json input: %+v", input)
	}
	if input.Language != "en" {
		t.Fatalf("unexpected language: %q", input.Language)
	}

	txtPath := filepath.Join(dir, "query.txt")
	if err := os.WriteFile(txtPath, []byte("plain transcript text\n"), 0o644); err != nil {
		t.Fatalf("write txt: %v", err)
	}
	input, err = transcript.LoadFile(txtPath)
	if err != nil {
		t.Fatalf("LoadFile txt: %v", err)
	}
	if len(input.Segments) != 0 {
		t.Fatalf("plain text should carry no segments: %+v", input.Segments)
	}
	if input.Text != "plain transcript text" {
		t.Fatalf("unexpected text: %q", input.Text)
	}
}

func TestFullTextSkipsBlankSegments(t *testing.T) {
	segments := []transcript.Segment{
		{Text: "one"},
		{Text: "   "},
		{Text: "two"},
	}
	if got := transcript.FullText(segments); got != "one two" {
		t.Fatalf("FullText = %q", got)
	}
}
