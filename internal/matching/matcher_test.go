package matching

import (
	"context"
	"errors"
	"testing"

	"earmark/internal/chunking"
	"earmark/internal/embedding"
	"earmark/internal/logging"
	"earmark/internal/vectorstore"
)

type fakeSearcher struct {
	byVector map[float32][]vectorstore.Match
	floors   []float64
	err      error
}

func (f *fakeSearcher) Query(_ context.Context, vector []float32, topK int, minSimilarity float64) ([]vectorstore.Match, error) {
	f.floors = append(f.floors, minSimilarity)
	if f.err != nil {
		return nil, f.err
	}
	matches := f.byVector[vector[0]]
	var kept []vectorstore.Match
	for _, match := range matches {
		if match.Similarity >= minSimilarity {
			kept = append(kept, match)
		}
	}
	if len(kept) > topK {
		kept = kept[:topK]
	}
	return kept, nil
}

func matcherConfig() Config {
	return Config{
		TopK:            5,
		MinSimilarity:   0.7,
		ShortQueryChars: 10,
		ShortQueryFloor: 0.5,
	}
}

func chunkWithText(id, text string) chunking.Chunk {
	return chunking.Chunk{ID: id, Text: text, Type: chunking.TypeSegment}
}

func okVector(key float32) embedding.Result {
	return embedding.Result{Vector: []float32{key, 0, 0}}
}

func timedMatch(start, end, similarity float64) vectorstore.Match {
	return vectorstore.Match{
		Item:       vectorstore.Item{Start: start, End: end, Timed: true},
		Similarity: similarity,
	}
}

func TestRunCollectsSupports(t *testing.T) {
	searcher := &fakeSearcher{byVector: map[float32][]vectorstore.Match{
		1: {timedMatch(0, 2, 0.9), timedMatch(5, 6, 0.75)},
		2: {timedMatch(2, 4, 0.85)},
	}}
	matcher := NewMatcher(matcherConfig(), logging.NewNop())

	chunks := []chunking.Chunk{
		chunkWithText("a", "a long enough text"),
		chunkWithText("b", "another long text"),
	}
	results := []embedding.Result{okVector(1), okVector(2)}

	set, err := matcher.Run(context.Background(), searcher, chunks, results)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if set.TotalChunks != 2 || set.MatchedChunks != 2 || set.FailedChunks != 0 {
		t.Errorf("counts = %+v", set)
	}
	if len(set.Supports) != 3 {
		t.Fatalf("len(Supports) = %d, want 3", len(set.Supports))
	}
	if set.Supports[0].QueryChunkID != "a" {
		t.Errorf("Supports[0].QueryChunkID = %q, want %q", set.Supports[0].QueryChunkID, "a")
	}
	if set.Floor != 0.7 {
		t.Errorf("Floor = %v, want configured minimum", set.Floor)
	}
}

func TestRunExcludesFailedEmbeddings(t *testing.T) {
	searcher := &fakeSearcher{byVector: map[float32][]vectorstore.Match{
		1: {timedMatch(0, 2, 0.9)},
	}}
	matcher := NewMatcher(matcherConfig(), logging.NewNop())

	chunks := []chunking.Chunk{
		chunkWithText("a", "a long enough text"),
		chunkWithText("b", "another long text"),
	}
	results := []embedding.Result{okVector(1), {Err: errors.New("embed failed")}}

	set, err := matcher.Run(context.Background(), searcher, chunks, results)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if set.FailedChunks != 1 || set.MatchedChunks != 1 {
		t.Errorf("counts = %+v, want one failed and one matched", set)
	}
	if len(searcher.floors) != 1 {
		t.Errorf("searcher called %d times, want 1 (failed chunk skipped)", len(searcher.floors))
	}
}

func TestRunCountsUntimedHits(t *testing.T) {
	searcher := &fakeSearcher{byVector: map[float32][]vectorstore.Match{
		1: {
			timedMatch(0, 2, 0.9),
			{Item: vectorstore.Item{Timed: false}, Similarity: 0.8},
		},
	}}
	matcher := NewMatcher(matcherConfig(), logging.NewNop())

	set, err := matcher.Run(context.Background(), searcher,
		[]chunking.Chunk{chunkWithText("a", "a long enough text")},
		[]embedding.Result{okVector(1)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(set.Untimed) != 1 {
		t.Errorf("len(Untimed) = %d, want 1", len(set.Untimed))
	}
	if len(set.Supports) != 1 {
		t.Errorf("len(Supports) = %d, untimed matches must not become supports", len(set.Supports))
	}
}

func TestRunShortQueryRelaxesFloor(t *testing.T) {
	searcher := &fakeSearcher{byVector: map[float32][]vectorstore.Match{
		1: {timedMatch(0, 1, 0.6)},
	}}
	matcher := NewMatcher(matcherConfig(), logging.NewNop())

	set, err := matcher.Run(context.Background(), searcher,
		[]chunking.Chunk{chunkWithText("a", "hi")},
		[]embedding.Result{okVector(1)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if set.Floor != 0.5 {
		t.Errorf("Floor = %v, want relaxed short-query floor", set.Floor)
	}
	if len(set.Supports) != 1 {
		t.Errorf("len(Supports) = %d, want the 0.6 match accepted", len(set.Supports))
	}
}

func TestRunLexicalGateRejectsDivergentText(t *testing.T) {
	matchedText := func(text string, similarity float64) vectorstore.Match {
		return vectorstore.Match{
			Item:       vectorstore.Item{Start: 0, End: 2, Timed: true, Text: text},
			Similarity: similarity,
		}
	}
	searcher := &fakeSearcher{byVector: map[float32][]vectorstore.Match{
		1: {
			matchedText("the mill wheel kept turning", 0.9),
			matchedText("nothing shared here at all", 0.85),
		},
	}}
	cfg := matcherConfig()
	cfg.LexicalOverlapMin = 0.7
	matcher := NewMatcher(cfg, logging.NewNop())

	set, err := matcher.Run(context.Background(), searcher,
		[]chunking.Chunk{chunkWithText("a", "the mill wheel kept turning through")},
		[]embedding.Result{okVector(1)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(set.Supports) != 1 {
		t.Fatalf("len(Supports) = %d, want only the lexically overlapping match", len(set.Supports))
	}
	if set.GatedHits != 1 {
		t.Errorf("GatedHits = %d, want 1", set.GatedHits)
	}
	if set.Supports[0].Match.Item.Text != "the mill wheel kept turning" {
		t.Errorf("kept match text = %q", set.Supports[0].Match.Item.Text)
	}
}

func TestRunPropagatesSearcherError(t *testing.T) {
	boom := errors.New("index gone")
	matcher := NewMatcher(matcherConfig(), logging.NewNop())

	_, err := matcher.Run(context.Background(), &fakeSearcher{err: boom},
		[]chunking.Chunk{chunkWithText("a", "a long enough text")},
		[]embedding.Result{okVector(1)})
	if !errors.Is(err, boom) {
		t.Fatalf("Run err = %v, want searcher error", err)
	}
}

func TestRunLengthMismatch(t *testing.T) {
	matcher := NewMatcher(matcherConfig(), logging.NewNop())
	_, err := matcher.Run(context.Background(), &fakeSearcher{},
		[]chunking.Chunk{chunkWithText("a", "text")},
		nil)
	if err == nil {
		t.Fatal("Run with mismatched lengths succeeded, want error")
	}
}
