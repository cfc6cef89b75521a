package matching

import (
	"context"
	"fmt"
	"log/slog"

	"earmark/internal/chunking"
	"earmark/internal/embedding"
	"earmark/internal/textutil"
	"earmark/internal/vectorstore"
)

// Searcher answers similarity queries against one corpus snapshot. A run
// issues every query through the same Searcher, so handing Run a pinned
// snapshot keeps the whole comparison on a single generation.
type Searcher interface {
	Query(ctx context.Context, vector []float32, topK int, minSimilarity float64) ([]vectorstore.Match, error)
}

// Config holds similarity search and verdict thresholds.
type Config struct {
	TopK               int
	MinSimilarity      float64
	CertaintyBar       float64
	StitchingTolerance float64
	MinSupportCount    int
	DegradedTolerance  float64
	ShortQueryChars    int
	ShortQueryFloor    float64
	// LexicalOverlapMin rejects semantic matches whose reference text does
	// not actually contain the query chunk's words. Zero disables the gate.
	LexicalOverlapMin float64
}

// Support is one accepted match: a query chunk landing on a timed span of
// the reference corpus.
type Support struct {
	QueryChunkID string
	Match        vectorstore.Match
}

// MatchSet aggregates the per-chunk search outcomes for one query.
// Untimed holds accepted matches against reference chunks without
// timestamps; they cannot anchor a region but still carry the verdict
// when the whole corpus is untimed.
type MatchSet struct {
	Supports      []Support
	Untimed       []Support
	Floor         float64
	TotalChunks   int
	MatchedChunks int
	FailedChunks  int
	GatedHits     int
}

// Matcher runs per-chunk similarity search.
type Matcher struct {
	cfg    Config
	logger *slog.Logger
}

// NewMatcher constructs a matcher with the given thresholds.
func NewMatcher(cfg Config, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{
		cfg:    cfg,
		logger: logger.With("component", "matching"),
	}
}

// Run queries searcher once per successfully embedded chunk. Chunks whose
// embedding failed are excluded and counted; index errors abort the run.
func (m *Matcher) Run(ctx context.Context, searcher Searcher, chunks []chunking.Chunk, results []embedding.Result) (MatchSet, error) {
	if len(chunks) != len(results) {
		return MatchSet{}, fmt.Errorf("matching: %d chunks but %d embedding results", len(chunks), len(results))
	}

	set := MatchSet{
		Floor:       m.floorFor(chunks),
		TotalChunks: len(chunks),
	}
	for i, chunk := range chunks {
		if results[i].Failed() {
			set.FailedChunks++
			continue
		}

		matches, err := searcher.Query(ctx, results[i].Vector, m.cfg.TopK, set.Floor)
		if err != nil {
			return MatchSet{}, err
		}

		var accepted int
		for _, match := range matches {
			if m.cfg.LexicalOverlapMin > 0 &&
				textutil.OverlapRatio(chunk.Text, match.Item.Text) < m.cfg.LexicalOverlapMin {
				set.GatedHits++
				continue
			}
			accepted++
			support := Support{
				QueryChunkID: chunk.ID,
				Match:        match,
			}
			if match.Item.Timed {
				set.Supports = append(set.Supports, support)
			} else {
				set.Untimed = append(set.Untimed, support)
			}
		}
		if accepted > 0 {
			set.MatchedChunks++
		}
	}

	m.logger.Debug("matching complete",
		"chunks", set.TotalChunks,
		"matched", set.MatchedChunks,
		"failed", set.FailedChunks,
		"supports", len(set.Supports),
		"untimed", len(set.Untimed),
		"gated", set.GatedHits,
		"floor", set.Floor)
	return set, nil
}

// floorFor picks the similarity floor. Very short queries embed with less
// context and score lower against their own source, so they get a relaxed
// floor.
func (m *Matcher) floorFor(chunks []chunking.Chunk) float64 {
	if m.cfg.ShortQueryChars <= 0 {
		return m.cfg.MinSimilarity
	}
	var total int
	for _, chunk := range chunks {
		total += len([]rune(chunk.Text))
	}
	if total < m.cfg.ShortQueryChars && m.cfg.ShortQueryFloor < m.cfg.MinSimilarity {
		return m.cfg.ShortQueryFloor
	}
	return m.cfg.MinSimilarity
}
