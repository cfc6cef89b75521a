package locator

import (
	"context"
	"errors"
	"log/slog"

	"earmark/internal/chunking"
	"earmark/internal/config"
	"earmark/internal/corpus"
	"earmark/internal/embedding"
	"earmark/internal/language"
	"earmark/internal/matching"
	"earmark/internal/services"
	"earmark/internal/transcript"
	"earmark/internal/vectorstore"
)

// ReferenceMeta carries optional provenance stored with every indexed chunk.
type ReferenceMeta struct {
	Language         string
	SourceName       string
	SourceConfidence float64
}

// IndexReport summarizes one reference indexing run.
type IndexReport struct {
	TotalChunks int              `json:"total_chunks"`
	Indexed     int              `json:"indexed"`
	Excluded    int              `json:"excluded"`
	Degraded    bool             `json:"degraded"`
	Issues      []chunking.Issue `json:"issues,omitempty"`
}

// Service wires chunking, embedding, the corpus manager, and matching into
// the two top-level operations: indexing a reference and comparing a query
// against it.
type Service struct {
	cfg      *config.Config
	embedder embedding.Embedder
	corpus   *corpus.Manager
	matcher  *matching.Matcher
	logger   *slog.Logger
}

// NewService constructs the locator service.
func NewService(cfg *config.Config, embedder embedding.Embedder, manager *corpus.Manager, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:      cfg,
		embedder: embedder,
		corpus:   manager,
		matcher:  matching.NewMatcher(matchingConfig(cfg), logger),
		logger:   logger.With("component", "locator"),
	}
}

func matchingConfig(cfg *config.Config) matching.Config {
	return matching.Config{
		TopK:               cfg.Matching.TopK,
		MinSimilarity:      cfg.Matching.MinSimilarity,
		CertaintyBar:       cfg.Matching.CertaintyBar,
		StitchingTolerance: cfg.Matching.StitchingToleranceSeconds,
		MinSupportCount:    cfg.Matching.MinSupportCount,
		DegradedTolerance:  cfg.Matching.DegradedTolerance,
		ShortQueryChars:    cfg.Matching.ShortQueryChars,
		ShortQueryFloor:    cfg.Matching.ShortQueryFloor,
		LexicalOverlapMin:  cfg.Matching.LexicalOverlapMin,
	}
}

func (s *Service) chunkingConfig() chunking.Config {
	return chunking.Config{
		MaxSegmentLength: s.cfg.Chunking.MaxSegmentLength,
		MinChunkSize:     s.cfg.Chunking.MinChunkSize,
		MaxChunkSize:     s.cfg.Chunking.MaxChunkSize,
		OverlapSize:      s.cfg.Chunking.OverlapSize,
	}
}

// chunkInput produces chunks from segments when available, falling back to
// fixed text windows otherwise.
func (s *Service) chunkInput(input transcript.Input) ([]chunking.Chunk, []chunking.Issue, error) {
	if len(input.Segments) > 0 {
		return chunking.FromSegments(input.Segments, s.chunkingConfig())
	}
	chunks, err := chunking.FromText(input.Text, s.chunkingConfig())
	return chunks, nil, err
}

// IndexReference chunks and embeds the reference recording and replaces the
// indexed corpus with it. Chunks whose embedding failed are excluded and
// counted; the run fails only when nothing could be embedded or the index
// could not be written.
func (s *Service) IndexReference(ctx context.Context, input transcript.Input, meta ReferenceMeta) (IndexReport, error) {
	chunks, issues, err := s.chunkInput(input)
	if err != nil {
		return IndexReport{}, services.Wrap(services.ErrValidation, "locator", "index", "chunk reference", err)
	}
	if len(chunks) == 0 {
		return IndexReport{}, services.Wrap(services.ErrValidation, "locator", "index", "reference produced no chunks", nil)
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	results, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return IndexReport{}, err
	}

	report := IndexReport{TotalChunks: len(chunks), Issues: issues}
	lang := language.Normalize(meta.Language)
	items := make([]vectorstore.Item, 0, len(chunks))
	for i, chunk := range chunks {
		if results[i].Failed() {
			report.Excluded++
			continue
		}
		items = append(items, vectorstore.Item{
			ID:               chunk.ID,
			ChunkType:        string(chunk.Type),
			Text:             chunk.Text,
			Start:            chunk.Start,
			End:              chunk.End,
			Timed:            chunk.Timed,
			SegmentIndex:     chunk.SegmentIndex,
			Language:         lang,
			SourceName:       meta.SourceName,
			SourceConfidence: meta.SourceConfidence,
			Vector:           results[i].Vector,
		})
	}
	if len(items) == 0 {
		return IndexReport{}, services.Wrap(services.ErrEmbedding, "locator", "index", "no chunk could be embedded", nil)
	}
	report.Indexed = len(items)
	report.Degraded = degraded(report.Excluded, report.TotalChunks, s.cfg.Matching.DegradedTolerance)

	if err := s.corpus.Store(ctx, items); err != nil {
		return IndexReport{}, err
	}
	s.logger.Info("reference indexed",
		"chunks", report.TotalChunks,
		"indexed", report.Indexed,
		"excluded", report.Excluded,
		"dropped_segments", len(issues))
	return report, nil
}

// Compare chunks and embeds the query and decides whether its content
// appears in the indexed reference. An unindexed corpus yields a
// NO_PRIMARY_INDEXED verdict, not an error.
func (s *Service) Compare(ctx context.Context, input transcript.Input) (matching.Result, error) {
	chunks, _, err := s.chunkInput(input)
	if err != nil {
		return matching.Result{}, services.Wrap(services.ErrValidation, "locator", "compare", "chunk query", err)
	}
	if len(chunks) == 0 {
		return matching.Result{}, services.Wrap(services.ErrValidation, "locator", "compare", "query produced no chunks", nil)
	}

	// The generation is pinned before embedding so the whole comparison
	// reads one corpus snapshot, even if a replacement lands mid-run.
	snapshot, err := s.corpus.Snapshot()
	if err != nil {
		if errors.Is(err, services.ErrNoPrimaryIndexed) {
			return matching.NoPrimaryIndexed(len(chunks)), nil
		}
		return matching.Result{}, err
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	results, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return matching.Result{}, err
	}

	set, err := s.matcher.Run(ctx, snapshot, chunks, results)
	if err != nil {
		return matching.Result{}, err
	}

	regions := matching.MergeRegions(set.Supports,
		s.cfg.Matching.StitchingToleranceSeconds,
		s.cfg.Matching.MinSupportCount)
	result := matching.Decide(set, regions,
		s.cfg.Matching.CertaintyBar,
		s.cfg.Matching.DegradedTolerance)

	s.logger.Info("comparison complete",
		"status", string(result.Status),
		"confidence", result.OverallConfidence,
		"regions", len(result.Regions),
		"degraded", result.Degraded)
	return result, nil
}

func degraded(failed, total int, tolerance float64) bool {
	if total == 0 {
		return false
	}
	return float64(failed)/float64(total) > tolerance
}
