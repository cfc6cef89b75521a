package matching

// Status classifies a comparison outcome. An unindexed corpus is its own
// state rather than a "not found", which would overstate what was checked.
type Status string

const (
	StatusFound            Status = "FOUND"
	StatusNotFound         Status = "NOT_FOUND"
	StatusNoPrimaryIndexed Status = "NO_PRIMARY_INDEXED"
)

// Result is the final verdict for one comparison.
type Result struct {
	Status            Status   `json:"status"`
	Found             bool     `json:"found"`
	OverallConfidence float64  `json:"overall_confidence"`
	Regions           []Region `json:"regions,omitempty"`
	TotalChunks       int      `json:"total_chunks"`
	MatchedChunks     int      `json:"matched_chunks"`
	FailedChunks      int      `json:"failed_chunks"`
	UntimedHits       int      `json:"untimed_hits"`
	GatedHits         int      `json:"gated_hits"`
	Floor             float64  `json:"similarity_floor"`
	Degraded          bool     `json:"degraded"`
}

// Decide turns a match set and its merged regions into a verdict. With
// timed support the verdict is FOUND only when at least one region
// survived merging and the duration-weighted confidence clears the
// certainty bar. A corpus without timestamps yields no regions at all, so
// the verdict falls back to the mean similarity of the accepted untimed
// matches. Raising the bar can only flip FOUND to NOT_FOUND, never the
// reverse.
func Decide(set MatchSet, regions []Region, certaintyBar, degradedTolerance float64) Result {
	result := Result{
		Status:            StatusNotFound,
		Regions:           regions,
		OverallConfidence: OverallConfidence(regions),
		TotalChunks:       set.TotalChunks,
		MatchedChunks:     set.MatchedChunks,
		FailedChunks:      set.FailedChunks,
		UntimedHits:       len(set.Untimed),
		GatedHits:         set.GatedHits,
		Floor:             set.Floor,
	}
	switch {
	case len(regions) > 0:
		if result.OverallConfidence >= certaintyBar {
			result.Status = StatusFound
			result.Found = true
		}
	case len(set.Untimed) > 0:
		var sum float64
		for _, support := range set.Untimed {
			sum += support.Match.Similarity
		}
		result.OverallConfidence = sum / float64(len(set.Untimed))
		if result.OverallConfidence >= certaintyBar {
			result.Status = StatusFound
			result.Found = true
		}
	}
	if set.TotalChunks > 0 {
		failedFraction := float64(set.FailedChunks) / float64(set.TotalChunks)
		result.Degraded = failedFraction > degradedTolerance
	}
	return result
}

// NoPrimaryIndexed is the verdict for a comparison against an empty index.
func NoPrimaryIndexed(totalChunks int) Result {
	return Result{
		Status:      StatusNoPrimaryIndexed,
		TotalChunks: totalChunks,
	}
}
