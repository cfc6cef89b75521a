package matching

import "sort"

// Region is a contiguous span of the reference recording where the query
// content appears, with the mean similarity of its supporting matches.
type Region struct {
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
	Support    int     `json:"support"`
}

// Duration returns the region's length in seconds.
func (r Region) Duration() float64 {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

// MergeRegions stitches supports into regions. Intervals whose gap is at
// most tolerance become one region; regions with fewer than minSupport
// supports are discarded as noise. The result is ordered by start time.
func MergeRegions(supports []Support, tolerance float64, minSupport int) []Region {
	if len(supports) == 0 {
		return nil
	}
	if minSupport < 1 {
		minSupport = 1
	}

	intervals := make([]Support, len(supports))
	copy(intervals, supports)
	sort.Slice(intervals, func(i, j int) bool {
		if intervals[i].Match.Item.Start != intervals[j].Match.Item.Start {
			return intervals[i].Match.Item.Start < intervals[j].Match.Item.Start
		}
		return intervals[i].Match.Item.End < intervals[j].Match.Item.End
	})

	var (
		regions []Region
		current Region
		simSum  float64
	)
	flush := func() {
		if current.Support >= minSupport {
			current.Confidence = simSum / float64(current.Support)
			regions = append(regions, current)
		}
	}

	for i, support := range intervals {
		item := support.Match.Item
		if i == 0 {
			current = Region{Start: item.Start, End: item.End, Support: 1}
			simSum = support.Match.Similarity
			continue
		}
		if item.Start <= current.End+tolerance {
			if item.End > current.End {
				current.End = item.End
			}
			current.Support++
			simSum += support.Match.Similarity
			continue
		}
		flush()
		current = Region{Start: item.Start, End: item.End, Support: 1}
		simSum = support.Match.Similarity
	}
	flush()
	return regions
}

// OverallConfidence is the duration-weighted mean of region confidences.
// Zero-duration regions fall back to an unweighted mean so a verdict still
// exists for degenerate spans.
func OverallConfidence(regions []Region) float64 {
	if len(regions) == 0 {
		return 0
	}
	var weighted, total float64
	for _, region := range regions {
		weighted += region.Confidence * region.Duration()
		total += region.Duration()
	}
	if total > 0 {
		return weighted / total
	}
	var sum float64
	for _, region := range regions {
		sum += region.Confidence
	}
	return sum / float64(len(regions))
}
