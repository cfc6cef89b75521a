// Package matching turns per-chunk similarity search results into a
// verdict: matched spans are stitched into regions, regions are scored by
// duration-weighted confidence, and the total is judged against the
// certainty bar.
package matching
