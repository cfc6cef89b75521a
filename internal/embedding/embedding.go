package embedding

import (
	"context"
	"math"
)

// Result carries the embedding outcome for a single input text. A failed
// item does not invalidate the rest of its batch; failed items are excluded
// from indexing and matching and counted by the caller.
type Result struct {
	Vector []float32
	Err    error
}

// Failed reports whether this item produced no usable vector.
func (r Result) Failed() bool {
	return r.Err != nil || len(r.Vector) == 0
}

// Embedder turns chunk texts into fixed-dimension vectors. Implementations
// return one Result per input text, in input order. The returned error is
// reserved for total failure (no item could be embedded).
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([]Result, error)
}

// Normalize scales the vector to unit length in place and returns it.
// Zero vectors are returned unchanged.
func Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	norm := math.Sqrt(sum)
	for i, v := range vec {
		vec[i] = float32(float64(v) / norm)
	}
	return vec
}

// Cosine returns the cosine similarity of two vectors. Mismatched or zero
// vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Dot returns the inner product of two vectors. For unit-normalized inputs
// this equals their cosine similarity.
func Dot(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}
