package testsupport

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"strings"
	"sync"

	"earmark/internal/embedding"
)

// hashDim is large enough that vectors of unrelated texts are nearly
// orthogonal, keeping fixture similarities far from any threshold.
const hashDim = 256

// ErrEmbedDenied marks items the fake embedder was told to fail.
var ErrEmbedDenied = errors.New("embedding denied by test")

// HashEmbedder is a deterministic in-process embedder: identical texts map
// to identical unit vectors, unrelated texts to nearly orthogonal ones.
type HashEmbedder struct {
	mu        sync.Mutex
	failTexts map[string]bool
	calls     int
	failAll   bool
}

// NewHashEmbedder constructs a fake embedder.
func NewHashEmbedder() *HashEmbedder {
	return &HashEmbedder{failTexts: make(map[string]bool)}
}

// FailText makes every future embedding of texts containing marker fail.
func (e *HashEmbedder) FailText(marker string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failTexts[marker] = true
}

// FailAll makes every future batch fail entirely.
func (e *HashEmbedder) FailAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failAll = true
}

// Calls reports how many batches were embedded.
func (e *HashEmbedder) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// EmbedBatch implements embedding.Embedder.
func (e *HashEmbedder) EmbedBatch(_ context.Context, texts []string) ([]embedding.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.failAll {
		return nil, errors.New("embedder down")
	}

	results := make([]embedding.Result, len(texts))
	for i, text := range texts {
		if e.denied(text) {
			results[i] = embedding.Result{Err: ErrEmbedDenied}
			continue
		}
		results[i] = embedding.Result{Vector: HashVector(text)}
	}
	return results, nil
}

func (e *HashEmbedder) denied(text string) bool {
	for marker := range e.failTexts {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// HashVector maps text to a deterministic unit vector.
func HashVector(text string) []float32 {
	vector := make([]float32, hashDim)
	seed := sha256.Sum256([]byte(text))
	var counter uint64
	for i := 0; i < hashDim; {
		block := sha256.Sum256(append(seed[:], byte(counter), byte(counter>>8)))
		counter++
		for j := 0; j+4 <= len(block) && i < hashDim; j += 4 {
			bits := binary.LittleEndian.Uint32(block[j:])
			// Map to [-1, 1).
			vector[i] = float32(int32(bits)) / (1 << 31)
			i++
		}
	}
	return embedding.Normalize(vector)
}
