package embedding

import (
	"math"
	"testing"
)

func TestNormalizeProducesUnitLength(t *testing.T) {
	vec := Normalize([]float32{3, 4})
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if math.Abs(sum-1) > 1e-6 {
		t.Fatalf("expected unit length, got squared norm %v", sum)
	}
	if math.Abs(float64(vec[0])-0.6) > 1e-6 || math.Abs(float64(vec[1])-0.8) > 1e-6 {
		t.Fatalf("unexpected normalized vector: %v", vec)
	}
}

func TestNormalizeLeavesZeroVector(t *testing.T) {
	vec := Normalize([]float32{0, 0, 0})
	for _, v := range vec {
		if v != 0 {
			t.Fatalf("zero vector changed: %v", vec)
		}
	}
}

func TestCosine(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"mismatched dims", []float32{1, 0}, []float32{1, 0, 0}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
	}
	for _, tc := range cases {
		if got := Cosine(tc.a, tc.b); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("%s: Cosine = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestDotMatchesCosineForUnitVectors(t *testing.T) {
	a := Normalize([]float32{2, 5, 1})
	b := Normalize([]float32{1, 3, 4})
	if got, want := Dot(a, b), Cosine(a, b); math.Abs(got-want) > 1e-6 {
		t.Fatalf("Dot = %v, Cosine = %v", got, want)
	}
}

func TestResultFailed(t *testing.T) {
	if (Result{Vector: []float32{1}}).Failed() {
		t.Fatal("vector result reported failed")
	}
	if !(Result{}).Failed() {
		t.Fatal("empty result should report failed")
	}
}
