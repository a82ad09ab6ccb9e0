// Package embed defines the optional semantic-embedding oracle. Its absence
// or failure is never fatal: the scoring engine falls back to rule-based
// scoring.
package embed

import (
	"context"
	"math"
)

// Embedder maps text to a fixed-length numeric vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Cosine returns the cosine similarity of two vectors, clamped to [0,1].
// Mismatched or empty vectors yield 0.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
