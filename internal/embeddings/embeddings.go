// Package embeddings provides vector representations for text and the
// similarity math used by the collection store.
package embeddings

import (
	"context"
	"math"
)

// Provider produces vector representations for text.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// CosineSimilarity computes cosine similarity between two vectors.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// CosineDistance converts similarity to a distance where lower means more
// similar, matching the ranking contract of collection queries.
func CosineDistance(a, b []float32) float64 {
	return 1 - CosineSimilarity(a, b)
}
