package indexer

import (
	"gonum.org/v1/gonum/floats"
)

// Cosine returns the cosine similarity of two folded vectors.  Vectors of
// different lengths, empty vectors and zero vectors have similarity 0.
func Cosine(a []float64, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	normA, normB := floats.Norm(a, 2), floats.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 0
	}
	return floats.Dot(a, b) / (normA * normB)
}
