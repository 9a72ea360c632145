package core

import (
	"encoding/json"
	"math"
)

// CosineSimilarity computes the cosine similarity between two vectors.
// Returns 0 when the vectors have mismatched lengths or either norm is zero.
// Malformed vector data is treated as "no similarity", never as an error.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
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

	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// NormalizeVector normalizes a vector to unit length.
// Returns a new vector. If the input is a zero vector, returns a zero vector.
func NormalizeVector(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var magnitude float32
	for _, val := range v {
		magnitude += val * val
	}
	magnitude = float32(math.Sqrt(float64(magnitude)))

	// Can't normalize zero vector
	if magnitude == 0 {
		result := make([]float32, len(v))
		return result
	}

	result := make([]float32, len(v))
	for i, val := range v {
		result[i] = val / magnitude
	}
	return result
}

// DecodeVector parses a JSON-encoded vector as stored by external exporters.
// Returns nil for malformed data; cosine similarity against a nil vector is 0,
// so a corrupt stored embedding degrades a single candidate instead of failing
// the whole search.
func DecodeVector(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	var v []float32
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	return v
}
