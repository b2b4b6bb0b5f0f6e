package llm

import (
	"hash/fnv"
	"math"
)

// StandInDimensions is the fixed dimensionality of stand-in vectors,
// matching the 384-dim sentence-embedding models the app defaults to.
const StandInDimensions = 384

// standInModel is the model label reported for stand-in embeddings so
// callers can tell them apart from real vectors.
const standInModel = "mock-embedding"

// standInVector derives a deterministic pseudo-embedding from text.
// Identical inputs always produce identical vectors; every component
// lies in [-1, 1]. It exists only to preserve the embed signature on
// backends that cannot embed — it carries no semantic meaning and must
// never feed similarity search.
func standInVector(text string) []float32 {
	h := fnv.New64a()
	h.Write([]byte(text)) //nolint:errcheck // fnv Write never fails
	seed := h.Sum64()

	vec := make([]float32, StandInDimensions)
	for i := range vec {
		// seed+i wraps on overflow, which is fine: determinism is the
		// only requirement here.
		u := float64(seed+uint64(i)) / float64(math.MaxUint64)
		vec[i] = float32(u*2 - 1)
	}
	return vec
}
