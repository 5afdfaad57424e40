// Package similarity ranks stored embedding vectors against a query vector
// by cosine similarity. It is a pure, stateless linear scan: at the corpus
// sizes this system sees (hundreds to low thousands of bugs) an index would
// buy nothing, and the Rank contract leaves room to swap one in later.
package similarity

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrDimensionMismatch means a corpus vector's length disagrees with the
// query's. Embeddings from a single provider version always agree, so this
// is an invariant violation, not a user error.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Vector is one stored (id, embedding) pair.
type Vector struct {
	ID     int
	Values []float32
}

// Result is one ranked match.
type Result struct {
	ID    int
	Score float64
}

// Cosine computes the cosine similarity between two vectors. Accumulation is
// done in float64 to limit rounding drift. A zero-norm vector yields 0, not
// NaN. Mismatched lengths return ErrDimensionMismatch.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		ai := float64(a[i])
		bi := float64(b[i])
		dot += ai * bi
		normA += ai * ai
		normB += bi * bi
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / math.Sqrt(normA*normB), nil
}

// Rank scores every corpus vector against query and returns at most k
// results in descending score order. Ties keep corpus order. A non-positive
// k returns nil. Any dimension mismatch fails the whole call rather than
// silently skipping the offending vector.
func Rank(query []float32, corpus []Vector, k int) ([]Result, error) {
	if k <= 0 || len(corpus) == 0 {
		return nil, nil
	}

	results := make([]Result, 0, len(corpus))
	for _, v := range corpus {
		score, err := Cosine(query, v.Values)
		if err != nil {
			return nil, fmt.Errorf("corpus vector %d: %w", v.ID, err)
		}
		results = append(results, Result{ID: v.ID, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}
