package similarity

import (
	"errors"
	"math"
	"testing"
)

func TestCosine_IdenticalVectors(t *testing.T) {
	a := []float32{1, 2, 3, 4, 5}
	score, err := Cosine(a, a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(score-1.0) > 1e-6 {
		t.Errorf("expected ~1.0 for identical vectors, got %f", score)
	}
}

func TestCosine_OrthogonalVectors(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{0, 1, 0}
	score, err := Cosine(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(score) > 1e-6 {
		t.Errorf("expected ~0.0 for orthogonal vectors, got %f", score)
	}
}

func TestCosine_KnownPair(t *testing.T) {
	// cos(45°) ≈ 0.7071
	a := []float32{1, 0}
	b := []float32{1, 1}
	score, err := Cosine(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := 1.0 / math.Sqrt(2.0)
	if math.Abs(score-expected) > 1e-6 {
		t.Errorf("expected ~%f, got %f", expected, score)
	}
}

func TestCosine_ZeroVector(t *testing.T) {
	a := []float32{0, 0, 0}
	b := []float32{1, 2, 3}
	score, err := Cosine(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 0 {
		t.Errorf("expected 0 for zero vector, got %f", score)
	}
	if math.IsNaN(score) {
		t.Error("zero vector must not produce NaN")
	}
}

func TestCosine_DimensionMismatch(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{1, 2}
	_, err := Cosine(a, b)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestRank_Ordering(t *testing.T) {
	query := []float32{1, 0}
	corpus := []Vector{
		{ID: 1, Values: []float32{0, 1}},  // orthogonal, score 0
		{ID: 2, Values: []float32{1, 0}},  // identical, score 1
		{ID: 3, Values: []float32{1, 1}},  // score ~0.707
	}

	results, err := Rank(query, corpus, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	wantOrder := []int{2, 3, 1}
	for i, want := range wantOrder {
		if results[i].ID != want {
			t.Errorf("position %d: expected id %d, got %d", i, want, results[i].ID)
		}
	}
	if results[0].Score < results[1].Score || results[1].Score < results[2].Score {
		t.Error("scores are not descending")
	}
}

func TestRank_TopKBound(t *testing.T) {
	query := []float32{1, 0}
	corpus := []Vector{
		{ID: 1, Values: []float32{1, 0}},
		{ID: 2, Values: []float32{0, 1}},
	}

	for _, tc := range []struct {
		k    int
		want int
	}{
		{k: 0, want: 0},
		{k: 1, want: 1},
		{k: 2, want: 2},
		{k: 10, want: 2},
	} {
		results, err := Rank(query, corpus, tc.k)
		if err != nil {
			t.Fatalf("k=%d: unexpected error: %v", tc.k, err)
		}
		if len(results) != tc.want {
			t.Errorf("k=%d: expected %d results, got %d", tc.k, tc.want, len(results))
		}
	}
}

func TestRank_SelfSimilarityCeiling(t *testing.T) {
	query := []float32{0.3, 0.5, 0.8}
	corpus := []Vector{
		{ID: 1, Values: []float32{0.3, 0.5, 0.8}},
		{ID: 2, Values: []float32{0.9, 0.1, 0.2}},
		{ID: 3, Values: []float32{0.2, 0.6, 0.7}},
	}

	results, err := Rank(query, corpus, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].ID != 1 {
		t.Fatalf("expected the identical vector first, got id %d", results[0].ID)
	}
	if math.Abs(results[0].Score-1.0) > 1e-6 {
		t.Errorf("self similarity should be ~1.0, got %f", results[0].Score)
	}
	for _, r := range results[1:] {
		if r.Score >= results[0].Score {
			t.Errorf("id %d score %f should be below the self-similarity ceiling", r.ID, r.Score)
		}
	}
}

func TestRank_TiesKeepCorpusOrder(t *testing.T) {
	query := []float32{1, 0}
	// Both orthogonal to the query: identical scores.
	corpus := []Vector{
		{ID: 7, Values: []float32{0, 1}},
		{ID: 3, Values: []float32{0, 2}},
	}

	results, err := Rank(query, corpus, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].ID != 7 || results[1].ID != 3 {
		t.Errorf("tied scores must keep corpus order, got %d then %d", results[0].ID, results[1].ID)
	}
}

func TestRank_ZeroVectorInCorpus(t *testing.T) {
	query := []float32{1, 2, 3}
	corpus := []Vector{
		{ID: 1, Values: []float32{0, 0, 0}},
	}

	results, err := Rank(query, corpus, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Score != 0 {
		t.Errorf("zero corpus vector should rank with score 0, got %+v", results)
	}
}

func TestRank_DimensionMismatch(t *testing.T) {
	query := []float32{1, 2, 3}
	corpus := []Vector{
		{ID: 1, Values: []float32{1, 2, 3}},
		{ID: 2, Values: []float32{1, 2}},
	}

	_, err := Rank(query, corpus, 2)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestRank_EmptyCorpus(t *testing.T) {
	results, err := Rank([]float32{1, 2}, nil, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results for empty corpus, got %d", len(results))
	}
}
