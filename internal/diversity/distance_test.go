package diversity

import (
	"math"
	"testing"

	"gotimbre/domain/candidate"
	"gotimbre/internal/testkit"

	"github.com/stretchr/testify/assert"
)

func TestJaccard(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []string
		expected float64
	}{
		{"both empty", nil, nil, 0},
		{"identical", []string{"x", "y"}, []string{"y", "x"}, 0},
		{"disjoint", []string{"x"}, []string{"y"}, 1},
		{"one empty", []string{"x"}, nil, 1},
		{"half", []string{"x", "y"}, []string{"y", "z"}, 1 - 1.0/3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Jaccard(tt.a, tt.b), 1e-12)
			assert.InDelta(t, tt.expected, Jaccard(tt.b, tt.a), 1e-12)
		})
	}
}

func TestCandidateDistance(t *testing.T) {
	a := testkit.ScoredCandidate("a", "fm", candidate.Features{Centroid: 0, Flatness: 0}, 0.5, map[string]string{"texture": "metallic"})
	b := testkit.ScoredCandidate("b", "fm", candidate.Features{Centroid: 0.3, Flatness: 0.4}, 0.5, map[string]string{"texture": "metallic"})
	c := testkit.ScoredCandidate("c", "noise", candidate.Features{Centroid: 0.3, Flatness: 0.4}, 0.5, map[string]string{"texture": "grainy"})

	w := DefaultWeights()
	assert.InDelta(t, 0.5, w.Distance(a, b), 1e-12)
	assert.InDelta(t, 0.5+0.25, w.Distance(a, c), 1e-12)
	assert.InDelta(t, 0.25, w.Distance(b, c), 1e-12)
	assert.Equal(t, w.Distance(a, c), w.Distance(c, a))
	assert.Equal(t, 0.0, w.Distance(a, a))

	features := Weights{Feature: 1}
	assert.InDelta(t, 0.0, features.Distance(b, c), 1e-12)

	m := newMatrix(candidate.Pool{a, b, c}, w)
	assert.Equal(t, w.Distance(a, c), m.at(0, 2))
	assert.Equal(t, m.at(2, 0), m.at(0, 2))
}

func TestEuclidean(t *testing.T) {
	assert.InDelta(t, math.Sqrt(6), Euclidean([]float64{0, 0, 0, 0, 0, 0}, []float64{1, 1, 1, 1, 1, 1}), 1e-12)
}
