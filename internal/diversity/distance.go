package diversity

import (
	"gotimbre/domain/candidate"

	"gonum.org/v1/gonum/floats"
)

// Weights are the two terms of the candidate distance
type Weights struct {
	Feature float64 `json:"feature_weight"`
	Tag     float64 `json:"tag_weight"`
}

// DefaultWeights returns W_FEAT=1.0, W_TAG=0.25
func DefaultWeights() Weights {
	return Weights{Feature: 1.0, Tag: 0.25}
}

// Euclidean is the L2 distance between two equal-length signatures
func Euclidean(a, b []float64) float64 {
	return floats.Distance(a, b, 2)
}

// Jaccard is 1 - |A∩B|/|A∪B|, and 0 when both sets are empty
func Jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(a))
	for _, s := range a {
		set[s] = true
	}
	inter, union := 0, len(set)
	seen := make(map[string]bool, len(b))
	for _, s := range b {
		if seen[s] {
			continue
		}
		seen[s] = true
		if set[s] {
			inter++
		} else {
			union++
		}
	}
	return 1 - float64(inter)/float64(union)
}

// Distance combines signature distance and tag dissimilarity. Candidates
// without features contribute a zero signature.
func (w Weights) Distance(a, b *candidate.Candidate) float64 {
	fa := a.Features.OrElse(candidate.Features{})
	fb := b.Features.OrElse(candidate.Features{})
	return w.Feature*Euclidean(fa.Signature(), fb.Signature()) + w.Tag*Jaccard(a.TagSet(), b.TagSet())
}

// matrix holds every pairwise distance of a pool
type matrix struct {
	n int
	d []float64
}

func newMatrix(pool candidate.Pool, w Weights) matrix {
	n := len(pool)
	m := matrix{n: n, d: make([]float64, n*n)}
	tags := make([][]string, n)
	sigs := make([][]float64, n)
	for i, c := range pool {
		tags[i] = c.TagSet()
		sigs[i] = c.Features.OrElse(candidate.Features{}).Signature()
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := w.Feature*Euclidean(sigs[i], sigs[j]) + w.Tag*Jaccard(tags[i], tags[j])
			m.d[i*n+j] = v
			m.d[j*n+i] = v
		}
	}
	return m
}

func (m matrix) at(i, j int) float64 { return m.d[i*m.n+j] }
