package generator

import (
	"fmt"
	"testing"

	"gotimbre/domain/core"

	"github.com/stretchr/testify/assert"
)

func categoriesN(n int) []core.Category {
	out := make([]core.Category, n)
	for i := range out {
		out[i] = core.Category(fmt.Sprintf("cat%02d", i))
	}
	return out
}

func TestComputeAllocationAlwaysSumsToBudget(t *testing.T) {
	weightSets := []func(i int) float64{
		func(i int) float64 { return 1 },
		func(i int) float64 { return float64(i + 1) },
		func(i int) float64 { return 1.0 / float64(i+1) },
		func(i int) float64 {
			if i == 0 {
				return 1000
			}
			return 0.001
		},
	}

	for n := 1; n <= 7; n++ {
		cats := categoriesN(n)
		for wi, wf := range weightSets {
			weights := make(map[core.Category]float64, n)
			for i, c := range cats {
				weights[c] = wf(i)
			}
			for budget := 1; budget <= 64; budget++ {
				quotas := ComputeAllocation(cats, weights, budget)
				assert.Equal(t, budget, Total(quotas), "n=%d weights=%d budget=%d", n, wi, budget)
				if budget >= n {
					for _, q := range quotas {
						assert.GreaterOrEqual(t, q.Count, 1, "n=%d weights=%d budget=%d %s", n, wi, budget, q.Category)
					}
				}
			}
		}
	}
}

func TestComputeAllocation(t *testing.T) {
	tests := []struct {
		name     string
		weights  map[core.Category]float64
		budget   int
		expected []int
	}{
		{"proportional", map[core.Category]float64{"a": 1, "b": 1, "c": 2}, 32, []int{8, 8, 16}},
		{"remainder to last", map[core.Category]float64{"a": 1, "b": 1, "c": 1}, 32, []int{10, 10, 12}},
		{"renormalized", map[core.Category]float64{"a": 0.2, "b": 0.2, "c": 0.1}, 10, []int{4, 4, 2}},
		{"minimum of one then give back", map[core.Category]float64{"a": 100, "b": 0.001, "c": 0.001}, 4, []int{2, 1, 1}},
		{"budget below category count", map[core.Category]float64{"a": 1, "b": 1, "c": 1}, 2, []int{1, 1, 0}},
	}

	cats := []core.Category{"a", "b", "c"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quotas := ComputeAllocation(cats, tt.weights, tt.budget)
			got := make([]int, len(quotas))
			for i, q := range quotas {
				got[i] = q.Count
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestComputeAllocationEmpty(t *testing.T) {
	assert.Nil(t, ComputeAllocation(nil, nil, 32))
	assert.Nil(t, ComputeAllocation([]core.Category{"a"}, nil, 0))
}
