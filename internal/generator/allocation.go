package generator

import (
	"math"

	"gotimbre/domain/core"
)

// Quota is the number of candidates one category receives per batch
type Quota struct {
	Category core.Category `json:"category"`
	Count    int           `json:"count"`
}

// ComputeAllocation splits a batch budget across active categories in
// proportion to their prior weights. Weights are renormalized over the given
// categories; each share is floored, raised to at least 1, and the rounding
// remainder goes to the last category. The counts always sum to budget:
// when the minimum-of-one rule overshoots, the largest quotas (latest first on
// ties) give back one at a time, and when budget is smaller than the number of
// categories the trailing categories receive zero.
func ComputeAllocation(categories []core.Category, weights map[core.Category]float64, budget int) []Quota {
	if len(categories) == 0 || budget <= 0 {
		return nil
	}

	total := 0.0
	for _, cat := range categories {
		total += weights[cat]
	}

	quotas := make([]Quota, len(categories))
	sum := 0
	for i, cat := range categories {
		share := 1.0 / float64(len(categories))
		if total > 0 {
			share = weights[cat] / total
		}
		n := int(math.Floor(float64(budget) * share))
		if n < 1 {
			n = 1
		}
		quotas[i] = Quota{Category: cat, Count: n}
		sum += n
	}

	remainder := budget - sum
	if remainder > 0 {
		quotas[len(quotas)-1].Count += remainder
		return quotas
	}

	for remainder < 0 {
		idx := -1
		for i := range quotas {
			if quotas[i].Count > 1 && (idx < 0 || quotas[i].Count >= quotas[idx].Count) {
				idx = i
			}
		}
		if idx < 0 {
			break
		}
		quotas[idx].Count--
		remainder++
	}
	for i := len(quotas) - 1; remainder < 0 && i >= 0; i-- {
		quotas[i].Count--
		remainder++
	}
	return quotas
}

// Total sums quota counts
func Total(quotas []Quota) int {
	n := 0
	for _, q := range quotas {
		n += q.Count
	}
	return n
}
