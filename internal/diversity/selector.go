package diversity

import (
	"fmt"
	"math"
	"sort"

	"gotimbre/domain/candidate"
	"gotimbre/domain/core"
	"gotimbre/domain/selection"
	"gotimbre/internal"
	apperrors "gotimbre/internal/errors"

	"github.com/montanaflynn/stats"
)

// NoUsableCandidates is the deadlock reason for an empty pool
const NoUsableCandidates = "no usable candidates"

// Policy is the full selection configuration
type Policy struct {
	Constraints selection.Constraints  `json:"constraints"`
	Ladder      []selection.Relaxation `json:"ladder"`
	MaxSteps    int                    `json:"max_ladder_steps"`
	Weights     Weights                `json:"weights"`
}

// DefaultPolicy selects 8 across at least 3 categories, at most 3 per
// category, 0.15 apart, with a three-step ladder.
func DefaultPolicy() Policy {
	return Policy{
		Constraints: selection.Constraints{
			NSelect:          8,
			MinCategoryCount: 3,
			MaxPerCategory:   3,
			MinPairDistance:  0.15,
		},
		Ladder:   selection.DefaultLadder(3, 0.05),
		MaxSteps: 3,
		Weights:  DefaultWeights(),
	}
}

// Validate checks the policy can drive a selection
func (p Policy) Validate() error {
	if err := p.Constraints.Validate(); err != nil {
		return apperrors.WithCode(apperrors.CodeConfigInvalid, "selection constraints", err)
	}
	if p.MaxSteps < 0 {
		return apperrors.ConfigInvalid("max ladder steps must be >= 0")
	}
	if p.Weights.Feature < 0 || p.Weights.Tag < 0 {
		return apperrors.ConfigInvalid("distance weights must be >= 0")
	}
	return nil
}

// Levels is the number of relaxed levels the ladder can reach
func (p Policy) Levels() int {
	return max(0, min(p.MaxSteps, len(p.Ladder)))
}

// ConstraintsAt returns the constraints in force at a ladder level
func (p Policy) ConstraintsAt(level int) selection.Constraints {
	if level <= 0 || level > len(p.Ladder) {
		return p.Constraints
	}
	return p.Ladder[level-1].Apply(p.Constraints)
}

// Selector runs farthest-first selection under a relaxation ladder. It keeps
// no state between calls.
type Selector struct {
	policy Policy
	logger *internal.Logger
}

// NewSelector creates a selector
func NewSelector(policy Policy, logger *internal.Logger) *Selector {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Selector{policy: policy, logger: logger.With("diversity")}
}

// SelectDiverse is shorthand for NewSelector(policy, logger).Select(pool)
func SelectDiverse(pool candidate.Pool, policy Policy, logger *internal.Logger) *selection.Result {
	return NewSelector(policy, logger).Select(pool)
}

// attempt is one pass of the greedy selection at fixed constraints
type attempt struct {
	level       int
	constraints selection.Constraints
	selected    []int
	failures    []string
}

// Select picks a diverse subset of pool. Shortfalls never error: the best
// available subset is returned with a deadlock explaining what was missed.
// The Selected flag of every pool member is rewritten.
func (s *Selector) Select(pool candidate.Pool) *selection.Result {
	for _, c := range pool {
		c.Selected = false
	}

	if len(pool) == 0 {
		s.logger.Warn("nothing to select from")
		return &selection.Result{
			Selected:           []*candidate.Candidate{},
			CategoryCounts:     map[core.Category]int{},
			RelaxationsApplied: []int{},
			Constraints:        s.policy.Constraints,
			Deadlock: &selection.Deadlock{
				PoolSize:                 0,
				CategoryCounts:           map[core.Category]int{},
				ConstraintFailures:       []string{NoUsableCandidates},
				NearestNeighborDistances: []selection.NeighborDistance{},
			},
		}
	}

	dist := newMatrix(pool, s.policy.Weights)
	applied := make([]int, 0, s.policy.Levels()+1)
	var last attempt
	for level := 0; level <= s.policy.Levels(); level++ {
		last = s.attempt(pool, dist, level)
		applied = append(applied, level)
		if len(last.failures) == 0 {
			break
		}
		s.logger.Debug("level %d (%+v): %v", level, last.constraints, last.failures)
	}

	result := s.buildResult(pool, dist, last, applied)
	if result.Deadlock != nil {
		s.logger.Warn("selection deadlocked at level %d with %d of %d selected", last.level, len(result.Selected), last.constraints.NSelect)
	} else {
		s.logger.Info("selected %d candidates at level %d", len(result.Selected), last.level)
	}
	return result
}

// seedIndex is the highest fit in the pool; ties keep the earliest
func seedIndex(pool candidate.Pool) int {
	best, bestFit := 0, math.Inf(-1)
	for i, c := range pool {
		if f := c.Fit.OrElse(0); f > bestFit {
			best, bestFit = i, f
		}
	}
	return best
}

func (s *Selector) attempt(pool candidate.Pool, dist matrix, level int) attempt {
	cons := s.policy.ConstraintsAt(level)
	a := attempt{level: level, constraints: cons}

	n := len(pool)
	chosen := make([]bool, n)
	perCategory := make(map[core.Category]int)
	nearest := make([]float64, n)

	take := func(i int) {
		chosen[i] = true
		a.selected = append(a.selected, i)
		perCategory[pool[i].Category]++
		for j := 0; j < n; j++ {
			if d := dist.at(i, j); len(a.selected) == 1 || d < nearest[j] {
				nearest[j] = d
			}
		}
	}
	take(seedIndex(pool))

	for len(a.selected) < cons.NSelect {
		ranking := make([]int, 0, n-len(a.selected))
		for j := 0; j < n; j++ {
			if !chosen[j] {
				ranking = append(ranking, j)
			}
		}
		if len(ranking) == 0 {
			a.failures = append(a.failures, fmt.Sprintf("pool exhausted: %d of %d selected", len(a.selected), cons.NSelect))
			break
		}
		sort.SliceStable(ranking, func(x, y int) bool {
			return nearest[ranking[x]] > nearest[ranking[y]]
		})

		pick := -1
		for _, j := range ranking {
			if perCategory[pool[j].Category] >= cons.MaxPerCategory {
				continue
			}
			if nearest[j] < cons.MinPairDistance {
				continue
			}
			pick = j
			break
		}
		if pick < 0 {
			a.failures = append(a.failures, fmt.Sprintf(
				"no candidate satisfies max_per_category=%d and min_pair_distance=%.4f: %d of %d selected",
				cons.MaxPerCategory, cons.MinPairDistance, len(a.selected), cons.NSelect))
			break
		}
		take(pick)
	}

	if len(perCategory) < cons.MinCategoryCount {
		a.failures = append(a.failures, fmt.Sprintf(
			"category coverage %d below min_category_count=%d", len(perCategory), cons.MinCategoryCount))
	}
	return a
}

func (s *Selector) buildResult(pool candidate.Pool, dist matrix, a attempt, applied []int) *selection.Result {
	result := &selection.Result{
		Selected:           make([]*candidate.Candidate, len(a.selected)),
		CategoryCounts:     make(map[core.Category]int),
		RelaxationsApplied: applied,
		Constraints:        a.constraints,
	}
	for k, i := range a.selected {
		c := pool[i]
		c.Selected = true
		result.Selected[k] = c
		result.CategoryCounts[c.Category]++
	}

	var pairs []float64
	for x := 0; x < len(a.selected); x++ {
		for y := x + 1; y < len(a.selected); y++ {
			pairs = append(pairs, dist.at(a.selected[x], a.selected[y]))
		}
	}
	result.PairwiseDistances = summarize(pairs)

	if len(a.failures) == 0 {
		return result
	}

	poolCounts := make(map[core.Category]int)
	for _, c := range pool {
		poolCounts[c.Category]++
	}
	neighbors := make([]selection.NeighborDistance, 0, len(a.selected))
	if len(a.selected) > 1 {
		for _, i := range a.selected {
			nearest := math.Inf(1)
			for _, j := range a.selected {
				if i != j {
					nearest = math.Min(nearest, dist.at(i, j))
				}
			}
			neighbors = append(neighbors, selection.NeighborDistance{CandidateID: pool[i].ID, Distance: nearest})
		}
	}
	result.Deadlock = &selection.Deadlock{
		PoolSize:                 len(pool),
		CategoryCounts:           poolCounts,
		ConstraintFailures:       a.failures,
		NearestNeighborDistances: neighbors,
		RelaxationLevel:          a.level,
		FallbackUsed:             true,
	}
	return result
}

func summarize(pairs []float64) selection.DistanceStats {
	if len(pairs) == 0 {
		return selection.DistanceStats{}
	}
	lo, _ := stats.Min(pairs)
	mean, _ := stats.Mean(pairs)
	hi, _ := stats.Max(pairs)
	return selection.DistanceStats{Min: lo, Mean: mean, Max: hi, Pairs: len(pairs)}
}

// FilterUsable keeps candidates that passed safety, have features and a fit
// of at least minFit, in pool order.
func FilterUsable(pool candidate.Pool, minFit float64) candidate.Pool {
	out := make(candidate.Pool, 0, len(pool))
	for _, c := range pool {
		if !c.Usable() {
			continue
		}
		fit, ok := c.Fit.Get()
		if !ok || fit < minFit {
			continue
		}
		out = append(out, c)
	}
	return out
}
