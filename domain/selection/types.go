package selection

import (
	"fmt"

	"gotimbre/domain/candidate"
	"gotimbre/domain/core"
)

// Constraints is the unit the relaxation ladder loosens
type Constraints struct {
	NSelect          int     `json:"n_select"`
	MinCategoryCount int     `json:"min_category_count"`
	MaxPerCategory   int     `json:"max_per_category"`
	MinPairDistance  float64 `json:"min_pair_distance"`
}

// Validate checks the constraints are usable
func (c Constraints) Validate() error {
	if c.NSelect < 1 {
		return fmt.Errorf("%w: n_select must be >= 1, got %d", core.ErrInvalidConstraints, c.NSelect)
	}
	if c.MinCategoryCount < 0 {
		return fmt.Errorf("%w: min_category_count must be >= 0", core.ErrInvalidConstraints)
	}
	if c.MaxPerCategory < 1 {
		return fmt.Errorf("%w: max_per_category must be >= 1", core.ErrInvalidConstraints)
	}
	if c.MinPairDistance < 0 {
		return fmt.Errorf("%w: min_pair_distance must be >= 0", core.ErrInvalidConstraints)
	}
	return nil
}

// Relaxation is the cumulative loosening applied at one ladder level, relative
// to the base constraints.
type Relaxation struct {
	MinCategoryDelta    int     `json:"min_category_delta"`
	MaxPerCategoryDelta int     `json:"max_per_category_delta"`
	MinDistanceDelta    float64 `json:"min_distance_delta"`
}

// Apply returns base loosened by r. Counts and distance never drop below
// their floors (min_category_count >= 1, max_per_category >= 1, distance >= 0).
func (r Relaxation) Apply(base Constraints) Constraints {
	out := base
	out.MinCategoryCount = max(1, base.MinCategoryCount+r.MinCategoryDelta)
	if base.MinCategoryCount == 0 {
		out.MinCategoryCount = 0
	}
	out.MaxPerCategory = max(1, base.MaxPerCategory+r.MaxPerCategoryDelta)
	out.MinPairDistance = max(0, base.MinPairDistance+r.MinDistanceDelta)
	return out
}

// DefaultLadder returns the -1 category / +1 per-category / lower-distance
// ladder with the given number of steps.
func DefaultLadder(steps int, distanceStep float64) []Relaxation {
	ladder := make([]Relaxation, steps)
	for i := range ladder {
		level := i + 1
		ladder[i] = Relaxation{
			MinCategoryDelta:    -level,
			MaxPerCategoryDelta: level,
			MinDistanceDelta:    -distanceStep * float64(level),
		}
	}
	return ladder
}

// DistanceStats summarizes pairwise distances over the selected set
type DistanceStats struct {
	Min   float64 `json:"min"`
	Mean  float64 `json:"mean"`
	Max   float64 `json:"max"`
	Pairs int     `json:"pairs"`
}

// NeighborDistance is one selected candidate's distance to its nearest
// selected neighbor
type NeighborDistance struct {
	CandidateID core.CandidateID `json:"candidate_id"`
	Distance    float64          `json:"distance"`
}

// Deadlock explains why a fully constraint-satisfying selection could not be
// produced. It is diagnostic data, never an error.
type Deadlock struct {
	PoolSize                 int                   `json:"pool_size"`
	CategoryCounts           map[core.Category]int `json:"category_counts"`
	ConstraintFailures       []string              `json:"constraint_failures"`
	NearestNeighborDistances []NeighborDistance    `json:"nearest_neighbor_distances"`
	RelaxationLevel          int                   `json:"relaxation_level"`
	FallbackUsed             bool                  `json:"fallback_used"`
}

// Result is the terminal output of diverse selection
type Result struct {
	Selected           []*candidate.Candidate `json:"selected"`
	PairwiseDistances  DistanceStats          `json:"pairwise_distances"`
	CategoryCounts     map[core.Category]int  `json:"category_counts"`
	RelaxationsApplied []int                  `json:"relaxations_applied"`
	Constraints        Constraints            `json:"constraints"`
	Deadlock           *Deadlock              `json:"deadlock,omitempty"`
}

// SelectedIDs returns the identities of the selection in order
func (r *Result) SelectedIDs() []core.CandidateID {
	out := make([]core.CandidateID, len(r.Selected))
	for i, c := range r.Selected {
		out[i] = c.ID
	}
	return out
}

// Clean reports whether selection met every constraint without fallback
func (r *Result) Clean() bool {
	return r.Deadlock == nil
}
