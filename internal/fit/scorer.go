package fit

import (
	"math"

	"gotimbre/domain/candidate"
	"gotimbre/domain/target"
	apperrors "gotimbre/internal/errors"
	"gotimbre/ports"

	"gonum.org/v1/gonum/stat"
)

// Options configures the scorer
type Options struct {
	// DefaultWeight applies to descriptor scalars without an explicit weight
	DefaultWeight float64 `json:"default_scalar_weight"`
}

// DefaultOptions returns the stock scorer settings
func DefaultOptions() Options {
	return Options{DefaultWeight: 1.0}
}

// Validate rejects a weight that would silence unweighted scalars
func (o Options) Validate() error {
	if !(o.DefaultWeight > 0) || math.IsInf(o.DefaultWeight, 0) {
		return apperrors.ConfigInvalid("fit default scalar weight must be positive and finite")
	}
	return nil
}

// featureFor pairs each descriptor scalar with the feature it is compared to
var featureFor = map[target.Scalar]func(candidate.Features) float64{
	target.Brightness: func(f candidate.Features) float64 { return f.Centroid },
	target.Noisiness:  func(f candidate.Features) float64 { return f.Flatness },
	target.Density:    func(f candidate.Features) float64 { return f.OnsetDensity },
	target.Contrast:   func(f candidate.Features) float64 { return f.Crest },
	target.Warmth:     func(f candidate.Features) float64 { return f.Harmonicity },
}

// Scorer turns features into a fit score against a descriptor
type Scorer struct {
	opts     Options
	affinity ports.AffinityPort
}

// NewScorer creates a scorer. A nil affinity source is treated as neutral.
func NewScorer(opts Options, affinity ports.AffinityPort) *Scorer {
	return &Scorer{opts: opts, affinity: affinity}
}

// ComputeFit is the weighted mean of 1-|target-feature| over the paired
// scalars, in [0,1]. It is 0 when nothing pairs or every weight is zero.
func (s *Scorer) ComputeFit(d target.Descriptor, f candidate.Features) float64 {
	var values, weights []float64
	for _, scalar := range d.Scalars() {
		feature, ok := featureFor[scalar]
		if !ok {
			continue
		}
		want, _ := d.Value(scalar)
		values = append(values, clamp01(1-math.Abs(want-feature(f))))
		weights = append(weights, d.Weight(scalar, s.opts.DefaultWeight))
	}
	if len(values) == 0 {
		return 0
	}
	mean := stat.Mean(values, weights)
	if math.IsNaN(mean) {
		return 0
	}
	return clamp01(mean)
}

// Boost maps an affinity in [0.5,1.5] to a multiplier in [0.75,1.25]
func Boost(affinity float64) float64 {
	return 0.5 + affinity/2
}

// ScoreCandidate computes the boosted fit, writes it onto c and returns it.
// A candidate without features scores 0.
func (s *Scorer) ScoreCandidate(c *candidate.Candidate, d target.Descriptor) float64 {
	features, ok := c.Features.Get()
	if !ok {
		c.Fit = candidate.Evaluated(0.0)
		return 0
	}

	affinity := 1.0
	if s.affinity != nil {
		affinity = s.affinity.Affinity(c.Method, d)
	}
	score := clamp01(s.ComputeFit(d, features) * Boost(affinity))
	c.Fit = candidate.Evaluated(score)
	return score
}

// ScorePool scores every candidate that passed safety
func (s *Scorer) ScorePool(pool candidate.Pool, d target.Descriptor) int {
	scored := 0
	for _, c := range pool {
		if !c.Usable() {
			continue
		}
		s.ScoreCandidate(c, d)
		scored++
	}
	return scored
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
