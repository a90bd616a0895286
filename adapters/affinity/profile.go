package affinity

import (
	"math"
	"sync"

	"gotimbre/domain/core"
	"gotimbre/domain/target"
	"gotimbre/ports"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	// MinAffinity and MaxAffinity bound every returned value
	MinAffinity = 0.5
	MaxAffinity = 1.5
	// Neutral is returned when no profile applies
	Neutral = 1.0
)

// Profile is the descriptor a method or category renders best
type Profile map[target.Scalar]float64

// DefaultProfiles are coarse leanings of the common synthesis families
func DefaultProfiles() map[core.Category]Profile {
	return map[core.Category]Profile{
		"subtractive": {target.Brightness: 0.6, target.Noisiness: 0.2, target.Warmth: 0.7},
		"fm":          {target.Brightness: 0.7, target.Noisiness: 0.15, target.Contrast: 0.7},
		"noise":       {target.Brightness: 0.5, target.Noisiness: 0.9, target.Density: 0.6},
		"granular":    {target.Noisiness: 0.5, target.Density: 0.8},
		"physical":    {target.Warmth: 0.6, target.Contrast: 0.6, target.Noisiness: 0.3},
	}
}

// ProfileSource scores methods by how close their profile is to the target.
// A method profile overrides its category profile.
type ProfileSource struct {
	catalog    ports.MethodCatalog
	categories map[core.Category]Profile
	methods    map[core.MethodID]Profile
	mu         sync.RWMutex
}

var _ ports.AffinityPort = (*ProfileSource)(nil)

// NewProfileSource creates an affinity source over catalog
func NewProfileSource(catalog ports.MethodCatalog, categories map[core.Category]Profile) *ProfileSource {
	if categories == nil {
		categories = DefaultProfiles()
	}
	return &ProfileSource{
		catalog:    catalog,
		categories: categories,
		methods:    make(map[core.MethodID]Profile),
	}
}

// SetMethodProfile registers a per-method profile
func (s *ProfileSource) SetMethodProfile(id core.MethodID, p Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.methods[id] = p
}

func (s *ProfileSource) profileFor(id core.MethodID) (Profile, bool) {
	s.mu.RLock()
	p, ok := s.methods[id]
	s.mu.RUnlock()
	if ok {
		return p, true
	}
	if s.catalog == nil {
		return nil, false
	}
	m, err := s.catalog.Method(id)
	if err != nil {
		return nil, false
	}
	p, ok = s.categories[m.Category]
	return p, ok
}

// Affinity maps the weighted closeness of the profile to the descriptor onto
// [MinAffinity, MaxAffinity]. Unknown methods and profiles sharing no scalar
// with the descriptor are neutral.
func (s *ProfileSource) Affinity(id core.MethodID, d target.Descriptor) float64 {
	profile, ok := s.profileFor(id)
	if !ok {
		return Neutral
	}

	var closeness, weights []float64
	for _, scalar := range d.Scalars() {
		preferred, ok := profile[scalar]
		if !ok {
			continue
		}
		want, _ := d.Value(scalar)
		closeness = append(closeness, 1-math.Abs(want-preferred))
		weights = append(weights, d.Weight(scalar, 1.0))
	}
	if len(closeness) == 0 || floats.Sum(weights) == 0 {
		return Neutral
	}
	return clamp(MinAffinity+stat.Mean(closeness, weights), MinAffinity, MaxAffinity)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
