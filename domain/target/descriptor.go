package target

import (
	"fmt"
	"math"
	"sort"

	"gotimbre/domain/core"
)

// Scalar names a normalized descriptor dimension
type Scalar string

const (
	Brightness Scalar = "brightness"
	Noisiness  Scalar = "noisiness"
	Warmth     Scalar = "warmth"
	Contrast   Scalar = "contrast"
	Density    Scalar = "density"
)

// KnownScalars lists every scalar the scorer understands, in canonical order
var KnownScalars = []Scalar{Brightness, Noisiness, Warmth, Contrast, Density}

// Descriptor is the desired sonic character of a run: normalized scalars in
// [0,1] plus optional per-scalar weights. It is immutable once built.
type Descriptor struct {
	values      map[Scalar]float64
	weights     map[Scalar]float64
	fingerprint core.Fingerprint
}

// NewDescriptor validates and copies values and weights. Brightness and
// noisiness are required; every value must lie in [0,1] and every weight must
// be finite and non-negative.
func NewDescriptor(values, weights map[Scalar]float64, fp core.Fingerprint) (Descriptor, error) {
	for _, required := range []Scalar{Brightness, Noisiness} {
		if _, ok := values[required]; !ok {
			return Descriptor{}, fmt.Errorf("%w: missing %s", core.ErrInvalidDescriptor, required)
		}
	}

	d := Descriptor{
		values:      make(map[Scalar]float64, len(values)),
		weights:     make(map[Scalar]float64, len(weights)),
		fingerprint: fp,
	}
	for k, v := range values {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return Descriptor{}, fmt.Errorf("%w: %s=%v outside [0,1]", core.ErrInvalidDescriptor, k, v)
		}
		d.values[k] = v
	}
	for k, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return Descriptor{}, fmt.Errorf("%w: weight %s=%v", core.ErrInvalidDescriptor, k, w)
		}
		d.weights[k] = w
	}
	return d, nil
}

// MustDescriptor is NewDescriptor for fixtures; it panics on invalid input
func MustDescriptor(values, weights map[Scalar]float64) Descriptor {
	d, err := NewDescriptor(values, weights, "")
	if err != nil {
		panic(err)
	}
	return d
}

// Value returns a scalar and whether it is set
func (d Descriptor) Value(s Scalar) (float64, bool) {
	v, ok := d.values[s]
	return v, ok
}

// Weight returns the explicit weight for s, or def when unset
func (d Descriptor) Weight(s Scalar, def float64) float64 {
	if w, ok := d.weights[s]; ok {
		return w
	}
	return def
}

// Scalars returns the set scalars in sorted order
func (d Descriptor) Scalars() []Scalar {
	out := make([]Scalar, 0, len(d.values))
	for k := range d.values {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Fingerprint returns the fingerprint of the raw input the descriptor came from
func (d Descriptor) Fingerprint() core.Fingerprint { return d.fingerprint }
