package sampling

import (
	"gonum.org/v1/gonum/mathext/prng"
)

// Uniform is the pseudo-random fallback used when no low-discrepancy source
// can serve a stream. Each point re-seeds an MT19937 at seed+index, so points
// depend only on the seed and the running index, never on call order.
type Uniform struct {
	dims int
	seed uint64
}

// NewUniform creates the fallback source
func NewUniform(dims int, seed uint64) *Uniform {
	return &Uniform{dims: dims, seed: seed}
}

// Dims returns the dimensionality
func (u *Uniform) Dims() int { return u.dims }

// LowDiscrepancy is false for the fallback
func (u *Uniform) LowDiscrepancy() bool { return false }

// Point returns the index-th point, each coordinate in [0,1)
func (u *Uniform) Point(index uint64) []float64 {
	src := prng.NewMT19937()
	src.Seed(u.seed + index)
	out := make([]float64, u.dims)
	for i := range out {
		out[i] = float64(src.Uint64()>>11) / (1 << 53)
	}
	return out
}
