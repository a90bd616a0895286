package sampling

import (
	"math/bits"

	"gonum.org/v1/gonum/mathext/prng"
)

const unitScale = 1.0 / (1 << 32)

// Sobol is a scrambled Sobol sequence with random access by index.
//
// Scrambling applies a random lower-triangular linear matrix to every
// direction number and then a random digital shift, both drawn from an
// MT19937 stream seeded by the caller. Points are produced in Gray-code order,
// so Point(n) equals the n-th point of the incremental construction.
type Sobol struct {
	dims       int
	directions [][bitCount]uint32
	shift      []uint32
}

// NewSobol builds a scrambled generator. ok is false when dims is outside
// 1..MaxSobolDims.
func NewSobol(dims int, seed uint64) (*Sobol, bool) {
	if dims < 1 || dims > MaxSobolDims {
		return nil, false
	}

	src := prng.NewMT19937()
	src.Seed(seed)

	s := &Sobol{
		dims:       dims,
		directions: make([][bitCount]uint32, dims),
		shift:      make([]uint32, dims),
	}
	for d := 0; d < dims; d++ {
		s.directions[d] = scrambleMatrix(directionNumbers(d), src)
		s.shift[d] = src.Uint32()
	}
	return s, true
}

// scrambleMatrix left-multiplies each direction number by a random unit
// lower-triangular binary matrix (bit 0 = most significant).
func scrambleMatrix(v [bitCount]uint32, src *prng.MT19937) [bitCount]uint32 {
	var rows [bitCount]uint32
	for p := 0; p < bitCount; p++ {
		higher := uint32(0xFFFFFFFF) << (bitCount - p)
		rows[p] = (src.Uint32() & higher) | 1<<(bitCount-1-p)
	}

	var out [bitCount]uint32
	for j, col := range v {
		var x uint32
		for p, row := range rows {
			if bits.OnesCount32(row&col)&1 == 1 {
				x |= 1 << (bitCount - 1 - p)
			}
		}
		out[j] = x
	}
	return out
}

// Dims returns the dimensionality
func (s *Sobol) Dims() int { return s.dims }

// LowDiscrepancy is always true for Sobol
func (s *Sobol) LowDiscrepancy() bool { return true }

// Point returns the index-th point, each coordinate in [0,1)
func (s *Sobol) Point(index uint64) []float64 {
	gray := uint32(index ^ (index >> 1))
	out := make([]float64, s.dims)
	for d := 0; d < s.dims; d++ {
		x := s.shift[d]
		g := gray
		for b := 0; g != 0; b++ {
			if g&1 == 1 {
				x ^= s.directions[d][b]
			}
			g >>= 1
		}
		out[d] = float64(x) * unitScale
	}
	return out
}
