package sampling

// primitive holds one row of the Joe-Kuo direction-number table
// (new-joe-kuo-6.21201): polynomial degree s, coefficient a, initial m values.
type primitive struct {
	s uint
	a uint32
	m []uint32
}

// joeKuo covers dimensions 2..21. Dimension 1 is the van der Corput sequence.
var joeKuo = [...]primitive{
	{1, 0, []uint32{1}},
	{2, 1, []uint32{1, 3}},
	{3, 1, []uint32{1, 3, 1}},
	{3, 2, []uint32{1, 1, 1}},
	{4, 1, []uint32{1, 1, 3, 3}},
	{4, 4, []uint32{1, 3, 5, 13}},
	{5, 2, []uint32{1, 1, 5, 5, 17}},
	{5, 4, []uint32{1, 1, 5, 5, 5}},
	{5, 7, []uint32{1, 1, 7, 11, 19}},
	{5, 11, []uint32{1, 1, 5, 1, 1}},
	{5, 13, []uint32{1, 1, 1, 3, 11}},
	{5, 14, []uint32{1, 3, 5, 5, 31}},
	{6, 1, []uint32{1, 3, 3, 9, 7, 49}},
	{6, 13, []uint32{1, 1, 1, 15, 21, 21}},
	{6, 16, []uint32{1, 3, 1, 13, 27, 49}},
	{6, 19, []uint32{1, 1, 1, 15, 7, 5}},
	{6, 22, []uint32{1, 3, 1, 15, 13, 25}},
	{6, 25, []uint32{1, 1, 5, 5, 19, 61}},
	{7, 1, []uint32{1, 3, 7, 11, 23, 15, 103}},
	{7, 4, []uint32{1, 3, 7, 13, 13, 15, 69}},
}

// MaxSobolDims is the highest dimensionality the Sobol source serves
const MaxSobolDims = len(joeKuo) + 1

const bitCount = 32

// directionNumbers returns the 32 direction numbers of dimension dim (0-based)
func directionNumbers(dim int) [bitCount]uint32 {
	var v [bitCount]uint32
	if dim == 0 {
		for j := 0; j < bitCount; j++ {
			v[j] = 1 << (bitCount - 1 - j)
		}
		return v
	}

	p := joeKuo[dim-1]
	s := int(p.s)
	for j := 0; j < bitCount; j++ {
		if j < s {
			v[j] = p.m[j] << (bitCount - 1 - j)
			continue
		}
		v[j] = v[j-s] ^ (v[j-s] >> p.s)
		for i := 1; i < s; i++ {
			if (p.a>>(s-1-i))&1 == 1 {
				v[j] ^= v[j-i]
			}
		}
	}
	return v
}
