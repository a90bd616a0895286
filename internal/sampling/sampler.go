package sampling

import (
	"gotimbre/domain/core"
	"gotimbre/internal"
	"gotimbre/ports"
)

// Sampler hands out per-stream sample sources derived from the run's Sobol
// seed. Each stream (one per method) gets its own scramble.
type Sampler struct {
	sobolSeed uint32
	maxDims   int
	logger    *internal.Logger
}

// NewSampler creates a sampler. maxDims caps the Sobol dimensionality; zero
// means MaxSobolDims. Streams wider than the cap use the Uniform fallback.
func NewSampler(sobolSeed uint32, maxDims int, logger *internal.Logger) *Sampler {
	if maxDims <= 0 || maxDims > MaxSobolDims {
		maxDims = MaxSobolDims
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Sampler{sobolSeed: sobolSeed, maxDims: maxDims, logger: logger.With("sampling")}
}

var _ ports.SamplerPort = (*Sampler)(nil)

// Source returns the sample source for stream
func (s *Sampler) Source(stream string, dims int) ports.SampleSource {
	seed := uint64(core.StableU32(s.sobolSeed, stream))
	if dims <= s.maxDims {
		if sobol, ok := NewSobol(dims, seed); ok {
			return sobol
		}
	}
	s.logger.Warn("low-discrepancy source unavailable for %s (%d dims), using seeded uniform fallback", stream, dims)
	return NewUniform(dims, seed)
}
