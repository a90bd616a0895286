package ports

// SampleSource yields deterministic points in the unit hypercube by index.
// Random access by index keeps a candidate's sample independent of which
// other candidates were generated or dropped.
type SampleSource interface {
	Point(index uint64) []float64
	Dims() int
	// LowDiscrepancy is false when the source fell back to pseudo-random draws
	LowDiscrepancy() bool
}

// SamplerPort creates sample sources for a named stream
type SamplerPort interface {
	Source(stream string, dims int) SampleSource
}
