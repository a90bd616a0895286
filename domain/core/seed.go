package core

// RunContext holds the single run seed of a generation run and derives every
// other seed from it. It is immutable after construction.
type RunContext struct {
	runSeed     uint32
	sobolSeed   uint32
	fingerprint Fingerprint
}

// NewRunContext creates the seed hierarchy for one run
func NewRunContext(runSeed uint32, fp Fingerprint) RunContext {
	return RunContext{
		runSeed:     runSeed,
		sobolSeed:   StableU32("sobol", runSeed),
		fingerprint: fp,
	}
}

// RunSeed returns the root seed
func (rc RunContext) RunSeed() uint32 { return rc.runSeed }

// SobolSeed returns stable_u32("sobol", run_seed)
func (rc RunContext) SobolSeed() uint32 { return rc.sobolSeed }

// Fingerprint returns the input fingerprint threaded through the run
func (rc RunContext) Fingerprint() Fingerprint { return rc.fingerprint }

// CandidateSeed returns stable_u32("cand", run_seed, candidate_id)
func (rc RunContext) CandidateSeed(id CandidateID) uint32 {
	return StableU32("cand", rc.runSeed, string(id))
}

// RunID returns the name-based identifier of this run
func (rc RunContext) RunID() RunID {
	return NewRunID(rc.fingerprint, rc.runSeed)
}
