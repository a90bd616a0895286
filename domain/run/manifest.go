package run

import (
	"gotimbre/domain/core"
)

// Manifest is the in-memory traceability record of one search run
type Manifest struct {
	RunID       core.RunID     `json:"run_id"`
	SobolSeed   uint32         `json:"sobol_seed"`
	Fingerprint RunFingerprint `json:"fingerprint"`

	Allocation  map[core.Category]int `json:"allocation"`
	Batches     int                   `json:"batches"`
	EarlyStop   bool                  `json:"early_stop"`
	PoolSize    int                   `json:"pool_size"`
	UsableCount int                   `json:"usable_count"`
	RenderFails int                   `json:"render_failures"`

	SafetyCounts map[string]int     `json:"safety_counts"`
	Selected     []core.CandidateID `json:"selected"`
	Relaxations  []int              `json:"relaxations_applied"`
	Deadlocked   bool               `json:"deadlocked"`
}

// NewManifest starts a manifest for the run described by rc
func NewManifest(rc core.RunContext, configHash core.ConfigHash, catalogHash core.Hash) *Manifest {
	return &Manifest{
		RunID:        rc.RunID(),
		SobolSeed:    rc.SobolSeed(),
		Fingerprint:  NewRunFingerprint(rc.Fingerprint(), configHash, rc.RunSeed(), catalogHash),
		Allocation:   make(map[core.Category]int),
		SafetyCounts: make(map[string]int),
	}
}

// RecordSafety counts one safety outcome by status
func (m *Manifest) RecordSafety(status string) {
	m.SafetyCounts[status]++
}

// Validate checks if the manifest is complete
func (m *Manifest) Validate() error {
	if core.ID(m.RunID).IsEmpty() {
		return core.NewValidationError("run_manifest", "run_id cannot be empty")
	}
	if m.Fingerprint.Fingerprint.IsEmpty() {
		return core.NewValidationError("run_manifest", "fingerprint cannot be empty")
	}
	if m.ConfigHash() == "" {
		return core.NewValidationError("run_manifest", "config_hash cannot be empty")
	}
	if m.PoolSize < m.UsableCount {
		return core.NewValidationError("run_manifest", "usable_count exceeds pool_size")
	}
	if len(m.Selected) > m.UsableCount {
		return core.NewValidationError("run_manifest", "more candidates selected than usable")
	}
	return nil
}

// ConfigHash returns the configuration hash the run was started with
func (m *Manifest) ConfigHash() core.ConfigHash {
	return m.Fingerprint.ConfigHash
}
