package run

import (
	"crypto/sha256"
	"fmt"

	"gotimbre/domain/core"
)

// RunFingerprint ensures deterministic replay: two runs with equal
// fingerprints produce identical pools and selections.
type RunFingerprint struct {
	InputFingerprint core.Fingerprint `json:"input_fingerprint"`
	ConfigHash       core.ConfigHash  `json:"config_hash"`
	RunSeed          uint32           `json:"run_seed"`
	CatalogHash      core.Hash        `json:"catalog_hash"`
	Fingerprint      core.Hash        `json:"fingerprint"` // Hash of all above
}

// NewRunFingerprint creates a fingerprint from determinism parameters
func NewRunFingerprint(input core.Fingerprint, configHash core.ConfigHash, runSeed uint32, catalogHash core.Hash) RunFingerprint {
	return RunFingerprint{
		InputFingerprint: input,
		ConfigHash:       configHash,
		RunSeed:          runSeed,
		CatalogHash:      catalogHash,
		Fingerprint:      computeRunFingerprint(input, configHash, runSeed, catalogHash),
	}
}

// computeRunFingerprint generates deterministic hash from all determinism parameters
func computeRunFingerprint(input core.Fingerprint, configHash core.ConfigHash, runSeed uint32, catalogHash core.Hash) core.Hash {
	data := fmt.Sprintf("input:%s|config:%s|seed:%d|catalog:%s", input, configHash, runSeed, catalogHash)
	hash := sha256.Sum256([]byte(data))
	return core.Hash(fmt.Sprintf("%x", hash))
}
