package candidate

// SafetyStatus is the outcome of the safety gates
type SafetyStatus string

const (
	StatusPass     SafetyStatus = "PASS"
	StatusSilence  SafetyStatus = "SILENCE"
	StatusSparse   SafetyStatus = "SPARSE"
	StatusClipping SafetyStatus = "CLIPPING"
	StatusDCOffset SafetyStatus = "DC_OFFSET"
	StatusRunaway  SafetyStatus = "RUNAWAY"
)

// SafetyResult records the gate outcome with the diagnostics computed up to
// and including the gate that decided it.
type SafetyResult struct {
	Passed  bool               `json:"passed"`
	Status  SafetyStatus       `json:"status"`
	Details map[string]float64 `json:"details"`
}

// Detail returns a diagnostic value
func (r SafetyResult) Detail(name string) (float64, bool) {
	v, ok := r.Details[name]
	return v, ok
}
