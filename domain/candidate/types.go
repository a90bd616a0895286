package candidate

import (
	"fmt"
	"sort"

	"gotimbre/domain/core"
)

// AxisName identifies one parameter axis of a method
type AxisName string

// Param is one sampled axis value
type Param struct {
	Axis  AxisName `json:"axis"`
	Value float64  `json:"value"`
}

// Params is the ordered list of sampled values, in the method's axis order
type Params []Param

// Get returns the value for axis
func (p Params) Get(axis AxisName) (float64, bool) {
	for _, param := range p {
		if param.Axis == axis {
			return param.Value, true
		}
	}
	return 0, false
}

// Values returns the raw values in axis order
func (p Params) Values() []float64 {
	out := make([]float64, len(p))
	for i, param := range p {
		out[i] = param.Value
	}
	return out
}

// SignatureSize is the number of normalized feature scalars in a signature
const SignatureSize = 6

// Features is the externally extracted acoustic summary of a rendered
// candidate. The six normalized scalars lie in [0,1]; RMSDB is raw.
type Features struct {
	Centroid     float64 `json:"centroid"`
	Flatness     float64 `json:"flatness"`
	OnsetDensity float64 `json:"onset_density"`
	Crest        float64 `json:"crest"`
	Width        float64 `json:"width"`
	Harmonicity  float64 `json:"harmonicity"`
	RMSDB        float64 `json:"rms_db"`
}

// Signature returns the six normalized scalars used for pairwise distance
func (f Features) Signature() []float64 {
	return []float64{f.Centroid, f.Flatness, f.OnsetDensity, f.Crest, f.Width, f.Harmonicity}
}

// Candidate is one sampled parameter instance plus its identity, seed and
// evaluation state. Candidates are never removed from a pool mid-run; unusable
// ones stay for reporting.
type Candidate struct {
	ID         core.CandidateID  `json:"candidate_id"`
	Seed       uint32            `json:"seed"`
	Method     core.MethodID     `json:"method_id"`
	Category   core.Category     `json:"category"`
	BatchIndex int               `json:"batch_index"`
	Params     Params            `json:"params"`
	Tags       map[string]string `json:"tags"`

	Features Outcome[Features]     `json:"-"`
	Safety   Outcome[SafetyResult] `json:"-"`
	Fit      Outcome[float64]      `json:"-"`
	Selected bool                  `json:"selected"`
}

// Usable reports whether the candidate passed safety and has features
func (c *Candidate) Usable() bool {
	safety, ok := c.Safety.Get()
	return ok && safety.Passed && c.Features.IsEvaluated()
}

// TagSet returns the tags as sorted "key=value" strings
func (c *Candidate) TagSet() []string {
	out := make([]string, 0, len(c.Tags))
	for k, v := range c.Tags {
		out = append(out, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(out)
	return out
}

// Pool is an ordered collection of candidates in generation order
type Pool []*Candidate

// ByID indexes the pool by candidate identity
func (p Pool) ByID() map[core.CandidateID]*Candidate {
	out := make(map[core.CandidateID]*Candidate, len(p))
	for _, c := range p {
		out[c.ID] = c
	}
	return out
}

// UsableCount counts candidates that passed safety and have features
func (p Pool) UsableCount() int {
	n := 0
	for _, c := range p {
		if c.Usable() {
			n++
		}
	}
	return n
}

// Without returns the pool minus the given ids, preserving order
func (p Pool) Without(ids ...core.CandidateID) Pool {
	drop := make(map[core.CandidateID]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	out := make(Pool, 0, len(p))
	for _, c := range p {
		if !drop[c.ID] {
			out = append(out, c)
		}
	}
	return out
}
