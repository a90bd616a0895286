package testkit

import (
	"context"
	"fmt"
	"math"
	"sync"

	"gotimbre/domain/candidate"
	"gotimbre/domain/core"
	"gotimbre/ports"

	"gonum.org/v1/gonum/mathext/prng"
)

// renderSeconds keeps synthetic renders short
const renderSeconds = 0.25

// SyntheticRenderer stands in for the external render+analyze step. Features
// are a deterministic function of the normalized parameters and the
// candidate seed; audio is a sine whose amplitude follows the method's gain
// axis when it has one, so loud noise/crackle settings clip.
type SyntheticRenderer struct {
	catalog ports.MethodCatalog
	failIDs map[core.CandidateID]bool

	mu    sync.Mutex
	calls int
}

// NewSyntheticRenderer creates a renderer over catalog
func NewSyntheticRenderer(catalog ports.MethodCatalog) *SyntheticRenderer {
	return &SyntheticRenderer{catalog: catalog, failIDs: make(map[core.CandidateID]bool)}
}

// FailOn makes Render return an error for the given candidates
func (r *SyntheticRenderer) FailOn(ids ...core.CandidateID) *SyntheticRenderer {
	for _, id := range ids {
		r.failIDs[id] = true
	}
	return r
}

// Calls returns how many renders were requested
func (r *SyntheticRenderer) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

var _ ports.RendererPort = (*SyntheticRenderer)(nil)

// Render implements ports.RendererPort
func (r *SyntheticRenderer) Render(ctx context.Context, req ports.RenderRequest) (*ports.RenderOutput, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.failIDs[req.CandidateID] {
		return nil, fmt.Errorf("synthetic render failure for %s", req.CandidateID)
	}
	m, err := r.catalog.Method(req.Method)
	if err != nil {
		return nil, err
	}

	unit := normalize(m, req.Params)
	src := prng.NewMT19937()
	src.Seed(uint64(req.Seed))
	jitter := func() float64 {
		return (float64(src.Uint64()>>11)/(1<<53) - 0.5) * 0.1
	}

	profile := categoryBias[m.Category]
	f := candidate.Features{
		Centroid:     clamp01(0.6*at(unit, 0) + 0.4*profile.centroid + jitter()),
		Flatness:     clamp01(0.3*at(unit, 1) + 0.7*profile.flatness + jitter()),
		OnsetDensity: clamp01(0.7*at(unit, len(unit)-1) + 0.3*profile.onset + jitter()),
		Crest:        clamp01(0.5*at(unit, 1) + 0.5*profile.crest + jitter()),
		Width:        clamp01(0.5*at(unit, 2) + 0.5 + jitter()),
		Harmonicity:  clamp01(profile.harmonicity + jitter()),
	}

	amp := 0.4
	if gain, ok := req.Params.Get("gain"); ok {
		amp = gain
	}
	buf := Sine(200+2000*f.Centroid, amp, renderSeconds)
	f.RMSDB = 20 * math.Log10(amp/math.Sqrt2)

	return &ports.RenderOutput{Features: f, Audio: buf}, nil
}

type categoryProfile struct {
	centroid, flatness, onset, crest, harmonicity float64
}

var categoryBias = map[core.Category]categoryProfile{
	"fm":          {centroid: 0.7, flatness: 0.1, onset: 0.5, crest: 0.6, harmonicity: 0.6},
	"noise":       {centroid: 0.5, flatness: 0.9, onset: 0.7, crest: 0.3, harmonicity: 0.1},
	"subtractive": {centroid: 0.4, flatness: 0.2, onset: 0.2, crest: 0.4, harmonicity: 0.9},
}

// normalize maps each parameter back onto [0,1] along its axis curve
func normalize(m ports.Method, params candidate.Params) []float64 {
	out := make([]float64, len(m.Axes))
	for i, axis := range m.Axes {
		v, ok := params.Get(axis.Name())
		if !ok {
			continue
		}
		lo, hi := axis.Bounds()
		if axis.Curve() == ports.CurveExponential {
			out[i] = clamp01(math.Log(v/lo) / math.Log(hi/lo))
		} else {
			out[i] = clamp01((v - lo) / (hi - lo))
		}
	}
	return out
}

func at(xs []float64, i int) float64 {
	if i < 0 || i >= len(xs) {
		return 0.5
	}
	return xs[i]
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
