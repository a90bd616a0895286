package testkit

import (
	"fmt"

	"gotimbre/adapters/catalog"
	"gotimbre/domain/candidate"
	"gotimbre/domain/core"
	"gotimbre/domain/target"
	"gotimbre/ports"
)

// TestKit provides fixtures for the search pipeline: a three-category method
// catalog, a deterministic synthetic renderer and canned descriptors.
type TestKit struct {
	catalog *catalog.InMemoryCatalog
}

// NewTestKit creates a test kit backed by the fixture catalog
func NewTestKit() (*TestKit, error) {
	cat, err := FixtureCatalog()
	if err != nil {
		return nil, err
	}
	return &TestKit{catalog: cat}, nil
}

// Catalog returns the fixture catalog
func (t *TestKit) Catalog() *catalog.InMemoryCatalog {
	return t.catalog
}

// Renderer returns a synthetic renderer over the fixture catalog
func (t *TestKit) Renderer() *SyntheticRenderer {
	return NewSyntheticRenderer(t.catalog)
}

// BrightNoisyTarget is a descriptor leaning bright and moderately noisy
func (t *TestKit) BrightNoisyTarget() target.Descriptor {
	d, err := target.NewDescriptor(
		map[target.Scalar]float64{target.Brightness: 0.8, target.Noisiness: 0.6, target.Density: 0.4},
		map[target.Scalar]float64{target.Brightness: 2.0},
		core.NewFingerprint([]byte("fixture:bright-noisy")),
	)
	if err != nil {
		panic(err)
	}
	return d
}

// FixtureMethods returns the six methods of the fixture catalog
func FixtureMethods() []ports.Method {
	return []ports.Method{
		{
			ID: "fm/bell", Category: "fm", TemplateVersion: 1,
			Tags: map[string]string{"texture": "metallic", "envelope": "percussive"},
			Axes: []ports.Axis{
				catalog.Linear("ratio", 0.5, 8),
				catalog.Linear("index", 0, 10),
				catalog.Exp("decay", 0.1, 4),
			},
		},
		{
			ID: "fm/gong", Category: "fm", TemplateVersion: 2,
			Tags: map[string]string{"texture": "metallic", "envelope": "sustained"},
			Axes: []ports.Axis{
				catalog.Linear("ratio", 1, 14),
				catalog.Linear("index", 0, 14),
				catalog.Exp("decay", 0.5, 8),
				catalog.Linear("feedback", 0, 1),
			},
		},
		{
			ID: "noise/crackle", Category: "noise", TemplateVersion: 1,
			Tags: map[string]string{"texture": "grainy", "envelope": "percussive"},
			Axes: []ports.Axis{
				catalog.Exp("density", 1, 200),
				catalog.Exp("grain", 0.001, 0.05),
				catalog.Linear("gain", 0.1, 1.2),
			},
		},
		{
			ID: "noise/wind", Category: "noise", TemplateVersion: 1,
			Tags: map[string]string{"texture": "airy", "envelope": "sustained"},
			Axes: []ports.Axis{
				catalog.Exp("bandwidth", 50, 8000),
				catalog.Exp("center", 100, 8000),
				catalog.Linear("gust", 0, 1),
			},
		},
		{
			ID: "subtractive/bright_saw", Category: "subtractive", TemplateVersion: 1,
			Tags: map[string]string{"texture": "bright", "envelope": "sustained"},
			Axes: []ports.Axis{
				catalog.Exp("cutoff", 200, 12000),
				catalog.Linear("resonance", 0, 0.9),
				catalog.Linear("drive", 0, 1),
			},
		},
		{
			ID: "subtractive/dark_pad", Category: "subtractive", TemplateVersion: 1,
			Tags: map[string]string{"texture": "soft", "envelope": "swell"},
			Axes: []ports.Axis{
				catalog.Exp("cutoff", 80, 2000),
				catalog.Linear("resonance", 0, 0.5),
				catalog.Linear("detune", 0, 0.3),
				catalog.Exp("attack", 0.01, 2),
			},
		},
	}
}

// FixtureCatalog builds the fixture catalog
func FixtureCatalog() (*catalog.InMemoryCatalog, error) {
	return catalog.New(FixtureMethods()...)
}

// ScoredCandidate builds a usable candidate with the given features and fit,
// ready for selection tests.
func ScoredCandidate(id string, category core.Category, f candidate.Features, fit float64, tags map[string]string) *candidate.Candidate {
	all := map[string]string{"category": string(category)}
	for k, v := range tags {
		all[k] = v
	}
	return &candidate.Candidate{
		ID:       core.CandidateID(id),
		Method:   core.MethodID(fmt.Sprintf("%s/fixture", category)),
		Category: category,
		Tags:     all,
		Features: candidate.Evaluated(f),
		Safety:   candidate.Evaluated(candidate.SafetyResult{Passed: true, Status: candidate.StatusPass}),
		Fit:      candidate.Evaluated(fit),
	}
}
