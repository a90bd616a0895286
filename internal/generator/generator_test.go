package generator

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"testing"

	"gotimbre/adapters/catalog"
	"gotimbre/domain/candidate"
	"gotimbre/domain/core"
	"gotimbre/internal"
	apperrors "gotimbre/internal/errors"
	"gotimbre/internal/sampling"
	"gotimbre/internal/testkit"
	"gotimbre/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quietLogger = internal.NewLogger(internal.LogLevelError)

func newFixtureGenerator(t *testing.T, runSeed uint32, opts Options) *Generator {
	t.Helper()
	cat, err := testkit.FixtureCatalog()
	require.NoError(t, err)
	g, err := New(cat, core.NewRunContext(runSeed, "fixture"), opts, quietLogger)
	require.NoError(t, err)
	return g
}

func smallOptions() Options {
	opts := DefaultOptions()
	opts.MaxBatches = 4
	return opts
}

func TestGenerateBatchFollowsAllocation(t *testing.T) {
	g := newFixtureGenerator(t, 42, DefaultOptions())

	assert.Equal(t, []Quota{{"fm", 10}, {"noise", 10}, {"subtractive", 12}}, g.Allocation())

	batch := g.GenerateBatch(0)
	require.Len(t, batch, 32)

	counts := map[core.Category]int{}
	methods := map[core.MethodID]int{}
	for _, c := range batch {
		counts[c.Category]++
		methods[c.Method]++
	}
	assert.Equal(t, map[core.Category]int{"fm": 10, "noise": 10, "subtractive": 12}, counts)
	assert.Equal(t, 5, methods["fm/bell"], "round-robin within category")
	assert.Equal(t, 5, methods["fm/gong"])
	assert.Equal(t, 6, methods["subtractive/dark_pad"])
}

func TestCandidateIdentityAndSeed(t *testing.T) {
	rc := core.NewRunContext(42, "fixture")
	g := newFixtureGenerator(t, 42, DefaultOptions())

	batch := g.GenerateBatch(2)
	for running, c := range batch {
		parts, err := core.ParseCandidateID(c.ID.String())
		require.NoError(t, err)
		assert.Equal(t, c.Method, parts.Method)
		assert.Equal(t, "sobol", parts.SamplingTag)
		assert.Equal(t, 2*32+running, parts.RunningIndex)
		assert.Equal(t, rc.CandidateSeed(c.ID), c.Seed)
		assert.Equal(t, 2, c.BatchIndex)
		assert.Equal(t, string(c.Category), c.Tags["category"])
		assert.Equal(t, string(c.Method), c.Tags["method"])
		assert.False(t, c.Fit.IsEvaluated())
	}
	assert.Equal(t, core.CandidateID("fm/bell:sobol:64:1"), batch[0].ID)
	assert.Equal(t, core.CandidateID("fm/gong:sobol:65:2"), batch[1].ID)
}

func TestParamsStayWithinAxisBounds(t *testing.T) {
	g := newFixtureGenerator(t, 7, smallOptions())
	pool, _ := g.GenerateAll()

	for _, c := range pool {
		m, ok := g.methods[c.Method]
		require.True(t, ok, c.Method)
		require.Len(t, c.Params, len(m.Axes))
		for i, axis := range m.Axes {
			lo, hi := axis.Bounds()
			assert.Equal(t, axis.Name(), c.Params[i].Axis)
			assert.GreaterOrEqual(t, c.Params[i].Value, lo)
			assert.LessOrEqual(t, c.Params[i].Value, hi)
		}
	}
}

// unitCoordinate maps a parameter value back onto [0,1) along its axis curve
func unitCoordinate(axis ports.Axis, v float64) float64 {
	lo, hi := axis.Bounds()
	if axis.Curve() == ports.CurveExponential {
		return math.Log(v/lo) / math.Log(hi/lo)
	}
	return (v - lo) / (hi - lo)
}

func TestMethodsDrawConsecutiveSourcePoints(t *testing.T) {
	g := newFixtureGenerator(t, 42, DefaultOptions())
	pool, _ := g.GenerateAll()

	draws := map[core.MethodID]int{}
	for _, c := range pool {
		m := g.methods[c.Method]
		point := g.sources[m.ID].Point(uint64(draws[m.ID]))
		for i, axis := range m.Axes {
			assert.Equal(t, axis.Sample(point[i]), c.Params[i].Value, "%s draw %d axis %s", c.ID, draws[m.ID], axis.Name())
		}
		draws[m.ID]++
	}
	assert.Equal(t, 75, draws["fm/bell"])
	assert.Equal(t, 90, draws["subtractive/dark_pad"])
}

func TestGeneratedCandidatesCoverEveryAxis(t *testing.T) {
	for _, seed := range []uint32{1, 42, 2024} {
		g := newFixtureGenerator(t, seed, DefaultOptions())
		pool, _ := g.GenerateAll()

		byMethod := map[core.MethodID]candidate.Pool{}
		for _, c := range pool {
			byMethod[c.Method] = append(byMethod[c.Method], c)
		}
		require.Len(t, byMethod, len(testkit.FixtureMethods()))

		for id, cands := range byMethod {
			m := g.methods[id]
			// The first 2^k draws of a scrambled Sobol stream put one point in
			// every 1/2^k interval; checking half that resolution tolerates
			// rounding at cell edges.
			k := bits.Len(uint(len(cands))) - 1
			require.GreaterOrEqual(t, k, 5, id)
			cells := 1 << (k - 1)
			for i, axis := range m.Axes {
				hit := map[int]bool{}
				for _, c := range cands {
					cell := int(unitCoordinate(axis, c.Params[i].Value) * float64(cells))
					hit[min(max(cell, 0), cells-1)] = true
				}
				assert.Len(t, hit, cells, "seed %d: %s axis %s covers %d of %d cells", seed, id, axis.Name(), len(hit), cells)
			}
		}
	}
}

func TestGenerationIsDeterministic(t *testing.T) {
	a, _ := newFixtureGenerator(t, 1234, smallOptions()).GenerateAll()
	b, _ := newFixtureGenerator(t, 1234, smallOptions()).GenerateAll()
	c, _ := newFixtureGenerator(t, 1235, smallOptions()).GenerateAll()

	require.Len(t, a, 4*32)
	require.Len(t, b, len(a))
	differentSeeds := 0
	for i := range a {
		assert.Equal(t, a[i].ID, b[i].ID)
		assert.Equal(t, a[i].Seed, b[i].Seed)
		assert.Equal(t, a[i].Params, b[i].Params)
		if a[i].Seed != c[i].Seed {
			differentSeeds++
		}
	}
	assert.Equal(t, len(a), differentSeeds, "run seed must reach every candidate seed")
}

func TestIdentityStableUnderPoolShrinkage(t *testing.T) {
	full, _ := newFixtureGenerator(t, 99, smallOptions()).GenerateAll()

	// Drop every third candidate of the first two batches, as the safety
	// gate would.
	var dropped []core.CandidateID
	for i, c := range full {
		if c.BatchIndex < 2 && i%3 == 0 {
			dropped = append(dropped, c.ID)
		}
	}
	shrunk := full.Without(dropped...)
	byID := full.ByID()
	for _, c := range shrunk {
		assert.Equal(t, byID[c.ID].Seed, c.Seed)
	}

	// A fresh generator that skips straight to later batches reproduces them.
	fresh := newFixtureGenerator(t, 99, smallOptions())
	for b := 2; b < 4; b++ {
		batch := fresh.GenerateBatch(b)
		for _, c := range batch {
			orig, ok := byID[c.ID]
			require.True(t, ok, c.ID)
			assert.Equal(t, orig.Seed, c.Seed)
			assert.Equal(t, orig.Params, c.Params)
		}
	}
}

func markUsable(every int) EvaluateFunc {
	return func(batch candidate.Pool) error {
		for i, c := range batch {
			passed := every > 0 && i%every == 0
			c.Safety = candidate.Evaluated(candidate.SafetyResult{Passed: passed, Status: candidate.StatusPass})
			c.Features = candidate.Evaluated(candidate.Features{})
		}
		return nil
	}
}

func TestRunStopsEarlyOnceUsableTargetReached(t *testing.T) {
	g := newFixtureGenerator(t, 5, DefaultOptions())

	pool, report, err := g.Run(g.UsableTarget(8), markUsable(1))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Batches)
	assert.True(t, report.EarlyStop)
	assert.Equal(t, 16, report.UsableTarget)
	assert.Len(t, pool, 32)
}

func TestRunGeneratesEveryBatchWhenUsabilityIsLow(t *testing.T) {
	g := newFixtureGenerator(t, 5, smallOptions())

	pool, report, err := g.Run(g.UsableTarget(8), markUsable(0))
	require.NoError(t, err)
	assert.Equal(t, 4, report.Batches)
	assert.False(t, report.EarlyStop)
	assert.Len(t, pool, 4*32)
}

func TestRunMatchesGenerateAllRegardlessOfEvaluation(t *testing.T) {
	all, _ := newFixtureGenerator(t, 8, smallOptions()).GenerateAll()
	evaluated, _, err := newFixtureGenerator(t, 8, smallOptions()).Run(1000, markUsable(4))
	require.NoError(t, err)

	require.Len(t, evaluated, len(all))
	for i := range all {
		assert.Equal(t, all[i].ID, evaluated[i].ID)
		assert.Equal(t, all[i].Seed, evaluated[i].Seed)
	}
}

func TestRunReturnsPartialPoolOnEvaluateError(t *testing.T) {
	g := newFixtureGenerator(t, 5, smallOptions())
	stop := errors.New("time budget exhausted")
	calls := 0

	pool, report, err := g.Run(100, func(batch candidate.Pool) error {
		calls++
		if calls == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, report.Batches)
	assert.Len(t, pool, 64)
}

func TestPriorWeightZeroDeactivatesCategory(t *testing.T) {
	opts := DefaultOptions()
	opts.PriorWeights = map[core.Category]float64{"noise": 0, "fm": 1, "subtractive": 3}
	g := newFixtureGenerator(t, 3, opts)

	assert.Equal(t, []Quota{{"fm", 8}, {"subtractive", 24}}, g.Allocation())
	for _, c := range g.GenerateBatch(0) {
		assert.NotEqual(t, core.Category("noise"), c.Category)
	}
}

func TestNewRefusesNonCompliantCatalog(t *testing.T) {
	cat, err := catalog.New(
		ports.Method{ID: "fm/bell", Category: "fm", TemplateVersion: 1, Axes: []ports.Axis{catalog.Linear("index", 0, 8)}},
		ports.Method{ID: "bad/dupe", Category: "bad", TemplateVersion: 1, Axes: []ports.Axis{
			catalog.Linear("x", 0, 1), catalog.Linear("x", 0, 2),
		}},
		ports.Method{ID: "bad/exp", Category: "bad", TemplateVersion: 0, Axes: []ports.Axis{catalog.Exp("freq", 0, 100)}},
		ports.Method{ID: "bad/empty", Category: "bad", TemplateVersion: 1},
	)
	require.NoError(t, err)

	g, err := New(cat, core.NewRunContext(1, ""), DefaultOptions(), quietLogger)
	assert.Nil(t, g)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrCatalogNonCompliant)
	assert.True(t, core.IsCatalogError(err))
	assert.Equal(t, apperrors.CodeCatalogNonCompliant, apperrors.GetCode(err))
	for _, fragment := range []string{"duplicate axis", "template version 0", "positive bounds", "no parameter axes"} {
		assert.Contains(t, err.Error(), fragment)
	}
}

func TestNewRefusesWhenNoCategoryIsActive(t *testing.T) {
	cat, err := testkit.FixtureCatalog()
	require.NoError(t, err)
	opts := DefaultOptions()
	opts.PriorWeights = map[core.Category]float64{"fm": 0, "noise": 0, "subtractive": 0}

	_, err = New(cat, core.NewRunContext(1, ""), opts, quietLogger)
	assert.ErrorIs(t, err, core.ErrNoActiveCategories)
	assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.GetCode(err))

	empty, err := catalog.New()
	require.NoError(t, err)
	_, err = New(empty, core.NewRunContext(1, ""), DefaultOptions(), quietLogger)
	assert.ErrorIs(t, err, core.ErrNoActiveCategories)
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	cat, err := testkit.FixtureCatalog()
	require.NoError(t, err)
	opts := DefaultOptions()
	opts.BatchSize = 0

	_, err = New(cat, core.NewRunContext(1, ""), opts, quietLogger)
	assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.GetCode(err))
}

func TestWideMethodsFallBackDeterministically(t *testing.T) {
	axes := make([]ports.Axis, sampling.MaxSobolDims+4)
	for i := range axes {
		axes[i] = catalog.Linear(candidate.AxisName(fmt.Sprintf("partial_%02d", i)), 0, 1)
	}
	build := func() *Generator {
		cat, err := catalog.New(ports.Method{ID: "additive/organ", Category: "additive", TemplateVersion: 1, Axes: axes})
		require.NoError(t, err)
		opts := DefaultOptions()
		opts.BatchSize = 8
		opts.MaxBatches = 2
		g, err := New(cat, core.NewRunContext(11, ""), opts, quietLogger)
		require.NoError(t, err)
		return g
	}

	a, report := build().GenerateAll()
	b, _ := build().GenerateAll()
	assert.Equal(t, []core.MethodID{"additive/organ"}, report.FallbackFor)
	for i := range a {
		assert.Equal(t, a[i].Params, b[i].Params)
	}
	assert.NotEqual(t, a[0].Params, a[1].Params)
}

func TestCatalogHash(t *testing.T) {
	a, err := testkit.FixtureCatalog()
	require.NoError(t, err)
	b, err := testkit.FixtureCatalog()
	require.NoError(t, err)
	assert.Equal(t, CatalogHash(a), CatalogHash(b))

	methods := testkit.FixtureMethods()
	methods[0].TemplateVersion = 3
	c, err := catalog.New(methods...)
	require.NoError(t, err)
	assert.NotEqual(t, CatalogHash(a), CatalogHash(c))
}
