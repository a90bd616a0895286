package affinity

import (
	"testing"

	"gotimbre/domain/core"
	"gotimbre/domain/target"
	"gotimbre/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAffinityRange(t *testing.T) {
	cat, err := testkit.FixtureCatalog()
	require.NoError(t, err)
	src := NewProfileSource(cat, nil)

	descriptors := []target.Descriptor{
		target.MustDescriptor(map[target.Scalar]float64{target.Brightness: 0, target.Noisiness: 0}, nil),
		target.MustDescriptor(map[target.Scalar]float64{target.Brightness: 1, target.Noisiness: 1}, nil),
		target.MustDescriptor(map[target.Scalar]float64{target.Brightness: 0.8, target.Noisiness: 0.6, target.Warmth: 0.1},
			map[target.Scalar]float64{target.Warmth: 4}),
	}
	for _, m := range testkit.FixtureMethods() {
		for _, d := range descriptors {
			a := src.Affinity(m.ID, d)
			assert.GreaterOrEqual(t, a, MinAffinity)
			assert.LessOrEqual(t, a, MaxAffinity)
		}
	}
}

func TestAffinityPrefersMatchingCategory(t *testing.T) {
	cat, err := testkit.FixtureCatalog()
	require.NoError(t, err)
	src := NewProfileSource(cat, nil)

	noisy := target.MustDescriptor(map[target.Scalar]float64{target.Brightness: 0.5, target.Noisiness: 0.9}, nil)
	assert.Greater(t, src.Affinity("noise/wind", noisy), src.Affinity("fm/bell", noisy))
	assert.InDelta(t, 1.5, src.Affinity("noise/crackle", noisy), 1e-9)
}

func TestAffinityNeutralCases(t *testing.T) {
	cat, err := testkit.FixtureCatalog()
	require.NoError(t, err)
	d := target.MustDescriptor(map[target.Scalar]float64{target.Brightness: 0.5, target.Noisiness: 0.5}, nil)

	src := NewProfileSource(cat, nil)
	assert.Equal(t, Neutral, src.Affinity("missing/method", d))

	nothingShared := NewProfileSource(cat, map[core.Category]Profile{"fm": {target.Density: 1}})
	assert.Equal(t, Neutral, nothingShared.Affinity("fm/bell", d))

	assert.Equal(t, Neutral, NewProfileSource(nil, nil).Affinity("fm/bell", d))
}

func TestMethodProfileOverridesCategory(t *testing.T) {
	cat, err := testkit.FixtureCatalog()
	require.NoError(t, err)
	src := NewProfileSource(cat, nil)
	d := target.MustDescriptor(map[target.Scalar]float64{target.Brightness: 0.1, target.Noisiness: 0.1}, nil)

	before := src.Affinity("fm/bell", d)
	src.SetMethodProfile("fm/bell", Profile{target.Brightness: 0.1, target.Noisiness: 0.1})
	assert.Equal(t, MaxAffinity, src.Affinity("fm/bell", d))
	assert.Less(t, before, MaxAffinity)
	assert.Equal(t, before, src.Affinity("fm/gong", d))
}

func TestAffinityIsWeightedMeanOfCloseness(t *testing.T) {
	cat, err := testkit.FixtureCatalog()
	require.NoError(t, err)
	src := NewProfileSource(cat, nil)

	// fm profile: brightness 0.7, noisiness 0.15
	d := target.MustDescriptor(
		map[target.Scalar]float64{target.Brightness: 0.7, target.Noisiness: 0.65},
		map[target.Scalar]float64{target.Brightness: 3},
	)
	assert.InDelta(t, 0.5+(3*1.0+1*0.5)/4, src.Affinity("fm/bell", d), 1e-12)

	zeroed := target.MustDescriptor(
		map[target.Scalar]float64{target.Brightness: 0.7, target.Noisiness: 0.65},
		map[target.Scalar]float64{target.Brightness: 0, target.Noisiness: 0},
	)
	assert.Equal(t, Neutral, src.Affinity("fm/bell", zeroed))
}
