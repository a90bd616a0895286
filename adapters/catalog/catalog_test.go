package catalog

import (
	"math"
	"testing"

	"gotimbre/domain/core"
	"gotimbre/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAxisSampling(t *testing.T) {
	lin := Linear("resonance", 0.1, 0.9)
	assert.InDelta(t, 0.1, lin.Sample(0), 1e-12)
	assert.InDelta(t, 0.5, lin.Sample(0.5), 1e-12)
	assert.InDelta(t, 0.9, lin.Sample(1), 1e-12)
	assert.InDelta(t, 0.9, lin.Sample(3), 1e-12, "clamped")

	exp := Exp("cutoff", 100, 10000)
	assert.InDelta(t, 100, exp.Sample(0), 1e-9)
	assert.InDelta(t, 1000, exp.Sample(0.5), 1e-9)
	assert.InDelta(t, 10000, exp.Sample(1), 1e-9)
	assert.Equal(t, ports.CurveExponential, exp.Curve())
	assert.False(t, math.IsNaN(exp.Sample(math.NaN())))
}

func TestInMemoryCatalog(t *testing.T) {
	cat, err := New(
		ports.Method{ID: "fm/bell", Category: "fm", TemplateVersion: 1, Axes: []ports.Axis{Linear("index", 0, 8)}},
		ports.Method{ID: "subtractive/bright_saw", Category: "subtractive", TemplateVersion: 1, Axes: []ports.Axis{Exp("cutoff", 200, 12000)}},
		ports.Method{ID: "fm/gong", Category: "fm", TemplateVersion: 2, Axes: []ports.Axis{Linear("index", 0, 12)}},
	)
	require.NoError(t, err)

	assert.Equal(t, []core.Category{"fm", "subtractive"}, cat.Categories())
	assert.Equal(t, []core.MethodID{"fm/bell", "fm/gong"}, cat.MethodsFor("fm"))
	assert.Empty(t, cat.MethodsFor("granular"))

	m, err := cat.Method("fm/gong")
	require.NoError(t, err)
	assert.Equal(t, 2, m.TemplateVersion)

	_, err = cat.Method("missing")
	assert.ErrorIs(t, err, core.ErrMethodNotFound)

	assert.Error(t, cat.Register(ports.Method{ID: "fm/bell", Category: "fm"}))
}
