package target

import (
	"testing"

	"gotimbre/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDescriptor(t *testing.T) {
	tests := []struct {
		name    string
		values  map[Scalar]float64
		weights map[Scalar]float64
		wantErr bool
	}{
		{"minimal", map[Scalar]float64{Brightness: 0.7, Noisiness: 0.2}, nil, false},
		{"with optional scalars", map[Scalar]float64{Brightness: 0, Noisiness: 1, Warmth: 0.5}, map[Scalar]float64{Warmth: 2}, false},
		{"missing noisiness", map[Scalar]float64{Brightness: 0.7}, nil, true},
		{"value above one", map[Scalar]float64{Brightness: 1.2, Noisiness: 0.2}, nil, true},
		{"negative weight", map[Scalar]float64{Brightness: 0.2, Noisiness: 0.2}, map[Scalar]float64{Brightness: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDescriptor(tt.values, tt.weights, "")
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrInvalidDescriptor)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDescriptorIsImmutable(t *testing.T) {
	values := map[Scalar]float64{Brightness: 0.7, Noisiness: 0.2}
	d, err := NewDescriptor(values, nil, core.NewFingerprint([]byte("x")))
	require.NoError(t, err)

	values[Brightness] = 0.1
	v, ok := d.Value(Brightness)
	assert.True(t, ok)
	assert.Equal(t, 0.7, v)
	assert.Equal(t, []Scalar{Brightness, Noisiness}, d.Scalars())
	assert.Equal(t, 1.0, d.Weight(Brightness, 1.0))
}
