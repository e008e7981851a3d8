package machine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repentsinner/ghsender-sub001/coord"
)

func f(v float64) *float64 { return &v }

func TestComputeEnvelope(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	env, err := ComputeEnvelope(f(100), f(200), f(-50), now)
	require.NoError(t, err)
	assert.Equal(t, coord.Point{X: -100, Y: -200, Z: -50}, env.Min)
	assert.Equal(t, coord.Point{}, env.Max)
	assert.Equal(t, now, env.UpdatedAt)
}

func TestComputeEnvelope_Missing(t *testing.T) {
	_, err := ComputeEnvelope(f(100), f(200), nil, time.Now())
	var missing *MissingTravelError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"z"}, missing.Axes)

	_, err = ComputeEnvelope(nil, nil, nil, time.Now())
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"x", "y", "z"}, missing.Axes)
}

func TestEnvelope_ContainsClamp(t *testing.T) {
	env, err := ComputeEnvelope(f(100), f(100), f(50), time.Now())
	require.NoError(t, err)

	assert.True(t, env.Contains(coord.Point{X: -50, Y: -50, Z: -25}))
	assert.True(t, env.Contains(coord.Point{}))
	assert.False(t, env.Contains(coord.Point{X: 1, Y: -50, Z: -25}))
	assert.False(t, env.Contains(coord.Point{X: -101, Y: 0, Z: 0}))

	assert.Equal(t, coord.Point{X: 0, Y: -100, Z: -25},
		env.Clamp(coord.Point{X: 5, Y: -120, Z: -25}))
}
