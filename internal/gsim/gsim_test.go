package gsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveParity(t *testing.T) {
	r := New()

	resolved, err := r.Resolve([]string{"trunc_normal", "exp_decay"})
	require.NoError(t, err)
	assert.Len(t, resolved, 2)

	_, err = r.Resolve([]string{"trunc_normal", "gmpe_2099", "other"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gmpe_2099")
	assert.Contains(t, err.Error(), "other")
}

func TestRegisterDuplicatePanics(t *testing.T) {
	r := New()
	assert.Panics(t, func() { r.Register(&TruncNormal{}) })
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"exp_decay", "trunc_normal"}, New().Names())
}

func TestPoEsAreValidCurves(t *testing.T) {
	levels := []float64{0.01, 0.05, 0.1, 0.2, 0.4, 0.8, 1.6}
	ctxs := []Context{
		{Mag: 5.0, DistanceKm: 10, Vs30: 760},
		{Mag: 6.5, DistanceKm: 10, Vs30: 760},
		{Mag: 6.5, DistanceKm: 120, Vs30: 450},
		{Mag: 7.8, DistanceKm: 0, Vs30: 200},
	}

	for _, m := range []Model{&TruncNormal{}, &ExpDecay{}} {
		for _, ctx := range ctxs {
			poes := m.PoEs(ctx, levels, 3)
			require.Len(t, poes, len(levels))
			for i, p := range poes {
				assert.GreaterOrEqual(t, p, 0.0, "%s %+v", m.Name(), ctx)
				assert.LessOrEqual(t, p, 1.0, "%s %+v", m.Name(), ctx)
				if i > 0 {
					assert.LessOrEqual(t, p, poes[i-1],
						"%s must be non-increasing in level", m.Name())
				}
			}
		}
	}
}

func TestPoEsScaleWithMagnitudeAndDistance(t *testing.T) {
	levels := []float64{0.1}
	for _, m := range []Model{&TruncNormal{}, &ExpDecay{}} {
		small := m.PoEs(Context{Mag: 5.5, DistanceKm: 20, Vs30: 760}, levels, 3)[0]
		large := m.PoEs(Context{Mag: 7.0, DistanceKm: 20, Vs30: 760}, levels, 3)[0]
		assert.Greater(t, large, small, "%s: bigger quake, more shaking", m.Name())

		near := m.PoEs(Context{Mag: 6.5, DistanceKm: 10, Vs30: 760}, levels, 3)[0]
		far := m.PoEs(Context{Mag: 6.5, DistanceKm: 150, Vs30: 760}, levels, 3)[0]
		assert.Greater(t, near, far, "%s: shaking decays with distance", m.Name())
	}
}

func TestTruncationBoundsSupport(t *testing.T) {
	m := &TruncNormal{}
	// At truncation 1 the tails vanish: extreme levels hit exactly 0 or 1.
	poes := m.PoEs(Context{Mag: 6.0, DistanceKm: 30, Vs30: 760}, []float64{1e-9, 1e9}, 1)
	assert.Equal(t, 1.0, poes[0])
	assert.Equal(t, 0.0, poes[1])
}
