package fragility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testFunction has support [0.05, 1.0] g with four damage states.
func testFunction() *Function {
	return &Function{
		Taxonomy: "masonry",
		IMT:      "PGA",
		States:   []string{"slight", "moderate", "extensive", "complete"},
		Levels:   []float64{0.05, 0.1, 0.2, 0.3, 0.5, 0.7, 1.0},
		Exceed: [][]float64{
			{0.02, 0.10, 0.35, 0.60, 0.85, 0.95, 0.99},
			{0.00, 0.03, 0.15, 0.35, 0.65, 0.85, 0.96},
			{0.00, 0.01, 0.05, 0.15, 0.40, 0.65, 0.88},
			{0.00, 0.00, 0.01, 0.05, 0.18, 0.40, 0.72},
		},
		Clamp: true,
	}
}

func TestValidateCatchesBrokenFunctions(t *testing.T) {
	fn := testFunction()
	require.NoError(t, fn.Validate())

	broken := testFunction()
	broken.Exceed[3][2] = 0.5 // heavier state likelier than lighter one
	assert.Error(t, broken.Validate())

	broken = testFunction()
	broken.Levels[3] = 0.1 // non-increasing support
	assert.Error(t, broken.Validate())

	broken = testFunction()
	broken.Exceed = broken.Exceed[:2]
	assert.Error(t, broken.Validate())
}

func TestConvolveSumsToOne(t *testing.T) {
	fn := testFunction()
	levels := []float64{0.05, 0.1, 0.2, 0.4, 0.8}
	poes := []float64{0.9, 0.7, 0.4, 0.15, 0.03}

	dist, err := fn.Convolve(levels, poes)
	require.NoError(t, err)
	require.Len(t, dist, 5) // no_damage + 4 states

	var sum float64
	for _, v := range dist {
		assert.GreaterOrEqual(t, v, 0.0)
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-6)

	// Strong shaking at most levels: some damage mass must exist.
	assert.Greater(t, 1-dist[0], 0.1)
}

func TestConvolveNoHazardMeansNoDamage(t *testing.T) {
	fn := testFunction()
	levels := []float64{0.05, 0.1, 0.2}
	dist, err := fn.Convolve(levels, []float64{0, 0, 0})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, dist[0], 1e-12)
}

// Scenario: hazard levels extend to 1.5g, beyond the fragility support
// ending at 1.0g. Under the clamp policy the evaluation clamps to 1.0g and
// no error is raised; with clamping disabled the same input fails.
func TestConvolveClampPolicy(t *testing.T) {
	levels := []float64{0.1, 0.3, 0.6, 1.0, 1.5}
	poes := []float64{0.8, 0.5, 0.3, 0.15, 0.05}

	fn := testFunction()
	dist, err := fn.Convolve(levels, poes)
	require.NoError(t, err)
	var sum float64
	for _, v := range dist {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-6)

	strict := testFunction()
	strict.Clamp = false
	_, err = strict.Convolve(levels, poes)
	var rangeErr *RangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, 1.0, rangeErr.Max)
}

func TestMeanWeighting(t *testing.T) {
	dists := [][]float64{
		{0.8, 0.2, 0, 0, 0},
		{0.4, 0.4, 0.2, 0, 0},
	}
	mean, err := Mean(dists, []float64{0.6, 0.4})
	require.NoError(t, err)
	assert.InDelta(t, 0.64, mean[0], 1e-12)
	assert.InDelta(t, 0.28, mean[1], 1e-12)
	assert.InDelta(t, 0.08, mean[2], 1e-12)
}

func TestReductionsRejectBadWeights(t *testing.T) {
	dists := [][]float64{{1, 0}, {0.5, 0.5}}

	_, err := Mean(dists, []float64{0.6, 0.3})
	var werr *WeightError
	require.ErrorAs(t, err, &werr)
	assert.InDelta(t, 0.9, werr.Sum, 1e-12)

	_, err = Quantile(dists, []float64{0.7, 0.7}, 0.5)
	require.ErrorAs(t, err, &werr)
}

func TestQuantile(t *testing.T) {
	dists := [][]float64{
		{0.9, 0.1},
		{0.5, 0.5},
		{0.1, 0.9},
	}
	weights := []float64{0.25, 0.5, 0.25}

	median, err := Quantile(dists, weights, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, median[0], 1e-12)
	assert.InDelta(t, 0.5, median[1], 1e-12)

	low, err := Quantile(dists, weights, 0.15)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, low[0], 1e-12)
	assert.InDelta(t, 0.1, low[1], 1e-12)
}
