package fragility

import (
	"math"
	"sort"
)

// Mean reduces per-realization damage distributions into the weighted mean.
// weights must sum to 1 within tolerance or the reduction fails with
// *WeightError.
func Mean(dists [][]float64, weights []float64) ([]float64, error) {
	if err := checkWeights(weights); err != nil {
		return nil, err
	}
	mean := make([]float64, len(dists[0]))
	for r, dist := range dists {
		for s, v := range dist {
			mean[s] += weights[r] * v
		}
	}
	return mean, nil
}

// Quantile reduces per-realization damage distributions into the weighted
// q-quantile, computed independently per damage state.
func Quantile(dists [][]float64, weights []float64, q float64) ([]float64, error) {
	if err := checkWeights(weights); err != nil {
		return nil, err
	}
	out := make([]float64, len(dists[0]))
	type wv struct{ v, w float64 }
	for s := range out {
		vals := make([]wv, len(dists))
		for r, dist := range dists {
			vals[r] = wv{v: dist[s], w: weights[r]}
		}
		sort.Slice(vals, func(i, j int) bool { return vals[i].v < vals[j].v })
		var cum float64
		out[s] = vals[len(vals)-1].v
		for _, x := range vals {
			cum += x.w
			if cum >= q {
				out[s] = x.v
				break
			}
		}
	}
	return out, nil
}

func checkWeights(weights []float64) error {
	var sum float64
	for _, w := range weights {
		sum += w
	}
	if math.Abs(sum-1) > tolerance {
		return &WeightError{Sum: sum}
	}
	return nil
}
