package fragility

import (
	"fmt"
	"math"
)

// Convolve maps one hazard curve (exceedance probability per intensity
// level) to a damage-state distribution. The returned slice has
// 1+len(f.States) entries: index 0 is "no damage", then the declared states
// in order; it sums to 1 within tolerance.
//
// The probability mass between two adjacent intensity levels (the difference
// of their exceedance probabilities) is assigned to the geometric midpoint
// of the interval and distributed across damage states per the fragility
// function evaluated there. Mass below the first level counts as no damage;
// mass above the last level is evaluated at the last level.
func (f *Function) Convolve(levels, poes []float64) ([]float64, error) {
	if len(levels) != len(poes) {
		return nil, fmt.Errorf("fragility %q: %d levels but %d probabilities", f.Taxonomy, len(levels), len(poes))
	}
	if len(levels) < 2 {
		return nil, fmt.Errorf("fragility %q: hazard curve needs at least two levels", f.Taxonomy)
	}

	dist := make([]float64, 1+len(f.States))
	dist[0] = 1 - poes[0]

	add := func(mass, iml float64) error {
		if mass <= 0 {
			return nil
		}
		frac, err := f.eval(iml)
		if err != nil {
			return err
		}
		dist[0] += mass * (1 - frac[0])
		for s := 0; s < len(frac)-1; s++ {
			dist[s+1] += mass * (frac[s] - frac[s+1])
		}
		dist[len(frac)] += mass * frac[len(frac)-1]
		return nil
	}

	for i := 0; i+1 < len(levels); i++ {
		mid := math.Sqrt(levels[i] * levels[i+1])
		if err := add(poes[i]-poes[i+1], mid); err != nil {
			return nil, err
		}
	}
	// Tail mass beyond the last computed level.
	if err := add(poes[len(poes)-1], levels[len(levels)-1]); err != nil {
		return nil, err
	}

	var sum float64
	for _, v := range dist {
		sum += v
	}
	if math.Abs(sum-1) > tolerance {
		return nil, fmt.Errorf("fragility %q: damage distribution sums to %v", f.Taxonomy, sum)
	}
	return dist, nil
}
