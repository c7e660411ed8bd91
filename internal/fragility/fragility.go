// Package fragility maps hazard curves to damage-state distributions and
// reduces them across realizations with the logic-tree weights.
package fragility

import (
	"fmt"
	"math"
)

// tolerance for distribution and weight sums.
const tolerance = 1e-6

// RangeError reports a hazard intensity level outside the fragility
// function's support while clamping is disabled.
type RangeError struct {
	Taxonomy string
	IML      float64
	Min      float64
	Max      float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("fragility %q: intensity %v outside support [%v, %v]",
		e.Taxonomy, e.IML, e.Min, e.Max)
}

// WeightError reports realization weights that do not sum to 1, which makes
// any weighted reduction meaningless.
type WeightError struct {
	Sum float64
}

func (e *WeightError) Error() string {
	return fmt.Sprintf("realization weights sum to %v, want 1.0", e.Sum)
}

// Function is a fragility function set for one taxonomy: for each damage
// state (ordered from lightest to heaviest), the probability of reaching or
// exceeding that state given a shaking intensity. Between support points the
// curves are interpolated linearly.
type Function struct {
	Taxonomy string
	// IMT names the intensity measure type the support axis is defined on.
	IMT string
	// States are the damage states beyond "no damage", lightest first.
	States []string
	// Levels is the increasing support axis.
	Levels []float64
	// Exceed[s][l] = P(damage >= States[s] | intensity = Levels[l]).
	Exceed [][]float64
	// Clamp evaluates out-of-support intensities at the nearest support
	// boundary instead of failing. This is the documented policy default;
	// it never extrapolates beyond the boundary values.
	Clamp bool
}

// Validate checks the structural invariants of the function set.
func (f *Function) Validate() error {
	if len(f.States) == 0 {
		return fmt.Errorf("fragility %q: no damage states", f.Taxonomy)
	}
	if len(f.Levels) < 2 {
		return fmt.Errorf("fragility %q: needs at least two support levels", f.Taxonomy)
	}
	for i := 1; i < len(f.Levels); i++ {
		if f.Levels[i] <= f.Levels[i-1] {
			return fmt.Errorf("fragility %q: support levels must be strictly increasing", f.Taxonomy)
		}
	}
	if len(f.Exceed) != len(f.States) {
		return fmt.Errorf("fragility %q: %d states but %d exceedance curves", f.Taxonomy, len(f.States), len(f.Exceed))
	}
	for s, curve := range f.Exceed {
		if len(curve) != len(f.Levels) {
			return fmt.Errorf("fragility %q: state %q has %d values for %d levels",
				f.Taxonomy, f.States[s], len(curve), len(f.Levels))
		}
		for l, v := range curve {
			if v < 0 || v > 1 {
				return fmt.Errorf("fragility %q: state %q has probability %v at level %v",
					f.Taxonomy, f.States[s], v, f.Levels[l])
			}
			// Heavier states cannot be likelier than lighter ones.
			if s > 0 && v > f.Exceed[s-1][l]+tolerance {
				return fmt.Errorf("fragility %q: state %q exceeds state %q at level %v",
					f.Taxonomy, f.States[s], f.States[s-1], f.Levels[l])
			}
		}
	}
	return nil
}

// eval returns P(damage >= state) per state at the given intensity.
func (f *Function) eval(iml float64) ([]float64, error) {
	lo, hi := f.Levels[0], f.Levels[len(f.Levels)-1]
	if iml < lo || iml > hi {
		if !f.Clamp {
			return nil, &RangeError{Taxonomy: f.Taxonomy, IML: iml, Min: lo, Max: hi}
		}
		iml = math.Max(lo, math.Min(hi, iml))
	}

	// Find the support interval and interpolate linearly within it.
	j := len(f.Levels) - 2
	for i := 1; i < len(f.Levels); i++ {
		if iml <= f.Levels[i] {
			j = i - 1
			break
		}
	}
	t := (iml - f.Levels[j]) / (f.Levels[j+1] - f.Levels[j])

	out := make([]float64, len(f.States))
	for s, curve := range f.Exceed {
		out[s] = curve[j] + t*(curve[j+1]-curve[j])
	}
	return out, nil
}
