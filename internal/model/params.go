package model

import "fmt"

// IMT is an intensity measure type with its ordered array of intensity
// levels, e.g. PGA with levels in g. Level arrays are strictly increasing.
type IMT struct {
	Name   string
	Levels []float64
}

// RunParams holds the run-wide scalar configuration. It is built once from
// the job definition and passed read-only through every component
// constructor; no component reads configuration from ambient state.
type RunParams struct {
	// MaximumDistanceKm is the integration distance: sources farther than
	// this from a site cannot affect it.
	MaximumDistanceKm float64
	// InvestigationTime is the hazard time window in years.
	InvestigationTime float64
	// TruncationLevel truncates the ground-motion variability distribution,
	// in standard deviations. Zero disables truncation.
	TruncationLevel float64
	// RandomSeed seeds logic-tree sampling.
	RandomSeed int64
	// Samples enables Monte Carlo logic-tree sampling when > 0; zero means
	// full enumeration.
	Samples int
	// RuptureCeiling is the maximum estimated rupture workload per task.
	RuptureCeiling float64
	// SkipInvalidSources downgrades a geometry error on a single source to
	// a logged skip instead of failing the run.
	SkipInvalidSources bool
	// IMTs are the intensity measure types and levels to compute, in
	// declaration order.
	IMTs []IMT
	// Quantiles are the damage statistics to compute besides the weighted
	// mean, as fractions in (0, 1).
	Quantiles []float64
}

// Validate checks the parameters that every run needs regardless of model
// content.
func (p *RunParams) Validate() error {
	if p.MaximumDistanceKm <= 0 {
		return fmt.Errorf("maximum_distance must be positive, got %v", p.MaximumDistanceKm)
	}
	if p.InvestigationTime <= 0 {
		return fmt.Errorf("investigation_time must be positive, got %v", p.InvestigationTime)
	}
	if p.RuptureCeiling <= 0 {
		return fmt.Errorf("rupture_ceiling must be positive, got %v", p.RuptureCeiling)
	}
	if p.Samples < 0 {
		return fmt.Errorf("logic_tree_samples must be >= 0, got %d", p.Samples)
	}
	if len(p.IMTs) == 0 {
		return fmt.Errorf("at least one intensity measure type is required")
	}
	for _, imt := range p.IMTs {
		if len(imt.Levels) < 2 {
			return fmt.Errorf("imt %q needs at least two intensity levels", imt.Name)
		}
		for i := 1; i < len(imt.Levels); i++ {
			if imt.Levels[i] <= imt.Levels[i-1] {
				return fmt.Errorf("imt %q levels must be strictly increasing", imt.Name)
			}
		}
	}
	for _, q := range p.Quantiles {
		if q <= 0 || q >= 1 {
			return fmt.Errorf("quantile %v outside (0, 1)", q)
		}
	}
	return nil
}
