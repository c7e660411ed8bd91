// Package gsim defines the ground-motion model interface the engine computes
// against, plus a registry mapping the model names declared in the GSIM
// logic tree to Go implementations.
//
// The engine treats a ground-motion model as an opaque callable: given a
// rupture/site context and an array of intensity levels, it returns the
// conditional probability of exceeding each level. The physics lives here;
// nothing upstream inspects it.
package gsim

// Context carries the rupture and site parameters a ground-motion model
// needs. Distance is the source-to-site great-circle distance in km.
type Context struct {
	Mag        float64
	DistanceKm float64
	Vs30       float64
}

// Model computes conditional exceedance probabilities for one ground-motion
// prediction equation.
type Model interface {
	// Name returns the registry name of the model.
	Name() string
	// PoEs returns, for each intensity level, the probability that ground
	// motion at the site exceeds that level given that the rupture occurs.
	// truncation caps the variability distribution at +/- that many standard
	// deviations; zero means no truncation. The returned slice has
	// len(levels) entries, each in [0, 1], non-increasing in level.
	PoEs(ctx Context, levels []float64, truncation float64) []float64
}
