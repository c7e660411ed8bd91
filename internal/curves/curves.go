// Package curves implements the probability algebra of hazard curves:
// per-site non-exceedance products accumulated over ruptures and tasks, and
// their translation back to exceedance-probability curves.
//
// Everything is kept in non-exceedance space until the very end because the
// independence assumption makes combination a plain product there: over
// ruptures within a task, over tasks within a group, and over groups within
// a realization. The product is associative and commutative, so partial
// results may be folded in any order.
package curves

import "github.com/vk/riskgridgo/internal/model"

// LevelSet flattens the per-IMT intensity level arrays into a single
// contiguous axis, so a curve is one []float64 regardless of how many IMTs
// the run computes.
type LevelSet struct {
	imts    []model.IMT
	offsets []int
	total   int
}

// NewLevelSet builds the flattened axis from the run's IMTs, in declaration
// order.
func NewLevelSet(imts []model.IMT) *LevelSet {
	ls := &LevelSet{imts: imts, offsets: make([]int, len(imts))}
	for i, imt := range imts {
		ls.offsets[i] = ls.total
		ls.total += len(imt.Levels)
	}
	return ls
}

// Total returns the length of the flattened level axis.
func (ls *LevelSet) Total() int { return ls.total }

// IMTs returns the intensity measure types backing the axis.
func (ls *LevelSet) IMTs() []model.IMT { return ls.imts }

// Slice returns the sub-slice of curve that belongs to IMT i.
func (ls *LevelSet) Slice(curve []float64, i int) []float64 {
	return curve[ls.offsets[i] : ls.offsets[i]+len(ls.imts[i].Levels)]
}

// NonExceedance maps a site index to its running product of per-rupture
// non-exceedance probabilities along the flattened level axis. A site absent
// from the map is at the identity (all ones): no rupture has contributed.
type NonExceedance map[int][]float64

// curve returns the site's product vector, creating it at identity.
func (ne NonExceedance) curve(site, total int) []float64 {
	c, ok := ne[site]
	if !ok {
		c = make([]float64, total)
		for i := range c {
			c[i] = 1
		}
		ne[site] = c
	}
	return c
}

// ApplyRupture multiplies one rupture's contribution into the site's
// product: poes are the rupture's exceedance probabilities (occurrence
// probability times conditional exceedance) per level.
func (ne NonExceedance) ApplyRupture(site int, poes []float64) {
	c := ne.curve(site, len(poes))
	for i, p := range poes {
		c[i] *= 1 - p
	}
}

// Fold multiplies another partial product into this one, site by site.
// Missing sites on either side are at identity, so folding is commutative
// and the identity map is a true no-op.
func (ne NonExceedance) Fold(other NonExceedance) {
	for site, oc := range other {
		c := ne.curve(site, len(oc))
		for i, v := range oc {
			c[i] *= v
		}
	}
}

// PoEs converts the non-exceedance product for a site back to an
// exceedance-probability curve. A site with no contributions yields all
// zeros.
func (ne NonExceedance) PoEs(site, total int) []float64 {
	out := make([]float64, total)
	c, ok := ne[site]
	if !ok {
		return out
	}
	for i, v := range c {
		out[i] = 1 - v
	}
	return out
}
