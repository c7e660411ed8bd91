package logictree

import "sort"

// grpGsim keys the association table: one tectonic region group and one
// ground-motion model name.
type grpGsim struct {
	Grp   int
	Model string
}

// Assoc is the join table between computed (group, gsim) curves and the
// realizations that use them. It is a small bidirectional integer index:
// (grp, gsim) -> realization indices one way, realization -> weight the
// other. It never holds pointers into the source model.
type Assoc struct {
	rlzsFor    map[grpGsim][]int
	gsimsByGrp map[int][]string
	weights    []float64
}

// NewAssoc builds the association table for an enumerated realization set.
// For every realization and every group of its source-model branch, the
// realization index is recorded under (group, chosen gsim). Identical branch
// combinations are never deduplicated; each realization keeps its own index.
func NewAssoc(t *Tree, rlzs []Realization) *Assoc {
	a := &Assoc{
		rlzsFor:    make(map[grpGsim][]int),
		gsimsByGrp: make(map[int][]string),
		weights:    make([]float64, len(rlzs)),
	}
	for _, rlz := range rlzs {
		a.weights[rlz.Index] = rlz.Weight
		for _, g := range activeGroups(t.Branches[rlz.SMBranch]) {
			key := grpGsim{Grp: g.ID, Model: rlz.GsimByTrt[g.TectonicRegion]}
			a.rlzsFor[key] = append(a.rlzsFor[key], rlz.Index)
		}
	}
	for key := range a.rlzsFor {
		a.gsimsByGrp[key.Grp] = append(a.gsimsByGrp[key.Grp], key.Model)
	}
	for grp, models := range a.gsimsByGrp {
		sort.Strings(models)
		a.gsimsByGrp[grp] = dedupSorted(models)
	}
	return a
}

// RlzsFor returns the realization indices that use the given ground-motion
// model for the given group, in ascending order.
func (a *Assoc) RlzsFor(grp int, model string) []int {
	return a.rlzsFor[grpGsim{Grp: grp, Model: model}]
}

// GsimsFor returns the ground-motion model names any realization uses for
// the given group, sorted. This is what drives which computations a worker
// task must perform.
func (a *Assoc) GsimsFor(grp int) []string {
	return a.gsimsByGrp[grp]
}

// Weight returns the composite weight of a realization.
func (a *Assoc) Weight(rlz int) float64 {
	return a.weights[rlz]
}

// Weights returns the weights of all realizations, indexed by realization.
func (a *Assoc) Weights() []float64 {
	return a.weights
}

// NumRealizations returns the size of the realization set.
func (a *Assoc) NumRealizations() int {
	return len(a.weights)
}

// Pair is one (group, gsim) association with its realizations, for audit
// reporting.
type Pair struct {
	Grp   int
	Model string
	Rlzs  []int
}

// Pairs returns the association table as a sorted list for reporting.
func (a *Assoc) Pairs() []Pair {
	pairs := make([]Pair, 0, len(a.rlzsFor))
	for key, rlzs := range a.rlzsFor {
		pairs = append(pairs, Pair{Grp: key.Grp, Model: key.Model, Rlzs: rlzs})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Grp != pairs[j].Grp {
			return pairs[i].Grp < pairs[j].Grp
		}
		return pairs[i].Model < pairs[j].Model
	})
	return pairs
}

func dedupSorted(s []string) []string {
	out := s[:0]
	for i, v := range s {
		if i == 0 || v != s[i-1] {
			out = append(out, v)
		}
	}
	return out
}
