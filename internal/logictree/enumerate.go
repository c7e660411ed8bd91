package logictree

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/vk/riskgridgo/internal/model"
)

// Realization is one full combination of logic-tree choices: a source-model
// branch plus one GSIM branch per tectonic region group in that branch.
type Realization struct {
	// Index is the stable ordinal assigned in enumeration (or sampling)
	// order.
	Index int
	// Weight is the product of the contributing branch weights, or 1/N under
	// sampling.
	Weight float64
	// SMBranch is the ordinal of the source-model branch in the tree.
	SMBranch int
	// GsimByTrt maps each tectonic region type of the branch to the chosen
	// ground-motion model name.
	GsimByTrt map[string]string
	// Label is a human-readable identifier, smBranchID,gsimBranchIDs.
	Label string
}

// Realizations produces the realization set: full Cartesian enumeration when
// samples == 0, otherwise seeded Monte Carlo sampling of `samples` paths with
// weight 1/samples each. Both modes assign indices deterministically.
func (t *Tree) Realizations(samples int, seed int64) ([]Realization, error) {
	if samples > 0 {
		return t.sample(samples, seed), nil
	}
	return t.enumerate(), nil
}

// activeGroups returns the branch's groups that actually hold sources.
// Sourceless groups carry no hazard, need no GSIM branch set, and must not
// contribute a Cartesian factor: a branch whose only extra group is empty
// still yields realizations summing to the branch weight.
func activeGroups(b SourceModelBranch) []*model.TrtGroup {
	var groups []*model.TrtGroup
	for _, g := range b.Groups {
		if len(g.Sources) > 0 {
			groups = append(groups, g)
		}
	}
	return groups
}

// enumerate walks every source-model branch and, for each, takes the
// Cartesian product of the GSIM branch sets of its source-bearing tectonic
// region groups, depth first in declaration order.
func (t *Tree) enumerate() []Realization {
	var rlzs []Realization
	for smIdx, b := range t.Branches {
		groups := activeGroups(b)
		choice := make([]GsimBranch, len(groups))
		var walk func(depth int)
		walk = func(depth int) {
			if depth == len(groups) {
				rlzs = append(rlzs, t.realize(len(rlzs), smIdx, groups, choice))
				return
			}
			set := t.gsimSets[groups[depth].TectonicRegion]
			for _, gb := range set.Branches {
				choice[depth] = gb
				walk(depth + 1)
			}
		}
		walk(0)
	}
	return rlzs
}

// sample draws n complete branch paths from a single seeded generator. The
// sequence of draws is fixed, so a given seed always yields the same
// realizations in the same order. Identical paths drawn twice stay separate
// realizations with weight 1/n each.
func (t *Tree) sample(n int, seed int64) []Realization {
	rng := rand.New(rand.NewSource(seed))
	smWeights := make([]float64, len(t.Branches))
	for i, b := range t.Branches {
		smWeights[i] = b.Weight
	}

	rlzs := make([]Realization, 0, n)
	for i := 0; i < n; i++ {
		smIdx := drawIndex(rng, smWeights)
		groups := activeGroups(t.Branches[smIdx])
		choice := make([]GsimBranch, len(groups))
		for d, g := range groups {
			set := t.gsimSets[g.TectonicRegion]
			weights := make([]float64, len(set.Branches))
			for j, gb := range set.Branches {
				weights[j] = gb.Weight
			}
			choice[d] = set.Branches[drawIndex(rng, weights)]
		}
		rlz := t.realize(i, smIdx, groups, choice)
		rlz.Weight = 1 / float64(n)
		rlzs = append(rlzs, rlz)
	}
	return rlzs
}

// drawIndex draws an index with probability proportional to its weight, by
// inverse CDF over weights that sum to 1 within tolerance. Consumes exactly
// one rng value per call.
func drawIndex(rng *rand.Rand, weights []float64) int {
	x := rng.Float64()
	var cum float64
	for i, w := range weights {
		cum += w
		if x < cum {
			return i
		}
	}
	return len(weights) - 1
}

// realize builds a Realization from a source-model branch ordinal and one
// GSIM branch per source-bearing group, with the full-enumeration composite
// weight.
func (t *Tree) realize(index, smIdx int, groups []*model.TrtGroup, choice []GsimBranch) Realization {
	b := t.Branches[smIdx]
	weight := b.Weight
	gsimByTrt := make(map[string]string, len(groups))
	ids := make([]string, len(choice))
	for d, gb := range choice {
		weight *= gb.Weight
		gsimByTrt[groups[d].TectonicRegion] = gb.Model
		ids[d] = gb.ID
	}
	return Realization{
		Index:     index,
		Weight:    weight,
		SMBranch:  smIdx,
		GsimByTrt: gsimByTrt,
		Label:     label(b.ID, ids),
	}
}

func label(smID string, gsimIDs []string) string {
	if len(gsimIDs) == 0 {
		return smID
	}
	return fmt.Sprintf("%s,%s", smID, strings.Join(gsimIDs, "_"))
}
