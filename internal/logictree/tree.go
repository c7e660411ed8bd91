package logictree

import (
	"math"

	"github.com/vk/riskgridgo/internal/model"
)

// weightTolerance is the allowed deviation of a branch set's weight sum
// from 1.0.
const weightTolerance = 1e-6

// SourceModelBranch is one branch of the source-model logic tree: a weighted
// alternative composite of seismic sources, grouped by tectonic region type.
type SourceModelBranch struct {
	ID     string
	Weight float64
	// Groups holds one TrtGroup per tectonic region type present in this
	// branch, in declaration order. Group IDs are assigned globally across
	// branches by New.
	Groups []*model.TrtGroup
}

// GsimBranch is one weighted GSIM alternative for a tectonic region type.
type GsimBranch struct {
	ID     string
	Weight float64
	// Model is the gsim registry name of the ground-motion model.
	Model string
}

// GsimBranchSet holds the GSIM alternatives for one tectonic region type.
type GsimBranchSet struct {
	TectonicRegion string
	Branches       []GsimBranch
}

// Tree is a validated pair of logic trees ready for enumeration or sampling.
type Tree struct {
	Branches []SourceModelBranch
	gsimSets map[string]GsimBranchSet
}

// New validates the two logic trees and assigns global group IDs in
// declaration order across branches. It fails with *Error if branch weights
// do not sum to 1 within tolerance, if a tectonic region type with sources
// has no GSIM branch set, or if a source ID is duplicated within a branch.
func New(branches []SourceModelBranch, gsimSets []GsimBranchSet) (*Tree, error) {
	if len(branches) == 0 {
		return nil, errf("source model logic tree has no branches")
	}

	var smSum float64
	for _, b := range branches {
		smSum += b.Weight
	}
	if math.Abs(smSum-1) > weightTolerance {
		return nil, errf("source model branch weights sum to %v, want 1.0", smSum)
	}

	sets := make(map[string]GsimBranchSet, len(gsimSets))
	for _, set := range gsimSets {
		if _, dup := sets[set.TectonicRegion]; dup {
			return nil, errf("duplicate GSIM branch set for tectonic region %q", set.TectonicRegion)
		}
		var sum float64
		for _, br := range set.Branches {
			sum += br.Weight
		}
		if math.Abs(sum-1) > weightTolerance {
			return nil, errf("GSIM branch weights for %q sum to %v, want 1.0", set.TectonicRegion, sum)
		}
		sets[set.TectonicRegion] = set
	}

	grpID := 0
	for _, b := range branches {
		seenTrt := make(map[string]bool)
		seenSrc := make(map[string]bool)
		for _, g := range b.Groups {
			if seenTrt[g.TectonicRegion] {
				return nil, errf("branch %q has two groups for tectonic region %q", b.ID, g.TectonicRegion)
			}
			seenTrt[g.TectonicRegion] = true
			if _, ok := sets[g.TectonicRegion]; !ok && len(g.Sources) > 0 {
				return nil, errf("no GSIM branch set for tectonic region %q (branch %q)", g.TectonicRegion, b.ID)
			}
			for _, src := range g.Sources {
				if seenSrc[src.ID] {
					return nil, errf("source ID %q is duplicated in branch %q", src.ID, b.ID)
				}
				seenSrc[src.ID] = true
			}
			g.ID = grpID
			grpID++
		}
	}

	return &Tree{Branches: branches, gsimSets: sets}, nil
}

// Groups returns all tectonic region groups across branches, ordered by
// group ID.
func (t *Tree) Groups() []*model.TrtGroup {
	var groups []*model.TrtGroup
	for _, b := range t.Branches {
		groups = append(groups, b.Groups...)
	}
	return groups
}

// GsimSet returns the GSIM branch set for a tectonic region type.
func (t *Tree) GsimSet(trt string) (GsimBranchSet, bool) {
	set, ok := t.gsimSets[trt]
	return set, ok
}

// ModelNames returns every ground-motion model name referenced by the GSIM
// logic tree, deduplicated, in branch-set declaration-independent order.
func (t *Tree) ModelNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, b := range t.Branches {
		for _, g := range b.Groups {
			set := t.gsimSets[g.TectonicRegion]
			for _, br := range set.Branches {
				if !seen[br.Model] {
					seen[br.Model] = true
					names = append(names, br.Model)
				}
			}
		}
	}
	return names
}
