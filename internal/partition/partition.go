// Package partition turns the composite source model into an ordered list of
// independent work units. Sources whose estimated rupture workload exceeds
// the configured ceiling are split into sub-sources first; the survivors are
// packed greedily, in declaration order, into tasks that stay under the
// ceiling. The whole process is deterministic: the same model, sites and
// ceiling always produce the same tasks in the same order.
package partition

import (
	"context"

	"github.com/vk/riskgridgo/internal/ctxlog"
	"github.com/vk/riskgridgo/internal/model"
	"github.com/vk/riskgridgo/internal/sitefilter"
)

// Task is one unit of parallel work: a set of (sub-)sources from a single
// tectonic region group plus the site indices that passed the distance
// filter for each of them. A task is consumed exactly once by a worker and
// shares no mutable state with any other task.
type Task struct {
	ID    int
	GrpID int
	// Sources are the (sub-)sources of this task, all from group GrpID.
	Sources []*model.Source
	// SiteIdx[i] holds the indices of the sites affected by Sources[i].
	SiteIdx [][]int
	// Weight is the summed workload estimate of the task's sources.
	Weight float64
}

// Build filters, splits and packs the sources of every group into tasks.
// Sources that pass the filter for zero sites are dropped. A source with a
// malformed geometry fails the build unless params.SkipInvalidSources is
// set, in which case it is logged and skipped.
func Build(ctx context.Context, groups []*model.TrtGroup, sites model.SiteCollection, params model.RunParams) ([]*Task, error) {
	logger := ctxlog.FromContext(ctx)

	var tasks []*Task
	for _, grp := range groups {
		var cur *Task
		flush := func() {
			if cur != nil && len(cur.Sources) > 0 {
				tasks = append(tasks, cur)
			}
			cur = nil
		}

		for _, src := range grp.Sources {
			idx, err := sitefilter.AffectedSites(src, sites, params.MaximumDistanceKm)
			if err != nil {
				if params.SkipInvalidSources {
					logger.Warn("Skipping source with invalid geometry.", "sourceID", src.ID, "error", err)
					continue
				}
				return nil, err
			}
			if len(idx) == 0 {
				continue
			}

			for _, sub := range split(src, params.RuptureCeiling) {
				if cur != nil && cur.Weight+sub.Weight() > params.RuptureCeiling {
					flush()
				}
				if cur == nil {
					cur = &Task{ID: len(tasks), GrpID: grp.ID}
				}
				cur.Sources = append(cur.Sources, sub)
				cur.SiteIdx = append(cur.SiteIdx, idx)
				cur.Weight += sub.Weight()
			}
		}
		flush()
	}

	logger.Debug("Task partition built.", "tasks", len(tasks))
	return tasks, nil
}

// split cuts a source into sub-sources of at most ceiling workload each,
// preserving the total rupture count and the identity of each rupture index.
// A source already under the ceiling is returned as-is and its Splits
// annotation stays zero.
func split(src *model.Source, ceiling float64) []*model.Source {
	if src.Weight() <= ceiling {
		return []*model.Source{src}
	}

	parts := int(src.Weight()/ceiling) + 1
	n := src.NumRuptures()
	if parts > n {
		parts = n
	}
	src.Splits = parts

	subs := make([]*model.Source, 0, parts)
	for p := 0; p < parts; p++ {
		lo := src.RupLo + p*n/parts
		hi := src.RupLo + (p+1)*n/parts
		subs = append(subs, src.Split(p, lo, hi))
	}
	return subs
}
