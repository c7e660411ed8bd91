// Package worker computes the partial hazard contribution of a single task:
// for every rupture of the task's sources, every affected site and every
// ground-motion model assigned to the task's group, the per-level
// exceedance probability, accumulated as a non-exceedance product.
//
// Run is a pure function of its inputs. Re-running an identical task yields
// the same result, so a task that failed transiently can be retried (or a
// finished duplicate discarded) without corrupting the aggregation.
package worker

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/vk/riskgridgo/internal/curves"
	"github.com/vk/riskgridgo/internal/gsim"
	"github.com/vk/riskgridgo/internal/model"
	"github.com/vk/riskgridgo/internal/partition"
	"github.com/vk/riskgridgo/internal/sitefilter"
)

// Result is the partial product of one task, keyed by ground-motion model
// name. It is owned by the aggregator once returned; the worker keeps no
// reference.
type Result struct {
	TaskID int
	GrpID  int
	ByGsim map[string]curves.NonExceedance

	// Informational stats for reporting.
	Ruptures int
	Elapsed  time.Duration
}

// Run executes one task. gsims must contain an entry for every name in the
// task group's association (the caller resolves them up front). A task whose
// sources generate zero ruptures returns an identity result.
func Run(ctx context.Context, t *partition.Task, gsimNames []string, gsims map[string]gsim.Model,
	sites model.SiteCollection, params model.RunParams, ls *curves.LevelSet) (*Result, error) {

	start := time.Now()
	res := &Result{
		TaskID: t.ID,
		GrpID:  t.GrpID,
		ByGsim: make(map[string]curves.NonExceedance, len(gsimNames)),
	}
	for _, name := range gsimNames {
		if _, ok := gsims[name]; !ok {
			return nil, fmt.Errorf("task %d: no implementation for gsim %q", t.ID, name)
		}
		res.ByGsim[name] = make(curves.NonExceedance)
	}

	poes := make([]float64, ls.Total())
	for si, src := range t.Sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, rup := range generate(src, ruptureRates(src)) {
			res.Ruptures++
			pOcc := 1 - math.Exp(-rup.AnnualRate*params.InvestigationTime)
			if pOcc == 0 {
				continue
			}
			for _, siteIdx := range t.SiteIdx[si] {
				site := sites[siteIdx]
				gctx := gsim.Context{
					Mag:        rup.Mag,
					DistanceKm: sitefilter.Haversine(src.Lat, src.Lon, site.Lat, site.Lon),
					Vs30:       site.Vs30,
				}
				for _, name := range gsimNames {
					m := gsims[name]
					for i, imt := range ls.IMTs() {
						copy(ls.Slice(poes, i), m.PoEs(gctx, imt.Levels, params.TruncationLevel))
					}
					for i := range poes {
						poes[i] *= pOcc
					}
					res.ByGsim[name].ApplyRupture(siteIdx, poes)
				}
			}
		}
	}

	res.Elapsed = time.Since(start)
	return res, nil
}

// Rupture is one earthquake instance generated from a source. Ruptures are
// ephemeral: generated, consumed and dropped inside a single task.
type Rupture struct {
	Mag        float64
	Rake       float64
	AnnualRate float64
}

// generate materializes the ruptures of the (sub-)source's index range.
// Rupture i is fully determined by the parent source and i, so a split
// source produces exactly the ruptures its parent would for the same
// indices.
func generate(src *model.Source, rates []float64) []Rupture {
	rups := make([]Rupture, 0, src.NumRuptures())
	for i := src.RupLo; i < src.RupHi; i++ {
		rups = append(rups, Rupture{
			Mag:        magnitude(src, i),
			AnnualRate: rates[i-src.RupLo],
		})
	}
	return rups
}

// magnitude spreads rupture magnitudes evenly over the source's range, bin
// centers over the parent's total count.
func magnitude(src *model.Source, i int) float64 {
	return src.MinMag + (src.MaxMag-src.MinMag)*(float64(i)+0.5)/float64(src.TotalRuptures)
}

// gutenbergB is the b-value of the magnitude-frequency distribution used to
// apportion the source's total annual rate across its ruptures.
const gutenbergB = 1.0

// ruptureRates apportions src.AnnualRate over the ruptures of this
// (sub-)source following a Gutenberg-Richter relative frequency. The
// normalization constant is computed over the parent's full rupture range so
// splitting never changes any individual rupture's rate.
func ruptureRates(src *model.Source) []float64 {
	var norm float64
	for i := 0; i < src.TotalRuptures; i++ {
		norm += math.Pow(10, -gutenbergB*magnitude(src, i))
	}
	rates := make([]float64, 0, src.NumRuptures())
	for i := src.RupLo; i < src.RupHi; i++ {
		rel := math.Pow(10, -gutenbergB*magnitude(src, i)) / norm
		rates = append(rates, src.AnnualRate*rel)
	}
	return rates
}
