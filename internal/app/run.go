package app

import (
	"context"
	"fmt"

	"github.com/vk/riskgridgo/internal/ctxlog"
	"github.com/vk/riskgridgo/internal/engine"
	"github.com/vk/riskgridgo/internal/fragility"
)

// DamageResult is the damage distribution for one fragility taxonomy:
// per-site per-realization distributions plus their weighted statistics.
// State index 0 is always "no damage".
type DamageResult struct {
	Taxonomy string
	States   []string
	// ByRlz[site][rlz][state] is the per-realization distribution.
	ByRlz [][][]float64
	// Mean[site][state] is the weighted mean across realizations.
	Mean [][]float64
	// Quantiles[q][site][state] holds the configured weighted quantiles.
	Quantiles map[float64][][]float64
}

// RunResult is the in-process output surface handed to the reporting layer.
type RunResult struct {
	Hazard *engine.Output
	Damage []*DamageResult
}

// Run executes the full calculation: hazard curves per realization, then
// damage distributions per fragility taxonomy.
func (a *App) Run(ctx context.Context) (*RunResult, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(a.config.HealthcheckPort)
	}

	a.logger.Info("Starting hazard calculation.",
		"sites", len(a.input.Sites),
		"workers", a.config.WorkerCount)

	eng := engine.New(a.config.WorkerCount)
	out, err := eng.Run(ctx, engine.Input{
		Tree:   a.tree,
		Sites:  a.input.Sites,
		Params: a.input.Params,
		Gsims:  a.gsims,
	})
	if err != nil {
		return nil, fmt.Errorf("hazard calculation failed: %w", err)
	}
	a.logger.Info("Hazard calculation finished.",
		"realizations", len(out.Rlzs),
		"tasks", len(out.Stats))
	a.logSummary(out)

	result := &RunResult{Hazard: out}
	for _, fn := range a.input.Fragilities {
		dmg, err := a.convolveDamage(out, fn)
		if err != nil {
			return nil, fmt.Errorf("damage convolution for %q failed: %w", fn.Taxonomy, err)
		}
		result.Damage = append(result.Damage, dmg)
		for site := range dmg.Mean {
			a.logger.Info("Mean damage distribution.",
				"taxonomy", dmg.Taxonomy,
				"site", a.input.Sites[site].ID,
				"states", dmg.States,
				"mean", dmg.Mean[site])
		}
	}

	a.logger.Debug("App.Run method finished.")
	return result, nil
}

// convolveDamage maps every per-realization hazard curve through one
// fragility function and reduces across realizations with the logic-tree
// weights.
func (a *App) convolveDamage(out *engine.Output, fn *fragility.Function) (*DamageResult, error) {
	imtIdx := -1
	for i, imt := range out.Levels.IMTs() {
		if imt.Name == fn.IMT {
			imtIdx = i
			break
		}
	}
	if imtIdx < 0 {
		return nil, fmt.Errorf("fragility references imt %q, not computed by this job", fn.IMT)
	}
	levels := out.Levels.IMTs()[imtIdx].Levels

	dmg := &DamageResult{
		Taxonomy:  fn.Taxonomy,
		States:    append([]string{"no_damage"}, fn.States...),
		ByRlz:     make([][][]float64, len(a.input.Sites)),
		Mean:      make([][]float64, len(a.input.Sites)),
		Quantiles: make(map[float64][][]float64),
	}
	for _, q := range a.input.Params.Quantiles {
		dmg.Quantiles[q] = make([][]float64, len(a.input.Sites))
	}

	weights := out.Assoc.Weights()
	for site := range a.input.Sites {
		dists := make([][]float64, len(out.Rlzs))
		for rlz := range out.Rlzs {
			poes := out.Levels.Slice(out.Hazard[rlz][site], imtIdx)
			dist, err := fn.Convolve(levels, poes)
			if err != nil {
				return nil, fmt.Errorf("site %q, realization %d: %w", a.input.Sites[site].ID, rlz, err)
			}
			dists[rlz] = dist
		}
		dmg.ByRlz[site] = dists

		mean, err := fragility.Mean(dists, weights)
		if err != nil {
			return nil, err
		}
		dmg.Mean[site] = mean
		for _, q := range a.input.Params.Quantiles {
			quant, err := fragility.Quantile(dists, weights, q)
			if err != nil {
				return nil, err
			}
			dmg.Quantiles[q][site] = quant
		}
	}
	return dmg, nil
}

// logSummary reports the realization association and per-task stats, the
// audit surface for the reporting layer.
func (a *App) logSummary(out *engine.Output) {
	for _, rlz := range out.Rlzs {
		a.logger.Debug("Realization.", "index", rlz.Index, "weight", rlz.Weight, "label", rlz.Label)
	}
	for _, pair := range out.Assoc.Pairs() {
		a.logger.Debug("Association.", "grp", pair.Grp, "gsim", pair.Model, "rlzs", pair.Rlzs)
	}
	var ruptures int
	for _, st := range out.Stats {
		ruptures += st.Ruptures
	}
	a.logger.Info("Rupture workload processed.", "ruptures", ruptures, "tasks", len(out.Stats))
}
