// Package engine orchestrates the whole hazard calculation: logic-tree
// expansion, task partitioning, the parallel worker pool, and the
// commutative fold of partial results into per-realization hazard curves.
//
// Workers and the aggregator communicate by message passing: tasks flow out
// through a bounded channel (backpressure when the pool is saturated),
// partial results flow back to a single folding owner. No task ever touches
// shared mutable state.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/vk/riskgridgo/internal/ctxlog"
	"github.com/vk/riskgridgo/internal/curves"
	"github.com/vk/riskgridgo/internal/gsim"
	"github.com/vk/riskgridgo/internal/logictree"
	"github.com/vk/riskgridgo/internal/model"
	"github.com/vk/riskgridgo/internal/partition"
	"github.com/vk/riskgridgo/internal/worker"
)

// maxAttempts bounds how often a failing task is retried before the run
// fails. Retries re-run the identical deterministic inputs.
const maxAttempts = 3

// TaskError reports a task that exhausted its retry budget. It names the
// task and its first source so run-level errors point at the offending
// entity.
type TaskError struct {
	TaskID   int
	GrpID    int
	SourceID string
	Attempts int
	Err      error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %d (group %d, source %q) failed after %d attempts: %v",
		e.TaskID, e.GrpID, e.SourceID, e.Attempts, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }

// Input is everything a run needs, assembled by the caller from the loaded
// job. All of it is shared read-only across tasks.
type Input struct {
	Tree   *logictree.Tree
	Sites  model.SiteCollection
	Params model.RunParams
	Gsims  map[string]gsim.Model
}

// TaskStat is the per-task timing/workload report exposed after a run.
type TaskStat struct {
	TaskID   int
	GrpID    int
	Ruptures int
	Elapsed  time.Duration
}

// Output holds the aggregated results of a run.
type Output struct {
	Rlzs  []logictree.Realization
	Assoc *logictree.Assoc
	// Levels is the flattened intensity level axis shared by all curves.
	Levels *curves.LevelSet
	// Hazard[rlz][site] is the exceedance-probability curve along Levels.
	Hazard [][][]float64
	Stats  []TaskStat
}

// runTaskFunc matches worker.Run; tests substitute it to inject failures.
type runTaskFunc func(ctx context.Context, t *partition.Task, gsimNames []string, gsims map[string]gsim.Model,
	sites model.SiteCollection, params model.RunParams, ls *curves.LevelSet) (*worker.Result, error)

// Engine runs calculations on a fixed-size worker pool.
type Engine struct {
	workers int
	runTask runTaskFunc
}

// New creates an engine with the given pool size.
func New(workers int) *Engine {
	if workers < 1 {
		workers = 1
	}
	return &Engine{workers: workers, runTask: worker.Run}
}

// Run executes the full pipeline. It returns the first fatal error: a
// malformed logic tree, a geometry error (unless skipping is configured) or
// a task that exhausted its retries. A cancelled context aborts between
// tasks; already-started tasks finish or are discarded harmlessly.
func (e *Engine) Run(ctx context.Context, in Input) (*Output, error) {
	logger := ctxlog.FromContext(ctx)

	rlzs, err := in.Tree.Realizations(in.Params.Samples, in.Params.RandomSeed)
	if err != nil {
		return nil, err
	}
	assoc := logictree.NewAssoc(in.Tree, rlzs)
	logger.Info("Logic tree expanded.", "realizations", len(rlzs), "sampled", in.Params.Samples > 0)

	tasks, err := partition.Build(ctx, in.Tree.Groups(), in.Sites, in.Params)
	if err != nil {
		return nil, err
	}
	logger.Info("Workload partitioned.", "tasks", len(tasks))

	ls := curves.NewLevelSet(in.Params.IMTs)
	acc, stats, err := e.runPool(ctx, in, assoc, tasks, ls)
	if err != nil {
		return nil, err
	}

	return &Output{
		Rlzs:   rlzs,
		Assoc:  assoc,
		Levels: ls,
		Hazard: fanOut(acc, assoc, ls, len(in.Sites)),
		Stats:  stats,
	}, nil
}

// accumulator is the running non-exceedance total per (group, gsim). It is
// only ever touched by the folding owner goroutine.
type accumulator map[int]map[string]curves.NonExceedance

// runPool feeds tasks to the workers and folds their results as they
// arrive, in completion order. The fold is commutative, so completion order
// does not affect the outcome.
func (e *Engine) runPool(ctx context.Context, in Input, assoc *logictree.Assoc, tasks []*partition.Task,
	ls *curves.LevelSet) (accumulator, []TaskStat, error) {

	logger := ctxlog.FromContext(ctx)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	taskCh := make(chan *partition.Task, e.workers)
	resCh := make(chan *worker.Result, e.workers)
	errCh := make(chan error, 1)

	// Producer: deterministic task order, stops on cancellation.
	go func() {
		defer close(taskCh)
		for _, t := range tasks {
			select {
			case taskCh <- t:
			case <-runCtx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			wlog := logger.With("workerID", workerID)
			wlog.Debug("Worker started.")
			for t := range taskCh {
				if runCtx.Err() != nil {
					continue
				}
				res, err := e.attempt(runCtx, in, assoc, t, ls, wlog)
				if err != nil {
					select {
					case errCh <- err:
					default:
					}
					cancel()
					continue
				}
				resCh <- res
			}
			wlog.Debug("Worker finished.")
		}(w)
	}

	// Close the result stream once every worker has drained out.
	go func() {
		wg.Wait()
		close(resCh)
	}()

	// Single folding owner: the only writer of the running totals.
	acc := make(accumulator)
	var stats []TaskStat
	for res := range resCh {
		byGsim, ok := acc[res.GrpID]
		if !ok {
			byGsim = make(map[string]curves.NonExceedance)
			acc[res.GrpID] = byGsim
		}
		for name, ne := range res.ByGsim {
			if cur, ok := byGsim[name]; ok {
				cur.Fold(ne)
			} else {
				byGsim[name] = ne
			}
		}
		stats = append(stats, TaskStat{TaskID: res.TaskID, GrpID: res.GrpID, Ruptures: res.Ruptures, Elapsed: res.Elapsed})
		logger.Debug("Task folded.", "taskID", res.TaskID, "ruptures", res.Ruptures, "elapsed", res.Elapsed)
	}

	select {
	case err := <-errCh:
		return nil, nil, err
	default:
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	sort.Slice(stats, func(i, j int) bool { return stats[i].TaskID < stats[j].TaskID })
	return acc, stats, nil
}

// attempt runs one task with the bounded retry budget. Task results are
// fresh partial products, so a retried task cannot double-count.
func (e *Engine) attempt(ctx context.Context, in Input, assoc *logictree.Assoc, t *partition.Task,
	ls *curves.LevelSet, wlog *slog.Logger) (*worker.Result, error) {

	gsimNames := assoc.GsimsFor(t.GrpID)
	var lastErr error
	for a := 1; a <= maxAttempts; a++ {
		res, err := e.runTask(ctx, t, gsimNames, in.Gsims, in.Sites, in.Params, ls)
		if err == nil {
			return res, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		wlog.Warn("Task attempt failed, retrying.", "taskID", t.ID, "attempt", a, "error", err)
	}

	sourceID := ""
	if len(t.Sources) > 0 {
		sourceID = t.Sources[0].ID
	}
	return nil, &TaskError{TaskID: t.ID, GrpID: t.GrpID, SourceID: sourceID, Attempts: maxAttempts, Err: lastErr}
}

// fanOut translates the accumulated (group, gsim) non-exceedance products
// into per-realization hazard curves: every realization that selected a
// gsim for a group receives that group's curve, and curves from different
// groups combine by the same non-exceedance product rule.
func fanOut(acc accumulator, assoc *logictree.Assoc, ls *curves.LevelSet, numSites int) [][][]float64 {
	rlzNE := make([]curves.NonExceedance, assoc.NumRealizations())
	for i := range rlzNE {
		rlzNE[i] = make(curves.NonExceedance)
	}

	grps := make([]int, 0, len(acc))
	for grp := range acc {
		grps = append(grps, grp)
	}
	sort.Ints(grps)

	for _, grp := range grps {
		for _, name := range assoc.GsimsFor(grp) {
			ne, ok := acc[grp][name]
			if !ok {
				continue
			}
			for _, rlz := range assoc.RlzsFor(grp, name) {
				rlzNE[rlz].Fold(ne)
			}
		}
	}

	hazard := make([][][]float64, len(rlzNE))
	for rlz, ne := range rlzNE {
		hazard[rlz] = make([][]float64, numSites)
		for site := 0; site < numSites; site++ {
			hazard[rlz][site] = ne.PoEs(site, ls.Total())
		}
	}
	return hazard
}
