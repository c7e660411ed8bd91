package hcl

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/riskgridgo/internal/ctxlog"
	"github.com/vk/riskgridgo/internal/fragility"
	"github.com/vk/riskgridgo/internal/fsutil"
	"github.com/vk/riskgridgo/internal/logictree"
	"github.com/vk/riskgridgo/internal/model"
)

// defaultRuptureCeiling is the per-task workload ceiling used when the job
// does not set one.
const defaultRuptureCeiling = 10_000

// defaultVs30 is the reference rock site condition in m/s.
const defaultVs30 = 760

// Input is the fully translated job, ready to hand to the engine.
type Input struct {
	Params      model.RunParams
	Sites       model.SiteCollection
	Branches    []logictree.SourceModelBranch
	GsimSets    []logictree.GsimBranchSet
	Fragilities []*fragility.Function
}

// Loader loads and translates HCL job files.
type Loader struct{}

// NewLoader creates a new HCL job loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file under the given paths and merges their blocks
// into a single Input. A path may be a file or a directory.
func (l *Loader) Load(ctx context.Context, paths ...string) (*Input, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := findJobFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl job files found under %v", paths)
	}
	logger.Debug("Discovered job files.", "count", len(files))

	parser := hclparse.NewParser()
	var roots []*fileRoot
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse %s: %w", file, diags)
		}
		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode %s: %w", file, diags)
		}
		roots = append(roots, &root)
	}

	in, err := translate(roots)
	if err != nil {
		return nil, err
	}
	logger.Debug("HCL loading complete.",
		"sites", len(in.Sites),
		"source_model_branches", len(in.Branches),
		"gsim_sets", len(in.GsimSets),
		"fragilities", len(in.Fragilities))
	return in, nil
}

func findJobFiles(paths []string) ([]string, error) {
	var all []string
	seen := make(map[string]struct{})
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("job path %s: %w", path, err)
		}
		if !info.IsDir() {
			if _, dup := seen[path]; !dup {
				seen[path] = struct{}{}
				all = append(all, path)
			}
			continue
		}
		files, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if _, dup := seen[f]; !dup {
				seen[f] = struct{}{}
				all = append(all, f)
			}
		}
	}
	return all, nil
}

// translate merges the decoded file roots into the domain model.
func translate(roots []*fileRoot) (*Input, error) {
	in := &Input{}

	var job *jobBlock
	for _, root := range roots {
		if root.Job == nil {
			continue
		}
		if job != nil {
			return nil, fmt.Errorf("more than one job block defined")
		}
		job = root.Job
	}
	if job == nil {
		return nil, fmt.Errorf("no job block defined")
	}

	params, err := translateJob(job)
	if err != nil {
		return nil, err
	}
	in.Params = params

	siteIDs := make(map[string]bool)
	for _, root := range roots {
		for _, s := range root.Sites {
			if siteIDs[s.ID] {
				return nil, fmt.Errorf("site ID %q is duplicated", s.ID)
			}
			siteIDs[s.ID] = true
			vs30 := s.Vs30
			if vs30 == 0 {
				vs30 = defaultVs30
			}
			in.Sites = append(in.Sites, model.Site{ID: s.ID, Lon: s.Lon, Lat: s.Lat, Vs30: vs30})
		}
		for _, sm := range root.SourceModels {
			branch, err := translateSourceModel(sm)
			if err != nil {
				return nil, err
			}
			in.Branches = append(in.Branches, branch)
		}
		for _, gs := range root.GsimSets {
			set := logictree.GsimBranchSet{TectonicRegion: gs.Trt}
			for _, br := range gs.Branches {
				set.Branches = append(set.Branches, logictree.GsimBranch{
					ID: br.ID, Weight: br.Weight, Model: br.Model,
				})
			}
			in.GsimSets = append(in.GsimSets, set)
		}
		for _, fb := range root.Fragilities {
			fn, err := translateFragility(fb)
			if err != nil {
				return nil, err
			}
			in.Fragilities = append(in.Fragilities, fn)
		}
	}

	if len(in.Sites) == 0 {
		return nil, fmt.Errorf("no site blocks defined")
	}
	if err := in.Params.Validate(); err != nil {
		return nil, err
	}
	return in, nil
}

func translateJob(job *jobBlock) (model.RunParams, error) {
	params := model.RunParams{
		MaximumDistanceKm:  job.MaximumDistance,
		InvestigationTime:  job.InvestigationTime,
		TruncationLevel:    job.TruncationLevel,
		RandomSeed:         job.RandomSeed,
		Samples:            job.Samples,
		RuptureCeiling:     job.RuptureCeiling,
		SkipInvalidSources: job.SkipInvalidSources,
		Quantiles:          job.Quantiles,
	}
	if params.RuptureCeiling == 0 {
		params.RuptureCeiling = defaultRuptureCeiling
	}
	for _, iml := range job.IMLs {
		levels, err := decodeFloats(iml.Levels)
		if err != nil {
			return params, fmt.Errorf("iml %q: %w", iml.Name, err)
		}
		params.IMTs = append(params.IMTs, model.IMT{Name: iml.Name, Levels: levels})
	}
	return params, nil
}

// translateSourceModel builds a logic-tree branch, grouping its sources by
// tectonic region type in order of first appearance.
func translateSourceModel(sm *sourceModelBlock) (logictree.SourceModelBranch, error) {
	branch := logictree.SourceModelBranch{ID: sm.ID, Weight: sm.Weight}
	byTrt := make(map[string]*model.TrtGroup)
	for _, sb := range sm.Sources {
		if sb.Ruptures <= 0 {
			return branch, fmt.Errorf("source %q: ruptures must be positive", sb.ID)
		}
		if sb.MaxMag < sb.MinMag {
			return branch, fmt.Errorf("source %q: max_mag below min_mag", sb.ID)
		}
		src := &model.Source{
			ID:             sb.ID,
			TectonicRegion: sb.Trt,
			Lon:            sb.Lon,
			Lat:            sb.Lat,
			RadiusKm:       sb.RadiusKm,
			MinMag:         sb.MinMag,
			MaxMag:         sb.MaxMag,
			AnnualRate:     sb.AnnualRate,
			Point:          sb.Point,
			TotalRuptures:  sb.Ruptures,
			RupLo:          0,
			RupHi:          sb.Ruptures,
		}
		grp, ok := byTrt[sb.Trt]
		if !ok {
			grp = &model.TrtGroup{TectonicRegion: sb.Trt}
			byTrt[sb.Trt] = grp
			branch.Groups = append(branch.Groups, grp)
		}
		if err := grp.Add(src); err != nil {
			return branch, err
		}
	}
	return branch, nil
}

func translateFragility(fb *fragilityBlock) (*fragility.Function, error) {
	levels, err := decodeFloats(fb.Levels)
	if err != nil {
		return nil, fmt.Errorf("fragility %q: %w", fb.Taxonomy, err)
	}
	fn := &fragility.Function{
		Taxonomy: fb.Taxonomy,
		IMT:      fb.IMT,
		Levels:   levels,
		Clamp:    true,
	}
	if fb.Clamp != nil {
		fn.Clamp = *fb.Clamp
	}
	for _, st := range fb.States {
		poes, err := decodeFloats(st.PoEs)
		if err != nil {
			return nil, fmt.Errorf("fragility %q state %q: %w", fb.Taxonomy, st.Name, err)
		}
		fn.States = append(fn.States, st.Name)
		fn.Exceed = append(fn.Exceed, poes)
	}
	if err := fn.Validate(); err != nil {
		return nil, err
	}
	return fn, nil
}
