package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes all possible top-level blocks from any job file.
type fileRoot struct {
	Job          *jobBlock           `hcl:"job,block"`
	Sites        []*siteBlock        `hcl:"site,block"`
	SourceModels []*sourceModelBlock `hcl:"source_model,block"`
	GsimSets     []*gsimsBlock       `hcl:"gsims,block"`
	Fragilities  []*fragilityBlock   `hcl:"fragility,block"`
}

type jobBlock struct {
	MaximumDistance    float64     `hcl:"maximum_distance"`
	InvestigationTime  float64     `hcl:"investigation_time"`
	TruncationLevel    float64     `hcl:"truncation_level,optional"`
	RandomSeed         int64       `hcl:"random_seed,optional"`
	Samples            int         `hcl:"logic_tree_samples,optional"`
	RuptureCeiling     float64     `hcl:"rupture_ceiling,optional"`
	SkipInvalidSources bool        `hcl:"skip_invalid_sources,optional"`
	Quantiles          []float64   `hcl:"quantiles,optional"`
	IMLs               []*imlBlock `hcl:"iml,block"`
}

type imlBlock struct {
	Name   string         `hcl:"name,label"`
	Levels hcl.Expression `hcl:"levels"`
}

type siteBlock struct {
	ID   string  `hcl:"id,label"`
	Lon  float64 `hcl:"lon"`
	Lat  float64 `hcl:"lat"`
	Vs30 float64 `hcl:"vs30,optional"`
}

type sourceModelBlock struct {
	ID      string         `hcl:"id,label"`
	Weight  float64        `hcl:"weight"`
	Sources []*sourceBlock `hcl:"source,block"`
}

type sourceBlock struct {
	ID         string  `hcl:"id,label"`
	Trt        string  `hcl:"trt"`
	Lon        float64 `hcl:"lon"`
	Lat        float64 `hcl:"lat"`
	RadiusKm   float64 `hcl:"radius"`
	MinMag     float64 `hcl:"min_mag"`
	MaxMag     float64 `hcl:"max_mag"`
	AnnualRate float64 `hcl:"annual_rate"`
	Ruptures   int     `hcl:"ruptures"`
	Point      bool    `hcl:"point,optional"`
}

type gsimsBlock struct {
	Trt      string             `hcl:"trt,label"`
	Branches []*gsimBranchBlock `hcl:"branch,block"`
}

type gsimBranchBlock struct {
	ID     string  `hcl:"id,label"`
	Weight float64 `hcl:"weight"`
	Model  string  `hcl:"model"`
}

type fragilityBlock struct {
	Taxonomy string         `hcl:"taxonomy,label"`
	IMT      string         `hcl:"imt"`
	Levels   hcl.Expression `hcl:"levels"`
	Clamp    *bool          `hcl:"clamp,optional"`
	States   []*stateBlock  `hcl:"state,block"`
}

type stateBlock struct {
	Name string         `hcl:"name,label"`
	PoEs hcl.Expression `hcl:"poes"`
}
