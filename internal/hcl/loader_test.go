package hcl

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/riskgridgo/internal/ctxlog"
)

const validJob = `
job {
  maximum_distance   = 200
  investigation_time = 50
  truncation_level   = 3
  random_seed        = 42

  quantiles = [0.15, 0.85]

  iml "PGA" {
    levels = [0.05, 0.1, 0.2, 0.4]
  }
  iml "SA(1.0)" {
    levels = [0.02, 0.05, 0.1]
  }
}

site "s1" {
  lon  = 0.1
  lat  = 0.1
  vs30 = 450
}

site "s2" {
  lon = 0.3
  lat = 0.2
}

source_model "b1" {
  weight = 0.6

  source "fault_a" {
    trt         = "Active Shallow Crust"
    lon         = 0.0
    lat         = 0.0
    radius      = 15
    min_mag     = 5.0
    max_mag     = 7.0
    annual_rate = 0.2
    ruptures    = 100
  }
}

source_model "b2" {
  weight = 0.4

  source "fault_b" {
    trt         = "Active Shallow Crust"
    lon         = 0.0
    lat         = 0.0
    radius      = 15
    min_mag     = 5.0
    max_mag     = 6.5
    annual_rate = 0.1
    ruptures    = 60
    point       = true
  }
}

gsims "Active Shallow Crust" {
  branch "g1" {
    weight = 0.7
    model  = "trunc_normal"
  }
  branch "g2" {
    weight = 0.3
    model  = "exp_decay"
  }
}

fragility "masonry" {
  imt    = "PGA"
  levels = [0.05, 0.1, 0.2, 0.4]

  state "slight" {
    poes = [0.05, 0.2, 0.5, 0.8]
  }
  state "complete" {
    poes = [0.0, 0.02, 0.1, 0.4]
  }
}
`

func testCtx(t *testing.T) context.Context {
	t.Helper()
	return ctxlog.WithLogger(context.Background(), slog.Default())
}

func writeJob(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "job.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadValidJob(t *testing.T) {
	in, err := NewLoader().Load(testCtx(t), writeJob(t, validJob))
	require.NoError(t, err)

	assert.Equal(t, 200.0, in.Params.MaximumDistanceKm)
	assert.Equal(t, 50.0, in.Params.InvestigationTime)
	assert.Equal(t, int64(42), in.Params.RandomSeed)
	assert.Equal(t, []float64{0.15, 0.85}, in.Params.Quantiles)
	assert.Equal(t, defaultRuptureCeiling, int(in.Params.RuptureCeiling))

	// IMT declaration order is preserved.
	require.Len(t, in.Params.IMTs, 2)
	assert.Equal(t, "PGA", in.Params.IMTs[0].Name)
	assert.Equal(t, []float64{0.05, 0.1, 0.2, 0.4}, in.Params.IMTs[0].Levels)
	assert.Equal(t, "SA(1.0)", in.Params.IMTs[1].Name)

	require.Len(t, in.Sites, 2)
	assert.Equal(t, 450.0, in.Sites[0].Vs30)
	assert.Equal(t, float64(defaultVs30), in.Sites[1].Vs30)

	require.Len(t, in.Branches, 2)
	assert.Equal(t, "b1", in.Branches[0].ID)
	assert.InDelta(t, 0.6, in.Branches[0].Weight, 1e-12)
	require.Len(t, in.Branches[0].Groups, 1)
	src := in.Branches[0].Groups[0].Sources[0]
	assert.Equal(t, "fault_a", src.ID)
	assert.Equal(t, 100, src.TotalRuptures)
	assert.Equal(t, 100, src.NumRuptures())
	assert.False(t, src.Point)
	assert.True(t, in.Branches[1].Groups[0].Sources[0].Point)

	require.Len(t, in.GsimSets, 1)
	assert.Equal(t, "Active Shallow Crust", in.GsimSets[0].TectonicRegion)
	require.Len(t, in.GsimSets[0].Branches, 2)
	assert.Equal(t, "trunc_normal", in.GsimSets[0].Branches[0].Model)

	require.Len(t, in.Fragilities, 1)
	fn := in.Fragilities[0]
	assert.Equal(t, "masonry", fn.Taxonomy)
	assert.Equal(t, []string{"slight", "complete"}, fn.States)
	assert.True(t, fn.Clamp)
}

func TestLoadMergesMultipleFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.hcl"), []byte(`
job {
  maximum_distance   = 100
  investigation_time = 1
  iml "PGA" {
    levels = [0.1, 0.2]
  }
}
site "only" {
  lon = 0
  lat = 0
}
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.hcl"), []byte(`
source_model "b1" {
  weight = 1
  source "s1" {
    trt         = "ASC"
    lon         = 0
    lat         = 0
    radius      = 1
    min_mag     = 5
    max_mag     = 6
    annual_rate = 0.1
    ruptures    = 10
  }
}
gsims "ASC" {
  branch "g" {
    weight = 1
    model  = "trunc_normal"
  }
}
`), 0o644))

	in, err := NewLoader().Load(testCtx(t), dir)
	require.NoError(t, err)
	assert.Len(t, in.Sites, 1)
	assert.Len(t, in.Branches, 1)
	assert.Len(t, in.GsimSets, 1)
}

func TestLoadRejectsBadJobs(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{"no job block", `site "s" {
  lon = 0
  lat = 0
}`, "no job block"},
		{"no sites", `
job {
  maximum_distance = 100
  investigation_time = 1
  iml "PGA" {
    levels = [0.1, 0.2]
  }
}`, "no site blocks"},
		{"zero ruptures", `
job {
  maximum_distance = 100
  investigation_time = 1
  iml "PGA" {
    levels = [0.1, 0.2]
  }
}
site "s" {
  lon = 0
  lat = 0
}
source_model "b" {
  weight = 1
  source "x" {
    trt         = "ASC"
    lon         = 0
    lat         = 0
    radius      = 1
    min_mag     = 5
    max_mag     = 6
    annual_rate = 0.1
    ruptures    = 0
  }
}`, "ruptures must be positive"},
		{"inverted magnitudes", `
job {
  maximum_distance = 100
  investigation_time = 1
  iml "PGA" {
    levels = [0.1, 0.2]
  }
}
site "s" {
  lon = 0
  lat = 0
}
source_model "b" {
  weight = 1
  source "x" {
    trt         = "ASC"
    lon         = 0
    lat         = 0
    radius      = 1
    min_mag     = 6
    max_mag     = 5
    annual_rate = 0.1
    ruptures    = 5
  }
}`, "max_mag below min_mag"},
		{"duplicate site", `
job {
  maximum_distance = 100
  investigation_time = 1
  iml "PGA" {
    levels = [0.1, 0.2]
  }
}
site "s" {
  lon = 0
  lat = 0
}
site "s" {
  lon = 1
  lat = 1
}`, "duplicated"},
		{"non-numeric levels", `
job {
  maximum_distance = 100
  investigation_time = 1
  iml "PGA" {
    levels = ["soft", "hard"]
  }
}
site "s" {
  lon = 0
  lat = 0
}`, "number"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLoader().Load(testCtx(t), writeJob(t, tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadMissingPath(t *testing.T) {
	_, err := NewLoader().Load(testCtx(t), filepath.Join(t.TempDir(), "nope.hcl"))
	require.Error(t, err)
}
