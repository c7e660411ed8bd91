package sitefilter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/riskgridgo/internal/model"
)

func TestHaversineKnownDistance(t *testing.T) {
	// One degree of latitude is ~111 km.
	d := Haversine(0, 0, 1, 0)
	assert.InDelta(t, 111.2, d, 0.5)

	assert.Equal(t, 0.0, Haversine(45, 45, 45, 45))
}

func TestAffectedSitesFiltersByDistance(t *testing.T) {
	src := &model.Source{ID: "s1", Lat: 0, Lon: 0}
	sites := model.SiteCollection{
		{ID: "near", Lat: 0.1, Lon: 0},  // ~11 km
		{ID: "mid", Lat: 0.9, Lon: 0},   // ~100 km
		{ID: "far", Lat: 3.0, Lon: 0},   // ~334 km
	}

	idx, err := AffectedSites(src, sites, 150)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, idx)
}

// The source radius widens the reach: a site just beyond maxKm from the
// reference point is still included when the rupture extent covers the gap.
// The proxy may over-include but never under-include.
func TestAffectedSitesIsConservativeAboutRadius(t *testing.T) {
	sites := model.SiteCollection{{ID: "edge", Lat: 1.0, Lon: 0}} // ~111 km

	without := &model.Source{ID: "s1", Lat: 0, Lon: 0, RadiusKm: 0}
	idx, err := AffectedSites(without, sites, 100)
	require.NoError(t, err)
	assert.Empty(t, idx)

	with := &model.Source{ID: "s1", Lat: 0, Lon: 0, RadiusKm: 20}
	idx, err = AffectedSites(with, sites, 100)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, idx)
}

func TestAffectedSitesRejectsMalformedGeometry(t *testing.T) {
	sites := model.SiteCollection{{ID: "x", Lat: 0, Lon: 0}}

	cases := []struct {
		name string
		src  *model.Source
	}{
		{"nan coordinates", &model.Source{ID: "bad", Lat: math.NaN(), Lon: 0}},
		{"latitude out of range", &model.Source{ID: "bad", Lat: 91, Lon: 0}},
		{"longitude out of range", &model.Source{ID: "bad", Lat: 0, Lon: -181}},
		{"negative radius", &model.Source{ID: "bad", Lat: 0, Lon: 0, RadiusKm: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := AffectedSites(tc.src, sites, 100)
			var ferr *FilterError
			require.ErrorAs(t, err, &ferr)
			assert.Equal(t, "bad", ferr.SourceID)
		})
	}
}
