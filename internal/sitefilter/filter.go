// Package sitefilter prunes (source, site) pairs by distance before any
// rupture is generated. The predicate is conservative: it uses the
// great-circle distance to the source's reference point minus the source's
// maximum rupture extent, so it can over-include sites but never excludes a
// site the exact rupture-surface distance would include.
package sitefilter

import (
	"fmt"
	"math"

	"github.com/vk/riskgridgo/internal/model"
)

const earthRadiusKm = 6371.0

// FilterError reports malformed source geometry. It is the only way the
// filter fails; on valid geometry the predicate is total.
type FilterError struct {
	SourceID string
	Reason   string
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("source %q: %s", e.SourceID, e.Reason)
}

// AffectedSites returns the indices of sites within maxKm of the source,
// preserving site order. Indices refer to the given collection and remain
// valid for the whole run.
func AffectedSites(src *model.Source, sites model.SiteCollection, maxKm float64) ([]int, error) {
	if err := checkGeometry(src); err != nil {
		return nil, err
	}

	var idx []int
	for i, site := range sites {
		d := Haversine(src.Lat, src.Lon, site.Lat, site.Lon)
		if d-src.RadiusKm <= maxKm {
			idx = append(idx, i)
		}
	}
	return idx, nil
}

func checkGeometry(src *model.Source) error {
	switch {
	case math.IsNaN(src.Lat) || math.IsNaN(src.Lon):
		return &FilterError{SourceID: src.ID, Reason: "coordinates are NaN"}
	case src.Lat < -90 || src.Lat > 90:
		return &FilterError{SourceID: src.ID, Reason: fmt.Sprintf("latitude %v out of range", src.Lat)}
	case src.Lon < -180 || src.Lon > 180:
		return &FilterError{SourceID: src.ID, Reason: fmt.Sprintf("longitude %v out of range", src.Lon)}
	case src.RadiusKm < 0 || math.IsNaN(src.RadiusKm):
		return &FilterError{SourceID: src.ID, Reason: fmt.Sprintf("invalid radius %v", src.RadiusKm)}
	}
	return nil
}

// Haversine returns the great-circle distance in km between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const rad = math.Pi / 180
	phi1, phi2 := lat1*rad, lat2*rad
	dPhi := (lat2 - lat1) * rad
	dLambda := (lon2 - lon1) * rad

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)
	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(a)))
}
