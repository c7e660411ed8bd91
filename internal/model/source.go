package model

import "fmt"

// pointSourceWeight discounts the workload of point sources relative to
// extended sources when balancing tasks: a point-source rupture is roughly
// forty times cheaper to process than a fault rupture.
const pointSourceWeight = 1.0 / 40.0

// Source is a seismic source: a location that generates earthquake ruptures
// over a magnitude range at a given annual rate. The geometry is reduced to
// a reference point plus a maximum rupture extent (RadiusKm); anything finer
// lives inside the ground-motion model.
type Source struct {
	// ID uniquely identifies the source within the composite model.
	ID string
	// TectonicRegion is the tectonic region type, e.g. "Active Shallow Crust".
	TectonicRegion string

	Lon      float64
	Lat      float64
	RadiusKm float64

	MinMag     float64
	MaxMag     float64
	AnnualRate float64

	// Point marks a point source, whose per-rupture workload is discounted
	// when balancing tasks.
	Point bool

	// TotalRuptures is the rupture count of the whole source, fixed at model
	// load. Sub-sources produced by splitting keep the parent's value so
	// that rupture i means the same event before and after splitting.
	TotalRuptures int

	// RupLo and RupHi delimit the half-open rupture index range [RupLo, RupHi)
	// this (sub-)source is responsible for. For an unsplit source the range
	// is [0, TotalRuptures).
	RupLo int
	RupHi int

	// Splits is the number of sub-sources this source was split into by the
	// task builder. Written once during task building, before any parallel
	// work starts; zero means the source was not split.
	Splits int
}

// NumRuptures returns the number of ruptures in this (sub-)source's range.
func (s *Source) NumRuptures() int {
	return s.RupHi - s.RupLo
}

// Weight is the load-balancing cost estimate of this (sub-)source.
func (s *Source) Weight() float64 {
	if s.Point {
		return float64(s.NumRuptures()) * pointSourceWeight
	}
	return float64(s.NumRuptures())
}

// Split returns a sub-source covering the rupture range [lo, hi). The
// sub-source shares the parent's geometry and tectonic region and keeps the
// parent's TotalRuptures, so generated ruptures are identical to the
// parent's for the same index.
func (s *Source) Split(part, lo, hi int) *Source {
	sub := *s
	sub.ID = fmt.Sprintf("%s:%d", s.ID, part)
	sub.RupLo = lo
	sub.RupHi = hi
	sub.Splits = 0
	return &sub
}

// TrtGroup collects the sources of one source-model branch sharing a
// tectonic region type. It is the unit at which a ground-motion model is
// assigned. Group IDs are global across source-model branches.
type TrtGroup struct {
	ID             int
	TectonicRegion string
	Sources        []*Source

	// Aggregate bookkeeping maintained by Add, used for reporting.
	MinMag      float64
	MaxMag      float64
	NumRuptures int
}

// Add appends a source to the group and updates the magnitude range and
// rupture count. The source's tectonic region must match the group's.
func (g *TrtGroup) Add(src *Source) error {
	if src.TectonicRegion != g.TectonicRegion {
		return fmt.Errorf("source %q has tectonic region %q, group %d expects %q",
			src.ID, src.TectonicRegion, g.ID, g.TectonicRegion)
	}
	if len(g.Sources) == 0 || src.MinMag < g.MinMag {
		g.MinMag = src.MinMag
	}
	if len(g.Sources) == 0 || src.MaxMag > g.MaxMag {
		g.MaxMag = src.MaxMag
	}
	g.Sources = append(g.Sources, src)
	g.NumRuptures += src.NumRuptures()
	return nil
}
