package model

// Site is a location of interest with its site parameters.
type Site struct {
	ID   string
	Lon  float64
	Lat  float64
	Vs30 float64
}

// SiteCollection is an ordered, immutable list of sites. Sites are addressed
// by index everywhere downstream; the index is stable for the whole run.
type SiteCollection []Site
