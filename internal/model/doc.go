// Package model defines the domain types shared by every stage of the
// calculation: seismic sources and their tectonic region groups, sites,
// intensity measure levels, and the immutable run-wide parameters.
//
// Everything in this package is built once when the job is loaded and then
// shared read-only across all worker tasks. The single exception is
// Source.Splits, an annotation written by the task builder before any
// parallel work starts.
package model
