// Package logictree expands the source-model and GSIM logic trees into
// weighted realizations and builds the association table that joins computed
// (group, gsim) curves back to the realizations that use them.
//
// Realization indices are assigned in enumeration order and are stable for a
// given tree and mode: run the same job twice and realization 3 means the
// same combination of branches both times. Under Monte Carlo sampling the
// same guarantee holds for a fixed seed.
package logictree
