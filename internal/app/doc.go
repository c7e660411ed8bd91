// Package app wires the application together: it owns the logger, loads and
// validates the job at construction time, and drives the hazard engine and
// damage convolution when Run is called.
package app
