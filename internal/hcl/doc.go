// Package hcl loads a calculation job from HCL files: run parameters,
// sites, the source-model and GSIM logic trees, and fragility models. It
// parses with hclparse, decodes with gohcl, and translates the raw blocks
// into the domain types the engine consumes.
//
// Blocks may be spread over any number of .hcl files under the job path;
// they are merged in file order. Exactly one job block is required.
package hcl
