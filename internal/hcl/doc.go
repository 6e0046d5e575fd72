// Package hcl provides the concrete HCL implementation of the manifest
// Loader defined in the `config` package. It is responsible for file
// discovery, parsing, HCL-to-model translation and the cty conversions of
// constants blocks.
package hcl
