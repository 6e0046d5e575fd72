// Package config defines the format-agnostic model of the module manifests,
// along with the Loader interface that fills it from a concrete format.
//
// The `config.Model` is the single source of truth for the `registry`
// package. Concrete loaders, such as the HCL one, live in separate packages.
package config
