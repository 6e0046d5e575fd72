// Package registry provides the central "glue" for the native module system.
//
// The Registry is responsible for storing mappings between the module names
// the host asks for (e.g., "BugsnagPerformance") and the compiled Go
// factories that construct them. It also holds the parsed, format-agnostic
// module definitions from the manifests.
//
// During application startup, the registry is populated, validated to ensure
// that the Go code and the manifests are perfectly in sync, and then frozen
// into an immutable Package that serves the host's requests.
package registry
