package registry

import (
	"fmt"
	"log/slog"

	"github.com/vk/perfbridge/internal/config"
	"github.com/vk/perfbridge/internal/resolver"
)

// Module is the interface that all native modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// manifest is a module manifest compiled into the binary.
type manifest struct {
	filename string
	src      []byte
}

// Registry holds the factories and definitions for a single bridge package.
// It is only used during start-up and is not safe for concurrent use.
type Registry struct {
	factories   map[string]resolver.Factory
	manifests   []manifest
	definitions []*config.ModuleDefinition
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		factories: make(map[string]resolver.Factory),
	}
}

// RegisterFactory registers the Go constructor for the module named name.
func (r *Registry) RegisterFactory(name string, factory resolver.Factory) {
	if factory == nil {
		panic(fmt.Sprintf("factory for module '%s' must not be nil", name))
	}
	if _, exists := r.factories[name]; exists {
		panic(fmt.Sprintf("factory for module '%s' already registered", name))
	}
	slog.Debug("Registering module factory.", "module", name)
	r.factories[name] = factory
}

// RegisterManifest registers a manifest compiled into the binary. Embedded
// manifests are loaded before any manifest found on disk.
func (r *Registry) RegisterManifest(filename string, src []byte) {
	for _, m := range r.manifests {
		if m.filename == filename {
			panic(fmt.Sprintf("manifest '%s' already registered", filename))
		}
	}
	slog.Debug("Registering module manifest.", "file", filename)
	r.manifests = append(r.manifests, manifest{filename: filename, src: src})
}

// PopulateDefinitionsFromModel appends the definitions of a loaded model
// after those already known to the registry.
func (r *Registry) PopulateDefinitionsFromModel(model *config.Model) {
	if model == nil {
		return
	}
	r.definitions = append(r.definitions, model.Modules...)
}

// FactoryCount returns the number of registered factories.
func (r *Registry) FactoryCount() int {
	return len(r.factories)
}

// Definitions returns the definitions known so far, in load order.
func (r *Registry) Definitions() []*config.ModuleDefinition {
	return append([]*config.ModuleDefinition(nil), r.definitions...)
}
