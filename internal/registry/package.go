package registry

import (
	"context"
	"fmt"
	"sort"

	"github.com/vk/perfbridge/internal/catalog"
	"github.com/vk/perfbridge/internal/config"
	"github.com/vk/perfbridge/internal/ctxlog"
	"github.com/vk/perfbridge/internal/resolver"
)

// Package is the frozen, read-only result of a validated Registry: the
// catalog the host reads at boot and the resolver it asks for instances.
// It is safe for concurrent use.
type Package struct {
	name      string
	catalog   *catalog.Catalog
	resolver  *resolver.Resolver
	constants map[string]map[string]any
}

// Build validates the registry and freezes it into a Package. Definitions
// are applied in load order, so a later definition overrides an earlier one
// only when it sets can_override_existing.
func (r *Registry) Build(ctx context.Context, name string, conv config.Converter) (*Package, error) {
	logger := ctxlog.FromContext(ctx).With("package", name)

	if err := r.ValidateRegistry(ctx); err != nil {
		return nil, err
	}

	descs := make([]catalog.Descriptor, 0, len(r.definitions))
	constants := make(map[string]map[string]any)
	for _, def := range r.definitions {
		kind, err := catalog.ParseDispatchKind(def.Dispatch)
		if err != nil {
			return nil, fmt.Errorf("module '%s': %w", def.Name, err)
		}
		descs = append(descs, catalog.Descriptor{
			Name:                def.Name,
			ClassName:           def.ClassName,
			CanOverrideExisting: def.CanOverrideExisting,
			NeedsEagerInit:      def.NeedsEagerInit,
			HasConstants:        def.HasConstants,
			Dispatch:            kind,
		})

		// Constants follow the definition that wins in the catalog.
		vals, err := conv.ConstantsToGo(def.Constants)
		if err != nil {
			return nil, fmt.Errorf("module '%s': %w", def.Name, err)
		}
		constants[def.Name] = vals
	}

	cat, err := catalog.New(descs...)
	if err != nil {
		return nil, fmt.Errorf("package '%s': %w", name, err)
	}

	pkg := &Package{
		name:      name,
		catalog:   cat,
		resolver:  resolver.New(logger, r.factories),
		constants: constants,
	}
	logger.Debug("Package built.", "modules", cat.Names(), "constructible", pkg.resolver.Names())
	return pkg, nil
}

// Name returns the package name used in logs and diagnostics.
func (p *Package) Name() string {
	return p.name
}

// Catalog returns the package's immutable catalog.
func (p *Package) Catalog() *catalog.Catalog {
	return p.catalog
}

// ListDescriptors returns every descriptor the package publishes.
func (p *Package) ListDescriptors() map[string]catalog.Descriptor {
	return p.catalog.ListDescriptors()
}

// Resolve constructs the named module bound to appCtx. See resolver.Resolver.Resolve.
func (p *Package) Resolve(name string, appCtx resolver.AppContext) (resolver.Instance, bool, error) {
	return p.resolver.Resolve(name, appCtx)
}

// Has reports whether the package can construct name.
func (p *Package) Has(name string) bool {
	return p.resolver.Has(name)
}

// Constants returns the constants block of a module. The result is a copy;
// it is nil for modules without constants, and ok is false for unknown names.
func (p *Package) Constants(name string) (constants map[string]any, ok bool) {
	vals, ok := p.constants[name]
	if !ok {
		return nil, false
	}
	if vals == nil {
		return nil, true
	}
	out := make(map[string]any, len(vals))
	for k, v := range vals {
		out[k] = v
	}
	return out, true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
