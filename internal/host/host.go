package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/vk/perfbridge/internal/catalog"
	"github.com/vk/perfbridge/internal/ctxlog"
	"github.com/vk/perfbridge/internal/registry"
	"github.com/vk/perfbridge/internal/resolver"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrNilContext is returned when an operation is given a nil application context.
	ErrNilContext = errors.New("host: application context must not be nil")
	// ErrUnservedModule is returned by New when a package publishes a module
	// it cannot construct.
	ErrUnservedModule = errors.New("host: package publishes a module it cannot construct")
)

// Host serves module requests for any number of application contexts.
type Host struct {
	logger  *slog.Logger
	catalog *catalog.Catalog
	// owners maps each catalogued name to the package whose descriptor won.
	owners map[string]*registry.Package

	group     singleflight.Group
	mu        sync.Mutex
	instances map[string]map[string]resolver.Instance // context ID -> module name -> instance
}

// New merges pkgs in order. A module published by a later package replaces
// one of the same name from an earlier package only when its descriptor sets
// CanOverrideExisting. Every published module must be constructible by the
// package publishing it, so each catalogued name resolves.
func New(logger *slog.Logger, pkgs ...*registry.Package) (*Host, error) {
	if logger == nil {
		logger = slog.Default()
	}

	merged, err := (&catalog.Catalog{}).Merge(catalogs(pkgs)...)
	if err != nil {
		return nil, err
	}

	owners := make(map[string]*registry.Package, merged.Len())
	for _, pkg := range pkgs {
		for _, name := range pkg.Catalog().Names() {
			if !pkg.Has(name) {
				return nil, fmt.Errorf("%w: module '%s' in package '%s'", ErrUnservedModule, name, pkg.Name())
			}
			prev, exists := owners[name]
			owners[name] = pkg
			if exists {
				logger.Info("Module overridden by a later package.", "module", name, "previous", prev.Name(), "package", pkg.Name())
			}
		}
	}

	return &Host{
		logger:    logger,
		catalog:   merged,
		owners:    owners,
		instances: make(map[string]map[string]resolver.Instance),
	}, nil
}

func catalogs(pkgs []*registry.Package) []*catalog.Catalog {
	out := make([]*catalog.Catalog, 0, len(pkgs))
	for _, p := range pkgs {
		out = append(out, p.Catalog())
	}
	return out
}

// Catalog returns the merged catalog.
func (h *Host) Catalog() *catalog.Catalog {
	return h.catalog
}

// Descriptors returns the merged descriptors keyed by module name.
func (h *Host) Descriptors() map[string]catalog.Descriptor {
	return h.catalog.ListDescriptors()
}

// Constants returns the constants block of a catalogued module.
func (h *Host) Constants(name string) (map[string]any, bool) {
	owner, ok := h.owners[name]
	if !ok {
		return nil, false
	}
	return owner.Constants(name)
}

// Resolve constructs a new, uncached instance through the package that owns
// name. Unknown names report ok == false.
func (h *Host) Resolve(name string, appCtx resolver.AppContext) (resolver.Instance, bool, error) {
	owner, ok := h.owners[name]
	if !ok {
		return nil, false, nil
	}
	return owner.Resolve(name, appCtx)
}

// Get returns the instance of name for appCtx, constructing it on first use.
// Concurrent callers asking for the same module and context share a single
// construction. Failed constructions are not cached.
func (h *Host) Get(ctx context.Context, name string, appCtx resolver.AppContext) (resolver.Instance, bool, error) {
	if appCtx == nil {
		return nil, false, ErrNilContext
	}
	id := appCtx.ID()
	if inst, ok := h.cached(id, name); ok {
		return inst, true, nil
	}

	v, err, shared := h.group.Do(id+"\x00"+name, func() (any, error) {
		if inst, ok := h.cached(id, name); ok {
			return inst, nil
		}
		inst, ok, err := h.Resolve(name, appCtx)
		if err != nil || !ok {
			return nil, err
		}
		h.store(id, name, inst)
		ctxlog.FromContext(ctx).Debug("Module instance created.", "module", name, "context", id)
		return inst, nil
	})
	if err != nil {
		return nil, false, err
	}
	if v == nil {
		return nil, false, nil
	}
	if shared {
		ctxlog.FromContext(ctx).Debug("Joined an in-flight module construction.", "module", name, "context", id)
	}
	return v.(resolver.Instance), true, nil
}

// Boot constructs every module whose descriptor asks for eager
// initialization, in name order. It stops at the first failure.
func (h *Host) Boot(ctx context.Context, appCtx resolver.AppContext) error {
	if appCtx == nil {
		return ErrNilContext
	}
	logger := ctxlog.FromContext(ctx)

	var eager []string
	for _, name := range h.catalog.Names() {
		if d, _ := h.catalog.Lookup(name); d.NeedsEagerInit {
			eager = append(eager, name)
		}
	}
	logger.Debug("Booting application context.", "context", appCtx.ID(), "eager_modules", eager)

	for _, name := range eager {
		if _, ok, err := h.Get(ctx, name, appCtx); err != nil {
			return fmt.Errorf("eager initialization of module '%s' failed: %w", name, err)
		} else if !ok {
			logger.Warn("Eager module is catalogued but could not be resolved.", "module", name)
		}
	}
	logger.Info("Application context booted.", "context", appCtx.ID(), "eager_modules", len(eager))
	return nil
}

// Loaded returns the names of the modules instantiated for appCtx, sorted.
func (h *Host) Loaded(appCtx resolver.AppContext) []string {
	if appCtx == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	byName := h.instances[appCtx.ID()]
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Teardown forgets every instance built for appCtx and closes those that
// implement io.Closer. Close errors are joined. A construction still in
// flight for appCtx when Teardown runs is cached afterwards and needs a
// second Teardown.
func (h *Host) Teardown(ctx context.Context, appCtx resolver.AppContext) error {
	if appCtx == nil {
		return ErrNilContext
	}
	id := appCtx.ID()

	h.mu.Lock()
	byName := h.instances[id]
	delete(h.instances, id)
	h.mu.Unlock()

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		closer, ok := byName[name].(io.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing module '%s': %w", name, err))
		}
	}
	ctxlog.FromContext(ctx).Info("Application context torn down.", "context", id, "modules", len(names), "errors", len(errs))
	return errors.Join(errs...)
}

func (h *Host) cached(id, name string) (resolver.Instance, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	inst, ok := h.instances[id][name]
	return inst, ok
}

func (h *Host) store(id, name string, inst resolver.Instance) {
	h.mu.Lock()
	defer h.mu.Unlock()
	byName, ok := h.instances[id]
	if !ok {
		byName = make(map[string]resolver.Instance)
		h.instances[id] = byName
	}
	byName[name] = inst
}
