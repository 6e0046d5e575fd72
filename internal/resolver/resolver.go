// Package resolver turns a requested module name into a freshly constructed
// native module bound to the host's application context.
//
// The resolver holds no state between calls. It never caches or
// deduplicates instances; keeping one instance per context is the job of
// whoever owns the resolver.
package resolver

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
)

// ErrNilInstance is returned when a factory reports success without
// producing an instance.
var ErrNilInstance = errors.New("resolver: factory returned a nil instance")

// AppContext is the opaque handle to the running host application. The
// resolver only borrows it for the duration of a construction; the built
// instance may keep it for its own lifetime.
type AppContext interface {
	// ID identifies the application context. It is stable for the lifetime
	// of the context.
	ID() string
}

// Instance is a constructed native module.
type Instance interface {
	ModuleName() string
}

// Factory constructs a module bound to appCtx. Errors belong to the module
// being constructed and are passed through unchanged.
type Factory func(appCtx AppContext) (Instance, error)

// Resolver dispatches module names to factories.
type Resolver struct {
	logger    *slog.Logger
	factories map[string]Factory
}

// New creates a resolver over a copy of factories. A nil logger falls back
// to slog.Default().
func New(logger *slog.Logger, factories map[string]Factory) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	table := make(map[string]Factory, len(factories))
	for name, f := range factories {
		if f == nil {
			panic(fmt.Sprintf("resolver: nil factory for module '%s'", name))
		}
		table[name] = f
	}
	return &Resolver{logger: logger, factories: table}
}

// Resolve constructs the module registered under name. An unknown name is
// reported with ok == false and a nil error; it is an expected outcome when
// the host probes for modules it may not need. Every successful call
// returns a new instance, even for a name and context resolved before.
func (r *Resolver) Resolve(name string, appCtx AppContext) (inst Instance, ok bool, err error) {
	factory, found := r.factories[name]
	if !found {
		r.logger.Debug("Module not provided by this resolver.", "module", name)
		return nil, false, nil
	}

	inst, err = factory(appCtx)
	if err != nil {
		return nil, false, err
	}
	if isNil(inst) {
		return nil, false, fmt.Errorf("%w: module '%s'", ErrNilInstance, name)
	}

	r.logger.Debug("Module constructed.", "module", name, "context", contextID(appCtx))
	return inst, true, nil
}

// Has reports whether name is constructible without constructing it.
func (r *Resolver) Has(name string) bool {
	_, ok := r.factories[name]
	return ok
}

// Names returns the constructible module names in sorted order.
func (r *Resolver) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// isNil also catches a nil pointer (or other nil reference) wrapped in a
// non-nil Instance, which a plain comparison misses.
func isNil(inst Instance) bool {
	if inst == nil {
		return true
	}
	switch v := reflect.ValueOf(inst); v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}

func contextID(appCtx AppContext) string {
	if appCtx == nil {
		return ""
	}
	return appCtx.ID()
}
