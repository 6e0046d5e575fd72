// Package performance provides the BugsnagPerformance native module: the
// host-facing wrapper around the performance-monitoring engine.
//
// The engine itself lives outside this repository. The module only binds
// an engine to the host's application context and hands it to the host.
package performance

import (
	_ "embed"
	"errors"
	"sync"
	"time"

	"github.com/vk/perfbridge/internal/registry"
	"github.com/vk/perfbridge/internal/resolver"
)

// Name is the name the host resolves the module by.
const Name = "BugsnagPerformance"

// ErrNilEngine is returned when an EngineFactory reports success without
// producing an engine.
var ErrNilEngine = errors.New("performance: engine factory returned a nil engine")

//go:embed manifest.hcl
var manifestHCL []byte

// Engine is the contract the performance-monitoring engine must satisfy to
// be wrapped by the native module.
type Engine interface {
	// Close releases whatever the engine set up for its context.
	Close() error
}

// EngineFactory constructs an engine for an application context. Its errors
// reach the host unchanged.
type EngineFactory func(appCtx resolver.AppContext) (Engine, error)

// Module implements the registry.Module interface for this package.
type Module struct {
	// NewEngine constructs the wrapped engine. When nil, a placeholder
	// engine that does nothing is used.
	NewEngine EngineFactory
}

// Register registers the module's manifest and factory.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterManifest("performance/manifest.hcl", manifestHCL)
	r.RegisterFactory(Name, m.construct)
}

func (m *Module) construct(appCtx resolver.AppContext) (resolver.Instance, error) {
	newEngine := m.NewEngine
	if newEngine == nil {
		newEngine = func(resolver.AppContext) (Engine, error) { return noopEngine{}, nil }
	}

	engine, err := newEngine(appCtx)
	if err != nil {
		return nil, err
	}
	if engine == nil {
		return nil, ErrNilEngine
	}
	return &Native{appCtx: appCtx, engine: engine, createdAt: time.Now()}, nil
}

// Native is a constructed BugsnagPerformance module bound to one
// application context.
type Native struct {
	appCtx    resolver.AppContext
	engine    Engine
	createdAt time.Time

	closeOnce sync.Once
	closeErr  error
}

// ModuleName implements resolver.Instance.
func (n *Native) ModuleName() string {
	return Name
}

// AppContext returns the context the module was constructed for.
func (n *Native) AppContext() resolver.AppContext {
	return n.appCtx
}

// Engine returns the wrapped engine.
func (n *Native) Engine() Engine {
	return n.engine
}

// CreatedAt returns when the module was constructed.
func (n *Native) CreatedAt() time.Time {
	return n.createdAt
}

// Close closes the wrapped engine. It is called by the host when the
// application context is torn down; later calls return the first result.
func (n *Native) Close() error {
	n.closeOnce.Do(func() {
		n.closeErr = n.engine.Close()
	})
	return n.closeErr
}

type noopEngine struct{}

func (noopEngine) Close() error { return nil }
