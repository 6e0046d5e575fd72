// Package testutil provides fakes and harness helpers shared by tests.
package testutil

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/vk/perfbridge/internal/registry"
	"github.com/vk/perfbridge/internal/resolver"
)

// AppContext is a fake application context handle.
type AppContext string

// ID implements resolver.AppContext.
func (c AppContext) ID() string { return string(c) }

// Instance is a fake native module that records the context it was built
// for and whether it was closed.
type Instance struct {
	Name    string
	Context resolver.AppContext
	Serial  int64

	mu       sync.Mutex
	closed   int
	closeErr error
}

// ModuleName implements resolver.Instance.
func (i *Instance) ModuleName() string { return i.Name }

// Close records the call and returns the configured error.
func (i *Instance) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.closed++
	return i.closeErr
}

// Closed returns how many times Close was called.
func (i *Instance) Closed() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.closed
}

// Module is a configurable fake registry.Module. It registers one factory
// and, unless Manifest is empty, one manifest.
type Module struct {
	Name     string
	Manifest string
	// Err makes every construction fail.
	Err error
	// CloseErr is returned by the built instances' Close.
	CloseErr error
	// Hook, when set, runs inside every construction before it returns.
	Hook func()

	constructed atomic.Int64
}

// Register implements registry.Module.
func (m *Module) Register(r *registry.Registry) {
	if m.Manifest != "" {
		r.RegisterManifest(fmt.Sprintf("test/%s.hcl", m.Name), []byte(m.Manifest))
	}
	r.RegisterFactory(m.Name, m.Factory)
}

// Factory constructs a new Instance for every call.
func (m *Module) Factory(appCtx resolver.AppContext) (resolver.Instance, error) {
	if m.Hook != nil {
		m.Hook()
	}
	if m.Err != nil {
		return nil, m.Err
	}
	n := m.constructed.Add(1)
	return &Instance{Name: m.Name, Context: appCtx, Serial: n, closeErr: m.CloseErr}, nil
}

// Constructed returns how many instances the module has built.
func (m *Module) Constructed() int64 {
	return m.constructed.Load()
}

// ErrEngine is a stand-in for an error raised by a wrapped engine.
var ErrEngine = errors.New("engine: resource exhausted")

// Manifest returns a minimal manifest for a module named name.
func Manifest(name string, eager bool) string {
	return fmt.Sprintf("module %q {\n  needs_eager_init = %t\n}\n", name, eager)
}
