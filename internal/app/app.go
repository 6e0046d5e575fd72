package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/perfbridge/internal/config"
	"github.com/vk/perfbridge/internal/ctxlog"
	"github.com/vk/perfbridge/internal/host"
	"github.com/vk/perfbridge/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	pkg        *registry.Package
	host       *host.Host
	appCtx     *ProcessContext
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger, registry and host.
// Catalog output goes to outW and logs to logW. When no modules are given,
// the core modules are registered.
//
// Start-up errors (unreadable manifests, manifests out of sync with the Go
// code) are programmer errors and panic.
func NewApp(outW, logW io.Writer, cfg *Config, loader config.Loader, conv config.Converter, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules()
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	var paths []string
	if cfg.ModulesPath != "" {
		paths = append(paths, cfg.ModulesPath)
	}
	if err := reg.LoadManifests(ctx, loader, paths...); err != nil {
		panic(fmt.Errorf("failed to load module manifests: %w", err))
	}

	pkg, err := reg.Build(ctx, packageName, conv)
	if err != nil {
		panic(err)
	}
	logger.Debug("Bridge package built.", "modules", pkg.Catalog().Len())

	h, err := host.New(logger, pkg)
	if err != nil {
		panic(err)
	}

	return &App{
		outW:   outW,
		logger: logger,
		config: cfg,
		pkg:    pkg,
		host:   h,
		appCtx: NewProcessContext(),
	}
}

// Host returns the application's host. This is primarily for testing.
func (a *App) Host() *host.Host {
	return a.host
}

// Package returns the bridge package built at start-up.
func (a *App) Package() *registry.Package {
	return a.pkg
}

// Context returns the application context modules are bound to.
func (a *App) Context() *ProcessContext {
	return a.appCtx
}
