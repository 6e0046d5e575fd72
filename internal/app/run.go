package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/perfbridge/internal/announce"
	"github.com/vk/perfbridge/internal/ctxlog"
)

// ErrModuleNotFound is returned by Run when the module named in
// Config.Resolve is not provided by any package.
var ErrModuleNotFound = errors.New("module not found")

// Run boots the application context, publishes the catalog and, depending
// on the configuration, resolves a module, announces the catalog and serves
// the health check endpoints until ctx is cancelled. The context is torn
// down before Run returns.
func (a *App) Run(ctx context.Context) (err error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "context", a.appCtx.ID())

	defer func() {
		if tdErr := a.host.Teardown(ctx, a.appCtx); tdErr != nil {
			err = errors.Join(err, fmt.Errorf("teardown failed: %w", tdErr))
		}
	}()

	if err := a.host.Boot(ctx, a.appCtx); err != nil {
		return err
	}

	if err := printCatalog(a.outW, a.config.Output, a.host.Catalog()); err != nil {
		return fmt.Errorf("failed to print catalog: %w", err)
	}

	if name := a.config.Resolve; name != "" {
		inst, ok, err := a.host.Get(ctx, name, a.appCtx)
		if err != nil {
			return fmt.Errorf("failed to construct module '%s': %w", name, err)
		}
		if !ok {
			return fmt.Errorf("%w: '%s'", ErrModuleNotFound, name)
		}
		a.logger.Info("Module resolved.", "module", inst.ModuleName(), "context", a.appCtx.ID())
	}

	if a.config.AnnounceURL != "" {
		cfg := announce.Config{URL: a.config.AnnounceURL, Timeout: a.config.AnnounceTimeout}
		if err := announce.Announce(ctx, cfg, announce.NewPayload(a.appCtx.ID(), a.host.Catalog())); err != nil {
			return fmt.Errorf("failed to announce modules: %w", err)
		}
	}

	if a.config.HealthcheckPort > 0 {
		if err := a.serveHealthcheck(ctx, a.config.HealthcheckPort); err != nil {
			return err
		}
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
