package registry

import (
	"context"
	"fmt"

	"github.com/vk/perfbridge/internal/config"
	"github.com/vk/perfbridge/internal/ctxlog"
)

// LoadManifests parses every embedded manifest with loader, followed by the
// manifests found under paths on disk, and adds the resulting definitions
// to the registry in that order.
func (r *Registry) LoadManifests(ctx context.Context, loader config.Loader, paths ...string) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Registry loading module manifests...", "embedded", len(r.manifests), "paths", paths)

	for _, m := range r.manifests {
		model, err := loader.Parse(ctx, m.filename, m.src)
		if err != nil {
			return fmt.Errorf("failed to load embedded manifest: %w", err)
		}
		r.PopulateDefinitionsFromModel(model)
	}

	if len(paths) > 0 {
		model, err := loader.Load(ctx, paths...)
		if err != nil {
			return fmt.Errorf("failed to load manifests from disk: %w", err)
		}
		if len(model.Modules) == 0 {
			logger.Warn("No module definitions found on disk.", "paths", paths)
		}
		r.PopulateDefinitionsFromModel(model)
	}

	logger.Info("Registry loaded successfully.", "module_definitions_loaded", len(r.definitions))
	return nil
}
