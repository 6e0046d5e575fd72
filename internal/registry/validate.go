package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/perfbridge/internal/catalog"
	"github.com/vk/perfbridge/internal/ctxlog"
)

// ValidateRegistry performs a strict parity check between the manifests and
// the Go code. Every module the Go code can construct must be described by
// a manifest, and every manifest must have a Go factory, so the catalog and
// the resolver always serve exactly the same names.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	described := make(map[string]struct{}, len(r.definitions))
	for _, def := range r.definitions {
		described[def.Name] = struct{}{}
		if def.Name == "" {
			errs = append(errs, fmt.Sprintf("%s: module definition has an empty name", def.Source))
			continue
		}
		if _, err := catalog.ParseDispatchKind(def.Dispatch); err != nil {
			errs = append(errs, fmt.Sprintf("module '%s' (%s): %v", def.Name, def.Source, err))
		}
		if _, ok := r.factories[def.Name]; !ok {
			errs = append(errs, fmt.Sprintf("module '%s' (%s): manifest describes it but no Go factory is registered", def.Name, def.Source))
		}
	}

	for _, name := range sortedKeys(r.factories) {
		if _, ok := described[name]; !ok {
			errs = append(errs, fmt.Sprintf("module '%s': Go factory is registered but no manifest describes it", name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	logger.Debug("Registry validation passed.", "modules", len(described))
	return nil
}
