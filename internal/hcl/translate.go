package hcl

import (
	"context"
	"fmt"

	"github.com/vk/perfbridge/internal/catalog"
	"github.com/vk/perfbridge/internal/config"
	"github.com/vk/perfbridge/internal/ctxlog"
	"github.com/vk/perfbridge/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// defaultDispatch is used when a manifest omits `dispatch`.
var defaultDispatch = catalog.DispatchTurbo.String()

// translateModuleDefinition converts the HCL-specific module schema into the
// agnostic model, validating what the schema alone cannot express.
func (l *Loader) translateModuleDefinition(ctx context.Context, s *schema.ModuleDefinition, filename string) (*config.ModuleDefinition, error) {
	if s.Name == "" {
		return nil, fmt.Errorf("%s: module block must have a non-empty name", filename)
	}

	def := &config.ModuleDefinition{
		Name:                s.Name,
		ClassName:           s.ClassName,
		CanOverrideExisting: s.CanOverrideExisting,
		NeedsEagerInit:      s.NeedsEagerInit,
		HasConstants:        s.HasConstants,
		Dispatch:            defaultDispatch,
		Source:              filename,
	}
	if def.ClassName == "" {
		def.ClassName = s.Name
	}
	if s.Dispatch != nil {
		if _, err := catalog.ParseDispatchKind(*s.Dispatch); err != nil {
			return nil, fmt.Errorf("%s: module '%s': %w", filename, s.Name, err)
		}
		def.Dispatch = *s.Dispatch
	}

	if s.Constants != nil {
		if !s.HasConstants {
			return nil, fmt.Errorf("%s: module '%s' declares a constants block but has_constants is false", filename, s.Name)
		}
		constants, err := evalConstants(s.Constants)
		if err != nil {
			return nil, fmt.Errorf("%s: module '%s': %w", filename, s.Name, err)
		}
		def.Constants = constants
	} else if s.HasConstants {
		return nil, fmt.Errorf("%s: module '%s' sets has_constants but declares no constants block", filename, s.Name)
	}

	ctxlog.FromContext(ctx).Debug("Translated module definition.", "module", def.Name, "dispatch", def.Dispatch, "eager", def.NeedsEagerInit)
	return def, nil
}

// evalConstants evaluates every attribute of a constants block. Constants
// are static, so no variables or functions are available to them.
func evalConstants(block *schema.ConstantsBlock) (map[string]cty.Value, error) {
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid constants block: %w", diags)
	}

	out := make(map[string]cty.Value, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("invalid constant '%s': %w", name, diags)
		}
		if !val.IsWhollyKnown() {
			return nil, fmt.Errorf("constant '%s' must be a static value", name)
		}
		out[name] = val
	}
	return out, nil
}
