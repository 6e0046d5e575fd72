package hcl

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/perfbridge/internal/config"
	"github.com/vk/perfbridge/internal/ctxlog"
	"github.com/vk/perfbridge/internal/fsutil"
	"github.com/vk/perfbridge/internal/schema"
)

// manifestExt is the extension of manifest files discovered on disk.
const manifestExt = ".hcl"

var (
	_ config.Loader    = (*Loader)(nil)
	_ config.Converter = (*Converter)(nil)
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL manifest loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load discovers every .hcl file below the given paths and translates all
// `module` blocks into the model, in file discovery order.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := l.findManifestFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered manifest files.", "count", len(files))

	model := &config.Model{}
	parser := hclparse.NewParser()
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		m, err := l.decode(ctx, hclFile, file)
		if err != nil {
			return nil, err
		}
		model.Append(m)
	}

	logger.Debug("HCL loading complete.", "modules", len(model.Modules))
	return model, nil
}

// Parse translates a single manifest held in memory.
func (l *Loader) Parse(ctx context.Context, filename string, src []byte) (*config.Model, error) {
	hclFile, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	return l.decode(ctx, hclFile, filename)
}

func (l *Loader) decode(ctx context.Context, file *hcl.File, filename string) (*config.Model, error) {
	var root schema.ManifestFile
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	model := &config.Model{}
	for _, block := range root.Modules {
		def, err := l.translateModuleDefinition(ctx, block, filename)
		if err != nil {
			return nil, err
		}
		model.Modules = append(model.Modules, def)
	}
	ctxlog.FromContext(ctx).Debug("Decoded manifest.", "file", filename, "modules", len(model.Modules))
	return model, nil
}

// findManifestFiles expands the given paths into a flat, de-duplicated list
// of manifest files.
func (l *Loader) findManifestFiles(paths []string) ([]string, error) {
	var all []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			all = append(all, p)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue // A configured path that does not exist is not an error.
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			if fsutil.HasExtension(path, manifestExt) {
				add(path)
			}
			continue
		}

		found, err := fsutil.FindFilesByExtension(path, manifestExt)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f)
		}
	}
	return all, nil
}
