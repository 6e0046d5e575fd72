package registry_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/perfbridge/internal/hcl"
	"github.com/vk/perfbridge/internal/registry"
	"github.com/vk/perfbridge/internal/testutil"
)

// buildPackage registers mods into a fresh registry and builds it.
func buildPackage(t *testing.T, mods ...*testutil.Module) *registry.Package {
	t.Helper()
	ctx, _ := testutil.NewLoggerContext(t)

	reg := registry.New()
	for _, m := range mods {
		m.Register(reg)
	}
	require.NoError(t, reg.LoadManifests(ctx, hcl.NewLoader()))

	pkg, err := reg.Build(ctx, "test", hcl.NewConverter())
	require.NoError(t, err)
	return pkg
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
