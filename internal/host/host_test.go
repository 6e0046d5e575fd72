package host_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/perfbridge/internal/catalog"
	"github.com/vk/perfbridge/internal/hcl"
	"github.com/vk/perfbridge/internal/host"
	"github.com/vk/perfbridge/internal/registry"
	"github.com/vk/perfbridge/internal/testutil"
)

func buildPackage(t *testing.T, name string, mods ...*testutil.Module) *registry.Package {
	t.Helper()
	ctx, _ := testutil.NewLoggerContext(t)

	reg := registry.New()
	for _, m := range mods {
		m.Register(reg)
	}
	require.NoError(t, reg.LoadManifests(ctx, hcl.NewLoader()))
	pkg, err := reg.Build(ctx, name, hcl.NewConverter())
	require.NoError(t, err)
	return pkg
}

func TestGet_CachesPerContext(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewLoggerContext(t)

	mod := &testutil.Module{Name: "BugsnagPerformance", Manifest: testutil.Manifest("BugsnagPerformance", true)}
	h, err := host.New(nil, buildPackage(t, "main", mod))
	require.NoError(t, err)

	first, ok, err := h.Get(ctx, "BugsnagPerformance", testutil.AppContext("a"))
	require.NoError(t, err)
	require.True(t, ok)
	again, ok, err := h.Get(ctx, "BugsnagPerformance", testutil.AppContext("a"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Same(t, first, again)

	other, ok, err := h.Get(ctx, "BugsnagPerformance", testutil.AppContext("b"))
	require.NoError(t, err)
	require.True(t, ok)
	require.NotSame(t, first, other)
	require.EqualValues(t, 2, mod.Constructed())

	_, ok, err = h.Get(ctx, "Nonexistent", testutil.AppContext("a"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestResolve_IsUncached(t *testing.T) {
	t.Parallel()

	mod := &testutil.Module{Name: "A", Manifest: testutil.Manifest("A", false)}
	h, err := host.New(nil, buildPackage(t, "main", mod))
	require.NoError(t, err)

	first, ok, err := h.Resolve("A", testutil.AppContext("a"))
	require.NoError(t, err)
	require.True(t, ok)
	second, _, _ := h.Resolve("A", testutil.AppContext("a"))
	require.NotSame(t, first, second)
	require.EqualValues(t, 2, mod.Constructed())
}

func TestGet_ConcurrentCallersShareOneConstruction(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewLoggerContext(t)

	release := make(chan struct{})
	mod := &testutil.Module{
		Name:     "Slow",
		Manifest: testutil.Manifest("Slow", false),
		Hook:     func() { <-release },
	}
	h, err := host.New(nil, buildPackage(t, "main", mod))
	require.NoError(t, err)

	const callers = 20
	results := make(chan any, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inst, ok, err := h.Get(ctx, "Slow", testutil.AppContext("shared"))
			assert.NoError(t, err)
			assert.True(t, ok)
			results <- inst
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	var first any
	for inst := range results {
		if first == nil {
			first = inst
		}
		assert.Same(t, first, inst)
	}
	require.EqualValues(t, 1, mod.Constructed())
}

func TestGet_FailureIsNotCached(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewLoggerContext(t)

	mod := &testutil.Module{Name: "A", Manifest: testutil.Manifest("A", false), Err: testutil.ErrEngine}
	h, err := host.New(nil, buildPackage(t, "main", mod))
	require.NoError(t, err)

	_, ok, err := h.Get(ctx, "A", testutil.AppContext("a"))
	require.ErrorIs(t, err, testutil.ErrEngine)
	require.False(t, ok)
	require.Empty(t, h.Loaded(testutil.AppContext("a")))
}

func TestGet_NilContext(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewLoggerContext(t)

	h, err := host.New(nil)
	require.NoError(t, err)

	_, _, err = h.Get(ctx, "A", nil)
	require.ErrorIs(t, err, host.ErrNilContext)
	require.ErrorIs(t, h.Boot(ctx, nil), host.ErrNilContext)
	require.ErrorIs(t, h.Teardown(ctx, nil), host.ErrNilContext)
	require.Nil(t, h.Loaded(nil))
}

func TestBoot_ConstructsEagerModulesOnly(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewLoggerContext(t)

	eager := &testutil.Module{Name: "Eager", Manifest: testutil.Manifest("Eager", true)}
	lazy := &testutil.Module{Name: "Lazy", Manifest: testutil.Manifest("Lazy", false)}
	h, err := host.New(nil, buildPackage(t, "main", eager, lazy))
	require.NoError(t, err)

	appCtx := testutil.AppContext("app")
	require.NoError(t, h.Boot(ctx, appCtx))
	require.Equal(t, []string{"Eager"}, h.Loaded(appCtx))
	require.EqualValues(t, 0, lazy.Constructed())

	// A second boot reuses the cached instance.
	require.NoError(t, h.Boot(ctx, appCtx))
	require.EqualValues(t, 1, eager.Constructed())
}

func TestBoot_FailureNamesModule(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewLoggerContext(t)

	broken := &testutil.Module{Name: "Broken", Manifest: testutil.Manifest("Broken", true), Err: testutil.ErrEngine}
	h, err := host.New(nil, buildPackage(t, "main", broken))
	require.NoError(t, err)

	err = h.Boot(ctx, testutil.AppContext("app"))
	require.ErrorIs(t, err, testutil.ErrEngine)
	require.ErrorContains(t, err, "module 'Broken'")
}

func TestTeardown_ClosesAndForgets(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewLoggerContext(t)

	ok1 := &testutil.Module{Name: "A", Manifest: testutil.Manifest("A", true)}
	bad := &testutil.Module{Name: "B", Manifest: testutil.Manifest("B", true), CloseErr: testutil.ErrEngine}
	h, err := host.New(nil, buildPackage(t, "main", ok1, bad))
	require.NoError(t, err)

	appCtx := testutil.AppContext("app")
	require.NoError(t, h.Boot(ctx, appCtx))
	a, _, _ := h.Get(ctx, "A", appCtx)

	err = h.Teardown(ctx, appCtx)
	require.ErrorIs(t, err, testutil.ErrEngine)
	require.ErrorContains(t, err, "closing module 'B'")
	require.Equal(t, 1, a.(*testutil.Instance).Closed())
	require.Empty(t, h.Loaded(appCtx))

	fresh, _, err := h.Get(ctx, "A", appCtx)
	require.NoError(t, err)
	require.NotSame(t, a, fresh)
}

func TestNew_OverridePolicy(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewLoggerContext(t)

	base := &testutil.Module{Name: "A", Manifest: testutil.Manifest("A", false)}
	patch := &testutil.Module{Name: "A", Manifest: `module "A" {
  can_override_existing = true
  class_name            = "PatchedA"
  has_constants         = true
  constants {
    patched = true
  }
}`}
	clash := &testutil.Module{Name: "A", Manifest: testutil.Manifest("A", false)}

	h, err := host.New(nil, buildPackage(t, "base", base), buildPackage(t, "patch", patch))
	require.NoError(t, err)

	d, ok := h.Catalog().Lookup("A")
	require.True(t, ok)
	require.Equal(t, "PatchedA", d.ClassName)
	require.Equal(t, map[string]catalog.Descriptor{"A": d}, h.Descriptors())

	constants, ok := h.Constants("A")
	require.True(t, ok)
	require.Equal(t, map[string]any{"patched": true}, constants)

	_, _, err = h.Get(ctx, "A", testutil.AppContext("app"))
	require.NoError(t, err)
	require.EqualValues(t, 0, base.Constructed())
	require.EqualValues(t, 1, patch.Constructed())

	_, err = host.New(nil, buildPackage(t, "base", base), buildPackage(t, "clash", clash))
	require.ErrorIs(t, err, catalog.ErrDuplicateModule)

	_, ok = h.Constants("Missing")
	require.False(t, ok)
}

func TestDescriptors_ConsistentWithResolve(t *testing.T) {
	t.Parallel()

	h, err := host.New(nil,
		buildPackage(t, "one", &testutil.Module{Name: "A", Manifest: testutil.Manifest("A", true)}),
		buildPackage(t, "two", &testutil.Module{Name: "B", Manifest: testutil.Manifest("B", false)}),
	)
	require.NoError(t, err)

	require.Equal(t, h.Descriptors(), h.Descriptors())
	for name := range h.Descriptors() {
		inst, ok, err := h.Resolve(name, testutil.AppContext("x"))
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, name, inst.ModuleName())
	}
}

func TestNew_ManifestOnlyOverrideCannotStealModule(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewLoggerContext(t)

	base := &testutil.Module{Name: "A", Manifest: testutil.Manifest("A", true)}
	basePkg := buildPackage(t, "base", base)

	// A package holding only manifests (an overriding "A" and a "Ghost")
	// but no factories is rejected before it can reach a host.
	reg := registry.New()
	reg.RegisterManifest("patch/a.hcl", []byte(`module "A" {
  can_override_existing = true
  needs_eager_init      = true
}`))
	reg.RegisterManifest("patch/ghost.hcl", []byte(testutil.Manifest("Ghost", true)))
	require.NoError(t, reg.LoadManifests(ctx, hcl.NewLoader()))
	_, err := reg.Build(ctx, "patch", hcl.NewConverter())
	require.ErrorContains(t, err, "module 'A' (patch/a.hcl)")
	require.ErrorContains(t, err, "module 'Ghost' (patch/ghost.hcl)")

	// The eager module served by the base package still boots.
	h, err := host.New(nil, basePkg)
	require.NoError(t, err)

	appCtx := testutil.AppContext("app")
	require.NoError(t, h.Boot(ctx, appCtx))
	require.Equal(t, []string{"A"}, h.Loaded(appCtx))
	for name := range h.Descriptors() {
		_, ok, err := h.Resolve(name, appCtx)
		require.NoError(t, err)
		require.True(t, ok, "catalogued module %q must resolve", name)
	}
}
