package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindFilesByExtension(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, rel := range []string{"b/two.hcl", "a/one.hcl", "a/notes.txt", "c/.hcl"} {
		p := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, nil, 0o644))
	}

	files, err := FindFilesByExtension(root, ".hcl")
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(root, "a/one.hcl"),
		filepath.Join(root, "b/two.hcl"),
	}, files)
}

func TestFindFilesByExtension_MissingRoot(t *testing.T) {
	t.Parallel()

	_, err := FindFilesByExtension(filepath.Join(t.TempDir(), "missing"), ".hcl")
	require.Error(t, err)
}

func TestFindFilesByExtension_EmptyExtensionPanics(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() { _, _ = FindFilesByExtension(".", "") })
}
