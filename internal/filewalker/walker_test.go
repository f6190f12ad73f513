package filewalker_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"lualoc/internal/filewalker"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("local localization = {}\n"), 0644))
}

func TestWalker(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	touch(t, filepath.Join(root, "mod_localization.lua"))
	touch(t, filepath.Join(root, "scripts", "b", "zones_localization.lua"))
	touch(t, filepath.Join(root, "scripts", "a", "other_localization.lua"))
	touch(t, filepath.Join(root, "scripts", "main.lua"))
	touch(t, filepath.Join(root, "notes.txt"))

	t.Run("walks directories with the default pattern", func(t *testing.T) {
		t.Parallel()

		w, err := filewalker.NewWalker("")
		require.NoError(t, err)

		files, err := w.Resolve([]string{root})
		require.NoError(t, err)
		require.Equal(t, []string{
			filepath.Join(root, "mod_localization.lua"),
			filepath.Join(root, "scripts", "a", "other_localization.lua"),
			filepath.Join(root, "scripts", "b", "zones_localization.lua"),
		}, files)
	})

	t.Run("files are taken as given and deduplicated", func(t *testing.T) {
		t.Parallel()

		w, err := filewalker.NewWalker("")
		require.NoError(t, err)

		main := filepath.Join(root, "scripts", "main.lua")
		files, err := w.Resolve([]string{main, filepath.Join(root, "scripts", "b"), main})
		require.NoError(t, err)
		require.Equal(t, []string{main, filepath.Join(root, "scripts", "b", "zones_localization.lua")}, files)
	})

	t.Run("custom pattern", func(t *testing.T) {
		t.Parallel()

		w, err := filewalker.NewWalker("*.txt")
		require.NoError(t, err)

		files, err := w.Walk(root)
		require.NoError(t, err)
		require.Equal(t, []string{filepath.Join(root, "notes.txt")}, files)
	})

	t.Run("missing path", func(t *testing.T) {
		t.Parallel()

		w, err := filewalker.NewWalker("")
		require.NoError(t, err)

		_, err = w.Resolve([]string{filepath.Join(root, "missing.lua")})
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("invalid pattern", func(t *testing.T) {
		t.Parallel()

		_, err := filewalker.NewWalker("[")
		require.Error(t, err)
	})
}
