package scaffold_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalnine/skilleval/internal/scaffold"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newStore(t *testing.T) *scaffold.Store {
	root := t.TempDir()
	write(t, filepath.Join(root, "vite-react", "package.json"), `{"name": "app"}`)
	write(t, filepath.Join(root, "vite-react", "src", "main.tsx"), "render()")
	write(t, filepath.Join(root, "vite-react", ".git", "HEAD"), "ref")
	write(t, filepath.Join(root, "cra-react", "package.json"), "{}")
	write(t, filepath.Join(root, "README.md"), "not a scaffold")
	return scaffold.NewStore(root)
}

func TestStoreList(t *testing.T) {
	names, err := newStore(t).List()
	require.NoError(t, err)
	assert.Equal(t, []string{"cra-react", "vite-react"}, names)
}

func TestStoreCopyToVerbatim(t *testing.T) {
	s := newStore(t)
	dest := t.TempDir()
	require.NoError(t, s.CopyTo("vite-react", dest))

	data, err := os.ReadFile(filepath.Join(dest, "src", "main.tsx"))
	require.NoError(t, err)
	assert.Equal(t, "render()", string(data))
	assert.FileExists(t, filepath.Join(dest, ".git", "HEAD"))
}

func TestStoreUnknown(t *testing.T) {
	s := newStore(t)
	for _, name := range []string{"missing", "", "..", "../vite-react", "vite-react/src", "README.md"} {
		err := s.CopyTo(name, t.TempDir())
		assert.True(t, errors.Is(err, scaffold.ErrNotFound), "name %q: %v", name, err)
		assert.False(t, s.Exists(name))
	}
	assert.True(t, s.Exists("cra-react"))
}

func TestCopyTreeSkipsDirs(t *testing.T) {
	src := t.TempDir()
	write(t, filepath.Join(src, "src", "App.tsx"), "app")
	write(t, filepath.Join(src, ".git", "config"), "x")
	write(t, filepath.Join(src, "node_modules", "react", "index.js"), "x")
	dst := filepath.Join(t.TempDir(), "copy")

	require.NoError(t, scaffold.CopyTree(src, dst, map[string]bool{".git": true, "node_modules": true}))
	assert.FileExists(t, filepath.Join(dst, "src", "App.tsx"))
	assert.NoDirExists(t, filepath.Join(dst, ".git"))
	assert.NoDirExists(t, filepath.Join(dst, "node_modules"))
}

func TestCopyTreePreservesModeAndSymlinks(t *testing.T) {
	src := t.TempDir()
	write(t, filepath.Join(src, "run.sh"), "#!/bin/sh\n")
	require.NoError(t, os.Chmod(filepath.Join(src, "run.sh"), 0o755))
	require.NoError(t, os.Symlink("run.sh", filepath.Join(src, "link.sh")))
	dst := t.TempDir()

	require.NoError(t, scaffold.CopyTree(src, dst, nil))
	info, err := os.Stat(filepath.Join(dst, "run.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
	target, err := os.Readlink(filepath.Join(dst, "link.sh"))
	require.NoError(t, err)
	assert.Equal(t, "run.sh", target)
}
