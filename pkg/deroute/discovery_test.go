package deroute

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// writeTree creates files (relative path -> content) under a fresh temp dir.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func relPaths(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestWalkIsBreadthFirst(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.yaml":              "",
		"sub/b.yaml":          "",
		"sub/deeper/c.yaml":   "",
		"sub/deeper/d/e.yaml": "",
		"z.yaml":              "",
	})

	var visited []string
	err := NewDiscovery(nil, zaptest.NewLogger(t)).Walk(root, func(p string) error {
		visited = append(visited, p)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t,
		[]string{"a.yaml", "z.yaml", "sub/b.yaml", "sub/deeper/c.yaml", "sub/deeper/d/e.yaml"},
		relPaths(t, root, visited))
	for _, p := range visited {
		assert.True(t, filepath.IsAbs(p), "visit receives absolute paths: %s", p)
	}
}

func TestWalkMissingRoot(t *testing.T) {
	calls := 0
	err := NewDiscovery(nil, nil).Walk(filepath.Join(t.TempDir(), "missing"), func(string) error {
		calls++
		return nil
	})

	assert.NoError(t, err)
	assert.Zero(t, calls)
}

func TestWalkPropagatesVisitErrors(t *testing.T) {
	root := writeTree(t, map[string]string{"a.yaml": "", "b.yaml": ""})
	boom := errors.New("boom")

	calls := 0
	err := NewDiscovery(nil, nil).Walk(root, func(string) error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls, "walk stops at the first failure")
}

func TestWalkRootIsAFile(t *testing.T) {
	root := writeTree(t, map[string]string{"file.yaml": ""})

	err := NewDiscovery(nil, nil).Walk(filepath.Join(root, "file.yaml"), func(string) error { return nil })

	assert.Error(t, err)
}

// brokenFS reports every path as an existing directory that cannot be listed.
type brokenFS struct{ err error }

func (b brokenFS) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(os.TempDir())
}

func (b brokenFS) ReadDir(string) ([]fs.DirEntry, error) { return nil, b.err }

func TestWalkPropagatesFilesystemErrors(t *testing.T) {
	denied := fs.ErrPermission

	err := NewDiscovery(brokenFS{err: denied}, nil).Walk("/routes", func(string) error { return nil })

	assert.ErrorIs(t, err, denied)
	assert.Contains(t, err.Error(), "routes")
}
