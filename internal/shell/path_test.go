package shell

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, mode os.FileMode) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), mode))
	require.NoError(t, os.Chmod(path, mode))
}

func TestExecutables(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(a, "git"), 0o755)
	writeFile(t, filepath.Join(a, "README"), 0o644)
	require.NoError(t, os.Mkdir(filepath.Join(a, "subdir"), 0o755))
	writeFile(t, filepath.Join(b, "git"), 0o755)
	writeFile(t, filepath.Join(b, "cargo"), 0o755)

	got := Executables([]string{a, filepath.Join(a, "missing"), b})
	assert.Equal(t, []string{"cargo", "git"}, got)
}

func TestCommandExists(t *testing.T) {
	dir := t.TempDir()
	tool := filepath.Join(dir, "tool")
	writeFile(t, tool, 0o755)
	writeFile(t, filepath.Join(dir, "notes"), 0o644)

	assert.True(t, CommandExists("tool", []string{dir}))
	assert.False(t, CommandExists("notes", []string{dir}))
	assert.False(t, CommandExists("nope", []string{dir}))
	assert.True(t, CommandExists(tool, nil))
	assert.False(t, CommandExists("", []string{dir}))
}
