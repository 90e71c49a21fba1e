package model

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchDirs(t *testing.T) {
	list := strings.Join([]string{"/usr/bin", "", "/opt/tool/bin", "/usr/bin", "/bin"}, string(os.PathListSeparator))
	assert.Equal(t, []string{"/usr/bin", "/opt/tool/bin", "/bin"}, SearchDirs(list, nil))
	assert.Equal(t, []string{"/usr/bin", "/bin"}, SearchDirs(list, []string{"/opt"}))
}

func TestFileHelpers(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "run.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\n"), 0o644))

	assert.True(t, IsDir(dir))
	assert.False(t, IsDir(script))
	assert.True(t, Exists(script))
	assert.False(t, Exists(filepath.Join(dir, "missing")))
	assert.False(t, IsExecutable(script))
	assert.True(t, LacksOwnerExec(script))

	require.NoError(t, os.Chmod(script, 0o755))
	assert.True(t, IsExecutable(script))
	assert.False(t, LacksOwnerExec(script))
	assert.False(t, LacksOwnerExec(dir))
}

func TestExpandTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, home, ExpandTilde("~"))
	assert.Equal(t, filepath.Join(home, "notes"), ExpandTilde("~/notes"))
	assert.Equal(t, "/tmp/~x", ExpandTilde("/tmp/~x"))
}
