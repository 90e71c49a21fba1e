package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCdMkdirRule(t *testing.T) {
	runRuleCases(t, CdMkdirRule{}, []ruleCase{
		{
			name:   "bash",
			script: "cd foo/bar",
			output: withOutput("bash: cd: foo/bar: No such file or directory\n"),
			want:   []string{"mkdir -p foo/bar && cd foo/bar"},
		},
		{
			name:   "dash",
			script: "cd build",
			output: withOutput("sh: 1: cd: can't cd to build\n"),
			want:   []string{"mkdir -p build && cd build"},
		},
		{name: "other command", script: "ls foo", output: withOutput("No such file or directory")},
	})
}

func TestCdParentRule(t *testing.T) {
	rule := CdParentRule{}
	assert.False(t, rule.RequiresOutput())
	runRuleCases(t, rule, []ruleCase{
		{name: "missing space", script: "cd..", want: []string{"cd .."}},
		{name: "with output", script: "cd..", output: withOutput("cd..: command not found"), want: []string{"cd .."}},
		{name: "correct", script: "cd .."},
	})
}

func TestMkdirPRule(t *testing.T) {
	runRuleCases(t, MkdirPRule{}, []ruleCase{
		{
			name:   "nested",
			script: "mkdir a/b/c",
			output: withOutput("mkdir: cannot create directory 'a/b/c': No such file or directory\n"),
			want:   []string{"mkdir -p a/b/c"},
		},
		{
			name:   "only first mkdir",
			script: "mkdir a/b && mkdir a/c",
			output: withOutput("mkdir: cannot create directory 'a/b': No such file or directory\n"),
			want:   []string{"mkdir -p a/b && mkdir a/c"},
		},
		{name: "exists", script: "mkdir a", output: withOutput("mkdir: cannot create directory 'a': File exists\n")},
	})
}

func TestTouchRule(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "present")
	require.NoError(t, os.Mkdir(existing, 0o755))
	missing := filepath.Join(dir, "missing")

	runRuleCases(t, TouchRule{}, []ruleCase{
		{
			name:   "missing parent",
			script: "touch " + missing + "/notes.txt",
			output: withOutput("touch: cannot touch '" + missing + "/notes.txt': No such file or directory\n"),
			want:   []string{"mkdir -p " + missing + " && touch " + missing + "/notes.txt"},
		},
		{
			name:   "parent exists",
			script: "touch " + existing + "/notes.txt",
			output: withOutput("touch: cannot touch: Permission denied\n"),
		},
		{
			name:   "no directory part",
			script: "touch notes.txt",
			output: withOutput("touch: cannot touch 'notes.txt': No such file or directory\n"),
		},
	})
}
