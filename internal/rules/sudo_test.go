package rules

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oops/internal/model"
)

func TestSudoRule(t *testing.T) {
	runRuleCases(t, SudoRule{}, []ruleCase{
		{
			name:   "permission denied",
			script: "cat /etc/shadow",
			output: withOutput("cat: /etc/shadow: Permission denied\n"),
			want:   []string{"sudo cat /etc/shadow"},
		},
		{
			name:   "redirect",
			script: `echo "x" > /etc/motd`,
			output: withOutput("sh: /etc/motd: Permission denied\n"),
			want:   []string{`sudo sh -c "echo \"x\" > /etc/motd"`},
		},
		{
			name:   "chained",
			script: "sudo mkdir /opt/app && cd /opt/app",
			output: withOutput("mkdir: /opt/app: must be root\n"),
			want:   []string{`sudo sh -c "mkdir /opt/app && cd /opt/app"`},
		},
		{
			name:   "already sudo",
			script: "sudo apt install vim",
			output: withOutput("E: Permission denied\n"),
		},
		{
			name:   "no output",
			script: "cat /etc/shadow",
		},
		{
			name:   "unrelated failure",
			script: "cat missing",
			output: withOutput("cat: missing: No such file or directory\n"),
		},
	})
}

func TestChmodXRule(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	require.NoError(t, os.WriteFile("run.sh", []byte("#!/bin/sh\n"), 0o644))
	require.NoError(t, os.WriteFile("ok.sh", []byte("#!/bin/sh\n"), 0o755))

	denied := withOutput("sh: ./run.sh: Permission denied\n")
	runRuleCases(t, ChmodXRule{}, []ruleCase{
		{
			name:   "not executable",
			script: "./run.sh --fast",
			output: denied,
			want:   []string{"chmod +x run.sh && ./run.sh --fast"},
		},
		{name: "already executable", script: "./ok.sh", output: denied},
		{name: "missing file", script: "./gone.sh", output: denied},
		{name: "not relative", script: "run.sh", output: denied},
	})

	assert.Nil(t, ChmodXRule{}.NewCommands(model.NewCommand("run.sh")))
}
