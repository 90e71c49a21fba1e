package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandOutput(t *testing.T) {
	cmd := NewCommand("ls")
	out, ok := cmd.Output()
	assert.False(t, ok)
	assert.Empty(t, out)
	assert.False(t, cmd.HasOutput())

	cmd = NewCommandWithOutput("ls", "")
	out, ok = cmd.Output()
	assert.True(t, ok, "empty output is still captured output")
	assert.Empty(t, out)
}

func TestScriptPartsCachedAfterFirstCall(t *testing.T) {
	calls := 0
	orig := splitScript
	splitScript = func(script string) []string {
		calls++
		return orig(script)
	}
	t.Cleanup(func() { splitScript = orig })

	cmd := NewCommand(`git commit -m "first commit"`)
	first := cmd.ScriptParts()
	second := cmd.ScriptParts()

	require.Equal(t, []string{"git", "commit", "-m", "first commit"}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestScriptPartsEmpty(t *testing.T) {
	assert.Empty(t, NewCommand("").ScriptParts())
	assert.Empty(t, NewCommand("   ").ScriptParts())
}

func TestCorrectedCommandString(t *testing.T) {
	c := CorrectedCommand{Script: "cd ..", RuleName: "cd_parent", Priority: 1000}
	assert.Equal(t, "cd .. [cd_parent, priority=1000]", c.String())
}
