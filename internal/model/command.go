package model

import (
	"fmt"
	"sync"
)

// Command is a shell command line as the user typed it, together with the
// output it produced when that output could be captured.
//
// A Command is read-only once built. The only state that changes after
// construction is the private token cache behind ScriptParts.
type Command struct {
	script string
	output *string

	partsOnce sync.Once
	parts     []string
}

// NewCommand returns a Command with no captured output.
func NewCommand(script string) *Command {
	return &Command{script: script}
}

// NewCommandWithOutput returns a Command carrying the combined output of a run.
func NewCommandWithOutput(script, output string) *Command {
	return &Command{script: script, output: &output}
}

// Script returns the original command text.
func (c *Command) Script() string {
	return c.script
}

// Output returns the captured output and whether any was captured.
// An empty string with ok == true means the command ran and printed nothing.
func (c *Command) Output() (output string, ok bool) {
	if c.output == nil {
		return "", false
	}
	return *c.output, true
}

// HasOutput reports whether output was captured for this command.
func (c *Command) HasOutput() bool {
	return c.output != nil
}

// ScriptParts returns the shell-aware tokens of the script. Tokens are
// computed on the first call and cached; callers must not modify the slice.
func (c *Command) ScriptParts() []string {
	c.partsOnce.Do(func() {
		c.parts = splitScript(c.script)
	})
	return c.parts
}

// splitScript is swapped out by tests to count tokenizer invocations.
var splitScript = SplitScript

func (c *Command) String() string {
	if c.output == nil {
		return fmt.Sprintf("Command(script=%q)", c.script)
	}
	return fmt.Sprintf("Command(script=%q, output=%d bytes)", c.script, len(*c.output))
}

// CorrectedCommand is one candidate replacement for a failed command.
// Two candidates are the same fix when Script and RuleName match; Priority
// only decides the order they are offered in.
type CorrectedCommand struct {
	Script   string `json:"script"`
	RuleName string `json:"rule"`
	Priority int    `json:"priority"`
}

func (c CorrectedCommand) String() string {
	return fmt.Sprintf("%s [%s, priority=%d]", c.Script, c.RuleName, c.Priority)
}
