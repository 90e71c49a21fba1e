package rules

import (
	"fmt"
	"strings"

	"oops/internal/model"
)

// permissionPatterns are lowercased fragments of "you need root" errors.
var permissionPatterns = []string{
	"permission denied",
	"eacces",
	"pkg: insufficient privileges",
	"you cannot perform this operation unless you are root",
	"non-root users cannot",
	"operation not permitted",
	"not super-user",
	"superuser privilege",
	"root privilege",
	"this command has to be run under the root user.",
	"this operation requires root.",
	"requested operation requires superuser privilege",
	"must be run as root",
	"must run as root",
	"must be superuser",
	"must be root",
	"need to be root",
	"need root",
	"needs to be run as root",
	"only root can ",
	"you don't have access to the history db.",
	"authentication is required",
	"edspermissionerror",
	"you don't have write permissions",
	"use `sudo`",
	"sudorequirederror",
	"error: insufficient privileges",
	"updatedb: can not open a temporary file",
}

// SudoRule reruns a command with sudo after a permission error.
type SudoRule struct{}

func (SudoRule) Name() string           { return "sudo" }
func (SudoRule) Priority() int          { return DefaultPriority }
func (SudoRule) EnabledByDefault() bool { return true }
func (SudoRule) RequiresOutput() bool   { return true }

func (SudoRule) Match(cmd *model.Command) bool {
	out, ok := lowerOutput(cmd)
	if !ok {
		return false
	}
	if firstWord(cmd) == "sudo" && !strings.Contains(cmd.Script(), "&&") {
		return false
	}
	return containsAny(out, permissionPatterns...)
}

func (SudoRule) NewCommands(cmd *model.Command) []string {
	script := cmd.Script()
	switch {
	case strings.Contains(script, "&&"):
		return []string{fmt.Sprintf(`sudo sh -c "%s"`, strings.ReplaceAll(script, "sudo ", ""))}
	case strings.Contains(script, ">"):
		return []string{fmt.Sprintf(`sudo sh -c "%s"`, strings.ReplaceAll(script, `"`, `\"`))}
	default:
		return []string{"sudo " + script}
	}
}

// ChmodXRule makes a ./script executable before running it again.
type ChmodXRule struct{}

func (ChmodXRule) Name() string           { return "chmod_x" }
func (ChmodXRule) Priority() int          { return DefaultPriority }
func (ChmodXRule) EnabledByDefault() bool { return true }
func (ChmodXRule) RequiresOutput() bool   { return true }

func (ChmodXRule) Match(cmd *model.Command) bool {
	out, ok := lowerOutput(cmd)
	if !ok || !strings.HasPrefix(cmd.Script(), "./") {
		return false
	}
	if !strings.Contains(out, "permission denied") {
		return false
	}
	path := firstWord(cmd)
	return strings.HasPrefix(path, "./") && model.LacksOwnerExec(path)
}

func (ChmodXRule) NewCommands(cmd *model.Command) []string {
	path := firstWord(cmd)
	if !strings.HasPrefix(path, "./") {
		return nil
	}
	return []string{fmt.Sprintf("chmod +x %s && %s", strings.TrimPrefix(path, "./"), cmd.Script())}
}
