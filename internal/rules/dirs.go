package rules

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"oops/internal/model"
)

var (
	cdTargetRe    = regexp.MustCompile(`^cd\s+(.*)$`)
	mkdirPrefixRe = regexp.MustCompile(`\bmkdir\s+`)
)

// CdMkdirRule creates a missing directory before changing into it.
type CdMkdirRule struct{}

func (CdMkdirRule) Name() string           { return "cd_mkdir" }
func (CdMkdirRule) Priority() int          { return DefaultPriority }
func (CdMkdirRule) EnabledByDefault() bool { return true }
func (CdMkdirRule) RequiresOutput() bool   { return true }

func (CdMkdirRule) Match(cmd *model.Command) bool {
	out, ok := lowerOutput(cmd)
	if !ok || !strings.HasPrefix(cmd.Script(), "cd ") {
		return false
	}
	return containsAny(out, "no such file or directory", "cd: can't cd to", "does not exist")
}

func (CdMkdirRule) NewCommands(cmd *model.Command) []string {
	m := cdTargetRe.FindStringSubmatch(cmd.Script())
	if m == nil {
		return nil
	}
	return []string{fmt.Sprintf("mkdir -p %s && cd %s", m[1], m[1])}
}

// CdParentRule fixes the missing space in "cd..".
type CdParentRule struct{}

func (CdParentRule) Name() string           { return "cd_parent" }
func (CdParentRule) Priority() int          { return DefaultPriority }
func (CdParentRule) EnabledByDefault() bool { return true }
func (CdParentRule) RequiresOutput() bool   { return false }

func (CdParentRule) Match(cmd *model.Command) bool {
	return strings.TrimSpace(cmd.Script()) == "cd.."
}

func (CdParentRule) NewCommands(*model.Command) []string {
	return []string{"cd .."}
}

// MkdirPRule adds -p when mkdir fails on a missing parent.
type MkdirPRule struct{}

func (MkdirPRule) Name() string           { return "mkdir_p" }
func (MkdirPRule) Priority() int          { return DefaultPriority }
func (MkdirPRule) EnabledByDefault() bool { return true }
func (MkdirPRule) RequiresOutput() bool   { return true }

func (MkdirPRule) Match(cmd *model.Command) bool {
	out, ok := cmd.Output()
	return ok && strings.Contains(cmd.Script(), "mkdir") && strings.Contains(out, "No such file or directory")
}

func (MkdirPRule) NewCommands(cmd *model.Command) []string {
	script := cmd.Script()
	loc := mkdirPrefixRe.FindStringIndex(script)
	if loc == nil {
		return nil
	}
	return []string{script[:loc[0]] + "mkdir -p " + script[loc[1]:]}
}

// TouchRule creates the parent directory touch could not find.
type TouchRule struct{}

func (TouchRule) Name() string           { return "touch" }
func (TouchRule) Priority() int          { return DefaultPriority }
func (TouchRule) EnabledByDefault() bool { return true }
func (TouchRule) RequiresOutput() bool   { return true }

func (TouchRule) Match(cmd *model.Command) bool {
	out, ok := lowerOutput(cmd)
	if !ok || firstWord(cmd) != "touch" {
		return false
	}
	if !containsAny(out, "no such file or directory", "cannot touch", "not a directory") {
		return false
	}
	return missingParent(cmd) != ""
}

func (TouchRule) NewCommands(cmd *model.Command) []string {
	dir := missingParent(cmd)
	if dir == "" {
		return nil
	}
	return []string{fmt.Sprintf("mkdir -p %s && %s", dir, cmd.Script())}
}

// missingParent returns the parent directory of touch's first argument when
// that directory does not exist yet.
func missingParent(cmd *model.Command) string {
	parts := cmd.ScriptParts()
	if len(parts) < 2 {
		return ""
	}
	dir := filepath.Dir(parts[1])
	if dir == "." || dir == "/" || model.Exists(dir) {
		return ""
	}
	return dir
}
