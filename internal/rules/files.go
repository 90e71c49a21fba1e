package rules

import (
	"strings"

	"oops/internal/model"
)

// RmDirRule adds -r when rm refuses to remove a directory.
type RmDirRule struct{}

func (RmDirRule) Name() string           { return "rm_dir" }
func (RmDirRule) Priority() int          { return DefaultPriority }
func (RmDirRule) EnabledByDefault() bool { return true }
func (RmDirRule) RequiresOutput() bool   { return true }

func (RmDirRule) Match(cmd *model.Command) bool {
	out, ok := lowerOutput(cmd)
	if !ok {
		return false
	}
	script := cmd.Script()
	return strings.HasPrefix(script, "rm ") &&
		containsAny(out, "is a directory", "cannot remove") &&
		!containsAny(script, "-r", "-R")
}

func (RmDirRule) NewCommands(cmd *model.Command) []string {
	return []string{strings.Replace(cmd.Script(), "rm ", "rm -r ", 1)}
}

// CpOmittingDirectoryRule adds -r when cp skips a directory.
type CpOmittingDirectoryRule struct{}

func (CpOmittingDirectoryRule) Name() string           { return "cp_omitting_directory" }
func (CpOmittingDirectoryRule) Priority() int          { return DefaultPriority }
func (CpOmittingDirectoryRule) EnabledByDefault() bool { return true }
func (CpOmittingDirectoryRule) RequiresOutput() bool   { return true }

func (CpOmittingDirectoryRule) Match(cmd *model.Command) bool {
	out, ok := lowerOutput(cmd)
	if !ok {
		return false
	}
	script := cmd.Script()
	return strings.HasPrefix(script, "cp ") &&
		containsAny(out, "omitting directory", "is a directory", "not a regular file") &&
		!containsAny(script, "-r", "-R", "-a")
}

func (CpOmittingDirectoryRule) NewCommands(cmd *model.Command) []string {
	return []string{strings.Replace(cmd.Script(), "cp ", "cp -r ", 1)}
}

// CatDirRule lists a directory that was passed to cat.
type CatDirRule struct{}

func (CatDirRule) Name() string           { return "cat_dir" }
func (CatDirRule) Priority() int          { return DefaultPriority }
func (CatDirRule) EnabledByDefault() bool { return true }
func (CatDirRule) RequiresOutput() bool   { return true }

func (CatDirRule) Match(cmd *model.Command) bool {
	out, ok := cmd.Output()
	if !ok || !strings.HasPrefix(out, "cat: ") {
		return false
	}
	parts := cmd.ScriptParts()
	return len(parts) >= 2 && parts[0] == "cat" && model.IsDir(parts[1])
}

func (CatDirRule) NewCommands(cmd *model.Command) []string {
	return []string{strings.Replace(cmd.Script(), "cat", "ls", 1)}
}
