// Package rules holds the correction heuristics. Every heuristic is an
// independent implementation of Rule; Builtin returns them in registration
// order, which is also the tie-break order when priorities are equal.
package rules

import (
	"regexp"
	"strings"

	"oops/internal/model"
)

// DefaultPriority is the priority tier of a rule that does not ask for one.
// Lower values are tried and offered first.
const DefaultPriority = 1000

// Rule detects one failure pattern and proposes replacement commands.
//
// Implementations must be safe to call repeatedly with different commands.
// Match may look at the filesystem or PATH but must report false, not fail,
// when those resources are missing.
type Rule interface {
	// Name is the unique key used in settings.
	Name() string
	// Match reports whether the rule applies to cmd.
	Match(cmd *model.Command) bool
	// NewCommands returns replacement scripts, most preferred first.
	NewCommands(cmd *model.Command) []string
	// Priority is the tier used when settings carry no override.
	Priority() int
	// EnabledByDefault reports whether the rule runs under the ALL setting.
	EnabledByDefault() bool
	// RequiresOutput reports whether the rule needs captured output to run.
	RequiresOutput() bool
}

// Options carries the host facts some built-in rules need. The caller
// resolves them from settings and the environment once per process.
type Options struct {
	// SearchDirs are the directories scanned for executables.
	SearchDirs []string
	// NumCloseMatches caps how many similar executables no_command offers.
	NumCloseMatches int
}

// Builtin returns a fresh instance of every built-in rule, in registration order.
func Builtin(opts Options) []Rule {
	return []Rule{
		// permissions
		SudoRule{},
		ChmodXRule{},
		// directories
		CdMkdirRule{},
		CdParentRule{},
		MkdirPRule{},
		TouchRule{},
		// file operations
		RmDirRule{},
		CpOmittingDirectoryRule{},
		CatDirRule{},
		// git
		GitPushRule{},
		GitNotCommandRule{},
		GitAddRule{},
		GitStashRule{},
		// package managers and interpreters
		CargoNoCommandRule{},
		PythonCommandRule{},
		// commands
		NewNoCommandRule(opts.SearchDirs, opts.NumCloseMatches),
		ManNoSpaceRule{},
		OpenRule{},
		LsLaRule{},
	}
}

// replaceArgument swaps the first standalone occurrence of from in script
// for to. A word is standalone when whitespace, a quote or the edge of the
// line surrounds it; otherwise the first plain occurrence is replaced.
func replaceArgument(script, from, to string) string {
	word := regexp.MustCompile(`(?:^|[\s"'])(` + regexp.QuoteMeta(from) + `)(?:[\s"']|$)`)
	if loc := word.FindStringSubmatchIndex(script); loc != nil {
		return script[:loc[2]] + to + script[loc[3]:]
	}
	return strings.Replace(script, from, to, 1)
}

// firstWord returns the first token of cmd, or "" for an empty script.
func firstWord(cmd *model.Command) string {
	parts := cmd.ScriptParts()
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

func lowerOutput(cmd *model.Command) (string, bool) {
	out, ok := cmd.Output()
	if !ok {
		return "", false
	}
	return strings.ToLower(out), true
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
