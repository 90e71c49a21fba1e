package rules

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"oops/internal/model"
)

var (
	gitUpstreamRe    = regexp.MustCompile(`git push (--set-upstream\s+\S+\s+\S+)`)
	gitMostSimilarRe = regexp.MustCompile(`(?i)the most similar commands? (?:is|are)\s*\n\s*(\S+)`)
	gitDidYouMeanRe  = regexp.MustCompile(`(?i)did you mean this\?\s*\n\s*(\S+)`)
	gitInlineRe      = regexp.MustCompile(`Did you mean '([^']+)'`)
	gitPathspecRe    = regexp.MustCompile(`error: pathspec '([^']*)' did not match any file\(s\) known to git`)
)

// GitPushRule uses the --set-upstream invocation git suggests for a new branch.
type GitPushRule struct{}

func (GitPushRule) Name() string           { return "git_push" }
func (GitPushRule) Priority() int          { return DefaultPriority }
func (GitPushRule) EnabledByDefault() bool { return true }
func (GitPushRule) RequiresOutput() bool   { return true }

func (GitPushRule) Match(cmd *model.Command) bool {
	out, ok := cmd.Output()
	if !ok {
		return false
	}
	parts := cmd.ScriptParts()
	if len(parts) == 0 || parts[0] != "git" || !slices.Contains(parts, "push") {
		return false
	}
	return strings.Contains(out, "git push --set-upstream")
}

func (GitPushRule) NewCommands(cmd *model.Command) []string {
	out, _ := cmd.Output()
	m := gitUpstreamRe.FindStringSubmatch(out)
	if m == nil {
		return nil
	}
	parts := cmd.ScriptParts()
	push := slices.Index(parts, "push")
	if push < 0 {
		return nil
	}
	words := append(slices.Clone(parts[:push+1]), m[1])
	return []string{strings.Join(words, " ")}
}

// GitNotCommandRule swaps a mistyped git subcommand for the ones git suggests.
type GitNotCommandRule struct{}

func (GitNotCommandRule) Name() string           { return "git_not_command" }
func (GitNotCommandRule) Priority() int          { return DefaultPriority }
func (GitNotCommandRule) EnabledByDefault() bool { return true }
func (GitNotCommandRule) RequiresOutput() bool   { return true }

func (GitNotCommandRule) Match(cmd *model.Command) bool {
	out, ok := cmd.Output()
	return ok && firstWord(cmd) == "git" && strings.Contains(out, "is not a git command")
}

func (GitNotCommandRule) NewCommands(cmd *model.Command) []string {
	out, _ := cmd.Output()
	parts := cmd.ScriptParts()
	if len(parts) < 2 {
		return nil
	}

	var suggestions []string
	add := func(s string) {
		if !slices.Contains(suggestions, s) {
			suggestions = append(suggestions, s)
		}
	}
	if m := gitMostSimilarRe.FindStringSubmatch(out); m != nil {
		add(m[1])
	}
	if m := gitDidYouMeanRe.FindStringSubmatch(out); m != nil {
		add(m[1])
	}
	for _, m := range gitInlineRe.FindAllStringSubmatch(out, -1) {
		add(m[1])
	}

	broken := parts[1]
	fixes := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		if fixed := replaceArgument(cmd.Script(), broken, s); fixed != cmd.Script() {
			fixes = append(fixes, fixed)
		}
	}
	return fixes
}

// GitAddRule stages a file git does not know about before retrying.
type GitAddRule struct{}

func (GitAddRule) Name() string           { return "git_add" }
func (GitAddRule) Priority() int          { return DefaultPriority }
func (GitAddRule) EnabledByDefault() bool { return true }
func (GitAddRule) RequiresOutput() bool   { return true }

func (GitAddRule) Match(cmd *model.Command) bool {
	out, ok := cmd.Output()
	if !ok || !strings.HasPrefix(cmd.Script(), "git ") {
		return false
	}
	return strings.Contains(out, "did not match any file(s) known to git") &&
		strings.Contains(out, "Did you forget to 'git add'?") &&
		gitPathspecRe.MatchString(out)
}

func (GitAddRule) NewCommands(cmd *model.Command) []string {
	out, _ := cmd.Output()
	m := gitPathspecRe.FindStringSubmatch(out)
	if m == nil {
		return nil
	}
	return []string{fmt.Sprintf("git add -- %s && %s", m[1], cmd.Script())}
}

// GitStashRule lists stashes when the requested one does not exist.
type GitStashRule struct{}

func (GitStashRule) Name() string           { return "git_stash" }
func (GitStashRule) Priority() int          { return DefaultPriority }
func (GitStashRule) EnabledByDefault() bool { return true }
func (GitStashRule) RequiresOutput() bool   { return true }

func (GitStashRule) Match(cmd *model.Command) bool {
	out, ok := cmd.Output()
	return ok && strings.HasPrefix(cmd.Script(), "git stash") &&
		containsAny(out, "No stash entries found", "does not apply to a stash-like commit", "is not a valid reference")
}

func (GitStashRule) NewCommands(*model.Command) []string {
	return []string{"git stash list"}
}
