package rules

import (
	"regexp"
	"strings"

	"oops/internal/model"
)

var (
	cargoSimilarRe    = regexp.MustCompile("a command with a similar name exists: `([^`]*)`")
	cargoDidYouMeanRe = regexp.MustCompile("Did you mean `([^`]*)`")
)

// CargoNoCommandRule applies the subcommand cargo suggests for a typo.
type CargoNoCommandRule struct{}

func (CargoNoCommandRule) Name() string           { return "cargo_no_command" }
func (CargoNoCommandRule) Priority() int          { return DefaultPriority }
func (CargoNoCommandRule) EnabledByDefault() bool { return true }
func (CargoNoCommandRule) RequiresOutput() bool   { return true }

func (CargoNoCommandRule) Match(cmd *model.Command) bool {
	out, ok := cmd.Output()
	if !ok || !strings.HasPrefix(cmd.Script(), "cargo ") {
		return false
	}
	lower := strings.ToLower(out)
	return containsAny(lower, "no such subcommand", "no such command") &&
		containsAny(out, "Did you mean", "a command with a similar name exists")
}

func (CargoNoCommandRule) NewCommands(cmd *model.Command) []string {
	out, _ := cmd.Output()
	parts := cmd.ScriptParts()
	if len(parts) < 2 {
		return nil
	}
	fix := cargoSuggestion(out)
	if fix == "" {
		return nil
	}
	fixed := replaceArgument(cmd.Script(), parts[1], fix)
	if fixed == cmd.Script() {
		return nil
	}
	return []string{fixed}
}

// cargoSuggestion reads the suggested subcommand, newest message format first.
func cargoSuggestion(out string) string {
	for _, re := range []*regexp.Regexp{cargoSimilarRe, cargoDidYouMeanRe} {
		if m := re.FindStringSubmatch(out); m != nil {
			return m[1]
		}
	}
	return ""
}

// PythonCommandRule runs a .py file through the interpreter.
type PythonCommandRule struct{}

func (PythonCommandRule) Name() string           { return "python_command" }
func (PythonCommandRule) Priority() int          { return DefaultPriority }
func (PythonCommandRule) EnabledByDefault() bool { return true }
func (PythonCommandRule) RequiresOutput() bool   { return true }

func (PythonCommandRule) Match(cmd *model.Command) bool {
	out, ok := lowerOutput(cmd)
	return ok && strings.HasSuffix(firstWord(cmd), ".py") &&
		containsAny(out, "permission denied", "command not found")
}

func (PythonCommandRule) NewCommands(cmd *model.Command) []string {
	return []string{"python " + cmd.Script()}
}

// ManNoSpaceRule splits "mangit" into "man git".
type ManNoSpaceRule struct{}

func (ManNoSpaceRule) Name() string           { return "man_no_space" }
func (ManNoSpaceRule) Priority() int          { return DefaultPriority + 1000 }
func (ManNoSpaceRule) EnabledByDefault() bool { return true }
func (ManNoSpaceRule) RequiresOutput() bool   { return true }

func (ManNoSpaceRule) Match(cmd *model.Command) bool {
	out, ok := lowerOutput(cmd)
	script := cmd.Script()
	return ok && len(script) > 3 && strings.HasPrefix(script, "man") &&
		!strings.HasPrefix(script, "man ") && strings.Contains(out, "command not found")
}

func (ManNoSpaceRule) NewCommands(cmd *model.Command) []string {
	return []string{"man " + cmd.Script()[3:]}
}

// OpenRule points Linux users at xdg-open when open is missing.
type OpenRule struct{}

func (OpenRule) Name() string           { return "open" }
func (OpenRule) Priority() int          { return DefaultPriority }
func (OpenRule) EnabledByDefault() bool { return true }
func (OpenRule) RequiresOutput() bool   { return true }

func (OpenRule) Match(cmd *model.Command) bool {
	out, ok := lowerOutput(cmd)
	if !ok {
		return false
	}
	switch firstWord(cmd) {
	case "open":
		return strings.Contains(out, "command not found")
	case "xdg-open":
		return strings.Contains(out, "no such file")
	}
	return false
}

// NewCommands has nothing to offer for xdg-open; the match only stops
// lower-priority rules from guessing at it.
func (OpenRule) NewCommands(cmd *model.Command) []string {
	if firstWord(cmd) != "open" {
		return nil
	}
	return []string{strings.Replace(cmd.Script(), "open", "xdg-open", 1)}
}

var lsTypos = map[string]string{
	"ls l":    "ls -la",
	"ls la":   "ls -la",
	"ls -la.": "ls -la",
	"ls -al.": "ls -la",
	"sl":      "ls",
	"sl -la":  "ls -la",
}

// LsLaRule fixes a handful of well-known ls typos.
type LsLaRule struct{}

func (LsLaRule) Name() string           { return "ls_la" }
func (LsLaRule) Priority() int          { return DefaultPriority }
func (LsLaRule) EnabledByDefault() bool { return true }
func (LsLaRule) RequiresOutput() bool   { return false }

func (LsLaRule) Match(cmd *model.Command) bool {
	_, ok := lsTypos[strings.TrimSpace(cmd.Script())]
	return ok
}

func (LsLaRule) NewCommands(cmd *model.Command) []string {
	fix, ok := lsTypos[strings.TrimSpace(cmd.Script())]
	if !ok {
		return nil
	}
	return []string{fix}
}
