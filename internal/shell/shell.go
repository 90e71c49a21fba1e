// Package shell runs commands under the user's shell and integrates oops
// with bash, zsh and fish.
package shell

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"oops/internal/model"
)

// Shell describes the interactive shell the user runs oops from.
type Shell interface {
	// Name is the shell's short name, as accepted by OOPS_SHELL.
	Name() string
	// AppAlias returns the function definition that wires oops into the shell.
	AppAlias(alias string, alterHistory bool) string
	// And joins two commands so the second runs only if the first succeeds.
	// Built-in rules emit POSIX && themselves; And is for callers that
	// compose commands for a specific shell.
	And(first, second string) string
	// Or joins two commands so the second runs only if the first fails.
	Or(first, second string) string
	// Quote makes s a single shell word.
	Quote(s string) string
	// ExpandAliases replaces a leading alias in script with its definition.
	ExpandAliases(script string) string
	// HistoryFile is where the shell keeps its history.
	HistoryFile() string
	// FromHistoryLine extracts the command from one history file line.
	FromHistoryLine(line string) (string, bool)
}

// DetectShell picks the shell from OOPS_SHELL, which the alias function
// exports, and then from SHELL. Unknown shells get bash-compatible
// behavior. Aliases exported in OOPS_SHELL_ALIASES are parsed for
// expansion.
func DetectShell(getenv func(string) string) Shell {
	if getenv == nil {
		getenv = os.Getenv
	}
	name := getenv("OOPS_SHELL")
	if name == "" {
		name = getenv("SHELL")
	}
	return FromName(name, ParseAliases(getenv("OOPS_SHELL_ALIASES")))
}

// FromName returns the Shell for a shell name or path.
func FromName(name string, aliases map[string]string) Shell {
	base := strings.TrimSuffix(strings.ToLower(filepath.Base(name)), ".exe")
	switch base {
	case "bash":
		return &BashShell{Aliases: aliases}
	case "zsh":
		return &ZshShell{Aliases: aliases}
	case "fish":
		return &FishShell{}
	default:
		return &GenericShell{Aliases: aliases}
	}
}

// ParseAliases reads the output of the shell's alias builtin. Both the bash
// form (alias ll='ls -l') and the zsh form (ll='ls -l') are accepted.
func ParseAliases(raw string) map[string]string {
	aliases := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(raw))
	for scanner.Scan() {
		line := strings.TrimPrefix(strings.TrimSpace(scanner.Text()), "alias ")
		name, value, ok := strings.Cut(line, "=")
		if !ok || name == "" {
			continue
		}
		aliases[name] = unquote(strings.TrimSpace(value))
	}
	return aliases
}

func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '\'' || v[0] == '"') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}

func expandAliases(script string, aliases map[string]string) string {
	binary, rest, hasRest := strings.Cut(script, " ")
	expanded, ok := aliases[binary]
	if !ok {
		return script
	}
	if hasRest {
		return expanded + " " + rest
	}
	return expanded
}

// quotePosix wraps s in single quotes unless it is already a plain word.
func quotePosix(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n'\"\\$`!*?[]{}()<>|&;#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func historyPath(env, fallback string) string {
	if p := os.Getenv(env); p != "" {
		return p
	}
	return model.ExpandTilde(fallback)
}

// BashShell implements Shell for Bash.
type BashShell struct {
	Aliases map[string]string
}

func (s *BashShell) Name() string {
	return "bash"
}

func (s *BashShell) AppAlias(alias string, alterHistory bool) string {
	history := ""
	if alterHistory {
		history = "\n    history -s $OOPS_CMD;"
	}
	return fmt.Sprintf(`function %[1]s () {
    export OOPS_SHELL=bash;
    export OOPS_ALIAS=%[1]s;
    export OOPS_SHELL_ALIASES=$(alias);
    export OOPS_HISTORY="$(fc -ln -10)";
    OOPS_CMD=$(
        command oops --force-command "$OOPS_HISTORY" "$@"
    ) && eval "$OOPS_CMD";
    unset OOPS_HISTORY;%[2]s
}
`, alias, history)
}

func (s *BashShell) And(first, second string) string { return first + " && " + second }
func (s *BashShell) Or(first, second string) string  { return first + " || " + second }
func (s *BashShell) Quote(v string) string           { return quotePosix(v) }

func (s *BashShell) ExpandAliases(script string) string {
	return expandAliases(script, s.Aliases)
}

func (s *BashShell) HistoryFile() string {
	return historyPath("HISTFILE", "~/.bash_history")
}

func (s *BashShell) FromHistoryLine(line string) (string, bool) {
	line = strings.TrimSpace(line)
	// timestamps written with HISTTIMEFORMAT
	if strings.HasPrefix(line, "#") {
		return "", false
	}
	return line, line != ""
}

// zshExtendedHistory matches the ": <start>:<elapsed>;" prefix of
// EXTENDED_HISTORY entries.
var zshExtendedHistory = regexp.MustCompile(`^: \d+:\d+;`)

// ZshShell implements Shell for Zsh.
type ZshShell struct {
	Aliases map[string]string
}

func (s *ZshShell) Name() string {
	return "zsh"
}

func (s *ZshShell) AppAlias(alias string, alterHistory bool) string {
	history := ""
	if alterHistory {
		history = "\n    test -n \"$OOPS_CMD\" && print -s $OOPS_CMD;"
	}
	return fmt.Sprintf(`%[1]s () {
    export OOPS_SHELL=zsh;
    export OOPS_ALIAS=%[1]s;
    OOPS_SHELL_ALIASES=$(alias);
    export OOPS_SHELL_ALIASES;
    OOPS_HISTORY="$(fc -ln -10)";
    export OOPS_HISTORY;
    OOPS_CMD=$(
        command oops --force-command "$OOPS_HISTORY" $@
    ) && eval $OOPS_CMD;
    unset OOPS_HISTORY;%[2]s
}
`, alias, history)
}

func (s *ZshShell) And(first, second string) string { return first + " && " + second }
func (s *ZshShell) Or(first, second string) string  { return first + " || " + second }
func (s *ZshShell) Quote(v string) string           { return quotePosix(v) }

func (s *ZshShell) ExpandAliases(script string) string {
	return expandAliases(script, s.Aliases)
}

func (s *ZshShell) HistoryFile() string {
	return historyPath("HISTFILE", "~/.zsh_history")
}

func (s *ZshShell) FromHistoryLine(line string) (string, bool) {
	line = strings.TrimSpace(zshExtendedHistory.ReplaceAllString(line, ""))
	return line, line != ""
}

// FishShell implements Shell for fish.
type FishShell struct{}

func (s *FishShell) Name() string {
	return "fish"
}

func (s *FishShell) AppAlias(alias string, alterHistory bool) string {
	history := ""
	if alterHistory {
		history = "        builtin history delete --exact --case-sensitive -- $failed_command\n" +
			"        builtin history merge\n"
	}
	return fmt.Sprintf(`function %[1]s -d "Correct your previous console command"
    set -l failed_command $history[1]
    set -lx OOPS_SHELL fish
    set -lx OOPS_ALIAS %[1]s
    command oops --force-command "$failed_command" $argv | read -l fixed_command
    if test -n "$fixed_command"
        eval $fixed_command
%[2]s    end
end
`, alias, history)
}

func (s *FishShell) And(first, second string) string { return first + "; and " + second }
func (s *FishShell) Or(first, second string) string  { return first + "; or " + second }

func (s *FishShell) Quote(v string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, `$`, `\$`)
	return `"` + r.Replace(v) + `"`
}

// ExpandAliases leaves fish scripts alone; fish aliases are functions.
func (s *FishShell) ExpandAliases(script string) string {
	return script
}

func (s *FishShell) HistoryFile() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "fish", "fish_history")
	}
	return model.ExpandTilde("~/.local/share/fish/fish_history")
}

func (s *FishShell) FromHistoryLine(line string) (string, bool) {
	cmd, ok := strings.CutPrefix(strings.TrimSpace(line), "- cmd: ")
	return cmd, ok && cmd != ""
}

// GenericShell is used for shells oops has no integration for. It
// behaves like a POSIX sh.
type GenericShell struct {
	Aliases map[string]string
}

func (s *GenericShell) Name() string {
	return "generic"
}

func (s *GenericShell) AppAlias(alias string, _ bool) string {
	return fmt.Sprintf(`%[1]s () {
    export OOPS_SHELL=generic;
    export OOPS_ALIAS=%[1]s;
    OOPS_CMD=$(
        command oops --force-command "$(fc -ln -1)" "$@"
    ) && eval "$OOPS_CMD";
}
`, alias)
}

func (s *GenericShell) And(first, second string) string { return first + " && " + second }
func (s *GenericShell) Or(first, second string) string  { return first + " || " + second }
func (s *GenericShell) Quote(v string) string           { return quotePosix(v) }

func (s *GenericShell) ExpandAliases(script string) string {
	return expandAliases(script, s.Aliases)
}

func (s *GenericShell) HistoryFile() string {
	return historyPath("HISTFILE", "~/.sh_history")
}

func (s *GenericShell) FromHistoryLine(line string) (string, bool) {
	line = strings.TrimSpace(line)
	return line, line != ""
}
