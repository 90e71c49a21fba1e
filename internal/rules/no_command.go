package rules

import (
	"sort"
	"strings"
	"sync"

	"github.com/xrash/smetrics"

	"oops/internal/model"
	"oops/internal/shell"
)

const defaultCloseMatches = 3

// NoCommandRule suggests executables on the search path whose names are
// close to a command the shell could not find.
//
// The executable list is scanned once per rule instance, on first use, and
// never refreshed. Whether the failed name exists is checked afresh.
type NoCommandRule struct {
	dirs       []string
	maxMatches int
	scan       func(dirs []string) []string
	exists     func(name string, dirs []string) bool

	once        sync.Once
	executables []string
}

// NewNoCommandRule returns a rule that searches dirs for replacements and
// offers at most maxMatches of them.
func NewNoCommandRule(dirs []string, maxMatches int) *NoCommandRule {
	if maxMatches <= 0 {
		maxMatches = defaultCloseMatches
	}
	return &NoCommandRule{
		dirs:       dirs,
		maxMatches: maxMatches,
		scan:       shell.Executables,
		exists:     shell.CommandExists,
	}
}

func (*NoCommandRule) Name() string           { return "no_command" }
func (*NoCommandRule) Priority() int          { return 3000 }
func (*NoCommandRule) EnabledByDefault() bool { return true }
func (*NoCommandRule) RequiresOutput() bool   { return true }

func (r *NoCommandRule) Match(cmd *model.Command) bool {
	out, ok := lowerOutput(cmd)
	if !ok {
		return false
	}
	name := firstWord(cmd)
	if name == "" {
		return false
	}
	if !containsAny(out, "not found", "is not recognized as", "not recognized as an internal or external command") {
		return false
	}
	if r.exists(name, r.dirs) {
		return false
	}
	r.load()
	return len(r.closeMatches(name, 1)) > 0
}

func (r *NoCommandRule) NewCommands(cmd *model.Command) []string {
	name := firstWord(cmd)
	if name == "" {
		return nil
	}
	r.load()
	var fixes []string
	for _, m := range r.closeMatches(name, r.maxMatches) {
		fixes = append(fixes, strings.Replace(cmd.Script(), name, m, 1))
	}
	return fixes
}

func (r *NoCommandRule) load() {
	r.once.Do(func() {
		r.executables = r.scan(r.dirs)
	})
}

type scoredName struct {
	name  string
	score float64
}

// closeMatches ranks executables by Jaro-Winkler similarity to name. Short
// names get a lower cut-off because the metric scores them lower.
func (r *NoCommandRule) closeMatches(name string, n int) []string {
	threshold := 0.7
	switch {
	case len(name) <= 3:
		threshold = 0.5
	case len(name) <= 5:
		threshold = 0.6
	}

	var scored []scoredName
	for _, exe := range r.executables {
		if exe == name {
			continue
		}
		if s := smetrics.JaroWinkler(name, exe, 0.7, 4); s >= threshold {
			scored = append(scored, scoredName{name: exe, score: s})
		}
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].name < scored[j].name
	})

	if len(scored) > n {
		scored = scored[:n]
	}
	names := make([]string, len(scored))
	for i, s := range scored {
		names[i] = s.name
	}
	return names
}
