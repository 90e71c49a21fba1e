// Package config resolves oops settings from defaults, the settings file,
// OOPS_* environment variables and command-line flags, in that order.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// AllRules in the rules list enables every rule that is on by default.
	AllRules = "ALL"
	// DefaultRulesAlias is accepted as a synonym for AllRules.
	DefaultRulesAlias = "DEFAULT_RULES"
)

// ErrInvalidConfig is returned for settings that cannot be parsed or used.
var ErrInvalidConfig = errors.New("invalid config")

// Settings is the complete, resolved configuration.
type Settings struct {
	Rules                      []string          `yaml:"rules"`
	ExcludeRules               []string          `yaml:"exclude_rules"`
	Priority                   map[string]int    `yaml:"priority"`
	WaitCommand                int               `yaml:"wait_command"`
	WaitSlowCommand            int               `yaml:"wait_slow_command"`
	SlowCommands               []string          `yaml:"slow_commands"`
	RequireConfirmation        bool              `yaml:"require_confirmation"`
	NoColors                   bool              `yaml:"no_colors"`
	Debug                      bool              `yaml:"debug"`
	AlterHistory               bool              `yaml:"alter_history"`
	Repeat                     bool              `yaml:"repeat"`
	NumCloseMatches            int               `yaml:"num_close_matches"`
	HistoryLimit               int               `yaml:"history_limit"`
	Env                        map[string]string `yaml:"env"`
	ExcludedSearchPathPrefixes []string          `yaml:"excluded_search_path_prefixes"`
}

// Default returns the built-in settings. Every call returns fresh slices
// and maps.
func Default() *Settings {
	return &Settings{
		Rules:               []string{AllRules},
		ExcludeRules:        []string{},
		Priority:            map[string]int{},
		WaitCommand:         3,
		WaitSlowCommand:     15,
		SlowCommands:        []string{"lein", "react-native", "gradle", "./gradlew", "vagrant"},
		RequireConfirmation: true,
		AlterHistory:        true,
		NumCloseMatches:     3,
		Env: map[string]string{
			"LC_ALL":    "C",
			"LANG":      "C",
			"GIT_TRACE": "1",
		},
		ExcludedSearchPathPrefixes: []string{},
	}
}

// Overrides are the settings that can be forced from the command line.
type Overrides struct {
	Yes      bool
	Repeat   bool
	Debug    bool
	NoColors bool
}

// Apply merges command-line overrides into s. Flags only ever switch
// behavior on; an unset flag leaves the setting alone.
func (s *Settings) Apply(o Overrides) {
	if o.Yes {
		s.RequireConfirmation = false
	}
	if o.Repeat {
		s.Repeat = true
	}
	if o.Debug {
		s.Debug = true
	}
	if o.NoColors {
		s.NoColors = true
	}
}

// Validate reports settings no command could run with.
func (s *Settings) Validate() error {
	var errs []error
	if s.WaitCommand <= 0 {
		errs = append(errs, fmt.Errorf("wait_command must be positive, got %d", s.WaitCommand))
	}
	if s.WaitSlowCommand <= 0 {
		errs = append(errs, fmt.Errorf("wait_slow_command must be positive, got %d", s.WaitSlowCommand))
	}
	if s.NumCloseMatches < 0 {
		errs = append(errs, fmt.Errorf("num_close_matches must not be negative, got %d", s.NumCloseMatches))
	}
	if s.HistoryLimit < 0 {
		errs = append(errs, fmt.Errorf("history_limit must not be negative, got %d", s.HistoryLimit))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// normalize expands DEFAULT_RULES and treats an empty rules list as ALL.
func (s *Settings) normalize() {
	if len(s.Rules) == 0 {
		s.Rules = []string{AllRules}
	}
	for i, r := range s.Rules {
		if r == DefaultRulesAlias {
			s.Rules[i] = AllRules
		}
	}
	if s.Priority == nil {
		s.Priority = map[string]int{}
	}
	if s.Env == nil {
		s.Env = map[string]string{}
	}
}

// IsRuleEnabled reports whether a rule runs. Exclusion always wins; a rule
// named in the rules list runs even when it is off by default; otherwise
// ALL enables the rules that are on by default.
func (s *Settings) IsRuleEnabled(name string, enabledByDefault bool) bool {
	if slices.Contains(s.ExcludeRules, name) {
		return false
	}
	if slices.Contains(s.Rules, name) {
		return true
	}
	return enabledByDefault && slices.Contains(s.Rules, AllRules)
}

// RulePriority returns the configured priority for name, or def.
func (s *Settings) RulePriority(name string, def int) int {
	if p, ok := s.Priority[name]; ok {
		return p
	}
	return def
}

// IsSlowCommand reports whether script starts one of the slow commands.
// The whole script is compared as well so entries with arguments work.
func (s *Settings) IsSlowCommand(script string) bool {
	script = strings.TrimSpace(script)
	fields := strings.Fields(script)
	for _, slow := range s.SlowCommands {
		if script == slow || (len(fields) > 0 && fields[0] == slow) {
			return true
		}
	}
	return false
}

// Timeout is how long a re-run of script may take.
func (s *Settings) Timeout(script string) time.Duration {
	if s.IsSlowCommand(script) {
		return time.Duration(s.WaitSlowCommand) * time.Second
	}
	return time.Duration(s.WaitCommand) * time.Second
}

// YAML renders s in settings-file form.
func (s *Settings) YAML() (string, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal settings: %w", err)
	}
	return string(data), nil
}
