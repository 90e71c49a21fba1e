package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// settingsEnv holds the raw OOPS_* environment values. Pointer fields stay
// nil when the variable is unset.
type settingsEnv struct {
	Rules                      []string `env:"OOPS_RULES"                         envSeparator:":"`
	ExcludeRules               []string `env:"OOPS_EXCLUDE_RULES"                 envSeparator:":"`
	Priority                   string   `env:"OOPS_PRIORITY"`
	WaitCommand                *int     `env:"OOPS_WAIT_COMMAND"`
	WaitSlowCommand            *int     `env:"OOPS_WAIT_SLOW_COMMAND"`
	SlowCommands               []string `env:"OOPS_SLOW_COMMANDS"                 envSeparator:":"`
	RequireConfirmation        *bool    `env:"OOPS_REQUIRE_CONFIRMATION"`
	NoColors                   *bool    `env:"OOPS_NO_COLORS"`
	Debug                      *bool    `env:"OOPS_DEBUG"`
	AlterHistory               *bool    `env:"OOPS_ALTER_HISTORY"`
	Repeat                     *bool    `env:"OOPS_REPEAT"`
	NumCloseMatches            *int     `env:"OOPS_NUM_CLOSE_MATCHES"`
	HistoryLimit               *int     `env:"OOPS_HISTORY_LIMIT"`
	ExcludedSearchPathPrefixes []string `env:"OOPS_EXCLUDED_SEARCH_PATH_PREFIXES" envSeparator:":"`
}

// Load resolves settings from the defaults, the settings file in dir and
// environ. It always returns usable settings: a settings file or
// environment that cannot be parsed is skipped, and settings that fail
// validation are replaced by the defaults. Any such problem is reported in
// the returned error, which wraps ErrInvalidConfig.
func Load(dir string, environ map[string]string) (*Settings, error) {
	s, fileErr := LoadFile(SettingsPath(dir))
	envErr := s.ApplyEnv(environ)
	s.normalize()
	if err := s.Validate(); err != nil {
		return Default(), errors.Join(fileErr, envErr, err)
	}
	return s, errors.Join(fileErr, envErr)
}

// LoadFile reads a settings file over the defaults. Only keys present in
// the file override; maps are merged key by key. A missing file yields the
// defaults.
func LoadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Default(), fmt.Errorf("read settings %s: %w", path, err)
	}

	s := Default()
	if err := yaml.Unmarshal(data, s); err != nil {
		return Default(), fmt.Errorf("%w: parse %s: %w", ErrInvalidConfig, path, err)
	}
	s.normalize()
	return s, nil
}

// ApplyEnv merges OOPS_* variables from environ into s. A nil environ
// reads the process environment. When any variable fails to parse, s is
// left unchanged.
func (s *Settings) ApplyEnv(environ map[string]string) error {
	if environ == nil {
		environ = env.ToMap(os.Environ())
	}
	var raw settingsEnv
	if err := env.ParseWithOptions(&raw, env.Options{Environment: environ}); err != nil {
		return fmt.Errorf("%w: parse environment: %w", ErrInvalidConfig, err)
	}

	if _, ok := environ["OOPS_RULES"]; ok {
		s.Rules = raw.Rules
	}
	if _, ok := environ["OOPS_EXCLUDE_RULES"]; ok {
		s.ExcludeRules = nonNil(raw.ExcludeRules)
	}
	if _, ok := environ["OOPS_SLOW_COMMANDS"]; ok {
		s.SlowCommands = nonNil(raw.SlowCommands)
	}
	if _, ok := environ["OOPS_EXCLUDED_SEARCH_PATH_PREFIXES"]; ok {
		s.ExcludedSearchPathPrefixes = nonNil(raw.ExcludedSearchPathPrefixes)
	}
	if raw.Priority != "" {
		s.Priority = ParsePriority(raw.Priority)
	}
	setIfPresent(&s.WaitCommand, raw.WaitCommand)
	setIfPresent(&s.WaitSlowCommand, raw.WaitSlowCommand)
	setIfPresent(&s.RequireConfirmation, raw.RequireConfirmation)
	setIfPresent(&s.NoColors, raw.NoColors)
	setIfPresent(&s.Debug, raw.Debug)
	setIfPresent(&s.AlterHistory, raw.AlterHistory)
	setIfPresent(&s.Repeat, raw.Repeat)
	setIfPresent(&s.NumCloseMatches, raw.NumCloseMatches)
	setIfPresent(&s.HistoryLimit, raw.HistoryLimit)
	s.normalize()
	return nil
}

// ParsePriority reads "rule=N:rule2=M". Malformed pairs are ignored.
func ParsePriority(raw string) map[string]int {
	priority := map[string]int{}
	for _, pair := range strings.Split(raw, ":") {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			continue
		}
		priority[name] = n
	}
	return priority
}

func setIfPresent[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
