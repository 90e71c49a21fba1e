package rules

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"oops/internal/model"
)

// ErrInvalidUserRule is returned for rule files that cannot be used.
var ErrInvalidUserRule = errors.New("invalid user rule")

// userRuleGlob selects rule files anywhere under the rules directory.
const userRuleGlob = "**/*.{yaml,yml}"

// UserRuleSpec is the on-disk form of a user rule.
type UserRuleSpec struct {
	Name              string `yaml:"name"`
	Enabled           bool   `yaml:"enabled"`
	Priority          int    `yaml:"priority"`
	MatchScript       string `yaml:"match_script"`
	MatchOutput       string `yaml:"match_output"`
	NewCommand        string `yaml:"new_command"`
	NewCommandPattern string `yaml:"new_command_pattern"`
	RequiresOutput    bool   `yaml:"requires_output"`
}

// UserRule is a rule defined by regular expressions in a settings file.
// It matches when every configured pattern matches; with no pattern
// configured it never matches.
type UserRule struct {
	spec     UserRuleSpec
	scriptRe *regexp.Regexp
	outputRe *regexp.Regexp
}

// NewUserRule compiles spec into a rule.
func NewUserRule(spec UserRuleSpec) (*UserRule, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("%w: missing name", ErrInvalidUserRule)
	}
	if spec.MatchScript == "" && spec.MatchOutput == "" {
		return nil, fmt.Errorf("%w: %s: needs match_script or match_output", ErrInvalidUserRule, spec.Name)
	}
	if spec.NewCommand == "" && spec.NewCommandPattern == "" {
		return nil, fmt.Errorf("%w: %s: needs new_command or new_command_pattern", ErrInvalidUserRule, spec.Name)
	}

	r := &UserRule{spec: spec}
	var err error
	if spec.MatchScript != "" {
		if r.scriptRe, err = regexp.Compile(spec.MatchScript); err != nil {
			return nil, fmt.Errorf("%w: %s: match_script: %v", ErrInvalidUserRule, spec.Name, err)
		}
	}
	if spec.MatchOutput != "" {
		if r.outputRe, err = regexp.Compile(spec.MatchOutput); err != nil {
			return nil, fmt.Errorf("%w: %s: match_output: %v", ErrInvalidUserRule, spec.Name, err)
		}
	}
	return r, nil
}

// ParseUserRule decodes a YAML rule file. name is used when the file does
// not set one.
func ParseUserRule(data []byte, name string) (*UserRule, error) {
	spec := UserRuleSpec{
		Name:           name,
		Enabled:        true,
		Priority:       DefaultPriority,
		RequiresOutput: true,
	}
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidUserRule, name, err)
	}
	return NewUserRule(spec)
}

func (r *UserRule) Name() string           { return r.spec.Name }
func (r *UserRule) Priority() int          { return r.spec.Priority }
func (r *UserRule) EnabledByDefault() bool { return r.spec.Enabled }
func (r *UserRule) RequiresOutput() bool   { return r.spec.RequiresOutput }

func (r *UserRule) Match(cmd *model.Command) bool {
	if r.scriptRe == nil && r.outputRe == nil {
		return false
	}
	if r.scriptRe != nil && !r.scriptRe.MatchString(cmd.Script()) {
		return false
	}
	if r.outputRe != nil {
		out, ok := cmd.Output()
		if !ok || !r.outputRe.MatchString(out) {
			return false
		}
	}
	return true
}

// NewCommands returns the literal replacement when one is set. Otherwise the
// pattern is expanded with the capture groups of the first script match,
// which replaces the matched span; without a script pattern the output
// match's groups are expanded into the pattern alone.
func (r *UserRule) NewCommands(cmd *model.Command) []string {
	if r.spec.NewCommand != "" {
		return []string{r.spec.NewCommand}
	}
	if r.spec.NewCommandPattern == "" {
		return nil
	}

	script := cmd.Script()
	if r.scriptRe != nil {
		loc := r.scriptRe.FindStringSubmatchIndex(script)
		if loc == nil {
			return nil
		}
		expanded := r.scriptRe.ExpandString(nil, r.spec.NewCommandPattern, script, loc)
		return []string{script[:loc[0]] + string(expanded) + script[loc[1]:]}
	}

	out, ok := cmd.Output()
	if !ok {
		return nil
	}
	loc := r.outputRe.FindStringSubmatchIndex(out)
	if loc == nil {
		return nil
	}
	return []string{string(r.outputRe.ExpandString(nil, r.spec.NewCommandPattern, out, loc))}
}

// LoadUserRules reads every rule file under dir. Files that fail to parse
// are logged and skipped. A missing directory yields no rules.
func LoadUserRules(dir string, logger *zap.Logger) ([]Rule, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	fsys := os.DirFS(dir)
	files, err := doublestar.Glob(fsys, userRuleGlob)
	if err != nil {
		return nil, fmt.Errorf("list user rules in %s: %w", dir, err)
	}
	sort.Strings(files)

	var loaded []Rule
	for _, file := range files {
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			logger.Warn("Failed to read rule file", zap.String("file", file), zap.Error(err))
			continue
		}
		name := strings.TrimSuffix(path.Base(file), path.Ext(file))
		rule, err := ParseUserRule(data, name)
		if err != nil {
			logger.Warn("Skipping rule file", zap.String("file", file), zap.Error(err))
			continue
		}
		loaded = append(loaded, rule)
	}

	logger.Debug("Loaded user rules", zap.String("dir", dir), zap.Int("count", len(loaded)))
	return loaded, nil
}
