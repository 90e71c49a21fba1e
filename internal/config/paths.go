package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	appName          = "oops"
	settingsFileName = "settings.yaml"
	rulesDirName     = "rules"
	exampleRuleName  = "example.yaml"
)

// Dir returns the configuration directory: $XDG_CONFIG_HOME/oops, else
// ~/.config/oops.
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// SettingsPath is the settings file inside dir.
func SettingsPath(dir string) string {
	return filepath.Join(dir, settingsFileName)
}

// RulesDir is the user rules directory inside dir.
func RulesDir(dir string) string {
	return filepath.Join(dir, rulesDirName)
}

// Init creates dir, its rules directory, a commented settings file and a
// disabled example rule. Existing files are left untouched. It returns the
// files it wrote.
func Init(dir string) ([]string, error) {
	if err := os.MkdirAll(RulesDir(dir), 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	var created []string
	files := []struct {
		path string
		body string
	}{
		{SettingsPath(dir), settingsTemplate},
		{filepath.Join(RulesDir(dir), exampleRuleName), exampleRuleTemplate},
	}
	for _, f := range files {
		ok, err := writeIfMissing(f.path, f.body)
		if err != nil {
			return created, err
		}
		if ok {
			created = append(created, f.path)
		}
	}
	return created, nil
}

func writeIfMissing(path, body string) (bool, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := file.WriteString(body); err != nil {
		file.Close()
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, file.Close()
}

const settingsTemplate = `# oops settings. Uncomment a line to change it.
# Environment variables (OOPS_RULES, OOPS_WAIT_COMMAND, ...) override this file.

# rules: [ALL]
# exclude_rules: []
# priority:
#   no_command: 9999
# wait_command: 3
# wait_slow_command: 15
# slow_commands: [lein, react-native, gradle, ./gradlew, vagrant]
# require_confirmation: true
# no_colors: false
# debug: false
# alter_history: true
# repeat: false
# num_close_matches: 3
# history_limit: 0
# env:
#   LC_ALL: C
#   LANG: C
#   GIT_TRACE: "1"
# excluded_search_path_prefixes: []
`

const exampleRuleTemplate = `# A user rule. Set enabled to true to use it.
name: example_gti
enabled: false
priority: 1000
match_script: '^gti (.*)$'
new_command_pattern: 'git ${1}'
requires_output: false
`
