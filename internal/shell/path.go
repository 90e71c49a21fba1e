package shell

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"oops/internal/model"
)

// Executables lists the names of executable files in dirs, sorted and
// without duplicates. Unreadable directories are skipped.
func Executables(dirs []string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			name := e.Name()
			if seen[name] || e.IsDir() {
				continue
			}
			if model.IsExecutable(filepath.Join(dir, name)) {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// CommandExists reports whether name resolves to an executable. Names
// containing a path separator are checked directly; others are looked up
// in dirs.
func CommandExists(name string, dirs []string) bool {
	if name == "" {
		return false
	}
	if strings.ContainsRune(name, os.PathSeparator) || strings.Contains(name, "/") {
		return model.IsExecutable(model.ExpandTilde(name))
	}
	for _, dir := range dirs {
		if model.IsExecutable(filepath.Join(dir, name)) {
			return true
		}
	}
	return false
}
