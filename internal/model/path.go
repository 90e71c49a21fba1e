package model

import (
	"path/filepath"
	"strings"
)

// SearchDirs splits a PATH-style list into directories, dropping empty
// entries, duplicates and anything under one of the excluded prefixes.
// The order of first appearance is kept.
func SearchDirs(pathList string, excludedPrefixes []string) []string {
	var dirs []string
	seen := make(map[string]bool)
	for _, dir := range filepath.SplitList(pathList) {
		if dir == "" || seen[dir] {
			continue
		}
		seen[dir] = true
		if hasAnyPrefix(dir, excludedPrefixes) {
			continue
		}
		dirs = append(dirs, dir)
	}
	return dirs
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
