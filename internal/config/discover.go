package config

import (
	"os"
	"path/filepath"
)

// DefaultFileName is the config file every binary looks for.
const DefaultFileName = "brief-portal.toml"

// SearchPaths returns candidate config files, binary-relative first, then
// relative to the working directory. Duplicates are dropped.
func SearchPaths() []string {
	paths := []string{}
	if exe, err := os.Executable(); err == nil {
		binDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(binDir, DefaultFileName),
			filepath.Join(binDir, "config", DefaultFileName),
		)
	}
	paths = append(paths, DefaultFileName, filepath.Join("config", DefaultFileName))

	seen := make(map[string]bool, len(paths))
	deduped := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true
		deduped = append(deduped, p)
	}
	return deduped
}

// Discover returns the explicit paths when any are given, otherwise the
// first existing file from candidates. An empty result means defaults only.
func Discover(explicit []string, candidates []string) []string {
	if len(explicit) > 0 {
		return explicit
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return []string{p}
		}
	}
	return nil
}
