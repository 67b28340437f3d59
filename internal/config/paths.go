package config

import (
	"os"
	"path/filepath"
	"strings"
)

// resolveDir anchors a relative runtime directory at base. An empty raw value
// falls back to fallback, and an empty base to the working directory.
func resolveDir(base, raw, fallback string) string {
	target := strings.TrimSpace(raw)
	if target == "" {
		target = fallback
	}
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	if base == "" {
		if wd, err := os.Getwd(); err == nil {
			base = wd
		} else {
			base = "."
		}
	}
	return filepath.Join(base, target)
}

// configDir is the directory holding the config file, absolute when possible.
func configDir(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return filepath.Dir(abs)
	}
	return filepath.Dir(path)
}
