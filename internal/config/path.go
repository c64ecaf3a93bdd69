// Package config provides configuration utilities for the application.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}

// DefaultDataDir returns the default directory for persisted stores.
func DefaultDataDir() string {
	return ExpandPath("~/.local/share/asset")
}

// StorePath resolves a store file path: an explicit path wins, otherwise
// the file lives under the data directory.
func StorePath(explicit, dataDir, filename string) string {
	if explicit != "" {
		return ExpandPath(explicit)
	}
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}
	return filepath.Join(ExpandPath(dataDir), filename)
}
