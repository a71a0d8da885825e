// Package config provides configuration utilities for the application.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultDatabasePath is where the sqlite database lives when the
// configuration does not say otherwise.
func DefaultDatabasePath() string {
	return "$HOME/.local/share/regenord/regenord.db"
}

// DefaultRulesPath is the default location of the category rule set. A
// rules.yaml in the working directory wins over the per-user copy, which
// keeps checked-out projects self-contained.
func DefaultRulesPath() string {
	if _, err := os.Stat("config/rules.yaml"); err == nil {
		return "config/rules.yaml"
	}
	return "$HOME/.config/regenord/rules.yaml"
}

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
