package config

import (
	"os"
	"path/filepath"
)

const appDir = "typer"

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	return xdgHome("XDG_CONFIG_HOME", ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	return xdgHome("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// XDGStateHome returns the XDG state home or a default fallback.
func XDGStateHome() string {
	return xdgHome("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func xdgHome(env, fallback string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, fallback)
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appDir, "config.toml")
}

// DefaultSettingsPath returns the UI settings document path.
func DefaultSettingsPath() string {
	return filepath.Join(XDGConfigHome(), appDir, "settings.yaml")
}

// DefaultDBPath returns the default path for the SQLite database.
func DefaultDBPath() string {
	return filepath.Join(XDGDataHome(), appDir, "typer.db")
}

// DefaultPoolDBPath returns the database used by the pool server.
func DefaultPoolDBPath() string {
	return filepath.Join(XDGDataHome(), appDir, "pool.db")
}

// DefaultLogPath returns the rotated log file path.
func DefaultLogPath() string {
	return filepath.Join(XDGStateHome(), appDir, "typer.log")
}
