// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Log      LogFileConfig  `toml:"log"`
}

// PracticeConfig maps practice-related settings. Nil fields keep the flag defaults.
type PracticeConfig struct {
	Mode           *string `toml:"mode"`
	Time           *int    `toml:"time"`
	Words          *int    `toml:"words"`
	Category       *string `toml:"category"`
	Capitalization *string `toml:"caps"`
	Numbers        *bool   `toml:"numbers"`
	Punctuation    *bool   `toml:"punct"`
	Symbols        *bool   `toml:"symbols"`
	StopOnError    *bool   `toml:"stop-on-error"`
	ForgiveErrors  *bool   `toml:"forgive-errors"`
	AI             *bool   `toml:"ai"`
	Endpoint       *string `toml:"endpoint"`
	Topic          *string `toml:"topic"`
	WordList       *string `toml:"wordlist"`
	FocusWeak      *bool   `toml:"focus-weak"`
	WeakTop        *int    `toml:"weak-top"`
	WeakWindow     *int    `toml:"weak-window"`
}

// LogFileConfig maps the [log] section.
type LogFileConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
