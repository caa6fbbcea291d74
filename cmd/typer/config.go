package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/typer/internal/config"
	"github.com/verte-zerg/typer/internal/model"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	def := model.DefaultTextOptions()
	return fmt.Sprintf(`# typer configuration
# Uncomment a value to enable it. CLI flags override config values.
# Text and error options set here are also saved to settings.yaml.

[practice]
# mode = %q            # time, words or custom
# time = %d                  # Seconds for time tests (15, 30, 60)
# words = %d                 # Words for word tests (25, 50, 100)
# category = %q         # common, programming, literature, quotes, words, mixed
# caps = %q          # lowercase, normal or random
# numbers = false
# punct = false
# symbols = false
# stop-on-error = false      # Block the cursor on a mistyped character
# forgive-errors = false     # Advance on mistakes, still counting them
# ai = false                 # Request text from the generation endpoint
# endpoint = %q
# topic = ""
# wordlist = ""              # Word list replacing the common word pool
# focus-weak = false         # Bias word categories toward weak characters
# weak-top = %d
# weak-window = %d

[log]
# level = "info"
# file = %q
`,
		defaultMode,
		defaultSeconds,
		defaultWords,
		def.Category,
		def.Capitalization,
		defaultEndpoint,
		defaultWeakTop,
		defaultWeakWindow,
		config.DefaultLogPath(),
	)
}
