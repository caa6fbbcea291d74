// Package main provides the CLI entrypoint for typer.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/verte-zerg/typer/internal/model"
)

const (
	defaultMode       = string(model.TestWords)
	defaultSeconds    = 30
	defaultWords      = 50
	defaultEndpoint   = "http://127.0.0.1:8787/generate"
	defaultWeakTop    = 8
	defaultWeakWindow = 20
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "typer",
		Short:         "Terminal typing speed trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	fs := rootCmd.Flags()
	fs.StringVar(&practiceMode, "mode", defaultMode, "test type: time, words or custom")
	fs.IntVar(&practiceSeconds, "time", defaultSeconds, "seconds for time tests")
	fs.IntVar(&practiceWords, "words", defaultWords, "words for word tests")
	practiceText.register(fs)
	fs.BoolVar(&practiceStopOnError, "stop-on-error", false, "block the cursor on a mistyped character")
	fs.BoolVar(&practiceForgive, "forgive", false, "advance on mistakes and record them as errors")
	fs.StringVar(&practiceTextFile, "text-file", "", "custom text file (implies --mode custom)")
	fs.StringVar(&practiceWordList, "wordlist", "", "word list file replacing the common word pool")
	fs.BoolVar(&practiceFocusWeak, "focus-weak", false, "bias word categories toward weak characters")
	fs.IntVar(&practiceWeakTop, "weak-top", defaultWeakTop, "number of weak characters to focus on")
	fs.IntVar(&practiceWeakWindow, "weak-window", defaultWeakWindow, "number of recent sessions used to find weak characters")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

// textFlags are the text options shared by the practice TUI and `generate`.
type textFlags struct {
	category string
	caps     string
	numbers  bool
	punct    bool
	symbols  bool
	ai       bool
	endpoint string
	topic    string
}

func (t *textFlags) register(fs *pflag.FlagSet) {
	def := model.DefaultTextOptions()
	fs.StringVar(&t.category, "category", string(def.Category), "text category: common, programming, literature, quotes, words, mixed")
	fs.StringVar(&t.caps, "caps", string(def.Capitalization), "capitalization: lowercase, normal or random")
	fs.BoolVar(&t.numbers, "numbers", false, "include numbers")
	fs.BoolVar(&t.punct, "punct", false, "include punctuation")
	fs.BoolVar(&t.symbols, "symbols", false, "include symbols")
	fs.BoolVar(&t.ai, "ai", false, "request text from the generation endpoint")
	fs.StringVar(&t.endpoint, "endpoint", defaultEndpoint, "generation endpoint URL")
	fs.StringVar(&t.topic, "topic", "", "topic for generated text")
}

func (t *textFlags) options() (model.TextOptions, error) {
	opts := model.DefaultTextOptions()
	opts.Category = model.Category(t.category)
	opts.Capitalization = model.Capitalization(t.caps)
	opts.IncludeNumbers = t.numbers
	opts.IncludePunctuation = t.punct
	opts.IncludeSymbols = t.symbols
	opts.Topic = t.topic
	if t.ai {
		opts.Mode = model.ModeAI
	}
	if !opts.Category.Valid() {
		return opts, fmt.Errorf("--category must be one of %v", model.Categories)
	}
	if !opts.Capitalization.Valid() {
		return opts, fmt.Errorf("--caps must be lowercase, normal or random")
	}
	if t.ai && t.endpoint == "" {
		return opts, fmt.Errorf("--endpoint must not be empty with --ai")
	}
	return opts, nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
