package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/typer/internal/observability"
)

var (
	generateText     textFlags
	generateWords    int
	generatePractice string
	generateWordList string
	generateVerbose  bool
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print practice text without starting a test",
		Args:  cobra.NoArgs,
		RunE:  runGenerateCmd,
	}
	generateText.register(cmd.Flags())
	cmd.Flags().IntVar(&generateWords, "words", defaultWords, "number of words")
	cmd.Flags().StringVar(&generatePractice, "practice", "", "keys to drill instead of regular text")
	cmd.Flags().StringVar(&generateWordList, "wordlist", "", "word list file replacing the common word pool")
	cmd.Flags().BoolVarP(&generateVerbose, "verbose", "v", false, "log fallbacks to stderr")
	return cmd
}

func runGenerateCmd(cmd *cobra.Command, _ []string) error {
	opts, err := generateText.options()
	if err != nil {
		return err
	}
	if generateWords <= 0 {
		return fmt.Errorf("--words must be > 0")
	}
	opts.WordCount = generateWords

	logger := zap.NewNop()
	if generateVerbose {
		logCfg := observability.DefaultLogConfig()
		logCfg.Level = "debug"
		logger, err = observability.NewLogger(logCfg, cmd.ErrOrStderr())
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer func() {
			_ = logger.Sync()
		}()
	}

	endpoint := ""
	if generateText.ai {
		endpoint = generateText.endpoint
	}
	texts, err := newOrchestrator(generateWordList, endpoint, logger)
	if err != nil {
		return err
	}

	var text string
	if generatePractice != "" {
		text, err = texts.Practice(cmd.Context(), []rune(generatePractice), generateWords, generateText.ai)
	} else {
		text, err = texts.Generate(cmd.Context(), opts)
	}
	if err != nil {
		return fmt.Errorf("failed to generate text: %w", err)
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), text); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
