package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/typer/internal/config"
	"github.com/verte-zerg/typer/internal/corpus"
	"github.com/verte-zerg/typer/internal/engine"
	"github.com/verte-zerg/typer/internal/generator"
	"github.com/verte-zerg/typer/internal/model"
	"github.com/verte-zerg/typer/internal/observability"
	"github.com/verte-zerg/typer/internal/settings"
	"github.com/verte-zerg/typer/internal/store"
	"github.com/verte-zerg/typer/internal/textgen"
	"github.com/verte-zerg/typer/internal/tui"
	"github.com/verte-zerg/typer/internal/wordlist"
)

var (
	practiceMode        string
	practiceSeconds     int
	practiceWords       int
	practiceText        textFlags
	practiceStopOnError bool
	practiceForgive     bool
	practiceTextFile    string
	practiceWordList    string
	practiceFocusWeak   bool
	practiceWeakTop     int
	practiceWeakWindow  int
)

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	p := fileCfg.Practice
	applyStringConfig(cmd, "mode", &practiceMode, p.Mode)
	applyIntConfig(cmd, "time", &practiceSeconds, p.Time)
	applyIntConfig(cmd, "words", &practiceWords, p.Words)
	applyStringConfig(cmd, "category", &practiceText.category, p.Category)
	applyStringConfig(cmd, "caps", &practiceText.caps, p.Capitalization)
	applyBoolConfig(cmd, "numbers", &practiceText.numbers, p.Numbers)
	applyBoolConfig(cmd, "punct", &practiceText.punct, p.Punctuation)
	applyBoolConfig(cmd, "symbols", &practiceText.symbols, p.Symbols)
	applyBoolConfig(cmd, "ai", &practiceText.ai, p.AI)
	applyStringConfig(cmd, "endpoint", &practiceText.endpoint, p.Endpoint)
	applyStringConfig(cmd, "topic", &practiceText.topic, p.Topic)
	applyBoolConfig(cmd, "stop-on-error", &practiceStopOnError, p.StopOnError)
	applyBoolConfig(cmd, "forgive", &practiceForgive, p.ForgiveErrors)
	applyStringConfig(cmd, "wordlist", &practiceWordList, p.WordList)
	applyBoolConfig(cmd, "focus-weak", &practiceFocusWeak, p.FocusWeak)
	applyIntConfig(cmd, "weak-top", &practiceWeakTop, p.WeakTop)
	applyIntConfig(cmd, "weak-window", &practiceWeakWindow, p.WeakWindow)
	if practiceTextFile != "" && !cmd.Flags().Changed("mode") {
		practiceMode = string(model.TestCustom)
	}

	opts, err := practiceText.options()
	if err != nil {
		return err
	}
	if err := validatePractice(); err != nil {
		return err
	}

	logger, err := newTUILogger(fileCfg.Log)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	customText, err := readCustomText(practiceTextFile)
	if err != nil {
		return err
	}
	texts, err := newOrchestrator(practiceWordList, practiceText.endpoint, logger)
	if err != nil {
		return err
	}

	prefs := settings.Open(config.DefaultSettingsPath(), logger)
	current := applySettingsOverrides(cmd, prefs, p, opts)
	opts.Category = current.TextCategory
	opts.Capitalization = current.Capitalization
	opts.IncludeNumbers = current.IncludeNumbers
	opts.IncludePunctuation = current.IncludePunctuation
	opts.IncludeSymbols = current.IncludeSymbols

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	eng := engine.New(engine.WithLogger(logger.Named("engine")))
	defer eng.Close()

	m := tui.NewModel(tui.Config{
		TestType:   model.TestType(practiceMode),
		Seconds:    practiceSeconds,
		Words:      practiceWords,
		Text:       opts,
		CustomText: customText,
		FocusWeak:  practiceFocusWeak,
		WeakTop:    practiceWeakTop,
		WeakWindow: practiceWeakWindow,
	}, tui.Deps{
		Engine:   eng,
		Texts:    texts,
		Store:    st,
		Settings: prefs,
		Logger:   logger,
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func validatePractice() error {
	switch model.TestType(practiceMode) {
	case model.TestTime, model.TestWords, model.TestCustom:
	default:
		return fmt.Errorf("--mode must be time, words or custom")
	}
	if practiceSeconds <= 0 {
		return fmt.Errorf("--time must be > 0")
	}
	if practiceWords <= 0 {
		return fmt.Errorf("--words must be > 0")
	}
	if practiceWeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if practiceWeakWindow < 0 {
		return fmt.Errorf("--weak-window must be >= 0")
	}
	return nil
}

// newTUILogger logs to the rotated file only; the terminal belongs to the UI.
func newTUILogger(cfg config.LogFileConfig) (*zap.Logger, error) {
	logCfg := observability.DefaultLogConfig()
	logCfg.Console = false
	logCfg.File = config.DefaultLogPath()
	if cfg.Level != nil {
		logCfg.Level = *cfg.Level
	}
	if cfg.File != nil {
		logCfg.File = *cfg.File
	}
	logger, err := observability.NewLogger(logCfg, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

func readCustomText(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read text file: %w", err)
	}
	text := strings.Join(strings.Fields(string(data)), " ")
	if text == "" {
		return "", fmt.Errorf("text file %s is empty", path)
	}
	return text, nil
}

// newOrchestrator builds the text source. An empty endpoint disables AI text.
func newOrchestrator(wordListPath, endpoint string, logger *zap.Logger) (*textgen.Orchestrator, error) {
	c, err := corpus.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}
	if wordListPath != "" {
		words, err := wordlist.LoadFile(wordListPath, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to load word list: %w", err)
		}
		c = c.WithCommonWords(words)
	}
	opts := []textgen.Option{textgen.WithLogger(logger.Named("textgen"))}
	if endpoint != "" {
		opts = append(opts, textgen.WithAI(textgen.NewClient(endpoint, nil)))
	}
	return textgen.New(generator.New(c), opts...), nil
}

// applySettingsOverrides persists text and error-handling options given
// explicitly by flag or config file, then returns the effective settings.
func applySettingsOverrides(cmd *cobra.Command, prefs *settings.Store, p config.PracticeConfig, opts model.TextOptions) settings.Settings {
	var edits []func(*settings.Settings)
	if explicit(cmd, "category", p.Category != nil) {
		edits = append(edits, func(s *settings.Settings) { s.TextCategory = opts.Category })
	}
	if explicit(cmd, "caps", p.Capitalization != nil) {
		edits = append(edits, func(s *settings.Settings) { s.Capitalization = opts.Capitalization })
	}
	if explicit(cmd, "numbers", p.Numbers != nil) {
		edits = append(edits, func(s *settings.Settings) { s.IncludeNumbers = opts.IncludeNumbers })
	}
	if explicit(cmd, "punct", p.Punctuation != nil) {
		edits = append(edits, func(s *settings.Settings) { s.IncludePunctuation = opts.IncludePunctuation })
	}
	if explicit(cmd, "symbols", p.Symbols != nil) {
		edits = append(edits, func(s *settings.Settings) { s.IncludeSymbols = opts.IncludeSymbols })
	}
	if explicit(cmd, "stop-on-error", p.StopOnError != nil) {
		edits = append(edits, func(s *settings.Settings) { s.StopOnError = practiceStopOnError })
	}
	if explicit(cmd, "forgive", p.ForgiveErrors != nil) {
		edits = append(edits, func(s *settings.Settings) { s.ForgiveErrors = practiceForgive })
	}
	if len(edits) == 0 {
		return prefs.Get()
	}
	return prefs.Update(func(s *settings.Settings) {
		for _, edit := range edits {
			edit(s)
		}
	})
}

func explicit(cmd *cobra.Command, name string, inFile bool) bool {
	return inFile || cmd.Flags().Changed(name)
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}
