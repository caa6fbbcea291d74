// Package settings persists the interactive UI preferences as YAML.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/typer/internal/model"
)

// CaretStyle is how the cursor slot is drawn.
type CaretStyle string

// Caret styles in cycle order.
const (
	CaretLine      CaretStyle = "line"
	CaretBlock     CaretStyle = "block"
	CaretUnderline CaretStyle = "underline"
	CaretOff       CaretStyle = "off"
)

// CaretStyles lists caret styles in cycle order.
var CaretStyles = []CaretStyle{CaretLine, CaretBlock, CaretUnderline, CaretOff}

// Themes lists the built-in colour themes in cycle order.
var Themes = []string{"midnight", "serika", "carbon", "cyberpunk"}

// Settings is the persisted preference document. Sound and keyboard values
// are stored for compatibility but not acted on by the terminal UI.
type Settings struct {
	ShowVirtualKeyboard bool                 `yaml:"show_virtual_keyboard"`
	CaretStyle          CaretStyle           `yaml:"caret_style"`
	FocusMode           bool                 `yaml:"focus_mode"`
	ShowLiveWPM         bool                 `yaml:"show_live_wpm"`
	SoundEnabled        bool                 `yaml:"sound_enabled"`
	SoundVolume         float64              `yaml:"sound_volume"`
	Theme               string               `yaml:"theme"`
	KeyboardSize        string               `yaml:"keyboard_size"`
	KeyboardStyle       string               `yaml:"keyboard_style"`
	IncludeNumbers      bool                 `yaml:"include_numbers"`
	IncludePunctuation  bool                 `yaml:"include_punctuation"`
	IncludeSymbols      bool                 `yaml:"include_symbols"`
	StopOnError         bool                 `yaml:"stop_on_error"`
	ForgiveErrors       bool                 `yaml:"forgive_errors"`
	TextCategory        model.Category       `yaml:"text_category"`
	Capitalization      model.Capitalization `yaml:"capitalization"`
}

// Default returns the settings used when nothing is stored.
func Default() Settings {
	return Settings{
		ShowVirtualKeyboard: true,
		CaretStyle:          CaretLine,
		ShowLiveWPM:         true,
		SoundVolume:         0.5,
		Theme:               Themes[0],
		KeyboardSize:        "medium",
		KeyboardStyle:       "solid",
		TextCategory:        model.CategoryCommon,
		Capitalization:      model.CapsLowercase,
	}
}

// normalize resets out-of-range values to their defaults.
func (s *Settings) normalize() {
	def := Default()
	if !containsCaret(s.CaretStyle) {
		s.CaretStyle = def.CaretStyle
	}
	if !containsString(Themes, s.Theme) {
		s.Theme = def.Theme
	}
	if !containsString([]string{"small", "medium", "large"}, s.KeyboardSize) {
		s.KeyboardSize = def.KeyboardSize
	}
	if !containsString([]string{"solid", "outline", "glass"}, s.KeyboardStyle) {
		s.KeyboardStyle = def.KeyboardStyle
	}
	if s.SoundVolume < 0 || s.SoundVolume > 1 {
		s.SoundVolume = def.SoundVolume
	}
	if !s.TextCategory.Valid() {
		s.TextCategory = def.TextCategory
	}
	if !s.Capitalization.Valid() {
		s.Capitalization = def.Capitalization
	}
}

// Load reads settings from path. A missing file yields defaults without
// error; an unreadable or corrupt one yields defaults and the error.
func Load(path string) (Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("failed to read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Default(), fmt.Errorf("failed to parse settings: %w", err)
	}
	s.normalize()
	return s, nil
}

// Save writes settings to path atomically.
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings dir: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "settings-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp settings: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()
	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close settings: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// Store holds the current settings and saves every change.
type Store struct {
	mu      sync.Mutex
	path    string
	current Settings
	logger  *zap.Logger
}

// Open loads settings from path. Load failures are logged and defaults used.
func Open(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s, err := Load(path)
	if err != nil {
		logger.Warn("using default settings", zap.String("path", path), zap.Error(err))
	}
	return &Store{path: path, current: s, logger: logger}
}

// Get returns a copy of the current settings.
func (st *Store) Get() Settings {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.current
}

// Update applies fn and saves the result. Save failures are logged; the
// in-memory settings are updated regardless.
func (st *Store) Update(fn func(*Settings)) Settings {
	st.mu.Lock()
	defer st.mu.Unlock()
	next := st.current
	fn(&next)
	next.normalize()
	st.current = next
	if st.path != "" {
		if err := Save(st.path, next); err != nil {
			st.logger.Warn("failed to save settings", zap.String("path", st.path), zap.Error(err))
		}
	}
	return next
}

// NextCaret returns the caret style after c in cycle order.
func NextCaret(c CaretStyle) CaretStyle {
	for i, v := range CaretStyles {
		if v == c {
			return CaretStyles[(i+1)%len(CaretStyles)]
		}
	}
	return CaretStyles[0]
}

// NextTheme returns the theme after name in cycle order.
func NextTheme(name string) string {
	for i, v := range Themes {
		if v == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func containsCaret(c CaretStyle) bool {
	for _, v := range CaretStyles {
		if v == c {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
