package tui

import (
	"math/rand"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap/zaptest"

	"github.com/verte-zerg/typer/internal/corpus"
	"github.com/verte-zerg/typer/internal/engine"
	"github.com/verte-zerg/typer/internal/generator"
	"github.com/verte-zerg/typer/internal/model"
	"github.com/verte-zerg/typer/internal/textgen"
)

func newTestModel(t *testing.T, cfg Config) *Model {
	t.Helper()
	eng := engine.New(engine.WithManualTick())
	t.Cleanup(eng.Close)
	gen := generator.New(corpus.MustDefault(), generator.WithRand(rand.New(rand.NewSource(1))))
	m := NewModel(cfg, Deps{
		Engine: eng,
		Texts:  textgen.New(gen),
		Logger: zaptest.NewLogger(t),
	})
	m.Init()
	return m
}

func typeString(m *Model, s string) {
	for _, r := range s {
		msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
		if r == ' ' {
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		}
		m.Update(msg)
	}
}

func TestCustomTextRunsToResults(t *testing.T) {
	m := newTestModel(t, Config{TestType: model.TestCustom, CustomText: "ab cd", Text: model.DefaultTextOptions()})
	if m.screen != screenTyping {
		t.Fatalf("expected typing screen, got %v", m.screen)
	}
	typeString(m, "ab cx")
	if m.screen != screenTyping {
		t.Fatalf("test should still be running")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	typeString(m, "d")
	if m.screen != screenResults {
		t.Fatalf("expected results screen, got %v", m.screen)
	}
	if m.result.stats.Correct != 5 || m.result.stats.Errors != 0 {
		t.Fatalf("unexpected final stats: %+v", m.result.stats)
	}
	if !m.hasLast {
		t.Fatalf("expected last result to be recorded")
	}
}

func TestResultsListProblemKeysAndPractice(t *testing.T) {
	m := newTestModel(t, Config{TestType: model.TestCustom, CustomText: "abc", Text: model.DefaultTextOptions()})
	typeString(m, "xbc")
	if m.screen != screenResults {
		t.Fatalf("expected results screen")
	}
	if len(m.result.problems) != 1 || m.result.problems[0].Char != 'a' {
		t.Fatalf("unexpected problem keys: %+v", m.result.problems)
	}
	view := m.result.view(m.styles)
	if !strings.Contains(view, "Problem keys") {
		t.Fatalf("results view missing problem keys: %s", view)
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	if cmd == nil || m.screen != screenLoading {
		t.Fatalf("expected practice text to be requested")
	}
}

func TestEscapeForceFinishes(t *testing.T) {
	m := newTestModel(t, Config{TestType: model.TestCustom, CustomText: "hello world", Text: model.DefaultTextOptions()})
	typeString(m, "hel")
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.screen != screenResults {
		t.Fatalf("expected results after esc")
	}
	if m.result.stats.Correct != 3 {
		t.Fatalf("expected 3 correct, got %d", m.result.stats.Correct)
	}
}

func TestInactivityPauses(t *testing.T) {
	m := newTestModel(t, Config{TestType: model.TestCustom, CustomText: "hello", Text: model.DefaultTextOptions()})
	typeString(m, "h")
	stale := m.idleGen
	typeString(m, "e")
	m.Update(idleMsg{gen: stale})
	if m.engine.Paused() {
		t.Fatalf("stale idle message must not pause")
	}
	m.Update(idleMsg{gen: m.idleGen})
	if !m.engine.Paused() || !m.stats.Paused {
		t.Fatalf("expected paused engine and snapshot")
	}
	typeString(m, "l")
	if m.engine.Paused() {
		t.Fatalf("keystroke should resume")
	}
}

func TestWordsTestGeneratesText(t *testing.T) {
	opts := model.DefaultTextOptions()
	m := newTestModel(t, Config{TestType: model.TestWords, Words: 25, Text: opts})
	text := make([]rune, 0)
	for _, s := range m.engine.Slots() {
		text = append(text, s.Char)
	}
	if got := len(strings.Fields(string(text))); got != 25 {
		t.Fatalf("expected 25 words, got %d", got)
	}
}

func TestTogglesUpdatePrefsAndEngine(t *testing.T) {
	m := newTestModel(t, Config{TestType: model.TestWords, Words: 10, Text: model.DefaultTextOptions()})
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if !m.prefs.StopOnError {
		t.Fatalf("expected stop-on-error enabled")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlK})
	if m.cfg.Text.Capitalization != model.CapsNormal {
		t.Fatalf("expected capitalization to cycle, got %s", m.cfg.Text.Capitalization)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlG})
	if m.cfg.Text.Category != model.CategoryProgramming {
		t.Fatalf("expected category to cycle, got %s", m.cfg.Text.Category)
	}
}

func TestRenderFooterFormats(t *testing.T) {
	m := newTestModel(t, Config{TestType: model.TestCustom, CustomText: "abcd", Text: model.DefaultTextOptions()})
	typeString(m, "ab")
	m.hasLast = true
	m.lastWPM = 72
	m.lastAcc = 98
	m.allCorrect = 600
	m.allErrors = 0
	m.allDuration = 60000
	out := m.renderFooter()
	for _, want := range []string{"Progress 50%", "Last 72 WPM · 98%", "All-time 120 WPM · 100%"} {
		if !strings.Contains(out, want) {
			t.Fatalf("footer missing %q: %s", want, out)
		}
	}
}

func TestHeaderShowsTestLabel(t *testing.T) {
	opts := model.DefaultTextOptions()
	opts.IncludePunctuation = true
	m := newTestModel(t, Config{TestType: model.TestTime, Seconds: 30, Text: opts})
	out := m.renderHeader()
	for _, want := range []string{"time 30", "common", "punct", "30s"} {
		if !strings.Contains(out, want) {
			t.Fatalf("header missing %q: %s", want, out)
		}
	}
}

func TestLateAITextDoesNotReplaceNewerTest(t *testing.T) {
	opts := model.DefaultTextOptions()
	opts.Mode = model.ModeAI
	m := newTestModel(t, Config{TestType: model.TestWords, Words: 25, Text: opts})
	if m.screen != screenLoading {
		t.Fatalf("expected loading screen, got %v", m.screen)
	}
	aiGen := m.textGen

	m.cfg.Text.Mode = model.ModeStandard
	m.newTest()
	if m.screen != screenTyping {
		t.Fatalf("expected typing screen, got %v", m.screen)
	}
	want := slotText(m.engine.Slots())
	typeString(m, string([]rune(want)[:1]))

	m.Update(textMsg{text: "late remote passage", gen: aiGen})
	if got := slotText(m.engine.Slots()); got != want {
		t.Fatalf("late text replaced the running test: %q", got)
	}
	if m.engine.State() != engine.StateActive {
		t.Fatalf("expected test to keep running, got %v", m.engine.State())
	}
}

func TestLateAITextDoesNotReplaceCustomText(t *testing.T) {
	opts := model.DefaultTextOptions()
	opts.Mode = model.ModeAI
	m := newTestModel(t, Config{TestType: model.TestWords, Words: 25, Text: opts})
	aiGen := m.textGen

	m.cfg.TestType = model.TestCustom
	m.cfg.CustomText = "ab cd"
	m.newTest()
	m.Update(textMsg{text: "late remote passage", gen: aiGen})
	if got := slotText(m.engine.Slots()); got != "ab cd" {
		t.Fatalf("expected custom text to stay loaded, got %q", got)
	}
}

func slotText(slots []engine.Slot) string {
	var b strings.Builder
	for _, s := range slots {
		b.WriteRune(s.Char)
	}
	return b.String()
}
