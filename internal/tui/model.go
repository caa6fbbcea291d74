// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verte-zerg/typer/internal/engine"
	"github.com/verte-zerg/typer/internal/model"
	statsPkg "github.com/verte-zerg/typer/internal/stats"
	"github.com/verte-zerg/typer/internal/settings"
	"github.com/verte-zerg/typer/internal/store"
	"github.com/verte-zerg/typer/internal/textgen"
)

// InactivityPause is how long an active test may go without keystrokes
// before it pauses.
const InactivityPause = 3 * time.Second

// Config selects the kind of test to run.
type Config struct {
	TestType model.TestType
	// Seconds is the limit for timed tests.
	Seconds int
	// Words is the text length for word tests.
	Words int
	Text  model.TextOptions
	// CustomText is used for custom tests; empty opens the editor.
	CustomText string
	FocusWeak  bool
	WeakTop    int
	WeakWindow int
}

// Deps are the collaborators of the model. Store and Settings may be nil.
type Deps struct {
	Engine   *engine.Engine
	Texts    *textgen.Orchestrator
	Store    *store.Store
	Settings *settings.Store
	Logger   *zap.Logger
}

type screen int

const (
	screenLoading screen = iota
	screenTyping
	screenResults
	screenCustom
)

// Model implements the Bubble Tea typing UI.
type Model struct {
	cfg      Config
	engine   *engine.Engine
	texts    *textgen.Orchestrator
	store    *store.Store
	settings *settings.Store
	logger   *zap.Logger

	prefs  settings.Settings
	styles styles
	keys   keyMap
	help   help.Model
	spin   spinner.Model
	editor textarea.Model
	bridge *bridge

	width  int
	height int

	screen    screen
	practice  bool
	stats     model.Stats
	result    result
	startedAt time.Time
	idleGen   int
	textGen   int
	lastKey   model.KeyResult
	status    string
	weakChars []rune

	lastWPM int
	lastAcc int
	hasLast bool

	allCorrect  int
	allErrors   int
	allDuration int64
}

// NewModel constructs a typing TUI model.
func NewModel(cfg Config, deps Deps) *Model {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	prefs := settings.Default()
	if deps.Settings != nil {
		prefs = deps.Settings.Get()
	}

	editor := textarea.New()
	editor.Placeholder = "Paste or type the text to practice…"
	editor.ShowLineNumbers = false

	m := &Model{
		cfg:      cfg,
		engine:   deps.Engine,
		texts:    deps.Texts,
		store:    deps.Store,
		settings: deps.Settings,
		logger:   logger.Named("tui"),
		prefs:    prefs,
		styles:   newStyles(prefs.Theme, prefs.CaretStyle),
		keys:     defaultKeyMap(),
		help:     help.New(),
		spin:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		editor:   editor,
		bridge:   newBridge(),
	}
	m.applyEngineConfig()
	m.engine.Subscribe(func(s model.Stats) { m.bridge.push(statsMsg{stats: s}) })
	m.engine.AddKeyListener(func(r rune, res model.KeyResult) {
		m.bridge.push(keyResultMsg{char: r, result: res})
	})
	m.loadFooterStats()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.bridge.wait(), m.newTest())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.editor.SetWidth(max(20, msg.Width*2/3))
		m.editor.SetHeight(max(3, msg.Height/3))
		return m, nil
	case engineMsgs:
		cmds := []tea.Cmd{m.bridge.wait()}
		for _, inner := range msg {
			if cmd := m.handleEngineMsg(inner); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		return m, tea.Batch(cmds...)
	case textMsg:
		if msg.gen != m.textGen {
			return m, nil
		}
		m.loadText(msg.text, msg.practice)
		return m, nil
	case staleTextMsg:
		return m, nil
	case idleMsg:
		if msg.gen == m.idleGen && m.engine.State() == engine.StateActive {
			m.engine.Pause()
			return m, m.flushEngine()
		}
		return m, nil
	case savedMsg:
		if msg.err != nil {
			m.logger.Warn("failed to save session", zap.Error(msg.err))
			m.status = "session not saved"
		}
		return m, nil
	case spinner.TickMsg:
		if m.screen != screenLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.shutdown()
		return m, tea.Quit
	}
	if m.screen == screenCustom {
		return m.handleCustomKey(msg)
	}
	switch {
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Restart):
		m.practice = false
		return m, m.newTest()
	case key.Matches(msg, m.keys.Finish):
		m.engine.ForceFinish()
		return m, m.flushEngine()
	}
	if cmd, ok := m.handleToggle(msg); ok {
		return m, cmd
	}

	switch m.screen {
	case screenResults:
		if key.Matches(msg, m.keys.Practice) && len(m.result.problems) > 0 {
			return m, m.practiceTest(statsPkg.ProblemKeyRunes(m.result.problems))
		}
		return m, nil
	case screenTyping:
		return m, m.feed(msg)
	default:
		return m, nil
	}
}

// feed passes a keystroke to the engine.
func (m *Model) feed(msg tea.KeyMsg) tea.Cmd {
	var input []string
	switch msg.Type {
	case tea.KeyBackspace, tea.KeyDelete:
		input = []string{engine.KeyBackspace}
	case tea.KeySpace:
		input = []string{" "}
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			input = append(input, string(r))
		}
	default:
		return nil
	}
	wasIdle := m.engine.State() == engine.StateIdle
	for _, in := range input {
		m.engine.HandleInput(in)
	}
	if wasIdle && m.engine.State() != engine.StateIdle {
		m.startedAt = time.Now()
	}
	m.idleGen++
	gen := m.idleGen
	idle := tea.Tick(InactivityPause, func(time.Time) tea.Msg { return idleMsg{gen: gen} })
	return tea.Batch(m.flushEngine(), idle)
}

// flushEngine handles events the engine emitted synchronously so the
// screen reflects a keystroke before the next render.
func (m *Model) flushEngine() tea.Cmd {
	var cmds []tea.Cmd
	for _, inner := range m.bridge.drain() {
		if cmd := m.handleEngineMsg(inner); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	// The waiting command may have consumed the notification.
	return tea.Batch(cmds...)
}

func (m *Model) handleEngineMsg(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case statsMsg:
		m.stats = msg.stats
		if msg.stats.Finished && m.screen == screenTyping {
			return m.finish(msg.stats)
		}
	case keyResultMsg:
		m.lastKey = msg.result
	}
	return nil
}

func (m *Model) handleCustomKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Finish):
		m.editor.Blur()
		m.cfg.TestType = model.TestWords
		return m, m.newTest()
	case key.Matches(msg, m.keys.SubmitCustom):
		text := strings.Join(strings.Fields(m.editor.Value()), " ")
		if text == "" {
			return m, nil
		}
		m.editor.Blur()
		m.cfg.CustomText = text
		m.supersedeText()
		m.texts.Supersede()
		m.loadText(text, false)
		return m, nil
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

// handleToggle applies setting chords. Toggles that change the text start
// a new test; the rest apply immediately.
func (m *Model) handleToggle(msg tea.KeyMsg) (tea.Cmd, bool) {
	regenerate := true
	switch {
	case key.Matches(msg, m.keys.StopOnError):
		m.updatePrefs(func(s *settings.Settings) { s.StopOnError = !s.StopOnError })
		m.applyEngineConfig()
		regenerate = false
	case key.Matches(msg, m.keys.Forgive):
		m.updatePrefs(func(s *settings.Settings) { s.ForgiveErrors = !s.ForgiveErrors })
		m.applyEngineConfig()
		regenerate = false
	case key.Matches(msg, m.keys.Focus):
		m.updatePrefs(func(s *settings.Settings) { s.FocusMode = !s.FocusMode })
		regenerate = false
	case key.Matches(msg, m.keys.LiveWPM):
		m.updatePrefs(func(s *settings.Settings) { s.ShowLiveWPM = !s.ShowLiveWPM })
		regenerate = false
	case key.Matches(msg, m.keys.Theme):
		m.updatePrefs(func(s *settings.Settings) { s.Theme = settings.NextTheme(s.Theme) })
		regenerate = false
	case key.Matches(msg, m.keys.Caret):
		m.updatePrefs(func(s *settings.Settings) { s.CaretStyle = settings.NextCaret(s.CaretStyle) })
		regenerate = false
	case key.Matches(msg, m.keys.Numbers):
		m.updatePrefs(func(s *settings.Settings) { s.IncludeNumbers = !s.IncludeNumbers })
	case key.Matches(msg, m.keys.Punctuation):
		m.updatePrefs(func(s *settings.Settings) { s.IncludePunctuation = !s.IncludePunctuation })
	case key.Matches(msg, m.keys.Symbols):
		m.updatePrefs(func(s *settings.Settings) { s.IncludeSymbols = !s.IncludeSymbols })
	case key.Matches(msg, m.keys.Caps):
		m.updatePrefs(func(s *settings.Settings) { s.Capitalization = nextCaps(s.Capitalization) })
	case key.Matches(msg, m.keys.Category):
		m.updatePrefs(func(s *settings.Settings) { s.TextCategory = nextCategory(s.TextCategory) })
	case key.Matches(msg, m.keys.Mode):
		if m.cfg.Text.Mode == model.ModeAI {
			m.cfg.Text.Mode = model.ModeStandard
		} else {
			m.cfg.Text.Mode = model.ModeAI
		}
	case key.Matches(msg, m.keys.CustomText):
		m.engine.Reset()
		m.screen = screenCustom
		m.editor.Reset()
		return m.editor.Focus(), true
	default:
		return nil, false
	}
	if !regenerate || m.engine.State() == engine.StateActive || m.engine.State() == engine.StatePaused {
		return nil, true
	}
	return m.newTest(), true
}

func (m *Model) updatePrefs(fn func(*settings.Settings)) {
	if m.settings != nil {
		m.prefs = m.settings.Update(fn)
	} else {
		fn(&m.prefs)
	}
	m.styles = newStyles(m.prefs.Theme, m.prefs.CaretStyle)
	m.cfg.Text.IncludeNumbers = m.prefs.IncludeNumbers
	m.cfg.Text.IncludePunctuation = m.prefs.IncludePunctuation
	m.cfg.Text.IncludeSymbols = m.prefs.IncludeSymbols
	m.cfg.Text.Capitalization = m.prefs.Capitalization
	m.cfg.Text.Category = m.prefs.TextCategory
}

func (m *Model) applyEngineConfig() {
	m.engine.SetStopOnError(m.prefs.StopOnError)
	m.engine.SetForgiveErrors(m.prefs.ForgiveErrors)
	if m.cfg.TestType == model.TestTime {
		m.engine.SetTimeLimit(m.cfg.Seconds)
	} else {
		m.engine.SetTimeLimit(0)
	}
}

// newTest starts fetching text for the configured test.
func (m *Model) newTest() tea.Cmd {
	gen := m.supersedeText()
	m.engine.Reset()
	m.practice = false
	m.status = ""
	if m.cfg.TestType == model.TestCustom {
		if m.cfg.CustomText == "" {
			m.screen = screenCustom
			return m.editor.Focus()
		}
		m.texts.Supersede()
		m.loadText(m.cfg.CustomText, false)
		return nil
	}

	opts := m.cfg.Text
	opts.WordCount = textgen.WordCount(m.cfg.TestType, m.cfg.Words, m.cfg.Seconds, opts.Mode)
	if m.cfg.FocusWeak && len(m.weakChars) == 0 {
		m.refreshWeakChars()
	}
	opts.FocusChars = string(m.weakChars)

	if opts.Mode != model.ModeAI {
		m.loadText(m.texts.Standard(opts), false)
		return nil
	}
	m.screen = screenLoading
	texts := m.texts
	return tea.Batch(m.spin.Tick, func() tea.Msg {
		text, err := texts.Generate(context.Background(), opts)
		if err != nil {
			return staleTextMsg{}
		}
		return textMsg{text: text, gen: gen}
	})
}

// supersedeText starts a new text generation. Replies tagged with an older
// one are dropped.
func (m *Model) supersedeText() int {
	m.textGen++
	return m.textGen
}

func (m *Model) practiceTest(keys []rune) tea.Cmd {
	gen := m.supersedeText()
	m.engine.Reset()
	m.screen = screenLoading
	texts := m.texts
	ai := m.cfg.Text.Mode == model.ModeAI
	return tea.Batch(m.spin.Tick, func() tea.Msg {
		text, err := texts.Practice(context.Background(), keys, 0, ai)
		if err != nil {
			return staleTextMsg{}
		}
		return textMsg{text: text, practice: true, gen: gen}
	})
}

func (m *Model) loadText(text string, practice bool) {
	m.applyEngineConfig()
	if practice {
		// Practice runs to the end of its text.
		m.engine.SetTimeLimit(0)
	}
	m.practice = practice
	m.screen = screenTyping
	m.startedAt = time.Time{}
	m.lastKey = ""
	m.engine.LoadTest(text)
	m.flushEngine()
}

func (m *Model) finish(final model.Stats) tea.Cmd {
	m.screen = screenResults
	m.result = newResult(final)
	m.lastWPM = final.WPM
	m.lastAcc = final.Accuracy
	m.hasLast = true
	m.allCorrect += final.Correct
	m.allErrors += final.Errors
	m.allDuration += final.Elapsed.Milliseconds()
	if m.cfg.FocusWeak {
		m.weakChars = nil
	}
	if m.store == nil || final.Correct+final.Errors == 0 {
		return nil
	}
	return m.saveSession(final)
}

func (m *Model) saveSession(final model.Stats) tea.Cmd {
	endedAt := time.Now()
	startedAt := m.startedAt
	if startedAt.IsZero() {
		startedAt = endedAt.Add(-final.Elapsed)
	}
	session := model.SessionStats{
		UUID:       uuid.NewString(),
		StartedAt:  startedAt,
		EndedAt:    endedAt,
		TestType:   m.cfg.TestType,
		Category:   m.cfg.Text.Category,
		Words:      m.cfg.Words,
		WPM:        final.WPM,
		Accuracy:   final.Accuracy,
		Correct:    final.Correct,
		Errors:     final.Errors,
		DurationMs: final.Elapsed.Milliseconds(),
	}
	if m.cfg.TestType == model.TestTime && !m.practice {
		session.TimeLimit = m.cfg.Seconds
	}
	keys := make([]model.CharStats, 0, len(final.KeyStats))
	for r, ks := range final.KeyStats {
		keys = append(keys, model.CharStats{
			Char:         string(r),
			Total:        ks.Total,
			Errors:       ks.Errors,
			LatencySumMs: ks.LatencySumMs,
			LatencyCount: ks.LatencyCount,
		})
	}
	st := m.store
	return func() tea.Msg {
		_, err := st.InsertSession(context.Background(), session, keys)
		return savedMsg{err: err}
	}
}

func (m *Model) refreshWeakChars() {
	if m.store == nil {
		return
	}
	aggs, err := m.store.GetWeakChars(context.Background(), m.cfg.WeakWindow)
	if err != nil {
		m.logger.Warn("failed to load weak chars", zap.Error(err))
		return
	}
	m.weakChars = statsPkg.SelectWeakChars(aggs, m.cfg.WeakTop, 1)
}

func (m *Model) loadFooterStats() {
	if m.store == nil {
		return
	}
	sessions, err := m.store.ListSessions(context.Background(), model.StatsConfig{})
	if err != nil {
		m.logger.Warn("failed to load session stats", zap.Error(err))
		return
	}
	if len(sessions) == 0 {
		return
	}
	last := sessions[len(sessions)-1]
	m.lastWPM = last.WPM
	m.lastAcc = last.Accuracy
	m.hasLast = true
	for _, s := range sessions {
		m.allCorrect += s.Correct
		m.allErrors += s.Errors
		m.allDuration += s.DurationMs
	}
}

func (m *Model) shutdown() {
	m.bridge.close()
	m.engine.Close()
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	switch m.screen {
	case screenLoading:
		content = m.spin.View() + " generating text…"
	case screenCustom:
		content = m.editor.View() + "\n" + m.styles.footer.Render("ctrl+d start  ·  esc cancel")
	case screenResults:
		content = m.result.view(m.styles)
	default:
		content = m.typingView()
	}
	if m.width == 0 || m.height == 0 {
		return content
	}

	header := m.renderHeader()
	footer := m.renderFooter()
	if m.height < 5 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	bodyHeight := m.height - 2
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	headerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, header)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return headerLine + "\n" + body + "\n" + footerLine
}

func (m *Model) typingView() string {
	slots := m.engine.Slots()
	if len(slots) == 0 {
		return ""
	}
	cursor := m.engine.Cursor()
	if cursor >= len(slots) {
		cursor = -1
	}
	styled := buildStyledRunes(slots, cursor, m.styles)
	if m.width == 0 {
		return renderLines([][]styledRune{styled})
	}
	contentWidth := max(1, int(float64(m.width)*0.70))
	lines := visibleLines(wrapLines(styled, contentWidth), visibleLineCount)
	return lipgloss.NewStyle().Width(contentWidth).Render(renderLines(lines))
}

func (m *Model) focused() bool {
	return m.prefs.FocusMode && m.screen == screenTyping && m.engine.State() == engine.StateActive
}

func (m *Model) renderHeader() string {
	if m.focused() {
		return m.liveLine()
	}
	segments := []string{m.testLabel(), string(m.cfg.Text.Category), string(m.cfg.Text.Capitalization)}
	for _, opt := range []struct {
		on   bool
		name string
	}{
		{m.cfg.Text.IncludePunctuation, "punct"},
		{m.cfg.Text.IncludeNumbers, "numbers"},
		{m.cfg.Text.IncludeSymbols, "symbols"},
		{m.prefs.StopOnError, "stop-on-error"},
		{m.prefs.ForgiveErrors, "forgive"},
		{m.cfg.Text.Mode == model.ModeAI, "ai"},
	} {
		if opt.on {
			segments = append(segments, opt.name)
		}
	}
	line := m.styles.header.Render(strings.Join(segments, " · "))
	if live := m.liveLine(); live != "" {
		line += "   " + live
	}
	return line
}

func (m *Model) testLabel() string {
	if m.practice {
		return "practice"
	}
	switch m.cfg.TestType {
	case model.TestTime:
		return fmt.Sprintf("time %d", m.cfg.Seconds)
	case model.TestCustom:
		return "custom"
	default:
		return fmt.Sprintf("words %d", m.cfg.Words)
	}
}

func (m *Model) liveLine() string {
	if m.screen != screenTyping {
		return ""
	}
	var segments []string
	if m.stats.TimeLeft != nil {
		segments = append(segments, fmt.Sprintf("%ds", *m.stats.TimeLeft))
	}
	if m.prefs.ShowLiveWPM && m.engine.State() != engine.StateIdle {
		segments = append(segments, fmt.Sprintf("%d wpm", m.stats.WPM))
	}
	if m.stats.Paused {
		segments = append(segments, "paused")
	}
	return m.styles.accent.Render(strings.Join(segments, "  "))
}

func (m *Model) renderFooter() string {
	if m.focused() {
		return ""
	}
	if m.help.ShowAll {
		return m.help.View(m.keys)
	}
	segments := []string{}
	if m.screen == screenTyping {
		slots := len(m.engine.Slots())
		progress := 0
		if slots > 0 {
			progress = m.engine.Cursor() * 100 / slots
		}
		segments = append(segments, fmt.Sprintf("Progress %d%%", progress))
	}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %d WPM · %d%%", m.lastWPM, m.lastAcc))
	}
	if m.allDuration > 0 {
		allWPM := statsPkg.WPM(m.allCorrect, time.Duration(m.allDuration)*time.Millisecond)
		allAcc := statsPkg.Accuracy(m.allCorrect, m.allErrors)
		segments = append(segments, fmt.Sprintf("All-time %d WPM · %d%%", allWPM, allAcc))
	}
	if m.status != "" {
		segments = append(segments, m.status)
	}
	segments = append(segments, m.help.View(m.keys))
	return m.styles.footer.Render(strings.Join(segments, "  "))
}

func nextCaps(c model.Capitalization) model.Capitalization {
	order := []model.Capitalization{model.CapsLowercase, model.CapsNormal, model.CapsRandom}
	for i, v := range order {
		if v == c {
			return order[(i+1)%len(order)]
		}
	}
	return order[0]
}

func nextCategory(c model.Category) model.Category {
	for i, v := range model.Categories {
		if v == c {
			return model.Categories[(i+1)%len(model.Categories)]
		}
	}
	return model.Categories[0]
}
