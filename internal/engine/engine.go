// Package engine implements the typing evaluation state machine.
package engine

import (
	"math"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/verte-zerg/typer/internal/model"
	"github.com/verte-zerg/typer/internal/stats"
)

// KeyBackspace is the key name that deletes the previous character.
const KeyBackspace = "Backspace"

// DefaultLatencyCutoff bounds inter-key intervals folded into per-key latency.
// Longer gaps (thinking, pauses) are not typing speed.
const DefaultLatencyCutoff = 2000 * time.Millisecond

// DefaultTickInterval is the cadence of the countdown for timed tests.
const DefaultTickInterval = 100 * time.Millisecond

// State is the lifecycle state of a loaded test.
type State int

// Engine states.
const (
	StateIdle State = iota
	StateActive
	StatePaused
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StatePaused:
		return "paused"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// SlotStatus is the match status of one target character.
type SlotStatus int

// Slot statuses.
const (
	SlotPending SlotStatus = iota
	SlotCorrect
	SlotIncorrect
)

// Slot is one target character and its current status.
type Slot struct {
	Char   rune
	Status SlotStatus
}

// StatsFunc receives every stats snapshot.
type StatsFunc func(model.Stats)

// KeyFunc receives the classification of every accepted character keystroke.
type KeyFunc func(r rune, result model.KeyResult)

type keyListener struct {
	id int
	fn KeyFunc
}

type event struct {
	stats  *model.Stats
	char   rune
	result model.KeyResult
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger sets the logger used for swallowed subscriber failures.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTickInterval overrides DefaultTickInterval.
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.tickInterval = d
		}
	}
}

// WithLatencyCutoff overrides DefaultLatencyCutoff.
func WithLatencyCutoff(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.latencyCutoff = d
		}
	}
}

// WithManualTick disables the background countdown; the host calls Tick instead.
func WithManualTick() Option {
	return func(e *Engine) {
		e.manualTick = true
	}
}

// Engine tracks typing progress against a loaded text.
//
// All methods are safe for concurrent use. Keystrokes and countdown ticks are
// serialized, and subscribers are called outside the state lock in the order
// the state changes happened. A subscriber may call back into the Engine; a
// call racing with another goroutine's delivery may return before its own
// events have been delivered.
type Engine struct {
	mu sync.Mutex

	now           func() time.Time
	logger        *zap.Logger
	tickInterval  time.Duration
	latencyCutoff time.Duration
	manualTick    bool

	slots       []Slot
	cursor      int
	correct     int
	errors      int
	wordsTyped  int
	state       State
	startedAt   time.Time
	endedAt     time.Time
	pausedAt    time.Time
	pausedTotal time.Duration
	lastKeyAt   time.Time
	remaining   *int
	keyStats    map[rune]*model.KeyStat

	timeLimit     int
	wordLimit     int
	stopOnError   bool
	forgiveErrors bool

	onStats      StatsFunc
	keyListeners []keyListener
	nextKeyID    int
	pending      []event
	outbox       []delivery
	dispatching  bool

	tickStop chan struct{}
	tickGen  uint64
	tickWG   sync.WaitGroup
}

// New constructs an idle Engine with no text loaded.
func New(opts ...Option) *Engine {
	e := &Engine{
		now:           time.Now,
		logger:        zap.NewNop(),
		tickInterval:  DefaultTickInterval,
		latencyCutoff: DefaultLatencyCutoff,
		keyStats:      map[rune]*model.KeyStat{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.Named("engine")
	return e
}

// Subscribe sets the stats subscriber, replacing any previous one.
func (e *Engine) Subscribe(fn StatsFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onStats = fn
}

// AddKeyListener registers a keystroke listener and returns its removal func.
func (e *Engine) AddKeyListener(fn KeyFunc) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextKeyID++
	id := e.nextKeyID
	e.keyListeners = append(e.keyListeners, keyListener{id: id, fn: fn})
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, l := range e.keyListeners {
			if l.id == id {
				e.keyListeners = append(e.keyListeners[:i:i], e.keyListeners[i+1:]...)
				return
			}
		}
	}
}

// SetTimeLimit sets the countdown in seconds; 0 disables it.
func (e *Engine) SetTimeLimit(seconds int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.timeLimit = max(0, seconds)
}

// SetWordLimit finishes the test after n typed word separators; 0 disables it.
func (e *Engine) SetWordLimit(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.wordLimit = max(0, n)
}

// SetStopOnError blocks the cursor on a mismatch until the right key is typed.
func (e *Engine) SetStopOnError(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopOnError = enabled
}

// SetForgiveErrors advances past mismatches while still counting them as errors.
// It takes precedence over stop-on-error.
func (e *Engine) SetForgiveErrors(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.forgiveErrors = enabled
}

// LoadTest resets the engine and loads text as one slot per character.
func (e *Engine) LoadTest(text string) {
	e.mu.Lock()
	defer e.unlockAndDispatch()

	e.resetLocked()
	e.slots = make([]Slot, 0, utf8.RuneCountInString(text))
	for _, r := range text {
		e.slots = append(e.slots, Slot{Char: r, Status: SlotPending})
	}
	e.emitStatsLocked(e.now())
}

// Reset discards the loaded text and all progress. Configuration and
// subscribers are kept.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
}

// Close stops the countdown goroutine and waits for it to exit.
func (e *Engine) Close() {
	e.mu.Lock()
	e.stopTickerLocked()
	e.mu.Unlock()
	e.tickWG.Wait()
}

// HandleInput processes KeyBackspace or a single character. Anything else is ignored.
func (e *Engine) HandleInput(key string) {
	e.mu.Lock()
	defer e.unlockAndDispatch()

	backspace := key == KeyBackspace
	r, single := singleRune(key)
	if !backspace && !single {
		return
	}
	if e.state == StateFinished {
		return
	}

	now := e.now()
	if e.state == StatePaused {
		e.resumeLocked(now)
	}
	if e.state == StateIdle {
		e.startLocked(now)
	}
	if len(e.slots) == 0 || e.timeExpiredLocked(now) {
		e.finishLocked(now)
		return
	}
	if backspace {
		e.backspaceLocked(now)
		return
	}
	e.typeLocked(r, now)
}

// Pause freezes the clock of an active test.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.unlockAndDispatch()
	if e.state != StateActive {
		return
	}
	now := e.now()
	e.state = StatePaused
	e.pausedAt = now
	e.emitStatsLocked(now)
}

// Resume restarts the clock of a paused test. HandleInput resumes implicitly.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.unlockAndDispatch()
	if e.state != StatePaused {
		return
	}
	now := e.now()
	e.resumeLocked(now)
	e.emitStatsLocked(now)
}

// ForceFinish ends an active or paused test immediately.
func (e *Engine) ForceFinish() {
	e.mu.Lock()
	defer e.unlockAndDispatch()
	if e.state != StateActive && e.state != StatePaused {
		return
	}
	e.finishLocked(e.now())
}

// Tick recomputes the countdown. It is called by the background ticker, or by
// the host when the engine was built WithManualTick.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.unlockAndDispatch()
	e.tickLocked(e.now())
}

// Snapshot returns the current stats without notifying subscribers.
func (e *Engine) Snapshot() model.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateFinished {
		return e.finalSnapshotLocked()
	}
	if e.state == StatePaused {
		return e.pausedSnapshotLocked()
	}
	return e.snapshotLocked(e.now())
}

// Slots returns a copy of the slot sequence.
func (e *Engine) Slots() []Slot {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Slot, len(e.slots))
	copy(out, e.slots)
	return out
}

// Cursor returns the index of the next slot awaiting input.
func (e *Engine) Cursor() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor
}

// State returns the lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Paused reports whether the test is paused.
func (e *Engine) Paused() bool {
	return e.State() == StatePaused
}

// WordsTyped returns the number of completed word separators.
func (e *Engine) WordsTyped() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.wordsTyped
}

func (e *Engine) resetLocked() {
	e.stopTickerLocked()
	e.slots = nil
	e.cursor = 0
	e.correct = 0
	e.errors = 0
	e.wordsTyped = 0
	e.state = StateIdle
	e.startedAt = time.Time{}
	e.endedAt = time.Time{}
	e.pausedAt = time.Time{}
	e.pausedTotal = 0
	e.lastKeyAt = time.Time{}
	e.remaining = nil
	e.keyStats = map[rune]*model.KeyStat{}
	e.pending = nil
}

func (e *Engine) startLocked(now time.Time) {
	e.state = StateActive
	e.startedAt = now
	e.pausedAt = time.Time{}
	e.pausedTotal = 0
	if e.timeLimit > 0 {
		remaining := e.timeLimit
		e.remaining = &remaining
		e.startTickerLocked()
	}
}

func (e *Engine) resumeLocked(now time.Time) {
	if d := now.Sub(e.pausedAt); d > 0 {
		e.pausedTotal += d
	}
	e.pausedAt = time.Time{}
	e.state = StateActive
}

func (e *Engine) finishLocked(now time.Time) {
	if e.state == StatePaused {
		e.resumeLocked(now)
	}
	e.state = StateFinished
	e.endedAt = now
	e.stopTickerLocked()
	if e.timeLimit > 0 {
		zero := 0
		e.remaining = &zero
	}
	final := e.finalSnapshotLocked()
	e.pending = append(e.pending, event{stats: &final})
}

func (e *Engine) backspaceLocked(now time.Time) {
	if e.cursor == 0 {
		return
	}
	e.cursor--
	slot := &e.slots[e.cursor]
	if slot.Char == ' ' && slot.Status != SlotPending {
		e.wordsTyped = max(0, e.wordsTyped-1)
	}
	switch slot.Status {
	case SlotCorrect:
		e.correct = max(0, e.correct-1)
	case SlotIncorrect:
		e.errors = max(0, e.errors-1)
	}
	slot.Status = SlotPending
	e.emitStatsLocked(now)
}

func (e *Engine) typeLocked(r rune, now time.Time) {
	if e.cursor >= len(e.slots) {
		return
	}
	slot := &e.slots[e.cursor]
	expected := slot.Char
	ks := e.keyStatLocked(expected)
	ks.Total++
	if !e.lastKeyAt.IsZero() {
		if d := now.Sub(e.lastKeyAt); d < e.latencyCutoff {
			ks.LatencySumMs += d.Milliseconds()
			ks.LatencyCount++
		}
	}
	e.lastKeyAt = now

	result := model.KeyIncorrect
	switch {
	case r == expected:
		slot.Status = SlotCorrect
		e.correct++
		result = model.KeyCorrect
		e.advanceLocked(expected)
	case e.forgiveErrors:
		// Progress is forgiven, the mistake is still recorded.
		slot.Status = SlotCorrect
		e.correct++
		e.errors++
		ks.Errors++
		e.advanceLocked(expected)
	case e.stopOnError:
		if slot.Status != SlotIncorrect {
			slot.Status = SlotIncorrect
			e.errors++
			ks.Errors++
		}
	default:
		slot.Status = SlotIncorrect
		e.errors++
		ks.Errors++
		e.cursor++
	}
	e.pending = append(e.pending, event{char: r, result: result})

	complete := e.cursor == len(e.slots)
	wordLimitReached := e.wordLimit > 0 && e.wordsTyped >= e.wordLimit
	if complete || wordLimitReached {
		e.finishLocked(now)
		return
	}
	e.emitStatsLocked(now)
}

func (e *Engine) advanceLocked(expected rune) {
	if expected == ' ' {
		e.wordsTyped++
	}
	e.cursor++
}

func (e *Engine) tickLocked(now time.Time) {
	if e.state != StateActive || e.timeLimit <= 0 {
		return
	}
	remaining := int(math.Ceil(float64(e.timeLimit) - e.elapsedLocked(now).Seconds()))
	remaining = max(0, remaining)
	e.remaining = &remaining
	if remaining == 0 {
		e.finishLocked(now)
		return
	}
	e.emitStatsLocked(now)
}

func (e *Engine) timeExpiredLocked(now time.Time) bool {
	if e.timeLimit <= 0 {
		return false
	}
	return e.elapsedLocked(now) >= time.Duration(e.timeLimit)*time.Second
}

// elapsedLocked is wall time since start minus paused time, frozen while paused
// and after finish.
func (e *Engine) elapsedLocked(now time.Time) time.Duration {
	if e.startedAt.IsZero() {
		return 0
	}
	end := now
	switch e.state {
	case StateFinished:
		end = e.endedAt
	case StatePaused:
		end = e.pausedAt
	}
	return max(0, end.Sub(e.startedAt)-e.pausedTotal)
}

func (e *Engine) keyStatLocked(r rune) *model.KeyStat {
	ks, ok := e.keyStats[r]
	if !ok {
		ks = &model.KeyStat{}
		e.keyStats[r] = ks
	}
	return ks
}

func (e *Engine) emitStatsLocked(now time.Time) {
	var snap model.Stats
	if e.state == StatePaused {
		snap = e.pausedSnapshotLocked()
	} else {
		snap = e.snapshotLocked(now)
	}
	e.pending = append(e.pending, event{stats: &snap})
}

func (e *Engine) snapshotLocked(now time.Time) model.Stats {
	elapsed := e.elapsedLocked(now)
	return model.Stats{
		WPM:      stats.WPM(e.correct, elapsed),
		Accuracy: stats.Accuracy(e.correct, e.errors),
		Correct:  e.correct,
		Errors:   e.errors,
		TimeLeft: e.timeLeftLocked(),
		Elapsed:  elapsed,
		KeyStats: e.copyKeyStatsLocked(),
		Paused:   e.state == StatePaused,
		Finished: e.state == StateFinished,
	}
}

func (e *Engine) pausedSnapshotLocked() model.Stats {
	snap := e.snapshotLocked(e.pausedAt)
	snap.WPM = 0
	snap.Paused = true
	return snap
}

func (e *Engine) finalSnapshotLocked() model.Stats {
	snap := e.snapshotLocked(e.endedAt)
	snap.Finished = true
	zero := 0
	snap.TimeLeft = &zero
	return snap
}

func (e *Engine) timeLeftLocked() *int {
	if e.remaining != nil {
		v := *e.remaining
		return &v
	}
	if e.timeLimit > 0 {
		v := e.timeLimit
		return &v
	}
	return nil
}

func (e *Engine) copyKeyStatsLocked() map[rune]model.KeyStat {
	out := make(map[rune]model.KeyStat, len(e.keyStats))
	for r, ks := range e.keyStats {
		out[r] = *ks
	}
	return out
}

func singleRune(key string) (rune, bool) {
	if key == "" || utf8.RuneCountInString(key) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(key)
	if r == utf8.RuneError {
		return 0, false
	}
	return r, true
}
