package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/typer/internal/model"
)

// statsMsg carries an engine snapshot.
type statsMsg struct {
	stats model.Stats
}

// keyResultMsg carries one classified keystroke.
type keyResultMsg struct {
	char   rune
	result model.KeyResult
}

// engineMsgs is a batch of engine events drained from the bridge.
type engineMsgs []tea.Msg

// textMsg delivers generated text for a new test. gen identifies the request.
type textMsg struct {
	text     string
	practice bool
	gen      int
}

// staleTextMsg reports a generation result that was superseded.
type staleTextMsg struct{}

// idleMsg fires after the inactivity window; gen identifies the keystroke it follows.
type idleMsg struct {
	gen int
}

// savedMsg reports the outcome of persisting a finished test.
type savedMsg struct {
	err error
}

// bridge moves engine callbacks, which may run on the engine's ticker
// goroutine, into the Bubble Tea event loop. Pushes never block.
type bridge struct {
	mu     sync.Mutex
	queue  []tea.Msg
	notify chan struct{}
	done   chan struct{}
	once   sync.Once
}

func newBridge() *bridge {
	return &bridge{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

func (b *bridge) push(msg tea.Msg) {
	b.mu.Lock()
	b.queue = append(b.queue, msg)
	b.mu.Unlock()
	select {
	case b.notify <- struct{}{}:
	default:
	}
}

// wait returns a command that blocks until events are queued and delivers
// all of them in push order.
func (b *bridge) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-b.done:
			return nil
		case <-b.notify:
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		msgs := b.queue
		b.queue = nil
		return engineMsgs(msgs)
	}
}

// drain returns queued events without waiting.
func (b *bridge) drain() engineMsgs {
	b.mu.Lock()
	defer b.mu.Unlock()
	msgs := b.queue
	b.queue = nil
	select {
	case <-b.notify:
	default:
	}
	return engineMsgs(msgs)
}

func (b *bridge) close() {
	b.once.Do(func() { close(b.done) })
}
