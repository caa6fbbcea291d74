package engine

import (
	"time"

	"go.uber.org/zap"
)

// delivery is one operation's events with the subscribers registered when
// they were produced.
type delivery struct {
	events    []event
	onStats   StatsFunc
	listeners []KeyFunc
}

// unlockAndDispatch queues the events produced while mu was held and releases
// mu. The first caller to find no delivery in progress drains the queue in
// FIFO order, dropping mu around every subscriber call. Nothing waits for the
// delivery while holding mu, so subscribers may call any Engine method.
// Events produced from inside a subscriber are delivered after the current
// ones.
func (e *Engine) unlockAndDispatch() {
	if len(e.pending) > 0 {
		listeners := make([]KeyFunc, len(e.keyListeners))
		for i, l := range e.keyListeners {
			listeners[i] = l.fn
		}
		e.outbox = append(e.outbox, delivery{events: e.pending, onStats: e.onStats, listeners: listeners})
		e.pending = nil
	}
	if e.dispatching {
		e.mu.Unlock()
		return
	}
	e.dispatching = true
	for len(e.outbox) > 0 {
		next := e.outbox[0]
		e.outbox = e.outbox[1:]
		e.mu.Unlock()
		e.deliver(next)
		e.mu.Lock()
	}
	e.outbox = nil
	e.dispatching = false
	e.mu.Unlock()
}

func (e *Engine) deliver(d delivery) {
	for _, ev := range d.events {
		if ev.stats != nil {
			if d.onStats != nil {
				snap := *ev.stats
				e.safeCall("stats", func() { d.onStats(snap) })
			}
			continue
		}
		for _, fn := range d.listeners {
			r, result := ev.char, ev.result
			e.safeCall("key", func() { fn(r, result) })
		}
	}
}

func (e *Engine) safeCall(channel string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Error("subscriber panicked",
				zap.String("channel", channel),
				zap.Any("panic", rec),
			)
		}
	}()
	fn()
}

func (e *Engine) startTickerLocked() {
	e.stopTickerLocked()
	if e.manualTick {
		return
	}
	stop := make(chan struct{})
	e.tickStop = stop
	gen := e.tickGen
	interval := e.tickInterval
	e.tickWG.Add(1)
	go e.runTicker(gen, stop, interval)
}

func (e *Engine) stopTickerLocked() {
	if e.tickStop != nil {
		close(e.tickStop)
		e.tickStop = nil
	}
	e.tickGen++
}

func (e *Engine) runTicker(gen uint64, stop <-chan struct{}, interval time.Duration) {
	defer e.tickWG.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			e.tickFrom(gen)
		}
	}
}

// tickFrom ignores ticks from a countdown that has since been stopped.
func (e *Engine) tickFrom(gen uint64) {
	e.mu.Lock()
	defer e.unlockAndDispatch()
	if gen != e.tickGen {
		return
	}
	e.tickLocked(e.now())
}
