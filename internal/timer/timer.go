// Package timer implements the per-rep countdown engine.
package timer

import (
	"context"
	"sync"
	"time"
)

// State enumerates countdown states.
type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Listener is called after each state change.
type Listener func(prev, next State)

// Snapshot is a point-in-time view of an engine.
type Snapshot struct {
	State     State
	Total     int
	Remaining int
}

// IsRunning reports whether the countdown is ticking.
func (s Snapshot) IsRunning() bool { return s.State == StateRunning }

// Engine is a one-second countdown with a single-delivery completion callback.
// Ticks are delivered externally (Drive, or a UI tick message); an engine
// that is not running ignores them.
type Engine struct {
	mu         sync.Mutex
	state      State
	total      int
	remaining  int
	onComplete func()
	armed      bool
	generation uint64
	listeners  []Listener
}

// New returns an idle engine.
func New() *Engine { return &Engine{} }

// AddListener registers a state change listener.
func (e *Engine) AddListener(l Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, l)
}

// Start arms a countdown of total seconds from any state and starts it.
// onComplete fires at most once for this arming. A non-positive total
// expires immediately.
func (e *Engine) Start(total int, onComplete func()) {
	e.mu.Lock()
	prev := e.state
	e.generation++
	e.onComplete = onComplete
	e.armed = true
	if total <= 0 {
		e.total, e.remaining = 0, 0
		cb := e.expireLocked()
		e.mu.Unlock()
		e.notify(prev, StateExpired)
		if cb != nil {
			cb()
		}
		return
	}
	e.total, e.remaining = total, total
	e.state = StateRunning
	e.mu.Unlock()
	e.notify(prev, StateRunning)
}

// Pause stops a running countdown, keeping the remaining seconds.
func (e *Engine) Pause() {
	e.mu.Lock()
	if e.state != StateRunning {
		e.mu.Unlock()
		return
	}
	e.state = StatePaused
	e.mu.Unlock()
	e.notify(StateRunning, StatePaused)
}

// Resume continues a paused countdown that still has time left.
func (e *Engine) Resume() {
	e.mu.Lock()
	if e.state != StatePaused || e.remaining <= 0 {
		e.mu.Unlock()
		return
	}
	e.state = StateRunning
	e.mu.Unlock()
	e.notify(StatePaused, StateRunning)
}

// Restart re-arms the last total and runs again, keeping the callback.
func (e *Engine) Restart() {
	e.mu.Lock()
	if e.total <= 0 {
		e.mu.Unlock()
		return
	}
	prev := e.state
	e.generation++
	e.remaining = e.total
	e.armed = true
	e.state = StateRunning
	e.mu.Unlock()
	e.notify(prev, StateRunning)
}

// Reset returns to idle and drops the callback.
func (e *Engine) Reset() {
	e.mu.Lock()
	prev := e.state
	e.generation++
	e.state = StateIdle
	e.total, e.remaining = 0, 0
	e.onComplete = nil
	e.armed = false
	e.mu.Unlock()
	e.notify(prev, StateIdle)
}

// Tick advances a running countdown by one second. Reaching zero expires
// the engine and fires the completion callback.
func (e *Engine) Tick() {
	e.mu.Lock()
	if e.state != StateRunning {
		e.mu.Unlock()
		return
	}
	if e.remaining > 0 {
		e.remaining--
	}
	if e.remaining > 0 {
		e.mu.Unlock()
		return
	}
	cb := e.expireLocked()
	e.mu.Unlock()
	e.notify(StateRunning, StateExpired)
	if cb != nil {
		cb()
	}
}

func (e *Engine) expireLocked() func() {
	e.state = StateExpired
	if !e.armed {
		return nil
	}
	e.armed = false
	return e.onComplete
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{State: e.state, Total: e.total, Remaining: e.remaining}
}

// Generation changes on every Start, Restart and Reset. Tick sources use it
// to drop ticks scheduled for an earlier arming.
func (e *Engine) Generation() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation
}

func (e *Engine) notify(prev, next State) {
	if prev == next {
		return
	}
	e.mu.Lock()
	listeners := append([]Listener(nil), e.listeners...)
	e.mu.Unlock()
	for _, l := range listeners {
		l(prev, next)
	}
}

// Drive ticks the engine every interval until ctx is done.
func Drive(ctx context.Context, e *Engine, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Tick()
		}
	}
}
