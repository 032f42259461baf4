// Package macro implements the MacroFox hotbar engine.
//
// Architecture Overview:
// Engine is the single owner of the seven hotbar slots, the item -> slot
// index and the scheduler state. Two kinds of callers touch it:
//
//   1. UI goroutines (tray menu handlers, CLI): issue slot operations
//      (Assign, Clear, Swap, ToggleDisabled, LoadPreset) directly or as
//      Command values through Apply, and control the scheduler
//      (Start, Pause, Resume, Stop, Toggle).
//
//   2. The scheduler goroutine: started by Start, scans the slots once per
//      tick and fires every ready slot through the injected Dispatcher.
//
// Both go through Engine.mu, so a tick never observes a half-applied slot
// mutation and a slot operation never interleaves with a scan-and-fire pass.
//
// State Machine:
//   Stopped -> Running (Start)
//   Running -> Paused  (Pause)
//   Paused  -> Running (Resume)
//   any     -> Stopped (Stop, also zeroes every cooldown)
package macro

import (
	"context"
	"fmt"
	"sync"
	"time"

	"macrofox/internal/logging"
	"macrofox/internal/utils"
)

// State is the scheduler state.
type State int

const (
	StateStopped State = iota
	StateRunning
	StatePaused
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateRunning:
		return "Running"
	case StatePaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// Dispatcher emits the key bound to a slot. Slot i maps to key i+1.
// A returned error is logged and otherwise ignored by the scheduler.
type Dispatcher interface {
	Emit(slot int) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(slot int) error

// Emit calls f(slot)
func (f DispatcherFunc) Emit(slot int) error { return f(slot) }

// Observer receives scheduler events, typically for metrics.
// Callbacks run while the engine lock is held and must not call back into
// the Engine.
type Observer interface {
	SlotFired(slot int, item ItemID)
	DispatchFailed(slot int, err error)
	TickCompleted(fired bool, elapsed time.Duration)
	StateChanged(state State)
}

type nopObserver struct{}

func (nopObserver) SlotFired(int, ItemID)             {}
func (nopObserver) DispatchFailed(int, error)         {}
func (nopObserver) TickCompleted(bool, time.Duration) {}
func (nopObserver) StateChanged(State)                {}

// Timing holds the scheduler's tuning constants. Only the policy is fixed:
// Fast after a tick that fired something, Slow after an idle or paused tick.
type Timing struct {
	Grace   time.Duration // Delay between Start and the first scan
	Fast    time.Duration // Sleep after a tick that fired at least one slot
	Slow    time.Duration // Sleep after an idle tick, and between paused ticks
	Refresh time.Duration // Display refresh period
}

// DefaultTiming returns the timing observed in the original tool.
func DefaultTiming() Timing {
	return Timing{
		Grace:   1 * time.Second,
		Fast:    100 * time.Millisecond,
		Slow:    500 * time.Millisecond,
		Refresh: 100 * time.Millisecond,
	}
}

// withDefaults fills non-positive fields from DefaultTiming. Grace may be zero.
func (t Timing) withDefaults() Timing {
	d := DefaultTiming()
	if t.Grace < 0 {
		t.Grace = d.Grace
	}
	if t.Fast <= 0 {
		t.Fast = d.Fast
	}
	if t.Slow <= 0 {
		t.Slow = d.Slow
	}
	if t.Refresh <= 0 {
		t.Refresh = d.Refresh
	}
	return t
}

// Option customizes an Engine.
type Option func(*Engine)

// WithTiming overrides the scheduler timing.
func WithTiming(t Timing) Option {
	return func(e *Engine) {
		e.timing = t.withDefaults()
	}
}

// WithClock replaces time.Now for cooldown arithmetic.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger logging.Logger) Option {
	return func(e *Engine) {
		e.logger = logging.OrNop(logger)
	}
}

// WithObserver registers an event observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// Engine owns the hotbar state and the cooldown scheduler.
type Engine struct {
	mu       sync.Mutex
	reg      *registry
	state    State
	cancel   context.CancelFunc
	done     chan struct{}
	wake     chan struct{}
	stats    *Statistics
	dispatch Dispatcher
	timing   Timing
	now      func() time.Time
	logger   logging.Logger
	observer Observer
}

// NewEngine creates a stopped engine with seven empty slots.
//
// Parameters:
//   - dispatcher: key emission capability, required
//   - opts: timing, clock, logger and observer overrides
func NewEngine(dispatcher Dispatcher, opts ...Option) (*Engine, error) {
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher required")
	}
	e := &Engine{
		reg:      newRegistry(),
		state:    StateStopped,
		wake:     make(chan struct{}, 1),
		dispatch: dispatcher,
		timing:   DefaultTiming(),
		now:      time.Now,
		logger:   logging.Default(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.stats = NewStatisticsWithClock(e.now)
	return e, nil
}

// Timing returns the engine's effective timing.
func (e *Engine) Timing() Timing {
	return e.timing
}

// Stats returns the activation statistics.
func (e *Engine) Stats() *Statistics {
	return e.stats
}

// State returns the current scheduler state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Done returns a channel closed when the most recently started scheduler
// loop exits. It is nil before the first Start.
func (e *Engine) Done() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.done
}

// Assign places item in slot, moving it from any other slot. Unknown items,
// out-of-range slots and same-slot drops are ignored.
func (e *Engine) Assign(item ItemID, slot int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	ok := e.reg.assign(item, slot)
	if ok {
		e.logger.Debug("Assigned %s to slot %d", item, slot+1)
	}
	return ok
}

// Clear empties slot. Idempotent.
func (e *Engine) Clear(slot int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	ok := e.reg.clear(slot)
	if ok {
		e.logger.Debug("Cleared slot %d", slot+1)
	}
	return ok
}

// Swap exchanges the full state of slots a and b.
func (e *Engine) Swap(a, b int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	ok := e.reg.swap(a, b)
	if ok {
		e.logger.Debug("Swapped slots %d and %d", a+1, b+1)
	}
	return ok
}

// ToggleDisabled flips slot's disabled flag. While the scheduler is running
// or paused, a slot still on cooldown cannot be toggled and false is returned.
func (e *Engine) ToggleDisabled(slot int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	ok := e.reg.toggleDisabled(slot, e.state != StateStopped, e.now())
	if ok {
		e.logger.Debug("Slot %d disabled=%v", slot+1, e.reg.slots[slot].disabled)
	}
	return ok
}

// LoadPreset replaces the hotbar with items, one per slot position.
// "empty" and unknown ids leave the position empty. Returns the number of
// occupied slots afterwards.
func (e *Engine) LoadPreset(items []string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := e.reg.loadPreset(items)
	e.logger.Info("Preset loaded: %d slots occupied", n)
	return n
}

// Items returns the hotbar as preset entries, "empty" for empty slots.
func (e *Engine) Items() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, SlotCount)
	for i, s := range e.reg.slots {
		if s.empty() {
			out[i] = EmptySlot
		} else {
			out[i] = string(s.item)
		}
	}
	return out
}

// Start transitions Stopped -> Running and launches the scheduler loop.
// It returns false if the engine was already running or paused.
func (e *Engine) Start() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateStopped {
		return false
	}
	e.startLocked()
	return true
}

// startLocked launches a new scheduler loop. Caller holds e.mu and has
// checked the engine is stopped.
func (e *Engine) startLocked() {
	// a wake left by Stop with no loop listening must not cut the first sleep
	select {
	case <-e.wake:
	default:
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	e.cancel = cancel
	e.done = done
	e.state = StateRunning
	e.stats.Reset(e.now())
	e.observer.StateChanged(StateRunning)

	e.logger.Info("Scheduler started (grace %v)", e.timing.Grace)
	utils.SafeGo("scheduler", func() { e.run(ctx, done) })
}

// Pause transitions Running -> Paused. Cooldowns keep counting down.
func (e *Engine) Pause() bool {
	return e.transition(StateRunning, StatePaused)
}

// Resume transitions Paused -> Running.
func (e *Engine) Resume() bool {
	return e.transition(StatePaused, StateRunning)
}

func (e *Engine) transition(from, to State) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != from {
		return false
	}
	e.setStateLocked(to)
	return true
}

// setStateLocked switches between Running and Paused and wakes the loop.
func (e *Engine) setStateLocked(to State) {
	e.state = to
	e.observer.StateChanged(to)
	e.notify()
	e.logger.Info("Scheduler %s", to)
}

// Toggle drives the combined run/pause control: Stopped starts, Running
// pauses, Paused resumes. Returns the resulting state.
func (e *Engine) Toggle() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.state {
	case StateStopped:
		e.startLocked()
	case StateRunning:
		e.setStateLocked(StatePaused)
	case StatePaused:
		e.setStateLocked(StateRunning)
	}
	return e.state
}

// Stop transitions any state to Stopped and zeroes every slot cooldown.
// The scheduler loop exits at its next tick or sleep boundary and never
// writes to the slots after Stop returns.
func (e *Engine) Stop() {
	e.mu.Lock()
	wasActive := e.state != StateStopped
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.state = StateStopped
	e.reg.resetCooldowns()
	if wasActive {
		e.observer.StateChanged(StateStopped)
	}
	e.mu.Unlock()

	e.notify()
	if wasActive {
		e.logger.Info("Scheduler stopped, cooldowns reset")
	}
}

// notify wakes the scheduler from its adaptive sleep without blocking.
func (e *Engine) notify() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// checkInvariants exposes the registry consistency check under the lock.
func (e *Engine) checkInvariants() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reg.checkInvariants()
}
