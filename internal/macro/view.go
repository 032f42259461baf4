// Package macro - view.go
//
// This file implements the read-only display side of the engine: per-slot
// snapshots and the fixed-period refresher that feeds them to a renderer
// (tray titles, terminal status line).
//
// The refresher never mutates engine state. It takes the engine lock only
// long enough to copy the seven slots.
package macro

import (
	"context"
	"time"

	"macrofox/internal/utils"
)

// SlotView is a display copy of one slot.
type SlotView struct {
	Index         int
	Item          ItemID // "" when empty
	Disabled      bool
	CooldownUntil time.Time
	Remaining     time.Duration // zero when ready
}

// Empty reports whether the slot holds no item
func (v SlotView) Empty() bool { return v.Item == "" }

// OnCooldown reports whether the slot is waiting for its cooldown
func (v SlotView) OnCooldown() bool { return v.Remaining > 0 }

// RemainingSeconds returns the remaining cooldown in whole seconds, rounded up.
func (v SlotView) RemainingSeconds() int {
	if v.Remaining <= 0 {
		return 0
	}
	return int((v.Remaining + time.Second - 1) / time.Second)
}

// Clock returns the remaining cooldown as mm:ss, or the ready marker.
func (v SlotView) Clock() string {
	return utils.FormatClock(v.Remaining)
}

// View is a display copy of the whole engine.
type View struct {
	State State
	Slots [SlotCount]SlotView
}

// Snapshot copies the current slot state with remaining cooldowns computed
// against the engine clock.
func (e *Engine) Snapshot() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	v := View{State: e.state}
	for i, s := range e.reg.slots {
		remaining := s.cooldownUntil.Sub(now)
		if s.cooldownUntil.IsZero() || remaining < 0 {
			remaining = 0
		}
		v.Slots[i] = SlotView{
			Index:         i,
			Item:          s.item,
			Disabled:      s.disabled,
			CooldownUntil: s.cooldownUntil,
			Remaining:     remaining,
		}
	}
	return v
}

// Refresh calls render with a fresh Snapshot every interval until ctx is
// cancelled. A non-positive interval uses the engine's Refresh timing.
func Refresh(ctx context.Context, e *Engine, interval time.Duration, render func(View)) {
	if interval <= 0 {
		interval = e.timing.Refresh
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	render(e.Snapshot())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			render(e.Snapshot())
		}
	}
}
