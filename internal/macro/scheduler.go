// Package macro - scheduler.go
//
// This file implements the cooldown scheduler loop.
//
// Loop Structure:
//   1. Wait the startup grace (interruptible by Stop only)
//   2. tick(): under Engine.mu, scan slots 0..6 and fire every ready slot
//   3. Sleep Fast if anything fired, Slow otherwise
//   4. Repeat until the run context is cancelled by Stop
//
// Timing Policy:
// The adaptive sleep keeps consecutive ready slots responsive right after an
// activation and backs off while nothing is due. Paused ticks fire nothing
// and therefore always sleep Slow. Pause, Resume and Stop wake the sleep
// early through Engine.wake.
//
// Failure Semantics:
// A dispatcher error (or panic) for one slot is logged and counted; the
// slot's cooldown is still reset so a broken dispatcher cannot cause a tight
// retry loop.
package macro

import (
	"context"
	"fmt"
	"time"
)

// run is the scheduler goroutine body for one Start..Stop cycle.
func (e *Engine) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer e.logger.Debug("Scheduler loop exited")

	if !e.waitGrace(ctx) {
		return
	}

	for {
		fired, ok := e.tick(ctx)
		if !ok {
			return
		}

		interval := e.timing.Slow
		if fired {
			interval = e.timing.Fast
		}
		if !e.sleep(ctx, interval) {
			return
		}
	}
}

// tick performs one scan-and-fire pass.
//
// Returns:
//   - fired: at least one slot was activated
//   - ok: false once the run context is cancelled, the loop must exit
func (e *Engine) tick(ctx context.Context) (fired bool, ok bool) {
	started := time.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	if ctx.Err() != nil {
		return false, false
	}
	if e.state != StateRunning {
		e.observer.TickCompleted(false, time.Since(started))
		return false, true
	}

	now := e.now()
	for i := range e.reg.slots {
		s := &e.reg.slots[i]
		if s.empty() || s.disabled {
			continue
		}
		if now.Before(s.cooldownUntil) {
			continue
		}

		if err := e.emit(i); err != nil {
			e.logger.Warn("Dispatcher failed for slot %d (%s): %v", i+1, s.item, err)
			e.observer.DispatchFailed(i, err)
		} else {
			e.logger.Debug("Fired slot %d (%s)", i+1, s.item)
		}

		var cooldown time.Duration
		if it, known := LookupItem(s.item); known {
			cooldown = it.Cooldown
		}
		s.cooldownUntil = now.Add(cooldown)
		e.stats.Record(i, now)
		e.observer.SlotFired(i, s.item)
		fired = true
	}

	e.observer.TickCompleted(fired, time.Since(started))
	return fired, true
}

// emit calls the dispatcher, converting a panic into an error.
func (e *Engine) emit(slot int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dispatcher panic: %v", r)
		}
	}()
	return e.dispatch.Emit(slot)
}

// waitGrace blocks for the startup grace. Returns false if stopped meanwhile.
func (e *Engine) waitGrace(ctx context.Context) bool {
	if e.timing.Grace <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(e.timing.Grace)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// sleep waits for d, returning early on a wake signal. Returns false if the
// run context was cancelled.
func (e *Engine) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-e.wake:
		return ctx.Err() == nil
	case <-timer.C:
		return true
	}
}
