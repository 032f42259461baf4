// Package utils - utils.go
//
// This file provides small helpers shared by the engine, the tray and the CLI.
//
// Major Components:
//
// 1. Performance Timing:
//    - Timer struct for measuring operation duration (tick duration logging)
//
// 2. Formatting:
//    - FormatClock: remaining cooldown as "mm:ss", "–:–" when ready
//    - FormatDuration: uptime as "2m 30s"
//
// 3. Goroutines:
//    - SafeGo: launches goroutines with panic recovery
//
// SafeGo Usage:
// All long-running goroutines (scheduler loop, display refresher, preset
// watcher, metrics server) use SafeGo so a panic is logged and the goroutine
// terminates while the rest of the application keeps running.
package utils

import (
	"fmt"
	"runtime/debug"
	"time"

	"macrofox/internal/logging"
)

// ReadyClock is shown in place of a remaining time when a slot is ready.
const ReadyClock = "–:–"

// Timer provides performance timing functionality
type Timer struct {
	name      string
	startTime time.Time
}

// NewTimer creates and starts a new timer with given name
func NewTimer(name string) *Timer {
	return &Timer{
		name:      name,
		startTime: time.Now(),
	}
}

// Elapsed returns the elapsed time since timer creation
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.startTime)
}

// Log logs the elapsed time with the timer name
func (t *Timer) Log() {
	logging.Debug("Timer [%s]: %v", t.name, t.Elapsed())
}

// FormatClock formats a remaining duration as mm:ss, rounding down to whole
// seconds. Non-positive durations render as ReadyClock.
func FormatClock(d time.Duration) string {
	if d <= 0 {
		return ReadyClock
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// FormatDuration formats a duration into human-readable string
func FormatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}

// SafeGo runs fn in a goroutine with panic recovery. name identifies the
// goroutine in the log.
func SafeGo(name string, fn func()) {
	go func() {
		defer Recover(name)
		fn()
	}()
}

// Recover logs a panic with its stack instead of crashing the process.
// It must be deferred directly.
func Recover(name string) {
	if r := recover(); r != nil {
		logging.Error("Panic recovered in goroutine [%s]: %v\n%s", name, r, debug.Stack())
	}
}
