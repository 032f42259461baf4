// Package input implements the key emission capabilities the engine fires
// slots through.
//
// Slot i (0-based) is always bound to the digit key i+1. Implementations:
//   - Browser: chromedp key events into a browser-hosted game page
//   - DryRun: logs the key without touching any device (headless testing)
//   - native.Keyboard (subpackage): OS-level key taps through robotgo
//
// Every implementation satisfies macro.Dispatcher. Errors are returned to the
// scheduler, which logs them and keeps going.
package input

import (
	"errors"
	"fmt"
	"strconv"

	"macrofox/internal/logging"
)

// SlotCount mirrors the hotbar width; keys "1".."7" are the only bindings.
const SlotCount = 7

// ErrUnsupportedSlot is returned for a slot outside [0, SlotCount).
var ErrUnsupportedSlot = errors.New("unsupported slot")

// KeyForSlot returns the key name bound to slot.
func KeyForSlot(slot int) (string, error) {
	if slot < 0 || slot >= SlotCount {
		return "", fmt.Errorf("slot %d: %w", slot, ErrUnsupportedSlot)
	}
	return strconv.Itoa(slot + 1), nil
}

// DryRun logs every emission instead of pressing a key.
type DryRun struct {
	Logger logging.Logger
}

// Emit logs the key bound to slot
func (d DryRun) Emit(slot int) error {
	key, err := KeyForSlot(slot)
	if err != nil {
		return err
	}
	logging.OrNop(d.Logger).Info("Key %s (dry run)", key)
	return nil
}
