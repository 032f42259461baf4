// Package native presses hotbar keys at the OS level through robotgo.
//
// The focused window receives the key, which is how the desktop game client
// expects hotbar input. This package needs cgo and is kept apart from the
// rest of internal/input so packages that only need the key mapping do not
// link it.
package native

import (
	"fmt"

	"github.com/go-vgo/robotgo"

	"macrofox/internal/input"
	"macrofox/internal/logging"
)

// Keyboard taps the digit key bound to a slot.
type Keyboard struct {
	logger logging.Logger
	tap    func(key string, args ...interface{}) error
}

// NewKeyboard creates an OS keyboard dispatcher
func NewKeyboard(logger logging.Logger) *Keyboard {
	return &Keyboard{
		logger: logging.OrNop(logger),
		tap:    robotgo.KeyTap,
	}
}

// Emit taps key slot+1
func (k *Keyboard) Emit(slot int) error {
	key, err := input.KeyForSlot(slot)
	if err != nil {
		return err
	}
	if err := k.tap(key); err != nil {
		return fmt.Errorf("key tap %s: %w", key, err)
	}
	k.logger.Debug("Key tapped: %s", key)
	return nil
}
