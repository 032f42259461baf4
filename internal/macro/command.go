// Package macro - command.go
//
// This file defines slot commands: the values UI layers produce instead of
// mutating the hotbar directly. A tray click, a CLI argument or a preset
// apply becomes one Command that Engine.Apply routes to the matching
// operation under the engine lock.
package macro

// CommandType enumerates the supported hotbar commands.
type CommandType string

const (
	CommandAssign     CommandType = "Assign"
	CommandClear      CommandType = "Clear"
	CommandSwap       CommandType = "Swap"
	CommandToggle     CommandType = "ToggleDisabled"
	CommandLoadPreset CommandType = "LoadPreset"
)

// Command represents one hotbar mutation requested by a UI.
type Command struct {
	Type   CommandType
	Item   ItemID   // Assign
	Slot   int      // Assign target, Clear, ToggleDisabled, Swap source
	Target int      // Swap target
	Items  []string // LoadPreset
}

// AssignCommand models dragging item onto slot.
func AssignCommand(item ItemID, slot int) Command {
	return Command{Type: CommandAssign, Item: item, Slot: slot}
}

// ClearCommand models long-pressing a slot or dragging its item out.
func ClearCommand(slot int) Command {
	return Command{Type: CommandClear, Slot: slot}
}

// SwapCommand models dragging slot a onto slot b.
func SwapCommand(a, b int) Command {
	return Command{Type: CommandSwap, Slot: a, Target: b}
}

// ToggleCommand models clicking a slot to enable or disable it.
func ToggleCommand(slot int) Command {
	return Command{Type: CommandToggle, Slot: slot}
}

// LoadPresetCommand models applying a preset.
func LoadPresetCommand(items []string) Command {
	return Command{Type: CommandLoadPreset, Items: items}
}

// Apply executes cmd. It reports whether the hotbar changed; unknown command
// types are ignored.
func (e *Engine) Apply(cmd Command) bool {
	switch cmd.Type {
	case CommandAssign:
		return e.Assign(cmd.Item, cmd.Slot)
	case CommandClear:
		return e.Clear(cmd.Slot)
	case CommandSwap:
		return e.Swap(cmd.Slot, cmd.Target)
	case CommandToggle:
		return e.ToggleDisabled(cmd.Slot)
	case CommandLoadPreset:
		e.LoadPreset(cmd.Items)
		return true
	default:
		e.logger.Warn("Ignoring unknown command type %q", cmd.Type)
		return false
	}
}
