// Package status renders engine snapshots as short text labels shared by the
// tray menu and the headless CLI status line.
package status

import (
	"fmt"
	"strings"

	"macrofox/internal/macro"
)

// RunLabel returns the caption of the combined run/pause control for state.
func RunLabel(state macro.State) string {
	switch state {
	case macro.StateRunning:
		return "Pause"
	case macro.StatePaused:
		return "Resume"
	default:
		return "Start"
	}
}

// ItemName returns the display name of an item id.
func ItemName(id macro.ItemID) string {
	if it, ok := macro.LookupItem(id); ok {
		return it.DisplayName()
	}
	return string(id)
}

// SlotLabel describes one slot, e.g. "3: Glue 09:58" or "5: (empty)".
func SlotLabel(v macro.SlotView) string {
	if v.Empty() {
		return fmt.Sprintf("%d: (empty)", v.Index+1)
	}
	label := fmt.Sprintf("%d: %s %s", v.Index+1, ItemName(v.Item), v.Clock())
	if v.Disabled {
		label += " [off]"
	}
	return label
}

// SlotTooltip returns the item description with the slot's condition.
func SlotTooltip(v macro.SlotView) string {
	if v.Empty() {
		return fmt.Sprintf("Slot %d", v.Index+1)
	}
	it, _ := macro.LookupItem(v.Item)
	switch {
	case v.Disabled:
		return it.Description + " (Disabled)"
	case v.OnCooldown():
		return it.Description + " (On Cooldown)"
	default:
		return it.Description
	}
}

// Line returns the one-line status summary, e.g.
// "Running | 12 activations | 4.0/min | 3m 0s".
func Line(state macro.State, stats *macro.Statistics) string {
	if state == macro.StateStopped || stats == nil {
		return state.String()
	}
	activations, apm, uptime := stats.GetStats()
	return fmt.Sprintf("%s | %d activations | %.1f/min | %s", state, activations, apm, uptime)
}

// Hotbar joins every slot label on one line separated by " | ".
func Hotbar(v macro.View) string {
	parts := make([]string, len(v.Slots))
	for i, s := range v.Slots {
		parts[i] = SlotLabel(s)
	}
	return strings.Join(parts, " | ")
}
