// Package macro - registry.go
//
// This file implements the slot registry: the seven hotbar slots and the
// reverse item -> slot index.
//
// Invariants:
//   - An item id appears in at most one slot.
//   - index is exactly the inverse of the non-empty slots.
//   - Any operation that changes slot contents updates index before returning.
//
// Thread Safety:
// registry is NOT safe for concurrent use on its own. Every method is called
// by Engine while holding Engine.mu, which the scheduler tick also holds.
package macro

import (
	"fmt"
	"time"
)

// SlotCount is the number of hotbar slots.
const SlotCount = 7

// slot is the authoritative state of one hotbar position.
type slot struct {
	item          ItemID // "" when empty
	disabled      bool
	cooldownUntil time.Time // zero or past means ready
}

func (s slot) empty() bool {
	return s.item == ""
}

type registry struct {
	slots [SlotCount]slot
	index map[ItemID]int
}

func newRegistry() *registry {
	return &registry{
		index: make(map[ItemID]int, SlotCount),
	}
}

func validSlot(i int) bool {
	return i >= 0 && i < SlotCount
}

// resetSlot empties slot i and drops its index entry.
func (r *registry) resetSlot(i int) {
	if it := r.slots[i].item; it != "" {
		if idx, ok := r.index[it]; ok && idx == i {
			delete(r.index, it)
		}
	}
	r.slots[i] = slot{}
}

// assign places item in target, moving it out of any other slot first.
// Returns false when nothing changed.
func (r *registry) assign(item ItemID, target int) bool {
	if !validSlot(target) || !IsKnownItem(item) {
		return false
	}

	if src, ok := r.index[item]; ok {
		if src == target {
			return false
		}
		r.resetSlot(src)
	}

	// Evict whatever else lives in target
	r.resetSlot(target)

	r.slots[target] = slot{item: item}
	r.index[item] = target
	return true
}

// clear empties slot i. Idempotent.
func (r *registry) clear(i int) bool {
	if !validSlot(i) || r.slots[i].empty() {
		return false
	}
	r.resetSlot(i)
	return true
}

// swap exchanges the full state of two slots and rebuilds the index.
func (r *registry) swap(a, b int) bool {
	if !validSlot(a) || !validSlot(b) || a == b {
		return false
	}
	r.slots[a], r.slots[b] = r.slots[b], r.slots[a]
	r.rebuildIndex()
	return true
}

// toggleDisabled flips slot i's flag. When engineActive is true the flip is
// only allowed once the slot's cooldown has expired at now. Empty slots have
// nothing to disable.
func (r *registry) toggleDisabled(i int, engineActive bool, now time.Time) bool {
	if !validSlot(i) || r.slots[i].empty() {
		return false
	}
	s := &r.slots[i]
	if engineActive && now.Before(s.cooldownUntil) {
		return false
	}
	s.disabled = !s.disabled
	return true
}

// clearAll empties every slot and the index.
func (r *registry) clearAll() {
	for i := range r.slots {
		r.slots[i] = slot{}
	}
	clear(r.index)
}

// loadPreset clears the hotbar then assigns each valid item by position.
// Returns the number of slots filled.
func (r *registry) loadPreset(items []string) int {
	r.clearAll()
	for i, name := range items {
		if i >= SlotCount {
			break
		}
		if name == "" || name == EmptySlot {
			continue
		}
		r.assign(ItemID(name), i)
	}
	return len(r.index)
}

// resetCooldowns zeroes every cooldown; disabled flags are untouched.
func (r *registry) resetCooldowns() {
	for i := range r.slots {
		r.slots[i].cooldownUntil = time.Time{}
	}
}

func (r *registry) rebuildIndex() {
	clear(r.index)
	for i, s := range r.slots {
		if !s.empty() {
			r.index[s.item] = i
		}
	}
}

// checkInvariants verifies that index equals the inverse of slots and that no
// item is held twice.
func (r *registry) checkInvariants() error {
	seen := make(map[ItemID]int, SlotCount)
	for i, s := range r.slots {
		if s.empty() {
			if s.disabled || !s.cooldownUntil.IsZero() {
				return fmt.Errorf("empty slot %d carries state (disabled=%v cooldown=%v)", i, s.disabled, s.cooldownUntil)
			}
			continue
		}
		if prev, dup := seen[s.item]; dup {
			return fmt.Errorf("item %s held by slots %d and %d", s.item, prev, i)
		}
		seen[s.item] = i
	}
	if len(seen) != len(r.index) {
		return fmt.Errorf("index has %d entries, slots hold %d items", len(r.index), len(seen))
	}
	for it, i := range seen {
		if got, ok := r.index[it]; !ok || got != i {
			return fmt.Errorf("index maps %s to %d (present=%v), slot array has it at %d", it, got, ok, i)
		}
	}
	return nil
}
