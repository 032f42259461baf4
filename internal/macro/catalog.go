// Package macro - catalog.go
//
// This file defines the static item catalog: every item that can be placed
// on the hotbar, its description and its fixed cooldown.
//
// The catalog is immutable after process start. Items are identified by
// their catalog key (e.g. "Stinger"); the key is also what preset files and
// drag payloads carry.
package macro

import (
	"sort"
	"time"
)

// ItemID identifies a catalog item.
type ItemID string

// EmptySlot is the preset sentinel for a slot without an item.
const EmptySlot = "empty"

// Item is an immutable catalog entry.
type Item struct {
	ID          ItemID
	Description string
	Cooldown    time.Duration // Fixed cooldown, whole seconds
}

// DisplayName returns the item id with underscores replaced by spaces.
func (it Item) DisplayName() string {
	b := []byte(it.ID)
	for i, c := range b {
		if c == '_' {
			b[i] = ' '
		}
	}
	return string(b)
}

var catalog = map[ItemID]Item{
	"Cloud_Vial":        {ID: "Cloud_Vial", Description: "Summons a Cloud in the field you're standing in. Lasts for 3 minutes.", Cooldown: 180 * time.Second},
	"Coconut":           {ID: "Coconut", Description: "Drops a huge Coconut into the field. Catch it to convert pollen to Honey Tokens.", Cooldown: 1 * time.Second},
	"Enzymes":           {ID: "Enzymes", Description: "Grants +10% Instant Conversion and x1.25 Conversion Rate for 10 minutes.", Cooldown: 600 * time.Second},
	"Glitter":           {ID: "Glitter", Description: "Boosts the field you're standing in, granting +100% pollen for 15 minutes.", Cooldown: 910 * time.Second},
	"Glue":              {ID: "Glue", Description: "Grants x1.25 Bee Gather Pollen and Tools for 10 minutes.", Cooldown: 600 * time.Second},
	"Gumdrops":          {ID: "Gumdrops", Description: "Use while standing in a field to cover flowers in goo. Goo grants bonus honey.", Cooldown: 1 * time.Second},
	"Jelly_Beans":       {ID: "Jelly_Beans", Description: "Scatters various buff-granting beans on nearby flowers. Works best when shared.", Cooldown: 45 * time.Second},
	"Marshmallow_Bee":   {ID: "Marshmallow_Bee", Description: "50% White Pollen, +50% Capacity, and +250% Conversion Rate for 30 minutes.", Cooldown: 1800 * time.Second},
	"Micro-Converter":   {ID: "Micro-Converter", Description: "Instantly converts all Pollen in your bag to Honey.", Cooldown: 15 * time.Second},
	"Oil":               {ID: "Oil", Description: "Grants x1.2 Bee and Player Movespeed for 10 minutes.", Cooldown: 600 * time.Second},
	"Purple_Potion":     {ID: "Purple_Potion", Description: "Grants x1.25 Capacity, x1.25 Convert Rate At Hive, x1.5 Red Pollen, x1.5 Blue Pollen, x1.3 Bee Gather Pollen, and x1.3 Pollen From Tools for 15 minutes.", Cooldown: 900 * time.Second},
	"Sprinkler_Builder": {ID: "Sprinkler_Builder", Description: "Use while standing in flowers to place a Sprinkler.", Cooldown: 5 * time.Second},
	"Stinger":           {ID: "Stinger", Description: "Grants your bees x1.5 attack for 30 seconds.", Cooldown: 10 * time.Second},
	"Super_Smoothie":    {ID: "Super_Smoothie", Description: "Grants x1.5 Capacity, x1.6 Red Pollen, x1.6 Blue Pollen, x1.6 White Pollen, x1.4 Bee Gather Pollen, x1.4 Pollen From Tools, x2 Convert Rate, x1.5 Convert Rate At Hive, +12% Instant Conversion, +7% Critical Chance, x1.25 Bee Movespeed, and x1.25 Player Movespeed for 20 minutes.", Cooldown: 1200 * time.Second},
}

// LookupItem returns the catalog entry for id.
func LookupItem(id ItemID) (Item, bool) {
	it, ok := catalog[id]
	return it, ok
}

// IsKnownItem reports whether id names a catalog item.
func IsKnownItem(id ItemID) bool {
	_, ok := catalog[id]
	return ok
}

// Items returns all catalog entries sorted by id.
func Items() []Item {
	items := make([]Item, 0, len(catalog))
	for _, it := range catalog {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ID < items[j].ID
	})
	return items
}
