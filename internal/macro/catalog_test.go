package macro

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogCooldowns(t *testing.T) {
	cases := map[ItemID]time.Duration{
		"Cloud_Vial":        180 * time.Second,
		"Coconut":           time.Second,
		"Enzymes":           600 * time.Second,
		"Glitter":           910 * time.Second,
		"Glue":              600 * time.Second,
		"Gumdrops":          time.Second,
		"Jelly_Beans":       45 * time.Second,
		"Marshmallow_Bee":   1800 * time.Second,
		"Micro-Converter":   15 * time.Second,
		"Oil":               600 * time.Second,
		"Purple_Potion":     900 * time.Second,
		"Sprinkler_Builder": 5 * time.Second,
		"Stinger":           10 * time.Second,
		"Super_Smoothie":    1200 * time.Second,
	}
	require.Len(t, Items(), len(cases))

	for id, want := range cases {
		it, ok := LookupItem(id)
		require.True(t, ok, id)
		assert.Equal(t, want, it.Cooldown, id)
		assert.Equal(t, id, it.ID)
		assert.NotEmpty(t, it.Description, id)
	}
}

func TestItemsSortedByID(t *testing.T) {
	items := Items()
	for i := 1; i < len(items); i++ {
		assert.Less(t, string(items[i-1].ID), string(items[i].ID))
	}
}

func TestUnknownItem(t *testing.T) {
	_, ok := LookupItem("Honey_Dipper")
	assert.False(t, ok)
	assert.False(t, IsKnownItem(EmptySlot))
	assert.True(t, IsKnownItem("Stinger"))
}

func TestDisplayName(t *testing.T) {
	it, _ := LookupItem("Marshmallow_Bee")
	assert.Equal(t, "Marshmallow Bee", it.DisplayName())

	it, _ = LookupItem("Micro-Converter")
	assert.Equal(t, "Micro-Converter", it.DisplayName())
}
