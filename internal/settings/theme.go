package settings

import (
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// DefaultTheme is used when the settings name no known theme.
const DefaultTheme = "light"

// Palette is a named set of UI colours as #RRGGBB strings.
type Palette struct {
	Name    string
	BG      string
	Panel   string
	SlotBG  string
	Font    string
	Primary string
	Success string
	Danger  string
	Warning string
	Hint    string
	Dark    bool
}

var themes = map[string]Palette{
	"light": {
		Name: "light", BG: "#FFFFFF", Panel: "#F0F0F0", SlotBG: "#E0E0E0", Font: "#212121",
		Primary: "#2196F3", Success: "#73C277", Danger: "#F55A4E", Warning: "#FFC107", Hint: "#616161",
	},
	"dark": {
		Name: "dark", BG: "#121212", Panel: "#1E1E1E", SlotBG: "#2A2A2A", Font: "#E0E0E0",
		Primary: "#4CAF50", Success: "#66BB6A", Danger: "#EF5350", Warning: "#FFA726", Hint: "#9E9E9E",
		Dark: true,
	},
	"nothing": {
		Name: "nothing", BG: "#000000", Panel: "#111111", SlotBG: "#222222", Font: "#FFFFFF",
		Primary: "#D71922", Success: "#2ECC71", Danger: "#E74C3C", Warning: "#F39C12", Hint: "#AAAAAA",
		Dark: true,
	},
	"pinky": {
		Name: "pinky", BG: "#FFF9FB", Panel: "#FFE8F0", SlotBG: "#FFDDEA", Font: "#C2185B",
		Primary: "#F06292", Success: "#81C784", Danger: "#F48FB1", Warning: "#FFCC80", Hint: "#CE93D8",
	},
}

// Themes returns the theme names in sorted order.
func Themes() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsTheme reports whether name is a known theme.
func IsTheme(name string) bool {
	_, ok := themes[name]
	return ok
}

// Theme returns the palette for name, falling back to the default theme.
func Theme(name string) Palette {
	if p, ok := themes[name]; ok {
		return p
	}
	return themes[DefaultTheme]
}

// Colors are terminal styles derived from a palette.
type Colors struct {
	Primary func(a ...interface{}) string
	Success func(a ...interface{}) string
	Danger  func(a ...interface{}) string
	Warning func(a ...interface{}) string
	Hint    func(a ...interface{}) string
	Bold    func(a ...interface{}) string
}

// Colors builds 24-bit terminal colour functions for the palette.
// fatih/color disables them automatically when stdout is not a terminal.
func (p Palette) Colors() Colors {
	return Colors{
		Primary: rgb(p.Primary).SprintFunc(),
		Success: rgb(p.Success).SprintFunc(),
		Danger:  rgb(p.Danger).SprintFunc(),
		Warning: rgb(p.Warning).SprintFunc(),
		Hint:    rgb(p.Hint).SprintFunc(),
		Bold:    color.New(color.Bold).SprintFunc(),
	}
}

func rgb(hex string) *color.Color {
	r, g, b, ok := parseHex(hex)
	if !ok {
		return color.New(color.Reset)
	}
	return color.RGB(r, g, b)
}

// parseHex decodes #RRGGBB.
func parseHex(hex string) (r, g, b int, ok bool) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xFF), int(v >> 8 & 0xFF), int(v & 0xFF), true
}
