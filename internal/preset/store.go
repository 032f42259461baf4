// Package preset - store.go
//
// This file implements preset persistence: built-in presets plus one JSON
// file per user preset in the data directory.
//
// File Format:
// JSON with 2-space indentation, one file per preset named <name>.json:
//
//	{
//	  "name": "Boost",
//	  "slots": ["Sprinkler_Builder", "Stinger", "empty", ...]
//	}
//
// "empty" marks a slot without an item. Unknown item ids are kept in the file
// and skipped by the engine when the preset is applied.
//
// Load Behavior:
//   - Built-in names resolve to the built-in slots, files cannot shadow them
//   - Missing file: ErrNotFound
//   - Corrupted file: wrapped decode error, the preset is not applied
//
// The settings file shares the data directory and is never listed as a preset.
package preset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"macrofox/internal/logging"
)

// SlotCount is the number of entries a preset carries.
const SlotCount = 7

// Empty is the sentinel for a slot without an item.
const Empty = "empty"

const fileExt = ".json"

// reservedNames are files in the data directory that are not presets.
var reservedNames = map[string]bool{"settings": true}

var (
	// ErrNotFound is returned when no built-in or file preset has the name.
	ErrNotFound = errors.New("preset not found")
	// ErrInvalidName is returned for names that cannot be used as file names.
	ErrInvalidName = errors.New("invalid preset name")
)

// Preset is a named hotbar layout.
type Preset struct {
	Name  string   `json:"name"`
	Slots []string `json:"slots"`
}

// Normalized returns a copy with exactly SlotCount entries, blanks as Empty.
func (p Preset) Normalized() Preset {
	slots := make([]string, SlotCount)
	for i := range slots {
		slots[i] = Empty
		if i < len(p.Slots) {
			if s := strings.TrimSpace(p.Slots[i]); s != "" {
				slots[i] = s
			}
		}
	}
	return Preset{Name: p.Name, Slots: slots}
}

var builtins = []Preset{
	{Name: "Boost", Slots: []string{"Sprinkler_Builder", "Stinger", "Coconut", "Jelly_Beans", "Gumdrops", "Micro-Converter", "Glitter"}},
}

// Builtins returns the presets shipped with the application.
func Builtins() []Preset {
	out := make([]Preset, len(builtins))
	for i, p := range builtins {
		out[i] = Preset{Name: p.Name, Slots: append([]string(nil), p.Slots...)}
	}
	return out
}

func builtin(name string) (Preset, bool) {
	for _, p := range builtins {
		if p.Name == name {
			return Preset{Name: p.Name, Slots: append([]string(nil), p.Slots...)}, true
		}
	}
	return Preset{}, false
}

// Store reads and writes presets in a directory.
type Store struct {
	dir    string
	logger logging.Logger
}

// NewStore creates the directory if needed and returns a store over it.
func NewStore(dir string, logger logging.Logger) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("preset directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create preset directory: %w", err)
	}
	return &Store{dir: filepath.Clean(dir), logger: logging.OrNop(logger)}, nil
}

// Dir returns the directory the store reads from.
func (s *Store) Dir() string {
	return s.dir
}

// ValidateName checks that name can be used as a preset file name.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidName)
	case name == "." || name == ".." || strings.HasPrefix(name, "."):
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\:*?"<>|`):
		return fmt.Errorf("%w: %q contains a path or reserved character", ErrInvalidName, name)
	case reservedNames[strings.ToLower(name)]:
		return fmt.Errorf("%w: %q is reserved", ErrInvalidName, name)
	}
	return nil
}

// Path returns the file path a preset name is stored at.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, strings.TrimSpace(name)+fileExt)
}

// List returns built-in names first, then file presets sorted by name.
func (s *Store) List() ([]string, error) {
	names := make([]string, 0, len(builtins))
	seen := make(map[string]bool)
	for _, p := range builtins {
		names = append(names, p.Name)
		seen[p.Name] = true
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return names, fmt.Errorf("read preset directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != fileExt {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), fileExt)
		if seen[name] || reservedNames[strings.ToLower(name)] {
			continue
		}
		seen[name] = true
		files = append(files, name)
	}
	sort.Strings(files)
	return append(names, files...), nil
}

// Load returns the named preset.
//
// Returns:
//   - Preset: built-in or decoded file preset, Name set to name
//   - error: ErrNotFound, ErrInvalidName, or a wrapped read/decode error
func (s *Store) Load(name string) (Preset, error) {
	name = strings.TrimSpace(name)
	if p, ok := builtin(name); ok {
		return p, nil
	}
	if err := ValidateName(name); err != nil {
		return Preset{}, err
	}

	file, err := os.Open(s.Path(name))
	if errors.Is(err, os.ErrNotExist) {
		return Preset{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return Preset{}, fmt.Errorf("open preset %s: %w", name, err)
	}
	defer file.Close()

	var p Preset
	if err := json.NewDecoder(file).Decode(&p); err != nil {
		s.logger.Warn("Failed to decode preset %s: %v", name, err)
		return Preset{}, fmt.Errorf("decode preset %s: %w", name, err)
	}
	p.Name = name
	return p, nil
}

// Save writes p to <dir>/<name>.json with 2-space indentation, overwriting
// any existing file. Built-in names are rejected.
func (s *Store) Save(p Preset) error {
	name := strings.TrimSpace(p.Name)
	if err := ValidateName(name); err != nil {
		return err
	}
	if _, ok := builtin(name); ok {
		return fmt.Errorf("%w: %q is a built-in preset", ErrInvalidName, name)
	}

	p = p.Normalized()
	p.Name = name

	file, err := os.Create(s.Path(name))
	if err != nil {
		return fmt.Errorf("create preset %s: %w", name, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(p); err != nil {
		return fmt.Errorf("encode preset %s: %w", name, err)
	}

	s.logger.Info("Preset saved to %s", s.Path(name))
	return nil
}

// Delete removes a file preset.
func (s *Store) Delete(name string) error {
	name = strings.TrimSpace(name)
	if err := ValidateName(name); err != nil {
		return err
	}
	if _, ok := builtin(name); ok {
		return fmt.Errorf("%w: %q is a built-in preset", ErrInvalidName, name)
	}
	err := os.Remove(s.Path(name))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return err
}

// TimestampName returns the name used for quick saves from the tray.
func TimestampName(t time.Time) string {
	return "Layout " + t.Format("2006-01-02 15-04-05")
}
