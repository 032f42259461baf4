package preset

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macrofox/internal/logging"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "MacroFox"), logging.Nop())
	require.NoError(t, err)
	return s
}

func TestSaveWritesIndentedFile(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(Preset{Name: " Farm ", Slots: []string{"Stinger", "", "Glue"}}))

	raw, err := os.ReadFile(filepath.Join(s.Dir(), "Farm.json"))
	require.NoError(t, err)
	want := `{
  "name": "Farm",
  "slots": [
    "Stinger",
    "empty",
    "Glue",
    "empty",
    "empty",
    "empty",
    "empty"
  ]
}
`
	assert.Equal(t, want, string(raw))
}

func TestLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	in := Preset{Name: "Night", Slots: []string{"Oil", "empty", "Honey_Dipper", "empty", "empty", "empty", "Glitter"}}
	require.NoError(t, s.Save(in))

	out, err := s.Load("Night")
	require.NoError(t, err)
	assert.Equal(t, in, out, "unknown ids are kept for the engine to skip")
}

func TestLoadBuiltin(t *testing.T) {
	s := newTestStore(t)
	p, err := s.Load("Boost")
	require.NoError(t, err)
	assert.Equal(t, []string{"Sprinkler_Builder", "Stinger", "Coconut", "Jelly_Beans", "Gumdrops", "Micro-Converter", "Glitter"}, p.Slots)

	p.Slots[0] = "Oil"
	again, _ := s.Load("Boost")
	assert.Equal(t, "Sprinkler_Builder", again.Slots[0], "built-ins are not aliased")
}

func TestLoadErrors(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Load("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Load("../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidName)

	require.NoError(t, os.WriteFile(s.Path("broken"), []byte("{not json"), 0o644))
	_, err = s.Load("broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestSaveRejectsBadNames(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"", "  ", ".hidden", "..", "a/b", `a\b`, "settings", "Boost"} {
		err := s.Save(Preset{Name: name})
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
}

func TestListBuiltinsFirst(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(Preset{Name: "zeta"}))
	require.NoError(t, s.Save(Preset{Name: "alpha"}))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "settings.json"), []byte(`{"theme":"dark"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "Boost.json"), []byte(`{}`), 0o644))

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"Boost", "alpha", "zeta"}, names)
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(Preset{Name: "tmp"}))
	require.NoError(t, s.Delete("tmp"))
	assert.ErrorIs(t, s.Delete("tmp"), ErrNotFound)
	assert.ErrorIs(t, s.Delete("Boost"), ErrInvalidName)
}

func TestNormalizedTruncates(t *testing.T) {
	p := Preset{Slots: []string{"a", "b", "c", "d", "e", "f", "g", "h"}}.Normalized()
	assert.Len(t, p.Slots, SlotCount)
	assert.Equal(t, "g", p.Slots[6])
}

func TestTimestampName(t *testing.T) {
	name := TimestampName(time.Date(2024, 5, 1, 9, 3, 7, 0, time.UTC))
	assert.Equal(t, "Layout 2024-05-01 09-03-07", name)
	assert.NoError(t, ValidateName(name))
}

func TestWatcherNotifiesOnPresetChanges(t *testing.T) {
	s := newTestStore(t)
	var calls atomic.Int32
	w, err := NewWatcher(s, func() { calls.Add(1) }, WithWatchDebounce(20*time.Millisecond), WithWatchLogger(logging.Nop()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, s.Save(Preset{Name: "first"}))
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	before := calls.Load()
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "ignored.txt"), []byte("x"), 0o644))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, before, calls.Load(), "non-preset files are ignored")
}

func TestWatcherStopIdempotent(t *testing.T) {
	s := newTestStore(t)
	w, err := NewWatcher(s, func() {})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	w.Stop()
	w.Stop()

	_, err = NewWatcher(nil, func() {})
	assert.Error(t, err)
	_, err = NewWatcher(s, nil)
	assert.Error(t, err)
}
