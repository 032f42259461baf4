package macro

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macrofox/internal/logging"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type emission struct {
	slot int
	at   time.Time
}

type recorder struct {
	mu    sync.Mutex
	clock *fakeClock
	err   error
	log   []emission
}

func (r *recorder) Emit(slot int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = append(r.log, emission{slot: slot, at: r.clock.Now()})
	return r.err
}

func (r *recorder) slots() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, len(r.log))
	for i, e := range r.log {
		out[i] = e.slot
	}
	return out
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.log)
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.log = nil
	r.mu.Unlock()
}

var testTiming = Timing{Grace: 0, Fast: 5 * time.Millisecond, Slow: 10 * time.Millisecond, Refresh: 10 * time.Millisecond}

func newTestEngine(t *testing.T, timing Timing) (*Engine, *recorder, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	rec := &recorder{clock: clock}
	e, err := NewEngine(rec,
		WithTiming(timing),
		WithClock(clock.Now),
		WithLogger(logging.Nop()),
	)
	require.NoError(t, err)
	t.Cleanup(e.Stop)
	return e, rec, clock
}

// running puts the engine in Running without a scheduler goroutine so tests
// can drive tick directly.
func running(e *Engine) {
	e.mu.Lock()
	e.state = StateRunning
	e.mu.Unlock()
}

func cooldownUntil(e *Engine, slot int) time.Time {
	return e.Snapshot().Slots[slot].CooldownUntil
}

func TestNewEngineRequiresDispatcher(t *testing.T) {
	_, err := NewEngine(nil)
	assert.Error(t, err)
}

func TestTimingDefaults(t *testing.T) {
	e, err := NewEngine(DispatcherFunc(func(int) error { return nil }), WithTiming(Timing{Grace: -1}))
	require.NoError(t, err)
	assert.Equal(t, DefaultTiming(), e.Timing())

	e, err = NewEngine(DispatcherFunc(func(int) error { return nil }), WithTiming(Timing{Fast: time.Millisecond}))
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), e.Timing().Grace)
	assert.Equal(t, time.Millisecond, e.Timing().Fast)
	assert.Equal(t, DefaultTiming().Slow, e.Timing().Slow)
}

func TestTickFiresReadySlotsInOrder(t *testing.T) {
	e, rec, clock := newTestEngine(t, testTiming)
	e.LoadPreset([]string{"Stinger", "Glue"})
	running(e)

	t0 := clock.Now()
	fired, ok := e.tick(context.Background())
	require.True(t, ok)
	assert.True(t, fired)
	assert.Equal(t, []int{0, 1}, rec.slots())
	assert.Equal(t, t0.Add(10*time.Second), cooldownUntil(e, 0))
	assert.Equal(t, t0.Add(600*time.Second), cooldownUntil(e, 1))

	rec.reset()
	clock.Advance(10 * time.Second)
	fired, _ = e.tick(context.Background())
	assert.True(t, fired)
	assert.Equal(t, []int{0}, rec.slots())

	rec.reset()
	clock.Advance(590 * time.Second)
	e.tick(context.Background())
	assert.Equal(t, []int{0, 1}, rec.slots())
}

func TestTickIdleWhenNothingReady(t *testing.T) {
	e, rec, clock := newTestEngine(t, testTiming)
	e.Assign("Coconut", 2)
	running(e)

	fired, _ := e.tick(context.Background())
	require.True(t, fired)

	clock.Advance(999 * time.Millisecond)
	fired, ok := e.tick(context.Background())
	assert.True(t, ok)
	assert.False(t, fired)
	assert.Equal(t, 1, rec.count())

	clock.Advance(time.Millisecond)
	fired, _ = e.tick(context.Background())
	assert.True(t, fired)
}

func TestDisabledSlotNeverFires(t *testing.T) {
	e, rec, clock := newTestEngine(t, testTiming)
	e.LoadPreset([]string{"Gumdrops", "Coconut"})
	require.True(t, e.ToggleDisabled(0))
	running(e)

	for i := 0; i < 5; i++ {
		e.tick(context.Background())
		clock.Advance(time.Second)
	}
	for _, s := range rec.slots() {
		assert.NotEqual(t, 0, s)
	}
	assert.Equal(t, 5, rec.count())
}

func TestTickWhilePausedFiresNothing(t *testing.T) {
	e, rec, _ := newTestEngine(t, testTiming)
	e.Assign("Stinger", 0)
	e.mu.Lock()
	e.state = StatePaused
	e.mu.Unlock()

	fired, ok := e.tick(context.Background())
	assert.True(t, ok)
	assert.False(t, fired)
	assert.Zero(t, rec.count())
}

func TestTickAfterCancelExits(t *testing.T) {
	e, rec, _ := newTestEngine(t, testTiming)
	e.Assign("Stinger", 0)
	running(e)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok := e.tick(ctx)
	assert.False(t, ok)
	assert.Zero(t, rec.count())
}

func TestDispatcherErrorStillResetsCooldown(t *testing.T) {
	e, rec, clock := newTestEngine(t, testTiming)
	rec.err = errors.New("no focus")
	e.Assign("Micro-Converter", 4)
	running(e)

	fired, _ := e.tick(context.Background())
	assert.True(t, fired)
	assert.Equal(t, clock.Now().Add(15*time.Second), cooldownUntil(e, 4))

	fired, _ = e.tick(context.Background())
	assert.False(t, fired, "no tight retry after a failed emit")
}

func TestDispatcherPanicStillResetsCooldown(t *testing.T) {
	clock := newFakeClock()
	e, err := NewEngine(DispatcherFunc(func(int) error { panic("boom") }),
		WithTiming(testTiming), WithClock(clock.Now), WithLogger(logging.Nop()))
	require.NoError(t, err)
	e.Assign("Oil", 0)
	running(e)

	assert.NotPanics(t, func() { e.tick(context.Background()) })
	assert.Equal(t, clock.Now().Add(600*time.Second), cooldownUntil(e, 0))
}

func TestToggleRejectedDuringCooldown(t *testing.T) {
	e, _, clock := newTestEngine(t, testTiming)
	e.Assign("Jelly_Beans", 1)
	running(e)
	e.tick(context.Background())

	assert.False(t, e.ToggleDisabled(1))
	assert.False(t, e.Snapshot().Slots[1].Disabled)

	clock.Advance(45 * time.Second)
	assert.True(t, e.ToggleDisabled(1))
	assert.True(t, e.Snapshot().Slots[1].Disabled)
}

func TestStopZeroesCooldowns(t *testing.T) {
	e, rec, _ := newTestEngine(t, testTiming)
	e.LoadPreset([]string{"Glitter", "Enzymes", "Oil"})
	require.True(t, e.ToggleDisabled(2))

	require.True(t, e.Start())
	require.Eventually(t, func() bool { return rec.count() >= 2 }, time.Second, 5*time.Millisecond)

	e.Stop()
	assert.Equal(t, StateStopped, e.State())
	for _, s := range e.Snapshot().Slots {
		assert.Zero(t, s.Remaining)
		assert.True(t, s.CooldownUntil.IsZero())
	}
	assert.True(t, e.Snapshot().Slots[2].Disabled, "stop keeps disabled flags")

	select {
	case <-e.Done():
	case <-time.After(time.Second):
		t.Fatal("scheduler loop did not exit")
	}
	n := rec.count()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, n, rec.count(), "no emits after stop")
	require.NoError(t, e.checkInvariants())
}

func TestStartHonoursGrace(t *testing.T) {
	timing := testTiming
	timing.Grace = 150 * time.Millisecond
	e, rec, clock := newTestEngine(t, timing)
	e.Assign("Sprinkler_Builder", 0)

	started := time.Now()
	require.True(t, e.Start())
	assert.False(t, e.Start(), "already running")

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, rec.count(), "nothing fires during grace")

	clock.Advance(timing.Grace)
	graceEnd := clock.Now()
	require.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(started), timing.Grace)
	assert.Equal(t, graceEnd.Add(5*time.Second), cooldownUntil(e, 0))
}

func TestStopDuringGrace(t *testing.T) {
	timing := testTiming
	timing.Grace = time.Hour
	e, rec, _ := newTestEngine(t, timing)
	e.Assign("Coconut", 0)

	require.True(t, e.Start())
	e.Stop()

	select {
	case <-e.Done():
	case <-time.After(time.Second):
		t.Fatal("grace wait not interrupted by stop")
	}
	assert.Zero(t, rec.count())
}

func TestPauseResume(t *testing.T) {
	e, rec, clock := newTestEngine(t, testTiming)
	e.Assign("Coconut", 0)

	assert.False(t, e.Pause(), "cannot pause when stopped")
	assert.False(t, e.Resume())

	require.True(t, e.Start())
	require.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 2*time.Millisecond)

	require.True(t, e.Pause())
	assert.Equal(t, StatePaused, e.State())
	clock.Advance(5 * time.Second)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, 1, rec.count(), "paused scheduler fires nothing")
	assert.Equal(t, clock.Now().Add(-4*time.Second), cooldownUntil(e, 0), "cooldown kept while paused")

	require.True(t, e.Resume())
	require.Eventually(t, func() bool { return rec.count() == 2 }, time.Second, 2*time.Millisecond)
}

func TestToggleCyclesStates(t *testing.T) {
	e, _, _ := newTestEngine(t, testTiming)
	assert.Equal(t, StateRunning, e.Toggle())
	assert.Equal(t, StatePaused, e.Toggle())
	assert.Equal(t, StateRunning, e.Toggle())
	e.Stop()
	assert.Equal(t, StateStopped, e.State())
	assert.Equal(t, StateRunning, e.Toggle(), "restart after stop")
}

func TestSlotOpsWhileRunning(t *testing.T) {
	e, _, _ := newTestEngine(t, testTiming)
	require.True(t, e.Start())

	var wg sync.WaitGroup
	items := Items()
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				slot := (i + w) % SlotCount
				switch i % 4 {
				case 0:
					e.Assign(items[(i*3+w)%len(items)].ID, slot)
				case 1:
					e.Swap(slot, (slot+w+1)%SlotCount)
				case 2:
					e.ToggleDisabled(slot)
				case 3:
					e.Clear(slot)
				}
			}
		}(w)
	}
	wg.Wait()

	e.Stop()
	<-e.Done()
	require.NoError(t, e.checkInvariants())
}

func TestItemsRoundTrip(t *testing.T) {
	e, _, _ := newTestEngine(t, testTiming)
	preset := []string{"Sprinkler_Builder", "Stinger", "empty", "Jelly_Beans", "empty", "Micro-Converter", "Glitter"}
	assert.Equal(t, 5, e.LoadPreset(preset))
	assert.Equal(t, preset, e.Items())
}

func TestStatsRecordedPerSlot(t *testing.T) {
	e, _, clock := newTestEngine(t, testTiming)
	e.LoadPreset([]string{"Coconut", "Stinger"})
	running(e)

	for i := 0; i < 3; i++ {
		e.tick(context.Background())
		clock.Advance(time.Second)
	}
	assert.Equal(t, 3, e.Stats().SlotCount(0))
	assert.Equal(t, 1, e.Stats().SlotCount(1))
	n, _, _ := e.Stats().GetStats()
	assert.Equal(t, 4, n)
}

func TestLoadPresetOverArbitraryState(t *testing.T) {
	e, _, _ := newTestEngine(t, testTiming)
	e.LoadPreset([]string{"Oil", "Glitter", "Coconut", "Enzymes"})
	running(e)
	e.tick(context.Background())
	require.True(t, e.Swap(0, 3))
	e.mu.Lock()
	e.state = StateStopped
	e.mu.Unlock()
	require.True(t, e.ToggleDisabled(1))

	e.LoadPreset([]string{"Stinger", "empty", "Glue", "empty", "empty", "empty", "empty"})

	v := e.Snapshot()
	for i, s := range v.Slots {
		switch i {
		case 0:
			assert.Equal(t, ItemID("Stinger"), s.Item)
		case 2:
			assert.Equal(t, ItemID("Glue"), s.Item)
		default:
			assert.True(t, s.Empty(), "slot %d", i)
		}
		assert.False(t, s.Disabled, "slot %d", i)
		assert.True(t, s.CooldownUntil.IsZero(), "slot %d", i)
	}
	require.NoError(t, e.checkInvariants())
}

type tickAt struct {
	fired bool
	at    time.Time
}

// tickLog timestamps every completed tick on the wall clock.
type tickLog struct {
	nopObserver
	mu    sync.Mutex
	ticks []tickAt
}

func (l *tickLog) TickCompleted(fired bool, _ time.Duration) {
	l.mu.Lock()
	l.ticks = append(l.ticks, tickAt{fired: fired, at: time.Now()})
	l.mu.Unlock()
}

func (l *tickLog) snapshot() []tickAt {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]tickAt(nil), l.ticks...)
}

func TestAdaptiveSleepPolicy(t *testing.T) {
	timing := Timing{Grace: 0, Fast: 10 * time.Millisecond, Slow: 150 * time.Millisecond}
	newEngine := func(t *testing.T, timing Timing) (*Engine, *tickLog) {
		ticks := &tickLog{}
		e, err := NewEngine(DispatcherFunc(func(int) error { return nil }),
			WithTiming(timing),
			WithLogger(logging.Nop()),
			WithObserver(ticks),
		)
		require.NoError(t, err)
		t.Cleanup(e.Stop)
		return e, ticks
	}
	waitTicks := func(t *testing.T, ticks *tickLog, n int) []tickAt {
		require.Eventually(t, func() bool { return len(ticks.snapshot()) >= n }, 2*time.Second, 5*time.Millisecond)
		return ticks.snapshot()
	}

	t.Run("fast after activity slow when idle", func(t *testing.T) {
		e, ticks := newEngine(t, timing)
		e.Assign("Glitter", 0)
		require.True(t, e.Start())

		got := waitTicks(t, ticks, 3)
		e.Stop()
		require.True(t, got[0].fired)
		require.False(t, got[1].fired)
		require.False(t, got[2].fired)

		afterFire := got[1].at.Sub(got[0].at)
		assert.GreaterOrEqual(t, afterFire, timing.Fast)
		assert.Less(t, afterFire, timing.Slow/2)
		assert.GreaterOrEqual(t, got[2].at.Sub(got[1].at), timing.Slow)
	})

	t.Run("slow while paused", func(t *testing.T) {
		paused := timing
		paused.Grace = 50 * time.Millisecond
		e, ticks := newEngine(t, paused)
		e.Assign("Glitter", 0)
		require.True(t, e.Start())
		require.True(t, e.Pause())

		got := waitTicks(t, ticks, 3)
		e.Stop()
		for _, tk := range got {
			assert.False(t, tk.fired)
		}
		// the first sleep consumes the wake sent by Pause
		assert.GreaterOrEqual(t, got[2].at.Sub(got[1].at), timing.Slow)
	})

	t.Run("stop before start leaves no early wake", func(t *testing.T) {
		e, ticks := newEngine(t, timing)
		e.Stop()
		require.True(t, e.Start())

		got := waitTicks(t, ticks, 2)
		e.Stop()
		assert.GreaterOrEqual(t, got[1].at.Sub(got[0].at), timing.Slow)
	})
}

func TestStartDiscardsStaleWake(t *testing.T) {
	timing := testTiming
	timing.Grace = time.Hour
	e, _, _ := newTestEngine(t, timing)

	e.Stop()
	require.Len(t, e.wake, 1)
	require.True(t, e.Start())
	assert.Len(t, e.wake, 0)
}

func TestConcurrentTogglesAreNotLost(t *testing.T) {
	e, _, _ := newTestEngine(t, testTiming)
	e.Assign("Glitter", 0)

	const workers, perWorker = 8, 25
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				e.Toggle()
			}
		}()
	}
	wg.Wait()

	// the first toggle starts, the rest alternate pause and resume
	assert.Equal(t, StatePaused, e.State())
	require.NoError(t, e.checkInvariants())
}

func TestStatsUseEngineClock(t *testing.T) {
	timing := testTiming
	timing.Grace = time.Hour
	e, _, clock := newTestEngine(t, timing)
	require.True(t, e.Start())

	clock.Advance(90 * time.Second)
	n, apm, uptime := e.Stats().GetStats()
	assert.Zero(t, n)
	assert.Zero(t, apm)
	assert.Equal(t, "1m 30s", uptime)
}
