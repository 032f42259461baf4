// Package tray - tray.go
//
// This file implements the system tray UI, the interactive control surface of
// MacroFox. Uses getlantern/systray for cross-platform tray menu support.
//
// Menu Structure:
//
//	MacroFox
//	├─ Status: Running | 12 activations | 4.0/min | 3m 0s (read-only)
//	├─ Start / Pause / Resume (combined run control)
//	├─ Stop (also resets every cooldown)
//	├─ Slot 1..7: item and remaining cooldown
//	│  ├─ Enabled (checkbox, rejected while the slot is on cooldown)
//	│  ├─ Clear
//	│  ├─ Assign → one checkbox per catalog item
//	│  └─ Swap with → Slot 1..7
//	├─ Presets
//	│  ├─ Save current layout (timestamped name)
//	│  └─ built-ins and <data dir>/*.json, refreshed on file changes
//	├─ Settings
//	│  ├─ Always on top (persisted)
//	│  └─ Theme → light | dark | nothing | pinky
//	└─ Quit
//
// Concurrency Model:
// Every clickable item has its own handler goroutine blocking on ClickedCh.
// Handlers never touch slot state directly; they issue macro.Command values
// through Engine.Apply or call the run controls. A single refresher goroutine
// redraws titles from Engine.Snapshot every Refresh interval.
//
// Lifecycle:
//  1. New: wire engine, preset store and settings
//  2. Run: start systray (blocking call)
//  3. onReady: build menus, start handlers, refresher and preset watcher
//  4. Quit click or process signal: systray.Quit
//  5. onExit: stop engine and watcher, run the OnExit hook
package tray

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/getlantern/systray"

	"macrofox/internal/logging"
	"macrofox/internal/macro"
	"macrofox/internal/preset"
	"macrofox/internal/settings"
	"macrofox/internal/status"
	"macrofox/internal/utils"
)

// maxPresetItems bounds the preset submenu; systray cannot remove items so
// the entries are allocated once and shown or hidden.
const maxPresetItems = 24

// Config wires the tray to the rest of the application.
type Config struct {
	Engine       *macro.Engine
	Presets      *preset.Store
	SettingsPath string
	Settings     settings.Settings
	Logger       logging.Logger
	OnExit       func()
}

// slotMenu holds the menu items of one hotbar slot.
type slotMenu struct {
	root    *systray.MenuItem
	enabled *systray.MenuItem
	clear   *systray.MenuItem
	assign  []*systray.MenuItem // catalog order
	swap    [macro.SlotCount]*systray.MenuItem
}

// App manages the system tray application.
type App struct {
	engine       *macro.Engine
	presets      *preset.Store
	settingsPath string
	logger       logging.Logger
	onExit       func()

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	settings    settings.Settings
	presetNames []string
	titles      map[*systray.MenuItem]string
	tooltips    map[*systray.MenuItem]string

	items []macro.Item

	// Menu items
	statusItem *systray.MenuItem
	runItem    *systray.MenuItem
	stopItem   *systray.MenuItem
	slots      [macro.SlotCount]slotMenu

	presetsMenu *systray.MenuItem
	saveItem    *systray.MenuItem
	presetItems [maxPresetItems]*systray.MenuItem

	alwaysOnTopItem *systray.MenuItem
	themeItems      map[string]*systray.MenuItem

	quitItem *systray.MenuItem
}

// New creates a tray application
func New(cfg Config) *App {
	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		engine:       cfg.Engine,
		presets:      cfg.Presets,
		settingsPath: cfg.SettingsPath,
		settings:     cfg.Settings,
		logger:       logging.OrNop(cfg.Logger),
		onExit:       cfg.OnExit,
		ctx:          ctx,
		cancel:       cancel,
		titles:       make(map[*systray.MenuItem]string),
		tooltips:     make(map[*systray.MenuItem]string),
		items:        macro.Items(),
		themeItems:   make(map[string]*systray.MenuItem),
	}
}

// Run starts the tray application. It blocks until Quit.
func (a *App) Run() {
	a.logger.Info("Starting system tray application")
	systray.Run(a.onReady, a.exit)
	a.logger.Info("System tray Run() returned")
}

// Quit asks systray to exit; Run returns after onExit completes.
func (a *App) Quit() {
	systray.Quit()
}

func (a *App) exit() {
	a.logger.Info("System tray onExit callback triggered")
	a.cancel()
	a.engine.Stop()
	if a.onExit != nil {
		a.onExit()
	}
	a.logger.Info("System tray exit complete")
}

// onReady is called when the tray is ready
func (a *App) onReady() {
	systray.SetTitle("MacroFox")
	systray.SetTooltip("MacroFox hotbar macro")

	a.statusItem = systray.AddMenuItem("Status: Stopped", "Scheduler status")
	a.statusItem.Disable()
	a.runItem = systray.AddMenuItem("Start", "Start or pause the macro")
	a.stopItem = systray.AddMenuItem("Stop", "Stop the macro and reset cooldowns")

	systray.AddSeparator()

	for i := range a.slots {
		a.buildSlotMenu(i)
	}

	systray.AddSeparator()

	a.presetsMenu = systray.AddMenuItem("Presets", "Apply or save hotbar presets")
	a.saveItem = a.presetsMenu.AddSubMenuItem("Save current layout", "Save the hotbar as a new preset")
	for i := range a.presetItems {
		a.presetItems[i] = a.presetsMenu.AddSubMenuItem("", "Apply preset")
		a.presetItems[i].Hide()
	}
	a.reloadPresets()

	settingsMenu := systray.AddMenuItem("Settings", "Preferences")
	a.alwaysOnTopItem = settingsMenu.AddSubMenuItemCheckbox("Always on top", "Keep MacroFox windows above others", a.settings.AlwaysOnTop)
	themeMenu := settingsMenu.AddSubMenuItem("Theme", "Colour palette")
	for _, name := range settings.Themes() {
		a.themeItems[name] = themeMenu.AddSubMenuItemCheckbox(name, "", name == a.settings.Theme)
	}

	systray.AddSeparator()

	a.quitItem = systray.AddMenuItem("Quit", "Quit MacroFox")

	a.handleEvents()

	utils.SafeGo("tray.refresh", func() {
		macro.Refresh(a.ctx, a.engine, a.engine.Timing().Refresh, a.render)
	})
	a.startPresetWatcher()

	a.logger.Info("System tray initialized")
}

func (a *App) buildSlotMenu(i int) {
	m := &a.slots[i]
	m.root = systray.AddMenuItem(fmt.Sprintf("%d: (empty)", i+1), fmt.Sprintf("Slot %d", i+1))
	m.enabled = m.root.AddSubMenuItemCheckbox("Enabled", "Click to disable or enable the slot", true)
	m.clear = m.root.AddSubMenuItem("Clear", "Remove the item from this slot")

	assignMenu := m.root.AddSubMenuItem("Assign", "Place an item in this slot")
	m.assign = make([]*systray.MenuItem, len(a.items))
	for j, it := range a.items {
		m.assign[j] = assignMenu.AddSubMenuItemCheckbox(
			fmt.Sprintf("%s (%s)", it.DisplayName(), utils.FormatDuration(it.Cooldown)),
			it.Description, false)
	}

	swapMenu := m.root.AddSubMenuItem("Swap with", "Exchange this slot with another")
	for j := range m.swap {
		m.swap[j] = swapMenu.AddSubMenuItem(fmt.Sprintf("Slot %d", j+1), "")
		if j == i {
			m.swap[j].Disable()
		}
	}
}

// handleEvents starts one goroutine per clickable item.
func (a *App) handleEvents() {
	a.onClick("tray.run", a.runItem, func() {
		state := a.engine.Toggle()
		a.logger.Info("Run control clicked, now %s", state)
	})
	a.onClick("tray.stop", a.stopItem, a.engine.Stop)

	for i := range a.slots {
		slot := i
		m := &a.slots[i]
		a.onClick("tray.slot.enabled", m.enabled, func() {
			if !a.engine.Apply(macro.ToggleCommand(slot)) {
				a.logger.Debug("Toggle rejected for slot %d", slot+1)
			}
			a.render(a.engine.Snapshot())
		})
		a.onClick("tray.slot.clear", m.clear, func() {
			a.engine.Apply(macro.ClearCommand(slot))
			a.render(a.engine.Snapshot())
		})
		for j, it := range a.items {
			id := it.ID
			a.onClick("tray.slot.assign", m.assign[j], func() {
				a.engine.Apply(macro.AssignCommand(id, slot))
				a.render(a.engine.Snapshot())
			})
		}
		for j := range m.swap {
			target := j
			a.onClick("tray.slot.swap", m.swap[j], func() {
				a.engine.Apply(macro.SwapCommand(slot, target))
				a.render(a.engine.Snapshot())
			})
		}
	}

	a.onClick("tray.preset.save", a.saveItem, a.saveCurrentLayout)
	for i := range a.presetItems {
		idx := i
		a.onClick("tray.preset.apply", a.presetItems[i], func() { a.applyPreset(idx) })
	}

	a.onClick("tray.settings.ontop", a.alwaysOnTopItem, a.toggleAlwaysOnTop)
	for name, item := range a.themeItems {
		theme := name
		a.onClick("tray.settings.theme", item, func() { a.selectTheme(theme) })
	}

	a.onClick("tray.quit", a.quitItem, func() {
		a.logger.Info("Quit requested by user")
		systray.Quit()
	})
}

// onClick runs fn for every click on item until the tray exits.
func (a *App) onClick(name string, item *systray.MenuItem, fn func()) {
	utils.SafeGo(name, func() {
		for {
			select {
			case <-a.ctx.Done():
				return
			case <-item.ClickedCh:
				fn()
			}
		}
	})
}

// setTitle updates an item title only when it changed.
func (a *App) setTitle(item *systray.MenuItem, title string) {
	if a.titles[item] == title {
		return
	}
	a.titles[item] = title
	item.SetTitle(title)
}

func (a *App) setTooltip(item *systray.MenuItem, tooltip string) {
	if a.tooltips[item] == tooltip {
		return
	}
	a.tooltips[item] = tooltip
	item.SetTooltip(tooltip)
}

func setEnabled(item *systray.MenuItem, enabled bool) {
	if item.Disabled() != enabled {
		return
	}
	if enabled {
		item.Enable()
	} else {
		item.Disable()
	}
}

func setChecked(item *systray.MenuItem, checked bool) {
	if item.Checked() == checked {
		return
	}
	if checked {
		item.Check()
	} else {
		item.Uncheck()
	}
}

// render redraws status, run control and slot items from a snapshot.
func (a *App) render(v macro.View) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.setTitle(a.statusItem, "Status: "+status.Line(v.State, a.engine.Stats()))
	a.setTooltip(a.statusItem, status.Hotbar(v))
	a.setTitle(a.runItem, status.RunLabel(v.State))

	for i, s := range v.Slots {
		m := &a.slots[i]
		a.setTitle(m.root, status.SlotLabel(s))
		a.setTooltip(m.root, status.SlotTooltip(s))
		setChecked(m.enabled, !s.Disabled)
		for j, it := range a.items {
			setChecked(m.assign[j], it.ID == s.Item)
		}
		setEnabled(m.enabled, !s.Empty())
		setEnabled(m.clear, !s.Empty())
	}
}

func (a *App) reloadPresets() {
	timer := utils.NewTimer("reload presets")
	defer timer.Log()

	names, err := a.presets.List()
	if err != nil {
		a.logger.Warn("Failed to list presets: %v", err)
	}
	if len(names) > maxPresetItems {
		a.logger.Warn("%d presets found, showing the first %d", len(names), maxPresetItems)
		names = names[:maxPresetItems]
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.presetNames = names
	for i, item := range a.presetItems {
		if i < len(names) {
			a.setTitle(item, names[i])
			item.Show()
		} else {
			item.Hide()
		}
	}
}

func (a *App) startPresetWatcher() {
	w, err := preset.NewWatcher(a.presets, a.reloadPresets, preset.WithWatchLogger(a.logger))
	if err != nil {
		a.logger.Warn("Preset watcher unavailable: %v", err)
		return
	}
	if err := w.Start(a.ctx); err != nil {
		a.logger.Warn("Preset watcher unavailable: %v", err)
	}
}

func (a *App) applyPreset(idx int) {
	a.mu.Lock()
	if idx >= len(a.presetNames) {
		a.mu.Unlock()
		return
	}
	name := a.presetNames[idx]
	a.mu.Unlock()

	p, err := a.presets.Load(name)
	if err != nil {
		a.logger.Warn("Preset %s not applied: %v", name, err)
		return
	}
	a.engine.Apply(macro.LoadPresetCommand(p.Slots))
	a.logger.Info("Preset %s applied", name)
	a.render(a.engine.Snapshot())
}

func (a *App) saveCurrentLayout() {
	name := preset.TimestampName(time.Now())
	if err := a.presets.Save(preset.Preset{Name: name, Slots: a.engine.Items()}); err != nil {
		a.logger.Error("Failed to save preset: %v", err)
		return
	}
	a.reloadPresets()
}

func (a *App) toggleAlwaysOnTop() {
	a.mu.Lock()
	a.settings.AlwaysOnTop = !a.settings.AlwaysOnTop
	s := a.settings
	setChecked(a.alwaysOnTopItem, s.AlwaysOnTop)
	a.mu.Unlock()
	a.saveSettings(s)
}

func (a *App) selectTheme(theme string) {
	a.mu.Lock()
	a.settings.Theme = theme
	s := a.settings
	for name, item := range a.themeItems {
		setChecked(item, name == theme)
	}
	a.mu.Unlock()
	a.logger.Info("Theme changed to %s", theme)
	a.saveSettings(s)
}

func (a *App) saveSettings(s settings.Settings) {
	if a.settingsPath == "" {
		return
	}
	if err := settings.Save(a.settingsPath, s, a.logger); err != nil {
		a.logger.Error("Failed to save settings: %v", err)
	}
}
