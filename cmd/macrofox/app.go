package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"macrofox/internal/input"
	"macrofox/internal/input/native"
	"macrofox/internal/logging"
	"macrofox/internal/macro"
	"macrofox/internal/metrics"
	"macrofox/internal/preset"
)

// runtime bundles the components every interactive command needs.
type runtime struct {
	engine   *macro.Engine
	presets  *preset.Store
	registry *prometheus.Registry
	closers  []func()
}

// Close releases dispatcher resources in reverse order.
func (r *runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
	r.closers = nil
}

// newRuntime builds the dispatcher, metrics, engine and preset store.
//
// Parameters:
//   - ctx: lifetime of the dispatcher (browser contexts are children of it)
//
// Returns:
//   - *runtime: ready engine in Stopped state, caller must Close
//   - error: unknown dispatcher, browser start failure or preset directory error
func (c *cli) newRuntime(ctx context.Context) (*runtime, error) {
	rt := &runtime{registry: prometheus.NewRegistry()}
	logger := logging.Default()

	dispatcher, err := c.newDispatcher(ctx, rt)
	if err != nil {
		rt.Close()
		return nil, err
	}

	observer := metrics.MustNewMetrics(rt.registry)
	rt.engine, err = macro.NewEngine(dispatcher,
		macro.WithTiming(c.timing()),
		macro.WithLogger(logger),
		macro.WithObserver(observer),
	)
	if err != nil {
		rt.Close()
		return nil, err
	}

	rt.presets, err = preset.NewStore(c.dataDir(), logger)
	if err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

func (c *cli) newDispatcher(ctx context.Context, rt *runtime) (macro.Dispatcher, error) {
	logger := logging.Default()
	kind := c.v.GetString(keyDispatcher)
	logging.Info("Using %s dispatcher", kind)

	switch kind {
	case dispatcherKeyboard:
		return native.NewKeyboard(logger), nil
	case dispatcherBrowser:
		b := input.NewBrowser(input.BrowserOptions{
			RemoteURL: c.v.GetString(keyBrowserURL),
			GameURL:   c.v.GetString(keyGameURL),
			Logger:    logger,
		})
		if err := b.Start(ctx); err != nil {
			return nil, fmt.Errorf("start browser: %w", err)
		}
		rt.closers = append(rt.closers, b.Close)
		return b, nil
	case dispatcherDryRun:
		return input.DryRun{Logger: logger}, nil
	default:
		return nil, fmt.Errorf("unknown dispatcher %q (want %s, %s or %s)",
			kind, dispatcherKeyboard, dispatcherBrowser, dispatcherDryRun)
	}
}

// applyPreset loads name from the store and applies it to the engine.
func applyPreset(rt *runtime, name string) error {
	p, err := rt.presets.Load(name)
	if err != nil {
		return err
	}
	n := rt.engine.LoadPreset(p.Slots)
	logging.Info("Preset %s applied (%d slots)", name, n)
	return nil
}
