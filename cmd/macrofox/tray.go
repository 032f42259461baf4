package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"macrofox/internal/logging"
	"macrofox/internal/metrics"
	"macrofox/internal/settings"
	"macrofox/internal/tray"
	"macrofox/internal/utils"
)

// runTray runs the system tray until Quit or SIGINT/SIGTERM.
func (c *cli) runTray(cmd *cobra.Command) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	rt, err := c.newRuntime(ctx)
	if err != nil {
		logging.Error("Startup failed: %v", err)
		return err
	}
	defer rt.Close()

	if name := c.v.GetString(keyPreset); name != "" {
		if err := applyPreset(rt, name); err != nil {
			logging.Warn("Preset %s not applied: %v", name, err)
		}
	}

	if addr := c.v.GetString(keyMetricsAddr); addr != "" {
		utils.SafeGo("metrics", func() {
			if err := metrics.Serve(ctx, addr, rt.registry, logging.Default()); err != nil {
				logging.Error("%v", err)
			}
		})
	}

	app := tray.New(tray.Config{
		Engine:       rt.engine,
		Presets:      rt.presets,
		SettingsPath: c.settingsPath(),
		Settings:     settings.Load(c.settingsPath(), logging.Default()),
		Logger:       logging.Default(),
		OnExit:       cancel,
	})

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	utils.SafeGo("signals", func() {
		select {
		case sig := <-sigChan:
			logging.Info("Received signal %v, quitting tray", sig)
			app.Quit()
		case <-ctx.Done():
		}
	})

	app.Run()
	return nil
}
