package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"macrofox/internal/logging"
	"macrofox/internal/macro"
	"macrofox/internal/settings"
)

// Flag and config keys.
const (
	keyDataDir     = "data-dir"
	keyDispatcher  = "dispatcher"
	keyBrowserURL  = "browser-url"
	keyGameURL     = "game-url"
	keyMetricsAddr = "metrics-addr"
	keyDebug       = "debug"
	keyLogLevel    = "log-level"
	keyGrace       = "grace"
	keyFast        = "fast"
	keySlow        = "slow"
	keyRefresh     = "refresh"
	keyPreset      = "preset"
)

// Dispatcher kinds accepted by --dispatcher.
const (
	dispatcherKeyboard = "keyboard"
	dispatcherBrowser  = "browser"
	dispatcherDryRun   = "dry-run"
)

// cli carries resolved configuration shared by all commands.
type cli struct {
	v *viper.Viper
}

// defaultDataDir returns ~/Documents/MacroFox, or ./MacroFox without a home.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "MacroFox"
	}
	return filepath.Join(home, "Documents", "MacroFox")
}

func newRootCommand() *cobra.Command {
	c := &cli{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "macrofox",
		Short: "Hotbar macro that fires items as their cooldowns expire",
		Long: `MacroFox presses hotbar keys 1-7 whenever the item in that slot is off
cooldown. Without a subcommand it runs as a system tray application.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTray(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String(keyDataDir, defaultDataDir(), "Directory for settings, presets and Debug.log")
	flags.String(keyDispatcher, dispatcherKeyboard, "Key emission: keyboard, browser or dry-run")
	flags.String(keyBrowserURL, "", "DevTools URL of a running Chrome to attach to (browser dispatcher)")
	flags.String(keyGameURL, "", "Page to open in a launched Chrome (browser dispatcher)")
	flags.String(keyMetricsAddr, "", "Serve Prometheus metrics on this address, e.g. 127.0.0.1:9109")
	flags.BoolP(keyDebug, "d", false, "Debug logging, mirrored to stderr")
	flags.String(keyLogLevel, "info", "Minimum level written to Debug.log: debug, info, warn or error")
	defaults := macro.DefaultTiming()
	flags.Duration(keyGrace, defaults.Grace, "Delay between start and the first activation")
	flags.Duration(keyFast, defaults.Fast, "Scheduler sleep after a tick that fired")
	flags.Duration(keySlow, defaults.Slow, "Scheduler sleep after an idle tick")
	flags.Duration(keyRefresh, defaults.Refresh, "Display refresh period")
	rootCmd.Flags().String(keyPreset, "", "Preset to apply at startup")

	rootCmd.AddCommand(newRunCommand(c))
	rootCmd.AddCommand(newCatalogCommand(c))
	rootCmd.AddCommand(newPresetCommand(c))

	return rootCmd
}

// init binds flags and environment into viper and starts logging.
func (c *cli) init(cmd *cobra.Command) error {
	if err := c.v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	c.v.SetEnvPrefix(settings.EnvPrefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	level := logging.ParseLevel(c.v.GetString(keyLogLevel))
	var mirror *os.File
	if c.v.GetBool(keyDebug) {
		level = logging.LevelDebug
		mirror = os.Stderr
	}
	opts := logging.Options{Dir: c.dataDir(), Level: level}
	if mirror != nil {
		opts.Mirror = mirror
	}
	if err := logging.Init(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
	}
	logging.Info("=== MacroFox Started (%s) ===", cmd.CommandPath())
	return nil
}

func (c *cli) dataDir() string {
	return c.v.GetString(keyDataDir)
}

func (c *cli) settingsPath() string {
	return settings.Path(c.dataDir())
}

func (c *cli) timing() macro.Timing {
	return macro.Timing{
		Grace:   c.v.GetDuration(keyGrace),
		Fast:    c.v.GetDuration(keyFast),
		Slow:    c.v.GetDuration(keySlow),
		Refresh: c.v.GetDuration(keyRefresh),
	}
}
