// Package settings - settings.go
//
// This file implements loading and saving of the user settings file
// (settings.json in the data directory).
//
// File Format:
// JSON with 2-space indentation:
//
//	{
//	  "theme": "light",
//	  "always_on_top": false
//	}
//
// Load Behavior:
//   - Missing file: defaults (theme light, always_on_top false)
//   - Corrupted file: logged, defaults
//   - Unknown theme: replaced by light
//   - MACROFOX_THEME / MACROFOX_ALWAYS_ON_TOP override the file
//
// Save Triggers:
//   - Theme or always-on-top changed from the tray
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"macrofox/internal/logging"
)

// FileName is the settings file name inside the data directory.
const FileName = "settings.json"

// EnvPrefix prefixes environment overrides.
const EnvPrefix = "MACROFOX"

const (
	keyTheme       = "theme"
	keyAlwaysOnTop = "always_on_top"
)

// Settings holds user preferences.
type Settings struct {
	Theme       string `json:"theme"`
	AlwaysOnTop bool   `json:"always_on_top"`
}

// Default returns the settings used when no file exists.
func Default() Settings {
	return Settings{Theme: DefaultTheme, AlwaysOnTop: false}
}

// Path returns the settings file path inside dir.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// Load reads settings from path. Missing or malformed files yield defaults;
// Load never fails.
func Load(path string, logger logging.Logger) Settings {
	logger = logging.OrNop(logger)

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound) {
			logger.Info("No settings file at %s, using defaults", path)
		} else {
			logger.Warn("Failed to read settings file, using defaults: %v", err)
			v = newViper()
		}
	}

	s := Settings{
		Theme:       strings.ToLower(strings.TrimSpace(v.GetString(keyTheme))),
		AlwaysOnTop: v.GetBool(keyAlwaysOnTop),
	}
	if !IsTheme(s.Theme) {
		logger.Warn("Unknown theme %q, using %s", s.Theme, DefaultTheme)
		s.Theme = DefaultTheme
	}
	return s
}

// newViper returns a viper instance carrying defaults and environment
// overrides.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(keyTheme, DefaultTheme)
	v.SetDefault(keyAlwaysOnTop, false)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	return v
}

// Save writes s to path with 2-space indentation, creating the directory.
func Save(path string, s Settings, logger logging.Logger) error {
	if !IsTheme(s.Theme) {
		s.Theme = DefaultTheme
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create settings file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(s); err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	logging.OrNop(logger).Info("Settings saved to %s", path)
	return nil
}
