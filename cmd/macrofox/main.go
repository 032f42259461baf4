// Package main - main.go
//
// This file contains the MacroFox entry point.
//
// Startup Sequence:
//  1. Install panic recovery (logs, exits with code 2)
//  2. Build the cobra command tree (root.go)
//  3. PersistentPreRunE resolves configuration and initializes the logger
//  4. The selected command runs: tray (default), run, catalog or preset
//
// Exit Codes:
//   - 0: normal exit
//   - 1: command error (bad flags, unknown preset, dispatcher failure)
//   - 2: panic
package main

import (
	"fmt"
	"os"

	"macrofox/internal/logging"
)

func main() {
	// Recover from panics
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "PANIC: %v\n", r)
			logging.Error("PANIC in main: %v", r)
			logging.Close()
			os.Exit(2)
		}
	}()

	err := newRootCommand().Execute()
	logging.Info("=== MacroFox Shutdown ===")
	logging.Close()
	if err != nil {
		os.Exit(1)
	}
}
