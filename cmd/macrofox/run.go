package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"macrofox/internal/logging"
	"macrofox/internal/macro"
	"macrofox/internal/metrics"
	"macrofox/internal/settings"
	"macrofox/internal/status"
)

const keyFor = "for"

func newRunCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the scheduler headless, printing status every second",
		Example: `  macrofox run --preset Boost
  macrofox run --preset Boost --dispatcher browser --browser-url http://127.0.0.1:9222
  macrofox run --preset Farm --dispatcher dry-run --for 30s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runHeadless(cmd.Context(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().String(keyPreset, "", "Preset to load before starting")
	cmd.Flags().Duration(keyFor, 0, "Stop after this long (0 runs until interrupted)")
	return cmd
}

// runHeadless starts the engine and runs the status printer and optional
// metrics server in one errgroup until a signal, --for expiry or error.
func (c *cli) runHeadless(parent context.Context, out io.Writer) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if d := c.v.GetDuration(keyFor); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	rt, err := c.newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	if name := c.v.GetString(keyPreset); name != "" {
		if err := applyPreset(rt, name); err != nil {
			return fmt.Errorf("preset %s: %w", name, err)
		}
	}

	colors := settings.Theme(settings.Load(c.settingsPath(), logging.Default()).Theme).Colors()
	rt.engine.Start()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		printStatus(gctx, rt.engine, out, colors)
		return nil
	})
	if addr := c.v.GetString(keyMetricsAddr); addr != "" {
		g.Go(func() error {
			return metrics.Serve(gctx, addr, rt.registry, logging.Default())
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		rt.engine.Stop()
		if done := rt.engine.Done(); done != nil {
			<-done
		}
		return nil
	})

	err = g.Wait()
	activations, _, uptime := rt.engine.Stats().GetStats()
	fmt.Fprintf(out, "%s %d activations in %s\n", colors.Bold("Stopped."), activations, uptime)
	return err
}

// printStatus writes the status line and hotbar once per second.
func printStatus(ctx context.Context, e *macro.Engine, out io.Writer, colors settings.Colors) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		v := e.Snapshot()
		fmt.Fprintln(out, renderState(v.State, colors)+" "+colors.Hint(status.Line(v.State, e.Stats())))
		for _, s := range v.Slots {
			fmt.Fprintln(out, "  "+renderSlot(s, colors))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func renderState(state macro.State, colors settings.Colors) string {
	switch state {
	case macro.StateRunning:
		return colors.Success("●")
	case macro.StatePaused:
		return colors.Warning("●")
	default:
		return colors.Danger("●")
	}
}

func renderSlot(s macro.SlotView, colors settings.Colors) string {
	label := status.SlotLabel(s)
	switch {
	case s.Empty():
		return colors.Hint(label)
	case s.Disabled:
		return colors.Danger(label)
	case s.OnCooldown():
		return colors.Primary(label)
	default:
		return colors.Success(label)
	}
}
