package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"macrofox/internal/logging"
	"macrofox/internal/macro"
	"macrofox/internal/preset"
	"macrofox/internal/settings"
)

// newPresetCommand creates the preset subcommand
func newPresetCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset",
		Short: "Manage hotbar presets",
	}

	store := func() (*preset.Store, error) {
		return preset.NewStore(c.dataDir(), logging.Default())
	}
	colors := func() settings.Colors {
		return settings.Theme(settings.Load(c.settingsPath(), logging.Default()).Theme).Colors()
	}

	// preset list
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List built-in and saved presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store()
			if err != nil {
				return err
			}
			names, err := s.List()
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	})

	// preset show
	cmd.AddCommand(&cobra.Command{
		Use:   "show NAME",
		Short: "Show the slots of a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store()
			if err != nil {
				return err
			}
			p, err := s.Load(args[0])
			if err != nil {
				return err
			}
			printPreset(cmd.OutOrStdout(), p, colors())
			return nil
		},
	})

	// preset save
	cmd.AddCommand(&cobra.Command{
		Use:   "save NAME ITEM...",
		Short: "Save a preset; up to 7 items by slot, \"empty\" leaves a slot free",
		Args:  cobra.RangeArgs(2, 1+preset.SlotCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store()
			if err != nil {
				return err
			}
			for _, item := range args[1:] {
				if item != preset.Empty && !macro.IsKnownItem(macro.ItemID(item)) {
					return fmt.Errorf("unknown item %q (see macrofox catalog)", item)
				}
			}
			p := preset.Preset{Name: args[0], Slots: args[1:]}
			if err := s.Save(p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", s.Path(args[0]))
			return nil
		},
	})

	// preset delete
	cmd.AddCommand(&cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a saved preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store()
			if err != nil {
				return err
			}
			return s.Delete(args[0])
		},
	})

	return cmd
}

func printPreset(out io.Writer, p preset.Preset, colors settings.Colors) {
	p = p.Normalized()
	fmt.Fprintln(out, colors.Bold(p.Name))
	for i, id := range p.Slots {
		switch {
		case id == preset.Empty:
			fmt.Fprintln(out, colors.Hint(fmt.Sprintf("  %d: (empty)", i+1)))
		case !macro.IsKnownItem(macro.ItemID(id)):
			fmt.Fprintln(out, colors.Danger(fmt.Sprintf("  %d: %s (unknown, skipped)", i+1, id)))
		default:
			fmt.Fprintf(out, "  %d: %s\n", i+1, colors.Primary(id))
		}
	}
}
