package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"macrofox/internal/logging"
	"macrofox/internal/macro"
	"macrofox/internal/settings"
	"macrofox/internal/utils"
)

func newCatalogCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List every hotbar item and its cooldown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			colors := settings.Theme(settings.Load(c.settingsPath(), logging.Default()).Theme).Colors()
			return printCatalog(cmd.OutOrStdout(), colors)
		},
	}
}

func printCatalog(out io.Writer, colors settings.Colors) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, colors.Bold("ITEM")+"\t"+colors.Bold("COOLDOWN")+"\t"+colors.Bold("DESCRIPTION"))
	for _, it := range macro.Items() {
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			colors.Primary(string(it.ID)),
			utils.FormatDuration(it.Cooldown),
			colors.Hint(it.Description))
	}
	return w.Flush()
}
