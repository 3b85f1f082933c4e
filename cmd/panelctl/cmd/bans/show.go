package bans

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/minestax-uz/web/cmd/panelctl/internal/cmdutil"
	"github.com/minestax-uz/web/pkg/sdk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <ban-id>",
	Short: "Show a ban with its evidence and comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("ban", args[0])
		if err != nil {
			return err
		}
		if _, err := cmdutil.RequireRoute(cmd.Context(), "/bans", "view bans"); err != nil {
			return err
		}
		c, err := cmdutil.Client(cmd.Context())
		if err != nil {
			return err
		}

		ctx, cancel := cmdutil.WithTimeout(cmd.Context())
		defer cancel()

		ban, err := c.BanDetails(ctx, id)
		if err != nil {
			return cmdutil.Explain(err)
		}
		printBan(ban)
		return nil
	},
}

func printBan(ban *sdk.Ban) {
	pterm.DefaultSection.Printf("Ban #%d\n", ban.ID)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Player:\t%s\n", ban.PlayerName)
	fmt.Fprintf(w, "Banned by:\t%s\n", ban.AdminName)
	fmt.Fprintf(w, "Reason:\t%s\n", ban.Reason)
	fmt.Fprintf(w, "Date:\t%s\n", ban.FormattedTime)
	if ban.FormattedUntil != "" {
		fmt.Fprintf(w, "Until:\t%s\n", ban.FormattedUntil)
	}
	fmt.Fprintf(w, "Status:\t%s\n", ban.Status)
	if ban.UnbannedByName != "" {
		fmt.Fprintf(w, "Unbanned by:\t%s\n", ban.UnbannedByName)
	}
	_ = w.Flush()

	pterm.DefaultSection.WithLevel(2).Printf("Evidence (%d)\n", len(ban.Proofs))
	for _, p := range ban.Proofs {
		fmt.Printf("  #%d  %-5s  %s  (%s, %s)\n", p.ID, p.Type, p.URL, p.AdminName, p.CreatedAt)
	}

	pterm.DefaultSection.WithLevel(2).Printf("Comments (%d)\n", len(ban.Comments))
	for _, c := range ban.Comments {
		fmt.Printf("  #%d  %s  %s\n      %s\n", c.ID, c.Author(), c.CreatedAt, c.Body())
	}
}
