package players

import (
	"fmt"

	"github.com/minestax-uz/web/cmd/panelctl/internal/cmdutil"
	"github.com/minestax-uz/web/pkg/sdk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	page   int
	search string
	status string
)

// PlayersCmd lists the player roster
var PlayersCmd = &cobra.Command{
	Use:   "players",
	Short: "Browse the player roster",
	Long: `Lists players known to the panel. Requires the moderator role.

The --status filter is applied by the API when it supports it and locally otherwise.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := sdk.ParsePlayerStatus(status)
		if err != nil {
			return err
		}
		if _, err := cmdutil.RequireRoute(cmd.Context(), "/players", "browse players"); err != nil {
			return err
		}
		c, err := cmdutil.Client(cmd.Context())
		if err != nil {
			return err
		}

		ctx, cancel := cmdutil.WithTimeout(cmd.Context())
		defer cancel()

		result, err := c.ListPlayers(ctx, page, search, st)
		if err != nil {
			return cmdutil.Explain(err)
		}
		if len(result.Items) == 0 {
			pterm.Info.Println("No players found")
			return nil
		}

		data := pterm.TableData{{"USERNAME", "STATUS", "PLAYTIME", "LAST LOGIN", "FIRST JOIN"}}
		for _, p := range result.Items {
			data = append(data, []string{p.Username, string(p.Status), p.Playtime, p.LastLogin, p.FirstJoin})
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Page %d of %d\n", result.Page, result.TotalPages)
		return nil
	},
}

func init() {
	PlayersCmd.Flags().IntVarP(&page, "page", "p", 1, "Page number")
	PlayersCmd.Flags().StringVarP(&search, "search", "s", "", "Filter by username")
	PlayersCmd.Flags().StringVar(&status, "status", "all", "Filter by status: all, online or offline")
}
