package bans

import (
	"fmt"
	"strconv"

	"github.com/minestax-uz/web/cmd/panelctl/internal/cmdutil"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	listPage   int
	listSearch string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List bans",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := cmdutil.RequireRoute(cmd.Context(), "/bans", "view bans"); err != nil {
			return err
		}
		c, err := cmdutil.Client(cmd.Context())
		if err != nil {
			return err
		}

		ctx, cancel := cmdutil.WithTimeout(cmd.Context())
		defer cancel()

		page, err := c.ListBans(ctx, listPage, listSearch)
		if err != nil {
			return cmdutil.Explain(err)
		}

		if len(page.Items) == 0 {
			pterm.Info.Println("No bans found")
			return nil
		}

		data := pterm.TableData{{"ID", "PLAYER", "BANNED BY", "REASON", "DATE", "STATUS"}}
		for _, b := range page.Items {
			data = append(data, []string{
				strconv.FormatInt(b.ID, 10), b.PlayerName, b.AdminName, b.Reason, b.FormattedTime, string(b.Status),
			})
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Page %d of %d (%d bans)\n", page.Page, page.TotalPages, page.Total)
		return nil
	},
}

func init() {
	listCmd.Flags().IntVarP(&listPage, "page", "p", 1, "Page number")
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Filter by player name or reason")
}
