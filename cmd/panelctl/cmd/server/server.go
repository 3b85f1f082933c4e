package server

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/minestax-uz/web/cmd/panelctl/internal/cmdutil"
	"github.com/minestax-uz/web/pkg/sdk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var rangeHours int

// ServerCmd is the parent command for game server reports
var ServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Game server overview and leaderboards",
}

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Show the dashboard summary of the game server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := cmdutil.RequireRoute(cmd.Context(), "/dashboard", "view the dashboard"); err != nil {
			return err
		}
		gameServer, err := cmdutil.GameServer(cmd.Context(), "")
		if err != nil {
			return err
		}
		c, err := cmdutil.Client(cmd.Context())
		if err != nil {
			return err
		}

		ctx, cancel := cmdutil.WithTimeout(cmd.Context())
		defer cancel()

		o, err := c.ServerOverview(ctx, gameServer, rangeHours)
		if err != nil {
			return cmdutil.Explain(err)
		}

		pterm.DefaultSection.Printf("%s\n", gameServer)
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "Status:\t%s\n", o.Uptime)
		fmt.Fprintf(w, "Players:\t%d / %d\n", o.OnlinePlayers, o.MaxPlayers)
		fmt.Fprintf(w, "TPS:\t%.2f\n", o.TPS)
		fmt.Fprintf(w, "CPU:\t%.1f%%\n", o.CPUUsage)
		fmt.Fprintf(w, "Memory:\t%.0f / %.0f MB\n", o.MemoryUsage, o.MemoryTotal)
		if err := w.Flush(); err != nil {
			return err
		}

		if len(o.PlayerActivity) > 0 {
			bars := make(pterm.Bars, 0, len(o.PlayerActivity))
			for _, p := range o.PlayerActivity {
				bars = append(bars, pterm.Bar{Label: p.Time, Value: p.Count})
			}
			return pterm.DefaultBarChart.WithBars(bars).WithHorizontal().WithShowValue().Render()
		}
		return nil
	},
}

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Show the playtime and kill leaderboards",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := cmdutil.RequireRoute(cmd.Context(), "/statistics", "view statistics"); err != nil {
			return err
		}
		gameServer, err := cmdutil.GameServer(cmd.Context(), "")
		if err != nil {
			return err
		}
		c, err := cmdutil.Client(cmd.Context())
		if err != nil {
			return err
		}

		ctx, cancel := cmdutil.WithTimeout(cmd.Context())
		defer cancel()

		st, err := c.ServerStatistics(ctx, gameServer, rangeHours)
		if err != nil {
			return cmdutil.Explain(err)
		}

		pterm.DefaultSection.Println("Top playtime")
		if err := renderBoard(st.TopPlayers.ByPlaytime, func(e sdk.LeaderboardEntry) string {
			return fmt.Sprintf("%.1f h", e.Playtime/3600)
		}); err != nil {
			return err
		}
		pterm.DefaultSection.Println("Top kills")
		return renderBoard(st.TopPlayers.ByKills, func(e sdk.LeaderboardEntry) string {
			return strconv.Itoa(e.Kills)
		})
	},
}

func renderBoard(entries []sdk.LeaderboardEntry, value func(sdk.LeaderboardEntry) string) error {
	if len(entries) == 0 {
		pterm.Info.Println("No data")
		return nil
	}
	data := pterm.TableData{{"#", "PLAYER", "VALUE"}}
	for i, e := range entries {
		data = append(data, []string{strconv.Itoa(i + 1), e.Name, value(e)})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func init() {
	ServerCmd.PersistentFlags().IntVar(&rangeHours, "range", sdk.DefaultStatsRange, "Statistics window in hours")
	ServerCmd.AddCommand(overviewCmd)
	ServerCmd.AddCommand(topCmd)
}
