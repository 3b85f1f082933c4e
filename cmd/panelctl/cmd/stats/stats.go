package stats

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/minestax-uz/web/cmd/panelctl/internal/cmdutil"
	"github.com/minestax-uz/web/pkg/sdk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var rangeHours int

// StatsCmd shows statistics of a single player
var StatsCmd = &cobra.Command{
	Use:   "stats <player>",
	Short: "Show statistics of a player",
	Args:  cobra.ExactArgs(1),
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

		st, err := c.PlayerStatistics(ctx, gameServer, args[0], rangeHours)
		if err != nil {
			return cmdutil.Explain(err)
		}

		pterm.DefaultSection.Printf("%s on %s\n", st.Username, gameServer)
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "UUID:\t%s\n", st.UUID)
		fmt.Fprintf(w, "Playtime:\t%.1f h\n", st.PlaytimeHours())
		fmt.Fprintf(w, "Kills:\t%d\n", st.Total.Kills)
		fmt.Fprintf(w, "Deaths:\t%d\n", st.Total.Deaths)
		fmt.Fprintf(w, "Mob kills:\t%d\n", st.Total.MobKills)
		if st.Country != "" {
			fmt.Fprintf(w, "Country:\t%s\n", st.Country)
		}
		if st.Registered > 0 {
			fmt.Fprintf(w, "Registered:\t%s\n", formatMillis(st.Registered))
		}
		if st.LastSeen > 0 {
			fmt.Fprintf(w, "Last seen:\t%s\n", formatMillis(st.LastSeen))
		}
		return w.Flush()
	},
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}

func init() {
	StatsCmd.Flags().IntVar(&rangeHours, "range", sdk.DefaultStatsRange, "Statistics window in hours")
}
