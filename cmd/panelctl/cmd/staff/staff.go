package staff

import (
	"strings"

	"github.com/minestax-uz/web/cmd/panelctl/internal/cmdutil"
	"github.com/minestax-uz/web/pkg/authz"
	"github.com/minestax-uz/web/pkg/sdk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// StaffCmd is the parent command for staff administration
var StaffCmd = &cobra.Command{
	Use:   "staff",
	Short: "Staff accounts, permissions and activity (administrators only)",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List staff accounts of the game server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := cmdutil.RequireCapability(cmd.Context(), authz.StaffView, "view staff"); err != nil {
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

		members, err := c.ListStaff(ctx, gameServer)
		if err != nil {
			return cmdutil.Explain(err)
		}
		if len(members) == 0 {
			pterm.Info.Println("No staff found")
			return nil
		}

		data := pterm.TableData{{"USERNAME", "ROLE", "PERMISSIONS", "LAST ACTIVE"}}
		for _, m := range members {
			data = append(data, []string{m.Username, m.Role.Title(), strings.Join(m.Permissions, ", "), m.LastActive})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show the staff activity log",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := cmdutil.RequireCapability(cmd.Context(), authz.StaffView, "view staff activity"); err != nil {
			return err
		}
		c, err := cmdutil.Client(cmd.Context())
		if err != nil {
			return err
		}

		ctx, cancel := cmdutil.WithTimeout(cmd.Context())
		defer cancel()

		logs, err := c.ActivityLogs(ctx)
		if err != nil {
			return cmdutil.Explain(err)
		}
		if len(logs) == 0 {
			pterm.Info.Println("No activity recorded")
			return nil
		}

		data := pterm.TableData{{"TIME", "USER", "ACTION", "TARGET"}}
		for _, l := range logs {
			data = append(data, []string{l.Timestamp, l.Username, l.Action, l.Target})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

var grantCmd = &cobra.Command{
	Use:   "grant <username> <permission>",
	Short: "Grant a permission node to a staff member",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := cmdutil.RequireCapability(cmd.Context(), authz.StaffPermissionAdd, "grant staff permissions"); err != nil {
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

		err = c.AddPermission(ctx, sdk.PermissionInput{
			Username:   args[0],
			Permission: args[1],
			Server:     gameServer,
		})
		if err != nil {
			return cmdutil.Explain(err)
		}
		pterm.Success.Printf("Granted %s to %s on %s\n", args[1], args[0], gameServer)
		return nil
	},
}

func init() {
	StaffCmd.AddCommand(listCmd)
	StaffCmd.AddCommand(logsCmd)
	StaffCmd.AddCommand(grantCmd)
}
