package auth

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/minestax-uz/web/cmd/panelctl/internal/cmdutil"
	"github.com/minestax-uz/web/cmd/panelctl/internal/config"
	"github.com/minestax-uz/web/pkg/authz"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// capabilityLabels lists the controls shown in the status report, in display order.
var capabilityLabels = []struct {
	capability authz.Capability
	label      string
}{
	{authz.BanComment, "comment on bans"},
	{authz.BanProofAdd, "attach ban evidence"},
	{authz.BanProofDelete, "delete any ban evidence"},
	{authz.PlayersView, "browse players"},
	{authz.StaffView, "view staff"},
	{authz.StaffPermissionAdd, "grant staff permissions"},
	{authz.ProfileUpdate, "change own password"},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display authentication status",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		s, err := session(cmd.Context())
		if err != nil {
			return err
		}
		principal, ok := s.CurrentPrincipal(cmd.Context())
		if !ok {
			return cmdutil.ErrLoginRequired
		}

		pterm.DefaultSection.Println("Authentication Status")
		pterm.Info.Printf("Server: %s\n", cfg.Settings.Server)
		pterm.Info.Printf("Logged in as: %s\n", principal.DisplayName)
		pterm.Info.Printf("Principal ID: %s\n", principal.ID)
		pterm.Info.Printf("Role: %s\n", principal.Role.Title())
		pterm.Info.Printf("State: %s\n", s.State(cmd.Context()))

		model, err := cfg.ClientProvider.Authz()
		if err != nil {
			return err
		}

		pterm.DefaultSection.Println("Permissions")
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ACTION\tALLOWED")
		for _, c := range capabilityLabels {
			fmt.Fprintf(w, "%s\t%s\n", c.label, yesNo(model.Can(principal, c.capability).Allowed()))
		}
		return w.Flush()
	},
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
