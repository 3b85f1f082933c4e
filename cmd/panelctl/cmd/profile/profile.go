package profile

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/minestax-uz/web/cmd/panelctl/internal/cmdutil"
	"github.com/minestax-uz/web/cmd/panelctl/internal/config"
	"github.com/minestax-uz/web/pkg/authz"
	"github.com/minestax-uz/web/pkg/sdk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// ProfileCmd is the parent command for the caller's own account
var ProfileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show and manage your own account",
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your account",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := cmdutil.RequireRoute(cmd.Context(), "/profile", "view the profile")
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "Username:\t%s\n", p.DisplayName)
		fmt.Fprintf(w, "ID:\t%s\n", p.ID)
		fmt.Fprintf(w, "Role:\t%s\n", p.Role.Title())
		return w.Flush()
	},
}

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Change your password",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		if cfg.Settings.NonInteractive {
			return errors.New("password change requires interactive prompts")
		}
		if _, err := cmdutil.RequireCapability(cmd.Context(), authz.ProfileUpdate, "change the password"); err != nil {
			return err
		}

		input := pterm.DefaultInteractiveTextInput.WithMask("*")
		current, err := input.Show("Current password")
		if err != nil {
			return err
		}
		next, err := input.Show("New password")
		if err != nil {
			return err
		}
		confirm, err := input.Show("Confirm new password")
		if err != nil {
			return err
		}

		c, err := cmdutil.Client(cmd.Context())
		if err != nil {
			return err
		}
		ctx, cancel := cmdutil.WithTimeout(cmd.Context())
		defer cancel()

		err = c.ChangePassword(ctx, sdk.PasswordChange{
			CurrentPassword: current,
			NewPassword:     next,
			Confirm:         confirm,
		})
		if err != nil {
			return cmdutil.Explain(err)
		}
		pterm.Success.Println("Password changed")
		return nil
	},
}

func init() {
	ProfileCmd.AddCommand(showCmd)
	ProfileCmd.AddCommand(passwordCmd)
}
