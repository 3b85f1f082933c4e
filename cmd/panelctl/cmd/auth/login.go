package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/minestax-uz/web/cmd/panelctl/internal/cmdutil"
	"github.com/minestax-uz/web/cmd/panelctl/internal/config"
	"github.com/minestax-uz/web/pkg/sdk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	username      string
	passwordStdin bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the staff panel",
	Long: `Authenticates with the panel API using a username and password.

The access and refresh tokens are stored in the configured credential store
and reused by every other command until you log out or the session expires.

Use --username with --password-stdin (or PANEL_PASSWORD) for non-interactive login.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		user, password, err := readCredentials(cmd, cfg.Settings.NonInteractive)
		if err != nil {
			return err
		}

		s, err := session(cmd.Context())
		if err != nil {
			return err
		}

		ctx, cancel := cmdutil.WithTimeout(cmd.Context())
		defer cancel()

		principal, err := s.Login(ctx, user, password)
		if err != nil {
			if errors.Is(err, sdk.ErrNetwork) {
				return fmt.Errorf("cannot reach %s: %w", cfg.Settings.Server, err)
			}
			return err
		}

		pterm.Success.Printf("Logged in as %s (%s)\n", principal.DisplayName, principal.Role.Title())
		return nil
	},
}

func readCredentials(cmd *cobra.Command, nonInteractive bool) (string, string, error) {
	user := strings.TrimSpace(username)
	password := os.Getenv("PANEL_PASSWORD")

	if passwordStdin {
		data, err := readAllTrim(cmd.InOrStdin())
		if err != nil {
			return "", "", fmt.Errorf("failed to read password from stdin: %w", err)
		}
		password = data
	}

	if nonInteractive {
		if user == "" || password == "" {
			return "", "", errors.New("--username and a password (--password-stdin or PANEL_PASSWORD) are required in non-interactive mode")
		}
		return user, password, nil
	}

	var err error
	if user == "" {
		user, err = pterm.DefaultInteractiveTextInput.Show("Username")
		if err != nil {
			return "", "", err
		}
	}
	if password == "" {
		password, err = pterm.DefaultInteractiveTextInput.WithMask("*").Show("Password")
		if err != nil {
			return "", "", err
		}
	}
	return strings.TrimSpace(user), password, nil
}

func init() {
	loginCmd.Flags().StringVarP(&username, "username", "u", "", "Panel username")
	loginCmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
}
