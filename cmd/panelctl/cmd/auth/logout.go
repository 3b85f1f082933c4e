package auth

import (
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out from the staff panel",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session(cmd.Context())
		if err != nil {
			return err
		}

		if err := s.Logout(cmd.Context()); err != nil {
			return fmt.Errorf("failed to delete credentials: %w", err)
		}

		pterm.Success.Println("Logged out successfully")
		return nil
	},
}

func readAllTrim(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}
