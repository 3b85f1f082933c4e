package auth

import (
	"context"

	"github.com/minestax-uz/web/cmd/panelctl/internal/config"
	"github.com/minestax-uz/web/pkg/sdk"
	"github.com/spf13/cobra"
)

// AuthCmd is the parent command for auth operations
var AuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long:  `Commands for logging in and out of the staff panel and inspecting the current session.`,
}

func init() {
	AuthCmd.AddCommand(loginCmd)
	AuthCmd.AddCommand(logoutCmd)
	AuthCmd.AddCommand(statusCmd)
	AuthCmd.AddCommand(tokenCmd)
}

func session(ctx context.Context) (*sdk.Session, error) {
	cfg := config.MustFromContext(ctx)
	return cfg.ClientProvider.Session(ctx)
}
