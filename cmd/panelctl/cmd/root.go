package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/minestax-uz/web/cmd/panelctl/cmd/auth"
	"github.com/minestax-uz/web/cmd/panelctl/cmd/bans"
	"github.com/minestax-uz/web/cmd/panelctl/cmd/players"
	"github.com/minestax-uz/web/cmd/panelctl/cmd/profile"
	"github.com/minestax-uz/web/cmd/panelctl/cmd/server"
	"github.com/minestax-uz/web/cmd/panelctl/cmd/staff"
	"github.com/minestax-uz/web/cmd/panelctl/cmd/stats"
	credstore "github.com/minestax-uz/web/cmd/panelctl/internal/auth"
	"github.com/minestax-uz/web/cmd/panelctl/internal/client"
	"github.com/minestax-uz/web/cmd/panelctl/internal/config"
	panellog "github.com/minestax-uz/web/cmd/panelctl/internal/log"
	"github.com/minestax-uz/web/pkg/sdk"
	"github.com/spf13/cobra"
)

var (
	cfgFile     string
	bearerToken string
	v           = config.NewViper()
)

var rootCmd = &cobra.Command{
	Use:   "panelctl",
	Short: "Staff panel CLI - game server moderation client",
	Long: `panelctl is the command-line interface for the game server staff panel.
Use it to log in, review bans and their evidence, browse players and statistics,
and manage staff permissions.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile != "" {
			v.SetConfigFile(cfgFile)
		}
		// PANEL_NON_INTERACTIVE=1 is honoured through the env binding.
		settings, err := config.Load(v)
		if err != nil {
			return err
		}

		logger := panellog.New(settings.Log.Level)
		provider := client.NewProvider(client.Options{
			ServerURL: settings.Server,
			Timeout:   settings.Timeout,
			Demo:      settings.Demo,
			Logger:    logger,
			OpenStore: storeOpener(settings),
		})
		if bearerToken != "" {
			provider.SetBearerToken(bearerToken)
		}

		cfg := &config.GlobalConfig{
			Settings:       settings,
			Logger:         logger,
			ClientProvider: provider,
		}
		cmd.SetContext(config.InjectConfig(cmd.Context(), cfg))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if cfg, ok := config.FromContext(cmd.Context()); ok {
			return cfg.ClientProvider.Close()
		}
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func storeOpener(settings *config.Settings) client.StoreOpener {
	return func(ctx context.Context) (sdk.CredentialStore, error) {
		dir := settings.Store.Path
		if dir == "" {
			var err error
			if dir, err = config.Dir(); err != nil {
				return nil, err
			}
		}
		return credstore.OpenStore(ctx, credstore.StoreOptions{
			Backend: settings.Store.Backend,
			Dir:     filepath.Clean(dir),
			Redis: credstore.RedisOptions{
				Addr:     settings.Store.Redis.Addr,
				Password: settings.Store.Redis.Password,
				DB:       settings.Store.Redis.DB,
				Prefix:   settings.Store.Redis.Prefix,
				Profile:  settings.Store.Redis.Profile,
			},
		})
	}
}

func bindFlag(key, flag string) {
	if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", flag, err))
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default $HOME/.panel/config.yaml)")
	flags.String("server", "http://localhost:3000", "Panel API server URL")
	flags.StringP("game-server", "g", "anarxiya", "Game server: anarxiya, survival or boxpvp")
	flags.Duration("timeout", 10*time.Second, "Per-command API timeout")
	flags.Bool("demo", false, "Show demo data when the API cannot be reached")
	flags.String("store", "file", "Credential store backend: file or redis")
	flags.String("log-level", "warn", "Diagnostic log level")
	flags.Bool("non-interactive", false, "Disable interactive prompts (also set via PANEL_NON_INTERACTIVE=1)")
	flags.StringVar(&bearerToken, "token", os.Getenv("PANEL_TOKEN"), "Use this access token instead of the stored session")

	bindFlag("server", "server")
	bindFlag("game_server", "game-server")
	bindFlag("demo", "demo")
	bindFlag("store.backend", "store")
	bindFlag("log.level", "log-level")
	bindFlag("non_interactive", "non-interactive")
	bindFlag("timeout", "timeout")

	rootCmd.AddCommand(auth.AuthCmd)
	rootCmd.AddCommand(bans.BansCmd)
	rootCmd.AddCommand(players.PlayersCmd)
	rootCmd.AddCommand(stats.StatsCmd)
	rootCmd.AddCommand(server.ServerCmd)
	rootCmd.AddCommand(staff.StaffCmd)
	rootCmd.AddCommand(profile.ProfileCmd)
}
