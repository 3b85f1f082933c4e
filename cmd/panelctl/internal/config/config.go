package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/minestax-uz/web/cmd/panelctl/internal/client"
	"github.com/minestax-uz/web/pkg/sdk"
	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type contextKey string

const configKey contextKey = "panelctl-config"

// Store backends.
const (
	StoreFile  = "file"
	StoreRedis = "redis"
)

// RedisSettings locates the shared credential store.
type RedisSettings struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
	// Profile separates credential pairs of operators sharing one redis.
	Profile  string `mapstructure:"profile"`
}

// StoreSettings selects where the credential pair is kept.
type StoreSettings struct {
	Backend string        `mapstructure:"backend"`
	Path    string        `mapstructure:"path"`
	Redis   RedisSettings `mapstructure:"redis"`
}

// LogSettings controls diagnostic logging on stderr.
type LogSettings struct {
	Level string `mapstructure:"level"`
}

// Settings is the decoded configuration file, environment and flags.
type Settings struct {
	Server         string         `mapstructure:"server"`
	GameServer     sdk.GameServer `mapstructure:"game_server"`
	Timeout        time.Duration  `mapstructure:"timeout"`
	Demo           bool           `mapstructure:"demo"`
	NonInteractive bool           `mapstructure:"non_interactive"`
	Store          StoreSettings  `mapstructure:"store"`
	Log            LogSettings    `mapstructure:"log"`
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server", "http://localhost:3000")
	v.SetDefault("game_server", string(sdk.ServerAnarxiya))
	v.SetDefault("timeout", "10s")
	v.SetDefault("demo", false)
	v.SetDefault("non_interactive", false)

	v.SetDefault("store.backend", StoreFile)
	v.SetDefault("store.path", "")
	v.SetDefault("store.redis.addr", "127.0.0.1:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.prefix", "panel")
	v.SetDefault("store.redis.profile", "default")

	v.SetDefault("log.level", "warn")
}

// Dir is the per-user panelctl directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".panel"), nil
}

// NewViper returns a viper instance reading $HOME/.panel/config.yaml and PANEL_* variables.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir, err := Dir(); err == nil {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("PANEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)
	return v
}

// Load reads the config file, if any, and decodes everything into Settings.
func Load(v *viper.Viper) (*Settings, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the settings that cannot be fixed up silently.
func (s *Settings) Validate() error {
	if s.Server == "" {
		return errors.New("server URL is required")
	}
	if _, err := sdk.ParseGameServer(string(s.GameServer)); err != nil {
		return err
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", s.Timeout)
	}
	switch s.Store.Backend {
	case StoreFile, StoreRedis:
	default:
		return fmt.Errorf("unknown credential store backend %q (expected file or redis)", s.Store.Backend)
	}
	if _, err := zerolog.ParseLevel(s.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", s.Log.Level, err)
	}
	return nil
}

// GlobalConfig holds shared configuration for all panelctl commands.
// This is injected into the cobra command context by the root command's
// PersistentPreRunE hook and consumed by all subcommands.
type GlobalConfig struct {
	Settings       *Settings
	Logger         zerolog.Logger
	ClientProvider *client.Provider
}

// InjectConfig adds config to the cobra command context.
func InjectConfig(ctx context.Context, cfg *GlobalConfig) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from the cobra command context.
// Returns (nil, false) if config is not present.
func FromContext(ctx context.Context) (*GlobalConfig, bool) {
	cfg, ok := ctx.Value(configKey).(*GlobalConfig)
	return cfg, ok
}

// MustFromContext retrieves config from context or panics.
// This should only be used in command RunE functions where we know
// the config has been injected by the root command.
func MustFromContext(ctx context.Context) *GlobalConfig {
	cfg, ok := FromContext(ctx)
	if !ok {
		panic("panelctl: config not found in context - this is a bug in panelctl")
	}
	return cfg
}
