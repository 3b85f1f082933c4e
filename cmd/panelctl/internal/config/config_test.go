package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/minestax-uz/web/pkg/sdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolatedHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestLoadDefaults(t *testing.T) {
	isolatedHome(t)

	s, err := Load(NewViper())
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000", s.Server)
	assert.Equal(t, sdk.ServerAnarxiya, s.GameServer)
	assert.Equal(t, 10*time.Second, s.Timeout)
	assert.Equal(t, StoreFile, s.Store.Backend)
	assert.Equal(t, "panel", s.Store.Redis.Prefix)
	assert.Equal(t, "default", s.Store.Redis.Profile)
	assert.Empty(t, s.Store.Redis.Password)
	assert.Equal(t, "warn", s.Log.Level)
	assert.False(t, s.Demo)
}

func TestLoadConfigFile(t *testing.T) {
	home := isolatedHome(t)
	dir := filepath.Join(home, ".panel")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
server: https://panel.example.org
game_server: boxpvp
timeout: 30s
demo: true
store:
  backend: redis
  redis:
    addr: redis:6379
    db: 2
log:
  level: debug
`), 0600))

	s, err := Load(NewViper())
	require.NoError(t, err)

	assert.Equal(t, "https://panel.example.org", s.Server)
	assert.Equal(t, sdk.ServerBoxPvP, s.GameServer)
	assert.Equal(t, 30*time.Second, s.Timeout)
	assert.True(t, s.Demo)
	assert.Equal(t, StoreRedis, s.Store.Backend)
	assert.Equal(t, "redis:6379", s.Store.Redis.Addr)
	assert.Equal(t, 2, s.Store.Redis.DB)
	assert.Equal(t, "debug", s.Log.Level)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	isolatedHome(t)
	t.Setenv("PANEL_GAME_SERVER", "survival")
	t.Setenv("PANEL_TIMEOUT", "2s")
	t.Setenv("PANEL_STORE_BACKEND", "redis")
	t.Setenv("PANEL_NON_INTERACTIVE", "true")

	s, err := Load(NewViper())
	require.NoError(t, err)

	assert.Equal(t, sdk.ServerSurvival, s.GameServer)
	assert.Equal(t, 2*time.Second, s.Timeout)
	assert.Equal(t, StoreRedis, s.Store.Backend)
	assert.True(t, s.NonInteractive)
}

func TestLoadRedisSettingsFromEnvironment(t *testing.T) {
	isolatedHome(t)
	t.Setenv("PANEL_STORE_REDIS_ADDR", "redis.internal:6380")
	t.Setenv("PANEL_STORE_REDIS_PASSWORD", "s3cret")
	t.Setenv("PANEL_STORE_REDIS_DB", "3")
	t.Setenv("PANEL_STORE_REDIS_PREFIX", "ops")
	t.Setenv("PANEL_STORE_REDIS_PROFILE", "night-shift")

	s, err := Load(NewViper())
	require.NoError(t, err)

	assert.Equal(t, RedisSettings{
		Addr:     "redis.internal:6380",
		Password: "s3cret",
		DB:       3,
		Prefix:   "ops",
		Profile:  "night-shift",
	}, s.Store.Redis)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	home := isolatedHome(t)
	path := filepath.Join(home, "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0600))

	v := NewViper()
	v.SetConfigFile(path)
	_, err := Load(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config file")
}

func TestValidate(t *testing.T) {
	valid := func() Settings {
		return Settings{
			Server:     "http://localhost:3000",
			GameServer: sdk.ServerAnarxiya,
			Timeout:    time.Second,
			Store:      StoreSettings{Backend: StoreFile},
			Log:        LogSettings{Level: "info"},
		}
	}

	s := valid()
	require.NoError(t, s.Validate())

	cases := []struct {
		name   string
		mutate func(*Settings)
		want   string
	}{
		{"missing server", func(s *Settings) { s.Server = "" }, "server URL is required"},
		{"unknown game server", func(s *Settings) { s.GameServer = "skyblock" }, "unknown game server"},
		{"zero timeout", func(s *Settings) { s.Timeout = 0 }, "timeout must be positive"},
		{"unknown backend", func(s *Settings) { s.Store.Backend = "etcd" }, "unknown credential store backend"},
		{"bad log level", func(s *Settings) { s.Log.Level = "loud" }, "invalid log level"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := valid()
			tc.mutate(&s)
			err := s.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestContextRoundTrip(t *testing.T) {
	_, ok := FromContext(t.Context())
	assert.False(t, ok)
	assert.Panics(t, func() { MustFromContext(t.Context()) })

	cfg := &GlobalConfig{Settings: &Settings{Server: "x"}}
	ctx := InjectConfig(t.Context(), cfg)
	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, cfg, got)
}
