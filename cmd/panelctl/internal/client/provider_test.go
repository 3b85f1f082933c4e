package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/minestax-uz/web/pkg/sdk"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mintToken(t *testing.T, username, role string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       "42",
		"username": username,
		"role":     role,
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func failingAPI(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "upstream down"})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestProviderWithoutSession(t *testing.T) {
	p := NewProvider(Options{ServerURL: "http://127.0.0.1:1", Logger: zerolog.Nop()})

	_, err := p.Principal(context.Background())
	assert.ErrorIs(t, err, sdk.ErrNoSession)

	s1, err := p.Session(context.Background())
	require.NoError(t, err)
	s2, err := p.Session(context.Background())
	require.NoError(t, err)
	assert.Same(t, s1, s2)
	assert.Equal(t, sdk.LoggedOut, s1.State(context.Background()))
}

func TestProviderBearerToken(t *testing.T) {
	p := NewProvider(Options{ServerURL: "http://127.0.0.1:1", Logger: zerolog.Nop()})
	p.SetBearerToken(mintToken(t, "Steve", "moder"))

	principal, err := p.Principal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Steve", principal.DisplayName)
	assert.Equal(t, sdk.RoleModerator, principal.Role)

	store, err := p.Store(context.Background())
	require.NoError(t, err)
	_, err = store.Get(context.Background(), sdk.SlotRefreshToken)
	assert.ErrorIs(t, err, sdk.ErrSlotEmpty, "bearer tokens are never paired with a refresh token")
}

func TestProviderStoreOpenError(t *testing.T) {
	p := NewProvider(Options{
		Logger: zerolog.Nop(),
		OpenStore: func(context.Context) (sdk.CredentialStore, error) {
			return nil, errors.New("disk full")
		},
	})

	_, err := p.SDKClient(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open credential store")
	assert.Contains(t, err.Error(), "disk full")
}

func TestProviderDemoFallback(t *testing.T) {
	srv := failingAPI(t)
	token := mintToken(t, "Alex", "admin")

	live := NewProvider(Options{ServerURL: srv.URL, Timeout: time.Second, Logger: zerolog.Nop()})
	live.SetBearerToken(token)
	c, err := live.SDKClient(context.Background())
	require.NoError(t, err)
	_, err = c.ListBans(context.Background(), 1, "")
	require.Error(t, err)

	demo := NewProvider(Options{ServerURL: srv.URL, Timeout: time.Second, Demo: true, Logger: zerolog.Nop()})
	demo.SetBearerToken(token)
	c, err = demo.SDKClient(context.Background())
	require.NoError(t, err)
	page, err := c.ListBans(context.Background(), 1, "")
	require.NoError(t, err)
	assert.NotEmpty(t, page.Items)
}

func TestProviderAuthzIsShared(t *testing.T) {
	p := NewProvider(Options{Logger: zerolog.Nop()})
	m1, err := p.Authz()
	require.NoError(t, err)
	m2, err := p.Authz()
	require.NoError(t, err)
	assert.Same(t, m1, m2)
}

type closingStore struct {
	*sdk.MemoryStore
	closed bool
}

func (c *closingStore) Close() error {
	c.closed = true
	return nil
}

func TestProviderCloseReleasesStore(t *testing.T) {
	store := &closingStore{MemoryStore: sdk.NewMemoryStore()}
	p := NewProvider(Options{
		Logger:    zerolog.Nop(),
		OpenStore: func(context.Context) (sdk.CredentialStore, error) { return store, nil },
	})

	require.NoError(t, p.Close(), "closing before the store is opened is a no-op")
	_, err := p.Store(context.Background())
	require.NoError(t, err)
	require.NoError(t, p.Close())
	assert.True(t, store.closed)
}
