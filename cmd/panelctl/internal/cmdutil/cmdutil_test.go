package cmdutil

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/minestax-uz/web/cmd/panelctl/internal/client"
	"github.com/minestax-uz/web/cmd/panelctl/internal/config"
	"github.com/minestax-uz/web/pkg/authz"
	"github.com/minestax-uz/web/pkg/sdk"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// contextAs builds a command context logged in as username with role. An
// empty role means no session.
func contextAs(t *testing.T, username, role string) context.Context {
	t.Helper()
	provider := client.NewProvider(client.Options{ServerURL: "http://127.0.0.1:1", Logger: zerolog.Nop()})
	if role != "" {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"id": "7", "username": username, "role": role,
		}).SignedString([]byte("test-secret"))
		require.NoError(t, err)
		provider.SetBearerToken(token)
	}
	return config.InjectConfig(context.Background(), &config.GlobalConfig{
		Settings: &config.Settings{
			Server:     "http://127.0.0.1:1",
			GameServer: sdk.ServerSurvival,
			Timeout:    3 * time.Second,
		},
		Logger:         zerolog.Nop(),
		ClientProvider: provider,
	})
}

func TestDecisionError(t *testing.T) {
	assert.NoError(t, DecisionError(authz.Allow, "x"))
	assert.ErrorIs(t, DecisionError(authz.DenyNoSession, "x"), ErrLoginRequired)

	err := DecisionError(authz.DenyInsufficientRole, "view staff")
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Contains(t, err.Error(), "view staff")
}

func TestExplain(t *testing.T) {
	assert.NoError(t, Explain(nil))
	assert.ErrorIs(t, Explain(sdk.ErrRefreshFailed), ErrLoginRequired)
	assert.ErrorIs(t, Explain(fmt.Errorf("list: %w", sdk.ErrNoSession)), ErrLoginRequired)

	other := errors.New("boom")
	assert.Same(t, other, Explain(other))
}

func TestRequireWithoutSession(t *testing.T) {
	ctx := contextAs(t, "", "")

	_, err := RequireRoute(ctx, "/bans", "view bans")
	assert.ErrorIs(t, err, ErrLoginRequired)
	_, err = RequireCapability(ctx, authz.ProfileUpdate, "change the password")
	assert.ErrorIs(t, err, ErrLoginRequired)
	_, err = Principal(ctx)
	assert.ErrorIs(t, err, ErrLoginRequired)

	p, err := RequireRoute(ctx, "/login", "log in")
	require.NoError(t, err, "public routes need no session")
	assert.Nil(t, p)
}

func TestRequireByRole(t *testing.T) {
	cases := []struct {
		role       string
		capability authz.Capability
		allowed    bool
	}{
		{"user", authz.ProfileUpdate, true},
		{"user", authz.BanComment, false},
		{"moder", authz.BanComment, true},
		{"moder", authz.StaffView, false},
		{"admin", authz.StaffPermissionAdd, true},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s/%s", tc.role, tc.capability), func(t *testing.T) {
			ctx := contextAs(t, "Steve", tc.role)
			p, err := RequireCapability(ctx, tc.capability, "act")
			if !tc.allowed {
				assert.ErrorIs(t, err, ErrPermissionDenied)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Steve", p.DisplayName)
		})
	}
}

func TestRequireOwnership(t *testing.T) {
	moder := contextAs(t, "Steve", "moder")
	_, err := RequireOwnership(moder, authz.BanCommentDelete, "Steve", "delete this comment")
	assert.NoError(t, err)
	_, err = RequireOwnership(moder, authz.BanCommentDelete, "Alex", "delete this comment")
	assert.ErrorIs(t, err, ErrPermissionDenied)
	_, err = RequireOwnership(moder, authz.BanProofDelete, "", "delete this evidence")
	assert.ErrorIs(t, err, ErrPermissionDenied)

	admin := contextAs(t, "Root", "admin")
	_, err = RequireOwnership(admin, authz.BanProofDelete, "Alex", "delete this evidence")
	assert.NoError(t, err)
}

func TestGameServer(t *testing.T) {
	ctx := contextAs(t, "", "")

	gs, err := GameServer(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, sdk.ServerSurvival, gs)

	gs, err = GameServer(ctx, "boxpvp")
	require.NoError(t, err)
	assert.Equal(t, sdk.ServerBoxPvP, gs)

	_, err = GameServer(ctx, "creative")
	assert.Error(t, err)
}

func TestWithTimeout(t *testing.T) {
	ctx, cancel := WithTimeout(contextAs(t, "", ""))
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(3*time.Second), deadline, time.Second)
}
