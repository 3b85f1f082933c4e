package cmdutil

import (
	"context"
	"errors"
	"fmt"

	"github.com/minestax-uz/web/cmd/panelctl/internal/config"
	"github.com/minestax-uz/web/pkg/authz"
	"github.com/minestax-uz/web/pkg/sdk"
)

// ErrLoginRequired is returned when a command needs a session and there is none.
var ErrLoginRequired = errors.New("not logged in; please run `panelctl auth login`")

// ErrPermissionDenied is returned when the session role does not allow a command.
var ErrPermissionDenied = errors.New("permission denied")

// DecisionError converts a negative decision into the CLI's equivalent of the
// login and unauthorized views. Allow yields nil.
func DecisionError(d authz.Decision, what string) error {
	switch d {
	case authz.Allow:
		return nil
	case authz.DenyNoSession:
		return ErrLoginRequired
	default:
		return fmt.Errorf("%w: your role cannot %s", ErrPermissionDenied, what)
	}
}

// Explain rewrites session errors into a login hint and leaves others alone.
func Explain(err error) error {
	if err == nil {
		return nil
	}
	if sdk.IsSessionEnded(err) {
		return fmt.Errorf("%w (%v)", ErrLoginRequired, err)
	}
	return err
}

// Client returns the SDK client of the current invocation.
func Client(ctx context.Context) (*sdk.Client, error) {
	cfg := config.MustFromContext(ctx)
	return cfg.ClientProvider.SDKClient(ctx)
}

// Principal returns the logged in principal or ErrLoginRequired.
func Principal(ctx context.Context) (*sdk.Principal, error) {
	cfg := config.MustFromContext(ctx)
	p, err := cfg.ClientProvider.Principal(ctx)
	if err != nil {
		if errors.Is(err, sdk.ErrNoSession) {
			return nil, ErrLoginRequired
		}
		return nil, err
	}
	return p, nil
}

// RequireRoute authorizes access to a dashboard area.
func RequireRoute(ctx context.Context, route, what string) (*sdk.Principal, error) {
	return authorize(ctx, what, func(m *authz.Model, p *sdk.Principal) authz.Decision {
		return m.AuthorizeRoute(p, route)
	})
}

// RequireCapability authorizes a role-gated action.
func RequireCapability(ctx context.Context, capability authz.Capability, what string) (*sdk.Principal, error) {
	return authorize(ctx, what, func(m *authz.Model, p *sdk.Principal) authz.Decision {
		return m.Can(p, capability)
	})
}

// RequireOwnership authorizes an action on a record authored by owner.
func RequireOwnership(ctx context.Context, capability authz.Capability, owner, what string) (*sdk.Principal, error) {
	return authorize(ctx, what, func(m *authz.Model, p *sdk.Principal) authz.Decision {
		return m.CanOn(p, capability, owner)
	})
}

func authorize(ctx context.Context, what string, decide func(*authz.Model, *sdk.Principal) authz.Decision) (*sdk.Principal, error) {
	cfg := config.MustFromContext(ctx)
	model, err := cfg.ClientProvider.Authz()
	if err != nil {
		return nil, err
	}

	p, err := cfg.ClientProvider.Principal(ctx)
	if err != nil && !errors.Is(err, sdk.ErrNoSession) {
		return nil, err
	}

	decision := decide(model, p)
	cfg.Logger.Debug().Str("decision", decision.String()).Str("action", what).Msg("authorization check")
	if err := DecisionError(decision, what); err != nil {
		return nil, err
	}
	return p, nil
}

// WithTimeout bounds a command's API calls by the configured timeout.
func WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	cfg := config.MustFromContext(ctx)
	return context.WithTimeout(ctx, cfg.Settings.Timeout)
}

// GameServer resolves the --server-name flag, falling back to the configured default.
func GameServer(ctx context.Context, flag string) (sdk.GameServer, error) {
	if flag == "" {
		return config.MustFromContext(ctx).Settings.GameServer, nil
	}
	return sdk.ParseGameServer(flag)
}
