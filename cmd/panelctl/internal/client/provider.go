package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/minestax-uz/web/pkg/authz"
	"github.com/minestax-uz/web/pkg/sdk"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// StoreOpener opens the durable credential store.
type StoreOpener func(ctx context.Context) (sdk.CredentialStore, error)

// Options configures a Provider.
type Options struct {
	ServerURL string
	Timeout   time.Duration
	// Demo enables the demo data fallback for API failures.
	Demo      bool
	Logger    zerolog.Logger
	OpenStore StoreOpener
}

// Provider lazily yields the credential store, session, SDK client and
// authorization model shared by all commands of one invocation.
type Provider struct {
	opts        Options
	bearerToken string // ephemeral token that bypasses the credential store

	storeOnce sync.Once
	store     sdk.CredentialStore
	storeErr  error

	sessionOnce sync.Once
	session     *sdk.Session

	sdkOnce   sync.Once
	sdkClient *sdk.Client
	sdkErr    error

	modelOnce sync.Once
	model     *authz.Model
	modelErr  error

	endWarnOnce sync.Once
}

// NewProvider constructs a new Provider.
func NewProvider(opts Options) *Provider {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Provider{opts: opts}
}

// ServerURL is the panel API base URL.
func (p *Provider) ServerURL() string {
	return p.opts.ServerURL
}

// SetBearerToken injects an ephemeral access token (for CI and scripting).
// The token is held in memory only and cannot be refreshed.
func (p *Provider) SetBearerToken(token string) {
	p.bearerToken = token
}

// Store returns the credential store.
func (p *Provider) Store(ctx context.Context) (sdk.CredentialStore, error) {
	p.storeOnce.Do(func() {
		if p.bearerToken != "" {
			mem := sdk.NewMemoryStore()
			p.storeErr = mem.Set(ctx, sdk.SlotAccessToken, p.bearerToken)
			p.store = mem
			return
		}
		if p.opts.OpenStore == nil {
			p.store = sdk.NewMemoryStore()
			return
		}
		p.store, p.storeErr = p.opts.OpenStore(ctx)
		if p.storeErr != nil {
			p.storeErr = fmt.Errorf("failed to open credential store: %w", p.storeErr)
		}
	})
	return p.store, p.storeErr
}

// Session returns the session manager bound to the credential store.
func (p *Provider) Session(ctx context.Context) (*sdk.Session, error) {
	store, err := p.Store(ctx)
	if err != nil {
		return nil, err
	}
	p.sessionOnce.Do(func() {
		p.session = sdk.NewSession(p.opts.ServerURL, store,
			sdk.WithSessionHTTPClient(p.httpClient()),
			sdk.WithSessionLogger(p.opts.Logger),
			sdk.WithOnSessionEnd(func(err error) {
				p.endWarnOnce.Do(func() {
					pterm.Warning.Println("Session ended; please run `panelctl auth login`.")
				})
				p.opts.Logger.Debug().Err(err).Msg("session ended")
			}),
		)
	})
	return p.session, nil
}

// SDKClient returns an API client that authenticates through the session.
func (p *Provider) SDKClient(ctx context.Context) (*sdk.Client, error) {
	p.sdkOnce.Do(func() {
		session, err := p.Session(ctx)
		if err != nil {
			p.sdkErr = err
			return
		}

		opts := []sdk.ClientOption{
			sdk.WithHTTPClient(p.httpClient()),
			sdk.WithSession(session),
			sdk.WithLogger(p.opts.Logger),
		}
		if p.opts.Demo {
			opts = append(opts, sdk.WithFallback(sdk.NewDemoProvider()))
		}
		p.sdkClient = sdk.NewClient(p.opts.ServerURL, opts...)
	})

	if p.sdkErr != nil {
		return nil, p.sdkErr
	}
	return p.sdkClient, nil
}

// Principal returns the logged in principal, or sdk.ErrNoSession.
func (p *Provider) Principal(ctx context.Context) (*sdk.Principal, error) {
	session, err := p.Session(ctx)
	if err != nil {
		return nil, err
	}
	principal, ok := session.CurrentPrincipal(ctx)
	if !ok {
		return nil, sdk.ErrNoSession
	}
	return principal, nil
}

// Authz returns the authorization model.
func (p *Provider) Authz() (*authz.Model, error) {
	p.modelOnce.Do(func() {
		p.model, p.modelErr = authz.NewModel()
	})
	return p.model, p.modelErr
}

// Close releases the credential store if it holds resources.
func (p *Provider) Close() error {
	if c, ok := p.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (p *Provider) httpClient() *http.Client {
	return &http.Client{Timeout: p.opts.Timeout}
}
