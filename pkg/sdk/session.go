package sdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// SessionState is the lifecycle state shared by the session and the views.
type SessionState int

const (
	LoggedOut SessionState = iota
	LoggedIn
	Refreshing
)

func (s SessionState) String() string {
	switch s {
	case LoggedIn:
		return "logged-in"
	case Refreshing:
		return "refreshing"
	default:
		return "logged-out"
	}
}

// RetryFunc replays a request that has already been re-authorized.
type RetryFunc func(req *http.Request) (*http.Response, error)

// Session owns the credential pair: it attaches the access token to outgoing
// requests and recovers from an expired access token with a single shared
// refresh followed by one replay per failed request.
//
// A Session is safe for concurrent use.
type Session struct {
	store  CredentialStore
	auth   *authEndpoints
	logger zerolog.Logger
	onEnd  func(error)

	refreshes  singleflight.Group
	refreshing atomic.Bool
	refreshN   atomic.Int64
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionHTTPClient overrides the client used for the login and refresh calls.
func WithSessionHTTPClient(client *http.Client) SessionOption {
	return func(s *Session) {
		s.auth.http = client
	}
}

// WithSessionLogger sets the logger. The default discards everything.
func WithSessionLogger(logger zerolog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithOnSessionEnd registers a hook that runs whenever the stored credentials
// are dropped because there is no session or the refresh failed. Front ends use
// it to send the user back to the login view.
func WithOnSessionEnd(fn func(error)) SessionOption {
	return func(s *Session) {
		s.onEnd = fn
	}
}

// NewSession creates a Session for the panel API at baseURL backed by store.
func NewSession(baseURL string, store CredentialStore, opts ...SessionOption) *Session {
	s := &Session{
		store: store,
		auth: &authEndpoints{
			baseURL:  baseURL,
			http:     defaultHTTPClient(),
			validate: validator.New(),
		},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Attach returns a copy of req carrying the stored access token as a bearer
// Authorization header. Without a stored token req is returned unchanged.
func (s *Session) Attach(req *http.Request) *http.Request {
	token, err := s.store.Get(req.Context(), SlotAccessToken)
	if err != nil || token == "" {
		return req
	}
	out := req.Clone(req.Context())
	setBearer(out, token)
	return out
}

// HandleUnauthorized recovers a request that came back with 401. The request
// is replayed through retry at most once. Concurrent callers share a single
// refresh call; the refresh state is cleared before any of them is released.
func (s *Session) HandleUnauthorized(failed *http.Request, retry RetryFunc) (*http.Response, error) {
	ctx := failed.Context()

	if isRetried(ctx) {
		return nil, &AuthError{Kind: RefreshFailed, Err: errors.New("request still unauthorized after token refresh")}
	}

	if _, err := s.store.Get(ctx, SlotRefreshToken); err != nil {
		s.endSession(ctx, &AuthError{Kind: NoSession, Err: err})
		return nil, &AuthError{Kind: NoSession, Err: err}
	}

	// A refresh may have completed between sending this request and its
	// failure; replay with the newer token instead of refreshing again.
	if current, err := s.store.Get(ctx, SlotAccessToken); err == nil && current != bearerToken(failed) {
		s.logger.Debug().Str("method", failed.Method).Str("path", failed.URL.Path).Msg("replaying with token from completed refresh")
		return s.replay(failed, current, retry)
	}

	token, err := s.refresh(ctx, bearerToken(failed))
	if err != nil {
		return nil, err
	}
	return s.replay(failed, token, retry)
}

func (s *Session) refresh(ctx context.Context, staleToken string) (string, error) {
	ch := s.refreshes.DoChan("refresh", func() (any, error) {
		// The refresh outlives the request that triggered it: other waiters
		// depend on its outcome.
		rctx := context.WithoutCancel(ctx)

		// A previous flight may have finished after the caller looked at the store.
		if current, err := s.store.Get(rctx, SlotAccessToken); err == nil && current != staleToken {
			return current, nil
		}
		refreshToken, err := s.store.Get(rctx, SlotRefreshToken)
		if err != nil {
			return "", &AuthError{Kind: NoSession, Err: err}
		}

		s.refreshing.Store(true)
		defer s.refreshing.Store(false)
		s.refreshN.Add(1)

		s.logger.Debug().Msg("refreshing access token")
		result, err := s.auth.refresh(rctx, refreshToken)
		if err != nil {
			authErr := &AuthError{Kind: RefreshFailed, Err: err}
			s.logger.Warn().Err(err).Msg("token refresh failed")
			s.endSession(rctx, authErr)
			return "", authErr
		}

		if err := s.store.Set(rctx, SlotAccessToken, result.AccessToken); err != nil {
			return "", &AuthError{Kind: RefreshFailed, Err: fmt.Errorf("persist access token: %w", err)}
		}
		if result.RefreshToken != "" {
			if err := s.store.Set(rctx, SlotRefreshToken, result.RefreshToken); err != nil {
				return "", &AuthError{Kind: RefreshFailed, Err: fmt.Errorf("persist refresh token: %w", err)}
			}
		}
		s.logger.Debug().Msg("token refresh successful")
		return result.AccessToken, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *Session) replay(failed *http.Request, token string, retry RetryFunc) (*http.Response, error) {
	next := failed.Clone(withRetried(failed.Context()))
	if failed.Body != nil && failed.Body != http.NoBody {
		if failed.GetBody == nil {
			return nil, fmt.Errorf("replay %s %s: request body cannot be rewound", failed.Method, failed.URL.Path)
		}
		body, err := failed.GetBody()
		if err != nil {
			return nil, fmt.Errorf("replay %s %s: %w", failed.Method, failed.URL.Path, err)
		}
		next.Body = body
	}
	setBearer(next, token)
	return retry(next)
}

// Login exchanges username/password for a credential pair. Stored state is
// only touched once the returned access token decodes into a Principal.
func (s *Session) Login(ctx context.Context, username, password string) (*Principal, error) {
	result, err := s.auth.login(ctx, LoginInput{Username: username, Password: password})
	if err != nil {
		s.logger.Debug().Err(err).Str("username", username).Msg("login failed")
		return nil, err
	}

	principal, err := DecodePrincipal(result.AccessToken)
	if err != nil {
		return nil, &AuthError{Kind: InvalidCredentials, Err: err}
	}

	if err := SaveCredentials(ctx, s.store, &Credentials{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	}); err != nil {
		return nil, fmt.Errorf("failed to save credentials: %w", err)
	}

	s.logger.Info().Str("username", principal.DisplayName).Str("role", string(principal.Role)).Msg("logged in")
	return principal, nil
}

// Logout clears both stored tokens. It is idempotent.
func (s *Session) Logout(ctx context.Context) error {
	if err := ClearCredentials(ctx, s.store); err != nil {
		return fmt.Errorf("failed to delete credentials: %w", err)
	}
	return nil
}

// CurrentPrincipal decodes the stored access token. A token that does not
// decode is treated as no session and both slots are cleared.
func (s *Session) CurrentPrincipal(ctx context.Context) (*Principal, bool) {
	token, err := s.store.Get(ctx, SlotAccessToken)
	if err != nil {
		if !errors.Is(err, ErrSlotEmpty) {
			s.logger.Warn().Err(err).Msg("failed to read access token")
		}
		return nil, false
	}

	principal, err := DecodePrincipal(token)
	if err != nil {
		s.logger.Warn().Err(err).Msg("invalid stored token, clearing session")
		if clearErr := ClearCredentials(ctx, s.store); clearErr != nil {
			s.logger.Error().Err(clearErr).Msg("failed to clear credentials")
		}
		return nil, false
	}
	return principal, true
}

// State reports the lifecycle state. It may clear an undecodable stored token.
func (s *Session) State(ctx context.Context) SessionState {
	if s.refreshing.Load() {
		return Refreshing
	}
	if _, ok := s.CurrentPrincipal(ctx); ok {
		return LoggedIn
	}
	return LoggedOut
}

// RefreshCount reports how many refresh calls this Session has issued.
func (s *Session) RefreshCount() int64 {
	return s.refreshN.Load()
}

// Transport wraps base so that every request carries the access token and a
// 401 answer goes through HandleUnauthorized. A nil base means
// http.DefaultTransport.
func (s *Session) Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &sessionTransport{session: s, base: base}
}

// TokenSource exposes the stored access token to oauth2-aware collaborators.
// It never refreshes; refreshing is driven by 401 answers.
func (s *Session) TokenSource() oauth2.TokenSource {
	return sessionTokenSource{s}
}

type sessionTokenSource struct{ s *Session }

func (ts sessionTokenSource) Token() (*oauth2.Token, error) {
	token, err := ts.s.store.Get(context.Background(), SlotAccessToken)
	if err != nil {
		return nil, &AuthError{Kind: NoSession, Err: err}
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}

func (s *Session) endSession(ctx context.Context, cause error) {
	if err := ClearCredentials(ctx, s.store); err != nil {
		s.logger.Error().Err(err).Msg("failed to clear credentials")
	}
	s.logger.Info().Err(cause).Msg("session ended")
	if s.onEnd != nil {
		s.onEnd(cause)
	}
}

type sessionTransport struct {
	session *Session
	base    http.RoundTripper
}

func (t *sessionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	attached := t.session.Attach(req)
	resp, err := t.base.RoundTrip(attached)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	resp.Body.Close()
	return t.session.HandleUnauthorized(attached, t.RoundTrip)
}

type retriedKey struct{}

func withRetried(ctx context.Context) context.Context {
	return context.WithValue(ctx, retriedKey{}, true)
}

func isRetried(ctx context.Context) bool {
	v, _ := ctx.Value(retriedKey{}).(bool)
	return v
}

func setBearer(req *http.Request, token string) {
	(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(req)
}

func bearerToken(req *http.Request) string {
	h := req.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return h[7:]
	}
	return ""
}
