package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Client provides a high-level interface to the panel REST API. When built
// with a Session every call carries the access token and recovers from an
// expired one transparently.
type Client struct {
	baseURL  string
	http     *http.Client
	session  *Session
	fallback DataProvider
	logger   zerolog.Logger
	validate *validator.Validate
}

// ClientOptions configures SDK client construction.
type ClientOptions struct {
	HTTPClient *http.Client
	Session    *Session
	Fallback   DataProvider
	Logger     *zerolog.Logger
}

// ClientOption mutates ClientOptions.
type ClientOption func(*ClientOptions)

// WithHTTPClient overrides the HTTP client used for API calls.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(opts *ClientOptions) {
		opts.HTTPClient = client
	}
}

// WithSession routes every call through the session transport.
func WithSession(session *Session) ClientOption {
	return func(opts *ClientOptions) {
		opts.Session = session
	}
}

// WithFallback enables degraded mode: when a call fails for any reason other
// than the session ending, data from provider is returned instead.
func WithFallback(provider DataProvider) ClientOption {
	return func(opts *ClientOptions) {
		opts.Fallback = provider
	}
}

// WithLogger sets the client logger.
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(opts *ClientOptions) {
		opts.Logger = &logger
	}
}

// NewClient creates a new panel SDK client that communicates with the API server at baseURL.
// An http.Client is created automatically when one is not supplied.
func NewClient(baseURL string, optFns ...ClientOption) *Client {
	opts := ClientOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = defaultHTTPClient()
	}
	if opts.Session != nil {
		wrapped := *httpClient
		wrapped.Transport = opts.Session.Transport(httpClient.Transport)
		httpClient = &wrapped
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     httpClient,
		session:  opts.Session,
		fallback: opts.Fallback,
		logger:   logger,
		validate: validator.New(),
	}
}

// Session returns the session the client was built with, if any.
func (c *Client) Session() *Session {
	return c.session
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	req, err := c.newRequest(ctx, method, path, nil, payload, "application/json")
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body []byte, contentType string) (*http.Request, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	return decodeEnvelope(resp, out)
}

// actor is the display name used for locally fabricated fallback records.
func (c *Client) actor(ctx context.Context) string {
	if c.session != nil {
		if p, ok := c.session.CurrentPrincipal(ctx); ok {
			return p.DisplayName
		}
	}
	return "unknown"
}

// withFallback returns demo data for a failed call when degraded mode is on.
// The end of a session and caller cancellation are never masked.
func withFallback[T any](ctx context.Context, c *Client, op string, err error, demo func(DataProvider) (T, error)) (T, error) {
	var zero T
	if c.fallback == nil || IsSessionEnded(err) || ctx.Err() != nil {
		return zero, err
	}
	c.logger.Warn().Err(err).Str("op", op).Msg("API call failed, using fallback data")
	return demo(c.fallback)
}
