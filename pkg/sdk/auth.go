// pkg/sdk/auth.go
package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	loginPath   = "/api/auth/login"
	refreshPath = "/api/auth/refresh"
)

// LoginInput carries the username/password pair for the login endpoint.
type LoginInput struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=256"`
}

// LoginResult is the data member of a successful login response.
type LoginResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Role         string `json:"role"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResult struct {
	AccessToken string `json:"accessToken"`
	// RefreshToken is set only by servers that rotate refresh tokens.
	RefreshToken string `json:"refreshToken,omitempty"`
}

// authEndpoints talks to the login and refresh endpoints. These calls never go
// through the session transport: they carry no bearer token and a 401 from
// them is a final answer.
type authEndpoints struct {
	baseURL  string
	http     *http.Client
	validate *validator.Validate
}

func (a *authEndpoints) login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if err := a.validate.Struct(input); err != nil {
		return nil, &AuthError{Kind: InvalidCredentials, Err: err}
	}

	resp, err := a.post(ctx, loginPath, input)
	if err != nil {
		return nil, &AuthError{Kind: Network, Err: err}
	}

	var result LoginResult
	if err := decodeEnvelope(resp, &result); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode >= http.StatusInternalServerError {
			return nil, &AuthError{Kind: Network, Err: err}
		}
		return nil, &AuthError{Kind: InvalidCredentials, Err: err}
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		return nil, &AuthError{Kind: InvalidCredentials, Err: errors.New("login response is missing tokens")}
	}
	return &result, nil
}

func (a *authEndpoints) refresh(ctx context.Context, refreshToken string) (*refreshResult, error) {
	resp, err := a.post(ctx, refreshPath, refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, err
	}

	var result refreshResult
	if err := decodeEnvelope(resp, &result); err != nil {
		return nil, err
	}
	if result.AccessToken == "" {
		return nil, errors.New("invalid response format from refresh token endpoint")
	}
	return &result, nil
}

func (a *authEndpoints) post(ctx context.Context, path string, body any) (*http.Response, error) {
	endpoint, err := url.JoinPath(a.baseURL, path)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return a.http.Do(req)
}

// defaultHTTPClient returns an HTTP client with a reasonable timeout for API calls.
func defaultHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 10 * time.Second,
	}
}
