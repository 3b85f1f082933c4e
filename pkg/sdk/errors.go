package sdk

import (
	"errors"
	"fmt"
	"net/http"
)

// AuthErrorKind classifies authentication failures.
type AuthErrorKind int

const (
	// InvalidCredentials means the login endpoint rejected the username/password.
	InvalidCredentials AuthErrorKind = iota + 1
	// NoSession means no usable credential pair is stored.
	NoSession
	// RefreshFailed means the refresh endpoint rejected or failed the refresh token,
	// or a request was still unauthorized after its single retry.
	RefreshFailed
	// Network means the auth endpoint could not be reached.
	Network
)

func (k AuthErrorKind) String() string {
	switch k {
	case InvalidCredentials:
		return "invalid credentials"
	case NoSession:
		return "no session"
	case RefreshFailed:
		return "refresh failed"
	case Network:
		return "network"
	default:
		return "unknown"
	}
}

// AuthError is returned by the Session Manager.
type AuthError struct {
	Kind AuthErrorKind
	Err  error
}

func (e *AuthError) Error() string {
	if e.Kind == InvalidCredentials {
		return "invalid username or password"
	}
	if e.Err != nil {
		return fmt.Sprintf("auth: %s: %v", e.Kind, e.Err)
	}
	return "auth: " + e.Kind.String()
}

func (e *AuthError) Unwrap() error { return e.Err }

// Is matches another *AuthError by kind, so the package sentinels work with errors.Is.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Kind == e.Kind && t.Err == nil
}

var (
	ErrInvalidCredentials = &AuthError{Kind: InvalidCredentials}
	ErrNoSession          = &AuthError{Kind: NoSession}
	ErrRefreshFailed      = &AuthError{Kind: RefreshFailed}
	ErrNetwork            = &AuthError{Kind: Network}
)

// IsSessionEnded reports whether err means the user must log in again.
func IsSessionEnded(err error) bool {
	return errors.Is(err, ErrNoSession) || errors.Is(err, ErrRefreshFailed)
}

// ErrNotFound is returned when the API answers 404.
var ErrNotFound = errors.New("resource not found")

// APIError is a non-2xx answer from the panel API other than an auth failure.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}
