package sdk_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/minestax-uz/web/pkg/sdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mintToken(t *testing.T, id, username, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       id,
		"username": username,
		"role":     role,
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

// fakeAPI emulates the auth endpoints and one protected resource.
type fakeAPI struct {
	mu           sync.Mutex
	validAccess  string
	refreshToken string
	nextAccess   string
	refreshFails bool
	alwaysReject bool

	// refreshGate, when set, holds the refresh endpoint until closed.
	refreshGate  chan struct{}
	unauthorized chan struct{}

	refreshCalls atomic.Int32
	seenBodies   []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{unauthorized: make(chan struct{}, 16)}
}

func writeEnvelope(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if status >= 300 {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": http.StatusText(status)})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/auth/refresh":
		f.refreshCalls.Add(1)
		if f.refreshGate != nil {
			<-f.refreshGate
		}
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		f.mu.Lock()
		defer f.mu.Unlock()
		if f.refreshFails || body.RefreshToken != f.refreshToken {
			writeEnvelope(w, http.StatusUnauthorized, nil)
			return
		}
		f.validAccess = f.nextAccess
		writeEnvelope(w, http.StatusOK, map[string]string{"accessToken": f.nextAccess})

	case "/api/resource":
		f.mu.Lock()
		valid := f.validAccess
		reject := f.alwaysReject
		if r.Body != nil {
			b, _ := io.ReadAll(r.Body)
			f.seenBodies = append(f.seenBodies, string(b))
		}
		f.mu.Unlock()

		if reject || r.Header.Get("Authorization") != "Bearer "+valid {
			f.unauthorized <- struct{}{}
			writeEnvelope(w, http.StatusUnauthorized, nil)
			return
		}
		writeEnvelope(w, http.StatusOK, map[string]bool{"ok": true})

	default:
		http.NotFound(w, r)
	}
}

func newTestSession(t *testing.T, api http.Handler, opts ...sdk.SessionOption) (*sdk.Session, *sdk.MemoryStore, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	store := sdk.NewMemoryStore()
	return sdk.NewSession(srv.URL, store, opts...), store, srv
}

func seed(t *testing.T, store sdk.CredentialStore, access, refresh string) {
	t.Helper()
	require.NoError(t, sdk.SaveCredentials(context.Background(), store, &sdk.Credentials{
		AccessToken:  access,
		RefreshToken: refresh,
	}))
}

func getResource(t *testing.T, client *http.Client, srv *httptest.Server) (*http.Response, error) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/resource", nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	if err == nil {
		t.Cleanup(func() { resp.Body.Close() })
	}
	return resp, err
}

func TestSessionAttach(t *testing.T) {
	session, store, _ := newTestSession(t, newFakeAPI())

	req := httptest.NewRequest(http.MethodGet, "/api/bans", nil)
	assert.Same(t, req, session.Attach(req), "request without stored token is returned unchanged")
	assert.Empty(t, req.Header.Get("Authorization"))

	seed(t, store, "T1", "R1")
	attached := session.Attach(req)
	assert.Equal(t, "Bearer T1", attached.Header.Get("Authorization"))
	assert.Empty(t, req.Header.Get("Authorization"), "original request must not be mutated")
}

func TestSessionReplaysWithRefreshedToken(t *testing.T) {
	api := newFakeAPI()
	t1 := mintToken(t, "7", "alice", "moder")
	t2 := mintToken(t, "8", "alice", "moder")
	api.refreshToken = "R1"
	api.nextAccess = t2

	session, store, srv := newTestSession(t, api)
	seed(t, store, t1, "R1")
	client := &http.Client{Transport: session.Transport(nil)}

	resp, err := getResource(t, client, srv)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, api.refreshCalls.Load())

	stored, err := store.Get(context.Background(), sdk.SlotAccessToken)
	require.NoError(t, err)
	assert.Equal(t, t2, stored)

	next := session.Attach(httptest.NewRequest(http.MethodGet, "/api/players", nil))
	assert.Equal(t, "Bearer "+t2, next.Header.Get("Authorization"))
	assert.Equal(t, sdk.LoggedIn, session.State(context.Background()))
}

func TestSessionSingleFlightRefresh(t *testing.T) {
	api := newFakeAPI()
	api.refreshToken = "R1"
	api.nextAccess = "T2"
	api.refreshGate = make(chan struct{})

	session, store, srv := newTestSession(t, api)
	seed(t, store, "T1", "R1")
	client := &http.Client{Transport: session.Transport(nil)}

	const requests = 2
	var wg sync.WaitGroup
	errs := make([]error, requests)
	codes := make([]int, requests)
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := getResource(t, client, srv)
			errs[i] = err
			if err == nil {
				codes[i] = resp.StatusCode
			}
		}(i)
	}

	for i := 0; i < requests; i++ {
		<-api.unauthorized
	}
	close(api.refreshGate)
	wg.Wait()

	for i := 0; i < requests; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, http.StatusOK, codes[i])
	}
	assert.EqualValues(t, 1, api.refreshCalls.Load(), "exactly one refresh call expected")
	assert.EqualValues(t, 1, session.RefreshCount())
}

func TestSessionNeverRetriesTwice(t *testing.T) {
	api := newFakeAPI()
	api.refreshToken = "R1"
	api.nextAccess = "T2"
	api.alwaysReject = true

	session, store, srv := newTestSession(t, api)
	seed(t, store, "T1", "R1")
	client := &http.Client{Transport: session.Transport(nil)}

	_, err := getResource(t, client, srv)
	require.Error(t, err)
	assert.ErrorIs(t, err, sdk.ErrRefreshFailed)
	assert.EqualValues(t, 1, api.refreshCalls.Load())
	assert.Len(t, api.unauthorized, 2, "original request plus a single replay")
}

func TestSessionRefreshFailureCascade(t *testing.T) {
	api := newFakeAPI()
	api.refreshToken = "R1"
	api.refreshFails = true
	api.refreshGate = make(chan struct{})

	var ended atomic.Int32
	session, store, srv := newTestSession(t, api, sdk.WithOnSessionEnd(func(error) {
		ended.Add(1)
	}))
	seed(t, store, "T1", "R1")
	client := &http.Client{Transport: session.Transport(nil)}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = getResource(t, client, srv)
		}(i)
	}
	<-api.unauthorized
	<-api.unauthorized
	close(api.refreshGate)
	wg.Wait()

	for _, err := range errs {
		require.Error(t, err)
		assert.True(t, sdk.IsSessionEnded(err), "expected session ended, got %v", err)
	}
	assert.Zero(t, store.Len(), "credential store must be cleared")
	assert.GreaterOrEqual(t, ended.Load(), int32(1))
	assert.EqualValues(t, 1, api.refreshCalls.Load())
	assert.Equal(t, sdk.LoggedOut, session.State(context.Background()))
}

func TestSessionNoRefreshToken(t *testing.T) {
	api := newFakeAPI()
	var endErr error
	session, store, srv := newTestSession(t, api, sdk.WithOnSessionEnd(func(err error) {
		endErr = err
	}))
	require.NoError(t, store.Set(context.Background(), sdk.SlotAccessToken, "T1"))
	client := &http.Client{Transport: session.Transport(nil)}

	_, err := getResource(t, client, srv)
	assert.ErrorIs(t, err, sdk.ErrNoSession)
	assert.ErrorIs(t, endErr, sdk.ErrNoSession)
	assert.Zero(t, store.Len())
	assert.Zero(t, api.refreshCalls.Load())
}

func TestSessionReplaysRequestBody(t *testing.T) {
	api := newFakeAPI()
	api.refreshToken = "R1"
	api.nextAccess = "T2"

	session, store, srv := newTestSession(t, api)
	seed(t, store, "T1", "R1")
	client := &http.Client{Transport: session.Transport(nil)}

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/resource", strings.NewReader(`{"content":"hi"}`))
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{`{"content":"hi"}`, `{"content":"hi"}`}, api.seenBodies)
}

func TestSessionRefreshHonoursCallerCancellation(t *testing.T) {
	api := newFakeAPI()
	api.refreshToken = "R1"
	api.nextAccess = "T2"
	api.refreshGate = make(chan struct{})
	defer close(api.refreshGate)

	session, store, srv := newTestSession(t, api)
	seed(t, store, "T1", "R1")
	client := &http.Client{Transport: session.Transport(nil)}

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/resource", nil)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := client.Do(req)
		done <- err
	}()
	<-api.unauthorized
	cancel()

	err = <-done
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestLoginScenario(t *testing.T) {
	t1 := mintToken(t, "42", "alice", "moder")
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in sdk.LoginInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeEnvelope(w, http.StatusBadRequest, nil)
			return
		}
		if in.Username != "alice" || in.Password != "correct" {
			writeEnvelope(w, http.StatusUnauthorized, nil)
			return
		}
		writeEnvelope(w, http.StatusOK, sdk.LoginResult{AccessToken: t1, RefreshToken: "R1", Role: "moder"})
	})

	session, store, _ := newTestSession(t, mux)
	ctx := context.Background()

	principal, err := session.Login(ctx, "alice", "correct")
	require.NoError(t, err)
	assert.Equal(t, &sdk.Principal{ID: "42", DisplayName: "alice", Role: sdk.RoleModerator}, principal)

	current, ok := session.CurrentPrincipal(ctx)
	require.True(t, ok)
	assert.Equal(t, principal, current)

	creds, err := sdk.LoadCredentials(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, t1, creds.AccessToken)
	assert.Equal(t, "R1", creds.RefreshToken)
}

func TestLoginFailureLeavesStoreUntouched(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, nil)
	})
	session, store, _ := newTestSession(t, mux)
	ctx := context.Background()
	seed(t, store, "OLD-A", "OLD-R")

	_, err := session.Login(ctx, "alice", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, sdk.ErrInvalidCredentials)
	assert.Equal(t, "invalid username or password", err.Error())

	creds, err := sdk.LoadCredentials(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, "OLD-A", creds.AccessToken)
	assert.Equal(t, "OLD-R", creds.RefreshToken)
}

func TestLoginNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	store := sdk.NewMemoryStore()
	session := sdk.NewSession(url, store)
	_, err := session.Login(context.Background(), "alice", "correct")
	assert.ErrorIs(t, err, sdk.ErrNetwork)
	assert.Zero(t, store.Len())
}

func TestCurrentPrincipalClearsMalformedToken(t *testing.T) {
	session, store, _ := newTestSession(t, newFakeAPI())
	ctx := context.Background()
	seed(t, store, "definitely.not.a-jwt", "R1")

	p, ok := session.CurrentPrincipal(ctx)
	assert.Nil(t, p)
	assert.False(t, ok)
	assert.Zero(t, store.Len())
}

func TestLogoutIdempotent(t *testing.T) {
	session, store, _ := newTestSession(t, newFakeAPI())
	ctx := context.Background()
	seed(t, store, "T1", "R1")

	require.NoError(t, session.Logout(ctx))
	assert.Zero(t, store.Len())
	require.NoError(t, session.Logout(ctx))
	assert.Zero(t, store.Len())
	assert.Equal(t, sdk.LoggedOut, session.State(ctx))
}

func TestSessionTokenSource(t *testing.T) {
	session, store, _ := newTestSession(t, newFakeAPI())

	_, err := session.TokenSource().Token()
	assert.ErrorIs(t, err, sdk.ErrNoSession)

	seed(t, store, "T1", "R1")
	token, err := session.TokenSource().Token()
	require.NoError(t, err)
	assert.Equal(t, "T1", token.AccessToken)
	assert.Equal(t, "Bearer", token.Type())
}
