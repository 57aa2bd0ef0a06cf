package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biopaper/paperpush/internal/config"
	"github.com/biopaper/paperpush/internal/session"
)

const indexHTML = "<!doctype html><div id=\"app\"></div>"

type testConsole struct {
	server *httptest.Server
	client *http.Client
}

func newTestConsole(t *testing.T, backend http.Handler) *testConsole {
	t.Helper()

	dist := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dist, "index.html"), []byte(indexHTML), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dist, "assets"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dist, "assets", "app.js"), []byte("console.log(1)"), 0644))

	backendURL := "http://127.0.0.1:1"
	if backend != nil {
		upstream := httptest.NewServer(backend)
		t.Cleanup(upstream.Close)
		backendURL = upstream.URL
	}
	target, err := url.Parse(backendURL)
	require.NoError(t, err)

	cfg := &config.Config{
		Server: config.ServerConfig{
			ListenAddr:      "127.0.0.1:0",
			ShutdownTimeout: time.Second,
			ProxyTimeout:    5 * time.Second,
		},
		Backend: config.BackendConfig{URL: target},
		Static:  config.StaticConfig{Dir: dist},
		Logging: config.LoggingConfig{Level: "disabled", Format: "json"},
	}

	srv := httptest.NewServer(New(cfg, zerolog.Nop(), "test").Handler())
	t.Cleanup(srv.Close)

	return &testConsole{
		server: srv,
		client: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (tc *testConsole) do(t *testing.T, method, path string, body io.Reader, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, tc.server.URL+path, body)
	require.NoError(t, err)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := tc.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func sessionCookie(key, value string) *http.Cookie {
	return &http.Cookie{Name: key, Value: encodeCookieValue(value)}
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func TestPageGuard(t *testing.T) {
	tc := newTestConsole(t, nil)

	token := sessionCookie(session.KeyToken, "tok")
	admin := sessionCookie(session.KeyUser, `{"role":"admin"}`)
	member := sessionCookie(session.KeyUser, `{"role":"user"}`)

	tests := []struct {
		name     string
		path     string
		cookies  []*http.Cookie
		status   int
		location string
	}{
		{name: "anonymous admin page", path: "/admin", location: "/login?redirect=/admin"},
		{name: "anonymous dashboard", path: "/", location: "/login?redirect=/"},
		{name: "anonymous unknown page", path: "/nowhere", location: "/login?redirect=/nowhere"},
		{name: "anonymous bundle directory", path: "/assets", location: "/login?redirect=/assets"},
		{name: "logged in visits login", path: "/login", cookies: []*http.Cookie{token}, location: "/"},
		{name: "non-admin on admin page", path: "/admin", cookies: []*http.Cookie{token, member}, location: "/?error=no_permission"},
		{name: "admin page without cached user", path: "/admin", cookies: []*http.Cookie{token}, location: "/?error=no_permission"},
		{name: "stale user without token", path: "/admin", cookies: []*http.Cookie{admin}, location: "/login?redirect=/admin"},
		{name: "double slash root", path: "//", status: http.StatusMovedPermanently, location: "/"},
		{name: "dot segments to root", path: "/assets/../", status: http.StatusMovedPermanently, location: "/"},
		{name: "double slash admin", path: "//admin", cookies: []*http.Cookie{token, member}, status: http.StatusMovedPermanently, location: "/admin"},
		{name: "trailing slash keeps query", path: "/papers/?page=2", status: http.StatusMovedPermanently, location: "/papers?page=2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := tt.status
			if want == 0 {
				want = http.StatusFound
			}

			resp := tc.do(t, http.MethodGet, tt.path, nil, tt.cookies...)
			assert.Equal(t, want, resp.StatusCode)
			assert.Equal(t, tt.location, resp.Header.Get("Location"))
			assert.NotContains(t, readBody(t, resp), indexHTML)
		})
	}
}

func TestPageGuard_Allows(t *testing.T) {
	tc := newTestConsole(t, nil)

	token := sessionCookie(session.KeyToken, "tok")
	admin := sessionCookie(session.KeyUser, `{"role":"admin"}`)

	tests := []struct {
		name    string
		path    string
		cookies []*http.Cookie
	}{
		{name: "login page", path: "/login"},
		{name: "dashboard", path: "/", cookies: []*http.Cookie{token}},
		{name: "papers with query", path: "/papers?page=2", cookies: []*http.Cookie{token}},
		{name: "admin", path: "/admin", cookies: []*http.Cookie{token, admin}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := tc.do(t, http.MethodGet, tt.path, nil, tt.cookies...)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, indexHTML, readBody(t, resp))
		})
	}
}

func TestStaticAssetsArePublic(t *testing.T) {
	tc := newTestConsole(t, nil)

	resp := tc.do(t, http.MethodGet, "/assets/app.js", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "console.log(1)", readBody(t, resp))

	// The entry point itself stays behind the guard
	resp = tc.do(t, http.MethodGet, "/index.html", nil)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?redirect=/index.html", resp.Header.Get("Location"))

	resp = tc.do(t, http.MethodGet, "/assets/../index.html", nil)
	assert.Equal(t, http.StatusMovedPermanently, resp.StatusCode)
	assert.NotContains(t, readBody(t, resp), indexHTML)
}

func TestPageHandler_RejectsNonGet(t *testing.T) {
	tc := newTestConsole(t, nil)

	resp := tc.do(t, http.MethodPost, "/papers", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestProxy_LoginStoresSession(t *testing.T) {
	var gotContentType string
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, loginAPIPath, r.URL.Path)
		gotContentType = r.Header.Get("Content-Type")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"fresh","token_type":"bearer","user":{"role":"admin"}}`)) //nolint:errcheck
	})
	tc := newTestConsole(t, backend)

	form := url.Values{"username": {"alice"}, "password": {"secret"}}
	req, err := http.NewRequest(http.MethodPost, tc.server.URL+"/api/auth/login", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := tc.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)

	// The SPA still receives the backend body
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "fresh", body["access_token"])

	tokenCookie := findCookie(resp, session.KeyToken)
	require.NotNil(t, tokenCookie)
	assert.True(t, tokenCookie.HttpOnly)
	value, err := decodeCookieValue(tokenCookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "fresh", value)

	userCookie := findCookie(resp, session.KeyUser)
	require.NotNil(t, userCookie)
	value, err = decodeCookieValue(userCookie.Value)
	require.NoError(t, err)
	assert.Equal(t, `{"role":"admin"}`, value)
}

func TestProxy_InjectsBearerAndRewritesHost(t *testing.T) {
	var gotAuth, gotHost, gotPath string
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotHost = r.Host
		gotPath = r.URL.RequestURI()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`)) //nolint:errcheck
	})
	tc := newTestConsole(t, backend)

	resp := tc.do(t, http.MethodGet, "/api/runs?limit=10", nil, sessionCookie(session.KeyToken, "tok"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "[]", readBody(t, resp))

	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "/api/runs?limit=10", gotPath)
	assert.NotEqual(t, strings.TrimPrefix(tc.server.URL, "http://"), gotHost)
	assert.Nil(t, findCookie(resp, session.KeyToken))
}

func TestProxy_KeepsExplicitAuthorization(t *testing.T) {
	var gotAuth string
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	})
	tc := newTestConsole(t, backend)

	req, err := http.NewRequest(http.MethodGet, tc.server.URL+"/api/auth/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer header-token")
	req.AddCookie(sessionCookie(session.KeyToken, "cookie-token"))
	resp, err := tc.client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Bearer header-token", gotAuth)
}

func TestProxy_UnauthorizedClearsToken(t *testing.T) {
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Could not validate credentials"}`)) //nolint:errcheck
	})
	tc := newTestConsole(t, backend)

	resp := tc.do(t, http.MethodGet, "/api/config", nil,
		sessionCookie(session.KeyToken, "expired"),
		sessionCookie(session.KeyUser, `{"role":"admin"}`))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	tokenCookie := findCookie(resp, session.KeyToken)
	require.NotNil(t, tokenCookie)
	assert.Less(t, tokenCookie.MaxAge, 0)

	// Only the token is dropped
	assert.Nil(t, findCookie(resp, session.KeyUser))
}

func TestProxy_FailedLoginKeepsSession(t *testing.T) {
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Incorrect username or password"}`)) //nolint:errcheck
	})
	tc := newTestConsole(t, backend)

	resp := tc.do(t, http.MethodPost, "/api/auth/login", strings.NewReader("username=a&password=b"),
		sessionCookie(session.KeyToken, "old"))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Nil(t, findCookie(resp, session.KeyToken))
}

func TestProxy_BackendDown(t *testing.T) {
	tc := newTestConsole(t, nil)

	resp := tc.do(t, http.MethodGet, "/api/runs", nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.JSONEq(t, `{"error":"backend unavailable"}`, readBody(t, resp))
}

func TestLogout(t *testing.T) {
	tc := newTestConsole(t, nil)

	resp := tc.do(t, http.MethodGet, "/logout", nil,
		sessionCookie(session.KeyToken, "tok"),
		sessionCookie(session.KeyUser, `{"role":"user"}`))
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	for _, name := range []string{session.KeyToken, session.KeyUser} {
		c := findCookie(resp, name)
		require.NotNil(t, c, name)
		assert.Less(t, c.MaxAge, 0, name)
	}
}

func TestHealth(t *testing.T) {
	tc := newTestConsole(t, nil)

	resp := tc.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(headerRequestID))

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "online", body["status"])
	assert.Equal(t, "test", body["version"])
}

func TestCookieStore_PendingWritesAreVisible(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessionCookie(session.KeyToken, "old"))
	header := http.Header{}

	store := NewCookieStore(req, header, true)
	got, err := store.Get(session.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "old", got)

	require.NoError(t, store.Set(session.KeyToken, "new"))
	got, err = store.Get(session.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "new", got)

	require.NoError(t, store.Delete(session.KeyToken))
	_, err = store.Get(session.KeyToken)
	assert.ErrorIs(t, err, session.ErrNotFound)

	setCookies := header.Values("Set-Cookie")
	require.Len(t, setCookies, 2)
	assert.Contains(t, setCookies[0], "Secure")
	assert.Contains(t, setCookies[0], "SameSite=Lax")
}

func TestCookieStore_GarbledValueIsAbsent(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.KeyToken, Value: "%%%"})

	_, err := NewCookieStore(req, nil, false).Get(session.KeyToken)
	assert.ErrorIs(t, err, session.ErrNotFound)
}
