package commands

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/biopaper/paperpush/internal/session"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   string
}

// fakeBackend answers "METHOD /path" routes with canned JSON and records every request
type fakeBackend struct {
	*httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
}

type reply struct {
	status int
	body   string
}

func newFakeBackend(t *testing.T, routes map[string]reply) *fakeBackend {
	t.Helper()

	b := &fakeBackend{}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		b.mu.Lock()
		b.requests = append(b.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
			Body:   string(body),
		})
		b.mu.Unlock()

		rep, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"detail":"Not Found"}`)
			return
		}
		if rep.status == 0 {
			rep.status = http.StatusOK
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(rep.status)
		fmt.Fprint(w, rep.body)
	}))
	t.Cleanup(b.Close)

	return b
}

func (b *fakeBackend) Requests() []recordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]recordedRequest(nil), b.requests...)
}

func (b *fakeBackend) Last(t *testing.T) recordedRequest {
	t.Helper()
	reqs := b.Requests()
	require.NotEmpty(t, reqs, "no request reached the backend")
	return reqs[len(reqs)-1]
}

type testEnv struct {
	app    *App
	store  *session.MemoryStore
	out    *bytes.Buffer
	errOut *bytes.Buffer

	confirmAnswer bool
	confirmed     []string
	passwords     []string
	selections    []string
	opened        string
}

func newTestEnv(t *testing.T, serverURL string) *testEnv {
	t.Helper()

	env := &testEnv{
		store:  session.NewMemoryStore(),
		out:    &bytes.Buffer{},
		errOut: &bytes.Buffer{},
	}

	env.app = &App{
		Out:        env.out,
		ErrOut:     env.errOut,
		Log:        zerolog.Nop(),
		ServerFlag: serverURL,
		OpenStore: func(string) (session.Store, error) {
			return env.store, nil
		},
		Confirm: func(label string) (bool, error) {
			env.confirmed = append(env.confirmed, label)
			return env.confirmAnswer, nil
		},
		Prompt: func(label string) (string, error) {
			return "", fmt.Errorf("%s is required in non-interactive mode", label)
		},
		ReadPassword: func(label string) (string, error) {
			if len(env.passwords) == 0 {
				return "", fmt.Errorf("%s is required in non-interactive mode", label)
			}
			pw := env.passwords[0]
			env.passwords = env.passwords[1:]
			return pw, nil
		},
		Select: func(label string, items []string) (string, error) {
			if len(env.selections) == 0 {
				return "", fmt.Errorf("unexpected selection %q", label)
			}
			choice := env.selections[0]
			env.selections = env.selections[1:]
			return choice, nil
		},
		OpenBrowser: func(url string) error {
			env.opened = url
			return nil
		},
	}

	return env
}

// loginAs stores a session the way a successful login would
func (e *testEnv) loginAs(t *testing.T, token, userJSON string) {
	t.Helper()
	require.NoError(t, e.store.Set(session.KeyToken, token))
	if userJSON != "" {
		require.NoError(t, e.store.Set(session.KeyUser, userJSON))
	}
}
