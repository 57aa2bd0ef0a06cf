package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/biopaper/paperpush/internal/routes"
	"github.com/biopaper/paperpush/internal/session"
)

const loginAPIPath = "/api/auth/login"

// apiProxy forwards /api to the backend, rewriting Host to the target.
// It mirrors the API client's session handling for browsers: it injects
// the cookie token as a bearer header, stores the token on login and
// drops it on 401.
type apiProxy struct {
	target *url.URL
	secure bool
	log    zerolog.Logger
	proxy  *httputil.ReverseProxy
}

func newAPIProxy(target *url.URL, secure bool, timeout time.Duration, log zerolog.Logger) *apiProxy {
	p := &apiProxy{
		target: target,
		secure: secure,
		log:    log,
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = timeout

	p.proxy = &httputil.ReverseProxy{
		Rewrite:        p.rewrite,
		ModifyResponse: p.modifyResponse,
		ErrorHandler:   p.errorHandler,
		Transport:      transport,
	}
	return p
}

func (p *apiProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.proxy.ServeHTTP(w, r)
}

func (p *apiProxy) rewrite(pr *httputil.ProxyRequest) {
	pr.SetURL(p.target)
	pr.SetXForwarded()

	if pr.Out.Header.Get("Authorization") == "" {
		sess := session.New(NewCookieStore(pr.In, nil, p.secure))
		if token := sess.Token(); token != "" {
			pr.Out.Header.Set("Authorization", "Bearer "+token)
		}
	}

	// The login body is parsed on the way back; keep it uncompressed
	if pr.Out.URL.Path == loginAPIPath {
		pr.Out.Header.Del("Accept-Encoding")
	}
}

func (p *apiProxy) modifyResponse(resp *http.Response) error {
	path := resp.Request.URL.Path
	sess := session.New(NewCookieStore(resp.Request, resp.Header, p.secure))

	switch {
	case resp.StatusCode == http.StatusOK && path == loginAPIPath:
		return p.captureLogin(resp, sess)
	case resp.StatusCode == http.StatusUnauthorized && !routes.IsLoginRelated(path):
		p.log.Debug().Str("path", path).Msg("Backend returned 401, clearing session token")
		return sess.ClearToken()
	}
	return nil
}

func (p *apiProxy) captureLogin(resp *http.Response, sess *session.Session) error {
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read login response: %w", err)
	}

	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	resp.Header.Set("Content-Length", strconv.Itoa(len(body)))

	var login struct {
		AccessToken string          `json:"access_token"`
		User        json.RawMessage `json:"user"`
	}
	if err := json.Unmarshal(body, &login); err != nil || login.AccessToken == "" {
		p.log.Warn().Err(err).Msg("Login response carried no access token")
		return nil
	}

	if err := sess.Save(login.AccessToken, nil); err != nil {
		return err
	}
	if len(login.User) > 0 && string(login.User) != "null" {
		return sess.SaveRawUser(login.User)
	}
	return nil
}

func (p *apiProxy) errorHandler(w http.ResponseWriter, r *http.Request, err error) {
	p.log.Error().Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("backend", p.target.String()).
		Msg("Backend request failed")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadGateway)
	json.NewEncoder(w).Encode(map[string]string{ //nolint:errcheck
		"error": "backend unavailable",
	})
}

func isAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}
