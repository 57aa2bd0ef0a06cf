package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/biopaper/paperpush/internal/routes"
	"github.com/biopaper/paperpush/internal/session"
)

const (
	// APIPrefix is prepended to every endpoint path
	APIPrefix = "/api"

	// DefaultTimeout bounds a single call; runs and source tests are slow.
	DefaultTimeout = 300 * time.Second

	headerRequestID = "X-Request-ID"
)

// Client represents an HTTP client for the paper push API
type Client struct {
	baseURL  string
	http     *resty.Client
	session  *session.Session
	log      zerolog.Logger
	validate *validator.Validate
}

// Option configures a Client
type Option func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
	timeout    time.Duration
	log        zerolog.Logger
}

// WithHTTPClient sets a custom underlying HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = httpClient
	}
}

// WithTimeout overrides DefaultTimeout
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = timeout
	}
}

// WithLogger sets the logger used for failed calls
func WithLogger(log zerolog.Logger) Option {
	return func(o *clientOptions) {
		o.log = log
	}
}

// New creates a new API client for the server at serverURL (scheme://host[:port]).
// The session store supplies the bearer token and receives it on login.
func New(serverURL string, store session.Store, opts ...Option) *Client {
	options := clientOptions{
		timeout: DefaultTimeout,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&options)
	}

	var rc *resty.Client
	if options.httpClient != nil {
		rc = resty.NewWithClient(options.httpClient)
	} else {
		rc = resty.New()
	}

	baseURL := strings.TrimRight(serverURL, "/") + APIPrefix

	c := &Client{
		baseURL:  baseURL,
		http:     rc,
		session:  session.New(store),
		log:      options.log,
		validate: validator.New(),
	}

	rc.SetBaseURL(baseURL).
		SetTimeout(options.timeout).
		OnBeforeRequest(c.beforeRequest).
		OnAfterResponse(c.afterResponse).
		OnError(c.onError)

	return c
}

// BaseURL returns the API base URL including the /api prefix
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Session returns the session the client reads and writes
func (c *Client) Session() *session.Session {
	return c.session
}

// beforeRequest attaches the bearer token when one is stored
func (c *Client) beforeRequest(_ *resty.Client, r *resty.Request) error {
	if token := c.session.Token(); token != "" {
		r.SetHeader("Authorization", fmt.Sprintf("Bearer %s", token))
	}
	if r.Header.Get(headerRequestID) == "" {
		r.SetHeader(headerRequestID, ulid.Make().String())
	}
	return nil
}

// afterResponse turns non-2xx responses into *HTTPError and drops the token on 401
func (c *Client) afterResponse(_ *resty.Client, resp *resty.Response) error {
	status := resp.StatusCode()
	if status >= 200 && status < 300 {
		return nil
	}

	if status == http.StatusUnauthorized && !routes.IsLoginRelated(requestPath(resp)) {
		if err := c.session.ClearToken(); err != nil {
			c.log.Warn().Err(err).Msg("Failed to clear session token after 401")
		} else {
			c.log.Debug().Msg("Session token cleared after 401")
		}
	}

	return newHTTPError(status, resp.Body())
}

func (c *Client) onError(r *resty.Request, err error) {
	event := c.log.Error().Err(err).
		Str("method", r.Method).
		Str("url", r.URL).
		Str("request_id", r.Header.Get(headerRequestID))

	var respErr *resty.ResponseError
	if errors.As(err, &respErr) && respErr.Response != nil {
		event = event.Int("status", respErr.Response.StatusCode())
	}

	event.Msg("API error")
}

func requestPath(resp *resty.Response) string {
	if resp.Request != nil && resp.Request.RawRequest != nil {
		return resp.Request.RawRequest.URL.Path
	}
	return ""
}

// do executes a request and decodes the body into out when out is non-nil.
// Transport and HTTP errors are returned as they come out of the interceptors.
func (c *Client) do(ctx context.Context, method, path string, configure func(*resty.Request), out any) error {
	req := c.http.R().SetContext(ctx)
	if configure != nil {
		configure(req)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return err
	}

	if out == nil || len(resp.Body()) == 0 {
		return nil
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func (c *Client) get(ctx context.Context, path string, configure func(*resty.Request), out any) error {
	return c.do(ctx, http.MethodGet, path, configure, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.do(ctx, http.MethodPost, path, jsonBody(body), out)
}

func (c *Client) put(ctx context.Context, path string, body any, out any) error {
	return c.do(ctx, http.MethodPut, path, jsonBody(body), out)
}

func (c *Client) delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

func jsonBody(body any) func(*resty.Request) {
	if body == nil {
		return nil
	}
	return func(r *resty.Request) {
		r.SetHeader("Content-Type", "application/json").SetBody(body)
	}
}

// validateRequest rejects a malformed payload before it reaches the network
func (c *Client) validateRequest(v any) error {
	if err := c.validate.Struct(v); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}
