package fairos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/fairos-dfs/sdk-go/internal/httpx"
)

// DefaultBaseURL points at a dfs server running on the local machine.
const DefaultBaseURL = "http://localhost:9090/v1"

// Client talks to one dfs server. It owns a session store mapping usernames
// to their session tokens; methods that mutate sessions (Signup, Login,
// Logout, DeleteUser) must not be called concurrently for the same username,
// while data calls may run concurrently against the current tokens.
type Client struct {
	api      *httpx.Client
	sessions SessionStore
}

type settings struct {
	sessions SessionStore
	httpOpts []httpx.Option
}

// Option configures a Client.
type Option func(*settings)

// WithSessionStore injects a custom session store. The default is an
// in-memory store scoped to this Client.
func WithSessionStore(s SessionStore) Option {
	return func(cfg *settings) {
		if s != nil {
			cfg.sessions = s
		}
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(cfg *settings) {
		cfg.httpOpts = append(cfg.httpOpts, httpx.WithHTTPClient(h))
	}
}

// WithLogger enables request tracing on the transport.
func WithLogger(l *logrus.Logger) Option {
	return func(cfg *settings) {
		cfg.httpOpts = append(cfg.httpOpts, httpx.WithLogger(l))
	}
}

// WithSessionCookieName overrides the session cookie name exchanged with the
// server.
func WithSessionCookieName(name string) Option {
	return func(cfg *settings) {
		cfg.httpOpts = append(cfg.httpOpts, httpx.WithSessionCookieName(name))
	}
}

// New constructs a Client bound to the provided base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	cfg := &settings{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.sessions == nil {
		cfg.sessions = NewMemorySessionStore()
	}

	api, err := httpx.NewClient(baseURL, cfg.httpOpts...)
	if err != nil {
		return nil, err
	}
	return &Client{api: api, sessions: cfg.sessions}, nil
}

// Sessions exposes the client's session store.
func (c *Client) Sessions() SessionStore {
	return c.sessions
}

// token resolves the session token for username.
func (c *Client) token(username string) (string, error) {
	token, ok := c.sessions.Get(username)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNoSession, username)
	}
	return token, nil
}

// get issues an authenticated-or-not GET and decodes the success body into
// out when out is non-nil.
func (c *Client) get(ctx context.Context, path string, query httpx.Query, token string, out any) error {
	res, err := c.api.Do(ctx, &httpx.Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
		Token:  token,
	})
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return httpx.DecodeJSON(res.Body, out)
}

// post issues a JSON POST and returns any refreshed session token alongside
// the decoded body.
func (c *Client) post(ctx context.Context, path string, payload any, token string, out any) (string, error) {
	var body []byte
	if payload != nil {
		var err error
		if body, err = jsonMarshal(payload); err != nil {
			return "", fmt.Errorf("fairos: encode request body: %w", err)
		}
	}
	res, err := c.api.Do(ctx, &httpx.Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   body,
		Token:  token,
	})
	if err != nil {
		return "", err
	}
	if out != nil {
		if err := httpx.DecodeJSON(res.Body, out); err != nil {
			return "", err
		}
	}
	return res.Token, nil
}

// del issues a JSON DELETE. DELETE responses never refresh the session.
func (c *Client) del(ctx context.Context, path string, payload any, token string, out any) error {
	var body []byte
	if payload != nil {
		var err error
		if body, err = jsonMarshal(payload); err != nil {
			return fmt.Errorf("fairos: encode request body: %w", err)
		}
	}
	res, err := c.api.Do(ctx, &httpx.Request{
		Method: http.MethodDelete,
		Path:   path,
		Body:   body,
		Token:  token,
	})
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return httpx.DecodeJSON(res.Body, out)
}

func jsonMarshal(v any) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
