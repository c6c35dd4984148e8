package httpx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultSessionCookieName is the cookie the dfs server uses to carry
	// session tokens.
	DefaultSessionCookieName = "fairOS-dfs"

	poolIdleTimeout    = 6000 * time.Second
	poolMaxIdlePerHost = 20
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used by the executor.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithLogger assigns a logger for request tracing. The default logger
// discards all output.
func WithLogger(l *logrus.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSessionCookieName overrides the name of the session cookie exchanged
// with the server.
func WithSessionCookieName(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.cookieName = name
		}
	}
}

// Client executes requests against a dfs API server over a pooled,
// keep-alive connection.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cookieName string
	logger     *logrus.Logger
}

// Param is a single query key/value pair.
type Param struct {
	Key   string
	Value string
}

// Query is an ordered list of query parameters. Values are appended to the
// URL verbatim, joined by "&" with no percent-encoding: the server contract
// relies on endpoint-specific pre-encoding (see the expression compiler), so
// applying standard URL escaping here would break wire compatibility.
type Query []Param

// Set appends a key/value pair.
func (q Query) Set(key, value string) Query {
	return append(q, Param{Key: key, Value: value})
}

// Encode joins the pairs into a raw query string.
func (q Query) Encode() string {
	if len(q) == 0 {
		return ""
	}
	parts := make([]string, 0, len(q))
	for _, p := range q {
		parts = append(parts, p.Key+"="+p.Value)
	}
	return strings.Join(parts, "&")
}

// Request describes one outbound call. Requests are built per call and never
// mutated after submission.
type Request struct {
	Method string
	Path   string
	Query  Query
	Body   []byte // JSON payload for POST/DELETE, nil for GET
	Token  string // session token, empty for unauthenticated endpoints
}

// MultipartRequest describes a POST carrying a multipart/form-data body.
type MultipartRequest struct {
	Path        string
	Boundary    string
	Body        []byte
	Token       string
	Compression string // optional value for the fairOS-dfs-Compression header
}

// Result is a successful (2xx) response.
type Result struct {
	Body []byte
	// Token holds a refreshed session token extracted from a Set-Cookie
	// header on POST responses. Empty for GET and DELETE, and for POSTs
	// that did not refresh the session.
	Token string
}

// NewClient creates a Client for the provided base URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("httpx: base URL is required")
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConnsPerHost: poolMaxIdlePerHost,
				IdleConnTimeout:     poolIdleTimeout,
			},
		},
		cookieName: DefaultSessionCookieName,
		logger:     logger,
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CookieName reports the session cookie name the client is configured with.
func (c *Client) CookieName() string {
	return c.cookieName
}

// Do executes a JSON request and classifies the response. Success bodies are
// returned raw for the caller to decode; non-2xx responses surface as a
// *RemoteError carrying the decoded {message, code} envelope, and connection
// failures as a *TransportError.
func (c *Client) Do(ctx context.Context, req *Request) (*Result, error) {
	if req == nil {
		return nil, errors.New("httpx: request is nil")
	}
	if req.Method == "" {
		return nil, errors.New("httpx: HTTP method is required")
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.buildURL(req.Path, req.Query), body)
	if err != nil {
		return nil, err
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	c.attachToken(httpReq, req.Token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.transportFailure(req.Method, req.Path, err)
	}

	token := ""
	if req.Method == http.MethodPost {
		token = c.extractToken(resp)
	}

	data, err := c.classify(resp, req.Method, req.Path)
	if err != nil {
		return nil, err
	}
	return &Result{Body: data, Token: token}, nil
}

// DoMultipart executes a POST carrying a multipart body. The response is
// classified the same way as Do.
func (c *Client) DoMultipart(ctx context.Context, req *MultipartRequest) (*Result, error) {
	resp, err := c.sendMultipart(ctx, req)
	if err != nil {
		return nil, err
	}

	token := c.extractToken(resp)
	data, err := c.classify(resp, http.MethodPost, req.Path)
	if err != nil {
		return nil, err
	}
	return &Result{Body: data, Token: token}, nil
}

// DoDownload executes a multipart POST whose success body is raw binary
// rather than JSON. This is the only transport mode where the JSON-decode
// assumption does not apply; failures still carry the standard envelope.
func (c *Client) DoDownload(ctx context.Context, req *MultipartRequest) ([]byte, error) {
	resp, err := c.sendMultipart(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.classify(resp, http.MethodPost, req.Path)
}

func (c *Client) sendMultipart(ctx context.Context, req *MultipartRequest) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("httpx: multipart request is nil")
	}
	if req.Boundary == "" {
		return nil, errors.New("httpx: multipart boundary is required")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(req.Path, nil), bytes.NewReader(req.Body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "multipart/form-data; boundary="+req.Boundary)
	if req.Compression != "" {
		httpReq.Header.Set("fairOS-dfs-Compression", req.Compression)
	}
	c.attachToken(httpReq, req.Token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.transportFailure(http.MethodPost, req.Path, err)
	}
	return resp, nil
}

func (c *Client) buildURL(path string, q Query) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := c.baseURL + path
	if encoded := q.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}

func (c *Client) attachToken(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Cookie", c.cookieName+"="+token)
	}
}

// extractToken pulls a refreshed session token from the Set-Cookie header
// when the cookie name matches the configured session cookie.
func (c *Client) extractToken(resp *http.Response) string {
	raw := resp.Header.Get("Set-Cookie")
	if raw == "" {
		return ""
	}
	pair := strings.SplitN(strings.SplitN(raw, ";", 2)[0], "=", 2)
	if len(pair) != 2 || pair[0] != c.cookieName {
		return ""
	}
	return pair[1]
}

func (c *Client) classify(resp *http.Response, method, path string) ([]byte, error) {
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportFailure(method, path, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.logger.WithFields(logrus.Fields{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
		}).Debug("httpx: request succeeded")
		return data, nil
	}

	remote := &RemoteError{StatusCode: resp.StatusCode}
	if err := decodeEnvelope(data, remote); err != nil {
		return nil, &DecodeError{Body: data, Err: fmt.Errorf("decode error envelope: %w", err)}
	}
	c.logger.WithFields(logrus.Fields{
		"method":  method,
		"path":    path,
		"status":  resp.StatusCode,
		"message": remote.Message,
	}).Warn("httpx: request rejected")
	return nil, remote
}

func (c *Client) transportFailure(method, path string, err error) error {
	c.logger.WithFields(logrus.Fields{
		"method": method,
		"path":   path,
	}).WithError(err).Warn("httpx: request failed")
	return &TransportError{Err: err}
}
