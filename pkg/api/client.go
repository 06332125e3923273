// Package api is the HTTP client for the media search backend.
//
// It knows the wire format of every endpoint and nothing about sessions,
// retries or user-facing messages: non-2xx responses come back as
// *StatusError and callers classify them.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rubiojr/mediasearch/pkg/log"
	"golang.org/x/oauth2"
)

var logger = log.ForService("api")

// maxBodySize caps how much of a response body is read.
const maxBodySize = 8 << 20

// ErrEmptyBody is returned when an endpoint that must answer with JSON sent
// nothing.
var ErrEmptyBody = errors.New("empty response body")

// Client talks to the backend.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	compress  bool
	timeout   time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithCompression enables gzip/zstd response compression.
func WithCompression(enabled bool) Option {
	return func(c *Client) { c.compress = enabled }
}

// WithTimeout sets a per-request timeout. Zero means none.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// NewClient returns a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parsing api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api url %q must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("api url %q has no host", baseURL)
	}

	c := &Client{baseURL: u}
	for _, opt := range opts {
		opt(c)
	}

	hc := &http.Client{Timeout: c.timeout}
	if c.http != nil {
		copied := *c.http
		hc = &copied
		if c.timeout > 0 {
			hc.Timeout = c.timeout
		}
	}
	if c.compress {
		base := hc.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		hc.Transport = gzhttp.Transport(base)
	}
	c.http = hc

	return c, nil
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

type call struct {
	method      string
	path        string
	rawQuery    string
	token       string
	body        any
	requireBody bool
}

// result carries response metadata back to the endpoint wrappers.
type result struct {
	status int
	header http.Header
}

func (c *Client) do(ctx context.Context, cl call, out any) (result, error) {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + cl.path
	u.RawQuery = cl.rawQuery

	var body io.Reader
	if cl.body != nil {
		data, err := json.Marshal(cl.body)
		if err != nil {
			return result{}, fmt.Errorf("encoding %s request: %w", cl.path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u.String(), body)
	if err != nil {
		return result{}, fmt.Errorf("creating %s request: %w", cl.path, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if cl.token != "" {
		(&oauth2.Token{AccessToken: cl.token}).SetAuthHeader(req)
	}

	logger.Debugf("%s %s request_id=%s", cl.method, u.RequestURI(), requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return result{}, fmt.Errorf("%s %s: %w", cl.method, cl.path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Debugf("closing response body: %v", err)
		}
	}()

	res := result{status: resp.StatusCode, header: resp.Header}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return res, fmt.Errorf("reading %s response: %w", cl.path, err)
	}

	logger.Debugf("%s %s request_id=%s status=%d bytes=%d", cl.method, cl.path, requestID, resp.StatusCode, len(data))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		se := &StatusError{
			Method:     cl.method,
			Path:       cl.path,
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
		}
		// Error bodies are best effort; many proxies answer with HTML.
		_ = json.Unmarshal(data, &se.Body)
		se.Body.StatusCode = resp.StatusCode
		return res, se
	}

	if out == nil {
		return res, nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		if cl.requireBody {
			return res, fmt.Errorf("decoding %s response: %w", cl.path, ErrEmptyBody)
		}
		return res, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return res, fmt.Errorf("decoding %s response: %w", cl.path, err)
	}
	return res, nil
}
