// Package fetch keeps the result of an HTTP request in a store key.
//
// A Resource issues its request when its instance attaches, writes the
// decoded JSON body to its key and exposes the loading and error state next
// to it. Detaching the instance cancels any request still in flight.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/odvcencio/elevation/elevation"
	"github.com/odvcencio/elevation/state"
)

// ErrStatus is returned for responses outside the 2xx range.
var ErrStatus = errors.New("fetch: unexpected status")

// Config configures the fetch plugin.
type Config struct {
	// Client defaults to http.DefaultClient.
	Client *http.Client

	// BaseURL is prefixed to relative request paths.
	BaseURL string

	// Header is added to every request.
	Header http.Header

	// Logger defaults to the Elevation's logger.
	Logger *slog.Logger
}

// Request describes one HTTP call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header

	// Body is encoded as JSON when non-nil.
	Body any
}

// Client issues requests against one Elevation.
type Client struct {
	config Config
	api    *elevation.Elevation
	logger *slog.Logger
}

// New returns a plugin creating a *Client.
func New(cfg Config) elevation.Plugin {
	return elevation.PluginFunc(func(_ *state.Store, api *elevation.Elevation) any {
		return NewClient(api, cfg)
	})
}

// NewClient creates a client bound to api.
func NewClient(api *elevation.Elevation, cfg Config) *Client {
	if cfg.Client == nil {
		cfg.Client = http.DefaultClient
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{config: cfg, api: api, logger: logger}
}

// Do performs req and decodes a JSON response body into out. A nil out
// discards the body. It returns the response status code.
func (c *Client) Do(ctx context.Context, req Request, out any) (int, error) {
	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return 0, err
	}
	resp, err := c.config.Client.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("fetch: %s %s: %w", httpReq.Method, httpReq.URL.Redacted(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, fmt.Errorf("%w: %s %s: %d", ErrStatus, httpReq.Method, httpReq.URL.Redacted(), resp.StatusCode)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("fetch: decode %s: %w", httpReq.URL.Redacted(), err)
	}
	return resp.StatusCode, nil
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	target, err := c.resolve(req.Path, req.Query)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if req.Body != nil {
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("fetch: encode body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("fetch: build request: %w", err)
	}
	for key, values := range c.config.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	for key, values := range req.Header {
		httpReq.Header.Del(key)
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	return httpReq, nil
}

func (c *Client) resolve(path string, query url.Values) (string, error) {
	target := path
	if c.config.BaseURL != "" && !strings.Contains(path, "://") {
		target = strings.TrimRight(c.config.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
	}
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("fetch: parse url %q: %w", target, err)
	}
	if len(query) > 0 {
		merged := u.Query()
		for key, values := range query {
			for _, value := range values {
				merged.Add(key, value)
			}
		}
		u.RawQuery = merged.Encode()
	}
	return u.String(), nil
}
