// Package uspacy implements the client component for the Uspacy CRM webhook API.
// All requests go through the incoming-webhook run path, with the token embedded
// in the URL and optionally repeated in a custom auth header.
package uspacy

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/uspacy-tools/uspacy-update/internal/constants"
)

var (
	// ErrUnauthorized is returned when the API rejects the webhook credentials.
	ErrUnauthorized = errors.New("authorization failed, check the webhook token, base URL, and custom auth header")
	// ErrUnexpectedStatus is returned when the API responds with a non-2xx status code.
	ErrUnexpectedStatus = errors.New("unexpected response status")
)

// Config holds the connection parameters for a Uspacy workspace.
type Config struct {
	BaseURL    string
	Token      string
	AuthHeader string // optional header name carrying the token in addition to the URL
	Entity     string
}

// Client is a read/update client for a single entity type.
type Client struct {
	config  Config
	apiBase string

	http *http.Client
	log  *slog.Logger
}

type options struct {
	httpClient *http.Client
}

// Options represents an optional function to override Client default values.
type Options func(*options)

// WithHTTPClient overrides the HTTP client used for all requests.
func WithHTTPClient(c *http.Client) Options {
	return func(o *options) {
		o.httpClient = c
	}
}

// New returns a new Client for the configured workspace and entity type.
func New(l *slog.Logger, config Config, args ...Options) (Client, error) {
	opts := options{
		httpClient: &http.Client{Timeout: constants.DefaultRequestTimeout},
	}
	for _, opt := range args {
		opt(&opts)
	}

	u, err := url.Parse(config.BaseURL)
	if err != nil {
		return Client{}, fmt.Errorf("failed to parse base URL %s: %v", config.BaseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return Client{}, fmt.Errorf("base URL %s must include a scheme and host", config.BaseURL)
	}
	if config.Entity == "" {
		return Client{}, errors.New("entity type cannot be an empty string")
	}

	u.Path = path.Join(u.Path, constants.WebhookRunPath, config.Token)

	return Client{
		config:  config,
		apiBase: u.String(),
		http:    opts.httpClient,
		log:     l,
	}, nil
}

// entityURL returns the API URL for the entity collection, with the extra
// path elements appended.
func (c Client) entityURL(elem ...string) string {
	parts := append([]string{c.apiBase, "crm/v1/entities", c.config.Entity}, elem...)
	return strings.Join(parts, "/")
}

// do executes the request with the webhook auth attached and returns the body
// of a successful response. Non-2xx responses are mapped to ErrUnauthorized or
// ErrUnexpectedStatus, keeping a short body snippet for the operator.
func (c Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Content-Type", "application/json")
	if c.config.AuthHeader != "" {
		req.Header.Set(c.config.AuthHeader, c.config.Token)
	}

	c.log.Debug("Sending request", "method", req.Method, "url", req.URL.Redacted())
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, errors.Join(ErrUnauthorized, fmt.Errorf("%s %s returned status 401", req.Method, req.URL.Path))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Join(ErrUnexpectedStatus, fmt.Errorf("status %d: %s", resp.StatusCode, bodySnippet(resp.Body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %v", err)
	}
	return body, nil
}

const maxSnippetLen = 200

func bodySnippet(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, maxSnippetLen))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
