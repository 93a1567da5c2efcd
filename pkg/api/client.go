// Package api is a typed HTTP client for the badgeboard backend.
//
// Every method returns errors from the model taxonomy: *model.NetworkError
// when the exchange did not complete, *model.RejectedError when the server
// refused it and *model.DecodeError when the response could not be read.
package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is where a locally started backend listens.
	DefaultBaseURL = "http://localhost:8080"
	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second
)

// Outcomes reported to an Observer.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeNetwork  = "network"
	OutcomeDecode   = "decode"
)

// Observer is told about every finished call, e.g. to feed metrics.
type Observer func(op, outcome string, elapsed time.Duration)

// Client is the badgeboard API client.
//
//	c := api.NewClient(api.WithBaseURL("https://badges.example.com"))
//	badges, err := c.ListBadges(ctx)
type Client struct {
	baseURL    string
	httpClient *http.Client
	observer   Observer
	log        *slog.Logger
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL sets the backend base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the HTTP client timeout. Zero leaves requests bounded only
// by their context.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if c.httpClient == nil {
			c.httpClient = &http.Client{}
		}
		c.httpClient.Timeout = timeout
	}
}

// WithObserver registers a callback invoked after each call.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// WithLogger overrides the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// NewClient creates a new API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		log: slog.Default().With("component", "api"),
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the current base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// WebSocketURL derives the realtime endpoint from the base URL:
// http becomes ws, https becomes wss, and the path gains /ws.
func (c *Client) WebSocketURL() (string, error) {
	return WebSocketURL(c.baseURL)
}

// WebSocketURL derives the realtime endpoint from base.
func WebSocketURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("api: parse base url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("api: unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	u.RawQuery = ""
	return u.String(), nil
}
