// Package api is the HTTP client for the remote task service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"taskman/internal/logger"
)

// DefaultTimeout is used when Options.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// Options configures a Client.
type Options struct {
	// BaseURL is the API root, e.g. http://localhost:5000.
	BaseURL string

	// Token is sent as a bearer token when non-empty.
	Token string

	// Timeout bounds each round trip, connect through body read.
	Timeout time.Duration

	// UserAgent is sent with every request when non-empty.
	UserAgent string

	// Transport overrides http.DefaultTransport.
	Transport http.RoundTripper

	// Logger receives one debug record per request.
	Logger *slog.Logger
}

// Client performs JSON round trips against the remote service.
type Client struct {
	baseURL   string
	timeout   time.Duration
	userAgent string
	http      *http.Client
	log       *slog.Logger
}

// New creates a Client. The bearer token is attached by an oauth2
// transport over a static token source, so no request is sent without it
// once a token is configured.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	rt := base
	if opts.Token != "" {
		rt = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{
				AccessToken: opts.Token,
				TokenType:   "Bearer",
			}),
			Base: base,
		}
	}

	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		timeout:   timeout,
		userAgent: opts.UserAgent,
		http:      &http.Client{Timeout: timeout, Transport: rt},
		log:       logger.Or(opts.Logger),
	}
}

// Request sends one request and returns the JSON body.
// A 204 or an empty 2xx body yields (nil, nil). Every failure is an *Error.
func (c *Client) Request(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &Error{Kind: ErrConnection, Message: fmt.Sprintf("invalid request URL: %v", err), Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("api request failed", "method", method, "url", req.URL.String(), "duration", time.Since(start), "error", err)
		return nil, c.transportError(err)
	}
	defer resp.Body.Close()

	c.log.Debug("api request", "method", method, "url", req.URL.String(), "status", resp.StatusCode, "duration", time.Since(start))

	if err := googleapi.CheckResponse(resp); err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			return nil, newStatusError(resp.StatusCode, gerr.Body, gerr.Message)
		}
		return nil, newStatusError(resp.StatusCode, "", "")
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportError(err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	if !json.Valid(data) {
		return nil, &Error{
			Kind:       ErrDecode,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%s: expected JSON, got %q", ErrDecode, truncate(string(data), maxBodyInMessage)),
			Body:       string(data),
		}
	}
	return json.RawMessage(data), nil
}

// transportError distinguishes "server took too long" from "could not connect".
func (c *Client) transportError(err error) *Error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &Error{
			Kind:    ErrTimeout,
			Message: fmt.Sprintf("the server took too long to respond (timeout %s)", c.timeout),
			Err:     err,
		}
	}
	if errors.Is(err, context.Canceled) {
		return &Error{Kind: ErrConnection, Message: "request cancelled", Err: err}
	}

	cause := err
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		cause = urlErr.Err
	}
	return &Error{
		Kind:    ErrConnection,
		Message: fmt.Sprintf("could not connect to %s: %v", c.baseURL, cause),
		Err:     err,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
