// Package api is a client for the FitCamp REST backend.
//
// Every response is wrapped in {success, message, data}. An HTTP 401 from an
// authenticated endpoint is reported as ErrUnauthorized, meaning the session
// has expired; every other failure is an *Error or a transport error and
// says nothing about the session.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	apperrors "github.com/jrsteele09/fitcamp-session/internal/errors"
)

const maxResponseBytes = 4 << 20

// ErrUnauthorized is returned when the backend rejects the bearer token.
var ErrUnauthorized = apperrors.ErrSessionExpired

// Error is a failed backend call: a non-2xx status or success=false.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("fitcamp api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("fitcamp api: %s (status %d)", e.Message, e.StatusCode)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Client calls the FitCamp backend at a fixed base URL.
type Client struct {
	baseURL    string
	base       *http.Client
	authed     *http.Client
	onActivity func()
}

// Option defines a function type to modify the Client instance.
type Option func(*Client)

// WithHTTPClient sets the client used for every request. Its transport is
// wrapped to add the bearer token on authenticated calls.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.base = c
		}
	}
}

// WithActivityHook runs fn before every outbound request, so the session
// layer can record that the tab is in use.
func WithActivityHook(fn func()) Option {
	return func(cl *Client) {
		cl.onActivity = fn
	}
}

// New creates a client for baseURL. tokens supplies the bearer token for
// authenticated endpoints and may be nil when only public endpoints are used.
func New(baseURL string, tokens oauth2.TokenSource, options ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		base:    http.DefaultClient,
	}
	for _, opt := range options {
		opt(c)
	}

	if tokens != nil {
		c.authed = &http.Client{
			Transport: &oauth2.Transport{Source: tokens, Base: c.base.Transport},
			Timeout:   c.base.Timeout,
		}
	}
	return c
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	authed bool
}

func (c *Client) call(ctx context.Context, r request, out any) error {
	var body io.Reader
	var contentType string
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.send(ctx, r, body, contentType, out)
}

func (c *Client) send(ctx context.Context, r request, body io.Reader, contentType string, out any) error {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return errors.Wrapf(err, "build %s %s", r.method, r.path)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	httpClient := c.base
	if r.authed {
		if c.authed == nil {
			return apperrors.ErrNotLoggedIn
		}
		httpClient = c.authed
	}
	if c.onActivity != nil {
		c.onActivity()
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", r.method, r.path)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		log.Info().Str("path", r.path).Msg("Backend rejected bearer token")
		return errors.Wrapf(ErrUnauthorized, "%s %s", r.method, r.path)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return errors.Wrapf(err, "read %s %s", r.method, r.path)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := env.Message
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &Error{StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return errors.Wrapf(decodeErr, "decode %s %s", r.method, r.path)
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "request failed"
		}
		return &Error{StatusCode: resp.StatusCode, Message: msg}
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return errors.Wrapf(err, "decode %s %s data", r.method, r.path)
		}
	}
	return nil
}

// IsUnauthorized reports whether err means the session has expired.
func IsUnauthorized(err error) bool {
	return apperrors.Is(err, ErrUnauthorized)
}
