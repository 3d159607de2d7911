// Package api is the client for the task repository's HTTP interface.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/tgienger/smartplanner/internal/models"
	"github.com/tgienger/smartplanner/internal/session"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

// Client talks to one task repository. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// WithLogger logs one line per request. The default discards.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New returns a client for the repository at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL is the repository address the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

type errorBody struct {
	Error string `json:"error"`
}

// do sends one request. sess is nil for endpoints that need no identity.
func (c *Client) do(ctx context.Context, op string, sess *session.Session, method, path string, in, out any) error {
	var token string
	if sess != nil {
		tok, ok := sess.Token()
		if !ok {
			return &Error{Op: op, Kind: KindNotAuthenticated, Message: "please log in"}
		}
		token = tok
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &Error{Op: op, Kind: KindRejected, Err: err}
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &Error{Op: op, Kind: KindUnavailable, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Printf("op=%q method=%s path=%s err=%q dur=%s", op, method, path, err, time.Since(start))
		return &Error{Op: op, Kind: KindUnavailable, Err: err}
	}
	defer resp.Body.Close()
	c.logger.Printf("op=%q method=%s path=%s status=%d dur=%s", op, method, path, resp.StatusCode, time.Since(start))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &Error{Op: op, Kind: KindUnavailable, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(op, resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		if errors.Is(err, models.ErrInvalidDate) || errors.Is(err, models.ErrInvalidPriority) {
			return &Error{Op: op, Kind: KindRejected, Status: resp.StatusCode, Message: err.Error(), Err: err}
		}
		return &Error{Op: op, Kind: KindUnavailable, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func statusError(op string, status int, data []byte) *Error {
	var eb errorBody
	_ = json.Unmarshal(data, &eb)

	e := &Error{Op: op, Status: status, Message: eb.Error}
	switch {
	case status == http.StatusUnauthorized:
		e.Kind = KindNotAuthenticated
	case status >= 400 && status < 500:
		e.Kind = KindRejected
	default:
		e.Kind = KindUnavailable
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}
