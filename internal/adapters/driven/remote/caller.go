// Package remote implements the HTTP RemoteCaller adapter. One caller
// wraps one provider API base URL with bearer authentication, rate
// limiting and error normalisation.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/pollbridge/internal/core/domain"
	"github.com/custodia-labs/pollbridge/internal/core/ports/driven"
	"github.com/custodia-labs/pollbridge/internal/logger"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// defaultRequestsPerSecond is a conservative sustained rate.
	defaultRequestsPerSecond = 5.0

	// defaultBurst is the token-bucket burst size.
	defaultBurst = 5
)

// Ensure Caller implements the interface.
var _ driven.RemoteCaller = (*Caller)(nil)

// Caller performs authenticated JSON calls against one provider API.
type Caller struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// Option customises a Caller.
type Option func(*Caller)

// WithRateLimit overrides the default request rate.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(c *Caller) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}

// WithHTTPClient substitutes the underlying HTTP client. Useful for
// tests and for providers that need no authentication.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Caller) {
		c.client = client
	}
}

// NewCaller creates a caller for baseURL authenticated with accessToken.
// An empty token produces an unauthenticated client for providers that
// carry credentials in the path (bot-token APIs).
func NewCaller(ctx context.Context, baseURL, accessToken string, opts ...Option) *Caller {
	var client *http.Client
	if accessToken != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
		client = oauth2.NewClient(ctx, ts)
	} else {
		client = &http.Client{}
	}
	client.Timeout = DefaultTimeout

	c := &Caller{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(defaultRequestsPerSecond), defaultBurst),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request issues one call and returns the parsed JSON body. Non-2xx
// responses, transport failures and unparseable bodies all surface as
// *domain.RemoteError with a flattened message; response headers are
// dropped before anything can log them.
func (c *Caller) Request(
	ctx context.Context, method, path string, query url.Values, body any,
) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, payload)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	logger.Debug("remote: %s %s", method, reqURL)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &domain.RemoteError{Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.RemoteError{StatusCode: resp.StatusCode, Message: "read response body"}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, normaliseError(resp.StatusCode, raw)
	}

	if len(raw) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(raw) {
		return nil, &domain.RemoteError{StatusCode: resp.StatusCode, Message: "malformed JSON response"}
	}
	return json.RawMessage(raw), nil
}

// normaliseError unwraps the common provider error envelopes into a
// flat RemoteError. Unknown shapes fall back to the raw body text.
func normaliseError(status int, raw []byte) *domain.RemoteError {
	// {"error": {"type": "...", "message": "..."}}
	var nested struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil && nested.Error.Message != "" {
		return &domain.RemoteError{
			StatusCode:   status,
			Message:      nested.Error.Message,
			ProviderType: nested.Error.Type,
		}
	}

	// {"ok": false, "description": "...", "error_code": ...}
	var flat struct {
		Description string `json:"description"`
	}
	if err := json.Unmarshal(raw, &flat); err == nil && flat.Description != "" {
		return &domain.RemoteError{StatusCode: status, Message: flat.Description}
	}

	// {"error": "..."}
	var plain struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &plain); err == nil && plain.Error != "" {
		return &domain.RemoteError{StatusCode: status, Message: plain.Error}
	}

	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &domain.RemoteError{StatusCode: status, Message: msg}
}
