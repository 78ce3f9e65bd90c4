package driven

import (
	"context"
	"encoding/json"
	"net/url"
)

// RemoteCaller performs one authenticated HTTP call against a provider
// API and returns the parsed JSON body. Any non-2xx response, transport
// failure or unparseable body surfaces as *domain.RemoteError. The core
// and the connectors reach every provider exclusively through this
// contract; they never see raw responses or headers.
type RemoteCaller interface {
	// Request issues method against path (relative to the caller's base
	// URL) with optional query parameters and JSON body. A nil body
	// sends no payload.
	Request(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error)
}

// RemoteCallerFunc adapts a function to the RemoteCaller interface.
type RemoteCallerFunc func(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error)

// Request implements RemoteCaller.
func (f RemoteCallerFunc) Request(
	ctx context.Context, method, path string, query url.Values, body any,
) (json.RawMessage, error) {
	return f(ctx, method, path, query, body)
}
