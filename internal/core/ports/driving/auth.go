package driving

import (
	"context"

	"github.com/custodia-labs/pollbridge/internal/core/domain"
)

// AuthFlow drives the authorization-code-with-PKCE lifecycle for one
// provider. Tokens are returned to the host every time; the flow itself
// holds no credential state.
type AuthFlow interface {
	// BuildAuthorizationURL returns the URL the user must visit to
	// grant access. The PKCE verifier is embedded in the URL's state
	// parameter so the later callback can recover it without any
	// server-side session.
	BuildAuthorizationURL(clientID string, scopes []string) (string, error)

	// ExchangeCode trades an authorization code for tokens and looks up
	// the account identity. Failures are reported through the result's
	// Status, never as an error: an interrupted connection attempt must
	// not abort the host's connection-setup flow.
	ExchangeCode(ctx context.Context, code, redirectURI, codeVerifier string) domain.ExchangeResult

	// Refresh obtains a new access token. Unlike ExchangeCode, failures
	// propagate so whatever scheduled the refresh can see them.
	Refresh(ctx context.Context, refreshToken string) (*domain.Credential, error)
}
