package airtable

import (
	"context"

	"github.com/custodia-labs/pollbridge/internal/core/services"
)

// Airtable OAuth constants.
const (
	defaultAuthURL = "https://airtable.com/oauth2/v1/authorize"
	//nolint:gosec // G101: Not credentials, OAuth endpoint URL
	defaultTokenURL = "https://airtable.com/oauth2/v1/token"
)

// DefaultScopes are the scopes the polling triggers and dictionaries need.
var DefaultScopes = []string{
	"data.records:read",
	"data.recordComments:read",
	"schema.bases:read",
}

// OAuthConfig returns the Airtable endpoints for the auth flow.
func OAuthConfig(clientID, clientSecret, redirectURI string) services.OAuthConfig {
	return services.OAuthConfig{
		AuthURL:      defaultAuthURL,
		TokenURL:     defaultTokenURL,
		RedirectURI:  redirectURI,
		ClientID:     clientID,
		ClientSecret: clientSecret,
	}
}

// Identity builds the identity lookup used after a code exchange. The
// account label is the email when Airtable exposes it, otherwise the
// opaque user id.
func Identity(newClient func(ctx context.Context, accessToken string) *Client) services.IdentityFunc {
	return func(ctx context.Context, accessToken string) (string, string, error) {
		id, email, err := newClient(ctx, accessToken).Whoami(ctx)
		if err != nil {
			return "", "", err
		}
		if email != "" {
			return email, "", nil
		}
		return id, "", nil
	}
}
