package services

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pollbridge/internal/core/domain"
)

// tokenServer fakes a provider token endpoint. It records the last form
// it received and serves the configured response.
type tokenServer struct {
	*httptest.Server
	lastForm url.Values
	lastAuth string
}

func newTokenServer(t *testing.T, status int, body string) *tokenServer {
	t.Helper()
	ts := &tokenServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		ts.lastForm = r.PostForm
		ts.lastAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func testConfig(tokenURL string) OAuthConfig {
	return OAuthConfig{
		AuthURL:      "https://provider.example/authorize",
		TokenURL:     tokenURL,
		RedirectURI:  "http://localhost:8642/callback",
		ClientID:     "client-123",
		ClientSecret: "secret-456",
	}
}

func TestBuildAuthorizationURL(t *testing.T) {
	flow := NewAuthFlowService(testConfig("https://provider.example/token"), nil)

	raw, err := flow.BuildAuthorizationURL("client-123", []string{"data.records:read", "schema.bases:read"})
	require.NoError(t, err)

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	query := parsed.Query()

	assert.Equal(t, "client-123", query.Get("client_id"))
	assert.Equal(t, "code", query.Get("response_type"))
	assert.Equal(t, "http://localhost:8642/callback", query.Get("redirect_uri"))
	assert.Equal(t, "data.records:read schema.bases:read", query.Get("scope"))
	assert.Equal(t, "S256", query.Get("code_challenge_method"))

	// state doubles as the PKCE verifier, so the challenge must be its
	// S256 transform.
	verifier := query.Get("state")
	require.NotEmpty(t, verifier)
	hash := sha256.Sum256([]byte(verifier))
	assert.Equal(t, base64.RawURLEncoding.EncodeToString(hash[:]), query.Get("code_challenge"))
}

func TestExchangeCode(t *testing.T) {
	ctx := context.Background()

	t.Run("success returns credential and identity", func(t *testing.T) {
		server := newTokenServer(t, http.StatusOK,
			`{"access_token":"at-1","refresh_token":"rt-1","expires_in":3600}`)
		identity := func(_ context.Context, accessToken string) (string, string, error) {
			assert.Equal(t, "at-1", accessToken)
			return "user@example.com", "https://cdn.example/avatar.png", nil
		}
		flow := NewAuthFlowService(testConfig(server.URL), identity)

		result := flow.ExchangeCode(ctx, "auth-code", "http://localhost:8642/callback", "verifier-abc")

		assert.Equal(t, domain.ExchangeOK, result.Status)
		assert.Equal(t, "at-1", result.Credential.AccessToken)
		assert.Equal(t, "rt-1", result.Credential.RefreshToken)
		assert.NotEmpty(t, result.Credential.ID)
		assert.Equal(t, "user@example.com", result.AccountLabel)
		assert.Equal(t, "https://cdn.example/avatar.png", result.AccountAvatarURL)

		assert.Equal(t, "authorization_code", server.lastForm.Get("grant_type"))
		assert.Equal(t, "auth-code", server.lastForm.Get("code"))
		assert.Equal(t, "verifier-abc", server.lastForm.Get("code_verifier"))
	})

	t.Run("sends basic client authentication", func(t *testing.T) {
		server := newTokenServer(t, http.StatusOK, `{"access_token":"at-1"}`)
		flow := NewAuthFlowService(testConfig(server.URL), nil)

		flow.ExchangeCode(ctx, "code", "http://localhost:8642/callback", "v")

		expected := "Basic " + base64.StdEncoding.EncodeToString([]byte("client-123:secret-456"))
		assert.Equal(t, expected, server.lastAuth)
	})

	t.Run("rejected code degrades to auth failed", func(t *testing.T) {
		server := newTokenServer(t, http.StatusBadRequest,
			`{"error":"invalid_grant","error_description":"code expired"}`)
		flow := NewAuthFlowService(testConfig(server.URL), nil)

		result := flow.ExchangeCode(ctx, "stale-code", "http://localhost:8642/callback", "v")

		assert.Equal(t, domain.ExchangeAuthFailed, result.Status)
		assert.Empty(t, result.Credential.AccessToken)
	})

	t.Run("identity failure after a good token also degrades", func(t *testing.T) {
		server := newTokenServer(t, http.StatusOK, `{"access_token":"at-1"}`)
		identity := func(context.Context, string) (string, string, error) {
			return "", "", errors.New("whoami unavailable")
		}
		flow := NewAuthFlowService(testConfig(server.URL), identity)

		result := flow.ExchangeCode(ctx, "code", "http://localhost:8642/callback", "v")

		assert.Equal(t, domain.ExchangeAuthFailed, result.Status)
		assert.Empty(t, result.Credential.AccessToken, "token must not leak out of a failed exchange")
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("rotated refresh token replaces the old one", func(t *testing.T) {
		server := newTokenServer(t, http.StatusOK,
			`{"access_token":"at-2","refresh_token":"rt-2","expires_in":3600}`)
		flow := NewAuthFlowService(testConfig(server.URL), nil)

		cred, err := flow.Refresh(ctx, "rt-1")

		require.NoError(t, err)
		assert.Equal(t, "at-2", cred.AccessToken)
		assert.Equal(t, "rt-2", cred.RefreshToken)
		assert.False(t, cred.Expiry.IsZero())
		assert.Equal(t, "refresh_token", server.lastForm.Get("grant_type"))
		assert.Equal(t, "rt-1", server.lastForm.Get("refresh_token"))
	})

	t.Run("missing refresh token in response carries the input forward", func(t *testing.T) {
		server := newTokenServer(t, http.StatusOK, `{"access_token":"at-2","expires_in":3600}`)
		flow := NewAuthFlowService(testConfig(server.URL), nil)

		cred, err := flow.Refresh(ctx, "rt-1")

		require.NoError(t, err)
		assert.Equal(t, "rt-1", cred.RefreshToken)
	})

	t.Run("failure propagates as a remote error", func(t *testing.T) {
		server := newTokenServer(t, http.StatusUnauthorized,
			`{"error":"invalid_grant","error_description":"refresh token revoked"}`)
		flow := NewAuthFlowService(testConfig(server.URL), nil)

		cred, err := flow.Refresh(ctx, "rt-revoked")

		require.Error(t, err)
		assert.Nil(t, cred)

		var remoteErr *domain.RemoteError
		require.ErrorAs(t, err, &remoteErr)
		assert.Equal(t, http.StatusUnauthorized, remoteErr.StatusCode)
		assert.Equal(t, "invalid_grant", remoteErr.ProviderType)
		assert.Equal(t, "refresh token revoked", remoteErr.Message)
	})
}
