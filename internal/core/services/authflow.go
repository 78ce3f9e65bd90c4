package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/pollbridge/internal/core/domain"
	"github.com/custodia-labs/pollbridge/internal/core/ports/driving"
	"github.com/custodia-labs/pollbridge/internal/logger"
)

// tokenTimeout bounds token-endpoint calls.
const tokenTimeout = 30 * time.Second

// Ensure AuthFlowService implements the interface.
var _ driving.AuthFlow = (*AuthFlowService)(nil)

// OAuthConfig holds one provider's OAuth endpoints and client identity.
type OAuthConfig struct {
	// AuthURL is the provider's authorization endpoint.
	AuthURL string

	// TokenURL is the provider's token endpoint.
	TokenURL string

	// RedirectURI is where the provider sends the user back.
	RedirectURI string

	// ClientID identifies the registered OAuth application.
	ClientID string

	// ClientSecret authenticates the token-endpoint calls. Sent as HTTP
	// Basic auth, which the token endpoint requires regardless of PKCE.
	ClientSecret string
}

// IdentityFunc looks up a human-readable account label (and optional
// avatar URL) using a freshly obtained access token. Provider-specific;
// supplied by the connector.
type IdentityFunc func(ctx context.Context, accessToken string) (label, avatarURL string, err error)

// AuthFlowService implements the authorization-code-with-PKCE flow and
// refresh, decoupled from storage. The flow is stateless across the
// redirect: the verifier travels inside the state parameter.
type AuthFlowService struct {
	cfg      OAuthConfig
	identity IdentityFunc
	client   *http.Client
}

// NewAuthFlowService creates an auth flow for one provider.
func NewAuthFlowService(cfg OAuthConfig, identity IdentityFunc) *AuthFlowService {
	return &AuthFlowService{
		cfg:      cfg,
		identity: identity,
		client:   &http.Client{Timeout: tokenTimeout},
	}
}

// BuildAuthorizationURL generates a fresh PKCE pair and returns the
// authorization URL. state carries the code verifier so the callback
// can recover it with no server-side session.
func (s *AuthFlowService) BuildAuthorizationURL(clientID string, scopes []string) (string, error) {
	challenge, err := NewPKCEChallenge()
	if err != nil {
		return "", fmt.Errorf("generate pkce challenge: %w", err)
	}

	params := url.Values{
		"client_id":             {clientID},
		"response_type":         {"code"},
		"redirect_uri":          {s.cfg.RedirectURI},
		"scope":                 {strings.Join(scopes, " ")},
		"code_challenge":        {challenge.CodeChallenge},
		"code_challenge_method": {"S256"},
		"state":                 {challenge.CodeVerifier},
	}

	return s.cfg.AuthURL + "?" + params.Encode(), nil
}

// ExchangeCode exchanges an authorization code for tokens, then fetches
// the account identity with the new access token. A failure at either
// step is downgraded to ExchangeAuthFailed with an empty credential,
// because a broken connection attempt must not crash the host's
// connection-setup flow. This is the one place in the system where a
// remote failure does not propagate.
func (s *AuthFlowService) ExchangeCode(ctx context.Context, code, redirectURI, codeVerifier string) domain.ExchangeResult {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("redirect_uri", redirectURI)
	data.Set("code_verifier", codeVerifier)

	token, err := s.postToken(ctx, data)
	if err != nil {
		logger.Warn("code exchange failed: %v", err)
		return domain.ExchangeResult{Status: domain.ExchangeAuthFailed}
	}

	label, avatar := "", ""
	if s.identity != nil {
		label, avatar, err = s.identity(ctx, token.AccessToken)
		if err != nil {
			logger.Warn("identity lookup failed: %v", err)
			return domain.ExchangeResult{Status: domain.ExchangeAuthFailed}
		}
	}

	return domain.ExchangeResult{
		Status:           domain.ExchangeOK,
		Credential:       token.credential(),
		AccountLabel:     label,
		AccountAvatarURL: avatar,
	}
}

// Refresh obtains a new access token with a refresh grant. When the
// provider omits a rotated refresh token, the input token is carried
// forward; the caller must always persist whatever is returned here.
// Failures propagate, unlike ExchangeCode.
func (s *AuthFlowService) Refresh(ctx context.Context, refreshToken string) (*domain.Credential, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)

	token, err := s.postToken(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}

	cred := token.credential()
	if cred.RefreshToken == "" {
		cred.RefreshToken = refreshToken
	}
	return &cred, nil
}

// tokenResponse is the provider's token-endpoint response body.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// credential converts the response into a domain credential.
func (t tokenResponse) credential() domain.Credential {
	cred := domain.Credential{
		ID:           uuid.NewString(),
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresIn:    t.ExpiresIn,
	}
	if t.ExpiresIn > 0 {
		cred.Expiry = time.Now().Add(time.Duration(t.ExpiresIn) * time.Second)
	}
	return cred
}

// postToken sends a form-encoded grant to the token endpoint with HTTP
// Basic client authentication.
func (s *AuthFlowService) postToken(ctx context.Context, data url.Values) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Basic "+basicAuth(s.cfg.ClientID, s.cfg.ClientSecret))

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error       string `json:"error"`
			Description string `json:"error_description"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
			return nil, &domain.RemoteError{
				StatusCode:   resp.StatusCode,
				Message:      errResp.Description,
				ProviderType: errResp.Error,
			}
		}
		return nil, &domain.RemoteError{
			StatusCode: resp.StatusCode,
			Message:    "token request failed",
		}
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	return &token, nil
}

// basicAuth builds the base64 client-authentication value.
func basicAuth(clientID, clientSecret string) string {
	return base64.StdEncoding.EncodeToString([]byte(clientID + ":" + clientSecret))
}
