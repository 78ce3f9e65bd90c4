package domain

import "time"

// Credential holds tokens returned by a code exchange or refresh.
// The core never persists credentials; they are handed back to the host
// on every lifecycle operation.
type Credential struct {
	// ID is the host-side identifier for this credential record.
	ID string `json:"id"`

	// AccessToken is the bearer token for API access.
	AccessToken string `json:"access_token"`

	// RefreshToken obtains new access tokens. Providers that rotate
	// refresh tokens return a new one on each refresh; the host must
	// always persist whatever comes back here.
	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresIn is the access token lifetime in seconds, when known.
	ExpiresIn int `json:"expires_in,omitempty"`

	// Expiry is the computed expiry instant, when ExpiresIn was known.
	Expiry time.Time `json:"expiry,omitempty"`
}

// IsExpired returns true if the access token has expired.
func (c *Credential) IsExpired() bool {
	if c.Expiry.IsZero() {
		return false
	}
	return time.Now().After(c.Expiry)
}

// PKCEChallenge is a per-authorization-attempt challenge pair. The
// verifier rides in the authorization URL's state parameter so the
// callback can recover it without any server-side session.
type PKCEChallenge struct {
	// CodeVerifier is the high-entropy random secret.
	CodeVerifier string

	// CodeChallenge is base64url(sha256(CodeVerifier)).
	CodeChallenge string
}

// ExchangeStatus is the outcome kind of an authorization-code exchange.
type ExchangeStatus int

const (
	// ExchangeOK means tokens and account identity were obtained.
	ExchangeOK ExchangeStatus = iota

	// ExchangeAuthFailed means the token POST or the identity lookup
	// failed. The connection-setup flow proceeds with an empty result
	// instead of aborting; diagnostics go to the log only.
	ExchangeAuthFailed
)

// ExchangeResult is the normalised outcome of ExchangeCode. The failure
// case is part of the type rather than an error so callers cannot
// accidentally propagate it.
type ExchangeResult struct {
	// Status distinguishes success from a swallowed auth failure.
	Status ExchangeStatus

	// Credential holds the obtained tokens. Zero when Status is
	// ExchangeAuthFailed.
	Credential Credential

	// AccountLabel is a human-readable identifier for the connected
	// account, from the provider's identity endpoint.
	AccountLabel string

	// AccountAvatarURL is the account's avatar, when the provider has one.
	AccountAvatarURL string
}
