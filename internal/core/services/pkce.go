package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"

	"github.com/custodia-labs/pollbridge/internal/core/domain"
)

// PKCE code verifier entropy in bytes (RFC 7636 requires 32 minimum
// before encoding; base64url of 32 bytes is 43 characters).
const codeVerifierBytes = 32

// NewPKCEChallenge generates a fresh verifier/challenge pair for one
// authorization attempt.
func NewPKCEChallenge() (domain.PKCEChallenge, error) {
	verifier, err := generateCodeVerifier()
	if err != nil {
		return domain.PKCEChallenge{}, err
	}
	return domain.PKCEChallenge{
		CodeVerifier:  verifier,
		CodeChallenge: generateCodeChallenge(verifier),
	}, nil
}

// generateCodeVerifier creates a cryptographically random code verifier.
func generateCodeVerifier() (string, error) {
	bytes := make([]byte, codeVerifierBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	// Use base64url encoding without padding
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// generateCodeChallenge creates a S256 code challenge from the verifier.
func generateCodeChallenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}
