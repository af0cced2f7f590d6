package connector

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
)

// Signer produces Woox-style request signatures for private endpoints.
//
// The signature is an HMAC-SHA256 hex digest over the canonical query
// string, keyed by the account's API secret. Canonical means url.Values
// encoding, which sorts keys lexicographically, so two calls with the same
// logical parameters sign identically and the signed string is byte-identical
// to the query string actually sent.
//
// The secret is never logged or persisted.
type Signer struct {
	apiKey    string
	apiSecret string
}

// NewSigner builds a Signer for one API key/secret pair.
func NewSigner(apiKey, apiSecret string) *Signer {
	return &Signer{apiKey: apiKey, apiSecret: apiSecret}
}

// CanonicalQuery returns the exact query string covered by the signature.
func CanonicalQuery(params url.Values) string {
	return params.Encode()
}

// Sign computes the hex HMAC-SHA256 digest of the canonical query string.
//
// An empty secret fails fast with ErrInvalidCredential rather than producing
// a signature the venue will reject.
func (s *Signer) Sign(params url.Values) (string, error) {
	if s.apiSecret == "" {
		return "", fmt.Errorf("%w: empty api secret", ErrInvalidCredential)
	}
	mac := hmac.New(sha256.New, []byte(s.apiSecret))
	mac.Write([]byte(CanonicalQuery(params)))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// Headers returns the authentication headers for a request carrying params:
// the public key identifier and the signature over those params.
func (s *Signer) Headers(params url.Values) (map[string]string, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("%w: empty api key", ErrInvalidCredential)
	}
	sig, err := s.Sign(params)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"x-api-key":       s.apiKey,
		"x-api-signature": sig,
	}, nil
}
