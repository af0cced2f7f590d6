package models

import (
	"strings"
	"time"
)

// Credential is opaque authentication material for one venue: an API
// key/secret pair (Woox) or a bearer token (Paradex). It is owned by the
// credential store; connectors only read it. Absence or invalidity must
// never crash the pipeline; the connector degrades to its public tiers.
type Credential struct {
	Platform  Platform
	APIKey    string
	APISecret string
	Token     string
	CreatedAt time.Time
}

// BearerToken returns the token normalized for use in an Authorization
// header: a redundant leading "Bearer " in the stored value is stripped so
// the header is never "Bearer Bearer <token>".
func (c *Credential) BearerToken() string {
	if c == nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(c.Token), "Bearer "))
}
