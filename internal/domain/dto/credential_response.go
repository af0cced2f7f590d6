package dto

import "time"

// CredentialRequest is the body accepted by POST /api/v1/credentials.
//
// Woox expects api_key + api_secret; Paradex expects a bearer token. Exactly
// one of the two shapes must be supplied, matching the platform.
type CredentialRequest struct {
	Platform  string `json:"platform" binding:"required" example:"woox"`
	APIKey    string `json:"api_key,omitempty"`
	APISecret string `json:"api_secret,omitempty"`
	Token     string `json:"token,omitempty"`
}

// CredentialInfo is credential metadata exposed by GET /api/v1/credentials.
// Key material is never returned.
type CredentialInfo struct {
	Platform  string    `json:"platform" example:"woox"`
	HasKey    bool      `json:"has_key" example:"true"`
	CreatedAt time.Time `json:"created_at"`
}
