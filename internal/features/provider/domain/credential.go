package domain

import "time"

// Credential represents one configured provider account: an API key plus the
// base URL it is valid for. Credentials are created and edited by an external
// settings collaborator; this engine consumes them read-only.
type Credential struct {
	// ID is the local identifier of the credential record.
	ID string `json:"id"`
	// DisplayName is the human-readable label shown in settings.
	DisplayName string `json:"display_name"`
	// APIKey is the bearer token sent on every provider request.
	APIKey string `json:"api_key"`
	// BaseURL is the provider API root for this account.
	BaseURL string `json:"base_url"`
	// IsActive marks the credential currently selected in settings.
	// At most one credential is active at a time.
	IsActive bool `json:"is_active"`
	// LastUsedAt is the last time a sync used this credential.
	LastUsedAt time.Time `json:"last_used_at,omitempty"`
}

// PseudoShopID returns the shop id used when a credential's shop list cannot
// be fetched and the whole credential degrades to one pseudo-shop. The prefix
// keeps repeated degraded fetches of the same credential colliding to one set.
func (c Credential) PseudoShopID() string {
	return "cred:" + c.ID
}
