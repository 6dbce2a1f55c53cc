package domain

import "strings"

// Shop is one remote store identity reported by a provider under a credential.
type Shop struct {
	// ID is the string-normalized provider shop id.
	ID string `json:"shop_id"`
	// Name is the display name reported by the provider.
	Name string `json:"shop_name"`
}

// NormalizeShopID maps the provider's shop id (which may arrive as a number,
// a padded string, or mixed case across endpoints) to the canonical string
// form, so repeated fetches of the same shop always collide to one set.
func NormalizeShopID(raw string) string {
	id := strings.TrimSpace(raw)
	id = strings.TrimSuffix(id, ".0") // numeric ids decoded through float64
	return strings.ToLower(id)
}
