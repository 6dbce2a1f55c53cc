package adapters

import (
	"encoding/json"
	"fmt"
	"os"

	"shop-order-sync/internal/core/config"
	"shop-order-sync/internal/features/provider/domain"
)

// LoadCredentials reads the credential records maintained by the external
// settings collaborator. A JSON file takes precedence; the env fallback
// synthesizes a single active credential for minimal deployments.
func LoadCredentials(cfg config.CredentialsConfig) ([]domain.Credential, error) {
	if cfg.File != "" {
		return loadCredentialsFile(cfg.File)
	}

	if cfg.BaseURL != "" && cfg.APIKey != "" {
		return []domain.Credential{
			{
				ID:          "default",
				DisplayName: "Default",
				APIKey:      cfg.APIKey,
				BaseURL:     cfg.BaseURL,
				IsActive:    true,
			},
		}, nil
	}

	return nil, nil
}

// loadCredentialsFile parses a JSON array of credential records.
func loadCredentialsFile(path string) ([]domain.Credential, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var creds []domain.Credential
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}

	active := 0
	for _, c := range creds {
		if c.IsActive {
			active++
		}
	}
	if active > 1 {
		return nil, fmt.Errorf("credentials file marks %d credentials active, at most one allowed", active)
	}

	return creds, nil
}
