package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"pocketkit/internal/crypto"
	"pocketkit/internal/models"
)

// SaveCredentials stores the authorized access token and username in the YAML file at
// path, keeping every other key. The token is encrypted when a secret is configured.
func (c *Config) SaveCredentials(path string, auth models.Authorization) error {
	doc := map[string]any{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if doc == nil {
			doc = map[string]any{}
		}
	case errors.Is(err, os.ErrNotExist):
		doc["consumer_key"] = c.ConsumerKey
	default:
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	storedToken := auth.AccessToken
	encrypted := c.Secret != ""
	if encrypted {
		storedToken, err = crypto.EncryptToken(auth.AccessToken, c.Secret)
		if err != nil {
			return fmt.Errorf("failed to encrypt access token: %w", err)
		}
	}

	doc["access_token"] = storedToken
	doc["access_token_encrypted"] = encrypted
	doc["username"] = auth.Username

	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}
	if err := os.WriteFile(path, out, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	c.AccessToken = auth.AccessToken
	c.Username = auth.Username
	return nil
}
