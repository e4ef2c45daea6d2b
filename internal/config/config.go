package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"pocketkit/internal/crypto"
)

const envAccessToken = "POCKET_ACCESS_TOKEN"

const (
	LoginModeLocal   = "local"
	LoginModeBrowser = "browser"
)

type ConfigAPI struct {
	BaseURL string        `koanf:"base_url" env:"POCKET_API_BASE_URL" validate:"required,url"`
	Timeout time.Duration `koanf:"timeout" validate:"min=0"`
}

type ConfigLogin struct {
	Mode            string        `koanf:"mode" env:"POCKET_LOGIN_MODE" validate:"oneof=local browser"`
	Port            int           `koanf:"port" validate:"min=0,max=65535"`
	PollInterval    time.Duration `koanf:"poll_interval" validate:"gt=0"`
	PollAttempts    int           `koanf:"poll_attempts" validate:"min=1"`
	PollTimeout     time.Duration `koanf:"poll_timeout" validate:"min=0"`
	BrowserRedirect string        `koanf:"browser_redirect" validate:"required,url"`
}

type Config struct {
	ConsumerKey          string      `koanf:"consumer_key" env:"POCKET_CONSUMER_KEY" validate:"required"`
	AccessToken          string      `koanf:"access_token" env:"POCKET_ACCESS_TOKEN"`
	AccessTokenEncrypted bool        `koanf:"access_token_encrypted"`
	Username             string      `koanf:"username"`
	Secret               string      `koanf:"-" env:"POCKET_SECRET"`
	API                  ConfigAPI   `koanf:"api"`
	Login                ConfigLogin `koanf:"login"`
	LogLevel             string      `koanf:"log_level" env:"POCKET_LOG_LEVEL" validate:"oneof=error warn info debug"`
	MetricsFile          string      `koanf:"metrics_file" env:"POCKET_METRICS_FILE"`
}

func (c *Config) Validate() error {
	validate := validator.New()
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return fmt.Errorf("configuration validation failed: %v", validationErrors)
	}

	return err
}

// Load reads defaults, then the YAML file at path if it exists, then POCKET_* environment variables.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	parser := yaml.Parser()

	if err := setDefaultValues(k); err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	// A token from the environment is never stored sealed.
	if _, ok := os.LookupEnv(envAccessToken); ok {
		cfg.AccessTokenEncrypted = false
	}

	if err := cfg.decryptAccessToken(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) decryptAccessToken() error {
	if !c.AccessTokenEncrypted || c.AccessToken == "" {
		return nil
	}
	if c.Secret == "" {
		return errors.New("access token is encrypted but POCKET_SECRET is not set")
	}
	token, err := crypto.DecryptToken(c.AccessToken, c.Secret)
	if err != nil {
		return fmt.Errorf("failed to decrypt access token: %w", err)
	}
	c.AccessToken = token
	c.AccessTokenEncrypted = false
	return nil
}

func setDefaultValues(k *koanf.Koanf) error {
	return k.Load(confmap.Provider(map[string]any{
		"api.base_url":           "https://getpocket.com",
		"api.timeout":            "10s",
		"login.mode":             LoginModeLocal,
		"login.port":             8081,
		"login.poll_interval":    "500ms",
		"login.poll_attempts":    25,
		"login.poll_timeout":     "0s",
		"login.browser_redirect": "https://getpocket.com",
		"log_level":              "info",
	}, "."), nil)
}
