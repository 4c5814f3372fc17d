// Package config loads the process configuration from the environment.
// The struct is constructed once at startup and passed by reference into
// constructors; nothing else reads the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full configuration surface.
type Config struct {
	// Registry (the remote structured store).
	RegistryURL                 string `env:"REGISTRY_URL"`
	RegistryToken               string `env:"REGISTRY_TOKEN"`
	RegistryPeopleCollection    string `env:"REGISTRY_PEOPLE_COLLECTION"`
	RegistryFormsCollection     string `env:"REGISTRY_FORMS_COLLECTION"`
	RegistryResponsesCollection string `env:"REGISTRY_RESPONSES_COLLECTION"`

	// Gateway (the form-response service).
	GatewayURL string `env:"GATEWAY_URL"`

	// Channel (notification delivery).
	ChannelURL   string `env:"CHANNEL_URL"`
	ChannelToken string `env:"CHANNEL_TOKEN"`

	// Dispatch policy.
	DryRun      bool `env:"DRY_RUN" envDefault:"false"`
	RateLimitMS int  `env:"RATE_LIMIT_MS" envDefault:"0"`

	// Fan-out bound for all-forms operations.
	MaxParallelForms int `env:"MAX_PARALLEL_FORMS" envDefault:"4"`

	// Local run-history store. Empty means ~/.rappel/history.db.
	HistoryDBPath string `env:"HISTORY_DB_PATH"`
}

// Load reads .env (when present) and parses the environment.
func Load() (*Config, error) {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// RateLimit returns the inter-send delay as a duration.
func (c *Config) RateLimit() time.Duration {
	if c.RateLimitMS <= 0 {
		return 0
	}
	return time.Duration(c.RateLimitMS) * time.Millisecond
}

// Validate checks that the collaborator endpoints needed for engine
// operations are present. The CLI calls this before wiring services, so a
// missing variable fails fast with a usable message.
func (c *Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"REGISTRY_URL", c.RegistryURL},
		{"REGISTRY_TOKEN", c.RegistryToken},
		{"REGISTRY_PEOPLE_COLLECTION", c.RegistryPeopleCollection},
		{"REGISTRY_FORMS_COLLECTION", c.RegistryFormsCollection},
		{"REGISTRY_RESPONSES_COLLECTION", c.RegistryResponsesCollection},
		{"GATEWAY_URL", c.GatewayURL},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("missing required environment variable: %s", r.name)
		}
	}
	// Channel settings are only required for real sends; dry-run and
	// sync-only workflows run without them.
	if !c.DryRun && (c.ChannelURL == "" || c.ChannelToken == "") {
		return fmt.Errorf("CHANNEL_URL and CHANNEL_TOKEN are required unless DRY_RUN=true")
	}
	return nil
}
