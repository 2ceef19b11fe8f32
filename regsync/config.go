package regsync

import (
	"fmt"
	"time"
)

// Config tunes the synchronizer.
type Config struct {
	// IDCacheSize bounds the id table. 0 keeps every id forever.
	IDCacheSize int `yaml:"id_cache_size" mapstructure:"id_cache_size" json:"id_cache_size" validate:"gte=0"`

	// SubscribeAttempts is how many times Start tries to subscribe.
	SubscribeAttempts int `yaml:"subscribe_attempts" mapstructure:"subscribe_attempts" json:"subscribe_attempts" validate:"gte=0"`

	// SubscribeBackoff is the pause before the second attempt (e.g. "500ms").
	SubscribeBackoff string `yaml:"subscribe_backoff" mapstructure:"subscribe_backoff" json:"subscribe_backoff"`

	// Localhost is the host of the subscription descriptor.
	Localhost string `yaml:"localhost" mapstructure:"localhost" json:"localhost"`
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.SubscribeAttempts <= 0 {
		c.SubscribeAttempts = 5
	}
	if c.SubscribeBackoff == "" {
		c.SubscribeBackoff = "500ms"
	}
	if c.Localhost == "" {
		c.Localhost = "127.0.0.1"
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.IDCacheSize < 0 {
		return fmt.Errorf("sync.id_cache_size must not be negative")
	}
	if c.SubscribeAttempts < 1 {
		return fmt.Errorf("sync.subscribe_attempts must be at least 1")
	}
	if _, err := time.ParseDuration(c.SubscribeBackoff); err != nil {
		return fmt.Errorf("invalid sync.subscribe_backoff %q: %w", c.SubscribeBackoff, err)
	}
	return nil
}

func (c *Config) backoff() time.Duration {
	d, _ := time.ParseDuration(c.SubscribeBackoff)
	return d
}
