package server

import (
	"fmt"
	"time"

	"github.com/kbukum/govkit/server/middleware"
	"github.com/kbukum/govkit/util"
)

// Config holds the HTTP listener settings. Durations use time.ParseDuration
// syntax ("15s").
type Config struct {
	Enabled      bool                  `yaml:"enabled" mapstructure:"enabled"`
	Host         string                `yaml:"host" mapstructure:"host"`
	Port         int                   `yaml:"port" mapstructure:"port"`
	ReadTimeout  string                `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout string                `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  string                `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	MaxBodySize  string                `yaml:"max_body_size" mapstructure:"max_body_size"`
	CORS         middleware.CORSConfig `yaml:"cors" mapstructure:"cors"`
}

// ApplyDefaults fills unset fields. The governance API only serves reads,
// so the body limit is small and CORS allows GET and preflight only.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == "" {
		c.ReadTimeout = "15s"
	}
	if c.WriteTimeout == "" {
		c.WriteTimeout = "15s"
	}
	if c.IdleTimeout == "" {
		c.IdleTimeout = "60s"
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "64KB"
	}

	cors := &c.CORS
	if len(cors.AllowedOrigins) == 0 {
		cors.AllowedOrigins = []string{"*"}
	}
	if len(cors.AllowedMethods) == 0 {
		cors.AllowedMethods = []string{"GET", "HEAD", "OPTIONS"}
	}
	if len(cors.AllowedHeaders) == 0 {
		cors.AllowedHeaders = []string{"Accept", "Content-Type", middleware.HeaderRequestID}
	}
	if len(cors.ExposedHeaders) == 0 {
		cors.ExposedHeaders = []string{middleware.HeaderRequestID}
	}
	if cors.MaxAge == 0 {
		cors.MaxAge = 600
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535 (got: %d)", c.Port)
	}
	for _, d := range []struct{ name, value string }{
		{"read_timeout", c.ReadTimeout},
		{"write_timeout", c.WriteTimeout},
		{"idle_timeout", c.IdleTimeout},
	} {
		if v, err := time.ParseDuration(d.value); err != nil || v < 0 {
			return fmt.Errorf("server.%s must be a non-negative duration (got: %q)", d.name, d.value)
		}
	}
	if c.MaxBodySize != "" && util.ParseSize(c.MaxBodySize, -1) < 0 {
		return fmt.Errorf("server.max_body_size is not a size (got: %q)", c.MaxBodySize)
	}
	return nil
}

func duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
