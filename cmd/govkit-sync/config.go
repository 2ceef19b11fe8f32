package main

import (
	"fmt"

	"github.com/kbukum/govkit/config"
	"github.com/kbukum/govkit/events/kafka"
	"github.com/kbukum/govkit/observability"
	"github.com/kbukum/govkit/registry"
	"github.com/kbukum/govkit/regsync"
	"github.com/kbukum/govkit/server"
)

// Config is the govkit-sync configuration file.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Registry      registry.Config      `yaml:"registry" mapstructure:"registry"`
	Sync          regsync.Config       `yaml:"sync" mapstructure:"sync"`
	Kafka         kafka.Config         `yaml:"kafka" mapstructure:"kafka"`
	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills every section.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Registry.ApplyDefaults()
	c.Sync.ApplyDefaults()
	c.Kafka.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	checks := []struct {
		section string
		check   func() error
	}{
		{"registry", c.Registry.Validate},
		{"sync", c.Sync.Validate},
		{"kafka", c.Kafka.Validate},
		{"server", c.Server.Validate},
		{"observability", c.Observability.Validate},
	}
	for _, s := range checks {
		if err := s.check(); err != nil {
			return fmt.Errorf("%s: %w", s.section, err)
		}
	}
	return nil
}
