package registry

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Provider names.
const (
	ProviderMemory = "memory"
	ProviderConsul = "consul"
	ProviderRedis  = "redis"
)

// DefaultRoot is the key prefix shared with Dubbo registries.
const DefaultRoot = "dubbo"

// Config selects and configures the registry backend.
type Config struct {
	// Provider selects the backend: "memory", "consul" or "redis".
	Provider string `yaml:"provider" mapstructure:"provider"`

	// Root is the key prefix under which records are stored.
	Root string `yaml:"root" mapstructure:"root"`

	Consul ConsulConfig `yaml:"consul" mapstructure:"consul"`
	Redis  RedisConfig  `yaml:"redis" mapstructure:"redis"`
}

// ConsulConfig configures the consul KV backend.
type ConsulConfig struct {
	Address    string `yaml:"address" mapstructure:"address"`
	Scheme     string `yaml:"scheme" mapstructure:"scheme"`
	Token      string `yaml:"token" mapstructure:"token"`
	Datacenter string `yaml:"datacenter" mapstructure:"datacenter"`

	// WaitTime bounds each blocking query.
	WaitTime time.Duration `yaml:"wait_time" mapstructure:"wait_time"`

	// RetryInterval is the pause after a failed blocking query.
	RetryInterval time.Duration `yaml:"retry_interval" mapstructure:"retry_interval"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
	PoolSize int    `yaml:"pool_size" mapstructure:"pool_size"`

	// DialTimeout is the timeout for establishing new connections (e.g. "5s").
	DialTimeout string `yaml:"dial_timeout" mapstructure:"dial_timeout"`
	// ReadTimeout is the timeout for socket reads (e.g. "3s").
	ReadTimeout string `yaml:"read_timeout" mapstructure:"read_timeout"`

	// Expiry is how long a registration lives without renewal. Records are
	// renewed every Expiry/2 while the registry is open.
	Expiry time.Duration `yaml:"expiry" mapstructure:"expiry"`
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderMemory
	}
	c.Root = strings.Trim(c.Root, "/")
	if c.Root == "" {
		c.Root = DefaultRoot
	}

	if c.Consul.Address == "" {
		c.Consul.Address = "localhost:8500"
	}
	if c.Consul.Scheme == "" {
		c.Consul.Scheme = "http"
	}
	if c.Consul.WaitTime <= 0 {
		c.Consul.WaitTime = 30 * time.Second
	}
	if c.Consul.RetryInterval <= 0 {
		c.Consul.RetryInterval = time.Second
	}

	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Redis.PoolSize <= 0 {
		c.Redis.PoolSize = 10
	}
	if c.Redis.DialTimeout == "" {
		c.Redis.DialTimeout = "5s"
	}
	if c.Redis.ReadTimeout == "" {
		c.Redis.ReadTimeout = "3s"
	}
	if c.Redis.Expiry <= 0 {
		c.Redis.Expiry = 60 * time.Second
	}
}

// Validate checks that the selected provider is known and configured.
func (c *Config) Validate() error {
	known := []string{ProviderMemory, ProviderConsul, ProviderRedis}
	if !slices.Contains(known, c.Provider) {
		return fmt.Errorf("unsupported registry provider %q (want one of %v)", c.Provider, known)
	}
	switch c.Provider {
	case ProviderConsul:
		if c.Consul.Address == "" {
			return fmt.Errorf("registry.consul.address is required")
		}
	case ProviderRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("registry.redis.addr is required")
		}
		if _, err := time.ParseDuration(c.Redis.DialTimeout); err != nil {
			return fmt.Errorf("invalid registry.redis.dial_timeout %q: %w", c.Redis.DialTimeout, err)
		}
		if _, err := time.ParseDuration(c.Redis.ReadTimeout); err != nil {
			return fmt.Errorf("invalid registry.redis.read_timeout %q: %w", c.Redis.ReadTimeout, err)
		}
	}
	return nil
}
