package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/govkit/component"
	"github.com/kbukum/govkit/errors"
	"github.com/kbukum/govkit/logger"
	"github.com/kbukum/govkit/record"
)

// Component owns the lifecycle of the configured backend. It implements
// Registry by delegating to the backend, so the synchronizer and the
// governance services can be wired before the backend exists.
type Component struct {
	cfg Config
	log *logger.Logger

	mu  sync.RWMutex
	reg Registry
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
	_ Registry              = (*Component)(nil)
)

// NewComponent creates a registry Component.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, log: log}
}

// Name returns the component name.
func (c *Component) Name() string { return "registry" }

// Start builds the backend.
func (c *Component) Start(ctx context.Context) error {
	reg, err := New(c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("registry start: %w", err)
	}
	if p, ok := reg.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			_ = reg.Close()
			return errors.RegistryError("ping", err)
		}
	}

	c.mu.Lock()
	c.reg = reg
	c.mu.Unlock()
	return nil
}

// Stop closes the backend.
func (c *Component) Stop(ctx context.Context) error {
	c.mu.Lock()
	reg := c.reg
	c.reg = nil
	c.mu.Unlock()

	if reg == nil {
		return nil
	}
	return reg.Close()
}

// Health reports whether the backend is running and reachable.
func (c *Component) Health(ctx context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}

	reg := c.backend()
	if reg == nil {
		h.Status = component.StatusUnhealthy
		h.Message = "registry not started"
		return h
	}
	if p, ok := reg.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			h.Status = component.StatusUnhealthy
			h.Message = err.Error()
		}
	}
	return h
}

// Describe returns the startup summary line.
func (c *Component) Describe() component.Description {
	details := fmt.Sprintf("provider=%s root=%s", c.cfg.Provider, c.cfg.Root)
	switch c.cfg.Provider {
	case ProviderConsul:
		details += " addr=" + c.cfg.Consul.Address
	case ProviderRedis:
		details += " addr=" + c.cfg.Redis.Addr
	}
	return component.Description{Name: "Registry", Type: "registry", Details: details}
}

// Backend returns the running backend, or nil before Start.
func (c *Component) Backend() Registry { return c.backend() }

func (c *Component) backend() Registry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reg
}

func (c *Component) require() (Registry, error) {
	if reg := c.backend(); reg != nil {
		return reg, nil
	}
	return nil, errors.ServiceUnavailable("registry")
}

// Register implements Registry.
func (c *Component) Register(ctx context.Context, r *record.Record) error {
	reg, err := c.require()
	if err != nil {
		return err
	}
	return reg.Register(ctx, r)
}

// Unregister implements Registry.
func (c *Component) Unregister(ctx context.Context, r *record.Record) error {
	reg, err := c.require()
	if err != nil {
		return err
	}
	return reg.Unregister(ctx, r)
}

// Subscribe implements Registry.
func (c *Component) Subscribe(ctx context.Context, descriptor *record.Record, listener NotifyListener) error {
	reg, err := c.require()
	if err != nil {
		return err
	}
	return reg.Subscribe(ctx, descriptor, listener)
}

// Unsubscribe implements Registry.
func (c *Component) Unsubscribe(ctx context.Context, descriptor *record.Record, listener NotifyListener) error {
	reg, err := c.require()
	if err != nil {
		return err
	}
	return reg.Unsubscribe(ctx, descriptor, listener)
}

// Close is a no-op; the backend is closed by Stop.
func (c *Component) Close() error { return nil }
