package registry

import (
	"fmt"
	"sync"

	"github.com/kbukum/govkit/logger"
)

// Factory builds a backend from cfg. cfg has defaults applied and is valid.
type Factory func(cfg Config, log *logger.Logger) (Registry, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// RegisterFactory makes a backend available under name. Backend packages
// call it from init.
func RegisterFactory(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = f
}

// New builds the backend selected by cfg.Provider.
func New(cfg Config, log *logger.Logger) (Registry, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("registry config: %w", err)
	}

	factoriesMu.RLock()
	f, ok := factories[cfg.Provider]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("registry provider %q not registered", cfg.Provider)
	}
	return f(cfg, log.WithComponent("registry."+cfg.Provider))
}
