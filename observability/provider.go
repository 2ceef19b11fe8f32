package observability

import (
	"context"
	"errors"
)

// Providers holds the installed telemetry providers.
type Providers struct {
	shutdown []func(context.Context) error
}

// Init installs meter and tracer providers when cfg.Enabled is set. With
// telemetry disabled it returns empty Providers and the otel globals stay no-op.
func Init(ctx context.Context, cfg Config, res Resource) (*Providers, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Providers{}
	if !cfg.Enabled {
		return p, nil
	}

	mp, err := InitMeter(ctx, cfg, res)
	if err != nil {
		return nil, err
	}
	p.shutdown = append(p.shutdown, mp.Shutdown)

	tp, err := InitTracer(ctx, cfg, res)
	if err != nil {
		_ = mp.Shutdown(ctx)
		return nil, err
	}
	p.shutdown = append(p.shutdown, tp.Shutdown)
	return p, nil
}

// Shutdown flushes and stops every installed provider.
func (p *Providers) Shutdown(ctx context.Context) error {
	var errs []error
	for _, fn := range p.shutdown {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	p.shutdown = nil
	return errors.Join(errs...)
}
