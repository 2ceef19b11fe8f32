// Command govkit-sync mirrors a Dubbo-style service registry into memory and
// serves governance queries over HTTP.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kbukum/govkit/bootstrap"
	"github.com/kbukum/govkit/config"
	"github.com/kbukum/govkit/events"
	"github.com/kbukum/govkit/events/kafka"
	"github.com/kbukum/govkit/governance"
	"github.com/kbukum/govkit/logger"
	"github.com/kbukum/govkit/observability"
	"github.com/kbukum/govkit/registry"
	"github.com/kbukum/govkit/regsync"
	"github.com/kbukum/govkit/server"
	"github.com/kbukum/govkit/server/api"
	"github.com/kbukum/govkit/version"

	_ "github.com/kbukum/govkit/registry/consul"
	_ "github.com/kbukum/govkit/registry/memory"
	_ "github.com/kbukum/govkit/registry/redis"
)

const serviceName = "govkit-sync"

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := &Config{}
	if err := config.LoadConfig(serviceName, cfg, config.WithEnvPrefix("GOVKIT")); err != nil {
		return err
	}
	if cfg.Name == "" {
		cfg.Name = serviceName
	}
	if cfg.Version == "" {
		cfg.Version = version.Get().Short()
	}

	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		return err
	}
	log := app.Logger

	telemetry, err := observability.Init(ctx, cfg.Observability, observability.Resource{
		ServiceName:    cfg.Name,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
	})
	if err != nil {
		return fmt.Errorf("observability: %w", err)
	}
	defer func() {
		if err := telemetry.Shutdown(context.Background()); err != nil {
			log.Warn("telemetry shutdown", logger.ErrorFields("shutdown", err))
		}
	}()

	sink, err := newSink(cfg.Kafka, log)
	if err != nil {
		return err
	}

	reg := registry.NewComponent(cfg.Registry, log)
	syncer, err := regsync.New(cfg.Sync, reg, log, regsync.WithSink(sink), regsync.WithSource(cfg.Name))
	if err != nil {
		return err
	}

	if err := app.RegisterComponent(reg); err != nil {
		return err
	}
	if err := app.RegisterComponent(events.NewComponent(sink)); err != nil {
		return err
	}
	if err := app.RegisterComponent(syncer); err != nil {
		return err
	}

	if cfg.Server.Enabled {
		srv := server.New(cfg.Server, log)
		srv.ApplyDefaults(cfg.Name, app.Components.HealthAll, syncer.Ready)
		api.NewHandler(governance.NewServices(syncer, reg, log)).Register(srv.GinEngine())
		if err := app.RegisterComponent(server.NewComponent(srv)); err != nil {
			return err
		}
	}

	return app.Run(ctx)
}

// newSink returns the kafka publisher when enabled, else events.Nop.
func newSink(cfg kafka.Config, log *logger.Logger) (events.Sink, error) {
	if !cfg.Enabled {
		return events.Nop{}, nil
	}
	p, err := kafka.NewPublisher(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("events: %w", err)
	}
	return p, nil
}
