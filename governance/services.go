package governance

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/kbukum/govkit/errors"
	"github.com/kbukum/govkit/logger"
	"github.com/kbukum/govkit/record"
	"github.com/kbukum/govkit/registry"
	"github.com/kbukum/govkit/regsync"
	"github.com/kbukum/govkit/resilience"
)

// Reader is the read side of the synchronized cache.
type Reader interface {
	FilterByCategory(category string, p regsync.Predicates) map[int64]*record.Record
	FilterByID(category string, id int64) (int64, *record.Record, bool)
}

var _ Reader = (*regsync.Syncer)(nil)

// Services bundles the governance services over one cache and registry.
type Services struct {
	Providers *ProviderService
	Consumers *ConsumerService
	Routes    *RouteService
	Overrides *OverrideService
}

// NewServices wires every service to reader and reg.
func NewServices(reader Reader, reg registry.Registry, log *logger.Logger) *Services {
	w := NewWriter(reg, log, DefaultWriteRetry())
	overrides := NewOverrideService(reader, w)
	return &Services{
		Providers: NewProviderService(reader, w, overrides),
		Consumers: NewConsumerService(reader),
		Routes:    NewRouteService(reader, w),
		Overrides: overrides,
	}
}

// DefaultWriteRetry retries transient registry failures briefly.
func DefaultWriteRetry() resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.MaxBackoff = time.Second
	return cfg
}

// Writer applies registry writes with retries.
type Writer struct {
	reg   registry.Registry
	log   *logger.Logger
	retry resilience.RetryConfig
}

// NewWriter creates a Writer.
func NewWriter(reg registry.Registry, log *logger.Logger, retry resilience.RetryConfig) *Writer {
	return &Writer{reg: reg, log: log.WithComponent("governance"), retry: retry}
}

// Register announces r.
func (w *Writer) Register(ctx context.Context, r *record.Record) error {
	err := resilience.RetryFunc(ctx, w.retry, func() error {
		return w.reg.Register(ctx, r)
	})
	if err != nil {
		w.log.Error("register failed", logger.Fields(
			logger.FieldServiceKey, r.ServiceKey(),
			logger.FieldCategory, r.Category(),
			logger.FieldError, err.Error(),
		))
		return err
	}
	w.log.Debug("registered", logger.Fields(logger.FieldServiceKey, r.ServiceKey(), logger.FieldCategory, r.Category()))
	return nil
}

// Unregister withdraws r.
func (w *Writer) Unregister(ctx context.Context, r *record.Record) error {
	err := resilience.RetryFunc(ctx, w.retry, func() error {
		return w.reg.Unregister(ctx, r)
	})
	if err != nil {
		w.log.Error("unregister failed", logger.Fields(
			logger.FieldServiceKey, r.ServiceKey(),
			logger.FieldCategory, r.Category(),
			logger.FieldError, err.Error(),
		))
		return err
	}
	w.log.Debug("unregistered", logger.Fields(logger.FieldServiceKey, r.ServiceKey(), logger.FieldCategory, r.Category()))
	return nil
}

// Replace registers next before withdrawing prev, so the endpoint never
// disappears from subscribers. Identical records are left alone.
func (w *Writer) Replace(ctx context.Context, prev, next *record.Record) error {
	if prev.Equal(next) {
		return nil
	}
	if err := w.Register(ctx, next); err != nil {
		return err
	}
	return w.Unregister(ctx, prev)
}

// lookup finds a cached record by id and reports a Conflict when it is gone.
func lookup(reader Reader, category string, id int64, resource string) (*record.Record, error) {
	if id <= 0 {
		return nil, errors.MissingField("id")
	}
	_, r, ok := reader.FilterByID(category, id)
	if !ok {
		return nil, errors.Conflict(resource + " was changed").WithDetail("id", id)
	}
	return r, nil
}

// find returns the view for id or NotFound.
func find[T any](reader Reader, category string, id int64, resource string, fn func(int64, *record.Record) *T) (*T, error) {
	_, r, ok := reader.FilterByID(category, id)
	if !ok {
		return nil, errors.RecordNotFound(resource, id)
	}
	return fn(id, r), nil
}

// distinct collects the non-empty values of field across records, sorted.
func distinct(records map[int64]*record.Record, field func(*record.Record) string) []string {
	set := make(map[string]struct{}, len(records))
	for _, r := range records {
		if v := field(r); v != "" {
			set[v] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(set))
}

func serviceKeyOf(r *record.Record) string  { return r.ServiceKey() }
func addressOf(r *record.Record) string     { return r.Address() }
func hostOf(r *record.Record) string        { return r.Host() }
func applicationOf(r *record.Record) string { return r.Param(record.KeyApplication) }

// predicates ANDs the non-empty service, address and application filters.
func predicates(service, address, application string) regsync.Predicates {
	p := regsync.Predicates{}
	if service != "" {
		p = p.With(regsync.KeyService, service)
	}
	if address != "" {
		p = p.With(regsync.KeyAddress, address)
	}
	if application != "" {
		p = p.With(record.KeyApplication, application)
	}
	return p
}
