package regsync

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/govkit/component"
	"github.com/kbukum/govkit/errors"
	"github.com/kbukum/govkit/events"
	"github.com/kbukum/govkit/logger"
	"github.com/kbukum/govkit/observability"
	"github.com/kbukum/govkit/record"
	"github.com/kbukum/govkit/registry"
	"github.com/kbukum/govkit/resilience"
)

// Option customizes a Syncer.
type Option func(*Syncer)

// WithSink sends a change event per touched category after every merge.
func WithSink(sink events.Sink) Option {
	return func(s *Syncer) { s.sink = sink }
}

// WithMeter records merge metrics on meter instead of the global one.
func WithMeter(meter metric.Meter) Option {
	return func(s *Syncer) { s.meter = meter }
}

// WithTracer traces merges with tracer instead of the global one.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Syncer) { s.tracer = tracer }
}

// WithSource sets the Source of emitted events.
func WithSource(source string) Option {
	return func(s *Syncer) { s.source = source }
}

// Syncer mirrors the registry into a Cache. It is the registry listener
// and a lifecycle component.
type Syncer struct {
	cfg        Config
	reg        registry.Registry
	log        *logger.Logger
	descriptor *record.Record

	cache   *Cache
	ids     *IDAssigner
	merger  *Merger
	metrics *Metrics
	meter   metric.Meter
	tracer  trace.Tracer
	sink    events.Sink
	source  string

	// notifyMu keeps merges from overlapping.
	notifyMu sync.Mutex
	// lifecycleMu serializes Start and Stop. Backends may deliver the
	// initial state from inside Subscribe, so it is never taken by Notify.
	lifecycleMu sync.Mutex
	stopped     bool

	mu         sync.Mutex
	subscribed bool
	lastMerge  time.Time
}

var (
	_ component.Component     = (*Syncer)(nil)
	_ component.Describable   = (*Syncer)(nil)
	_ registry.NotifyListener = (*Syncer)(nil)
)

// New creates a Syncer reading from reg.
func New(cfg Config, reg registry.Registry, log *logger.Logger, opts ...Option) (*Syncer, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sync config: %w", err)
	}

	s := &Syncer{
		cfg:        cfg,
		reg:        reg,
		log:        log.WithComponent("regsync"),
		descriptor: registry.SubscribeDescriptor(cfg.Localhost),
		cache:      NewCache(),
		ids:        NewIDAssigner(cfg.IDCacheSize),
		sink:       events.Nop{},
		source:     "govkit",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.meter == nil {
		s.meter = observability.Meter("regsync")
	}
	if s.tracer == nil {
		s.tracer = observability.Tracer("regsync")
	}

	metrics, err := NewMetrics(s.meter, s.cache)
	if err != nil {
		return nil, err
	}
	s.metrics = metrics
	s.merger = NewMerger(s.cache, s.ids, s.log)
	return s, nil
}

// Name returns the component name.
func (s *Syncer) Name() string { return "regsync" }

// Start subscribes to every category, retrying as configured. A stopped
// Syncer cannot be started again.
func (s *Syncer) Start(ctx context.Context) error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()
	if s.stopped {
		return errors.ServiceUnavailable("registry syncer").WithDetail("reason", "stopped")
	}
	if s.isSubscribed() {
		return nil
	}

	retry := resilience.RetryConfig{
		MaxAttempts:    s.cfg.SubscribeAttempts,
		InitialBackoff: s.cfg.backoff(),
		MaxBackoff:     30 * time.Second,
		BackoffFactor:  2,
		Jitter:         0.1,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			s.log.Warn("subscribe failed, retrying", logger.Fields(
				"attempt", attempt,
				logger.FieldError, err.Error(),
				"backoff", backoff.String(),
			))
		},
	}
	err := resilience.RetryFunc(ctx, retry, func() error {
		return s.reg.Subscribe(ctx, s.descriptor, s)
	})
	if err != nil {
		s.log.Error("subscribe failed", logger.ErrorFields("subscribe", err))
		return errors.SubscriptionFailed(err)
	}
	s.mu.Lock()
	s.subscribed = true
	s.mu.Unlock()
	s.log.Info("subscribed to registry", logger.Fields("descriptor", s.descriptor.FullString()))
	return nil
}

// Stop unsubscribes and releases the metric callbacks. It is terminal:
// only the first call reaches the registry and later Starts fail.
func (s *Syncer) Stop(ctx context.Context) error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	s.mu.Lock()
	wasSubscribed := s.subscribed
	s.subscribed = false
	s.mu.Unlock()

	if !s.stopped {
		s.stopped = true
		if err := s.metrics.Close(); err != nil {
			s.log.Debug("metrics callback unregister failed", logger.ErrorFields("stop", err))
		}
	}
	if !wasSubscribed {
		return nil
	}
	if err := s.reg.Unsubscribe(ctx, s.descriptor, s); err != nil {
		return fmt.Errorf("unsubscribe: %w", err)
	}
	s.log.Info("unsubscribed from registry")
	return nil
}

func (s *Syncer) isSubscribed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subscribed
}

// Ready reports whether the subscription is established, i.e. the
// cache holds the registry's initial state.
func (s *Syncer) Ready() bool { return s.isSubscribed() }

// Health reports whether the subscription is active.
func (s *Syncer) Health(ctx context.Context) component.Health {
	s.mu.Lock()
	subscribed, last := s.subscribed, s.lastMerge
	s.mu.Unlock()

	h := component.Health{Name: s.Name(), Status: component.StatusHealthy}
	if !subscribed {
		h.Status = component.StatusUnhealthy
		h.Message = "not subscribed"
		return h
	}
	parts := make([]string, 0, len(record.AllCategories)+1)
	for _, category := range record.AllCategories {
		parts = append(parts, fmt.Sprintf("%s=%d", category, s.cache.Len(category)))
	}
	if !last.IsZero() {
		parts = append(parts, "last_merge="+last.UTC().Format(time.RFC3339))
	}
	h.Message = strings.Join(parts, " ")
	return h
}

// Describe returns the startup summary line.
func (s *Syncer) Describe() component.Description {
	return component.Description{
		Name:    "Registry Sync",
		Type:    "sync",
		Details: fmt.Sprintf("host=%s id_cache_size=%d", s.cfg.Localhost, s.cfg.IDCacheSize),
	}
}

// Notify merges one batch. It implements registry.NotifyListener.
func (s *Syncer) Notify(records []*record.Record) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	ctx, span := s.tracer.Start(context.Background(), "regsync.notify",
		trace.WithAttributes(attribute.Int("batch_size", len(records))))
	defer span.End()

	start := time.Now()
	result := s.merger.Apply(records)
	elapsed := time.Since(start)
	s.metrics.RecordMerge(ctx, result, elapsed)

	span.SetAttributes(
		attribute.StringSlice("categories", result.Categories),
		attribute.Int("tombstones", result.Tombstones),
	)
	if result.Empty() {
		return
	}

	s.mu.Lock()
	s.lastMerge = time.Now()
	s.mu.Unlock()

	fields := logger.DurationFields("merge", elapsed)
	fields[logger.FieldBatchSize] = len(records)
	fields[logger.FieldCategory] = strings.Join(result.Categories, ",")
	fields["tombstones"] = result.Tombstones
	fields["new_ids"] = result.NewIDs
	s.log.Debug("batch merged", fields)

	evs := make([]events.Event, 0, len(result.Categories))
	for _, category := range result.Categories {
		evs = append(evs, events.NewCacheChanged(s.source, category,
			result.Installed[category], result.Removed[category], result.RecordsByCategory[category]))
	}
	if err := s.sink.Publish(ctx, evs...); err != nil {
		observability.RecordError(span, err)
		s.log.Warn("publishing change events failed", logger.ErrorFields("publish", err))
	}
}

// Cache returns the live cache. Callers must treat it as read-only.
func (s *Syncer) Cache() *Cache { return s.cache }

// IDs returns the id assigner.
func (s *Syncer) IDs() *IDAssigner { return s.ids }

// FilterByCategory is Filter on the syncer's cache.
func (s *Syncer) FilterByCategory(category string, p Predicates) map[int64]*record.Record {
	return Filter(s.cache, category, p)
}

// FilterByID is FilterByID on the syncer's cache.
func (s *Syncer) FilterByID(category string, id int64) (int64, *record.Record, bool) {
	return FilterByID(s.cache, category, id)
}
