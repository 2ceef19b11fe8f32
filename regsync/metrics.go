package regsync

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the synchronizer's instruments.
type Metrics struct {
	notifications metric.Int64Counter
	tombstones    metric.Int64Counter
	mergeDuration metric.Float64Histogram
	idsAssigned   metric.Int64Counter
	records       metric.Int64ObservableGauge
	registration  metric.Registration
}

// NewMetrics creates the instruments on meter. The record gauge reads
// cache on every collection.
func NewMetrics(meter metric.Meter, cache *Cache) (*Metrics, error) {
	notifications, err := meter.Int64Counter("registry.notifications",
		metric.WithDescription("Notification batches merged, by category"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating registry.notifications counter: %w", err)
	}

	tombstones, err := meter.Int64Counter("registry.tombstones",
		metric.WithDescription("Tombstones applied"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating registry.tombstones counter: %w", err)
	}

	mergeDuration, err := meter.Float64Histogram("registry.merge.duration",
		metric.WithDescription("Duration of batch merges in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating registry.merge.duration histogram: %w", err)
	}

	idsAssigned, err := meter.Int64Counter("registry.ids.assigned",
		metric.WithDescription("Record ids allocated"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating registry.ids.assigned counter: %w", err)
	}

	records, err := meter.Int64ObservableGauge("registry.cache.records",
		metric.WithDescription("Records currently cached, by category"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating registry.cache.records gauge: %w", err)
	}

	reg, err := meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		for _, category := range cache.Categories() {
			o.ObserveInt64(records, int64(cache.Len(category)),
				metric.WithAttributes(attribute.String("category", category)))
		}
		return nil
	}, records)
	if err != nil {
		return nil, fmt.Errorf("registering registry.cache.records callback: %w", err)
	}

	return &Metrics{
		notifications: notifications,
		tombstones:    tombstones,
		mergeDuration: mergeDuration,
		idsAssigned:   idsAssigned,
		records:       records,
		registration:  reg,
	}, nil
}

// RecordMerge records one applied batch.
func (m *Metrics) RecordMerge(ctx context.Context, result MergeResult, duration time.Duration) {
	for _, category := range result.Categories {
		m.notifications.Add(ctx, 1, metric.WithAttributes(attribute.String("category", category)))
	}
	if result.Tombstones > 0 {
		m.tombstones.Add(ctx, int64(result.Tombstones))
	}
	if result.NewIDs > 0 {
		m.idsAssigned.Add(ctx, int64(result.NewIDs))
	}
	m.mergeDuration.Record(ctx, duration.Seconds())
}

// Close unregisters the gauge callback.
func (m *Metrics) Close() error {
	return m.registration.Unregister()
}
