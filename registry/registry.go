package registry

import (
	"context"

	"github.com/kbukum/govkit/record"
)

// NotifyListener receives change notifications for a subscription.
// Backends deliver notifications to a listener one at a time.
type NotifyListener interface {
	Notify(records []*record.Record)
}

// Registry is a registration store with change subscriptions.
type Registry interface {
	// Register stores r, replacing any record with the same full string.
	Register(ctx context.Context, r *record.Record) error

	// Unregister removes r.
	Unregister(ctx context.Context, r *record.Record) error

	// Subscribe delivers the current state of every scope matching descriptor
	// to listener, then keeps delivering changes until Unsubscribe.
	Subscribe(ctx context.Context, descriptor *record.Record, listener NotifyListener) error

	// Unsubscribe stops deliveries for a descriptor/listener pair.
	Unsubscribe(ctx context.Context, descriptor *record.Record, listener NotifyListener) error

	// Close releases backend resources.
	Close() error
}

// Pinger is implemented by backends that can check their connection.
type Pinger interface {
	Ping(ctx context.Context) error
}
