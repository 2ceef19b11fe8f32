// Package events describes changes to the registry cache for downstream
// consumers and defines where they are sent.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TypeCacheChanged is the type of every event emitted after a merge.
const TypeCacheChanged = "registry.cache.changed"

// Event reports what one merge did to one category.
type Event struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Source        string    `json:"source"`
	Timestamp     time.Time `json:"timestamp"`
	Category      string    `json:"category"`
	InstalledKeys []string  `json:"installed_keys,omitempty"`
	RemovedKeys   []string  `json:"removed_keys,omitempty"`
	Records       int       `json:"records"`
}

// NewCacheChanged builds a TypeCacheChanged event with a fresh id.
func NewCacheChanged(source, category string, installed, removed []string, records int) Event {
	return Event{
		ID:            uuid.NewString(),
		Type:          TypeCacheChanged,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		Category:      category,
		InstalledKeys: installed,
		RemovedKeys:   removed,
		Records:       records,
	}
}

// Sink receives events.
type Sink interface {
	Publish(ctx context.Context, events ...Event) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

var _ Sink = Nop{}

func (Nop) Publish(context.Context, ...Event) error { return nil }
func (Nop) Close() error                            { return nil }
