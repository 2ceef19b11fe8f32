// Package memory is an in-process registry backend. It keeps records in
// maps and notifies subscribers synchronously from Register and Unregister,
// which makes it the backend of choice for tests and single-node setups.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/kbukum/govkit/errors"
	"github.com/kbukum/govkit/logger"
	"github.com/kbukum/govkit/record"
	"github.com/kbukum/govkit/registry"
)

func init() {
	registry.RegisterFactory(registry.ProviderMemory, func(_ registry.Config, log *logger.Logger) (registry.Registry, error) {
		return New(log), nil
	})
}

// Registry stores records per scope.
type Registry struct {
	// writeMu orders changes and their notifications.
	writeMu sync.Mutex

	mu     sync.RWMutex
	scopes map[registry.Scope]map[string]*record.Record
	closed bool

	subs registry.Subscriptions
	log  *logger.Logger
}

var _ registry.Registry = (*Registry)(nil)

// New creates an empty Registry.
func New(log *logger.Logger) *Registry {
	return &Registry{
		scopes: make(map[registry.Scope]map[string]*record.Record),
		log:    log,
	}
}

// Register implements registry.Registry.
func (m *Registry) Register(ctx context.Context, r *record.Record) error {
	if err := checkRecord(r); err != nil {
		return err
	}
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	scope := registry.ScopeOf(r)
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return errors.ServiceUnavailable("registry")
	}
	entries, ok := m.scopes[scope]
	if !ok {
		entries = make(map[string]*record.Record)
		m.scopes[scope] = entries
	}
	entries[r.FullString()] = r
	snapshot := sortedRecords(entries)
	m.mu.Unlock()

	m.log.Debug("record registered", logger.Fields(
		logger.FieldInterface, scope.Interface,
		logger.FieldCategory, scope.Category,
		logger.FieldAddress, r.Address(),
	))
	m.subs.Broadcast(scope, snapshot)
	return nil
}

// Unregister implements registry.Registry. Removing an unknown record is a no-op.
func (m *Registry) Unregister(ctx context.Context, r *record.Record) error {
	if err := checkRecord(r); err != nil {
		return err
	}
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	scope := registry.ScopeOf(r)
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return errors.ServiceUnavailable("registry")
	}
	entries := m.scopes[scope]
	if _, ok := entries[r.FullString()]; !ok {
		m.mu.Unlock()
		return nil
	}
	delete(entries, r.FullString())
	if len(entries) == 0 {
		delete(m.scopes, scope)
	}
	snapshot := sortedRecords(entries)
	m.mu.Unlock()

	m.log.Debug("record unregistered", logger.Fields(
		logger.FieldInterface, scope.Interface,
		logger.FieldCategory, scope.Category,
		logger.FieldAddress, r.Address(),
	))
	m.subs.Broadcast(scope, snapshot)
	return nil
}

// Subscribe implements registry.Registry.
func (m *Registry) Subscribe(ctx context.Context, descriptor *record.Record, listener registry.NotifyListener) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return errors.ServiceUnavailable("registry")
	}
	current := make(map[registry.Scope][]*record.Record, len(m.scopes))
	for scope, entries := range m.scopes {
		current[scope] = sortedRecords(entries)
	}
	m.mu.RUnlock()

	sub, added := m.subs.Add(descriptor, listener)
	if !added {
		return nil
	}
	for _, scope := range sortedScopes(current) {
		m.subs.Deliver(sub, scope, current[scope])
	}
	return nil
}

// Unsubscribe implements registry.Registry.
func (m *Registry) Unsubscribe(ctx context.Context, descriptor *record.Record, listener registry.NotifyListener) error {
	if !m.subs.Remove(descriptor, listener) {
		return errors.NotFound("subscription", descriptor.FullString())
	}
	return nil
}

// Close drops every subscription; later calls fail with ServiceUnavailable.
func (m *Registry) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.subs.Clear()
	return nil
}

// Records returns every stored record ordered by full string.
func (m *Registry) Records() []*record.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*record.Record
	for _, entries := range m.scopes {
		for _, r := range entries {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, compareRecords)
	return out
}

func checkRecord(r *record.Record) error {
	if r == nil {
		return errors.MissingField("record")
	}
	if r.IsTombstone() {
		return errors.InvalidInput("record", "tombstones cannot be registered")
	}
	if r.ServiceInterface() == "" {
		return errors.InvalidInput("interface", "record has no service interface")
	}
	return nil
}

func sortedRecords(entries map[string]*record.Record) []*record.Record {
	out := make([]*record.Record, 0, len(entries))
	for _, r := range entries {
		out = append(out, r)
	}
	slices.SortFunc(out, compareRecords)
	return out
}

func sortedScopes(m map[registry.Scope][]*record.Record) []registry.Scope {
	out := make([]registry.Scope, 0, len(m))
	for s := range m {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b registry.Scope) int {
		if c := strings.Compare(a.Interface, b.Interface); c != 0 {
			return c
		}
		return strings.Compare(a.Category, b.Category)
	})
	return out
}

func compareRecords(a, b *record.Record) int {
	return strings.Compare(a.FullString(), b.FullString())
}
