package registry

import (
	"sync"

	"github.com/kbukum/govkit/record"
)

// Subscription pairs a descriptor with its listener.
type Subscription struct {
	Descriptor *record.Record
	Listener   NotifyListener
}

// Subscriptions is the listener table backends share. Deliveries are
// serialized so a listener never sees two notifications at once.
type Subscriptions struct {
	mu   sync.RWMutex
	subs []Subscription

	deliverMu sync.Mutex
}

// Add registers a subscription and reports whether it was new.
func (s *Subscriptions) Add(descriptor *record.Record, listener NotifyListener) (Subscription, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := Subscription{Descriptor: descriptor, Listener: listener}
	if s.indexLocked(descriptor, listener) >= 0 {
		return sub, false
	}
	s.subs = append(s.subs, sub)
	return sub, true
}

// Remove drops a subscription and reports whether it existed.
func (s *Subscriptions) Remove(descriptor *record.Record, listener NotifyListener) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(descriptor, listener)
	if i < 0 {
		return false
	}
	s.subs = append(s.subs[:i], s.subs[i+1:]...)
	return true
}

// Len returns the number of subscriptions.
func (s *Subscriptions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// Clear drops every subscription.
func (s *Subscriptions) Clear() {
	s.mu.Lock()
	s.subs = nil
	s.mu.Unlock()
}

func (s *Subscriptions) indexLocked(descriptor *record.Record, listener NotifyListener) int {
	for i, sub := range s.subs {
		if sub.Listener == listener && sub.Descriptor.Equal(descriptor) {
			return i
		}
	}
	return -1
}

// Deliver sends the notification for one scope to one subscription.
func (s *Subscriptions) Deliver(sub Subscription, scope Scope, records []*record.Record) {
	batch := ScopeNotification(sub.Descriptor, scope, records)
	if batch == nil {
		return
	}
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	sub.Listener.Notify(batch)
}

// Broadcast sends the notification for one scope to every subscription.
func (s *Subscriptions) Broadcast(scope Scope, records []*record.Record) {
	s.mu.RLock()
	subs := make([]Subscription, len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()

	for _, sub := range subs {
		s.Deliver(sub, scope, records)
	}
}
