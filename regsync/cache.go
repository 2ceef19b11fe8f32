package regsync

import (
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/kbukum/govkit/record"
)

// ServiceMap is one category of the cache: service key to id to record.
// Maps returned by the Cache are shared snapshots and must not be modified.
type ServiceMap map[string]map[int64]*record.Record

// Cache holds one copy-on-write ServiceMap per category. Readers load the
// current snapshot without locking; writers are serialized and publish a
// new snapshot per Update.
type Cache struct {
	writeMu sync.Mutex
	slots   sync.Map // category -> *atomic.Pointer[ServiceMap]
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{}
}

func (c *Cache) slot(category string) *atomic.Pointer[ServiceMap] {
	if p, ok := c.slots.Load(category); ok {
		return p.(*atomic.Pointer[ServiceMap])
	}
	return nil
}

// Get returns the current snapshot of category, or nil when it is unknown.
func (c *Cache) Get(category string) ServiceMap {
	p := c.slot(category)
	if p == nil {
		return nil
	}
	if m := p.Load(); m != nil {
		return *m
	}
	return nil
}

// Update runs fn against category and publishes the result at once.
// Nothing is published when fn makes no change.
func (c *Cache) Update(category string, fn func(txn *CategoryTxn)) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	p := c.slot(category)
	if p == nil {
		actual, _ := c.slots.LoadOrStore(category, new(atomic.Pointer[ServiceMap]))
		p = actual.(*atomic.Pointer[ServiceMap])
	}
	var base ServiceMap
	if m := p.Load(); m != nil {
		base = *m
	}

	txn := &CategoryTxn{base: base}
	fn(txn)
	if txn.next != nil {
		next := txn.next
		p.Store(&next)
	}
}

// ReplaceCategoryBatch overwrites the id-map of every service key in
// entries. Keys absent from entries are left alone.
func (c *Cache) ReplaceCategoryBatch(category string, entries ServiceMap) {
	c.Update(category, func(txn *CategoryTxn) { txn.Replace(entries) })
}

// RemoveServiceKey drops one service key.
func (c *Cache) RemoveServiceKey(category, serviceKey string) {
	c.Update(category, func(txn *CategoryTxn) { txn.RemoveServiceKey(serviceKey) })
}

// RemoveMatchingKeysForInterface drops every key of iface whose group and
// version match the patterns. "*" matches anything.
func (c *Cache) RemoveMatchingKeysForInterface(category, iface, groupPattern, versionPattern string) {
	c.Update(category, func(txn *CategoryTxn) {
		txn.RemoveMatchingKeysForInterface(iface, groupPattern, versionPattern)
	})
}

// Categories returns every category that was ever written, sorted.
func (c *Cache) Categories() []string {
	var out []string
	c.slots.Range(func(k, _ any) bool {
		out = append(out, k.(string))
		return true
	})
	slices.Sort(out)
	return out
}

// Len returns the number of records cached for category.
func (c *Cache) Len(category string) int {
	n := 0
	for _, ids := range c.Get(category) {
		n += len(ids)
	}
	return n
}

// CategoryTxn stages changes to one category. The published snapshot is
// copied on the first change; id-maps are replaced, never edited.
type CategoryTxn struct {
	base ServiceMap
	next ServiceMap
}

func (t *CategoryTxn) current() ServiceMap {
	if t.next != nil {
		return t.next
	}
	return t.base
}

func (t *CategoryTxn) mutable() ServiceMap {
	if t.next == nil {
		t.next = maps.Clone(t.base)
		if t.next == nil {
			t.next = make(ServiceMap)
		}
	}
	return t.next
}

// Get returns the id-map staged for serviceKey.
func (t *CategoryTxn) Get(serviceKey string) map[int64]*record.Record {
	return t.current()[serviceKey]
}

// Keys returns the staged service keys, sorted.
func (t *CategoryTxn) Keys() []string {
	return slices.Sorted(maps.Keys(t.current()))
}

// Replace overwrites the id-map of every key in entries.
func (t *CategoryTxn) Replace(entries ServiceMap) {
	if len(entries) == 0 {
		return
	}
	m := t.mutable()
	for key, ids := range entries {
		m[key] = maps.Clone(ids)
	}
}

// RemoveServiceKey drops serviceKey and reports whether it was present.
func (t *CategoryTxn) RemoveServiceKey(serviceKey string) bool {
	if _, ok := t.current()[serviceKey]; !ok {
		return false
	}
	delete(t.mutable(), serviceKey)
	return true
}

// RemoveMatchingKeysForInterface drops the keys of iface matching the
// group and version patterns and returns them sorted.
func (t *CategoryTxn) RemoveMatchingKeysForInterface(iface, groupPattern, versionPattern string) []string {
	var removed []string
	for _, key := range t.Keys() {
		group, keyIface, version := record.ParseServiceKey(key)
		if keyIface != iface {
			continue
		}
		if !record.MatchesPattern(groupPattern, group) || !record.MatchesPattern(versionPattern, version) {
			continue
		}
		delete(t.mutable(), key)
		removed = append(removed, key)
	}
	return removed
}
