package regsync

import (
	"maps"

	"github.com/kbukum/govkit/record"
)

// Reserved predicate keys.
const (
	// KeyService restricts a lookup to one service key.
	KeyService = ".service"
	// KeyAddress matches the record's host:port.
	KeyAddress = ".address"
)

// Predicates is a set of conditions that must all hold. Keys other than
// KeyService and KeyAddress compare a record parameter for equality.
type Predicates map[string]string

// ByService starts a predicate set restricted to serviceKey.
func ByService(serviceKey string) Predicates {
	return Predicates{KeyService: serviceKey}
}

// ByAddress starts a predicate set matching host:port.
func ByAddress(address string) Predicates {
	return Predicates{KeyAddress: address}
}

// ByApplication starts a predicate set matching the application parameter.
func ByApplication(application string) Predicates {
	return Predicates{record.KeyApplication: application}
}

// With returns a copy of p with key set to value.
func (p Predicates) With(key, value string) Predicates {
	out := maps.Clone(p)
	if out == nil {
		out = make(Predicates, 1)
	}
	out[key] = value
	return out
}

// Filter returns every record of category that satisfies p, keyed by id.
// It never returns nil.
func Filter(cache *Cache, category string, p Predicates) map[int64]*record.Record {
	out := make(map[int64]*record.Record)
	services := cache.Get(category)
	if len(services) == 0 {
		return out
	}

	rest := maps.Clone(p)
	if key, ok := rest[KeyService]; ok {
		delete(rest, KeyService)
		ids := services[record.NormalizeServiceKey(key)]
		collect(out, ids, rest)
		return out
	}
	for _, ids := range services {
		collect(out, ids, rest)
	}
	return out
}

func collect(out, ids map[int64]*record.Record, p Predicates) {
	for id, r := range ids {
		if matches(r, p) {
			out[id] = r
		}
	}
}

func matches(r *record.Record, p Predicates) bool {
	for key, want := range p {
		var got string
		switch key {
		case KeyAddress:
			got = r.Address()
		case KeyService:
			got = r.ServiceKey()
			want = record.NormalizeServiceKey(want)
		default:
			got = r.Param(key)
		}
		if got != want {
			return false
		}
	}
	return true
}

// FilterByID finds the record with id in category.
func FilterByID(cache *Cache, category string, id int64) (int64, *record.Record, bool) {
	for _, ids := range cache.Get(category) {
		if r, ok := ids[id]; ok {
			return id, r, true
		}
	}
	return 0, nil, false
}
