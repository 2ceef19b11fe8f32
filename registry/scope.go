package registry

import (
	"strings"

	"github.com/kbukum/govkit/record"
)

// SubscribeDescriptor returns the admin descriptor that subscribes to every
// category, interface, group and version.
func SubscribeDescriptor(localhost string) *record.Record {
	return record.New(record.ProtocolAdmin, localhost, 0, "", map[string]string{
		record.KeyCategory:   strings.Join(record.AllCategories, ","),
		record.KeyCheck:      "false",
		record.KeyClassifier: record.AnyValue,
		record.KeyEnabled:    record.AnyValue,
		record.KeyGroup:      record.AnyValue,
		record.KeyInterface:  record.AnyValue,
		record.KeyVersion:    record.AnyValue,
	})
}

// Tombstone returns the record announcing that scope is now empty for the
// subscriber identified by descriptor. Group and version keep the
// descriptor's values, so a wildcard subscriber receives a wildcard sweep.
func Tombstone(descriptor *record.Record, iface, category string) *record.Record {
	return descriptor.
		WithProtocol(record.ProtocolEmpty).
		WithPath(iface).
		WithParams(map[string]string{
			record.KeyInterface: iface,
			record.KeyCategory:  category,
		})
}

// Matches reports whether r is covered by the subscription descriptor.
func Matches(descriptor, r *record.Record) bool {
	if !matchesScope(descriptor, ScopeOf(r)) {
		return false
	}

	if descriptor.Param(record.KeyEnabled) != record.AnyValue && !r.IsTombstone() &&
		!r.BoolParam(record.KeyEnabled, true) {
		return false
	}

	return matchesList(descriptor.Param(record.KeyGroup), r.Group()) &&
		matchesList(descriptor.Param(record.KeyVersion), r.Version()) &&
		matchesList(descriptor.Param(record.KeyClassifier), r.Param(record.KeyClassifier))
}

func matchesScope(descriptor *record.Record, s Scope) bool {
	iface := descriptor.ServiceInterface()
	if iface != record.AnyValue && iface != s.Interface {
		return false
	}
	return matchesList(descriptor.ParamOr(record.KeyCategory, record.DefaultCategory), s.Category)
}

// matchesList reports whether value is one of the comma-separated patterns.
// An empty pattern list only matches an empty value.
func matchesList(patterns, value string) bool {
	if patterns == "" {
		return value == ""
	}
	for _, p := range strings.Split(patterns, ",") {
		if record.MatchesPattern(strings.TrimSpace(p), value) {
			return true
		}
	}
	return false
}

// Scope is the unit of notification: one interface within one category.
type Scope struct {
	Interface string
	Category  string
}

// ScopeOf returns the scope r belongs to.
func ScopeOf(r *record.Record) Scope {
	return Scope{Interface: r.ServiceInterface(), Category: r.Category()}
}

// Path returns root/interface/category.
func (s Scope) Path(root string) string {
	return root + "/" + s.Interface + "/" + s.Category
}

// ParseScopePath is the inverse of Scope.Path. Extra trailing segments are
// ignored so a record key below the scope also parses.
func ParseScopePath(root, p string) (Scope, bool) {
	rest, ok := strings.CutPrefix(p, root+"/")
	if !ok {
		return Scope{}, false
	}
	parts := strings.SplitN(rest, "/", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return Scope{}, false
	}
	return Scope{Interface: parts[0], Category: parts[1]}, true
}

// GroupByScope partitions records by scope.
func GroupByScope(records []*record.Record) map[Scope][]*record.Record {
	out := make(map[Scope][]*record.Record)
	for _, r := range records {
		s := ScopeOf(r)
		out[s] = append(out[s], r)
	}
	return out
}

// ScopeNotification returns what the subscriber described by descriptor
// receives for scope given its current records: the matching records, a
// tombstone when none match, or nil when the scope is outside the
// subscription.
func ScopeNotification(descriptor *record.Record, s Scope, records []*record.Record) []*record.Record {
	if !matchesScope(descriptor, s) {
		return nil
	}
	out := make([]*record.Record, 0, len(records))
	for _, r := range records {
		if Matches(descriptor, r) {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return []*record.Record{Tombstone(descriptor, s.Interface, s.Category)}
	}
	return out
}
