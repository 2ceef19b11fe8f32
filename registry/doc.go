// Package registry defines the contract between the cache synchronizer and a
// service registry backend, plus the helpers backends share.
//
// A backend stores registration records and pushes change notifications to
// subscribers. Notifications are per scope (one interface within one
// category) and always carry the complete current list for that scope. When
// a scope becomes empty the backend sends a single tombstone record instead:
// protocol "empty", the scope's interface and category, group and version "*".
//
// Backends register a Factory under their provider name in an init function:
//
//	import _ "github.com/kbukum/govkit/registry/consul"
//
//	reg, err := registry.New(registry.Config{Provider: "consul"}, log)
package registry
