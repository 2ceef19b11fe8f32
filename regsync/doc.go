// Package regsync keeps an in-memory mirror of a service registry.
//
// A Syncer subscribes to every category of the registry and feeds each
// notification batch through a Merger into a Cache. The Cache is
// partitioned by category and service key; each distinct registration
// record gets a stable id from an IDAssigner, so the same record keeps the
// same id across notifications.
//
// Reads go through Filter and FilterByID and never block the writer:
//
//	providers := regsync.Filter(s.Cache(), record.CategoryProviders,
//		regsync.ByService("com.x.Foo:1.0").With(record.KeyApplication, "app1"))
package regsync
