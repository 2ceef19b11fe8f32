// Package governance turns cached registry records into the views an
// operator works with (providers, consumers, routes, overrides and
// weights) and writes governance changes back through the registry.
//
// Views are computed on every read and hold no references into the cache.
// Translators return nil for a nil record; list translators return views
// sorted by id.
//
// Writes never touch the cache directly. A service registers the new
// record and unregisters the old one, and the change reaches the cache
// through the normal subscription path.
//
//	svcs := governance.NewServices(syncer, reg, log)
//	providers := svcs.Providers.FindByService("com.x.Foo:1.0")
//	if err := svcs.Providers.Disable(ctx, providers[0].ID); err != nil {
//	    return err
//	}
package governance
