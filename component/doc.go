// Package component defines the lifecycle contract shared by the registry
// backends, the cache synchronizer and the HTTP server.
//
// A Registry starts components in registration order and stops them in
// reverse, so the registry backend is registered before the synchronizer
// that subscribes to it.
package component
