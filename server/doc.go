// Package server provides the HTTP server of the sync service: Gin behind
// an h2c handler, a net/http middleware stack and the health-check endpoints.
//
// # Middleware
//
// Built-in middleware (server/middleware), applied around the root handler
// by ApplyMiddleware in this order:
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: X-Request-Id generation and propagation to the logger
//   - CORS: cross-origin resource sharing
//   - BodySizeLimit: request body size limits
//   - RequestLogger: request logging with duration tracking
//
// # Endpoints
//
// Built-in endpoints (server/endpoint): /health, /ready, /alive, /info and
// /version. The governance API is mounted by package server/api.
package server
