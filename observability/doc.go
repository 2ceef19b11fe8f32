// Package observability sets up OpenTelemetry metrics and tracing.
//
// Init installs OTLP/HTTP meter and tracer providers as the otel globals.
// Packages create their instruments from Meter(name) and spans from
// Tracer(name), so with telemetry disabled they fall back to the otel no-op
// providers without any code change.
package observability
