// Package record defines the registration record: one endpoint announcement
// (protocol, host, port, path and parameters) as published to the service registry,
// along with the service-key helpers used to partition records.
//
// Records are immutable. Two records are the same record when their FullString
// values are equal.
package record
