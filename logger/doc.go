// Package logger provides structured logging on top of zerolog.
//
// Loggers carry the service name and, through WithComponent, the component
// that emitted the line. Registry code logs with the domain field keys
// declared in fields.go (category, service_key, record_id, ...).
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("regsync")
//	log.Info("batch merged", logger.Fields(logger.FieldCategory, "providers"))
package logger
