// Package validation validates API request bodies and configuration structs.
//
// Struct tags are checked with go-playground/validator. Besides the stock
// tags, two registry-specific tags are registered:
//
//	servicekey  a [group/]interface[:version] key with a non-empty interface
//	hostport    a host:port address with a numeric port
//
// Failures are returned as *errors.AppError with per-field details.
//
//	type WeightRequest struct {
//	    Service string `json:"service" validate:"required,servicekey"`
//	    Address string `json:"address" validate:"omitempty,hostport"`
//	}
//	if err := validation.Validate(req); err != nil { ... }
package validation
