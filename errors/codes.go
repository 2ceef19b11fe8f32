package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Registry/availability errors (retryable)
const (
	// ErrCodeServiceUnavailable indicates a dependency is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeRegistry indicates the registry rejected or failed an operation.
	ErrCodeRegistry ErrorCode = "REGISTRY_ERROR"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Lifecycle errors
const (
	// ErrCodeSubscriptionFailed indicates the registry subscription could not be established.
	ErrCodeSubscriptionFailed ErrorCode = "SUBSCRIPTION_FAILED"
)

// Resource errors
const (
	// ErrCodeNotFound indicates the requested record was not found in the cache.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeConflict indicates the cached record changed underneath the caller.
	ErrCodeConflict ErrorCode = "CONFLICT"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeRegistry:           true,
	ErrCodeTimeout:            true,
	ErrCodeSubscriptionFailed: false,
	ErrCodeInternal:           false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
