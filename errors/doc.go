// Package errors defines AppError and the error codes used across the
// registry synchronizer. Handlers convert an AppError to an ErrorResponse
// and reply with its HTTPStatus.
package errors
