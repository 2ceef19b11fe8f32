package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/kbukum/govkit/logger"
)

// HeaderRequestID carries the request id on requests and responses.
const HeaderRequestID = "X-Request-Id"

// RequestID injects a unique X-Request-Id into every request and response
// and stores it on the request context for logger.WithContext.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(HeaderRequestID)
			if id == "" {
				id = uuid.New().String()
				r.Header.Set(HeaderRequestID, id)
			}
			w.Header().Set(HeaderRequestID, id)
			next.ServeHTTP(w, r.WithContext(logger.ContextWithRequestID(r.Context(), id)))
		})
	}
}

// requestLog returns log tagged with r's request id. Middleware placed
// outside RequestID only sees the id through the shared header map.
func requestLog(log *logger.Logger, r *http.Request) *logger.Logger {
	ctx := r.Context()
	if logger.RequestIDFromContext(ctx) == "" {
		if id := r.Header.Get(HeaderRequestID); id != "" {
			ctx = logger.ContextWithRequestID(ctx, id)
		}
	}
	return log.WithContext(ctx)
}
