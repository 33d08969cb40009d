// Package httpx provides HTTP middleware helpers for the odds service.
package httpx

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"runtime/debug"
	"strings"
	"sync/atomic"
	"time"
)

// Middleware wraps an HTTP handler.
type Middleware func(http.Handler) http.Handler

var requestIDCounter atomic.Uint64

// Chain applies middleware in declaration order.
func Chain(handler http.Handler, middleware ...Middleware) http.Handler {
	if handler == nil {
		handler = http.NotFoundHandler()
	}
	wrapped := handler
	for idx := len(middleware) - 1; idx >= 0; idx-- {
		if middleware[idx] == nil {
			continue
		}
		wrapped = middleware[idx](wrapped)
	}
	return wrapped
}

// RequireMethod rejects requests outside the allowed method.
func RequireMethod(method string) Middleware {
	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.NotFoundHandler()
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != method {
				w.Header().Set("Allow", method)
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestID injects and echoes a request id for correlation.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.NotFoundHandler()
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = fmt.Sprintf("odds-%d-%d", time.Now().UnixNano(), requestIDCounter.Add(1))
				r.Header.Set("X-Request-ID", requestID)
			}
			w.Header().Set("X-Request-ID", requestID)
			next.ServeHTTP(w, r)
		})
	}
}

// RecoverPanic converts panics into HTTP 500 responses.
func RecoverPanic() Middleware {
	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.NotFoundHandler()
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if recovered := recover(); recovered != nil {
					path := "-"
					method := "-"
					requestID := "-"
					if r != nil {
						path = strings.TrimSpace(r.URL.Path)
						method = strings.TrimSpace(r.Method)
						if rid := strings.TrimSpace(r.Header.Get("X-Request-ID")); rid != "" {
							requestID = rid
						}
					}
					log.Printf(
						"panic recovered method=%s path=%s request_id=%s panic=%v stack=%s",
						method,
						path,
						requestID,
						recovered,
						strings.TrimSpace(string(debug.Stack())),
					)
					w.WriteHeader(http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// statusRecorder captures the written status and byte count so the
// request logger can report them.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *statusRecorder) Write(payload []byte) (int, error) {
	if rec.status == 0 {
		rec.status = http.StatusOK
	}
	written, err := rec.ResponseWriter.Write(payload)
	rec.bytes += written
	return written, err
}

// RequestLogger logs one line per request with method, path, status,
// bytes written, latency, and the correlation id.
func RequestLogger(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.NotFoundHandler()
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)
			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			requestID := "-"
			if rid := strings.TrimSpace(r.Header.Get("X-Request-ID")); rid != "" {
				requestID = rid
			}
			logger.Printf(
				"method=%s path=%s status=%d bytes=%d latency=%s request_id=%s",
				r.Method,
				r.URL.Path,
				rec.status,
				rec.bytes,
				time.Since(start),
				requestID,
			)
		})
	}
}

// WriteJSON writes a JSON response with the provided status code.
func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return fmt.Errorf("response writer is required")
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(payload)
}

// WriteJSONError writes a JSON error response with the given status
// code, message, and machine-readable code.
func WriteJSONError(w http.ResponseWriter, statusCode int, code, message string) error {
	return WriteJSON(w, statusCode, map[string]any{"error": message, "code": code})
}
