// Package recovery contains a middleware that recovers from panics in HTTP handlers.
package recovery

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime/debug"
	"strings"
)

// Middleware recovers from panics and returns an Internal Server Error response.
// It should be the first middleware in the chain so that it also covers panics
// in other middlewares.
type Middleware struct {
	o options
}

// New returns a new recovery middleware with the provided options.
func New(opts ...Option) *Middleware {
	return &Middleware{o: newOptions(opts...)}
}

// Handler returns the recovery middleware handler.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				stack := debug.Stack()

				realErr, ok := err.(error)
				if !ok {
					realErr = fmt.Errorf("%v", err)
				}

				// A client that went away mid-response does not warrant a stack trace.
				if isBrokenPipeError(realErr) {
					return
				}

				slog.Error("recovered from panic in http handler",
					"error", realErr, "stack", string(stack))

				m.writeErrorResponse(w, stack)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) writeErrorResponse(w http.ResponseWriter, stack []byte) {
	responseBody := map[string]any{
		"error": "Internal Server Error",
	}
	if m.o.exposeStackTrace && len(stack) > 0 {
		responseBody["stack"] = string(stack)
	}

	jsonBody, _ := json.Marshal(responseBody)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write(jsonBody)
}

func isBrokenPipeError(err error) bool {
	var syscallErr *os.SyscallError
	if errors.As(err, &syscallErr) {
		errMsg := strings.ToLower(syscallErr.Err.Error())
		if strings.Contains(errMsg, "broken pipe") ||
			strings.Contains(errMsg, "connection reset by peer") {
			return true
		}
	}

	return false
}
