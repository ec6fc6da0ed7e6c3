// Package logging contains a middleware that logs information about each HTTP request.
package logging

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Middleware logs method, path, status, duration and client information of each
// request via the structured slog logger.
type Middleware struct {
	o options
}

// New returns a new logging middleware with the provided options.
func New(opts ...Option) *Middleware {
	return &Middleware{o: newOptions(opts...)}
}

// Handler returns the logging middleware handler.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := newWriterWrapper(w)
		start := time.Now()
		defer func() {
			m.logRequest(r, start, ww)
		}()

		next.ServeHTTP(ww, r)
	})
}

func (m *Middleware) logRequest(r *http.Request, start time.Time, ww *writerWrapper) {
	message := fmt.Sprintf("%s %s", r.Method, r.URL.Path)
	if m.o.prefix != "" {
		message = m.o.prefix + " " + message
	}

	args := []any{
		"protocol", r.Proto,
		"status", ww.StatusCode,
		"dataLength", ww.WrittenBytes,
		"duration", time.Since(start).String(),
		"clientIP", clientIP(r),
		"userAgent", r.UserAgent(),
	}

	if m.o.contextRequestIdKey != "" {
		if reqId, ok := r.Context().Value(m.o.contextRequestIdKey).(string); ok {
			args = append(args, "requestId", reqId)
		}
	}

	switch m.o.logLevel {
	case LogLevelDebug:
		slog.Debug(message, args...)
	case LogLevelWarn:
		slog.Warn(message, args...)
	case LogLevelError:
		slog.Error(message, args...)
	default:
		slog.Info(message, args...)
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}

	// strip the port from the remote address
	lastColonIndex := strings.LastIndex(r.RemoteAddr, ":")
	if lastColonIndex == -1 {
		return r.RemoteAddr
	}
	return r.RemoteAddr[:lastColonIndex]
}
