// Package tracing contains a middleware that attaches a request ID to each request.
package tracing

import (
	"context"
	"math/rand"
	"net/http"
)

// Middleware tags requests with a request ID. The ID is taken from an upstream
// header if present, otherwise a random one is generated.
type Middleware struct {
	o options

	seededRand *rand.Rand
}

// New returns a new tracing middleware with the provided options.
func New(opts ...Option) *Middleware {
	o := newOptions(opts...)

	return &Middleware{
		o:          o,
		seededRand: rand.New(rand.NewSource(o.generateSeed)),
	}
}

// Handler returns the tracing middleware handler.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqId string

		if m.o.upstreamReqIdHeader != "" {
			reqId = r.Header.Get(m.o.upstreamReqIdHeader)
		}

		if reqId == "" && m.o.generateLength > 0 {
			reqId = m.generateRandomId()
		}

		if m.o.headerIdentifier != "" {
			w.Header().Set(m.o.headerIdentifier, reqId)
		}

		if m.o.contextIdentifier != "" {
			ctx := context.WithValue(r.Context(), m.o.contextIdentifier, reqId)
			r = r.WithContext(ctx)
		}

		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) generateRandomId() string {
	b := make([]byte, m.o.generateLength)
	for i := range b {
		b[i] = m.o.generateCharset[m.seededRand.Intn(len(m.o.generateCharset))]
	}
	return string(b)
}
