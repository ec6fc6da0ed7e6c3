package tracing

import "time"

// options contains the options for the tracing middleware.
// It uses the functional options pattern for flexible configuration.
type options struct {
	upstreamReqIdHeader string
	headerIdentifier    string
	contextIdentifier   string
	generateLength      int
	generateCharset     string
	generateSeed        int64
}

// Option is used to set options for the tracing middleware.
type Option func(*options)

// WithUpstreamHeader sets the upstream header name that is checked for an
// existing request ID. If no upstream ID is found, a random one is generated.
func WithUpstreamHeader(header string) Option {
	return func(o *options) {
		o.upstreamReqIdHeader = header
	}
}

// WithHeaderIdentifier sets the response header name for the request ID.
// If the identifier is empty, the request ID is not added to the response.
func WithHeaderIdentifier(identifier string) Option {
	return func(o *options) {
		o.headerIdentifier = identifier
	}
}

// WithContextIdentifier sets the context key under which the request ID is
// stored. If the identifier is empty, the request ID is not added to the context.
func WithContextIdentifier(identifier string) Option {
	return func(o *options) {
		o.contextIdentifier = identifier
	}
}

// WithIdLength specifies the length of generated request ids.
// If the length is 0, no request ID is generated.
func WithIdLength(length int) Option {
	return func(o *options) {
		o.generateLength = length
	}
}

func newOptions(opts ...Option) options {
	o := options{
		headerIdentifier:  "X-Request-Id",
		contextIdentifier: "RequestId",
		generateSeed:      time.Now().UnixNano(),
		generateCharset:   "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789",
		generateLength:    8,
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}
