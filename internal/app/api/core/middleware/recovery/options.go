package recovery

// options contains the options for the recovery middleware.
// It uses the functional options pattern for flexible configuration.
type options struct {
	exposeStackTrace bool
}

// Option is used to set options for the recovery middleware.
type Option func(*options)

// WithExposeStackTrace sets whether the stack trace should be included in the
// response body. The default value is false.
func WithExposeStackTrace(expose bool) Option {
	return func(o *options) {
		o.exposeStackTrace = expose
	}
}

func newOptions(opts ...Option) options {
	o := options{}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}
