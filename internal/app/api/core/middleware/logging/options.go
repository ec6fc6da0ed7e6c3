package logging

// LogLevel is an enumeration of the different log levels.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

// options contains the options for the logging middleware.
// It uses the functional options pattern for flexible configuration.
type options struct {
	logLevel LogLevel
	prefix   string

	contextRequestIdKey string
}

// Option is used to set options for the logging middleware.
type Option func(*options)

// WithLevel sets the log level for the logging middleware.
// The default value is LogLevelInfo.
func WithLevel(level LogLevel) Option {
	return func(o *options) {
		o.logLevel = level
	}
}

// WithPrefix sets a prefix that is prepended to each log message.
// The default value is an empty string.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithContextRequestIdKey sets the context key under which the request ID can
// be found. If a key is set, the request ID is included in each log message.
// The default value is an empty string, meaning the request ID is not logged.
func WithContextRequestIdKey(key string) Option {
	return func(o *options) {
		o.contextRequestIdKey = key
	}
}

func newOptions(opts ...Option) options {
	o := options{
		logLevel: LogLevelInfo,
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}
