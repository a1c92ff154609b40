package placewalk

import (
	"log/slog"
	"time"

	"github.com/placewalk/placewalk/imagestore"
	"github.com/placewalk/placewalk/pager"
)

type options struct {
	pageSize         int
	cacheSize        int
	firstPageTTL     time.Duration
	fetchTimeout     time.Duration
	images           imagestore.Resolver
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures Catalog constructor behavior.
type Option func(*options)

// WithPageSize sets how many entries each page request asks for.
// Values <= 0 keep the default.
func WithPageSize(n int) Option {
	return func(o *options) {
		o.pageSize = n
	}
}

// WithCacheSize bounds the number of cached first pages.
func WithCacheSize(n int) Option {
	return func(o *options) {
		o.cacheSize = n
	}
}

// WithFirstPageTTL sets how long a cached first page is served before
// the store is consulted again.
func WithFirstPageTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.firstPageTTL = ttl
	}
}

// WithFetchTimeout bounds each store call, independent of any
// transport-level timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(o *options) {
		o.fetchTimeout = d
	}
}

// WithImageResolver wires an image store so ImageURLs can resolve the
// keys entries reference.
func WithImageResolver(res imagestore.Resolver) Option {
	return func(o *options) {
		o.images = res
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &placewalk.BasicMetricsCollector{}
//	catalog := placewalk.New(st, placewalk.WithMetricsCollector(metrics))
//	// ... use catalog ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := placewalk.NewJSONLogger(slog.LevelInfo)
//	catalog := placewalk.New(st, placewalk.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		pageSize:         pager.DefaultPageSize,
		firstPageTTL:     pager.DefaultFirstPageTTL,
		fetchTimeout:     pager.DefaultFetchTimeout,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
