package shapley

import (
	"github.com/arloliu/shapley/backend"
	"github.com/arloliu/shapley/internal/logging"
	"github.com/arloliu/shapley/internal/metrics"
	"github.com/arloliu/shapley/types"
)

// Option configures the estimation protocol with optional dependencies.
type Option func(*protocolOptions)

// protocolOptions holds optional coordinator/worker configuration.
type protocolOptions struct {
	backend types.Backend
	metrics types.MetricsCollector
	logger  types.Logger
}

// applyOptions resolves options over safe defaults so callers never need nil
// checks on optional dependencies.
func applyOptions(opts ...Option) *protocolOptions {
	options := &protocolOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.backend == nil {
		options.backend = backend.NewLocal()
	}
	if options.logger == nil {
		options.logger = logging.NewNop()
	}
	if options.metrics == nil {
		options.metrics = metrics.NewNop()
	}

	return options
}

// WithBackend sets the execution backend.
//
// Defaults to backend.NewLocal(), which fans workers out over local
// goroutines.
//
// Parameters:
//   - b: Backend implementation
//
// Returns:
//   - Option: Functional option for NewTruncatedMonteCarlo
func WithBackend(b types.Backend) Option {
	return func(o *protocolOptions) {
		o.backend = b
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewTruncatedMonteCarlo
//
// Example:
//
//	collector := metrics.NewPrometheus(prometheus.DefaultRegisterer, "shapley")
//	est, err := shapley.NewTruncatedMonteCarlo(cfg, shapley.WithMetrics(collector))
func WithMetrics(metrics types.MetricsCollector) Option {
	return func(o *protocolOptions) {
		o.metrics = metrics
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
//
// Returns:
//   - Option: Functional option for NewTruncatedMonteCarlo
func WithLogger(logger types.Logger) Option {
	return func(o *protocolOptions) {
		o.logger = logger
	}
}
