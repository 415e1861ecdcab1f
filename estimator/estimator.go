package estimator

import (
	"context"
	"fmt"
	"time"

	"github.com/arloliu/shapley/backend"
	"github.com/arloliu/shapley/internal/logging"
	"github.com/arloliu/shapley/internal/metrics"
	"github.com/arloliu/shapley/types"
)

// config holds the dependencies shared by all estimators.
type config struct {
	backend types.Backend
	logger  types.Logger
	metrics types.MetricsCollector
	nJobs   int
	seed    uint64
}

// Option configures an estimator with optional dependencies.
type Option func(*config)

// WithBackend sets the execution backend. Defaults to backend.NewLocal().
func WithBackend(b types.Backend) Option {
	return func(c *config) {
		c.backend = b
	}
}

// WithNJobs sets the requested worker count.
//
// The backend resolves the effective count; <= 0 means all available
// parallelism.
func WithNJobs(n int) Option {
	return func(c *config) {
		c.nJobs = n
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
func WithLogger(logger types.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithMetrics sets a metrics collector.
func WithMetrics(collector types.MetricsCollector) Option {
	return func(c *config) {
		c.metrics = collector
	}
}

// WithSeed sets the run-level random seed.
//
// Worker random streams are derived deterministically from the seed and the
// worker index, so a fixed seed reproduces the whole parallel run. Defaults
// to a time-based seed.
func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.seed = seed
	}
}

// newConfig applies options over safe defaults.
func newConfig(opts ...Option) config {
	c := config{}
	for _, opt := range opts {
		opt(&c)
	}
	if c.backend == nil {
		c.backend = backend.NewLocal()
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}
	if c.metrics == nil {
		c.metrics = metrics.NewNop()
	}
	if c.seed == 0 {
		c.seed = uint64(time.Now().UnixNano()) //nolint:gosec // statistical seed, not security
	}

	return c
}

// validateRun checks the collaborators every estimator needs.
func validateRun(u types.Oracle, data types.Dataset) error {
	if u == nil {
		return types.ErrOracleRequired
	}
	if data == nil || data.Len() == 0 {
		return types.ErrDatasetRequired
	}

	return nil
}

// evaluate calls the oracle once, recording the call duration.
func evaluate(ctx context.Context, u types.Oracle, subset []int, collector types.MetricsCollector) (float64, error) {
	start := time.Now()
	v, err := u.Evaluate(ctx, subset)
	if err != nil {
		return 0, err
	}
	collector.RecordOracleEvaluation(time.Since(start).Seconds())

	return v, nil
}

// PermutationMarginals walks a permutation left to right, maintaining a
// running oracle value, and returns the marginal contribution of every item,
// indexed by item (not by position).
//
// The walk starts from the empty-set utility, so marginals[perm[0]] equals
// u({perm[0]}) - u({}). One permutation yields exactly one marginal per item.
//
// Shared by the batch permutation estimator and the coordinator/worker
// protocol in the root package.
//
// Parameters:
//   - ctx: Context for cancellation
//   - u: Utility oracle
//   - perm: A permutation of the full index set
//
// Returns:
//   - []float64: Marginal contribution per item, len == len(perm)
//   - error: Oracle evaluation failure, unretried
func PermutationMarginals(ctx context.Context, u types.Oracle, perm []int) ([]float64, error) {
	return permutationMarginals(ctx, u, perm, metrics.NewNop())
}

func permutationMarginals(ctx context.Context, u types.Oracle, perm []int, collector types.MetricsCollector) ([]float64, error) {
	marginals := make([]float64, len(perm))

	score, err := evaluate(ctx, u, perm[:0], collector)
	if err != nil {
		return nil, fmt.Errorf("empty set utility: %w", err)
	}

	for i, idx := range perm {
		next, err := evaluate(ctx, u, perm[:i+1], collector)
		if err != nil {
			return nil, fmt.Errorf("utility of prefix %d: %w", i+1, err)
		}
		marginals[idx] = next - score
		score = next
	}

	return marginals, nil
}

// hasDuplicates reports whether the index list contains repeated entries.
func hasDuplicates(indices []int) bool {
	seen := make(map[int]struct{}, len(indices))
	for _, idx := range indices {
		if _, ok := seen[idx]; ok {
			return true
		}
		seen[idx] = struct{}{}
	}

	return false
}

// without returns indices with idx removed.
func without(indices []int, idx int) []int {
	out := make([]int, 0, len(indices)-1)
	for _, i := range indices {
		if i != idx {
			out = append(out, i)
		}
	}

	return out
}
