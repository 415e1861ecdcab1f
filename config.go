package shapley

import (
	"fmt"
	"time"
)

// ============================================================================
// Stopping Criteria Model
// ============================================================================
//
// The coordinator/worker protocol runs until one of two criteria fires:
//
//   - ValueTolerance: relative-precision stop. After each merged update the
//     coordinator computes max_i(stderr_i / |value_i|) across items; when it
//     drops below the tolerance the run is done. Scale-free, so the same
//     tolerance works for oracles of any magnitude.
//
//   - MaxIterations: budget stop. The run is done once the merged permutation
//     count reaches the budget, regardless of precision.
//
// Both may be set; whichever fires first wins. At least one must be enabled
// or Validate rejects the configuration, since such a run would never stop.
//
// The run is never done before the first worker update has been merged, even
// with MaxIterations set to a value that is already exhausted. This keeps the
// result well-defined: a done coordinator always has at least one sample per
// item.
//
// ============================================================================

// Config is the configuration for the coordinator/worker estimation protocol.
//
// All duration fields accept standard Go duration strings like "30s", "5m".
type Config struct {
	// ValueTolerance stops the run when the worst relative standard error
	// max(stderr/|value|) across items drops below this value.
	// Set to 0 to disable; MaxIterations must then be set.
	// Recommended: 0.01-0.05.
	ValueTolerance float64 `yaml:"valueTolerance"`

	// MaxIterations stops the run after this many permutations have been
	// merged across all workers. Set to 0 to disable; ValueTolerance must
	// then be set.
	MaxIterations int `yaml:"maxIterations"`

	// NJobs is the requested number of sampling workers. The backend resolves
	// the effective count; <= 0 means all available parallelism.
	NJobs int `yaml:"nJobs"`

	// Seed is the run-level random seed. Worker streams are derived from the
	// seed and the worker index, so a fixed seed reproduces the whole
	// parallel run. 0 selects a time-based seed.
	Seed uint64 `yaml:"seed"`

	// CoordinatorUpdateFrequency is how often the supervising loop polls the
	// coordinator for progress reporting. Stopping itself is event-driven on
	// merge, so this only affects log cadence.
	// Recommended: 10 seconds.
	CoordinatorUpdateFrequency time.Duration `yaml:"coordinatorUpdateFrequency"`

	// WorkerUpdateFrequency is how often each worker pushes its batch of
	// completed permutations to the coordinator. Shorter intervals tighten
	// the stopping criterion reaction time but increase merge traffic.
	// Recommended: 5 seconds.
	WorkerUpdateFrequency time.Duration `yaml:"workerUpdateFrequency"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// The defaults enable only the tolerance criterion; set MaxIterations to cap
// the sampling budget as well.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		ValueTolerance:             0.05,
		MaxIterations:              0,
		NJobs:                      0,
		Seed:                       0,
		CoordinatorUpdateFrequency: 10 * time.Second,
		WorkerUpdateFrequency:      5 * time.Second,
	}
}

// SetDefaults fills in missing configuration values with production defaults.
//
// A configuration with both criteria disabled is left untouched; Validate
// reports it instead of silently picking a tolerance.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.CoordinatorUpdateFrequency == 0 {
		cfg.CoordinatorUpdateFrequency = defaults.CoordinatorUpdateFrequency
	}
	if cfg.WorkerUpdateFrequency == 0 {
		cfg.WorkerUpdateFrequency = defaults.WorkerUpdateFrequency
	}
}

// Validate checks configuration constraints and returns error for invalid values.
//
// Hard Validation Rules:
//   - ValueTolerance > 0 or MaxIterations > 0 (run must be able to stop)
//   - ValueTolerance >= 0, MaxIterations >= 0 (negative values are nonsense)
//   - CoordinatorUpdateFrequency > 0, WorkerUpdateFrequency > 0
//
// Returns:
//   - error: Validation error with clear explanation, nil if valid
func (cfg *Config) Validate() error {
	if cfg.ValueTolerance < 0 {
		return fmt.Errorf("%w: ValueTolerance must be >= 0, got %v", ErrInvalidConfig, cfg.ValueTolerance)
	}
	if cfg.MaxIterations < 0 {
		return fmt.Errorf("%w: MaxIterations must be >= 0, got %d", ErrInvalidConfig, cfg.MaxIterations)
	}
	if cfg.ValueTolerance == 0 && cfg.MaxIterations == 0 {
		return ErrNoStoppingCriterion
	}
	if cfg.CoordinatorUpdateFrequency <= 0 {
		return fmt.Errorf("%w: CoordinatorUpdateFrequency must be > 0, got %v",
			ErrInvalidConfig, cfg.CoordinatorUpdateFrequency)
	}
	if cfg.WorkerUpdateFrequency <= 0 {
		return fmt.Errorf("%w: WorkerUpdateFrequency must be > 0, got %v",
			ErrInvalidConfig, cfg.WorkerUpdateFrequency)
	}

	return nil
}

// ValidateWithWarnings checks configuration and logs warnings for non-recommended values.
//
// This is called after Validate() in NewTruncatedMonteCarlo() to provide
// operator guidance.
//
// Parameters:
//   - logger: Logger instance for warning output
func (cfg *Config) ValidateWithWarnings(logger Logger) {
	if cfg.WorkerUpdateFrequency > cfg.CoordinatorUpdateFrequency {
		logger.Warn(
			"WorkerUpdateFrequency exceeds CoordinatorUpdateFrequency, progress reports will lag behind merges",
			"workerUpdateFrequency", cfg.WorkerUpdateFrequency,
			"coordinatorUpdateFrequency", cfg.CoordinatorUpdateFrequency,
		)
	}

	if cfg.ValueTolerance > 0 && cfg.ValueTolerance < 0.001 {
		logger.Warn(
			"ValueTolerance is very tight, the run may take a long time to converge",
			"valueTolerance", cfg.ValueTolerance,
			"recommended", "0.01 or higher",
		)
	}
}

// TestConfig returns a configuration optimized for fast test execution.
//
// Test cadences are ~1000x faster than production defaults so stopping
// criteria are re-checked within milliseconds. Use DefaultConfig() for
// production runs.
//
// Returns:
//   - Config: Configuration with fast timings for tests
//
// Example:
//
//	cfg := shapley.TestConfig()
//	cfg.MaxIterations = 500
//	est, err := shapley.NewTruncatedMonteCarlo(cfg)
func TestConfig() Config {
	cfg := DefaultConfig()

	cfg.CoordinatorUpdateFrequency = 10 * time.Millisecond
	cfg.WorkerUpdateFrequency = 5 * time.Millisecond

	return cfg
}
