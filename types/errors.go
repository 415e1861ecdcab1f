package types

import "errors"

// Sentinel errors for the shapley library.
//
// These errors provide type-safe error checking using errors.Is() and
// errors.As(). Components use these sentinels for known error conditions and
// wrap external errors with context using fmt.Errorf("...: %w", err).

// Configuration errors - rejected before any sampling starts.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrOracleRequired is returned when the utility oracle is nil.
	ErrOracleRequired = errors.New("utility oracle is required")

	// ErrDatasetRequired is returned when the dataset is nil or empty.
	ErrDatasetRequired = errors.New("dataset is required")

	// ErrBackendRequired is returned when the execution backend is nil.
	ErrBackendRequired = errors.New("execution backend is required")

	// ErrDuplicateIndices is returned when a caller-supplied index list
	// contains repeated entries. Detected before any sampling occurs.
	ErrDuplicateIndices = errors.New("duplicate indices in index list")

	// ErrNoStoppingCriterion is returned when both the value tolerance and
	// the iteration budget are disabled; such a run would never terminate.
	ErrNoStoppingCriterion = errors.New("at least one stopping criterion is required")
)

// Lifecycle errors - coordinator/worker protocol.
var (
	// ErrAlreadyStarted is returned when Start is called on a running coordinator.
	ErrAlreadyStarted = errors.New("coordinator already started")

	// ErrNotStarted is returned when operations require a started coordinator.
	ErrNotStarted = errors.New("coordinator not started")
)

// Job errors - map-reduce execution.
var (
	// ErrNoMapFunc is returned when a job is run without a mapping function.
	ErrNoMapFunc = errors.New("map function is required")

	// ErrNoReduceFunc is returned when a job is run without a reduction function.
	ErrNoReduceFunc = errors.New("reduce function is required")
)
