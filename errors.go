package shapley

import "github.com/arloliu/shapley/types"

// Sentinel errors, re-exported from the types package so callers can match
// them without importing types directly.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = types.ErrInvalidConfig

	// ErrOracleRequired is returned when the utility oracle is nil.
	ErrOracleRequired = types.ErrOracleRequired

	// ErrDatasetRequired is returned when the dataset is nil or empty.
	ErrDatasetRequired = types.ErrDatasetRequired

	// ErrBackendRequired is returned when the execution backend is nil.
	ErrBackendRequired = types.ErrBackendRequired

	// ErrNoStoppingCriterion is returned when both the value tolerance and the
	// iteration budget are disabled.
	ErrNoStoppingCriterion = types.ErrNoStoppingCriterion

	// ErrAlreadyStarted is returned when Start is called on a running coordinator.
	ErrAlreadyStarted = types.ErrAlreadyStarted

	// ErrNotStarted is returned when operations require a started coordinator.
	ErrNotStarted = types.ErrNotStarted
)
