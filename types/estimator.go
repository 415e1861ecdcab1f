package types

import "context"

// Estimator computes approximate per-item contribution values.
//
// Implementations consume an Oracle and a Dataset and return a Result with
// one value and one standard error per item. The sampling budget and
// parallelism are configured on the concrete estimator, not per call.
//
// Built-in implementations live in the estimator package (Permutation,
// Combinatorial, Owen) and in the root package (TruncatedMonteCarlo, the
// coordinator/worker variant with early stopping).
type Estimator interface {
	// Estimate runs the full sampling procedure and returns the reduced
	// per-item estimates.
	//
	// Parameters:
	//   - ctx: Context for cancellation and deadline
	//   - u: Utility oracle, called concurrently from multiple workers
	//   - data: Dataset exposing the index set
	//
	// Returns:
	//   - Result: Per-item values and standard errors, len == data.Len()
	//   - error: Configuration or oracle evaluation failure
	Estimate(ctx context.Context, u Oracle, data Dataset) (Result, error)
}
