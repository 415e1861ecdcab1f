package types

import "context"

// Oracle is the utility function evaluated on subsets of dataset indices.
//
// An Oracle typically wraps a model, a dataset, and a scoring function: it
// trains (or scores) on the given subset and returns a scalar utility. The
// library treats it as an opaque, expensive black box and parallelizes calls
// across workers.
//
// Requirements on implementations:
//   - Evaluate MUST be safe for concurrent invocation from multiple
//     goroutines (stateless, or internally synchronized).
//   - Evaluation noise, if any, must be independent across calls; the
//     Monte Carlo estimators rely on this.
//   - Errors are propagated unmodified to the caller. The library never
//     retries a failed evaluation: a silent retry policy would bias the
//     estimate.
//   - Caching of repeated subsets is the Oracle's own concern.
type Oracle interface {
	// Evaluate returns the utility of the given subset of dataset indices.
	//
	// The subset may be empty. Implementations must not retain or mutate
	// the subset slice.
	//
	// Parameters:
	//   - ctx: Context for cancellation and deadline
	//   - subset: Indices of the items to evaluate, in no particular order
	//
	// Returns:
	//   - float64: Utility of the subset
	//   - error: Evaluation failure, returned to the caller unretried
	Evaluate(ctx context.Context, subset []int) (float64, error)
}

// OracleFunc adapts a plain function to the Oracle interface.
type OracleFunc func(ctx context.Context, subset []int) (float64, error)

// Evaluate calls the wrapped function.
func (f OracleFunc) Evaluate(ctx context.Context, subset []int) (float64, error) {
	return f(ctx, subset)
}
