package testing

import (
	"context"
	"sync/atomic"

	"github.com/arloliu/shapley/types"
)

// LinearOracle returns an oracle u(S) = sum of weights[i] over S.
//
// For an additive utility the exact Shapley value of item i is weights[i],
// which makes this the standard convergence reference for estimator tests.
//
// Parameters:
//   - weights: Per-item weight, len == dataset size
//
// Returns:
//   - types.Oracle: Deterministic, concurrency-safe oracle
func LinearOracle(weights []float64) types.Oracle {
	return types.OracleFunc(func(_ context.Context, subset []int) (float64, error) {
		total := 0.0
		for _, idx := range subset {
			total += weights[idx]
		}

		return total, nil
	})
}

// SizeOracle returns a symmetric oracle whose value depends only on the
// subset size. All items of a symmetric game share the same Shapley value
// (f(N) - f(0)) / N.
//
// Parameters:
//   - f: Value as a function of subset cardinality
func SizeOracle(f func(size int) float64) types.Oracle {
	return types.OracleFunc(func(_ context.Context, subset []int) (float64, error) {
		return f(len(subset)), nil
	})
}

// OffsetOracle wraps an oracle and adds a constant to every evaluation,
// including the empty set. Useful to verify estimators subtract the empty-set
// utility instead of assuming u({}) == 0.
func OffsetOracle(u types.Oracle, offset float64) types.Oracle {
	return types.OracleFunc(func(ctx context.Context, subset []int) (float64, error) {
		v, err := u.Evaluate(ctx, subset)
		if err != nil {
			return 0, err
		}

		return v + offset, nil
	})
}

// CountingOracle wraps an oracle and counts evaluations atomically.
type CountingOracle struct {
	inner types.Oracle
	calls atomic.Int64
}

var _ types.Oracle = (*CountingOracle)(nil)

// NewCountingOracle creates a counting wrapper around u.
func NewCountingOracle(u types.Oracle) *CountingOracle {
	return &CountingOracle{inner: u}
}

// Evaluate delegates to the wrapped oracle and increments the call counter.
func (c *CountingOracle) Evaluate(ctx context.Context, subset []int) (float64, error) {
	c.calls.Add(1)

	return c.inner.Evaluate(ctx, subset)
}

// Calls returns the number of evaluations so far.
func (c *CountingOracle) Calls() int64 {
	return c.calls.Load()
}

// FailingOracle wraps an oracle and fails every evaluation after the first
// failAfter successful calls. Used to verify that oracle errors propagate
// unretried.
type FailingOracle struct {
	inner     types.Oracle
	err       error
	failAfter int64
	calls     atomic.Int64
}

var _ types.Oracle = (*FailingOracle)(nil)

// NewFailingOracle creates an oracle failing with err after failAfter
// successful evaluations.
func NewFailingOracle(u types.Oracle, err error, failAfter int64) *FailingOracle {
	return &FailingOracle{inner: u, err: err, failAfter: failAfter}
}

// Evaluate fails once the success budget is exhausted.
func (f *FailingOracle) Evaluate(ctx context.Context, subset []int) (float64, error) {
	if f.calls.Add(1) > f.failAfter {
		return 0, f.err
	}

	return f.inner.Evaluate(ctx, subset)
}
