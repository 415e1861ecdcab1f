package types

import "fmt"

// Result is an immutable snapshot of a Monte Carlo estimation.
//
// Values and Stderrs are indexed by dataset item; len(Values) == len(Stderrs)
// == N always holds for results produced by this library. NSamples is the
// total number of samples behind the estimate, or 0 when the estimator does
// not track it.
type Result struct {
	// Values holds the estimated contribution per item.
	Values []float64

	// Stderrs holds the estimated standard error per item.
	Stderrs []float64

	// NSamples is the total sample count across all workers, 0 if untracked.
	NSamples int
}

// Len returns the number of items covered by the result.
func (r Result) Len() int {
	return len(r.Values)
}

// Validate checks the per-item slice invariant.
//
// Returns:
//   - error: Description of the violated invariant, nil if valid
func (r Result) Validate() error {
	if len(r.Values) != len(r.Stderrs) {
		return fmt.Errorf("result has %d values but %d standard errors", len(r.Values), len(r.Stderrs))
	}

	return nil
}

// Clone returns a deep copy of the result.
//
// Coordinator snapshots are produced through Clone so callers can never
// observe later mutations of the aggregate state.
func (r Result) Clone() Result {
	out := Result{
		Values:   make([]float64, len(r.Values)),
		Stderrs:  make([]float64, len(r.Stderrs)),
		NSamples: r.NSamples,
	}
	copy(out.Values, r.Values)
	copy(out.Stderrs, r.Stderrs)

	return out
}

// Add accumulates other into r item-wise and sums the sample counts.
//
// Partial results whose non-zero supports are disjoint (e.g. per-worker
// outputs of the combinatorial estimator) reconstruct the joint result
// exactly under Add.
//
// Returns:
//   - error: Length mismatch between the two results
func (r *Result) Add(other Result) error {
	if len(r.Values) != len(other.Values) {
		return fmt.Errorf("cannot add result of length %d to result of length %d", len(other.Values), len(r.Values))
	}

	for i := range other.Values {
		r.Values[i] += other.Values[i]
		r.Stderrs[i] += other.Stderrs[i]
	}
	r.NSamples += other.NSamples

	return nil
}
