// Package stats provides the numerically stable online mean/variance update
// used for convergence tracking.
package stats

import "math"

// Update performs one Welford step: it folds newValue into a running mean and
// population variance computed over count previous observations.
//
// The update is single-pass and numerically stable, usable incrementally as
// samples arrive one at a time without knowing the total sample count in
// advance. Pure function over explicit state: callers own and thread the
// (mean, variance, count) triple.
//
// Parameters:
//   - mean: Running mean over the first count observations
//   - variance: Running population variance over the first count observations
//   - newValue: Observation to fold in
//   - count: Number of observations already folded in (>= 0)
//
// Returns:
//   - float64: Updated mean over count+1 observations
//   - float64: Updated population variance over count+1 observations
func Update(mean, variance, newValue float64, count int) (float64, float64) {
	n := float64(count) + 1
	newMean := mean + (newValue-mean)/n
	newVariance := variance*(n-1)/n + (newValue-mean)*(newValue-newMean)/n

	return newMean, newVariance
}

// Accumulator threads the Welford update through a small owned state.
//
// The zero value is ready to use. Not safe for concurrent use; each worker
// owns its accumulators and merges results after the fact.
type Accumulator struct {
	mean     float64
	variance float64
	count    int
}

// Add folds one observation into the accumulator.
func (a *Accumulator) Add(value float64) {
	a.mean, a.variance = Update(a.mean, a.variance, value, a.count)
	a.count++
}

// Mean returns the running mean, 0 when empty.
func (a *Accumulator) Mean() float64 { return a.mean }

// Variance returns the running population variance, 0 when empty.
func (a *Accumulator) Variance() float64 { return a.variance }

// Count returns the number of observations folded in.
func (a *Accumulator) Count() int { return a.count }

// StdErr returns the standard error sqrt(variance/count), 0 when empty.
func (a *Accumulator) StdErr() float64 {
	if a.count == 0 {
		return 0
	}

	return math.Sqrt(a.variance / float64(a.count))
}
