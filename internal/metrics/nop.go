// Package metrics provides types.MetricsCollector implementations.
package metrics

import "github.com/arloliu/shapley/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external
// metrics collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Example:
//
//	est := estimator.NewPermutation(1000, estimator.WithMetrics(metrics.NewNop()))
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// EstimatorMetrics implementation

// RecordOracleEvaluation discards the oracle evaluation metric.
func (n *NopMetrics) RecordOracleEvaluation(_ /* duration */ float64) {
	// No-op
}

// RecordEstimation discards the estimation run metric.
func (n *NopMetrics) RecordEstimation(_ /* method */ string, _ /* duration */ float64, _ /* nSamples */ int) {
	// No-op
}

// CoordinatorMetrics implementation

// RecordStateTransition discards the state transition metric.
func (n *NopMetrics) RecordStateTransition(_ /* from */, _ /* to */ types.RunState) {
	// No-op
}

// RecordUpdateMerged discards the merged update metric.
func (n *NopMetrics) RecordUpdateMerged(_ /* workerID */ int, _ /* permutations */ int) {
	// No-op
}

// RecordConvergence discards the convergence ratio metric.
func (n *NopMetrics) RecordConvergence(_ /* ratio */ float64) {
	// No-op
}

// WorkerMetrics implementation

// RecordPermutation discards the worker permutation metric.
func (n *NopMetrics) RecordPermutation(_ /* workerID */ int, _ /* duration */ float64) {
	// No-op
}
