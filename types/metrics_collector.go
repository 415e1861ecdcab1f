package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// All methods are called from worker and coordinator goroutines and must be
// thread-safe.
//
// This interface composes smaller, domain-focused interfaces for better
// modularity.
type MetricsCollector interface {
	EstimatorMetrics
	CoordinatorMetrics
	WorkerMetrics
}

// EstimatorMetrics defines metrics for one-shot estimation runs.
type EstimatorMetrics interface {
	// RecordOracleEvaluation records a single oracle call.
	//
	// Parameters:
	//   - duration: Time taken in seconds
	RecordOracleEvaluation(duration float64)

	// RecordEstimation records a completed estimation run.
	//
	// Parameters:
	//   - method: Estimator name ("permutation", "combinatorial", "owen", "truncated")
	//   - duration: Wall-clock time in seconds
	//   - nSamples: Total samples drawn across all workers
	RecordEstimation(method string, duration float64, nSamples int)
}

// CoordinatorMetrics defines metrics for the coordinator actor.
type CoordinatorMetrics interface {
	// RecordStateTransition records a coordinator state transition event.
	RecordStateTransition(from, to RunState)

	// RecordUpdateMerged records a merged worker update.
	//
	// Parameters:
	//   - workerID: Index of the worker that pushed the update
	//   - permutations: Number of permutation rows in the update
	RecordUpdateMerged(workerID int, permutations int)

	// RecordConvergence sets the current worst standard-deviation-to-value
	// ratio across items (gauge metric).
	RecordConvergence(ratio float64)
}

// WorkerMetrics defines metrics for individual sampling workers.
type WorkerMetrics interface {
	// RecordPermutation records one processed permutation on a worker.
	//
	// Parameters:
	//   - workerID: Index of the worker
	//   - duration: Time taken in seconds, dominated by oracle calls
	RecordPermutation(workerID int, duration float64)
}
