package estimator

import (
	"context"
	"fmt"
	"time"

	"github.com/arloliu/shapley/internal/sampling"
	"github.com/arloliu/shapley/internal/stats"
	"github.com/arloliu/shapley/mapreduce"
	"github.com/arloliu/shapley/types"
)

// Permutation estimates Shapley values from independent random permutations.
type Permutation struct {
	maxIterations int
	cfg           config
}

var _ types.Estimator = (*Permutation)(nil)

// NewPermutation creates a permutation estimator.
//
// The iteration budget is the total number of permutations across all
// workers; each worker processes roughly maxIterations / nJobs of them.
//
// Parameters:
//   - maxIterations: Total number of permutations to sample
//   - opts: Backend, parallelism, seed, logger, metrics
//
// Returns:
//   - *Permutation: Initialized estimator
//
// Example:
//
//	est := estimator.NewPermutation(2000, estimator.WithNJobs(4), estimator.WithSeed(42))
//	result, err := est.Estimate(ctx, oracle, dataset)
func NewPermutation(maxIterations int, opts ...Option) *Permutation {
	return &Permutation{
		maxIterations: maxIterations,
		cfg:           newConfig(opts...),
	}
}

// Estimate runs the permutation sampler and reduces the full sample matrix.
//
// Per-worker partial results are concatenated, never averaged: the final
// mean and standard error are computed over the complete matrix of marginal
// rows, so unequal per-worker row counts cannot skew the estimate.
func (e *Permutation) Estimate(ctx context.Context, u types.Oracle, data types.Dataset) (types.Result, error) {
	if err := validateRun(u, data); err != nil {
		return types.Result{}, err
	}
	if e.maxIterations <= 0 {
		return types.Result{}, fmt.Errorf("%w: maxIterations must be > 0, got %d", types.ErrInvalidConfig, e.maxIterations)
	}

	start := time.Now()

	nJobs := e.cfg.backend.EffectiveNJobs(e.cfg.nJobs)
	iterationsPerJob := max(1, e.maxIterations/nJobs)

	oracle, _ := e.cfg.backend.Put(u).(types.Oracle)
	indices := data.Indices()

	mapFunc := func(ctx context.Context, _ []int, job int) ([][]float64, error) {
		src := sampling.NewSource(e.cfg.seed, job)
		rows := make([][]float64, 0, iterationsPerJob)

		for range iterationsPerJob {
			perm := src.Permutation(indices)
			marginals, err := permutationMarginals(ctx, oracle, perm, e.cfg.metrics)
			if err != nil {
				return nil, err
			}
			rows = append(rows, marginals)
		}

		return rows, nil
	}

	// Concatenate the per-worker row blocks; the statistics are computed
	// over the joint matrix afterwards.
	reduceFunc := func(partials [][][]float64) ([][]float64, error) {
		var rows [][]float64
		for _, p := range partials {
			rows = append(rows, p...)
		}

		return rows, nil
	}

	job := mapreduce.NewJob(mapFunc, reduceFunc,
		mapreduce.WithBackend[int, [][]float64](e.cfg.backend),
		mapreduce.WithNJobs[int, [][]float64](nJobs),
		mapreduce.WithChunking[int, [][]float64](false),
		mapreduce.WithLogger[int, [][]float64](e.cfg.logger),
	)

	rows, _, err := job.Run(ctx, indices)
	if err != nil {
		return types.Result{}, fmt.Errorf("permutation sampling: %w", err)
	}

	result := reduceRows(rows, data.Len())

	e.cfg.logger.Debug("permutation estimation complete",
		"permutations", len(rows), "nJobs", nJobs, "elapsed", time.Since(start))
	e.cfg.metrics.RecordEstimation("permutation", time.Since(start).Seconds(), len(rows))

	return result, nil
}

// reduceRows computes per-item mean and standard error over the full
// concatenated sample matrix.
func reduceRows(rows [][]float64, n int) types.Result {
	result := types.Result{
		Values:   make([]float64, n),
		Stderrs:  make([]float64, n),
		NSamples: len(rows),
	}

	accs := make([]stats.Accumulator, n)
	for _, row := range rows {
		for i, v := range row {
			accs[i].Add(v)
		}
	}
	for i := range accs {
		result.Values[i] = accs[i].Mean()
		result.Stderrs[i] = accs[i].StdErr()
	}

	return result
}
