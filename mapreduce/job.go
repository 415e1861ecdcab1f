// Package mapreduce provides a one-shot parallel map-reduce job on top of a
// types.Backend.
//
// A Job splits an input collection across a fixed number of parallel workers
// (or replicates it whole to every worker), applies the mapping function once
// per worker, and combines the ordered per-worker outputs with a single
// reduction. Workers share no mutable state; synchronization happens exactly
// once, at the collection barrier before the reduction runs single-threaded.
package mapreduce

import (
	"context"
	"fmt"
	"time"

	"github.com/arloliu/shapley/internal/logging"
	"github.com/arloliu/shapley/types"
)

// MapFunc is applied once per worker to its assigned input share.
type MapFunc[T, R any] func(ctx context.Context, inputs []T, job int) (R, error)

// ReduceFunc combines the per-worker outputs, ordered by job index, into the
// final result. It runs single-threaded after all workers complete.
type ReduceFunc[R any] func(partials []R) (R, error)

// WorkerStat holds per-worker diagnostics for a completed job.
type WorkerStat struct {
	// Job is the worker's job index.
	Job int

	// Inputs is the number of input items the worker received.
	Inputs int

	// Duration is the worker's wall-clock execution time.
	Duration time.Duration
}

// Job executes a mapping function across parallel workers and reduces their
// outputs.
//
// Failure policy: a worker failure aborts the whole job and cancels the
// remaining workers; the caller sees either the full reduced result or an
// error, never partial results.
type Job[T, R any] struct {
	mapFunc    MapFunc[T, R]
	reduceFunc ReduceFunc[R]
	backend    types.Backend
	logger     types.Logger
	nJobs      int
	chunkify   bool
}

// Option configures a Job.
type Option[T, R any] func(*Job[T, R])

// WithBackend sets the execution backend. Required.
func WithBackend[T, R any](b types.Backend) Option[T, R] {
	return func(j *Job[T, R]) {
		j.backend = b
	}
}

// WithNJobs sets the requested worker count.
//
// The backend resolves the effective count; <= 0 means all available
// parallelism.
func WithNJobs[T, R any](n int) Option[T, R] {
	return func(j *Job[T, R]) {
		j.nJobs = n
	}
}

// WithChunking selects whether the input is partitioned across workers
// (true) or replicated whole to every worker (false). Default: partitioned.
func WithChunking[T, R any](chunkify bool) Option[T, R] {
	return func(j *Job[T, R]) {
		j.chunkify = chunkify
	}
}

// WithLogger sets a logger for job-level diagnostics.
func WithLogger[T, R any](logger types.Logger) Option[T, R] {
	return func(j *Job[T, R]) {
		j.logger = logger
	}
}

// NewJob creates a map-reduce job from a mapping and a reduction function.
//
// Parameters:
//   - mapFunc: Applied once per worker to its input share
//   - reduceFunc: Combines per-worker outputs into the final result
//   - opts: Backend, worker count, chunking mode, logger
//
// Returns:
//   - *Job[T, R]: Configured job, run with Run()
func NewJob[T, R any](mapFunc MapFunc[T, R], reduceFunc ReduceFunc[R], opts ...Option[T, R]) *Job[T, R] {
	j := &Job[T, R]{
		mapFunc:    mapFunc,
		reduceFunc: reduceFunc,
		chunkify:   true,
	}
	for _, opt := range opts {
		opt(j)
	}
	if j.logger == nil {
		j.logger = logging.NewNop()
	}

	return j
}

// Run executes the job over inputs and returns the reduced result plus
// per-worker diagnostics.
//
// In chunked mode the effective worker count never exceeds len(inputs), so no
// worker receives an empty chunk.
//
// Parameters:
//   - ctx: Context for cancellation and deadline
//   - inputs: Input collection, partitioned or replicated per the chunking flag
//
// Returns:
//   - R: Reduced result
//   - []WorkerStat: Per-worker diagnostics, indexed by job
//   - error: First worker failure, or reduction failure
func (j *Job[T, R]) Run(ctx context.Context, inputs []T) (R, []WorkerStat, error) {
	var zero R

	if j.mapFunc == nil {
		return zero, nil, types.ErrNoMapFunc
	}
	if j.reduceFunc == nil {
		return zero, nil, types.ErrNoReduceFunc
	}
	if j.backend == nil {
		return zero, nil, types.ErrBackendRequired
	}

	nJobs := j.backend.EffectiveNJobs(j.nJobs)
	shares := j.shares(inputs, &nJobs)

	partials := make([]R, nJobs)
	stats := make([]WorkerStat, nJobs)

	start := time.Now()
	err := j.backend.Run(ctx, nJobs, func(ctx context.Context, job int) error {
		workerStart := time.Now()

		out, mapErr := j.mapFunc(ctx, shares[job], job)
		if mapErr != nil {
			return fmt.Errorf("map job %d: %w", job, mapErr)
		}

		partials[job] = out
		stats[job] = WorkerStat{Job: job, Inputs: len(shares[job]), Duration: time.Since(workerStart)}

		return nil
	})
	if err != nil {
		return zero, nil, err
	}

	j.logger.Debug("map phase complete", "nJobs", nJobs, "elapsed", time.Since(start))

	reduced, err := j.reduceFunc(partials)
	if err != nil {
		return zero, nil, fmt.Errorf("reduce: %w", err)
	}

	return reduced, stats, nil
}

// shares assigns inputs to workers: balanced contiguous chunks in chunked
// mode, the whole input to every worker otherwise. Adjusts nJobs down when
// there are fewer inputs than workers.
func (j *Job[T, R]) shares(inputs []T, nJobs *int) [][]T {
	if !j.chunkify {
		shares := make([][]T, *nJobs)
		for i := range shares {
			shares[i] = inputs
		}

		return shares
	}

	if *nJobs > len(inputs) && len(inputs) > 0 {
		*nJobs = len(inputs)
	}
	n := *nJobs

	shares := make([][]T, n)
	quot, rem := len(inputs)/n, len(inputs)%n
	offset := 0
	for i := range shares {
		size := quot
		if i < rem {
			size++
		}
		shares[i] = inputs[offset : offset+size]
		offset += size
	}

	return shares
}
