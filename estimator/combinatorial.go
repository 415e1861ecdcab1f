package estimator

import (
	"context"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat/combin"

	"github.com/arloliu/shapley/internal/sampling"
	"github.com/arloliu/shapley/internal/stats"
	"github.com/arloliu/shapley/mapreduce"
	"github.com/arloliu/shapley/types"
)

// Combinatorial estimates Shapley values from the combinatorial definition,
// sampling random subsets of the power set per item.
type Combinatorial struct {
	maxIterations int
	items         []int
	cfg           config
}

var _ types.Estimator = (*Combinatorial)(nil)

// NewCombinatorial creates a combinatorial estimator.
//
// The iteration budget applies per item: every valued item draws
// maxIterations subsets of the remaining index set.
//
// Parameters:
//   - maxIterations: Number of subsets to sample per item
//   - opts: Backend, parallelism, seed, logger, metrics
//
// Returns:
//   - *Combinatorial: Initialized estimator
func NewCombinatorial(maxIterations int, opts ...Option) *Combinatorial {
	return &Combinatorial{
		maxIterations: maxIterations,
		cfg:           newConfig(opts...),
	}
}

// WithItems restricts estimation to the given item indices and returns the
// estimator. Items outside the list keep a zero value and zero standard
// error in the result, which lets disjoint runs be summed back together.
//
// A list with duplicate entries is rejected by Estimate before any sampling
// occurs.
func (e *Combinatorial) WithItems(items []int) *Combinatorial {
	e.items = items

	return e
}

// Estimate runs the combinatorial sampler.
//
// Items are partitioned across workers, so per-worker partial results have
// disjoint non-zero support and reduce by plain vector addition.
func (e *Combinatorial) Estimate(ctx context.Context, u types.Oracle, data types.Dataset) (types.Result, error) {
	if err := validateRun(u, data); err != nil {
		return types.Result{}, err
	}
	if e.maxIterations <= 0 {
		return types.Result{}, fmt.Errorf("%w: maxIterations must be > 0, got %d", types.ErrInvalidConfig, e.maxIterations)
	}

	items := e.items
	if items == nil {
		items = data.Indices()
	}
	if hasDuplicates(items) {
		return types.Result{}, types.ErrDuplicateIndices
	}

	start := time.Now()

	n := data.Len()
	indices := data.Indices()
	oracle, _ := e.cfg.backend.Put(u).(types.Oracle)

	// Monte Carlo integration correction: the uniform distribution over the
	// powerset of a set with n-1 elements has mass 2^{n-1} over each subset.
	// The additional factor n comes from the Shapley definition.
	correction := math.Exp2(float64(n-1)) / float64(n)

	mapFunc := func(ctx context.Context, chunk []int, job int) (types.Result, error) {
		src := sampling.NewSource(e.cfg.seed, job)
		partial := types.Result{
			Values:  make([]float64, n),
			Stderrs: make([]float64, n),
		}

		for _, idx := range chunk {
			rest := without(indices, idx)

			var acc stats.Accumulator
			powerset := src.Powerset(rest, e.maxIterations, sampling.UniformQ)
			for {
				s, ok := powerset.Next()
				if !ok {
					break
				}

				joint, err := evaluate(ctx, oracle, append(s, idx), e.cfg.metrics)
				if err != nil {
					return types.Result{}, fmt.Errorf("item %d: %w", idx, err)
				}
				base, err := evaluate(ctx, oracle, s, e.cfg.metrics)
				if err != nil {
					return types.Result{}, fmt.Errorf("item %d: %w", idx, err)
				}

				marginal := (joint - base) / combin.GeneralizedBinomial(float64(n-1), float64(len(s)))
				acc.Add(marginal)
			}

			partial.Values[idx] = correction * acc.Mean()
			partial.Stderrs[idx] = correction * acc.StdErr()
			partial.NSamples += acc.Count()
		}

		return partial, nil
	}

	// Non-zero supports are disjoint by construction, so adding the partial
	// results reconstructs the joint result exactly.
	reduceFunc := func(partials []types.Result) (types.Result, error) {
		total := types.Result{
			Values:  make([]float64, n),
			Stderrs: make([]float64, n),
		}
		for _, p := range partials {
			if err := total.Add(p); err != nil {
				return types.Result{}, err
			}
		}

		return total, nil
	}

	job := mapreduce.NewJob(mapFunc, reduceFunc,
		mapreduce.WithBackend[int, types.Result](e.cfg.backend),
		mapreduce.WithNJobs[int, types.Result](e.cfg.nJobs),
		mapreduce.WithLogger[int, types.Result](e.cfg.logger),
	)

	result, workerStats, err := job.Run(ctx, items)
	if err != nil {
		return types.Result{}, fmt.Errorf("combinatorial sampling: %w", err)
	}

	e.cfg.logger.Debug("combinatorial estimation complete",
		"items", len(items), "nJobs", len(workerStats), "elapsed", time.Since(start))
	e.cfg.metrics.RecordEstimation("combinatorial", time.Since(start).Seconds(), result.NSamples)

	return result, nil
}
