package estimator

import (
	"context"
	"fmt"
	"time"

	"github.com/arloliu/shapley/internal/sampling"
	"github.com/arloliu/shapley/mapreduce"
	"github.com/arloliu/shapley/types"
)

// OwenAlgorithm selects the Owen sampling variant. The two variants are a
// closed set; there is no runtime string dispatch.
type OwenAlgorithm int

const (
	// OwenFull samples inclusion probabilities q over [0, 1]. Items already
	// inside a sampled subset contribute nothing for that subset.
	OwenFull OwenAlgorithm = iota

	// OwenHalved samples q over [0, 0.5] and additionally accumulates the
	// complementary-subset marginal for items inside the subset, reducing
	// variance through antithetic sampling.
	OwenHalved
)

// String returns the string representation of the algorithm.
func (a OwenAlgorithm) String() string {
	switch a {
	case OwenFull:
		return "full"
	case OwenHalved:
		return "halved"
	default:
		return "unknown"
	}
}

// qStop returns the upper end of the inclusion-probability range.
func (a OwenAlgorithm) qStop() float64 {
	if a == OwenHalved {
		return 0.5
	}

	return 1.0
}

// samplesPerSubset returns how many effective samples one drawn subset
// represents: the halved variant's complement marginal is a second sample at
// inclusion probability 1-q.
func (a OwenAlgorithm) samplesPerSubset() int {
	if a == OwenHalved {
		return 2
	}

	return 1
}

// CorrectionFunc weighs a marginal sampled at inclusion probability q.
// Marginals are divided by the returned value.
//
// The default approximately undoes the conditioning on D\{i} versus D. It is
// known to be an approximation that may be off for non-linear oracles, which
// is why it is pluggable rather than hard-coded; replace it only with a new
// derivation in hand.
type CorrectionFunc func(q float64) float64

// DefaultCorrection is the floored 1-q conditioning correction.
func DefaultCorrection(q float64) float64 {
	const floor = 1.0 / 500

	if 1-q > floor {
		return 1 - q
	}

	return floor
}

// Owen estimates Shapley values by stratified sampling over the element
// inclusion probability, as a Monte Carlo approximation of the multilinear
// extension integral.
type Owen struct {
	maxIterations int
	maxQ          int
	algorithm     OwenAlgorithm
	correction    CorrectionFunc
	cfg           config
}

var _ types.Estimator = (*Owen)(nil)

// NewOwen creates an Owen sampling estimator.
//
// Parameters:
//   - maxIterations: Number of subsets to sample at each value of q
//   - maxQ: Number of evenly spaced q values approximating the outer integral
//   - algorithm: OwenFull or OwenHalved
//   - opts: Backend, parallelism, seed, logger, metrics
//
// Returns:
//   - *Owen: Initialized estimator
//
// Example:
//
//	est := estimator.NewOwen(100, 50, estimator.OwenHalved, estimator.WithSeed(7))
//	result, err := est.Estimate(ctx, oracle, dataset)
func NewOwen(maxIterations, maxQ int, algorithm OwenAlgorithm, opts ...Option) *Owen {
	return &Owen{
		maxIterations: maxIterations,
		maxQ:          maxQ,
		algorithm:     algorithm,
		correction:    DefaultCorrection,
		cfg:           newConfig(opts...),
	}
}

// WithCorrection replaces the conditioning correction and returns the
// estimator.
func (e *Owen) WithCorrection(fn CorrectionFunc) *Owen {
	if fn != nil {
		e.correction = fn
	}

	return e
}

// Estimate runs the Owen sampler.
//
// Workers receive disjoint chunks of the q grid. Reduction sums the weighted
// marginal totals and the sample counts separately across workers, then
// divides once at the end; dividing per worker would weight strata by worker
// chunk size instead of sample count.
func (e *Owen) Estimate(ctx context.Context, u types.Oracle, data types.Dataset) (types.Result, error) {
	if err := validateRun(u, data); err != nil {
		return types.Result{}, err
	}
	if e.maxIterations <= 0 || e.maxQ <= 1 {
		return types.Result{}, fmt.Errorf("%w: need maxIterations > 0 and maxQ > 1, got %d and %d",
			types.ErrInvalidConfig, e.maxIterations, e.maxQ)
	}
	if e.algorithm != OwenFull && e.algorithm != OwenHalved {
		return types.Result{}, fmt.Errorf("%w: unknown Owen algorithm %d", types.ErrInvalidConfig, int(e.algorithm))
	}

	start := time.Now()

	n := data.Len()
	indices := data.Indices()
	oracle, _ := e.cfg.backend.Put(u).(types.Oracle)

	qValues := linspace(0, e.algorithm.qStop(), e.maxQ)

	mapFunc := func(ctx context.Context, chunk []float64, job int) (types.Result, error) {
		src := sampling.NewSource(e.cfg.seed, job)
		partial := types.Result{
			Values:  make([]float64, n),
			Stderrs: make([]float64, n),
		}

		for _, q := range chunk {
			if err := e.sampleAtQ(ctx, oracle, src, indices, q, partial.Values); err != nil {
				return types.Result{}, err
			}
			// The halved variant draws an antithetic sample at effective
			// inclusion probability 1-q alongside every direct sample.
			partial.NSamples += e.maxIterations * e.algorithm.samplesPerSubset()
		}

		return partial, nil
	}

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
		for i := range total.Values {
			total.Values[i] /= float64(total.NSamples)
		}

		return total, nil
	}

	job := mapreduce.NewJob(mapFunc, reduceFunc,
		mapreduce.WithBackend[float64, types.Result](e.cfg.backend),
		mapreduce.WithNJobs[float64, types.Result](e.cfg.nJobs),
		mapreduce.WithLogger[float64, types.Result](e.cfg.logger),
	)

	result, _, err := job.Run(ctx, qValues)
	if err != nil {
		return types.Result{}, fmt.Errorf("owen sampling: %w", err)
	}

	e.cfg.logger.Debug("owen estimation complete",
		"algorithm", e.algorithm.String(), "qValues", len(qValues), "elapsed", time.Since(start))
	e.cfg.metrics.RecordEstimation("owen", time.Since(start).Seconds(), result.NSamples)

	return result, nil
}

// sampleAtQ draws maxIterations subsets at inclusion probability q and
// accumulates weighted marginals into values.
func (e *Owen) sampleAtQ(ctx context.Context, u types.Oracle, src *sampling.Source, indices []int, q float64, values []float64) error {
	powerset := src.Powerset(indices, e.maxIterations, q)
	for {
		s, ok := powerset.Next()
		if !ok {
			return nil
		}

		inSubset := make(map[int]struct{}, len(s))
		for _, i := range s {
			inSubset[i] = struct{}{}
		}

		base, err := evaluate(ctx, u, s, e.cfg.metrics)
		if err != nil {
			return err
		}

		// The complement base is only needed by the halved variant, and only
		// when some item lies inside s; computed lazily once per subset.
		var complement []int
		complementBase := 0.0
		haveComplement := false

		for _, i := range indices {
			var marginal, correction float64

			if _, ok := inSubset[i]; ok {
				// We sampled from all of D rather than D\{i}, so s∪{i} == s
				// for items inside s: no information in the full variant.
				if e.algorithm == OwenFull {
					continue
				}

				if !haveComplement {
					complement = complementOf(indices, inSubset)
					complementBase, err = evaluate(ctx, u, complement, e.cfg.metrics)
					if err != nil {
						return err
					}
					haveComplement = true
				}

				joint, err := evaluate(ctx, u, append(complement, i), e.cfg.metrics)
				if err != nil {
					return err
				}
				marginal = joint - complementBase
				// The complement subset is a draw at effective inclusion
				// probability 1-q; the conditioning correction applies at
				// that level.
				correction = e.correction(1 - q)
			} else {
				joint, err := evaluate(ctx, u, append(s, i), e.cfg.metrics)
				if err != nil {
					return err
				}
				marginal = joint - base
				correction = e.correction(q)
			}

			values[i] += marginal / correction
		}
	}
}

// complementOf returns the indices not present in the membership set.
func complementOf(indices []int, members map[int]struct{}) []int {
	out := make([]int, 0, len(indices)-len(members))
	for _, i := range indices {
		if _, ok := members[i]; !ok {
			out = append(out, i)
		}
	}

	return out
}

// linspace returns num evenly spaced values from start to stop inclusive.
func linspace(start, stop float64, num int) []float64 {
	out := make([]float64, num)
	step := (stop - start) / float64(num-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[num-1] = stop

	return out
}
