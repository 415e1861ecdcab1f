package shapley

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arloliu/shapley/types"
)

// TruncatedMonteCarlo estimates Shapley values with parallel permutation
// sampling and early stopping.
//
// TruncatedMonteCarlo is the streaming counterpart of the batch estimators:
// instead of a fixed sampling budget split up front, workers push incremental
// updates to a Coordinator, which merges them into a running estimate and
// truncates the run the moment a stopping criterion is met.
//
// Thread Safety:
//   - Estimate may be called concurrently; each call owns its coordinator
//     and workers
//
// Lifecycle:
//   - Create with NewTruncatedMonteCarlo()
//   - Call Estimate(); it blocks until a stopping criterion fires or the
//     context is canceled
type TruncatedMonteCarlo struct {
	cfg     Config
	options *protocolOptions
}

var _ types.Estimator = (*TruncatedMonteCarlo)(nil)

// NewTruncatedMonteCarlo creates the estimator with the provided
// configuration.
//
// Parameters:
//   - cfg: Stopping criteria, parallelism, seed and update cadences
//   - opts: Optional backend, logger and metrics collector
//
// Returns:
//   - *TruncatedMonteCarlo: Initialized estimator
//   - error: Validation error if the configuration is invalid
//
// Example:
//
//	cfg := shapley.DefaultConfig()
//	cfg.ValueTolerance = 0.02
//	cfg.MaxIterations = 10000
//	est, err := shapley.NewTruncatedMonteCarlo(cfg, shapley.WithLogger(logger))
//	result, err := est.Estimate(ctx, oracle, data)
func NewTruncatedMonteCarlo(cfg Config, opts ...Option) (*TruncatedMonteCarlo, error) {
	SetDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := applyOptions(opts...)
	cfg.ValidateWithWarnings(options.logger)

	return &TruncatedMonteCarlo{
		cfg:     cfg,
		options: options,
	}, nil
}

// Estimate runs the coordinator/worker protocol until a stopping criterion
// fires.
//
// Workers that finished a permutation before shutdown flush it to the
// coordinator, so the returned estimate reflects every completed permutation
// and early stopping introduces no selection bias.
//
// Parameters:
//   - ctx: Context for cancellation; canceling aborts the run with ctx.Err()
//   - u: Utility oracle
//   - data: Dataset naming the items to value
//
// Returns:
//   - types.Result: Estimate with per-item values, standard errors and the
//     merged permutation count
//   - error: Configuration, oracle or context error
func (e *TruncatedMonteCarlo) Estimate(ctx context.Context, u types.Oracle, data types.Dataset) (types.Result, error) {
	if u == nil {
		return types.Result{}, ErrOracleRequired
	}
	if data == nil || data.Len() == 0 {
		return types.Result{}, ErrDatasetRequired
	}

	start := time.Now()
	indices := data.Indices()

	seed := e.cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano()) //nolint:gosec // statistical seed, not security
	}

	coord, err := NewCoordinator(data.Len(), e.cfg, WithLogger(e.options.logger), WithMetrics(e.options.metrics))
	if err != nil {
		return types.Result{}, err
	}
	if err := coord.Start(); err != nil {
		return types.Result{}, err
	}
	defer coord.Stop() //nolint:errcheck // started above, Stop cannot fail

	nJobs := e.options.backend.EffectiveNJobs(e.cfg.NJobs)
	oracle, _ := e.options.backend.Put(u).(types.Oracle)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, groupCtx := errgroup.WithContext(runCtx)
	for i := 0; i < nJobs; i++ {
		w := newWorker(i, oracle, indices, coord, seed, e.cfg.WorkerUpdateFrequency, e.options)
		group.Go(func() error {
			return w.run(groupCtx)
		})
	}

	e.options.logger.Debug("estimation started",
		"items", data.Len(), "nJobs", nJobs, "seed", seed)

	e.supervise(ctx, groupCtx, coord)

	// Stop the workers and wait for their final flushes before snapshotting.
	cancel()
	runErr := group.Wait()

	result, resErr := coord.Results()
	if resErr != nil {
		return types.Result{}, resErr
	}

	if runErr != nil {
		return types.Result{}, fmt.Errorf("truncated monte carlo: %w", runErr)
	}
	if ctx.Err() != nil {
		return types.Result{}, ctx.Err()
	}

	e.options.logger.Info("estimation complete",
		"permutations", result.NSamples, "elapsed", time.Since(start), "workers", len(coord.WorkerStats()))
	e.options.metrics.RecordEstimation("truncated", time.Since(start).Seconds(), result.NSamples)

	return result, nil
}

// supervise blocks until the run should wind down: criterion met, a worker
// failed, or the caller canceled. The ticker only drives progress reporting.
func (e *TruncatedMonteCarlo) supervise(ctx, groupCtx context.Context, coord *Coordinator) {
	ticker := time.NewTicker(e.cfg.CoordinatorUpdateFrequency)
	defer ticker.Stop()

	for {
		select {
		case <-coord.Done():
			return
		case <-groupCtx.Done():
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			snapshot, err := coord.Results()
			if err != nil {
				return
			}
			e.options.logger.Debug("estimation progress",
				"permutations", snapshot.NSamples, "state", coord.State())
		}
	}
}
