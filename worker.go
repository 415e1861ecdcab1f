package shapley

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/shapley/estimator"
	"github.com/arloliu/shapley/internal/sampling"
	"github.com/arloliu/shapley/types"
)

// worker samples permutations and pushes batches of marginals to the
// coordinator.
//
// Each worker owns a deterministic random stream derived from the run seed
// and its index, so the set of permutations a run walks is reproducible
// regardless of goroutine scheduling.
type worker struct {
	id      int
	oracle  types.Oracle
	indices []int
	coord   *Coordinator
	src     *sampling.Source
	cadence time.Duration
	logger  types.Logger
	metrics types.MetricsCollector
}

func newWorker(id int, oracle types.Oracle, indices []int, coord *Coordinator, seed uint64, cadence time.Duration, options *protocolOptions) *worker {
	return &worker{
		id:      id,
		oracle:  oracle,
		indices: indices,
		coord:   coord,
		src:     sampling.NewSource(seed, id),
		cadence: cadence,
		logger:  options.logger,
		metrics: options.metrics,
	}
}

// run walks permutations until the coordinator is done or the context is
// canceled.
//
// Completed permutations are batched and pushed at the configured cadence.
// On shutdown the pending batch is flushed so every finished permutation
// reaches the aggregate; dropping finished work would bias the estimate
// toward cheap permutations.
//
// Returns nil on cancellation and coordinator completion; only an oracle
// failure is an error.
func (w *worker) run(ctx context.Context) error {
	ticker := time.NewTicker(w.cadence)
	defer ticker.Stop()

	pending := make([][]float64, 0, 16)

	flush := func() {
		if len(pending) == 0 {
			return
		}

		// The batch is complete work even when ctx is already canceled, so
		// the final push gets a fresh context. The coordinator outlives the
		// workers; a closed mailbox is still handled below.
		merged, _, err := w.coord.Push(context.WithoutCancel(ctx), w.id, pending)
		if err != nil {
			w.logger.Warn("discarding unmergeable batch", "workerID", w.id, "rows", len(pending), "error", err)
		} else {
			w.logger.Debug("pushed update", "workerID", w.id, "rows", len(pending), "totalMerged", merged)
		}
		pending = pending[:0]
	}
	defer flush()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.coord.Done():
			return nil
		default:
		}

		start := time.Now()
		perm := w.src.Permutation(w.indices)
		marginals, err := estimator.PermutationMarginals(ctx, w.oracle, perm)
		if err != nil {
			// An interrupted walk is a partial permutation, not a failure;
			// drop it and let the completed batch flush.
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}

			return fmt.Errorf("worker %d: %w", w.id, err)
		}
		w.metrics.RecordPermutation(w.id, time.Since(start).Seconds())
		pending = append(pending, marginals)

		select {
		case <-ticker.C:
			flush()
		default:
		}
	}
}
