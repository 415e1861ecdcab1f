package shapley

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/arloliu/shapley/internal/stats"
	"github.com/arloliu/shapley/types"
)

// updateMsg carries one worker batch into the coordinator mailbox.
type updateMsg struct {
	workerID  int
	marginals [][]float64
	reply     chan updateReply
}

// updateReply acknowledges a merged batch.
type updateReply struct {
	merged int
	done   bool
}

// WorkerInfo is a per-worker bookkeeping snapshot.
type WorkerInfo struct {
	// Updates is the number of batches merged from the worker.
	Updates int

	// Permutations is the number of permutation rows merged from the worker.
	Permutations int

	// LastUpdate is when the worker's most recent batch was merged.
	LastUpdate time.Time
}

// Coordinator owns the aggregate estimation state and decides when sampling
// can stop.
//
// Coordinator is an actor: a single goroutine owns the running means,
// variances and sample counts, and all interaction goes through its mailbox.
// There are no locks around the aggregate state and no torn reads; a snapshot
// returned by Results is a deep copy taken between merges.
//
// Thread Safety:
//   - All public methods are safe for concurrent use
//   - Push blocks until the batch is merged and acknowledged
//   - Results observes a consistent state, never a partial merge
//
// Lifecycle:
//   - Create with NewCoordinator()
//   - Call Start() to launch the mailbox goroutine
//   - Workers call Push() with batches of permutation marginals
//   - Watch Done() or poll CheckDone() for the stopping criterion
//   - Call Stop() to retire the goroutine; Results remains readable
type Coordinator struct {
	valueTolerance float64
	maxIterations  int
	nItems         int

	logger  types.Logger
	metrics types.MetricsCollector

	updates   chan updateMsg
	snapshots chan chan types.Result
	doneCh    chan struct{}
	stopCh    chan struct{}
	stoppedCh chan struct{}

	workers *xsync.Map[int, WorkerInfo]

	state       atomic.Int32 // types.RunState
	started     atomic.Bool
	finalResult atomic.Value // types.Result
}

// NewCoordinator creates a coordinator for nItems dataset items.
//
// The stopping criteria come from cfg; at least one of ValueTolerance and
// MaxIterations must be enabled.
//
// Parameters:
//   - nItems: Number of dataset items being valued
//   - cfg: Stopping criteria and cadence configuration
//   - opts: Optional logger and metrics collector
//
// Returns:
//   - *Coordinator: Initialized coordinator, not yet started
//   - error: Validation error if the configuration cannot stop
func NewCoordinator(nItems int, cfg Config, opts ...Option) (*Coordinator, error) {
	if nItems <= 0 {
		return nil, ErrDatasetRequired
	}

	SetDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := applyOptions(opts...)

	c := &Coordinator{
		valueTolerance: cfg.ValueTolerance,
		maxIterations:  cfg.MaxIterations,
		nItems:         nItems,
		logger:         options.logger,
		metrics:        options.metrics,
		updates:        make(chan updateMsg),
		snapshots:      make(chan chan types.Result),
		doneCh:         make(chan struct{}),
		stopCh:         make(chan struct{}),
		stoppedCh:      make(chan struct{}),
		workers:        xsync.NewMap[int, WorkerInfo](),
	}
	c.state.Store(int32(types.RunStateRunning))

	return c, nil
}

// Start launches the mailbox goroutine.
//
// Returns:
//   - error: ErrAlreadyStarted if the coordinator is already running
func (c *Coordinator) Start() error {
	if !c.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	go c.loop()

	return nil
}

// Stop retires the mailbox goroutine and waits for it to exit.
//
// The final aggregate is captured before the goroutine exits, so Results
// keeps working after Stop. Push and snapshot requests issued after Stop
// return ErrNotStarted.
//
// Returns:
//   - error: ErrNotStarted if the coordinator was never started
func (c *Coordinator) Stop() error {
	if !c.started.Load() {
		return ErrNotStarted
	}

	select {
	case <-c.stoppedCh:
		return nil
	default:
	}

	close(c.stopCh)
	<-c.stoppedCh

	return nil
}

// Push merges one batch of permutation marginals and blocks until the merge
// is acknowledged.
//
// Each row is one walked permutation: row[i] is the marginal contribution of
// item i in that permutation. The acknowledgment carries the total number of
// permutations merged so far, which lets remote relays report progress
// without a second round trip.
//
// Parameters:
//   - ctx: Context for cancellation while waiting on the mailbox
//   - workerID: Index of the pushing worker
//   - marginals: Batch of permutation rows, each of length nItems
//
// Returns:
//   - int: Total permutations merged across all workers, after this batch
//   - bool: Whether a stopping criterion has been met
//   - error: Context cancellation, or ErrNotStarted after Stop
func (c *Coordinator) Push(ctx context.Context, workerID int, marginals [][]float64) (int, bool, error) {
	if !c.started.Load() {
		return 0, false, ErrNotStarted
	}

	msg := updateMsg{
		workerID:  workerID,
		marginals: marginals,
		reply:     make(chan updateReply, 1),
	}

	select {
	case c.updates <- msg:
	case <-c.stoppedCh:
		return 0, false, ErrNotStarted
	case <-ctx.Done():
		return 0, false, ctx.Err()
	}

	select {
	case reply := <-msg.reply:
		return reply.merged, reply.done, nil
	case <-ctx.Done():
		return 0, false, ctx.Err()
	}
}

// Results returns a deep-copy snapshot of the current estimate.
//
// NSamples is the number of merged permutations. Before the first merge the
// snapshot carries zero values and zero sample count.
//
// Returns:
//   - types.Result: Consistent snapshot, safe to retain
//   - error: ErrNotStarted if the coordinator was never started
func (c *Coordinator) Results() (types.Result, error) {
	if !c.started.Load() {
		return types.Result{}, ErrNotStarted
	}

	req := make(chan types.Result, 1)
	select {
	case c.snapshots <- req:
		return <-req, nil
	case <-c.stoppedCh:
		return c.finalResult.Load().(types.Result), nil
	}
}

// Done returns a channel closed when a stopping criterion is met.
func (c *Coordinator) Done() <-chan struct{} {
	return c.doneCh
}

// CheckDone reports whether a stopping criterion has been met.
//
// Always false before the first update has been merged, regardless of the
// configured budget.
func (c *Coordinator) CheckDone() bool {
	select {
	case <-c.doneCh:
		return true
	default:
		return false
	}
}

// State returns the coordinator lifecycle state.
func (c *Coordinator) State() types.RunState {
	return types.RunState(c.state.Load())
}

// WorkerStats returns a snapshot of per-worker bookkeeping, keyed by worker
// index.
func (c *Coordinator) WorkerStats() map[int]WorkerInfo {
	out := make(map[int]WorkerInfo)
	c.workers.Range(func(id int, info WorkerInfo) bool {
		out[id] = info

		return true
	})

	return out
}

// loop is the mailbox goroutine. It is the only writer of the aggregate
// state.
func (c *Coordinator) loop() {
	defer close(c.stoppedCh)

	means := make([]float64, c.nItems)
	variances := make([]float64, c.nItems)
	counts := make([]int, c.nItems)
	totalPermutations := 0

	snapshot := func() types.Result {
		out := types.Result{
			Values:   make([]float64, c.nItems),
			Stderrs:  make([]float64, c.nItems),
			NSamples: totalPermutations,
		}
		copy(out.Values, means)
		for i := range variances {
			if counts[i] > 0 {
				out.Stderrs[i] = math.Sqrt(variances[i] / float64(counts[i]))
			}
		}

		return out
	}

	for {
		select {
		case msg := <-c.updates:
			for _, row := range msg.marginals {
				if len(row) != c.nItems {
					c.logger.Warn("dropping malformed update row",
						"workerID", msg.workerID, "rowLen", len(row), "nItems", c.nItems)

					continue
				}
				for i, v := range row {
					means[i], variances[i] = stats.Update(means[i], variances[i], v, counts[i])
					counts[i]++
				}
				totalPermutations++
			}

			c.recordWorker(msg.workerID, len(msg.marginals))
			c.metrics.RecordUpdateMerged(msg.workerID, len(msg.marginals))

			done := c.evaluateStopping(means, variances, counts, totalPermutations)
			msg.reply <- updateReply{merged: totalPermutations, done: done}

		case req := <-c.snapshots:
			req <- snapshot()

		case <-c.stopCh:
			c.finalResult.Store(snapshot())

			return
		}
	}
}

// recordWorker updates per-worker bookkeeping. Only called from the loop
// goroutine, so load-then-store is race-free.
func (c *Coordinator) recordWorker(workerID, permutations int) {
	info, _ := c.workers.Load(workerID)
	info.Updates++
	info.Permutations += permutations
	info.LastUpdate = time.Now()
	c.workers.Store(workerID, info)
}

// evaluateStopping checks both criteria after a merge and transitions the
// state exactly once.
func (c *Coordinator) evaluateStopping(means, variances []float64, counts []int, totalPermutations int) bool {
	if c.CheckDone() {
		return true
	}

	// A coordinator with no merged samples is never done; the estimate would
	// be undefined.
	if totalPermutations == 0 {
		return false
	}

	if c.maxIterations > 0 && totalPermutations >= c.maxIterations {
		c.finish("budget", totalPermutations, 0)

		return true
	}

	if c.valueTolerance > 0 {
		ratio := worstRelativeError(means, variances, counts)
		c.metrics.RecordConvergence(ratio)
		if ratio < c.valueTolerance {
			c.finish("tolerance", totalPermutations, ratio)

			return true
		}
	}

	return false
}

// finish performs the single Running -> Done transition.
func (c *Coordinator) finish(reason string, totalPermutations int, ratio float64) {
	c.state.Store(int32(types.RunStateDone))
	c.metrics.RecordStateTransition(types.RunStateRunning, types.RunStateDone)
	c.logger.Info("stopping criterion met",
		"reason", reason, "permutations", totalPermutations, "worstRelativeError", ratio)
	close(c.doneCh)
}

// worstRelativeError returns max over items of stderr/|mean|.
//
// An item whose mean is zero with non-zero spread yields +Inf, which keeps
// the tolerance criterion from firing until the item resolves.
func worstRelativeError(means, variances []float64, counts []int) float64 {
	worst := 0.0
	for i := range means {
		if counts[i] == 0 {
			return math.Inf(1)
		}

		stderr := math.Sqrt(variances[i] / float64(counts[i]))
		var ratio float64
		switch {
		case stderr == 0:
			ratio = 0
		case means[i] == 0:
			ratio = math.Inf(1)
		default:
			ratio = stderr / math.Abs(means[i])
		}
		if ratio > worst {
			worst = ratio
		}
	}

	return worst
}
