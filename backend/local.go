package backend

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/arloliu/shapley/types"
)

// Local implements types.Backend with an in-process goroutine pool.
type Local struct {
	maxProcs int
}

var _ types.Backend = (*Local)(nil)

// NewLocal creates a new in-process backend.
//
// The backend caps effective parallelism at runtime.NumCPU(); estimator
// workloads are CPU-bound between oracle calls and gain nothing from
// oversubscription.
//
// Returns:
//   - *Local: Initialized local backend
//
// Example:
//
//	est := estimator.NewPermutation(1000,
//	    estimator.WithBackend(backend.NewLocal()),
//	    estimator.WithNJobs(4),
//	)
func NewLocal() *Local {
	return &Local{maxProcs: runtime.NumCPU()}
}

// EffectiveNJobs resolves a requested worker count.
//
// A request <= 0 means "all CPUs". Requests above the CPU count are clamped.
func (b *Local) EffectiveNJobs(requested int) int {
	if requested <= 0 || requested > b.maxProcs {
		return b.maxProcs
	}

	return requested
}

// Put returns the value unchanged: in-process workers share it by reference.
func (b *Local) Put(value any) any {
	return value
}

// Run executes task once per job index in [0, nJobs) on separate goroutines.
//
// The first task error cancels the group's context and is returned after all
// jobs have unwound; no partial results survive a failure.
func (b *Local) Run(ctx context.Context, nJobs int, task func(ctx context.Context, job int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for job := range nJobs {
		g.Go(func() error {
			return task(gctx, job)
		})
	}

	return g.Wait()
}
