package types

import "context"

// Backend is the narrow execution-substrate interface the library depends on.
//
// A Backend decides effective job parallelism, publishes values for cheap
// repeated access by workers, and runs a function across a number of parallel
// jobs. The core depends only on this interface, never on a specific backend
// technology; backend.NewLocal provides the in-process goroutine pool
// implementation.
type Backend interface {
	// EffectiveNJobs resolves a requested worker count to the count the
	// backend will actually use. A requested value <= 0 means "use all
	// available parallelism".
	EffectiveNJobs(requested int) int

	// Put publishes a value once so workers can access it repeatedly
	// without paying a transfer cost per job. In-process backends return
	// the value itself (shared by reference); distributed backends may
	// return a handle.
	Put(value any) any

	// Run executes task once per job index in [0, nJobs) with maximal
	// parallelism and blocks until all complete. The first task error
	// cancels the remaining jobs and is returned; there is no
	// partial-success mode.
	Run(ctx context.Context, nJobs int, task func(ctx context.Context, job int) error) error
}
