package shapley

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/shapley/types"
)

func budgetConfig(maxIterations int) Config {
	cfg := TestConfig()
	cfg.ValueTolerance = 0
	cfg.MaxIterations = maxIterations

	return cfg
}

func startedCoordinator(t *testing.T, nItems int, cfg Config) *Coordinator {
	t.Helper()

	coord, err := NewCoordinator(nItems, cfg)
	require.NoError(t, err)
	require.NoError(t, coord.Start())
	t.Cleanup(func() { _ = coord.Stop() })

	return coord
}

func TestCoordinator_Lifecycle(t *testing.T) {
	coord, err := NewCoordinator(3, budgetConfig(10))
	require.NoError(t, err)

	// Operations before Start are rejected.
	_, _, err = coord.Push(context.Background(), 0, [][]float64{{1, 2, 3}})
	require.ErrorIs(t, err, ErrNotStarted)
	_, err = coord.Results()
	require.ErrorIs(t, err, ErrNotStarted)
	require.ErrorIs(t, coord.Stop(), ErrNotStarted)

	require.NoError(t, coord.Start())
	require.ErrorIs(t, coord.Start(), ErrAlreadyStarted)

	require.NoError(t, coord.Stop())
	require.NoError(t, coord.Stop(), "stop is idempotent once started")
}

func TestCoordinator_InvalidConstruction(t *testing.T) {
	_, err := NewCoordinator(0, budgetConfig(10))
	require.ErrorIs(t, err, ErrDatasetRequired)

	cfg := TestConfig()
	cfg.ValueTolerance = 0
	cfg.MaxIterations = 0
	_, err = NewCoordinator(3, cfg)
	require.ErrorIs(t, err, ErrNoStoppingCriterion)
}

func TestCoordinator_MergeMath(t *testing.T) {
	coord := startedCoordinator(t, 2, budgetConfig(100))

	merged, done, err := coord.Push(context.Background(), 0, [][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)
	require.Equal(t, 2, merged)
	require.False(t, done)

	result, err := coord.Results()
	require.NoError(t, err)
	require.Equal(t, 2, result.NSamples)
	require.InDelta(t, 2.0, result.Values[0], 1e-12)
	require.InDelta(t, 3.0, result.Values[1], 1e-12)

	// Population variance of {1,3} is 1, so the standard error is sqrt(1/2).
	require.InDelta(t, math.Sqrt(0.5), result.Stderrs[0], 1e-12)
	require.InDelta(t, math.Sqrt(0.5), result.Stderrs[1], 1e-12)
}

func TestCoordinator_NeverDoneBeforeFirstUpdate(t *testing.T) {
	// An already-exhausted budget must not finish an empty coordinator.
	coord := startedCoordinator(t, 2, budgetConfig(1))

	require.False(t, coord.CheckDone())
	require.Equal(t, types.RunStateRunning, coord.State())

	// An empty batch merges nothing and must not finish the run either.
	merged, done, err := coord.Push(context.Background(), 0, nil)
	require.NoError(t, err)
	require.Zero(t, merged)
	require.False(t, done)
	require.False(t, coord.CheckDone())
}

func TestCoordinator_BudgetStop(t *testing.T) {
	// An unreachable tolerance must not delay the budget criterion.
	cfg := budgetConfig(5)
	cfg.ValueTolerance = 1e-12
	coord := startedCoordinator(t, 1, cfg)

	merged, done, err := coord.Push(context.Background(), 0, [][]float64{{1}, {2}, {3}})
	require.NoError(t, err)
	require.Equal(t, 3, merged)
	require.False(t, done)

	merged, done, err = coord.Push(context.Background(), 1, [][]float64{{4}, {5}})
	require.NoError(t, err)
	require.Equal(t, 5, merged)
	require.True(t, done)
	require.True(t, coord.CheckDone())
	require.Equal(t, types.RunStateDone, coord.State())

	select {
	case <-coord.Done():
	default:
		t.Fatal("done channel must be closed after the budget is reached")
	}

	// Late batches from workers that were mid-flight still merge; this keeps
	// early stopping unbiased.
	merged, done, err = coord.Push(context.Background(), 0, [][]float64{{6}})
	require.NoError(t, err)
	require.Equal(t, 6, merged)
	require.True(t, done)

	result, err := coord.Results()
	require.NoError(t, err)
	require.Equal(t, 6, result.NSamples)
	require.InDelta(t, 3.5, result.Values[0], 1e-12)
}

func TestCoordinator_ToleranceStop(t *testing.T) {
	cfg := TestConfig()
	cfg.ValueTolerance = 0.5
	cfg.MaxIterations = 0
	coord := startedCoordinator(t, 2, cfg)

	// Identical rows have zero spread, so the worst relative error is 0 and
	// the very first merge satisfies any positive tolerance.
	_, done, err := coord.Push(context.Background(), 0, [][]float64{{1, 2}, {1, 2}})
	require.NoError(t, err)
	require.True(t, done)
	require.Equal(t, types.RunStateDone, coord.State())
}

func TestCoordinator_ZeroMeanItemBlocksTolerance(t *testing.T) {
	cfg := TestConfig()
	cfg.ValueTolerance = 100 // absurdly loose
	cfg.MaxIterations = 0
	coord := startedCoordinator(t, 1, cfg)

	// Item mean is 0 with non-zero spread: the relative error is undefined
	// (infinite) and even a loose tolerance must not fire.
	_, done, err := coord.Push(context.Background(), 0, [][]float64{{1}, {-1}})
	require.NoError(t, err)
	require.False(t, done)
	require.Equal(t, types.RunStateRunning, coord.State())
}

func TestCoordinator_ResultsAfterStop(t *testing.T) {
	coord := startedCoordinator(t, 2, budgetConfig(100))

	_, _, err := coord.Push(context.Background(), 3, [][]float64{{1, 2}})
	require.NoError(t, err)
	require.NoError(t, coord.Stop())

	result, err := coord.Results()
	require.NoError(t, err)
	require.Equal(t, 1, result.NSamples)
	require.Equal(t, []float64{1, 2}, result.Values)

	// Pushes into a retired coordinator are rejected, not lost silently.
	_, _, err = coord.Push(context.Background(), 3, [][]float64{{5, 6}})
	require.ErrorIs(t, err, ErrNotStarted)
}

func TestCoordinator_SnapshotIsolation(t *testing.T) {
	coord := startedCoordinator(t, 1, budgetConfig(100))

	_, _, err := coord.Push(context.Background(), 0, [][]float64{{2}})
	require.NoError(t, err)

	first, err := coord.Results()
	require.NoError(t, err)
	first.Values[0] = -999

	second, err := coord.Results()
	require.NoError(t, err)
	require.InDelta(t, 2.0, second.Values[0], 1e-12)
}

func TestCoordinator_MalformedRowsDropped(t *testing.T) {
	coord := startedCoordinator(t, 2, budgetConfig(100))

	merged, _, err := coord.Push(context.Background(), 0, [][]float64{{1, 2}, {1, 2, 3}, {7}})
	require.NoError(t, err)
	require.Equal(t, 1, merged, "only the well-formed row merges")

	result, err := coord.Results()
	require.NoError(t, err)
	require.Equal(t, 1, result.NSamples)
}

func TestCoordinator_WorkerStats(t *testing.T) {
	coord := startedCoordinator(t, 1, budgetConfig(100))

	_, _, err := coord.Push(context.Background(), 0, [][]float64{{1}, {2}})
	require.NoError(t, err)
	_, _, err = coord.Push(context.Background(), 0, [][]float64{{3}})
	require.NoError(t, err)
	_, _, err = coord.Push(context.Background(), 4, [][]float64{{4}})
	require.NoError(t, err)

	stats := coord.WorkerStats()
	require.Len(t, stats, 2)
	require.Equal(t, 2, stats[0].Updates)
	require.Equal(t, 3, stats[0].Permutations)
	require.Equal(t, 1, stats[4].Updates)
	require.False(t, stats[4].LastUpdate.IsZero())
}
