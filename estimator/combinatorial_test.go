package estimator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/shapley/dataset"
	shaptest "github.com/arloliu/shapley/testing"
	"github.com/arloliu/shapley/types"
)

func TestCombinatorial_DuplicateIndicesRejected(t *testing.T) {
	u := shaptest.NewCountingOracle(shaptest.LinearOracle([]float64{1, 2, 3}))
	data := dataset.NewStatic(3)

	est := NewCombinatorial(100, WithSeed(1)).WithItems([]int{0, 1, 1})
	_, err := est.Estimate(context.Background(), u, data)
	require.ErrorIs(t, err, types.ErrDuplicateIndices)
	require.Zero(t, u.Calls(), "rejected before any sampling")
}

func TestCombinatorial_LinearOracleConverges(t *testing.T) {
	weights := []float64{1.0, 2.0, 4.0}
	u := shaptest.LinearOracle(weights)
	data := dataset.NewStatic(len(weights))

	est := NewCombinatorial(3000, WithSeed(11), WithNJobs(3))
	result, err := est.Estimate(context.Background(), u, data)
	require.NoError(t, err)
	require.NoError(t, result.Validate())

	for i, w := range weights {
		require.InDelta(t, w, result.Values[i], 0.25*w)
		require.Positive(t, result.Stderrs[i])
	}
	require.Equal(t, 3000*len(weights), result.NSamples)
}

func TestCombinatorial_DisjointPartitionsAddUp(t *testing.T) {
	weights := []float64{0.5, 1.5, 2.5, 3.5}
	u := shaptest.LinearOracle(weights)
	data := dataset.NewStatic(len(weights))

	lo, err := NewCombinatorial(2000, WithSeed(5)).WithItems([]int{0, 1}).
		Estimate(context.Background(), u, data)
	require.NoError(t, err)
	hi, err := NewCombinatorial(2000, WithSeed(6)).WithItems([]int{2, 3}).
		Estimate(context.Background(), u, data)
	require.NoError(t, err)

	// Supports are disjoint: items outside each run's list stay exactly zero.
	require.Zero(t, lo.Values[2])
	require.Zero(t, lo.Values[3])
	require.Zero(t, hi.Values[0])
	require.Zero(t, hi.Values[1])

	joint := lo.Clone()
	require.NoError(t, joint.Add(hi))

	full, err := NewCombinatorial(2000, WithSeed(7)).Estimate(context.Background(), u, data)
	require.NoError(t, err)

	// Within sampling noise the summed runs match the single full run.
	for i := range weights {
		tolerance := 4 * (joint.Stderrs[i] + full.Stderrs[i])
		require.InDelta(t, full.Values[i], joint.Values[i], tolerance)
	}
}

func TestCombinatorial_SingleItem(t *testing.T) {
	u := shaptest.OffsetOracle(shaptest.LinearOracle([]float64{2.5}), 3)
	data := dataset.NewStatic(1)

	// n=1: the only subset of the empty rest-set is {}, the binomial weight
	// and the correction are both 1, so every sample is exactly u({0})-u({}).
	result, err := NewCombinatorial(10, WithSeed(2), WithNJobs(1)).
		Estimate(context.Background(), u, data)
	require.NoError(t, err)
	require.InDelta(t, 2.5, result.Values[0], 1e-12)
	require.InDelta(t, 0, result.Stderrs[0], 1e-12)
}

func TestCombinatorial_InvalidBudget(t *testing.T) {
	u := shaptest.LinearOracle([]float64{1})
	_, err := NewCombinatorial(0).Estimate(context.Background(), u, dataset.NewStatic(1))
	require.ErrorIs(t, err, types.ErrInvalidConfig)
}
