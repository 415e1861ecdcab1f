package estimator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/shapley/dataset"
	shaptest "github.com/arloliu/shapley/testing"
	"github.com/arloliu/shapley/types"
)

func TestPermutation_SingleItemIsExact(t *testing.T) {
	// With one item there is a single permutation and no sampling noise: the
	// value must equal u({0}) - u({}) exactly, even when u({}) != 0.
	u := shaptest.OffsetOracle(shaptest.LinearOracle([]float64{3.25}), 10)
	data := dataset.NewStatic(1)

	est := NewPermutation(5, WithSeed(1), WithNJobs(1))
	result, err := est.Estimate(context.Background(), u, data)
	require.NoError(t, err)

	require.Len(t, result.Values, 1)
	require.Equal(t, 3.25, result.Values[0])
	require.Zero(t, result.Stderrs[0])
}

func TestPermutation_LinearOracleConverges(t *testing.T) {
	weights := []float64{0.0, 1.0, 2.0, 3.0}
	u := shaptest.LinearOracle(weights)
	data := dataset.NewStatic(len(weights))

	est := NewPermutation(500, WithSeed(42), WithNJobs(2))
	result, err := est.Estimate(context.Background(), u, data)
	require.NoError(t, err)
	require.NoError(t, result.Validate())
	require.Len(t, result.Values, len(weights))

	// Additive oracle: each permutation yields the exact weights, so even a
	// small budget recovers them to float precision.
	for i, w := range weights {
		require.InDelta(t, w, result.Values[i], 1e-9)
	}
}

func TestPermutation_EndToEndWithinTenPercent(t *testing.T) {
	// N=4, u(S) = sum of item indices: exact values are [0, 1, 2, 3].
	weights := []float64{0, 1, 2, 3}
	u := shaptest.NewCountingOracle(shaptest.LinearOracle(weights))
	data := dataset.NewStatic(4)

	est := NewPermutation(400, WithSeed(7))
	result, err := est.Estimate(context.Background(), u, data)
	require.NoError(t, err)

	require.InDelta(t, 0, result.Values[0], 1e-9)
	for i := 1; i < 4; i++ {
		relErr := (result.Values[i] - weights[i]) / weights[i]
		require.Less(t, relErr, 0.10)
		require.Greater(t, relErr, -0.10)
	}
	require.Positive(t, u.Calls())
}

func TestPermutation_ReproducibleWithSeed(t *testing.T) {
	u := shaptest.SizeOracle(func(size int) float64 { return float64(size * size) })
	data := dataset.NewStatic(5)

	a, err := NewPermutation(50, WithSeed(99), WithNJobs(2)).Estimate(context.Background(), u, data)
	require.NoError(t, err)
	b, err := NewPermutation(50, WithSeed(99), WithNJobs(2)).Estimate(context.Background(), u, data)
	require.NoError(t, err)

	require.Equal(t, a.Values, b.Values)
	require.Equal(t, a.Stderrs, b.Stderrs)
}

func TestPermutation_OracleErrorPropagates(t *testing.T) {
	boom := errors.New("training failed")
	u := shaptest.NewFailingOracle(shaptest.LinearOracle([]float64{1, 2, 3}), boom, 4)
	data := dataset.NewStatic(3)

	_, err := NewPermutation(100, WithSeed(3), WithNJobs(1)).Estimate(context.Background(), u, data)
	require.ErrorIs(t, err, boom)
}

func TestPermutation_InvalidInputs(t *testing.T) {
	u := shaptest.LinearOracle([]float64{1})
	data := dataset.NewStatic(1)

	_, err := NewPermutation(0).Estimate(context.Background(), u, data)
	require.ErrorIs(t, err, types.ErrInvalidConfig)

	_, err = NewPermutation(10).Estimate(context.Background(), nil, data)
	require.ErrorIs(t, err, types.ErrOracleRequired)

	_, err = NewPermutation(10).Estimate(context.Background(), u, nil)
	require.ErrorIs(t, err, types.ErrDatasetRequired)

	_, err = NewPermutation(10).Estimate(context.Background(), u, dataset.NewStatic(0))
	require.ErrorIs(t, err, types.ErrDatasetRequired)
}

func TestPermutationMarginals_WalkOrder(t *testing.T) {
	// u(S) = |S|^2 makes each marginal depend on the prefix length:
	// position p contributes (p+1)^2 - p^2 = 2p+1.
	u := shaptest.SizeOracle(func(size int) float64 { return float64(size * size) })

	perm := []int{2, 0, 1}
	marginals, err := PermutationMarginals(context.Background(), u, perm)
	require.NoError(t, err)

	// Marginals are indexed by item: item 2 sat at position 0, etc.
	require.Equal(t, []float64{3, 5, 1}, marginals)
}
