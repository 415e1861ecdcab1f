package stats

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

// batchMoments computes mean and population variance directly from the full
// sequence, as the reference for the incremental update.
func batchMoments(xs []float64) (float64, float64) {
	mean := stat.Mean(xs, nil)

	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}

	return mean, ss / float64(len(xs))
}

func TestUpdate_MatchesBatch(t *testing.T) {
	sequences := [][]float64{
		{1},
		{1, 1, 1, 1},
		{0, 1},
		{3.5, -2.25, 0.125, 7, 1e-3, -9.75},
		{1e8, 1e8 + 1, 1e8 + 2, 1e8 + 3}, // catastrophic cancellation for naive sum of squares
	}

	for _, xs := range sequences {
		mean, variance := 0.0, 0.0
		for i, x := range xs {
			mean, variance = Update(mean, variance, x, i)
		}

		wantMean, wantVar := batchMoments(xs)
		require.InDelta(t, wantMean, mean, 1e-9)
		require.InDelta(t, wantVar, variance, 1e-6)
	}
}

func TestUpdate_RandomSequence(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 13))

	xs := make([]float64, 10_000)
	for i := range xs {
		xs[i] = rng.NormFloat64()*3 + 0.5
	}

	var acc Accumulator
	for _, x := range xs {
		acc.Add(x)
	}

	wantMean, wantVar := batchMoments(xs)
	require.InDelta(t, wantMean, acc.Mean(), 1e-9)
	require.InDelta(t, wantVar, acc.Variance(), 1e-6)
	require.Equal(t, len(xs), acc.Count())
}

func TestAccumulator_Empty(t *testing.T) {
	var acc Accumulator

	require.Zero(t, acc.Mean())
	require.Zero(t, acc.Variance())
	require.Zero(t, acc.StdErr())
	require.Zero(t, acc.Count())
}

func TestAccumulator_StdErr(t *testing.T) {
	var acc Accumulator
	for _, x := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		acc.Add(x)
	}

	// Known example: population variance 4, stderr = 2/sqrt(8).
	require.InDelta(t, 5.0, acc.Mean(), 1e-12)
	require.InDelta(t, 4.0, acc.Variance(), 1e-12)
	require.InDelta(t, 0.7071067811865476, acc.StdErr(), 1e-12)
}
