package sampling

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSource_Deterministic(t *testing.T) {
	a := NewSource(42, 3)
	b := NewSource(42, 3)

	indices := []int{0, 1, 2, 3, 4, 5, 6, 7}
	require.Equal(t, a.Permutation(indices), b.Permutation(indices))
	require.Equal(t, a.Subset(indices, 0.5), b.Subset(indices, 0.5))
}

func TestNewSource_DistinctWorkers(t *testing.T) {
	a := NewSource(42, 0)
	b := NewSource(42, 1)

	// With 20 elements the chance of two independent streams agreeing on the
	// first permutation is negligible.
	indices := make([]int, 20)
	for i := range indices {
		indices[i] = i
	}
	require.NotEqual(t, a.Permutation(indices), b.Permutation(indices))
}

func TestPermutation_IsPermutation(t *testing.T) {
	src := NewSource(1, 0)
	indices := []int{0, 1, 2, 3, 4}

	perm := src.Permutation(indices)
	require.ElementsMatch(t, indices, perm)
	require.Equal(t, []int{0, 1, 2, 3, 4}, indices, "input must not be mutated")
}

func TestPermutation_Uniformish(t *testing.T) {
	src := NewSource(7, 0)
	indices := []int{0, 1, 2}

	// Every item should land in every position a roughly equal number of times.
	const draws = 6000
	counts := [3][3]int{}
	for range draws {
		perm := src.Permutation(indices)
		for pos, idx := range perm {
			counts[idx][pos]++
		}
	}

	for idx := range counts {
		for pos := range counts[idx] {
			require.InDelta(t, draws/3, counts[idx][pos], draws/10)
		}
	}
}

func TestPowerset_Bounded(t *testing.T) {
	src := NewSource(3, 0)
	sampler := src.Powerset([]int{0, 1, 2, 3}, 5, UniformQ)

	var n int
	for {
		subset, ok := sampler.Next()
		if !ok {
			break
		}
		require.LessOrEqual(t, len(subset), 4)
		n++
	}
	require.Equal(t, 5, n)
}

func TestPowerset_NonPositiveBudgetIsEmpty(t *testing.T) {
	src := NewSource(3, 0)

	for _, max := range []int{0, -1} {
		sampler := src.Powerset([]int{0, 1, 2}, max, UniformQ)
		_, ok := sampler.Next()
		require.False(t, ok)
	}
}

func TestPowerset_InclusionProbability(t *testing.T) {
	src := NewSource(11, 0)
	indices := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	const draws = 4000
	q := 0.2
	sampler := src.Powerset(indices, draws, q)

	var total int
	for {
		subset, ok := sampler.Next()
		if !ok {
			break
		}
		total += len(subset)
	}

	mean := float64(total) / draws
	require.InDelta(t, q*float64(len(indices)), mean, 0.1)
}

func TestPowerset_ExtremeQ(t *testing.T) {
	src := NewSource(5, 0)
	indices := []int{0, 1, 2}

	full := src.Powerset(indices, 10, 1.0)
	for {
		subset, ok := full.Next()
		if !ok {
			break
		}
		require.Len(t, subset, 3)
	}

	empty := src.Powerset(indices, 10, 0.0)
	for {
		subset, ok := empty.Next()
		if !ok {
			break
		}
		require.Empty(t, subset)
	}
}
