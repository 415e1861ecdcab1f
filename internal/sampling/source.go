// Package sampling provides the random permutation and powerset samplers
// behind the Monte Carlo estimators.
//
// All randomness flows through an explicitly owned Source; there is no
// package-level RNG. Each parallel worker derives its own Source from a
// run-level seed plus its worker index, which keeps parallel runs
// reproducible and testable.
package sampling

import (
	"encoding/binary"
	"math/rand/v2"

	"github.com/zeebo/xxh3"
)

// Source is an owned random-number stream for one worker.
//
// Not safe for concurrent use; each worker owns exactly one Source.
type Source struct {
	rng *rand.Rand
}

// NewSource creates a Source seeded deterministically from a run-level seed
// and a worker index.
//
// Distinct worker indices yield uncorrelated streams via xxh3 hashing, so a
// fixed run seed reproduces the whole parallel run regardless of scheduling.
//
// Parameters:
//   - seed: Run-level seed shared by all workers
//   - worker: Worker index, unique within the run
//
// Returns:
//   - *Source: Owned random stream for the worker
func NewSource(seed uint64, worker int) *Source {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(worker)) //nolint:gosec // index, not secret

	derived := xxh3.HashSeed(buf[:], seed)

	return &Source{rng: rand.New(rand.NewPCG(seed, derived))}
}

// Permutation returns a fresh uniformly random ordering of indices.
//
// The input slice is never mutated; every call draws an independent
// permutation.
func (s *Source) Permutation(indices []int) []int {
	out := make([]int, len(indices))
	copy(out, indices)
	s.rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})

	return out
}

// Subset draws one subset of indices with each element included
// independently with probability q.
func (s *Source) Subset(indices []int, q float64) []int {
	subset := make([]int, 0, len(indices))
	for _, idx := range indices {
		if s.rng.Float64() < q {
			subset = append(subset, idx)
		}
	}

	return subset
}

// Float64 returns a uniform draw from [0, 1).
func (s *Source) Float64() float64 {
	return s.rng.Float64()
}
