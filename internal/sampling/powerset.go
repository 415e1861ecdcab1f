package sampling

// UniformQ is the inclusion probability at which Powerset sampling is uniform
// over the power set.
const UniformQ = 0.5

// PowersetSampler lazily produces random subsets drawn from the power set of
// an index set under a Bernoulli(q) inclusion law.
//
// The sequence is finite (bounded by maxSubsets) and not restartable: every
// sampler draws fresh randomness from its Source. Callers needing
// reproducibility fix the Source seed.
type PowersetSampler struct {
	src       *Source
	indices   []int
	q         float64
	remaining int
}

// Powerset creates a sampler yielding up to maxSubsets subsets of indices,
// each element included independently with probability q.
//
// A maxSubsets <= 0 yields an empty sequence, not an error. Pass
// sampling.UniformQ for uniform power-set sampling.
//
// Parameters:
//   - indices: Index set to sample subsets of
//   - maxSubsets: Upper bound on the number of subsets produced
//   - q: Per-element inclusion probability
//
// Returns:
//   - *PowersetSampler: Lazy subset sequence
func (s *Source) Powerset(indices []int, maxSubsets int, q float64) *PowersetSampler {
	if maxSubsets < 0 {
		maxSubsets = 0
	}

	return &PowersetSampler{
		src:       s,
		indices:   indices,
		q:         q,
		remaining: maxSubsets,
	}
}

// Next returns the next random subset, or false when the sequence is
// exhausted.
func (p *PowersetSampler) Next() ([]int, bool) {
	if p.remaining <= 0 {
		return nil, false
	}
	p.remaining--

	return p.src.Subset(p.indices, p.q), true
}
