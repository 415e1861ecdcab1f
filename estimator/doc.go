// Package estimator provides the built-in Monte Carlo Shapley estimators.
//
// All estimators satisfy the types.Estimator interface and share the same
// calling convention: configure budget and parallelism at construction, then
// call Estimate with an oracle and a dataset. They differ in how they sample
// the space of subsets:
//
//   - Permutation: samples random orderings of the index set and walks each
//     one left to right, reading one marginal contribution per item per
//     permutation. The default choice for medium to large datasets.
//
//   - Combinatorial: samples random subsets per item directly from the
//     combinatorial definition. Items are partitioned across workers, so
//     the sampling budget applies per item. Practical only for small N,
//     where the inverse binomial weights stay well-conditioned.
//
//   - Owen: stratifies sampling over the element inclusion probability q and
//     averages marginals across strata. OwenHalved additionally uses
//     antithetic complement samples to reduce variance.
//
// # Estimator Selection Guide
//
// Permutation:
//   - One oracle call per item per permutation, plus the empty set
//   - Unbiased, with straightforward standard errors
//   - Use unless you have a specific reason not to
//
// Combinatorial:
//   - Budget is per item; total oracle calls = 2 * budget * N
//   - Disjoint per-worker support enables exact partition additivity
//   - Use for small N or when valuing a subset of items
//
// Owen:
//   - Stratified over inclusion probability, often lower variance per call
//   - The 1/(1-q) conditioning correction is approximate; it is exposed as a
//     pluggable CorrectionFunc rather than hard-coded
//   - Does not report standard errors
//
// The early-stopping coordinator/worker variant of the permutation estimator
// lives in the root shapley package (TruncatedMonteCarlo).
package estimator
