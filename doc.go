// Package shapley provides Monte Carlo estimation of Shapley values for
// cooperative games defined by a utility oracle.
//
// The library turns "how much did each item contribute?" questions into a
// sampling problem: given a set of N items and an oracle u(S) scoring any
// subset S, it estimates each item's Shapley value together with a standard
// error, in parallel, with reproducible randomness.
//
// # Quick Start
//
// Streaming estimation with early stopping:
//
//	import "github.com/arloliu/shapley"
//
//	cfg := shapley.DefaultConfig()
//	cfg.ValueTolerance = 0.02
//	cfg.MaxIterations = 10000
//
//	est, err := shapley.NewTruncatedMonteCarlo(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := est.Estimate(ctx, oracle, dataset.NewStatic(n))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for i, v := range result.Values {
//	    fmt.Printf("item %d: %.4f ± %.4f\n", i, v, result.Stderrs[i])
//	}
//
// # Key Features
//
//   - Streaming Protocol: Workers push incremental updates to a coordinator
//     that stops the run the moment the estimate is precise enough
//   - Unbiased Early Stopping: Completed permutations are always merged, so
//     truncation never skews the estimate toward cheap permutations
//   - Batch Estimators: Fixed-budget permutation, combinatorial and Owen
//     samplers live in the estimator subpackage
//   - Reproducible Parallelism: Worker random streams derive from one run
//     seed, so results are independent of goroutine scheduling
//
// # Architecture
//
// The coordinator is an actor owning the aggregate state:
//
//	workers ──push──▶ coordinator ──merge──▶ Running → Done
//
// Each worker walks random permutations, computes per-item marginal
// contributions, and pushes batches at a configured cadence. The coordinator
// folds every row into running means and variances and checks the stopping
// criteria after each merge.
//
// # Advanced Usage
//
// Batch estimation with an explicit budget:
//
//	import "github.com/arloliu/shapley/estimator"
//
//	est := estimator.NewPermutation(5000,
//	    estimator.WithNJobs(8),
//	    estimator.WithSeed(42),
//	)
//	result, err := est.Estimate(ctx, oracle, data)
//
// See the examples/ directory for complete working examples.
package shapley
