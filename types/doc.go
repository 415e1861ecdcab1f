// Package types defines the shared interfaces and value types of the shapley
// library: the utility oracle, dataset and execution backend collaborators,
// the estimator contract, result snapshots, logging and metrics interfaces.
//
// Internal packages depend on types without depending on the root shapley
// package, which re-exports the most commonly used definitions for
// convenience. This avoids import cycles while keeping a stable public API.
package types
