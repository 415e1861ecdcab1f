package shapley

import "github.com/arloliu/shapley/types"

// Re-export types from the types subpackage.
//
// This file provides a stable public API for the library's core types and
// interfaces. It uses type aliases to re-export definitions from the `types`
// subpackage, which contains the actual declarations.
//
// This pattern solves the "import cycle" problem by allowing internal packages
// to depend on `types` without depending on the root `shapley` package, while
// still providing a convenient `shapley.Oracle`, `shapley.Result`, etc. for
// users.
type (
	Result   = types.Result
	RunState = types.RunState
)

// Re-export interfaces from the types subpackage for convenience.
type (
	Oracle           = types.Oracle
	OracleFunc       = types.OracleFunc
	Dataset          = types.Dataset
	Backend          = types.Backend
	Estimator        = types.Estimator
	MetricsCollector = types.MetricsCollector
	Logger           = types.Logger
)

// Re-export RunState constants from the types subpackage.
const (
	RunStateRunning = types.RunStateRunning
	RunStateDone    = types.RunStateDone
)
