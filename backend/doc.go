// Package backend provides execution-substrate implementations of
// types.Backend.
//
// The core estimators depend only on the narrow Backend interface (resolve
// parallelism, publish a shared value, run a function across n jobs), never
// on a specific substrate. Local runs jobs as goroutines in-process; remote
// substrates can be plugged in by satisfying the same interface.
package backend
