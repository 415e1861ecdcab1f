// Package testing provides test helpers for the shapley library and its
// consumers: reference oracles with known Shapley values, a testing.T-backed
// logger, and an embedded NATS server for relay tests.
package testing
