// Package dataset provides built-in types.Dataset implementations.
package dataset
