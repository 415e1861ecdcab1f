package types

// Dataset exposes the index set being valued.
//
// The library only needs cardinality, the index set {0..N-1} and a stable
// display name per item; the data itself lives inside the Oracle. Consumed
// read-only, and must not change for the duration of an estimation run.
type Dataset interface {
	// Len returns the number of items N.
	Len() int

	// Indices returns the index set {0..N-1}. Implementations may return a
	// shared slice; callers must not mutate it.
	Indices() []int

	// Name returns a stable display name for item i, used when presenting
	// results. Implementations should fall back to the decimal index when
	// no explicit name is configured.
	Name(i int) string
}
