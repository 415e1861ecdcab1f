package dataset

import (
	"strconv"

	"github.com/arloliu/shapley/types"
)

// Static implements a dataset with a fixed size and optional display names.
type Static struct {
	indices []int
	names   []string
}

var _ types.Dataset = (*Static)(nil)

// NewStatic creates a dataset of n items indexed 0..n-1.
//
// Display names default to the decimal index; use WithNames to override.
//
// Parameters:
//   - n: Number of items
//
// Returns:
//   - *Static: Initialized dataset
//
// Example:
//
//	data := dataset.NewStatic(100)
//	result, err := est.Estimate(ctx, oracle, data)
func NewStatic(n int) *Static {
	if n < 0 {
		n = 0
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	return &Static{indices: indices}
}

// WithNames sets per-item display names and returns the dataset.
//
// Names beyond the dataset size are ignored; missing names fall back to the
// decimal index.
func (d *Static) WithNames(names []string) *Static {
	d.names = make([]string, len(d.indices))
	copy(d.names, names)

	return d
}

// Len returns the number of items.
func (d *Static) Len() int {
	return len(d.indices)
}

// Indices returns the index set {0..N-1}.
//
// The returned slice is shared; callers must not mutate it.
func (d *Static) Indices() []int {
	return d.indices
}

// Name returns the display name for item i.
func (d *Static) Name(i int) string {
	if i >= 0 && i < len(d.names) && d.names[i] != "" {
		return d.names[i]
	}

	return strconv.Itoa(i)
}
