// Package reporting turns estimation results into consumer-friendly views.
package reporting

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arloliu/shapley/types"
)

// Row pairs one item's estimate with its dataset name.
type Row struct {
	// Index is the item's position in the dataset.
	Index int

	// Name is the dataset's display name for the item.
	Name string

	// Value is the estimated contribution.
	Value float64

	// Stderr is the estimated standard error.
	Stderr float64
}

// Sorted returns one row per item, ordered by descending value.
//
// Ties break by ascending index so the ordering is deterministic. When data
// is nil, names fall back to the item index.
//
// Parameters:
//   - result: Estimate to report
//   - data: Dataset providing item names, may be nil
//
// Returns:
//   - []Row: Rows ordered most to least valuable
//   - error: Result invariant violation
func Sorted(result types.Result, data types.Dataset) ([]Row, error) {
	if err := result.Validate(); err != nil {
		return nil, err
	}

	rows := make([]Row, result.Len())
	for i := range rows {
		name := fmt.Sprintf("%d", i)
		if data != nil {
			name = data.Name(i)
		}
		rows[i] = Row{
			Index:  i,
			Name:   name,
			Value:  result.Values[i],
			Stderr: result.Stderrs[i],
		}
	}

	sort.SliceStable(rows, func(a, b int) bool {
		if rows[a].Value != rows[b].Value {
			return rows[a].Value > rows[b].Value
		}

		return rows[a].Index < rows[b].Index
	})

	return rows, nil
}

// Format renders rows as an aligned text table, one item per line.
//
// Intended for logs and CLI output, not machine consumption.
func Format(rows []Row) string {
	var b strings.Builder
	for _, row := range rows {
		fmt.Fprintf(&b, "%-20s %12.6f ± %.6f\n", row.Name, row.Value, row.Stderr)
	}

	return b.String()
}
