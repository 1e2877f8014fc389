// Package engine implements the dashboard's in-memory table operations:
// exact-match filtering, value-count aggregation, and filter option domains.
// Nothing here performs I/O; every function returns new values and leaves its
// input table untouched.
package engine

import (
	"crash-dash/internal/domain"
)

type constraint struct {
	col   int
	value domain.Value
}

// Apply returns the rows of table that satisfy every non-All entry of sel.
// Constraints are ANDed and compared by exact equality. Row order is kept.
// An empty or all-All selection returns table itself.
// A selection naming a column outside the schema yields *domain.InvalidColumnError.
func Apply(table *domain.Table, sel domain.FilterSelection) (*domain.Table, error) {
	for col := range sel {
		if !table.HasColumn(col) {
			return nil, domain.ErrInvalidColumn(col, table.Columns())
		}
	}
	if sel.IsEmpty() {
		return table, nil
	}

	active := sel.Active()
	constraints := make([]constraint, 0, len(active))
	for col, v := range active {
		idx, _ := table.ColumnIndex(col)
		constraints = append(constraints, constraint{col: idx, value: v})
	}

	positions := make([]int, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		if matchesAll(table, i, constraints) {
			positions = append(positions, i)
		}
	}
	return table.Select(positions), nil
}

func matchesAll(table *domain.Table, row int, constraints []constraint) bool {
	for _, c := range constraints {
		if !Equal(table.Value(row, c.col), c.value) {
			return false
		}
	}
	return true
}
