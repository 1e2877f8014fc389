package engine

import (
	"slices"

	"crash-dash/internal/domain"
)

// DistinctValues returns the distinct non-null values of column, ascending.
func DistinctValues(table *domain.Table, column string) ([]domain.Value, error) {
	idx, ok := table.ColumnIndex(column)
	if !ok {
		return nil, domain.ErrInvalidColumn(column, table.Columns())
	}

	seen := make(map[domain.Value]struct{})
	values := make([]domain.Value, 0)
	for i := 0; i < table.Len(); i++ {
		v := table.Value(i, idx)
		if v == nil {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	slices.SortFunc(values, Compare)
	return values, nil
}

// FilterDomain returns the options a user may pick for column: domain.All
// followed by DistinctValues. A column with no non-null values yields just All.
func FilterDomain(table *domain.Table, column string) ([]domain.Value, error) {
	values, err := DistinctValues(table, column)
	if err != nil {
		return nil, err
	}
	return append([]domain.Value{domain.All}, values...), nil
}
