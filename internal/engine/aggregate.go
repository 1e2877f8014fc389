package engine

import (
	"slices"

	"crash-dash/internal/domain"
)

// Distribution counts the rows of table per distinct value of column.
// Null cells are skipped and produce no bucket. Buckets are ordered by count
// descending, ties broken by category ascending.
func Distribution(table *domain.Table, column string) (domain.Distribution, error) {
	idx, ok := table.ColumnIndex(column)
	if !ok {
		return nil, domain.ErrInvalidColumn(column, table.Columns())
	}

	counts := make(map[domain.Value]int)
	for i := 0; i < table.Len(); i++ {
		v := table.Value(i, idx)
		if v == nil {
			continue
		}
		counts[v]++
	}

	out := make(domain.Distribution, 0, len(counts))
	for v, n := range counts {
		out = append(out, domain.Bucket{Category: v, Count: n})
	}
	slices.SortFunc(out, func(a, b domain.Bucket) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return Compare(a.Category, b.Category)
	})
	return out, nil
}
