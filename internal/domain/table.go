package domain

// Well-known columns of the crash table.
const (
	ColumnAgeRange  = "AGERANGE"
	ColumnDayNumber = "DAYNUMBER"
)

// Table is an immutable, ordered set of rows sharing one column schema.
// Row order is the order the source returned; nothing sorts it implicitly.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]Value
}

// NewTable copies columns and rows into a new Table. Every row must have
// exactly len(columns) cells; short rows are padded with nulls and long rows
// are truncated.
func NewTable(columns []string, rows [][]Value) *Table {
	cols := append([]string(nil), columns...)
	copied := make([][]Value, len(rows))
	for i := range rows {
		r := make([]Value, len(cols))
		copy(r, rows[i])
		copied[i] = r
	}
	return newTable(cols, copied)
}

func newTable(columns []string, rows [][]Value) *Table {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c] = i
	}
	return &Table{columns: columns, index: index, rows: rows}
}

// EmptyTable returns a table with no columns and no rows. It stands for
// "no data" after a failed fetch.
func EmptyTable() *Table {
	return newTable(nil, nil)
}

// Columns returns a copy of the column names in schema order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// ColumnIndex reports the position of a column in the schema.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// HasColumn reports whether name is part of the schema.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// IsEmpty reports whether the table has no rows.
func (t *Table) IsEmpty() bool { return len(t.rows) == 0 }

// Value returns the cell at row i, column position col.
func (t *Table) Value(i, col int) Value { return t.rows[i][col] }

// Row returns row i as a column name to value mapping.
func (t *Table) Row(i int) map[string]Value {
	out := make(map[string]Value, len(t.columns))
	for j, c := range t.columns {
		out[c] = t.rows[i][j]
	}
	return out
}

// Values returns a copy of row i in schema order.
func (t *Table) Values(i int) []Value {
	return append([]Value(nil), t.rows[i]...)
}

// Select returns a new table holding the rows at the given positions, in the
// given order, with the same schema. Row storage is shared with t, which is
// safe because neither table ever mutates it.
func (t *Table) Select(positions []int) *Table {
	rows := make([][]Value, len(positions))
	for i, p := range positions {
		rows[i] = t.rows[p]
	}
	return &Table{columns: t.columns, index: t.index, rows: rows}
}
