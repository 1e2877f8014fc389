package domain

// AllLabel is the user-facing label of the "no constraint" filter option.
const AllLabel = "All"

// Wildcard is the type of the All sentinel. It is distinct from every data
// value inside a FilterSelection. Request parsing maps the AllLabel text to
// the sentinel, so a data value spelled "All" cannot be picked from the UI.
type Wildcard struct{}

// All matches every row for its column.
var All Value = Wildcard{}

// IsAll reports whether v is the All sentinel.
func IsAll(v Value) bool {
	_, ok := v.(Wildcard)
	return ok
}

// FilterSelection maps a column name to either All or one exact value.
type FilterSelection map[string]Value

// Active returns the selection entries that constrain rows, i.e. those
// whose value is not All.
func (s FilterSelection) Active() FilterSelection {
	out := make(FilterSelection, len(s))
	for col, v := range s {
		if !IsAll(v) {
			out[col] = v
		}
	}
	return out
}

// IsEmpty reports whether the selection constrains nothing.
func (s FilterSelection) IsEmpty() bool {
	for _, v := range s {
		if !IsAll(v) {
			return false
		}
	}
	return true
}
