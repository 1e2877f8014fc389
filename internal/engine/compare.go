package engine

import (
	"cmp"
	"strings"

	"crash-dash/internal/domain"
)

// Equal reports exact equality of two cells. Null equals nothing, not even
// another null, so a null row never matches a filter value.
func Equal(a, b domain.Value) bool {
	if a == nil || b == nil {
		return false
	}
	return a == b
}

// kindRank orders values of different kinds: bool < number < string < other.
func kindRank(v domain.Value) int {
	switch v.(type) {
	case bool:
		return 0
	case int64, float64:
		return 1
	case string:
		return 2
	default:
		return 3
	}
}

// Compare orders two non-null values ascending. Numbers compare numerically
// across int64 and float64, strings lexically, and false sorts before true.
func Compare(a, b domain.Value) int {
	ra, rb := kindRank(a), kindRank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch x := a.(type) {
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	case int64:
		if y, ok := b.(int64); ok {
			return cmp.Compare(x, y)
		}
		return cmp.Compare(float64(x), b.(float64))
	case float64:
		if y, ok := b.(int64); ok {
			return cmp.Compare(x, float64(y))
		}
		return cmp.Compare(x, b.(float64))
	case string:
		return strings.Compare(x, b.(string))
	default:
		return strings.Compare(domain.FormatValue(a), domain.FormatValue(b))
	}
}
