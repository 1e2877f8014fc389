package domain

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"time"
)

// Value is a single cell: string, int64, float64, bool, or nil for null.
type Value = any

// NormalizeValue converts a driver-specific cell into the Value set.
// Integers of every width become int64, floats and decimals become float64,
// byte slices become strings, timestamps are rendered as RFC 3339. NaN is
// null.
func NormalizeValue(v any) Value {
	switch x := v.(type) {
	case nil:
		return nil
	case string, int64, bool:
		return x
	case float64:
		if math.IsNaN(x) {
			return nil
		}
		return x
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return int64(x) //nolint:gosec // row counts and day numbers fit
	case float32:
		if math.IsNaN(float64(x)) {
			return nil
		}
		return float64(x)
	case []byte:
		return string(x)
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	case *big.Rat:
		if x == nil {
			return nil
		}
		f, _ := x.Float64()
		return f
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}

// FormatValue renders a value for display and for round-tripping through
// form parameters. Nulls render as the empty string.
func FormatValue(v Value) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case Wildcard:
		return AllLabel
	default:
		return fmt.Sprintf("%v", x)
	}
}
