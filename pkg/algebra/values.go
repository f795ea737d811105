package algebra

import (
	"reflect"

	"github.com/shopspring/decimal"
)

// NumericValue converts any Go numeric value to an exact decimal.
// Returns false for non-numeric values.
func NumericValue(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int8:
		return decimal.NewFromInt(int64(n)), true
	case int16:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case uint:
		return decimal.NewFromUint64(uint64(n)), true
	case uint8:
		return decimal.NewFromUint64(uint64(n)), true
	case uint16:
		return decimal.NewFromUint64(uint64(n)), true
	case uint32:
		return decimal.NewFromUint64(uint64(n)), true
	case uint64:
		return decimal.NewFromUint64(n), true
	case float32:
		return decimal.NewFromFloat32(n), true
	case float64:
		return decimal.NewFromFloat(n), true
	case decimal.Decimal:
		return n, true
	default:
		return decimal.Decimal{}, false
	}
}

// IsIntegral reports whether v is a numeric value with no fractional part.
// JSON decoding yields float64 for every number, so 42 arrives as 42.0 and
// must still count as an integer.
func IsIntegral(v any) bool {
	d, ok := NumericValue(v)
	if !ok {
		return false
	}
	switch v.(type) {
	case float32, float64:
		return d.IsInteger()
	default:
		return true
	}
}

// EqualValues compares two concrete values the way literal matching does:
// numbers by exact decimal value regardless of representation, containers
// recursively, everything else by deep equality.
func EqualValues(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if da, ok := NumericValue(a); ok {
		db, ok := NumericValue(b)
		return ok && da.Equal(db)
	}

	switch av := a.(type) {
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !EqualValues(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bval, exists := bv[k]
			if !exists || !EqualValues(v, bval) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(a, b)
	}
}

// Describe names the shape of a concrete value in the algebra's vocabulary.
func Describe(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case bool:
		return "boolean"
	case string:
		return "text"
	case []any:
		return "list"
	case map[string]any:
		return "mapping"
	default:
		if IsIntegral(val) {
			return "integer"
		}
		if _, ok := NumericValue(val); ok {
			return "float"
		}
		return reflect.TypeOf(v).String()
	}
}
