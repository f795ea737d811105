// Package precond defines named precondition predicates. A precondition
// attaches to a declared type name, not a field: every field or position
// using that type runs the same predicates after structural matching
// succeeds. The predicate's reason text is authoritative and is surfaced
// verbatim.
package precond

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/typeconform/validator/pkg/algebra"
)

// Precondition checks a structurally valid value against a type invariant.
// A nil return means the value is acceptable.
type Precondition func(value any) error

// Set holds named precondition lists keyed by declared type name.
// Predicates registered under an entity kind's own name run against the
// whole instance after all field checks pass.
type Set map[string][]Precondition

// Add appends predicates for a type name, preserving registration order.
func (s Set) Add(typeName string, preconds ...Precondition) {
	s[typeName] = append(s[typeName], preconds...)
}

// For returns the ordered predicates registered for a type name.
func (s Set) For(typeName string) []Precondition {
	if s == nil {
		return nil
	}
	return s[typeName]
}

// --- Built-in constructors ---

// InRange requires a numeric value between min and max inclusive.
// Comparison is exact: 150.0000001 fails a 0..150 range even though it
// rounds to 150 as a float.
func InRange(min, max float64) Precondition {
	lo := decimal.NewFromFloat(min)
	hi := decimal.NewFromFloat(max)
	return func(value any) error {
		d, ok := algebra.NumericValue(value)
		if !ok {
			return fmt.Errorf("value %v is not numeric", value)
		}
		if d.LessThan(lo) || d.GreaterThan(hi) {
			return fmt.Errorf("value %s is out of range %s..%s", d, lo, hi)
		}
		return nil
	}
}

// NonEmpty requires a non-empty text, list, or mapping.
func NonEmpty() Precondition {
	return func(value any) error {
		switch v := value.(type) {
		case string:
			if v == "" {
				return fmt.Errorf("value must not be empty")
			}
		case []any:
			if len(v) == 0 {
				return fmt.Errorf("value must not be empty")
			}
		case map[string]any:
			if len(v) == 0 {
				return fmt.Errorf("value must not be empty")
			}
		default:
			return fmt.Errorf("value %v has no notion of emptiness", value)
		}
		return nil
	}
}

// Match requires text matching the given pattern.
// The pattern is compiled once at construction.
func Match(pattern string) Precondition {
	re := regexp.MustCompile(pattern)
	return func(value any) error {
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("value %v is not text", value)
		}
		if !re.MatchString(s) {
			return fmt.Errorf("value %q does not match %s", s, pattern)
		}
		return nil
	}
}

// OneOf requires the value to equal one of the allowed values.
func OneOf(allowed ...any) Precondition {
	return func(value any) error {
		for _, a := range allowed {
			if algebra.EqualValues(value, a) {
				return nil
			}
		}
		return fmt.Errorf("value %v is not one of the allowed values", value)
	}
}
