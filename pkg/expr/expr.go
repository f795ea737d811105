// Package expr defines declared, unresolved type expressions: what the
// declared-type source hands over before resolution. Expressions mirror the
// resolved algebra but keep named references unexpanded.
package expr

import (
	"strings"

	"github.com/typeconform/validator/pkg/algebra"
)

// Expr is an unresolved type expression.
type Expr interface {
	String() string

	isExpr()
}

// Primitive declares an atomic scalar kind.
type Primitive struct {
	Kind algebra.Kind
}

// Literal declares a single exact value.
type Literal struct {
	Value any
}

// Union declares an ordered choice of alternatives.
type Union struct {
	Members []Expr
}

// List declares an ordered sequence of one element type.
type List struct {
	Elem Expr
}

// Map declares a unique-keyed mapping.
type Map struct {
	Key   Expr
	Value Expr
}

// Tuple declares a fixed-arity sequence.
type Tuple struct {
	Elems []Expr
}

// Field is one keyed slot of a Record expression.
type Field struct {
	Name string
	Type Expr
}

// Record declares a fixed-shape keyed structure.
type Record struct {
	Fields []Field
}

// NamedRef references a declared name: an entity kind or a type alias.
// Which one is decided at resolution time.
type NamedRef struct {
	Name string
}

// AnyType matches every value; used when precise typing is intentionally
// skipped for a field.
type AnyType struct{}

func (*Primitive) isExpr() {}
func (*Literal) isExpr()   {}
func (*Union) isExpr()     {}
func (*List) isExpr()      {}
func (*Map) isExpr()       {}
func (*Tuple) isExpr()     {}
func (*Record) isExpr()    {}
func (*NamedRef) isExpr()  {}
func (*AnyType) isExpr()   {}

func (e *Primitive) String() string { return string(e.Kind) }

func (e *Literal) String() string { return algebra.FormatValue(e.Value) }

func (e *Union) String() string {
	parts := make([]string, len(e.Members))
	for i, m := range e.Members {
		parts[i] = m.String()
	}
	return strings.Join(parts, " | ")
}

func (e *List) String() string { return "list(" + e.Elem.String() + ")" }

func (e *Map) String() string {
	return "map(" + e.Key.String() + ", " + e.Value.String() + ")"
}

func (e *Tuple) String() string {
	parts := make([]string, len(e.Elems))
	for i, el := range e.Elems {
		parts[i] = el.String()
	}
	return "tuple(" + strings.Join(parts, ", ") + ")"
}

func (e *Record) String() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Name + ": " + f.Type.String()
	}
	return "record(" + strings.Join(parts, ", ") + ")"
}

func (e *NamedRef) String() string { return e.Name }

func (e *AnyType) String() string { return "any" }

// --- Constructors ---

// Integer declares the integer primitive.
func Integer() Expr { return &Primitive{Kind: algebra.KindInteger} }

// Float declares the float primitive.
func Float() Expr { return &Primitive{Kind: algebra.KindFloat} }

// Text declares the text primitive.
func Text() Expr { return &Primitive{Kind: algebra.KindText} }

// Bool declares the boolean primitive.
func Bool() Expr { return &Primitive{Kind: algebra.KindBoolean} }

// Nil declares the absence marker.
func Nil() Expr { return &Primitive{Kind: algebra.KindNil} }

// Lit declares a literal value.
func Lit(value any) Expr { return &Literal{Value: value} }

// UnionOf declares a union in the given member order.
func UnionOf(members ...Expr) Expr { return &Union{Members: members} }

// ListOf declares a list of elem.
func ListOf(elem Expr) Expr { return &List{Elem: elem} }

// MapOf declares a mapping from key to value.
func MapOf(key, value Expr) Expr { return &Map{Key: key, Value: value} }

// TupleOf declares a fixed-arity tuple.
func TupleOf(elems ...Expr) Expr { return &Tuple{Elems: elems} }

// RecordOf declares a fixed-shape keyed record.
func RecordOf(fields ...Field) Expr { return &Record{Fields: fields} }

// Ref references a declared entity kind or type alias by name.
func Ref(name string) Expr { return &NamedRef{Name: name} }

// Any declares the type that matches every value.
func Any() Expr { return &AnyType{} }
