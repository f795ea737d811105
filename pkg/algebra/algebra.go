// Package algebra defines the canonical, resolved representation of
// declared types. Nodes are pure data: resolution builds them, the
// generator compiles them, nothing mutates them afterwards.
package algebra

import (
	"fmt"
	"strings"
)

// Kind is an atomic scalar kind.
type Kind string

// Primitive kinds.
const (
	KindInteger Kind = "integer"
	KindFloat   Kind = "float"
	KindText    Kind = "text"
	KindBoolean Kind = "boolean"
	// KindNil is the absence marker: it matches only a missing or nil value.
	KindNil Kind = "nil"
)

// IsValid returns true if this is a known primitive kind.
func (k Kind) IsValid() bool {
	switch k {
	case KindInteger, KindFloat, KindText, KindBoolean, KindNil:
		return true
	default:
		return false
	}
}

// Type is a resolved type algebra node. The variant set is closed; the
// generator switches exhaustively over it.
type Type interface {
	// Equal reports structural equality with another node.
	Equal(Type) bool
	// String renders the node deterministically for error messages.
	String() string

	isType()
}

// Primitive matches a single atomic scalar kind.
type Primitive struct {
	Kind Kind
}

// Literal matches one exact value.
type Literal struct {
	Value any
}

// Union matches a value against an ordered sequence of members.
// Order matters for error construction, not for the verdict.
type Union struct {
	Members []Type
}

// List is an ordered sequence with a single element type.
type List struct {
	Elem Type
}

// Map is a unique-keyed mapping.
type Map struct {
	Key   Type
	Value Type
}

// Tuple is a fixed-arity ordered sequence.
type Tuple struct {
	Elems []Type
}

// Field is one keyed slot of a Record.
type Field struct {
	Name string
	Type Type
}

// Record is a fixed-shape keyed structure: exactly the declared keys,
// each with its own type.
type Record struct {
	Fields []Field
}

// Struct references another entity kind by identifier. It is never
// inlined; matching delegates to the referenced kind's own ensurer, which
// is what makes cyclic entity graphs representable.
type Struct struct {
	Kind string
}

// Refined is a named declared type wrapping its structural base.
// Preconditions registered under Name run after Base matches.
type Refined struct {
	Name string
	Base Type
}

// Alias is a back-reference to a named declared type that is currently
// being expanded further up the tree. It keeps cyclic alias graphs finite;
// matching resolves through the enclosing Refined's compiled matcher.
type Alias struct {
	Name string
}

// Any matches every value.
type Any struct{}

func (*Primitive) isType() {}
func (*Literal) isType()   {}
func (*Union) isType()     {}
func (*List) isType()      {}
func (*Map) isType()       {}
func (*Tuple) isType()     {}
func (*Record) isType()    {}
func (*Struct) isType()    {}
func (*Refined) isType()   {}
func (*Alias) isType()     {}
func (*Any) isType()       {}

// --- Structural equality ---

func (t *Primitive) Equal(o Type) bool {
	p, ok := o.(*Primitive)
	return ok && p.Kind == t.Kind
}

func (t *Literal) Equal(o Type) bool {
	l, ok := o.(*Literal)
	return ok && EqualValues(t.Value, l.Value)
}

func (t *Union) Equal(o Type) bool {
	u, ok := o.(*Union)
	if !ok || len(u.Members) != len(t.Members) {
		return false
	}
	for i, m := range t.Members {
		if !m.Equal(u.Members[i]) {
			return false
		}
	}
	return true
}

func (t *List) Equal(o Type) bool {
	l, ok := o.(*List)
	return ok && t.Elem.Equal(l.Elem)
}

func (t *Map) Equal(o Type) bool {
	m, ok := o.(*Map)
	return ok && t.Key.Equal(m.Key) && t.Value.Equal(m.Value)
}

func (t *Tuple) Equal(o Type) bool {
	tp, ok := o.(*Tuple)
	if !ok || len(tp.Elems) != len(t.Elems) {
		return false
	}
	for i, e := range t.Elems {
		if !e.Equal(tp.Elems[i]) {
			return false
		}
	}
	return true
}

func (t *Record) Equal(o Type) bool {
	r, ok := o.(*Record)
	if !ok || len(r.Fields) != len(t.Fields) {
		return false
	}
	for i, f := range t.Fields {
		if f.Name != r.Fields[i].Name || !f.Type.Equal(r.Fields[i].Type) {
			return false
		}
	}
	return true
}

func (t *Struct) Equal(o Type) bool {
	s, ok := o.(*Struct)
	return ok && s.Kind == t.Kind
}

func (t *Refined) Equal(o Type) bool {
	r, ok := o.(*Refined)
	return ok && r.Name == t.Name && t.Base.Equal(r.Base)
}

func (t *Alias) Equal(o Type) bool {
	a, ok := o.(*Alias)
	return ok && a.Name == t.Name
}

func (t *Any) Equal(o Type) bool {
	_, ok := o.(*Any)
	return ok
}

// --- Rendering ---

func (t *Primitive) String() string {
	return string(t.Kind)
}

func (t *Literal) String() string {
	return FormatValue(t.Value)
}

func (t *Union) String() string {
	parts := make([]string, len(t.Members))
	for i, m := range t.Members {
		parts[i] = m.String()
	}
	return strings.Join(parts, " | ")
}

func (t *List) String() string {
	return "list(" + t.Elem.String() + ")"
}

func (t *Map) String() string {
	return "map(" + t.Key.String() + ", " + t.Value.String() + ")"
}

func (t *Tuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "tuple(" + strings.Join(parts, ", ") + ")"
}

func (t *Record) String() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = f.Name + ": " + f.Type.String()
	}
	return "record(" + strings.Join(parts, ", ") + ")"
}

func (t *Struct) String() string {
	return t.Kind
}

func (t *Refined) String() string {
	return t.Name
}

func (t *Alias) String() string {
	return t.Name
}

func (t *Any) String() string {
	return "any"
}

// FormatValue renders a concrete value the way error messages show it:
// text quoted, everything else in its natural form.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case string:
		return fmt.Sprintf("%q", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
