package resolve

import (
	"fmt"

	"github.com/typeconform/validator/pkg/algebra"
	"github.com/typeconform/validator/pkg/expr"
)

// Field is one structurally-typed field with its resolved type.
type Field struct {
	Name string
	Type algebra.Type
}

// Entity is the fully resolved view of one entity kind: the structural
// field-type mapping plus the category partitions used for introspection.
// All slices preserve declaration order.
type Entity struct {
	Kind string

	// Fields holds the resolved types for structurally checked fields.
	// Any-typed, associated, and metadata fields are not in it.
	Fields []Field

	// Structural lists the names in Fields.
	Structural []string

	// AnyTyped lists fields declared as "any"; never validated.
	AnyTyped []string

	// Associated lists externally materialized association fields,
	// excluded from structural checks.
	Associated []string

	// Metadata lists bookkeeping fields with no declared type.
	Metadata []string

	// All is the full field enumeration: every declared, associated,
	// and metadata field exactly once.
	All []string
}

// FieldType returns the resolved type for a structural field.
func (e *Entity) FieldType(name string) (algebra.Type, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

// Declared reports whether name is in the full field enumeration.
func (e *Entity) Declared(name string) bool {
	for _, n := range e.All {
		if n == name {
			return true
		}
	}
	return false
}

// ResolveEntity resolves every field of an entity kind and partitions the
// field set by category.
func (r *Resolver) ResolveEntity(kind string) (*Entity, error) {
	decl, ok := r.snap.Entity(kind)
	if !ok {
		return nil, &UnknownEntityError{Name: kind}
	}

	ent := &Entity{Kind: kind}
	seen := make(map[string]bool)

	for _, f := range decl.Fields {
		seen[f.Name] = true
		ent.All = append(ent.All, f.Name)

		if decl.IsAssociated(f.Name) {
			ent.Associated = append(ent.Associated, f.Name)
			continue
		}

		if _, isAny := f.Type.(*expr.AnyType); isAny {
			ent.AnyTyped = append(ent.AnyTyped, f.Name)
			continue
		}

		t, err := r.Resolve(f.Type)
		if err != nil {
			return nil, fmt.Errorf("resolve: entity %q field %q: %w", kind, f.Name, err)
		}
		ent.Fields = append(ent.Fields, Field{Name: f.Name, Type: t})
		ent.Structural = append(ent.Structural, f.Name)
	}

	// Associated fields may be declared without a type expression;
	// they still belong to the full enumeration.
	for _, name := range decl.Associated {
		if seen[name] {
			continue
		}
		seen[name] = true
		ent.Associated = append(ent.Associated, name)
		ent.All = append(ent.All, name)
	}

	for _, name := range decl.Metadata {
		if seen[name] {
			continue
		}
		seen[name] = true
		ent.Metadata = append(ent.Metadata, name)
		ent.All = append(ent.All, name)
	}

	return ent, nil
}
