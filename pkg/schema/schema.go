// Package schema models declaration snapshots: the per-entity field
// declarations, type aliases, and field classifications the declared-type
// source supplies. A snapshot is consumed as-is at generation time; it is
// never watched for redeclaration.
package schema

import (
	"fmt"

	"github.com/typeconform/validator/pkg/expr"
)

// FieldDecl declares one field of an entity kind.
type FieldDecl struct {
	Name string
	Type expr.Expr
}

// Entity declares one entity kind: its fields in declaration order plus
// the associated and metadata field sets.
type Entity struct {
	// Kind is the entity kind identifier, e.g. "Person".
	Kind string

	// Fields in declaration order. Declaration order is what field
	// enumeration and error construction preserve.
	Fields []FieldDecl

	// Associated names fields that belong to the entity's structural
	// identity but are materialized externally (e.g. lazily loaded
	// relations). They are excluded from structural checks and retained
	// in the full field enumeration.
	Associated []string

	// Metadata names bookkeeping fields that carry no declared type.
	Metadata []string
}

// Field returns the declaration for a named field, or false.
func (e *Entity) Field(name string) (FieldDecl, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDecl{}, false
}

// IsAssociated reports whether name is an associated field.
func (e *Entity) IsAssociated(name string) bool {
	for _, a := range e.Associated {
		if a == name {
			return true
		}
	}
	return false
}

// Alias declares a named type. Preconditions registered under Name attach
// to every use of the alias.
type Alias struct {
	Name string
	Type expr.Expr
}

// Snapshot is a stable set of entity and alias declarations.
type Snapshot struct {
	entities map[string]*Entity
	aliases  map[string]*Alias
	kinds    []string // entity declaration order
}

// NewSnapshot creates an empty Snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		entities: make(map[string]*Entity),
		aliases:  make(map[string]*Alias),
	}
}

// AddEntity registers an entity declaration. Redeclaring a kind or reusing
// an alias name is a configuration fault.
func (s *Snapshot) AddEntity(e *Entity) error {
	if e == nil || e.Kind == "" {
		return fmt.Errorf("schema: entity requires a kind")
	}
	if _, exists := s.entities[e.Kind]; exists {
		return fmt.Errorf("schema: duplicate entity kind %q", e.Kind)
	}
	if _, exists := s.aliases[e.Kind]; exists {
		return fmt.Errorf("schema: entity kind %q collides with an alias", e.Kind)
	}
	seen := make(map[string]bool, len(e.Fields))
	for _, f := range e.Fields {
		if f.Name == "" || f.Type == nil {
			return fmt.Errorf("schema: entity %q has an incomplete field declaration", e.Kind)
		}
		if seen[f.Name] {
			return fmt.Errorf("schema: entity %q declares field %q twice", e.Kind, f.Name)
		}
		seen[f.Name] = true
	}
	// Metadata fields carry no declared type; a typed field listed as
	// metadata is a contradictory declaration. Associated fields may be
	// typed (the type is declared but externally materialized).
	for _, name := range e.Metadata {
		if seen[name] {
			return fmt.Errorf("schema: entity %q lists typed field %q as metadata", e.Kind, name)
		}
	}
	s.entities[e.Kind] = e
	s.kinds = append(s.kinds, e.Kind)
	return nil
}

// AddAlias registers a type alias declaration.
func (s *Snapshot) AddAlias(a *Alias) error {
	if a == nil || a.Name == "" || a.Type == nil {
		return fmt.Errorf("schema: alias requires a name and a type")
	}
	if _, exists := s.aliases[a.Name]; exists {
		return fmt.Errorf("schema: duplicate alias %q", a.Name)
	}
	if _, exists := s.entities[a.Name]; exists {
		return fmt.Errorf("schema: alias %q collides with an entity kind", a.Name)
	}
	s.aliases[a.Name] = a
	return nil
}

// Entity returns the declaration for an entity kind.
func (s *Snapshot) Entity(kind string) (*Entity, bool) {
	e, ok := s.entities[kind]
	return e, ok
}

// Alias returns the declaration for a type alias.
func (s *Snapshot) Alias(name string) (*Alias, bool) {
	a, ok := s.aliases[name]
	return a, ok
}

// HasKind reports whether kind is a declared entity kind.
func (s *Snapshot) HasKind(kind string) bool {
	_, ok := s.entities[kind]
	return ok
}

// Kinds returns all declared entity kinds in declaration order.
func (s *Snapshot) Kinds() []string {
	out := make([]string, len(s.kinds))
	copy(out, s.kinds)
	return out
}

// Len returns the number of declared entity kinds.
func (s *Snapshot) Len() int {
	return len(s.entities)
}
