// Package ensure compiles resolved entity types into type ensurers: one
// structural matcher per field, a whole-entity precondition check, and
// field enumeration by category. Ensurers are immutable after generation
// and safe for unlimited concurrent use.
package ensure

import (
	typeconform "github.com/typeconform/validator"
	"github.com/typeconform/validator/pkg/errbuild"
	"github.com/typeconform/validator/pkg/precond"
	"github.com/typeconform/validator/pkg/resolve"
	"github.com/typeconform/validator/pool"
)

// Delegates resolves entity-kind references while matching. Struct nodes
// are never inlined: the ensurer of the referenced kind does its own
// matching, which is what makes cyclic entity graphs finite.
type Delegates interface {
	EnsurerFor(kind string) (*Ensurer, error)
}

// UnknownFieldError reports a caller asking for a field the entity kind
// does not declare. It is a usage error, never a validation result.
type UnknownFieldError struct {
	Kind  string
	Field string
}

func (e *UnknownFieldError) Error() string {
	return "entity kind " + e.Kind + " has no field " + e.Field
}

// UndeclaredFieldError reports a field-subset request naming a field
// outside the entity kind's declared enumeration. Raised before any
// field in the subset is validated.
type UndeclaredFieldError struct {
	Kind  string
	Field string
}

func (e *UndeclaredFieldError) Error() string {
	return "field " + e.Field + " is not declared by entity kind " + e.Kind
}

// Ensurer is the compiled validation artifact for one entity kind.
type Ensurer struct {
	kind     string
	entity   *resolve.Entity
	fields   map[string]matcher
	preconds []precond.Precondition // whole-entity, declaration order
	builder  *errbuild.Builder
}

// Kind returns the entity kind this ensurer was generated for.
func (e *Ensurer) Kind() string {
	return e.kind
}

// Fields returns the ordered field names for a category.
func (e *Ensurer) Fields(category typeconform.FieldCategory) []string {
	var src []string
	switch category {
	case typeconform.FieldsStructural:
		src = e.entity.Structural
	case typeconform.FieldsAny:
		src = e.entity.AnyTyped
	case typeconform.FieldsMetadata:
		src = e.entity.Metadata
	case typeconform.FieldsAssociated:
		src = e.entity.Associated
	default:
		return nil
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// AllFields returns the full field enumeration in declaration order.
func (e *Ensurer) AllFields() []string {
	out := make([]string, len(e.entity.All))
	copy(out, e.entity.All)
	return out
}

// HasField reports whether name is in the full field enumeration.
func (e *Ensurer) HasField(name string) bool {
	return e.entity.Declared(name)
}

// EnsureField validates a single field's value. A nil error slice means
// the value conforms. Asking for an undeclared field is a usage error.
func (e *Ensurer) EnsureField(name string, value any) ([]typeconform.Error, error) {
	m, ok := e.fields[name]
	if !ok {
		if e.entity.Declared(name) {
			// Any-typed, associated, and metadata fields are never
			// validated.
			return nil, nil
		}
		return nil, &UnknownFieldError{Kind: e.kind, Field: name}
	}

	pb := pool.AcquirePathBuilder()
	defer pb.Release()
	pb.Field(name)

	var c collector
	m(value, pb, &c)
	return e.builder.Build(name, c.fails), nil
}

// EnsureEntity validates every structurally-typed field of an instance,
// skipping Any-typed and associated fields, then runs the whole-entity
// preconditions if every field passed. Field failures are aggregated, not
// short-circuited.
func (e *Ensurer) EnsureEntity(instance map[string]any) []typeconform.Error {
	var errs []typeconform.Error

	pb := pool.AcquirePathBuilder()
	defer pb.Release()

	for _, name := range e.entity.Structural {
		pb.Reset()
		pb.Field(name)

		var c collector
		e.fields[name](instance[name], pb, &c)
		errs = append(errs, e.builder.Build(name, c.fails)...)
	}

	if len(errs) > 0 {
		return errs
	}
	return append(errs, e.ensurePreconds(instance)...)
}

// ensurePreconds runs the whole-entity preconditions against the complete
// instance. Failures are reported under the entity kind itself.
func (e *Ensurer) ensurePreconds(instance map[string]any) []typeconform.Error {
	var fails []errbuild.Failure
	for _, p := range e.preconds {
		if err := p(instance); err != nil {
			fails = append(fails, errbuild.PrecondFailure(e.kind, err.Error()))
		}
	}
	return e.builder.Build("", fails)
}

// EnsurePreconds exposes the whole-entity precondition check for callers
// that validate a field subset first and the materialized instance after.
func (e *Ensurer) EnsurePreconds(instance map[string]any) []typeconform.Error {
	return e.ensurePreconds(instance)
}

// matchInto runs the entity's structural field matchers against a nested
// value, prefixing failure paths with the current builder state. Used for
// Struct delegation.
func (e *Ensurer) matchInto(instance map[string]any, pb *pool.PathBuilder, c *collector) {
	mark := len(c.fails)
	for _, name := range e.entity.Structural {
		plen := pb.Len()
		pb.Field(name)
		e.fields[name](instance[name], pb, c)
		pb.Truncate(plen)
	}

	// The nested entity's own invariants hold only if its fields do.
	if len(c.fails) == mark {
		for _, p := range e.preconds {
			if err := p(instance); err != nil {
				c.fails = append(c.fails, errbuild.PrecondFailure(pb.String(), err.Error()))
			}
		}
	}
}
