// Package errbuild shapes raw validation failures into field-addressable
// errors and applies the error-selection policy.
package errbuild

import (
	typeconform "github.com/typeconform/validator"
)

// Failure is a raw validation failure produced by a compiled matcher,
// before message construction.
type Failure struct {
	// Path points into the value from the field root.
	Path string

	// ID selects the message template for structural failures.
	ID MessageID

	// Params fill the template's placeholders.
	Params map[string]any

	// Precond marks a precondition failure; Reason is the predicate's
	// own text and is surfaced verbatim.
	Precond bool
	Reason  string
}

// StructuralFailure builds a raw structural failure.
func StructuralFailure(path string, id MessageID, params map[string]any) Failure {
	return Failure{Path: path, ID: id, Params: params}
}

// PrecondFailure builds a raw precondition failure.
func PrecondFailure(path, reason string) Failure {
	return Failure{Path: path, Precond: true, Reason: reason}
}

// Builder converts raw failures for one field into Errors, ordering the
// candidates and optionally filtering them to one.
type Builder struct {
	filter          bool
	selector        typeconform.Selector
	structuralFirst bool
}

// New creates a Builder from validator options.
func New(opts *typeconform.Options) *Builder {
	selector := opts.Selector
	if selector == nil {
		selector = typeconform.FirstError
	}
	return &Builder{
		filter:          opts.FilterErrors,
		selector:        selector,
		structuralFirst: opts.StructuralFirst,
	}
}

// NewUnfiltered creates a Builder that preserves every candidate.
func NewUnfiltered() *Builder {
	return &Builder{selector: typeconform.FirstError}
}

// Build converts one field's raw failures into ordered candidate errors,
// reduced to a single error when filtering is enabled.
func (b *Builder) Build(field string, fails []Failure) []typeconform.Error {
	if len(fails) == 0 {
		return nil
	}

	candidates := make([]typeconform.Error, 0, len(fails))
	// Stable partition: one kind's candidates precede the other's,
	// declaration order preserved within each kind.
	for pass := 0; pass < 2; pass++ {
		wantPrecond := pass == 0
		if b.structuralFirst {
			wantPrecond = pass == 1
		}
		for _, f := range fails {
			if f.Precond == wantPrecond {
				candidates = append(candidates, b.buildOne(field, f))
			}
		}
	}

	if b.filter && len(candidates) > 1 {
		return []typeconform.Error{b.selector(candidates)}
	}
	return candidates
}

func (b *Builder) buildOne(field string, f Failure) typeconform.Error {
	if f.Precond {
		return typeconform.PrecondError(field, f.Path, f.Reason)
	}
	return typeconform.StructuralError(field, f.Path, Format(f.ID, f.Params))
}
