// Package resolve expands declared type expressions into the resolved
// type algebra. Entity references stay boxed by kind; alias expansions are
// inlined unless they cycle through a container, in which case the back
// edge becomes a boxed alias reference.
package resolve

import (
	"fmt"

	"github.com/typeconform/validator/cache"
	"github.com/typeconform/validator/pkg/algebra"
	"github.com/typeconform/validator/pkg/expr"
	"github.com/typeconform/validator/pkg/schema"
)

// Resolver turns type expressions into algebra nodes against a snapshot.
// Safe for concurrent use; redundant concurrent alias resolutions converge
// to identical nodes.
type Resolver struct {
	snap    *schema.Snapshot
	aliases *cache.Cache[string, algebra.Type]
}

// New creates a Resolver over a declaration snapshot.
func New(snap *schema.Snapshot, aliasCacheSize int) *Resolver {
	return &Resolver{
		snap:    snap,
		aliases: cache.New[string, algebra.Type](aliasCacheSize),
	}
}

// resolution tracks alias expansion state during one Resolve call.
type resolution struct {
	// expanding marks aliases open anywhere up the recursion, across
	// containers. A reference to an open alias becomes a boxed back edge.
	expanding map[string]bool

	// chain is the alias path through non-boxing edges only (unions,
	// direct references). It resets when descending into a container;
	// revisiting a name on it is an unproductive cycle.
	chain []string
}

func (res *resolution) onChain(name string) bool {
	for _, n := range res.chain {
		if n == name {
			return true
		}
	}
	return false
}

// Resolve expands a declared type expression into its algebra form.
func (r *Resolver) Resolve(e expr.Expr) (algebra.Type, error) {
	return r.resolve(e, &resolution{expanding: make(map[string]bool)})
}

func (r *Resolver) resolve(e expr.Expr, res *resolution) (algebra.Type, error) {
	switch x := e.(type) {
	case *expr.Primitive:
		return &algebra.Primitive{Kind: x.Kind}, nil

	case *expr.Literal:
		return &algebra.Literal{Value: x.Value}, nil

	case *expr.AnyType:
		return &algebra.Any{}, nil

	case *expr.Union:
		// Union members are non-boxing: the unproductive-cycle chain
		// passes through them unchanged.
		members := make([]algebra.Type, 0, len(x.Members))
		for _, m := range x.Members {
			t, err := r.resolve(m, res)
			if err != nil {
				return nil, err
			}
			if !containsType(members, t) {
				members = append(members, t)
			}
		}
		if len(members) == 1 {
			return members[0], nil
		}
		return &algebra.Union{Members: members}, nil

	case *expr.List:
		elem, err := r.resolve(x.Elem, boxed(res))
		if err != nil {
			return nil, err
		}
		return &algebra.List{Elem: elem}, nil

	case *expr.Map:
		key, err := r.resolve(x.Key, boxed(res))
		if err != nil {
			return nil, err
		}
		value, err := r.resolve(x.Value, boxed(res))
		if err != nil {
			return nil, err
		}
		return &algebra.Map{Key: key, Value: value}, nil

	case *expr.Tuple:
		elems := make([]algebra.Type, len(x.Elems))
		for i, el := range x.Elems {
			t, err := r.resolve(el, boxed(res))
			if err != nil {
				return nil, err
			}
			elems[i] = t
		}
		return &algebra.Tuple{Elems: elems}, nil

	case *expr.Record:
		fields := make([]algebra.Field, len(x.Fields))
		for i, f := range x.Fields {
			t, err := r.resolve(f.Type, boxed(res))
			if err != nil {
				return nil, err
			}
			fields[i] = algebra.Field{Name: f.Name, Type: t}
		}
		return &algebra.Record{Fields: fields}, nil

	case *expr.NamedRef:
		return r.resolveRef(x.Name, res)

	default:
		return nil, fmt.Errorf("resolve: unhandled expression %T", e)
	}
}

// boxed returns the resolution state for descending into a container:
// the expansion set carries over, the unproductive chain resets.
func boxed(res *resolution) *resolution {
	return &resolution{expanding: res.expanding}
}

func (r *Resolver) resolveRef(name string, res *resolution) (algebra.Type, error) {
	if r.snap.HasKind(name) {
		// Entity kinds are always boxed; matching delegates to the
		// referenced kind's own ensurer.
		return &algebra.Struct{Kind: name}, nil
	}

	alias, ok := r.snap.Alias(name)
	if !ok {
		return nil, &UnknownEntityError{Name: name}
	}

	if res.onChain(name) {
		return nil, &CyclicTypeError{Chain: append(append([]string{}, res.chain...), name)}
	}

	if res.expanding[name] {
		// Cycle through a container: box the back edge instead of
		// inlining forever.
		return &algebra.Alias{Name: name}, nil
	}

	if cached, ok := r.aliases.Get(name); ok {
		return cached, nil
	}

	// A tree resolved while other aliases are open may carry back edges
	// bound by an enclosing expansion, not by this node. Only trees
	// resolved from a closed state are self-contained and cacheable.
	cacheable := len(res.expanding) == 0

	res.expanding[name] = true
	base, err := r.resolve(alias.Type, &resolution{
		expanding: res.expanding,
		chain:     append(append([]string{}, res.chain...), name),
	})
	delete(res.expanding, name)
	if err != nil {
		return nil, err
	}

	t := &algebra.Refined{Name: name, Base: base}
	if cacheable {
		// Redundant concurrent resolutions produce identical nodes, so a
		// last-write-wins Set is enough here.
		r.aliases.Set(name, t)
	}
	return t, nil
}

func containsType(members []algebra.Type, t algebra.Type) bool {
	for _, m := range members {
		if m.Equal(t) {
			return true
		}
	}
	return false
}
