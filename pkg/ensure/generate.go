package ensure

import (
	"fmt"
	"sort"

	"github.com/typeconform/validator/pkg/algebra"
	"github.com/typeconform/validator/pkg/errbuild"
	"github.com/typeconform/validator/pkg/precond"
	"github.com/typeconform/validator/pkg/resolve"
	"github.com/typeconform/validator/pool"
)

// matcher checks one value against one type node, appending failures for
// every mismatch it can attribute.
type matcher func(v any, pb *pool.PathBuilder, c *collector)

type collector struct {
	fails []errbuild.Failure
}

func (c *collector) structural(pb *pool.PathBuilder, id errbuild.MessageID, params map[string]any) {
	c.fails = append(c.fails, errbuild.StructuralFailure(pb.String(), id, params))
}

// generator carries per-generation state: the alias boxes that tie
// container-mediated back-edges to the matcher of their defining alias.
type generator struct {
	preconds  precond.Set
	delegates Delegates
	boxes     map[string]*matcherBox
}

// matcherBox is the late-binding indirection for cyclic aliases. The box
// is registered before its alias body is compiled, so back-edges inside
// the body resolve to a box whose matcher is filled in afterwards.
type matcherBox struct {
	m matcher
}

// Generate compiles a resolved entity into its type ensurer. Generation
// is a pure function of its inputs: the same entity, preconditions, and
// delegates always produce a behaviorally identical ensurer.
func Generate(ent *resolve.Entity, preconds precond.Set, delegates Delegates, builder *errbuild.Builder) *Ensurer {
	g := &generator{
		preconds:  preconds,
		delegates: delegates,
		boxes:     make(map[string]*matcherBox),
	}

	fields := make(map[string]matcher, len(ent.Fields))
	for _, f := range ent.Fields {
		fields[f.Name] = g.compile(f.Type)
	}

	return &Ensurer{
		kind:     ent.Kind,
		entity:   ent,
		fields:   fields,
		preconds: preconds.For(ent.Kind),
		builder:  builder,
	}
}

func (g *generator) compile(t algebra.Type) matcher {
	switch n := t.(type) {
	case *algebra.Any:
		return func(any, *pool.PathBuilder, *collector) {}
	case *algebra.Primitive:
		return compilePrimitive(n)
	case *algebra.Literal:
		return compileLiteral(n)
	case *algebra.Union:
		return g.compileUnion(n)
	case *algebra.List:
		return g.compileList(n)
	case *algebra.Map:
		return g.compileMap(n)
	case *algebra.Tuple:
		return g.compileTuple(n)
	case *algebra.Record:
		return g.compileRecord(n)
	case *algebra.Struct:
		return g.compileStruct(n)
	case *algebra.Refined:
		return g.compileRefined(n)
	case *algebra.Alias:
		box, ok := g.boxes[n.Name]
		if !ok {
			// A back-edge only ever appears inside the body of its own
			// alias, where the box is already registered.
			panic(fmt.Sprintf("ensure: unregistered alias back-edge %q", n.Name))
		}
		return func(v any, pb *pool.PathBuilder, c *collector) {
			box.m(v, pb, c)
		}
	default:
		panic(fmt.Sprintf("ensure: unhandled type node %T", t))
	}
}

func compilePrimitive(n *algebra.Primitive) matcher {
	want := n.Kind
	return func(v any, pb *pool.PathBuilder, c *collector) {
		if primitiveMatches(want, v) {
			return
		}
		c.structural(pb, errbuild.MsgTypeMismatch, map[string]any{
			"expected": string(want),
			"actual":   algebra.Describe(v),
		})
	}
}

// primitiveMatches applies the conformance rules for scalar values: no
// coercion except integral floats satisfying integer.
func primitiveMatches(want algebra.Kind, v any) bool {
	switch want {
	case algebra.KindNil:
		return v == nil
	case algebra.KindBoolean:
		_, ok := v.(bool)
		return ok
	case algebra.KindText:
		_, ok := v.(string)
		return ok
	case algebra.KindInteger:
		return algebra.IsIntegral(v)
	case algebra.KindFloat:
		_, ok := algebra.NumericValue(v)
		return ok
	}
	return false
}

func compileLiteral(n *algebra.Literal) matcher {
	lit := n.Value
	want := n.String()
	return func(v any, pb *pool.PathBuilder, c *collector) {
		if algebra.EqualValues(v, lit) {
			return
		}
		c.structural(pb, errbuild.MsgTypeMismatch, map[string]any{
			"expected": want,
			"actual":   algebra.FormatValue(v),
		})
	}
}

// compileUnion tries members in declared order and succeeds on the first
// match. On total failure it yields exactly one candidate per member:
// the member's own first failure when it is deep or a precondition, and
// a union-framed mismatch when the member failed at the union value
// itself.
func (g *generator) compileUnion(n *algebra.Union) matcher {
	members := make([]matcher, len(n.Members))
	labels := make([]string, len(n.Members))
	for i, m := range n.Members {
		members[i] = g.compile(m)
		labels[i] = m.String()
	}
	union := n.String()

	return func(v any, pb *pool.PathBuilder, c *collector) {
		path := pb.String()
		candidates := make([]errbuild.Failure, 0, len(members))
		for i, m := range members {
			var sub collector
			m(v, pb, &sub)
			if len(sub.fails) == 0 {
				return
			}
			first := sub.fails[0]
			if !first.Precond && first.Path == path {
				first = errbuild.StructuralFailure(path, errbuild.MsgUnionNoMatch, map[string]any{
					"member": labels[i],
					"union":  union,
					"actual": algebra.FormatValue(v),
				})
			}
			candidates = append(candidates, first)
		}
		c.fails = append(c.fails, candidates...)
	}
}

func (g *generator) compileList(n *algebra.List) matcher {
	elem := g.compile(n.Elem)
	want := n.String()
	return func(v any, pb *pool.PathBuilder, c *collector) {
		items, ok := v.([]any)
		if !ok {
			c.structural(pb, errbuild.MsgTypeMismatch, map[string]any{
				"expected": want,
				"actual":   algebra.Describe(v),
			})
			return
		}
		for i, item := range items {
			plen := pb.Len()
			pb.Index(i)
			elem(item, pb, c)
			pb.Truncate(plen)
		}
	}
}

func (g *generator) compileMap(n *algebra.Map) matcher {
	key := g.compile(n.Key)
	val := g.compile(n.Value)
	want := n.String()
	return func(v any, pb *pool.PathBuilder, c *collector) {
		entries, ok := v.(map[string]any)
		if !ok {
			c.structural(pb, errbuild.MsgTypeMismatch, map[string]any{
				"expected": want,
				"actual":   algebra.Describe(v),
			})
			return
		}
		// Sorted keys keep failure order deterministic across runs.
		keys := make([]string, 0, len(entries))
		for k := range entries {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			plen := pb.Len()
			pb.Key(k)
			key(k, pb, c)
			val(entries[k], pb, c)
			pb.Truncate(plen)
		}
	}
}

func (g *generator) compileTuple(n *algebra.Tuple) matcher {
	elems := make([]matcher, len(n.Elems))
	for i, e := range n.Elems {
		elems[i] = g.compile(e)
	}
	want := n.String()
	return func(v any, pb *pool.PathBuilder, c *collector) {
		items, ok := v.([]any)
		if !ok {
			c.structural(pb, errbuild.MsgTypeMismatch, map[string]any{
				"expected": want,
				"actual":   algebra.Describe(v),
			})
			return
		}
		// Shape before elements: a wrong arity suppresses element checks.
		if len(items) != len(elems) {
			c.structural(pb, errbuild.MsgTupleArity, map[string]any{
				"want": len(elems),
				"got":  len(items),
			})
			return
		}
		for i, m := range elems {
			plen := pb.Len()
			pb.Index(i)
			m(items[i], pb, c)
			pb.Truncate(plen)
		}
	}
}

func (g *generator) compileRecord(n *algebra.Record) matcher {
	names := make([]string, len(n.Fields))
	vals := make([]matcher, len(n.Fields))
	declared := make(map[string]int, len(n.Fields))
	for i, f := range n.Fields {
		names[i] = f.Name
		vals[i] = g.compile(f.Type)
		declared[f.Name] = i
	}
	want := n.String()

	return func(v any, pb *pool.PathBuilder, c *collector) {
		entries, ok := v.(map[string]any)
		if !ok {
			c.structural(pb, errbuild.MsgTypeMismatch, map[string]any{
				"expected": want,
				"actual":   algebra.Describe(v),
			})
			return
		}

		shaped := true
		for _, name := range names {
			if _, present := entries[name]; !present {
				shaped = false
				c.structural(pb, errbuild.MsgRecordMissingKey, map[string]any{
					"key":      name,
					"expected": want,
				})
			}
		}
		var unknown []string
		for k := range entries {
			if _, present := declared[k]; !present {
				unknown = append(unknown, k)
			}
		}
		sort.Strings(unknown)
		for _, k := range unknown {
			shaped = false
			c.structural(pb, errbuild.MsgRecordUnknownKey, map[string]any{
				"key":      k,
				"expected": want,
			})
		}
		if !shaped {
			return
		}

		for i, name := range names {
			plen := pb.Len()
			pb.Field(name)
			vals[i](entries[name], pb, c)
			pb.Truncate(plen)
		}
	}
}

// compileStruct boxes an entity reference: matching delegates to the
// referenced kind's own ensurer, fetched from the delegates at match
// time so mutually recursive kinds generate independently.
func (g *generator) compileStruct(n *algebra.Struct) matcher {
	kind := n.Kind
	delegates := g.delegates
	return func(v any, pb *pool.PathBuilder, c *collector) {
		instance, ok := v.(map[string]any)
		if !ok {
			c.structural(pb, errbuild.MsgNotAStruct, map[string]any{
				"kind":   kind,
				"actual": algebra.Describe(v),
			})
			return
		}
		delegate, err := delegates.EnsurerFor(kind)
		if err != nil {
			// Registries build eagerly, so an unresolvable kind here is
			// a configuration fault. Surface it rather than panic.
			c.structural(pb, errbuild.MsgNotAStruct, map[string]any{
				"kind":   kind,
				"actual": err.Error(),
			})
			return
		}
		delegate.matchInto(instance, pb, c)
	}
}

// compileRefined wraps the base matcher with the named preconditions.
// The box registered under the alias name is what container-mediated
// back-edges re-enter, so the full refinement applies on every level of
// a recursive value.
func (g *generator) compileRefined(n *algebra.Refined) matcher {
	box := &matcherBox{}
	prev, shadowed := g.boxes[n.Name]
	g.boxes[n.Name] = box

	base := g.compile(n.Base)
	checks := g.preconds.For(n.Name)

	m := func(v any, pb *pool.PathBuilder, c *collector) {
		var sub collector
		base(v, pb, &sub)
		if len(sub.fails) > 0 {
			c.fails = append(c.fails, sub.fails...)
			return
		}
		for _, p := range checks {
			if err := p(v); err != nil {
				c.fails = append(c.fails, errbuild.PrecondFailure(pb.String(), err.Error()))
			}
		}
	}
	box.m = m

	if shadowed {
		g.boxes[n.Name] = prev
	} else {
		delete(g.boxes, n.Name)
	}
	return m
}
