// Package typeconform provides runtime type-conformance validation: it
// checks that concrete values match a declared structural type and reports
// precise, field-addressable errors.
//
// Declared types (primitives, literals, unions, containers, named entity
// references, "any") are resolved into a canonical type algebra, then
// compiled into per-entity "ensurers": one validation procedure per field
// plus a whole-entity precondition check. Ensurers are built once per entity
// kind and are safe for unlimited concurrent use.
//
// # Quick Start
//
//	import (
//	    tc "github.com/typeconform/validator"
//	    "github.com/typeconform/validator/engine"
//	    "github.com/typeconform/validator/pkg/expr"
//	    "github.com/typeconform/validator/pkg/precond"
//	    "github.com/typeconform/validator/pkg/schema"
//	)
//
//	snap := schema.NewSnapshot()
//	snap.AddAlias(&schema.Alias{Name: "age_range", Type: expr.Integer()})
//	snap.AddEntity(&schema.Entity{
//	    Kind: "Person",
//	    Fields: []schema.FieldDecl{
//	        {Name: "name", Type: expr.Text()},
//	        {Name: "age", Type: expr.UnionOf(expr.Ref("age_range"), expr.Lit("unknown"))},
//	    },
//	})
//
//	preconds := precond.Set{}
//	preconds.Add("age_range", precond.InRange(0, 150))
//
//	v, err := engine.New(snap, preconds)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := v.ValidateEntity("Person", map[string]any{"name": "Ada", "age": 200})
//	if result.HasErrors() {
//	    for _, e := range result.Errors {
//	        fmt.Println(e.Message)
//	    }
//	}
//	result.Release() // Return to pool for better performance
//
// # Performance Features
//
//   - Build-once ensurers: generation is memoized per entity kind with
//     build-once-publish-once semantics
//   - Worker pool: parallel batch validation of many instances
//   - sync.Pool result and path-builder reuse to reduce GC pressure
//   - Lock-free metrics
//
// # Package Layout
//
//   - pkg/expr: declared (unresolved) type expressions
//   - pkg/algebra: the resolved type algebra
//   - pkg/schema: declaration snapshots (entities, aliases)
//   - pkg/resolve: expression resolution, cycle and reference checking
//   - pkg/precond: named precondition predicates
//   - pkg/ensure: ensurer generation and execution
//   - pkg/errbuild: failure-to-message shaping and filter policies
//   - registry: process-lifetime ensurer registry
//   - engine: the caller-facing validation orchestrator
package typeconform
