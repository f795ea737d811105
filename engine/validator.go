// Package engine provides the top-level conformance validator: it ties
// the snapshot, the precondition set, the ensurer registry, and the
// error builder together behind one API.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	tc "github.com/typeconform/validator"
	"github.com/typeconform/validator/pkg/ensure"
	"github.com/typeconform/validator/pkg/errbuild"
	"github.com/typeconform/validator/pkg/logger"
	"github.com/typeconform/validator/pkg/precond"
	"github.com/typeconform/validator/pkg/schema"
	"github.com/typeconform/validator/registry"
	"github.com/typeconform/validator/worker"
)

// Validator validates entity instances against a schema snapshot.
// Ensurers are generated lazily, once per kind; every method is safe for
// concurrent use.
type Validator struct {
	snap     *schema.Snapshot
	options  *tc.Options
	registry *registry.Registry
	metrics  *tc.Metrics
}

// New creates a validator over a snapshot. The precondition set binds
// named checks to declared type names; a nil set means structural
// checking only.
func New(snap *schema.Snapshot, preconds precond.Set, opts ...tc.Option) (*Validator, error) {
	if snap == nil {
		return nil, fmt.Errorf("engine: nil snapshot")
	}

	options := tc.DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	metrics := tc.NewMetrics()
	builder := errbuild.New(options)

	return &Validator{
		snap:     snap,
		options:  options,
		registry: registry.New(snap, preconds, builder, metrics, options.AliasCacheSize),
		metrics:  metrics,
	}, nil
}

// Build generates ensurers for every kind up front, so resolution errors
// surface here instead of on first validation.
func (v *Validator) Build() error {
	start := time.Now()
	if err := v.registry.BuildAll(); err != nil {
		return err
	}
	logger.Info("Generated ensurers for %d kind(s) in %v",
		v.registry.Generated(), time.Since(start).Round(time.Microsecond))
	return nil
}

// ValidateEntity validates a full instance of kind: every structurally
// typed field is checked, Any-typed and associated fields are skipped,
// and the kind's whole-entity preconditions run only when all fields
// pass. The returned error is a usage or generation fault, never a
// conformance failure.
func (v *Validator) ValidateEntity(kind string, instance map[string]any) (*tc.Result, error) {
	e, err := v.registry.EnsurerFor(kind)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result := v.acquireResult()
	result.EntityKind = kind
	result.CheckedFields = append(result.CheckedFields, e.Fields(tc.FieldsStructural)...)

	result.AddErrors(e.EnsureEntity(instance))

	v.record(kind, time.Since(start), result)
	return result, nil
}

// ValidateField validates one field's value in isolation. Asking for a
// field the kind does not declare is a usage error; a declared field
// that carries no structural type always passes.
func (v *Validator) ValidateField(kind, field string, value any) (*tc.Result, error) {
	e, err := v.registry.EnsurerFor(kind)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	errs, err := e.EnsureField(field, value)
	if err != nil {
		return nil, err
	}

	result := v.acquireResult()
	result.EntityKind = kind
	result.CheckedFields = append(result.CheckedFields, field)
	result.AddErrors(errs)

	v.record(kind, time.Since(start), result)
	return result, nil
}

// ValidateFields validates a subset of an instance's fields. Every
// requested name must be declared by the kind: one undeclared name fails
// the call before any field is validated. When every requested field
// passes, the kind's whole-entity preconditions run against the full
// instance.
func (v *Validator) ValidateFields(kind string, instance map[string]any, fields []string) (*tc.Result, error) {
	e, err := v.registry.EnsurerFor(kind)
	if err != nil {
		return nil, err
	}

	for _, f := range fields {
		if !e.HasField(f) {
			return nil, &ensure.UndeclaredFieldError{Kind: kind, Field: f}
		}
	}

	start := time.Now()
	result := v.acquireResult()
	result.EntityKind = kind

	for _, f := range fields {
		result.CheckedFields = append(result.CheckedFields, f)
		errs, err := e.EnsureField(f, instance[f])
		if err != nil {
			result.Release()
			return nil, err
		}
		result.AddErrors(errs)
	}

	if result.Valid {
		result.AddErrors(e.EnsurePreconds(instance))
	}

	v.record(kind, time.Since(start), result)
	return result, nil
}

// FieldNames returns the kind's field names for a category, in
// declaration order.
func (v *Validator) FieldNames(kind string, category tc.FieldCategory) ([]string, error) {
	if !category.IsValid() {
		return nil, fmt.Errorf("engine: invalid field category %q", string(category))
	}
	e, err := v.registry.EnsurerFor(kind)
	if err != nil {
		return nil, err
	}
	return e.Fields(category), nil
}

// Kinds returns every entity kind in the snapshot in declaration order.
func (v *Validator) Kinds() []string {
	return v.registry.Kinds()
}

// ValidateJSON decodes a JSON object and validates it as an instance of
// kind. Malformed JSON is a conformance failure, not a usage error,
// mirroring how byte-level inputs reach validators in practice.
func (v *Validator) ValidateJSON(kind string, data []byte) (*tc.Result, error) {
	var instance map[string]any
	if err := json.Unmarshal(data, &instance); err != nil {
		result := v.acquireResult()
		result.EntityKind = kind
		result.AddError(tc.StructuralError("", "", fmt.Sprintf("invalid JSON: %v", err)))
		v.metrics.RecordValidation(0, false)
		return result, nil
	}
	return v.ValidateEntity(kind, instance)
}

// ValidateBatch validates many instances of one kind in parallel,
// preserving input order. The context cancels remaining work; already
// finished results are kept.
func (v *Validator) ValidateBatch(ctx context.Context, kind string, instances []map[string]any) *worker.BatchResult {
	bv := worker.NewBatchValidator(
		func(_ context.Context, kind string, instance map[string]any) (*tc.Result, error) {
			return v.ValidateEntity(kind, instance)
		},
		v.options.WorkerCount,
	)
	return bv.ValidateBatch(ctx, kind, instances)
}

// Metrics returns the validator's metrics sink.
func (v *Validator) Metrics() *tc.Metrics {
	return v.metrics
}

// Options returns the applied options.
func (v *Validator) Options() *tc.Options {
	return v.options
}

func (v *Validator) acquireResult() *tc.Result {
	if v.options.EnablePooling {
		return tc.AcquireResult()
	}
	return tc.NewResult()
}

func (v *Validator) record(kind string, elapsed time.Duration, result *tc.Result) {
	v.metrics.RecordValidation(elapsed, result.Valid)
	v.metrics.RecordKind(kind, elapsed, result.ErrorCount())
	for _, e := range result.Errors {
		v.metrics.RecordError(e.Kind)
	}
}
