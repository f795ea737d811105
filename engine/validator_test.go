package engine

import (
	"context"
	"errors"
	"testing"

	tc "github.com/typeconform/validator"
	"github.com/typeconform/validator/pkg/ensure"
	"github.com/typeconform/validator/pkg/expr"
	"github.com/typeconform/validator/pkg/precond"
	"github.com/typeconform/validator/pkg/resolve"
	"github.com/typeconform/validator/pkg/schema"
)

func personSchema(t *testing.T) *schema.Snapshot {
	t.Helper()
	snap := schema.NewSnapshot()
	if err := snap.AddAlias(&schema.Alias{Name: "age_range", Type: expr.Integer()}); err != nil {
		t.Fatal(err)
	}
	err := snap.AddEntity(&schema.Entity{
		Kind: "person",
		Fields: []schema.FieldDecl{
			{Name: "name", Type: expr.Text()},
			{Name: "age", Type: expr.UnionOf(expr.Ref("age_range"), expr.Lit("unknown"))},
			{Name: "attrs", Type: expr.Any()},
			{Name: "orders", Type: expr.ListOf(expr.Text())},
		},
		Associated: []string{"orders"},
		Metadata:   []string{"updated_at"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return snap
}

func personValidator(t *testing.T, opts ...tc.Option) *Validator {
	t.Helper()
	pre := precond.Set{}
	pre.Add("age_range", precond.InRange(0, 150))

	v, err := New(personSchema(t), pre, opts...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return v
}

func TestNewNilSnapshot(t *testing.T) {
	if _, err := New(nil, nil); err == nil {
		t.Error("New(nil) succeeded")
	}
}

func TestValidateEntity(t *testing.T) {
	v := personValidator(t)

	result, err := v.ValidateEntity("person", map[string]any{
		"name":   "ada",
		"age":    36,
		"attrs":  map[string]any{"whatever": true},
		"orders": "not even a list", // associated, skipped
	})
	if err != nil {
		t.Fatalf("ValidateEntity() error: %v", err)
	}
	defer result.Release()

	if !result.Valid {
		t.Errorf("Valid = false: %v", result.Errors)
	}
	if result.EntityKind != "person" {
		t.Errorf("EntityKind = %q", result.EntityKind)
	}
	if len(result.CheckedFields) != 2 {
		t.Errorf("CheckedFields = %v, want the two structural fields", result.CheckedFields)
	}
}

func TestValidateEntityInvalid(t *testing.T) {
	v := personValidator(t)

	result, err := v.ValidateEntity("person", map[string]any{
		"name": 12,
		"age":  200,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer result.Release()

	if result.Valid {
		t.Fatal("Valid = true for an invalid instance")
	}
	if len(result.ErrorsFor("name")) == 0 {
		t.Error("no errors for name")
	}
	if len(result.ErrorsFor("age")) == 0 {
		t.Error("no errors for age")
	}
	failed := result.FailedFields()
	if len(failed) != 2 {
		t.Errorf("FailedFields() = %v", failed)
	}
}

func TestValidateEntityUnknownKind(t *testing.T) {
	v := personValidator(t)

	_, err := v.ValidateEntity("ghost", map[string]any{})
	var unknown *resolve.UnknownEntityError
	if !errors.As(err, &unknown) {
		t.Fatalf("error = %v, want UnknownEntityError", err)
	}
}

func TestValidateField(t *testing.T) {
	v := personValidator(t)

	result, err := v.ValidateField("person", "age", 200)
	if err != nil {
		t.Fatal(err)
	}
	defer result.Release()

	if result.Valid {
		t.Fatal("Valid = true for out-of-range age")
	}
	// Default ordering surfaces the precondition candidate first.
	if result.Errors[0].Message != "value 200 is out of range 0..150" {
		t.Errorf("first error = %q", result.Errors[0].Message)
	}
}

func TestValidateFieldUnknown(t *testing.T) {
	v := personValidator(t)

	_, err := v.ValidateField("person", "height", 180)
	var unknown *ensure.UnknownFieldError
	if !errors.As(err, &unknown) {
		t.Fatalf("error = %v, want UnknownFieldError", err)
	}
}

func TestValidateFieldsSubset(t *testing.T) {
	v := personValidator(t)

	// Only the requested fields are validated: the bad age is ignored.
	result, err := v.ValidateFields("person", map[string]any{
		"name": "ada",
		"age":  "not an age",
	}, []string{"name"})
	if err != nil {
		t.Fatal(err)
	}
	defer result.Release()

	if !result.Valid {
		t.Errorf("Valid = false: %v", result.Errors)
	}
	if len(result.CheckedFields) != 1 || result.CheckedFields[0] != "name" {
		t.Errorf("CheckedFields = %v", result.CheckedFields)
	}
}

func TestValidateFieldsUndeclaredFailsFast(t *testing.T) {
	v := personValidator(t)

	_, err := v.ValidateFields("person", map[string]any{
		"name": "ada",
	}, []string{"name", "height"})
	var undeclared *ensure.UndeclaredFieldError
	if !errors.As(err, &undeclared) {
		t.Fatalf("error = %v, want UndeclaredFieldError", err)
	}
	if undeclared.Field != "height" {
		t.Errorf("Field = %q", undeclared.Field)
	}
}

func TestValidateFieldsRunsEntityPreconditions(t *testing.T) {
	pre := precond.Set{}
	pre.Add("age_range", precond.InRange(0, 150))
	pre.Add("person", func(v any) error {
		if v.(map[string]any)["name"] == "root" {
			return errors.New("name root is reserved")
		}
		return nil
	})
	v, err := New(personSchema(t), pre)
	if err != nil {
		t.Fatal(err)
	}

	// The subset passes, so the whole-entity check runs against the
	// full instance.
	result, err := v.ValidateFields("person", map[string]any{
		"name": "root",
		"age":  30,
	}, []string{"name"})
	if err != nil {
		t.Fatal(err)
	}
	defer result.Release()

	if result.Valid {
		t.Fatal("Valid = true, whole-entity precondition did not run")
	}
	if len(result.Errors) != 1 || result.Errors[0].Message != "name root is reserved" {
		t.Fatalf("Errors = %v", result.Errors)
	}
	if !result.Errors[0].IsPrecondition() {
		t.Errorf("Kind = %v, want precondition", result.Errors[0].Kind)
	}

	// A failing field suppresses the whole-entity check.
	result2, err := v.ValidateFields("person", map[string]any{
		"name": "root",
		"age":  "not an age",
	}, []string{"age"})
	if err != nil {
		t.Fatal(err)
	}
	defer result2.Release()

	for _, e := range result2.Errors {
		if e.Message == "name root is reserved" {
			t.Error("whole-entity precondition ran despite field failures")
		}
	}
}

func TestFieldNames(t *testing.T) {
	v := personValidator(t)

	got, err := v.FieldNames("person", tc.FieldsStructural)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "name" || got[1] != "age" {
		t.Errorf("structural fields = %v", got)
	}

	got, err = v.FieldNames("person", tc.FieldsAssociated)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "orders" {
		t.Errorf("associated fields = %v", got)
	}

	if _, err := v.FieldNames("person", tc.FieldCategory("bogus")); err == nil {
		t.Error("invalid category accepted")
	}
}

func TestValidateFilterErrors(t *testing.T) {
	v := personValidator(t, tc.WithFilterErrors(true))

	result, err := v.ValidateField("person", "age", 200)
	if err != nil {
		t.Fatal(err)
	}
	defer result.Release()

	if len(result.Errors) != 1 {
		t.Fatalf("Errors = %v, want exactly one under filtering", result.Errors)
	}
	if result.Errors[0].Message != "value 200 is out of range 0..150" {
		t.Errorf("selected = %q", result.Errors[0].Message)
	}

	// Unfiltered, the same value yields one candidate per union member.
	v2 := personValidator(t)
	result2, err := v2.ValidateField("person", "age", 200)
	if err != nil {
		t.Fatal(err)
	}
	defer result2.Release()
	if len(result2.Errors) != 2 {
		t.Errorf("unfiltered Errors = %v, want 2", result2.Errors)
	}
}

func TestValidateJSON(t *testing.T) {
	v := personValidator(t)

	result, err := v.ValidateJSON("person", []byte(`{"name":"ada","age":36}`))
	if err != nil {
		t.Fatal(err)
	}
	defer result.Release()
	if !result.Valid {
		t.Errorf("Valid = false: %v", result.Errors)
	}

	// JSON numbers decode as float64; integral ones still satisfy
	// integer types.
	result2, err := v.ValidateJSON("person", []byte(`{"name":"ada","age":36.5}`))
	if err != nil {
		t.Fatal(err)
	}
	defer result2.Release()
	if result2.Valid {
		t.Error("fractional age accepted")
	}

	bad, err := v.ValidateJSON("person", []byte(`{not json`))
	if err != nil {
		t.Fatal(err)
	}
	defer bad.Release()
	if bad.Valid {
		t.Error("malformed JSON accepted")
	}
}

func TestBuildSurfacesErrors(t *testing.T) {
	snap := schema.NewSnapshot()
	if err := snap.AddEntity(&schema.Entity{
		Kind:   "broken",
		Fields: []schema.FieldDecl{{Name: "x", Type: expr.Ref("ghost")}},
	}); err != nil {
		t.Fatal(err)
	}

	v, err := New(snap, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := v.Build(); err == nil {
		t.Error("Build() succeeded over an unresolvable snapshot")
	}
}

func TestValidateBatch(t *testing.T) {
	v := personValidator(t)

	instances := []map[string]any{
		{"name": "ada", "age": 36},
		{"name": "bob", "age": "unknown"},
		{"name": "eve", "age": 200},
		{"name": 4, "age": 4},
	}

	batch := v.ValidateBatch(context.Background(), "person", instances)
	if batch.CompletedJobs != len(instances) {
		t.Fatalf("CompletedJobs = %d, want %d", batch.CompletedJobs, len(instances))
	}

	invalid := batch.Invalid()
	if len(invalid) != 2 || invalid[0] != 2 || invalid[1] != 3 {
		t.Errorf("Invalid() = %v, want [2 3]", invalid)
	}
}

func TestMetricsRecorded(t *testing.T) {
	v := personValidator(t)

	for _, age := range []any{36, 200, "unknown"} {
		result, err := v.ValidateEntity("person", map[string]any{"name": "x", "age": age})
		if err != nil {
			t.Fatal(err)
		}
		result.Release()
	}

	m := v.Metrics()
	if m.ValidationsTotal() != 3 {
		t.Errorf("ValidationsTotal() = %d, want 3", m.ValidationsTotal())
	}
	if m.ValidationsValid() != 2 {
		t.Errorf("ValidationsValid() = %d, want 2", m.ValidationsValid())
	}
	if m.PrecondTotal() == 0 {
		t.Error("PrecondTotal() = 0, the out-of-range age failed a precondition")
	}

	stats := m.KindSnapshot()
	if len(stats) != 1 || stats[0].Kind != "person" {
		t.Errorf("KindSnapshot() = %v", stats)
	}
	if stats[0].Validations != 3 {
		t.Errorf("per-kind validations = %d, want 3", stats[0].Validations)
	}
}
