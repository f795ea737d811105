package typeconform

import "testing"

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()

	if o.FilterErrors {
		t.Error("FilterErrors defaults to true, want false")
	}
	if o.StructuralFirst {
		t.Error("StructuralFirst defaults to true, want precondition-first")
	}
	if o.Selector == nil {
		t.Error("Selector is nil")
	}
	if o.WorkerCount <= 0 {
		t.Errorf("WorkerCount = %d", o.WorkerCount)
	}
	if !o.EnablePooling {
		t.Error("EnablePooling defaults to false")
	}
	if o.AliasCacheSize != 256 {
		t.Errorf("AliasCacheSize = %d", o.AliasCacheSize)
	}
}

func TestOptionSetters(t *testing.T) {
	o := DefaultOptions()

	for _, opt := range []Option{
		WithFilterErrors(true),
		WithStructuralFirst(true),
		WithWorkerCount(3),
		WithPooling(false),
		WithAliasCacheSize(64),
	} {
		opt(o)
	}

	if !o.FilterErrors || !o.StructuralFirst || o.WorkerCount != 3 || o.EnablePooling || o.AliasCacheSize != 64 {
		t.Errorf("options not applied: %+v", o)
	}
}

func TestOptionGuards(t *testing.T) {
	o := DefaultOptions()
	workers := o.WorkerCount

	WithWorkerCount(0)(o)
	if o.WorkerCount != workers {
		t.Error("WithWorkerCount(0) overrode the default")
	}
	WithAliasCacheSize(-1)(o)
	if o.AliasCacheSize != 256 {
		t.Error("WithAliasCacheSize(-1) overrode the default")
	}
	WithSelector(nil)(o)
	if o.Selector == nil {
		t.Error("WithSelector(nil) cleared the selector")
	}
}

func TestFirstError(t *testing.T) {
	candidates := []Error{
		PrecondError("a", "a", "first"),
		StructuralError("a", "a", "second"),
	}
	if got := FirstError(candidates); got.Message != "first" {
		t.Errorf("FirstError() = %v", got)
	}
}

func TestPresets(t *testing.T) {
	o := DefaultOptions()
	for _, opt := range CompactOptions() {
		opt(o)
	}
	if !o.FilterErrors {
		t.Error("CompactOptions did not enable filtering")
	}

	o = DefaultOptions()
	for _, opt := range DiagnosticOptions() {
		opt(o)
	}
	if o.FilterErrors || o.EnablePooling {
		t.Errorf("DiagnosticOptions = %+v", o)
	}
}
