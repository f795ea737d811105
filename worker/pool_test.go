package worker

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	typeconform "github.com/typeconform/validator"
)

// stubValidator accepts instances whose "ok" field is true.
type stubValidator struct {
	calls atomic.Int64
}

func (s *stubValidator) ValidateEntity(kind string, instance map[string]any) (*typeconform.Result, error) {
	s.calls.Add(1)
	if kind == "" {
		return nil, errors.New("no kind")
	}
	result := typeconform.NewResult()
	result.EntityKind = kind
	if ok, _ := instance["ok"].(bool); !ok {
		result.AddError(typeconform.StructuralError("ok", "ok", "expected true"))
	}
	return result, nil
}

func TestPoolProcessesAllJobs(t *testing.T) {
	v := &stubValidator{}
	p := NewPool(v, 4)

	const jobs = 20
	for i := 0; i < jobs; i++ {
		ok := p.Submit(Job{
			ID:       strconv.Itoa(i),
			Kind:     "person",
			Instance: map[string]any{"ok": i%2 == 0},
		})
		if !ok {
			t.Fatalf("Submit(%d) rejected", i)
		}
	}

	batch := p.CloseAndWait()
	if batch.CompletedJobs != jobs {
		t.Errorf("CompletedJobs = %d, want %d", batch.CompletedJobs, jobs)
	}
	if got := v.calls.Load(); got != jobs {
		t.Errorf("validator ran %d times, want %d", got, jobs)
	}
	if !batch.HasErrors() {
		t.Error("HasErrors() = false, odd-indexed instances failed")
	}
	if batch.ErrorCount() != jobs/2 {
		t.Errorf("ErrorCount() = %d, want %d", batch.ErrorCount(), jobs/2)
	}
}

func TestPoolSubmitNeverBlocksOnResults(t *testing.T) {
	// A producer may queue far more jobs than the pool has workers or
	// queue slots before collecting anything; finished results buffer
	// internally instead of stalling Submit.
	v := &stubValidator{}
	p := NewPool(v, 2)

	const jobs = 100
	for i := 0; i < jobs; i++ {
		if !p.Submit(Job{ID: strconv.Itoa(i), Kind: "person", Instance: map[string]any{"ok": true}}) {
			t.Fatalf("Submit(%d) rejected", i)
		}
	}

	batch := p.CloseAndWait()
	if len(batch.Results) != jobs || batch.CompletedJobs != jobs {
		t.Errorf("Results = %d, CompletedJobs = %d, want %d", len(batch.Results), batch.CompletedJobs, jobs)
	}
}

func TestPoolCollect(t *testing.T) {
	p := NewPool(&stubValidator{}, 2)

	for i := 0; i < 5; i++ {
		p.Submit(Job{ID: strconv.Itoa(i), Kind: "person", Instance: map[string]any{"ok": true}})
	}
	deadline := time.Now().Add(5 * time.Second)
	for p.Stats().JobsCompleted < 5 {
		if time.Now().After(deadline) {
			t.Fatalf("jobs did not finish: %+v", p.Stats())
		}
		time.Sleep(time.Millisecond)
	}

	mid := p.Collect()
	if len(mid) != 5 {
		t.Fatalf("Collect() = %d results, want 5", len(mid))
	}

	for i := 5; i < 10; i++ {
		p.Submit(Job{ID: strconv.Itoa(i), Kind: "person", Instance: map[string]any{"ok": true}})
	}
	batch := p.CloseAndWait()

	// Results taken mid-stream do not reappear in the final batch.
	if len(batch.Results) != 5 {
		t.Errorf("Results = %d, want 5", len(batch.Results))
	}
	if batch.TotalJobs != 10 || batch.CompletedJobs != 10 {
		t.Errorf("batch = %+v", batch)
	}
}

func TestPoolSubmitAfterClose(t *testing.T) {
	p := NewPool(&stubValidator{}, 2)
	p.Close()

	if p.Submit(Job{ID: "late", Kind: "person"}) {
		t.Error("Submit accepted after Close")
	}
	if p.SubmitAsync(Job{ID: "late", Kind: "person"}) {
		t.Error("SubmitAsync accepted after Close")
	}
}

func TestPoolJobError(t *testing.T) {
	p := NewPool(&stubValidator{}, 1)
	p.Submit(Job{ID: "bad"}) // empty kind errors

	batch := p.CloseAndWait()
	if batch.FailedJobs != 1 {
		t.Errorf("FailedJobs = %d, want 1", batch.FailedJobs)
	}
	if len(batch.Results) != 1 || batch.Results[0].Error == nil {
		t.Errorf("Results = %v, want one errored result", batch.Results)
	}
}

func TestPoolNoValidator(t *testing.T) {
	p := NewPool(nil, 1)
	p.Submit(Job{ID: "x", Kind: "person"})

	batch := p.CloseAndWait()
	if len(batch.Results) != 1 || !errors.Is(batch.Results[0].Error, ErrNoValidator) {
		t.Errorf("Results = %v, want ErrNoValidator", batch.Results)
	}
}

func TestPoolStats(t *testing.T) {
	p := NewPool(&stubValidator{}, 3)
	for i := 0; i < 5; i++ {
		p.Submit(Job{ID: strconv.Itoa(i), Kind: "person", Instance: map[string]any{"ok": true}})
	}
	batch := p.CloseAndWait()
	if batch.TotalJobs != 5 {
		t.Errorf("TotalJobs = %d, want 5", batch.TotalJobs)
	}

	stats := p.Stats()
	if stats.Workers != 3 {
		t.Errorf("Workers = %d, want 3", stats.Workers)
	}
	if stats.JobsSubmitted != 5 || stats.JobsCompleted != 5 {
		t.Errorf("Stats = %+v", stats)
	}
}

func TestBatchValidatorOrder(t *testing.T) {
	validate := func(_ context.Context, kind string, instance map[string]any) (*typeconform.Result, error) {
		result := typeconform.NewResult()
		result.EntityKind = kind
		if ok, _ := instance["ok"].(bool); !ok {
			result.AddError(typeconform.StructuralError("ok", "ok", "expected true"))
		}
		return result, nil
	}
	bv := NewBatchValidator(validate, 4)

	instances := make([]map[string]any, 10)
	for i := range instances {
		instances[i] = map[string]any{"ok": i != 7}
	}

	batch := bv.ValidateBatch(context.Background(), "person", instances)
	if batch.TotalJobs != 10 || batch.CompletedJobs != 10 {
		t.Fatalf("batch = %+v", batch)
	}
	for i, r := range batch.Results {
		if r == nil {
			t.Fatalf("Results[%d] missing", i)
		}
		if r.ID != strconv.Itoa(i) {
			t.Errorf("Results[%d].ID = %q, input order not preserved", i, r.ID)
		}
	}

	invalid := batch.Invalid()
	if len(invalid) != 1 || invalid[0] != 7 {
		t.Errorf("Invalid() = %v, want [7]", invalid)
	}
}

func TestBatchValidatorSmallBatchSequential(t *testing.T) {
	var calls atomic.Int64
	validate := func(context.Context, string, map[string]any) (*typeconform.Result, error) {
		calls.Add(1)
		return typeconform.NewResult(), nil
	}
	bv := NewBatchValidator(validate, 8)

	batch := bv.ValidateBatch(context.Background(), "person", []map[string]any{{}, {}})
	if batch.CompletedJobs != 2 || calls.Load() != 2 {
		t.Errorf("batch = %+v, calls = %d", batch, calls.Load())
	}
}

func TestBatchValidatorEmpty(t *testing.T) {
	bv := NewBatchValidator(func(context.Context, string, map[string]any) (*typeconform.Result, error) {
		t.Error("validator ran for an empty batch")
		return nil, nil
	}, 2)

	batch := bv.ValidateBatch(context.Background(), "person", nil)
	if batch.TotalJobs != 0 || len(batch.Results) != 0 {
		t.Errorf("batch = %+v", batch)
	}
}

func TestBatchValidatorCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	validate := func(context.Context, string, map[string]any) (*typeconform.Result, error) {
		return typeconform.NewResult(), nil
	}
	bv := NewBatchValidator(validate, 2)

	batch := bv.ValidateBatch(ctx, "person", []map[string]any{{}, {}})
	// A cancelled context stops the sequential path before its first job.
	if batch.CompletedJobs != 0 {
		t.Errorf("CompletedJobs = %d, want 0", batch.CompletedJobs)
	}
}
