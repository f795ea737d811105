package typeconform

import (
	"sync"
)

// Result contains the outcome of validating an entity or a set of fields.
// Use Release() to return it to the pool when done for better performance.
type Result struct {
	// Valid is true if no errors were found
	Valid bool `json:"valid"`

	// Errors contains all validation failures found
	Errors []Error `json:"errors,omitempty"`

	// EntityKind is the entity kind that was validated
	EntityKind string `json:"entityKind,omitempty"`

	// CheckedFields are the fields that were actually validated
	CheckedFields []string `json:"checkedFields,omitempty"`

	// mu protects concurrent access to Errors
	mu sync.Mutex
}

// resultPool holds reusable Result instances.
var resultPool = sync.Pool{
	New: func() any {
		return &Result{
			Errors: make([]Error, 0, 8),
		}
	},
}

// AcquireResult gets a Result from the pool.
// The result starts as valid with no errors.
func AcquireResult() *Result {
	r := resultPool.Get().(*Result)
	r.Reset()
	return r
}

// Release returns the Result to the pool.
// After calling Release, the Result should not be used.
func (r *Result) Release() {
	if r == nil {
		return
	}
	// Don't return results with oversized error slices
	if cap(r.Errors) <= 1024 {
		resultPool.Put(r)
	}
}

// Reset clears the result for reuse.
func (r *Result) Reset() {
	r.Valid = true
	r.Errors = r.Errors[:0]
	r.EntityKind = ""
	r.CheckedFields = r.CheckedFields[:0]
}

// AddError adds a validation error to the result.
// This method is thread-safe.
func (r *Result) AddError(err Error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Errors = append(r.Errors, err)
	r.Valid = false
}

// AddErrors adds multiple errors to the result.
// This method is thread-safe.
func (r *Result) AddErrors(errs []Error) {
	if len(errs) == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.Errors = append(r.Errors, errs...)
	r.Valid = false
}

// HasErrors returns true if any error was recorded.
func (r *Result) HasErrors() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Errors) > 0
}

// ErrorCount returns the number of recorded errors.
func (r *Result) ErrorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Errors)
}

// ErrorsFor returns the errors recorded for a single field.
func (r *Result) ErrorsFor(field string) []Error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Error
	for _, e := range r.Errors {
		if e.Field == field {
			out = append(out, e)
		}
	}
	return out
}

// FailedFields returns the distinct fields with at least one error,
// in first-occurrence order.
func (r *Result) FailedFields() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool, len(r.Errors))
	var fields []string
	for _, e := range r.Errors {
		if !seen[e.Field] {
			seen[e.Field] = true
			fields = append(fields, e.Field)
		}
	}
	return fields
}

// Structural returns all structural errors.
func (r *Result) Structural() []Error {
	return r.filter(KindStructural)
}

// Preconditions returns all precondition errors.
func (r *Result) Preconditions() []Error {
	return r.filter(KindPrecondition)
}

func (r *Result) filter(kind ErrorKind) []Error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Error
	for _, e := range r.Errors {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Merge combines another result into this one.
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}

	other.mu.Lock()
	errs := make([]Error, len(other.Errors))
	copy(errs, other.Errors)
	other.mu.Unlock()

	r.AddErrors(errs)
}

// Clone creates a copy of the result (not pooled).
func (r *Result) Clone() *Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := &Result{
		Valid:         r.Valid,
		Errors:        make([]Error, len(r.Errors)),
		EntityKind:    r.EntityKind,
		CheckedFields: make([]string, len(r.CheckedFields)),
	}
	copy(clone.Errors, r.Errors)
	copy(clone.CheckedFields, r.CheckedFields)
	return clone
}

// NewResult creates a new (non-pooled) result.
// Prefer AcquireResult() for better performance.
func NewResult() *Result {
	return &Result{
		Valid:  true,
		Errors: make([]Error, 0, 4),
	}
}
