package typeconform

import "runtime"

// Selector reduces multiple candidate errors for one field to a single
// most-relevant one. It is only called with a non-empty slice.
type Selector func(candidates []Error) Error

// FirstError is the default Selector: it picks the first candidate.
func FirstError(candidates []Error) Error {
	return candidates[0]
}

// Option configures the Validator.
type Option func(*Options)

// Options holds all configuration for the Validator.
type Options struct {
	// Error shaping
	FilterErrors    bool     // reduce candidates to one message per field
	Selector        Selector // candidate selection, defaults to FirstError
	StructuralFirst bool     // order structural candidates before precondition ones

	// Performance
	WorkerCount   int
	EnablePooling bool

	// Cache sizes
	AliasCacheSize int
}

// DefaultOptions returns the default configuration.
func DefaultOptions() *Options {
	return &Options{
		// All candidate messages preserved by default; callers surfacing a
		// single user-facing message per field opt in via WithFilterErrors.
		FilterErrors: false,
		Selector:     FirstError,

		// Precondition candidates come first: when a union member passes
		// structurally but fails its precondition, that reason is the most
		// specific message available.
		StructuralFirst: false,

		WorkerCount:   runtime.NumCPU(),
		EnablePooling: true,

		AliasCacheSize: 256,
	}
}

// --- Error shaping options ---

// WithFilterErrors enables reducing each field's candidate errors to one.
func WithFilterErrors(enable bool) Option {
	return func(o *Options) {
		o.FilterErrors = enable
	}
}

// WithSelector sets the candidate selection function used when filtering.
func WithSelector(s Selector) Option {
	return func(o *Options) {
		if s != nil {
			o.Selector = s
		}
	}
}

// WithStructuralFirst orders structural candidates before precondition
// candidates. By default precondition candidates come first.
func WithStructuralFirst(enable bool) Option {
	return func(o *Options) {
		o.StructuralFirst = enable
	}
}

// --- Performance options ---

// WithWorkerCount sets the number of workers for batch validation.
// Defaults to runtime.NumCPU().
func WithWorkerCount(count int) Option {
	return func(o *Options) {
		if count > 0 {
			o.WorkerCount = count
		}
	}
}

// WithPooling enables or disables object pooling.
// Pooling reduces GC pressure but requires calling Release() on results.
func WithPooling(enable bool) Option {
	return func(o *Options) {
		o.EnablePooling = enable
	}
}

// --- Cache options ---

// WithAliasCacheSize sets the resolved-alias cache size.
func WithAliasCacheSize(size int) Option {
	return func(o *Options) {
		if size > 0 {
			o.AliasCacheSize = size
		}
	}
}

// --- Presets ---

// CompactOptions returns options for surfacing one message per field,
// the way a form-facing caller would.
func CompactOptions() []Option {
	return []Option{
		WithFilterErrors(true),
	}
}

// DiagnosticOptions returns options for exhaustive error reporting:
// every candidate message is preserved.
func DiagnosticOptions() []Option {
	return []Option{
		WithFilterErrors(false),
		WithPooling(false),
	}
}
