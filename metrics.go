package typeconform

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics tracks validation performance metrics using lock-free atomic
// operations. All methods are safe for concurrent use.
type Metrics struct {
	// Validation counts
	validationsTotal atomic.Uint64
	validationsValid atomic.Uint64

	// Ensurer generation counts
	generationsTotal  atomic.Uint64
	generationsFailed atomic.Uint64

	// Timing (stored as nanoseconds)
	validationTimeTotal atomic.Uint64
	validationTimeMin   atomic.Uint64
	validationTimeMax   atomic.Uint64

	// Registry cache metrics
	ensurerHits   atomic.Uint64
	ensurerMisses atomic.Uint64

	// Error counts by kind
	structuralTotal atomic.Uint64
	precondTotal    atomic.Uint64

	// Per-entity-kind validation counts
	perKind sync.Map // map[string]*kindMetrics
}

// kindMetrics tracks metrics for a single entity kind.
type kindMetrics struct {
	validations atomic.Uint64
	totalTime   atomic.Uint64 // nanoseconds
	errorsFound atomic.Uint64
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	m := &Metrics{}
	// Initialize min to max uint64 so first value becomes the minimum
	m.validationTimeMin.Store(^uint64(0))
	return m
}

// --- Recording Methods ---

// RecordValidation records a completed validation.
func (m *Metrics) RecordValidation(duration time.Duration, valid bool) {
	m.validationsTotal.Add(1)
	if valid {
		m.validationsValid.Add(1)
	}

	ns := uint64(duration.Nanoseconds()) //nolint:gosec // Safe: nanoseconds are always positive for valid durations
	m.validationTimeTotal.Add(ns)

	// Update min (CAS loop)
	for {
		old := m.validationTimeMin.Load()
		if ns >= old {
			break
		}
		if m.validationTimeMin.CompareAndSwap(old, ns) {
			break
		}
	}

	// Update max (CAS loop)
	for {
		old := m.validationTimeMax.Load()
		if ns <= old {
			break
		}
		if m.validationTimeMax.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordGeneration records an ensurer generation attempt.
func (m *Metrics) RecordGeneration(ok bool) {
	m.generationsTotal.Add(1)
	if !ok {
		m.generationsFailed.Add(1)
	}
}

// RecordEnsurerHit records a registry cache hit.
func (m *Metrics) RecordEnsurerHit() {
	m.ensurerHits.Add(1)
}

// RecordEnsurerMiss records a registry cache miss.
func (m *Metrics) RecordEnsurerMiss() {
	m.ensurerMisses.Add(1)
}

// RecordError records a validation error by kind.
func (m *Metrics) RecordError(kind ErrorKind) {
	switch kind {
	case KindStructural:
		m.structuralTotal.Add(1)
	case KindPrecondition:
		m.precondTotal.Add(1)
	}
}

// RecordKind records per-entity-kind metrics for a validation.
func (m *Metrics) RecordKind(kind string, duration time.Duration, errorsFound int) {
	km := m.getOrCreateKindMetrics(kind)
	km.validations.Add(1)
	km.totalTime.Add(uint64(duration.Nanoseconds())) //nolint:gosec // Safe: nanoseconds are always positive
	km.errorsFound.Add(uint64(errorsFound))          //nolint:gosec // Safe: errorsFound is a small positive integer
}

func (m *Metrics) getOrCreateKindMetrics(kind string) *kindMetrics {
	if v, ok := m.perKind.Load(kind); ok {
		return v.(*kindMetrics)
	}
	km := &kindMetrics{}
	actual, _ := m.perKind.LoadOrStore(kind, km)
	return actual.(*kindMetrics)
}

// --- Query Methods ---

// ValidationsTotal returns the total number of validations performed.
func (m *Metrics) ValidationsTotal() uint64 {
	return m.validationsTotal.Load()
}

// ValidationsValid returns the number of valid validations.
func (m *Metrics) ValidationsValid() uint64 {
	return m.validationsValid.Load()
}

// ValidationRate returns the percentage of valid validations (0.0 to 1.0).
func (m *Metrics) ValidationRate() float64 {
	total := m.validationsTotal.Load()
	if total == 0 {
		return 0
	}
	return float64(m.validationsValid.Load()) / float64(total)
}

// GenerationsTotal returns the total number of ensurer generations.
func (m *Metrics) GenerationsTotal() uint64 {
	return m.generationsTotal.Load()
}

// GenerationsFailed returns the number of failed ensurer generations.
func (m *Metrics) GenerationsFailed() uint64 {
	return m.generationsFailed.Load()
}

// AverageValidationTime returns the average validation duration.
func (m *Metrics) AverageValidationTime() time.Duration {
	total := m.validationsTotal.Load()
	if total == 0 {
		return 0
	}
	avgNs := m.validationTimeTotal.Load() / total
	return time.Duration(avgNs) //nolint:gosec // Safe: avgNs represents nanoseconds within int64 range
}

// MinValidationTime returns the minimum validation duration.
func (m *Metrics) MinValidationTime() time.Duration {
	minVal := m.validationTimeMin.Load()
	if minVal == ^uint64(0) {
		return 0
	}
	return time.Duration(minVal) //nolint:gosec // Safe: minVal represents nanoseconds within int64 range
}

// MaxValidationTime returns the maximum validation duration.
func (m *Metrics) MaxValidationTime() time.Duration {
	return time.Duration(m.validationTimeMax.Load()) //nolint:gosec // Safe: nanoseconds within int64 range
}

// EnsurerHits returns the total registry cache hits.
func (m *Metrics) EnsurerHits() uint64 {
	return m.ensurerHits.Load()
}

// EnsurerMisses returns the total registry cache misses.
func (m *Metrics) EnsurerMisses() uint64 {
	return m.ensurerMisses.Load()
}

// EnsurerHitRate returns the registry cache hit rate (0.0 to 1.0).
func (m *Metrics) EnsurerHitRate() float64 {
	hits := m.ensurerHits.Load()
	misses := m.ensurerMisses.Load()
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// StructuralTotal returns the total number of structural errors recorded.
func (m *Metrics) StructuralTotal() uint64 {
	return m.structuralTotal.Load()
}

// PrecondTotal returns the total number of precondition errors recorded.
func (m *Metrics) PrecondTotal() uint64 {
	return m.precondTotal.Load()
}

// KindStats holds aggregated metrics for one entity kind.
type KindStats struct {
	Kind        string
	Validations uint64
	TotalTime   time.Duration
	ErrorsFound uint64
}

// KindSnapshot returns per-entity-kind metrics.
func (m *Metrics) KindSnapshot() []KindStats {
	var stats []KindStats
	m.perKind.Range(func(key, value any) bool {
		km := value.(*kindMetrics)
		stats = append(stats, KindStats{
			Kind:        key.(string),
			Validations: km.validations.Load(),
			TotalTime:   time.Duration(km.totalTime.Load()), //nolint:gosec // Safe: nanoseconds within int64 range
			ErrorsFound: km.errorsFound.Load(),
		})
		return true
	})
	return stats
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.validationsTotal.Store(0)
	m.validationsValid.Store(0)
	m.generationsTotal.Store(0)
	m.generationsFailed.Store(0)
	m.validationTimeTotal.Store(0)
	m.validationTimeMin.Store(^uint64(0))
	m.validationTimeMax.Store(0)
	m.ensurerHits.Store(0)
	m.ensurerMisses.Store(0)
	m.structuralTotal.Store(0)
	m.precondTotal.Store(0)
	m.perKind.Range(func(key, _ any) bool {
		m.perKind.Delete(key)
		return true
	})
}
