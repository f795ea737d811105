// Package registry memoizes generated type ensurers per entity kind.
// Generation runs at most once per kind, concurrent requests for the
// same kind coalesce, and the stored ensurer is shared by every caller.
package registry

import (
	"sync"

	"golang.org/x/sync/singleflight"

	typeconform "github.com/typeconform/validator"
	"github.com/typeconform/validator/pkg/ensure"
	"github.com/typeconform/validator/pkg/errbuild"
	"github.com/typeconform/validator/pkg/logger"
	"github.com/typeconform/validator/pkg/precond"
	"github.com/typeconform/validator/pkg/resolve"
	"github.com/typeconform/validator/pkg/schema"
)

// Registry generates and caches one ensurer per entity kind. It is the
// delegate set for boxed entity references, so mutually recursive kinds
// each generate exactly once and late-bind through it.
type Registry struct {
	snap     *schema.Snapshot
	resolver *resolve.Resolver
	preconds precond.Set
	builder  *errbuild.Builder
	metrics  *typeconform.Metrics

	mu       sync.RWMutex
	ensurers map[string]*ensure.Ensurer
	group    singleflight.Group
}

// New creates a registry over a loaded snapshot. The metrics sink may be
// nil when the caller does not collect any.
func New(snap *schema.Snapshot, preconds precond.Set, builder *errbuild.Builder, metrics *typeconform.Metrics, aliasCacheSize int) *Registry {
	if preconds == nil {
		preconds = precond.Set{}
	}
	if builder == nil {
		builder = errbuild.NewUnfiltered()
	}
	return &Registry{
		snap:     snap,
		resolver: resolve.New(snap, aliasCacheSize),
		preconds: preconds,
		builder:  builder,
		metrics:  metrics,
		ensurers: make(map[string]*ensure.Ensurer, snap.Len()),
	}
}

// EnsurerFor returns the ensurer for kind, generating it on first use.
// Concurrent callers for the same kind share one generation; failed
// generations are not cached, so a later call retries.
func (r *Registry) EnsurerFor(kind string) (*ensure.Ensurer, error) {
	r.mu.RLock()
	e, ok := r.ensurers[kind]
	r.mu.RUnlock()
	if ok {
		if r.metrics != nil {
			r.metrics.RecordEnsurerHit()
		}
		return e, nil
	}
	if r.metrics != nil {
		r.metrics.RecordEnsurerMiss()
	}

	v, err, _ := r.group.Do(kind, func() (any, error) {
		return r.generate(kind)
	})
	if err != nil {
		return nil, err
	}
	return v.(*ensure.Ensurer), nil
}

func (r *Registry) generate(kind string) (*ensure.Ensurer, error) {
	// Re-check under the flight: a previous flight may have stored it.
	r.mu.RLock()
	e, ok := r.ensurers[kind]
	r.mu.RUnlock()
	if ok {
		return e, nil
	}

	ent, err := r.resolver.ResolveEntity(kind)
	if err != nil {
		if r.metrics != nil {
			r.metrics.RecordGeneration(false)
		}
		logger.Warn("Ensurer generation for kind %q failed: %v", kind, err)
		return nil, err
	}

	e = ensure.Generate(ent, r.preconds, r, r.builder)

	r.mu.Lock()
	r.ensurers[kind] = e
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.RecordGeneration(true)
	}
	logger.Debug("Generated ensurer for kind %q (%d structural field(s))", kind, len(e.Fields(typeconform.FieldsStructural)))
	return e, nil
}

// BuildAll generates ensurers for every kind in the snapshot, surfacing
// resolution errors up front instead of on first validation.
func (r *Registry) BuildAll() error {
	for _, kind := range r.snap.Kinds() {
		if _, err := r.EnsurerFor(kind); err != nil {
			return err
		}
	}
	return nil
}

// Kinds returns the entity kinds of the underlying snapshot in
// declaration order.
func (r *Registry) Kinds() []string {
	return r.snap.Kinds()
}

// HasKind reports whether the snapshot declares the kind.
func (r *Registry) HasKind(kind string) bool {
	return r.snap.HasKind(kind)
}

// Generated returns how many ensurers have been generated so far.
func (r *Registry) Generated() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ensurers)
}
