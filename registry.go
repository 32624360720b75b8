package colex

// Registry is the directory mapping fully-qualified type names to collection
// and object metadata plus adapter linkage. Registration is explicit: nothing
// registers as a side effect of type construction helpers outside this file.
//
// The registry is expected to be written during process startup and read
// afterwards. Writes are guarded by a mutex so concurrent startup is safe,
// but registration order still determines adapter-path tie-breaking, so
// callers that care about determinism should register from a single
// goroutine.

import (
	"sync"
)

// Entry is a snapshot of one collection's registry state
type Entry struct {
	Type *CollectionType

	// Adapters registered with this collection as their from-type,
	// in registration order
	Adapters []Adapter

	// AdaptableFrom lists the collection types this one can be adapted
	// from, in registration order
	AdaptableFrom []*CollectionType
}

type registryEntry struct {
	typ           *CollectionType
	adapters      []Adapter
	adaptableFrom []*CollectionType
}

// Registry holds registered collection and object types. Entries are never
// deleted; they live for the registry's lifetime.
type Registry struct {
	mu          sync.RWMutex
	collections map[string]*registryEntry
	objects     map[string]*ObjectType
}

// NewRegistry creates an empty registry. Tests use isolated registries;
// applications normally share DefaultRegistry.
func NewRegistry() *Registry {
	return &Registry{
		collections: make(map[string]*registryEntry),
		objects:     make(map[string]*ObjectType),
	}
}

// DefaultRegistry is the process-wide registry used when no explicit
// registry is supplied.
var DefaultRegistry = NewRegistry()

// RegisterCollection inserts a collection type keyed by its fully-qualified
// name. A duplicate name fails with ErrDuplicateRegistration: colliding
// registrations are a startup-time defect, not a runtime condition.
func (r *Registry) RegisterCollection(t *CollectionType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := t.FullName()
	if _, exists := r.collections[key]; exists {
		return WithContext(ErrDuplicateRegistration, map[string]interface{}{
			"collection": key,
		})
	}
	r.collections[key] = &registryEntry{typ: t}
	return nil
}

// RegisterObject inserts an object type keyed by its fully-qualified name.
// Duplicate names fail the same way collection duplicates do.
func (r *Registry) RegisterObject(t *ObjectType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := t.FullName()
	if existing, exists := r.objects[key]; exists {
		if existing == t {
			return nil // idempotent for the same type value
		}
		return WithContext(ErrDuplicateRegistration, map[string]interface{}{
			"object": key,
		})
	}
	r.objects[key] = t
	return nil
}

// Lookup returns the registry entry for a fully-qualified collection name
func (r *Registry) Lookup(fullName string) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.collections[fullName]
	if !ok {
		return nil, WithContext(ErrNotRegistered, map[string]interface{}{
			"collection": fullName,
		})
	}
	return entry.snapshot(), nil
}

func (e *registryEntry) snapshot() *Entry {
	out := &Entry{
		Type:          e.typ,
		Adapters:      make([]Adapter, len(e.adapters)),
		AdaptableFrom: make([]*CollectionType, len(e.adaptableFrom)),
	}
	copy(out.Adapters, e.adapters)
	copy(out.AdaptableFrom, e.adaptableFrom)
	return out
}

// RegisterAdapter links an adapter into the graph: the adapter is added to
// its from-type's adapter set and the from-type is added to the target's
// adaptable-from set. Re-registering the same adapter is a no-op; an adapter
// reusing a registered name with different endpoints is rejected. Both
// endpoints must already be registered collections.
func (r *Registry) RegisterAdapter(a Adapter) error {
	if a == nil || a.FromType() == nil || a.TargetType() == nil {
		return WithContext(ErrTypeMismatch, map[string]interface{}{
			"reason": "adapter must declare from and target collection types",
		})
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	fromKey := a.FromType().FullName()
	targetKey := a.TargetType().FullName()

	fromEntry, ok := r.collections[fromKey]
	if !ok {
		return WithContext(ErrNotRegistered, map[string]interface{}{
			"collection": fromKey,
		})
	}
	targetEntry, ok := r.collections[targetKey]
	if !ok {
		return WithContext(ErrNotRegistered, map[string]interface{}{
			"collection": targetKey,
		})
	}

	for _, existing := range fromEntry.adapters {
		if existing.Name() != a.Name() {
			continue
		}
		if existing.TargetType() != a.TargetType() || existing.FromType() != a.FromType() {
			return WithContext(ErrDuplicateRegistration, map[string]interface{}{
				"adapter": a.Name(),
				"reason":  "adapter name reused with different endpoints",
			})
		}
		return nil // idempotent re-registration
	}

	fromEntry.adapters = append(fromEntry.adapters, a)
	for _, t := range targetEntry.adaptableFrom {
		if t == a.FromType() {
			return nil
		}
	}
	targetEntry.adaptableFrom = append(targetEntry.adaptableFrom, a.FromType())
	return nil
}

// adapterFor returns the adapter registered on from whose target is target
func (r *Registry) adapterFor(from, target *CollectionType) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.collections[from.FullName()]
	if !ok {
		return nil, false
	}
	for _, a := range entry.adapters {
		if a.TargetType() == target {
			return a, true
		}
	}
	return nil, false
}

// graph builds the reverse-adjacency view used by path resolution: each node
// maps to the types it is adaptable from, in registration order.
func (r *Registry) graph() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g := make(map[string][]string, len(r.collections))
	for key, entry := range r.collections {
		sources := make([]string, len(entry.adaptableFrom))
		for i, t := range entry.adaptableFrom {
			sources[i] = t.FullName()
		}
		g[key] = sources
	}
	return g
}

// collectionByName resolves a fully-qualified name to its type
func (r *Registry) collectionByName(fullName string) (*CollectionType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.collections[fullName]
	if !ok {
		return nil, false
	}
	return entry.typ, true
}
