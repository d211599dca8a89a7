package resolve

import (
	"sort"
	"sync"
)

// Registry is the table mapping logical keys to their location
// specifications. It is constructed explicitly and shared by reference;
// entries are added or overwritten, never removed. After the one-time
// ExtendDynamic pass the table is read-only for the remainder of its
// lifetime, so concurrent reads need no coordination beyond the internal
// lock.
type Registry struct {
	mu      sync.RWMutex
	specs   map[string]Spec
	dynamic bool
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]Spec)}
}

// DefaultRegistry constructs a registry seeded with the built-in keys.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for key, spec := range builtinSpecs() {
		r.Register(key, spec)
	}
	return r
}

// Register adds or overwrites the specification for key. Later registrations
// fully replace earlier ones.
func (r *Registry) Register(key string, spec Spec) {
	if key == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.specs == nil {
		r.specs = make(map[string]Spec)
	}
	r.specs[key] = spec.clone()
}

// Lookup returns the specification registered for key.
func (r *Registry) Lookup(key string) (Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.specs[key]
	if !ok {
		return Spec{}, false
	}
	return spec.clone(), true
}

// Keys returns every registered key sorted alphabetically.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.specs))
	for key := range r.specs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a detached copy of the full table.
func (r *Registry) Snapshot() map[string]Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneSpecs(r.specs)
}

// ExtendDynamic installs the locations whose definition needs captured host
// state, then passes the whole table through the TagLocations hook so
// collaborators can contribute keys. It runs at most once per Registry
// lifetime; later calls are no-ops until ResetDynamic re-arms the guard.
func (r *Registry) ExtendDynamic(env Environment) {
	r.mu.Lock()
	if r.dynamic {
		r.mu.Unlock()
		return
	}
	r.dynamic = true
	r.mu.Unlock()

	for key, spec := range dynamicSpecs(env) {
		r.Register(key, spec)
	}

	shaped := env.dispatcher().Apply(TagLocations, r.Snapshot())
	if specs, ok := shaped.(map[string]Spec); ok {
		for key, spec := range specs {
			r.Register(key, spec)
		}
	}
}

// ResetDynamic re-arms the ExtendDynamic guard. Hosts that reuse one process
// across logical requests call this at the request boundary so the dynamic
// pass runs again with fresh captured state.
func (r *Registry) ResetDynamic() {
	r.mu.Lock()
	r.dynamic = false
	r.mu.Unlock()
}

// builtinSpecs seeds the keys every registry ships with. The "view" entry
// intentionally carries two request_var locations; both are consulted in
// order.
func builtinSpecs() map[string]Spec {
	return map[string]Spec{
		"posts_per_page": {
			Read: []Location{
				At(KindRequestVar, Name("posts_per_page")),
				At(KindQueryVar, Name("posts_per_page")),
				At(KindPluginOption, Name("posts_per_page")),
				At(KindOption, Name("posts_per_page")),
			},
			Write: []Location{
				At(KindRequestVar, Name("posts_per_page")),
				At(KindQueryVar, Name("posts_per_page")),
			},
			ORMArg: "posts_per_page",
		},
		"page": {
			Read: []Location{
				At(KindRequestVar, Name("page"), Name("paged")),
				At(KindQueryVar, Name("paged")),
			},
			Write: []Location{
				At(KindRequestVar, Name("page")),
				At(KindQueryVar, Name("paged")),
			},
			ORMArg: "paged",
		},
		"view": {
			Read: []Location{
				At(KindRequestVar, Name("view")),
				At(KindQueryVar, Name("view")),
				At(KindRequestVar, Name("embed")),
				At(KindQueryVar, Name("embed")),
			},
			Write: []Location{
				At(KindRequestVar, Name("view")),
			},
			OmitORMArg: true,
		},
		"name": {
			Read: []Location{
				At(KindRequestVar, Name("name")),
				At(KindQueryVar, Name("name")),
			},
			Write: []Location{
				At(KindRequestVar, Name("name")),
				At(KindQueryVar, Name("name")),
			},
			ORMArg: "name",
		},
	}
}

// dynamicSpecs builds the locations that close over live host state.
func dynamicSpecs(env Environment) map[string]Spec {
	query := env.Query
	return map[string]Spec{
		"is_main_query": {
			Read: []Location{
				At(KindFunc, Callback(func(...any) (any, error) {
					if query == nil {
						return nil, nil
					}
					if main, ok := query.Prop("is_main"); ok {
						return main, nil
					}
					return nil, nil
				})),
			},
			OmitORMArg: true,
		},
	}
}
