package resolve

import (
	"errors"

	"github.com/goliatone/go-resolve/internal/clone"
)

// ErrNilRegistry indicates the context was constructed without a registry.
var ErrNilRegistry = errors.New("resolve: registry is required")

// Context is the value-resolution instance: it owns a request-scoped cache of
// already-resolved values plus any instance-level location overrides.
//
// Contexts are immutable by convention: Alter, AddLocations, and SetLocations
// return new instances and never touch the receiver. Refresh is the one
// deliberate exception and evicts from the receiver's own cache in place.
// A Context is meant to be owned by a single logical request; it performs no
// internal locking of its cache.
type Context struct {
	registry    *Registry
	env         Environment
	cfg         contextConfig
	overrides   map[string]Spec
	useDefaults bool
	cache       map[string]any
}

// Option configures a Context at construction time.
type Option func(*contextConfig)

type contextConfig struct {
	logger    ResolutionLogger
	traceSink TraceSink
	global    bool
}

// AsGlobal marks the context as the distinguished per-request global
// instance, enabling the global-only shaping hooks on State and ORMArgs.
func AsGlobal() Option {
	return func(cfg *contextConfig) {
		cfg.global = true
	}
}

// New constructs a Context over registry and env. The registry is shared by
// reference; location overrides start empty and defaults are consulted.
func New(registry *Registry, env Environment, opts ...Option) (*Context, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}
	cfg := contextConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Context{
		registry:    registry,
		env:         env,
		cfg:         cfg,
		useDefaults: true,
		cache:       make(map[string]any),
	}, nil
}

// IsGlobal reports whether this is the distinguished global instance.
func (c *Context) IsGlobal() bool {
	return c.cfg.global
}

// Alter returns a new context whose cache is the receiver's cache shallow-
// merged with values, new keys winning. Locations are untouched. This is the
// supported way to make resolution return different results without mutating
// the underlying external sources.
func (c *Context) Alter(values map[string]any) *Context {
	next := c.derive()
	for key, value := range values {
		next.cache[key] = clone.Value(value)
	}
	return next
}

// Refresh evicts keys from the receiver's own cache so subsequent Gets
// re-resolve. With no arguments the whole cache is dropped. Unlike the other
// mutators Refresh works in place; the asymmetry is inherited from the design
// this engine models and kept on purpose.
func (c *Context) Refresh(keys ...string) {
	if len(keys) == 0 {
		c.cache = make(map[string]any)
		return
	}
	for _, key := range keys {
		delete(c.cache, key)
	}
}

// AddLocations returns a new context whose override locations are the
// receiver's overrides merged with specs, later keys winning. Merging is
// shallow per key: an override fully replaces any prior entry for that key.
func (c *Context) AddLocations(specs map[string]Spec) *Context {
	next := c.derive()
	if next.overrides == nil {
		next.overrides = make(map[string]Spec, len(specs))
	}
	for key, spec := range specs {
		next.overrides[key] = spec.clone()
	}
	return next
}

// SetLocations returns a new context whose override locations are exactly
// specs, and whose consultation of the registry defaults is toggled by
// useDefaults.
func (c *Context) SetLocations(specs map[string]Spec, useDefaults bool) *Context {
	next := c.derive()
	next.overrides = cloneSpecs(specs)
	next.useDefaults = useDefaults
	return next
}

// derive clones the receiver, detaching cache and overrides.
func (c *Context) derive() *Context {
	next := &Context{
		registry:    c.registry,
		env:         c.env,
		cfg:         c.cfg,
		useDefaults: c.useDefaults,
		overrides:   cloneSpecs(c.overrides),
		cache:       make(map[string]any, len(c.cache)),
	}
	for key, value := range c.cache {
		next.cache[key] = clone.Value(value)
	}
	return next
}

// lookupSpec resolves the specification consulted for one key: the instance
// override when present, otherwise the registry default when defaults are
// consulted. Single-key reads go through here rather than effective, which
// copies the whole table.
func (c *Context) lookupSpec(key string) (Spec, bool) {
	if spec, ok := c.overrides[key]; ok {
		return spec, true
	}
	if !c.useDefaults {
		return Spec{}, false
	}
	return c.registry.Lookup(key)
}

// effective computes the per-instance registry view: registry defaults merged
// with the instance overrides when defaults are consulted, otherwise the
// overrides alone. The merge is shallow per key.
func (c *Context) effective() map[string]Spec {
	if !c.useDefaults {
		return cloneSpecs(c.overrides)
	}
	specs := c.registry.Snapshot()
	if specs == nil {
		specs = make(map[string]Spec, len(c.overrides))
	}
	for key, spec := range c.overrides {
		specs[key] = spec.clone()
	}
	return specs
}

func (c *Context) logger() ResolutionLogger {
	if c.cfg.logger != nil {
		return c.cfg.logger
	}
	return noopResolutionLogger{}
}
