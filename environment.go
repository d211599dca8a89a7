package resolve

import (
	"time"

	"github.com/goliatone/go-resolve/hooks"
)

// RequestSource exposes request parameters across the host's method-specific
// stores (GET/POST/PUT/DELETE equivalents).
type RequestSource interface {
	Lookup(name string) (any, bool)
}

// QuerySource exposes variables and properties on the host's query object.
type QuerySource interface {
	Var(name string) (any, bool)
	SetVar(name string, value any)
	Prop(name string) (any, bool)
	SetProp(name string, value any)
}

// OptionStore is a persisted key-value store.
type OptionStore interface {
	Get(name string) (any, bool)
	Set(name string, value any) error
}

// TransientStore is an expiring key-value store. Get reports presence via its
// second return, but see the Transient strategy in resolve.go for the
// stored-false caveat.
type TransientStore interface {
	Get(name string) (any, bool)
	Set(name string, value any, ttl time.Duration) error
}

// ConstantTable exposes named constants. Names may be namespaced as
// "Owner::NAME"; the table owns that convention. Define must be a no-op when
// the constant already exists.
type ConstantTable interface {
	Defined(name string) bool
	Value(name string) any
	Define(name string, value any)
}

// GlobalTable is an indexable global-variable table.
type GlobalTable interface {
	Get(name string) (any, bool)
	Set(name string, value any)
}

// StaticRegistry exposes static members on registered classes.
type StaticRegistry interface {
	ClassExists(class string) bool
	StaticProp(class, prop string) (any, bool)
	// SetStaticProp reports false when class or prop does not exist.
	SetStaticProp(class, prop string, value any) bool
	// CallStatic reports false when class or method does not exist.
	CallStatic(class, method string, args ...any) (any, bool)
}

// Container resolves named bindings to live objects. Property and method
// access on resolved objects happens via reflection in the bound strategies.
type Container interface {
	Has(binding string) bool
	Resolve(binding string) (any, bool)
}

// Environment bundles every collaborator the resolution and write engines
// call through. Any nil field simply makes the corresponding strategies
// report absence (reads) or no-op (writes).
type Environment struct {
	Request       RequestSource
	Query         QuerySource
	PluginOptions OptionStore
	Options       OptionStore
	Transients    TransientStore
	Constants     ConstantTable
	Globals       GlobalTable
	Statics       StaticRegistry
	Container     Container
	Functions     *FunctionRegistry
	Hooks         hooks.Dispatcher
}

// hook tags used as extension points. Key-scoped tags append the logical key.
const (
	// TagLocations shapes the registry table during ExtendDynamic.
	TagLocations = "resolve.locations"
	// TagPreResolve short-circuits resolution for one key; a non-nil result
	// is returned to the caller without touching cache or locations.
	TagPreResolve = "resolve.pre."
	// TagPostResolve reshapes the resolved value for one key.
	TagPostResolve = "resolve.post."
	// TagState and TagStateGlobal shape the State projection; the global
	// variant runs only on the distinguished global instance.
	TagState       = "resolve.state"
	TagStateGlobal = "resolve.state.global"
	// TagORMArgs and TagORMArgsGlobal shape the ORM-args projection.
	TagORMArgs       = "resolve.orm_args"
	TagORMArgsGlobal = "resolve.orm_args.global"
)

func (e Environment) dispatcher() hooks.Dispatcher {
	if e.Hooks != nil {
		return e.Hooks
	}
	return noopDispatcher{}
}

type noopDispatcher struct{}

func (noopDispatcher) Apply(_ string, value any, _ ...any) any { return value }
func (noopDispatcher) Has(string) bool                         { return false }
