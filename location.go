package resolve

import "time"

// Func is a callable that can back a Func-kind location or be registered on a
// FunctionRegistry.
type Func func(args ...any) (any, error)

// Transform reshapes a resolved value before it enters the ORM-args
// projection. Transforms must be pure: same input, same output, no side
// effects on the context.
type Transform func(value any) any

// Target identifies one physical location a strategy probes or mutates.
// Exactly one constructor form applies per kind: Name for single-argument
// kinds, Member for owner+member kinds, Expiring for transients, Callback for
// inline closures on the Func kind.
type Target struct {
	// Name is the primary identifier: request variable, option name,
	// constant, class, container binding, or registered function name.
	Name string
	// Member is the secondary identifier for two-argument kinds: the
	// property or method on the owner named by Name.
	Member string
	// TTL is the expiration applied when writing a transient target.
	TTL time.Duration
	// Fn is an inline callback. A Callback target is a single target, never
	// expanded as an owner/member pair.
	Fn Func
}

// Name builds a single-argument target.
func Name(name string) Target {
	return Target{Name: name}
}

// Member builds an owner+member target (class+prop, class+method,
// binding+prop, binding+method).
func Member(owner, member string) Target {
	return Target{Name: owner, Member: member}
}

// Expiring builds a transient target carrying its write expiration.
func Expiring(name string, ttl time.Duration) Target {
	return Target{Name: name, TTL: ttl}
}

// Callback builds an inline-closure target for the Func kind.
func Callback(fn Func) Target {
	return Target{Fn: fn}
}

// Location binds one kind to one or more targets. Targets are probed left to
// right; the first present value wins.
type Location struct {
	Kind    Kind
	Targets []Target
}

// At is shorthand for a Location literal.
func At(kind Kind, targets ...Target) Location {
	return Location{Kind: kind, Targets: targets}
}

// Spec declares, for one logical key, which physical locations back it for
// reads and writes, plus optional shaping for the ORM-args projection.
//
// Read order is the fallback precedence: earlier locations win when they
// yield a value. The slice representation makes duplicate kinds legal and
// keeps both entries live, unlike an associative table where a second entry
// of the same kind would clobber the first.
type Spec struct {
	Read  []Location
	Write []Location

	// ORMArg renames the key in the ORM-args projection. Empty keeps the
	// logical key.
	ORMArg string
	// OmitORMArg drops the key from the ORM-args projection entirely.
	OmitORMArg bool
	// ORMTransform, when set, is applied to the resolved value in the
	// ORM-args projection.
	ORMTransform Transform
}

// clone returns a copy of s with detached location slices. Targets are value
// copies; inline callbacks are shared by reference, which is safe because
// Func targets are never mutated after construction.
func (s Spec) clone() Spec {
	out := s
	out.Read = cloneLocations(s.Read)
	out.Write = cloneLocations(s.Write)
	return out
}

func cloneLocations(locations []Location) []Location {
	if len(locations) == 0 {
		return nil
	}
	out := make([]Location, len(locations))
	for i, loc := range locations {
		out[i] = Location{
			Kind:    loc.Kind,
			Targets: append([]Target(nil), loc.Targets...),
		}
	}
	return out
}

func cloneSpecs(specs map[string]Spec) map[string]Spec {
	if len(specs) == 0 {
		return nil
	}
	out := make(map[string]Spec, len(specs))
	for key, spec := range specs {
		out[key] = spec.clone()
	}
	return out
}
