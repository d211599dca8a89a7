package resolve

import (
	"reflect"
	"time"
)

// Get resolves key by consulting its read locations in declared order and
// returns the first value that differs from def, falling back to def when
// nothing yields one.
//
// The pre-resolution hook may short-circuit with a non-nil value, bypassing
// cache and locations entirely. Otherwise a cached value is used unless force
// is set; a run of the location loop that yields a value caches it under key
// and only key: neither def nor force participate in the cache identity. The
// post-resolution hook is applied to whatever the lookup produced, cached or
// fresh, and its result is returned without being cached.
func (c *Context) Get(key string, def any, force bool) any {
	start := time.Now()
	dispatcher := c.env.dispatcher()

	if pre := dispatcher.Apply(TagPreResolve+key, nil, key); pre != nil {
		c.logger().LogResolution(ResolutionLogEvent{
			Key:      key,
			Found:    true,
			Forced:   force,
			Duration: time.Since(start),
		})
		return pre
	}

	spec, ok := c.lookupSpec(key)
	if !ok || len(spec.Read) == 0 {
		return def
	}

	fromCache := false
	var value any
	var source Kind
	if cached, hit := c.cache[key]; hit && !force {
		value = cached
		fromCache = true
	} else {
		var found bool
		value, source, found = c.runLocations(key, spec.Read, def, force)
		if found {
			c.cache[key] = value
		}
	}

	value = dispatcher.Apply(TagPostResolve+key, value, key)
	c.logger().LogResolution(ResolutionLogEvent{
		Key:       key,
		Source:    source,
		FromCache: fromCache,
		Forced:    force,
		Found:     !reflect.DeepEqual(value, def),
		Duration:  time.Since(start),
	})
	return value
}

// runLocations executes the fallback loop: locations top to bottom, targets
// left to right, adopting the first probe whose value differs from def.
func (c *Context) runLocations(key string, read []Location, def any, forced bool) (any, Kind, bool) {
	trace := newTrace(key, forced)
	value := def
	var source Kind
	found := false

	for _, loc := range read {
		probed, ok := c.readLocation(loc, def, &trace)
		if !ok || reflect.DeepEqual(probed, def) {
			continue
		}
		value = probed
		source = loc.Kind
		found = true
		if n := len(trace.Probes); n > 0 {
			trace.Probes[n-1].Adopted = true
		}
		break
	}

	if c.cfg.traceSink != nil {
		c.cfg.traceSink(trace)
	}
	return value, source, found
}

// readLocation probes one location's targets in order and reports the first
// present value.
func (c *Context) readLocation(loc Location, def any, trace *Trace) (any, bool) {
	if loc.Kind == KindFilter {
		return c.readFilter(loc, def, trace)
	}
	for _, target := range loc.Targets {
		value, ok := c.probe(loc.Kind, target)
		trace.Probes = append(trace.Probes, Probe{
			Kind:   loc.Kind.String(),
			Target: targetLabel(target),
			Value:  value,
			Found:  ok,
		})
		if ok {
			return value, true
		}
	}
	return nil, false
}

// readFilter applies each filter tag in order to def, adopting the first
// result that differs from it.
func (c *Context) readFilter(loc Location, def any, trace *Trace) (any, bool) {
	dispatcher := c.env.dispatcher()
	for _, target := range loc.Targets {
		value := dispatcher.Apply(target.Name, def)
		hit := !reflect.DeepEqual(value, def)
		trace.Probes = append(trace.Probes, Probe{
			Kind:   loc.Kind.String(),
			Target: target.Name,
			Value:  value,
			Found:  hit,
		})
		if hit {
			return value, true
		}
	}
	return nil, false
}

// probe dispatches one target to its kind's read strategy. Absence is
// reported as (nil, false); strategies never error.
func (c *Context) probe(kind Kind, target Target) (any, bool) {
	switch kind {
	case KindRequestVar:
		if c.env.Request == nil {
			return nil, false
		}
		return c.env.Request.Lookup(target.Name)
	case KindQueryVar:
		if c.env.Query == nil {
			return nil, false
		}
		return c.env.Query.Var(target.Name)
	case KindQueryProp:
		if c.env.Query == nil {
			return nil, false
		}
		return c.env.Query.Prop(target.Name)
	case KindPluginOption:
		if c.env.PluginOptions == nil {
			return nil, false
		}
		return c.env.PluginOptions.Get(target.Name)
	case KindOption:
		if c.env.Options == nil {
			return nil, false
		}
		return c.env.Options.Get(target.Name)
	case KindTransient:
		// A stored literal false is indistinguishable from absence and falls
		// through to the next target, matching memcached-style transient
		// stores where false cannot be distinguished from a miss.
		if c.env.Transients == nil {
			return nil, false
		}
		value, ok := c.env.Transients.Get(target.Name)
		if !ok || value == false {
			return nil, false
		}
		return value, true
	case KindConstant:
		if c.env.Constants == nil || !c.env.Constants.Defined(target.Name) {
			return nil, false
		}
		return c.env.Constants.Value(target.Name), true
	case KindStaticProp:
		if c.env.Statics == nil {
			return nil, false
		}
		return c.env.Statics.StaticProp(target.Name, target.Member)
	case KindStaticMethod:
		if c.env.Statics == nil {
			return nil, false
		}
		return c.env.Statics.CallStatic(target.Name, target.Member)
	case KindBoundProp:
		return c.boundProp(target)
	case KindBoundMethod:
		return c.boundCall(target)
	case KindFunc:
		return c.callFunc(target)
	default:
		// KindGlobalVar is write-only; unknown kinds fall through.
		return nil, false
	}
}

// callFunc invokes an inline callback or a registered function. A nil result
// or an error reports absence.
func (c *Context) callFunc(target Target) (any, bool) {
	if target.Fn != nil {
		value, err := target.Fn()
		if err != nil || value == nil {
			return nil, false
		}
		return value, true
	}
	if c.env.Functions == nil || !c.env.Functions.Exists(target.Name) {
		return nil, false
	}
	value, err := c.env.Functions.Call(target.Name)
	if err != nil || value == nil {
		return nil, false
	}
	return value, true
}

func (c *Context) resolveBinding(name string) (any, bool) {
	if c.env.Container == nil || !c.env.Container.Has(name) {
		return nil, false
	}
	return c.env.Container.Resolve(name)
}

func (c *Context) boundProp(target Target) (any, bool) {
	obj, ok := c.resolveBinding(target.Name)
	if !ok {
		return nil, false
	}
	return reflectProp(obj, target.Member)
}

func (c *Context) boundCall(target Target) (any, bool) {
	obj, ok := c.resolveBinding(target.Name)
	if !ok {
		return nil, false
	}
	return reflectCall(obj, target.Member)
}
