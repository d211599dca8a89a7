package resolve

// RequestWriter is the optional write surface of a RequestSource. Sources
// that do not implement it make request_var write locations silent no-ops.
type RequestWriter interface {
	Store(name string, value any)
}

// DangerouslySetGlobalContext writes the instance's cached values back out to
// their declared write locations, mutating the external sources the read
// strategies probe.
//
// Only keys present in the cache are written: a key must have been read or
// explicitly altered on this instance before it can leak back out. fields
// restricts the key set: intersection when whitelist is true, difference
// otherwise; a nil fields slice means all keys. Individual writes whose
// target does not exist are skipped silently, so callers cannot distinguish
// "nothing to write" from "write target invalid".
func (c *Context) DangerouslySetGlobalContext(fields []string, whitelist bool) {
	specs := c.effective()
	for _, key := range filterFields(keysOf(specs), fields, whitelist) {
		value, cached := c.cache[key]
		if !cached {
			continue
		}
		for _, loc := range specs[key].Write {
			for _, target := range loc.Targets {
				c.writeTarget(loc.Kind, target, value)
			}
		}
	}
}

// writeTarget dispatches one target to its kind's write strategy. Every
// strategy validates its target and silently no-ops when it is missing.
func (c *Context) writeTarget(kind Kind, target Target, value any) {
	switch kind {
	case KindRequestVar:
		if writer, ok := c.env.Request.(RequestWriter); ok {
			writer.Store(target.Name, value)
		}
	case KindQueryVar:
		if c.env.Query != nil {
			c.env.Query.SetVar(target.Name, value)
		}
	case KindQueryProp:
		if c.env.Query != nil {
			c.env.Query.SetProp(target.Name, value)
		}
	case KindPluginOption:
		if c.env.PluginOptions != nil {
			_ = c.env.PluginOptions.Set(target.Name, value)
		}
	case KindOption:
		if c.env.Options != nil {
			_ = c.env.Options.Set(target.Name, value)
		}
	case KindTransient:
		if c.env.Transients != nil {
			_ = c.env.Transients.Set(target.Name, value, target.TTL)
		}
	case KindConstant:
		// Defining an already-defined constant is a silent no-op.
		if c.env.Constants != nil && !c.env.Constants.Defined(target.Name) {
			c.env.Constants.Define(target.Name, value)
		}
	case KindGlobalVar:
		if c.env.Globals != nil {
			c.env.Globals.Set(target.Name, value)
		}
	case KindStaticProp:
		if c.env.Statics != nil {
			c.env.Statics.SetStaticProp(target.Name, target.Member, value)
		}
	case KindStaticMethod:
		if c.env.Statics != nil {
			c.env.Statics.CallStatic(target.Name, target.Member, value)
		}
	case KindBoundProp:
		if obj, ok := c.resolveBinding(target.Name); ok {
			reflectSetProp(obj, target.Member, value)
		}
	case KindBoundMethod:
		if obj, ok := c.resolveBinding(target.Name); ok {
			reflectCall(obj, target.Member, value)
		}
	case KindFunc:
		if target.Fn != nil {
			_, _ = target.Fn(value)
			return
		}
		if c.env.Functions != nil && c.env.Functions.Exists(target.Name) {
			_, _ = c.env.Functions.Call(target.Name, value)
		}
	}
	// KindFilter has no write strategy.
}

func keysOf(specs map[string]Spec) []string {
	keys := make([]string, 0, len(specs))
	for key := range specs {
		keys = append(keys, key)
	}
	return keys
}

// filterFields restricts keys to the requested subset: intersection for a
// whitelist, difference for a blacklist. A nil fields slice keeps everything.
func filterFields(keys, fields []string, whitelist bool) []string {
	if fields == nil {
		return keys
	}
	requested := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		requested[field] = struct{}{}
	}
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		_, listed := requested[key]
		if listed == whitelist {
			out = append(out, key)
		}
	}
	return out
}
