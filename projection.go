package resolve

import "sort"

// Map resolves every key in the effective registry and returns a flat
// snapshot containing only the keys that resolved to something.
func (c *Context) Map() map[string]any {
	out := make(map[string]any)
	for _, key := range sortedKeys(c.effective()) {
		if value := c.Get(key, nil, false); value != nil {
			out[key] = value
		}
	}
	return out
}

// State returns the Map snapshot restricted by the optional allow/deny field
// list, shaped through the state hook and, for the global instance, the
// global state hook.
func (c *Context) State(fields []string, whitelist bool) map[string]any {
	state := filterMap(c.Map(), fields, whitelist)
	dispatcher := c.env.dispatcher()
	state = shapedMap(dispatcher.Apply(TagState, state), state)
	if c.cfg.global {
		state = shapedMap(dispatcher.Apply(TagStateGlobal, state), state)
	}
	return state
}

// ORMArgs projects the resolved values for a downstream query layer: keys
// are renamed to their declared ORM alias, keys marked OmitORMArg are
// dropped, and declared transforms run before inclusion. The optional field
// list filters on the projected (aliased) names, and the result passes
// through the same two-tier hook pattern as State.
func (c *Context) ORMArgs(fields []string, whitelist bool) map[string]any {
	specs := c.effective()
	args := make(map[string]any)
	for _, key := range sortedKeys(specs) {
		spec := specs[key]
		if spec.OmitORMArg {
			continue
		}
		value := c.Get(key, nil, false)
		if value == nil {
			continue
		}
		if spec.ORMTransform != nil {
			value = spec.ORMTransform(value)
		}
		name := key
		if spec.ORMArg != "" {
			name = spec.ORMArg
		}
		args[name] = value
	}
	args = filterMap(args, fields, whitelist)
	dispatcher := c.env.dispatcher()
	args = shapedMap(dispatcher.Apply(TagORMArgs, args), args)
	if c.cfg.global {
		args = shapedMap(dispatcher.Apply(TagORMArgsGlobal, args), args)
	}
	return args
}

// shapedMap adopts a hook result when it is still a map, otherwise keeps the
// pre-hook value.
func shapedMap(applied any, fallback map[string]any) map[string]any {
	if shaped, ok := applied.(map[string]any); ok {
		return shaped
	}
	return fallback
}

func filterMap(m map[string]any, fields []string, whitelist bool) map[string]any {
	if fields == nil {
		return m
	}
	requested := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		requested[field] = struct{}{}
	}
	out := make(map[string]any, len(m))
	for key, value := range m {
		if _, listed := requested[key]; listed == whitelist {
			out[key] = value
		}
	}
	return out
}

func sortedKeys(specs map[string]Spec) []string {
	keys := make([]string, 0, len(specs))
	for key := range specs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
