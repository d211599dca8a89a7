package resolve

import "testing"

func TestWriteBackOnlyTouchedKeys(t *testing.T) {
	env := newTestEnv()
	env.request["color"] = "blue"
	env.request["size"] = "large"

	registry := NewRegistry()
	registry.Register("color", Spec{
		Read:  []Location{At(KindRequestVar, Name("color"))},
		Write: []Location{At(KindOption, Name("color"))},
	})
	registry.Register("size", Spec{
		Read:  []Location{At(KindRequestVar, Name("size"))},
		Write: []Location{At(KindOption, Name("size"))},
	})
	ctx := newTestContext(t, env, registry)

	ctx.Get("color", "red", false)
	ctx.DangerouslySetGlobalContext(nil, false)

	if env.options["color"] != "blue" {
		t.Fatalf("expected read key written, got %v", env.options["color"])
	}
	if _, written := env.options["size"]; written {
		t.Fatalf("untouched key must never be written")
	}
}

func TestWriteBackFieldFiltering(t *testing.T) {
	env := newTestEnv()
	env.request["color"] = "blue"
	env.request["size"] = "large"

	registry := NewRegistry()
	registry.Register("color", Spec{
		Read:  []Location{At(KindRequestVar, Name("color"))},
		Write: []Location{At(KindOption, Name("color"))},
	})
	registry.Register("size", Spec{
		Read:  []Location{At(KindRequestVar, Name("size"))},
		Write: []Location{At(KindOption, Name("size"))},
	})
	ctx := newTestContext(t, env, registry)
	ctx.Get("color", "red", false)
	ctx.Get("size", "small", false)

	ctx.DangerouslySetGlobalContext([]string{"color"}, true)
	if _, written := env.options["size"]; written {
		t.Fatalf("whitelist must exclude unlisted keys")
	}
	if env.options["color"] != "blue" {
		t.Fatalf("whitelist must include listed keys, got %v", env.options["color"])
	}

	delete(env.options, "color")
	ctx.DangerouslySetGlobalContext([]string{"color"}, false)
	if _, written := env.options["color"]; written {
		t.Fatalf("blacklist must exclude listed keys")
	}
	if env.options["size"] != "large" {
		t.Fatalf("blacklist must include unlisted keys, got %v", env.options["size"])
	}
}

func TestWriteBackRoundTripPerKind(t *testing.T) {
	env := newTestEnv()
	env.statics.props["Settings"] = map[string]any{"Color": "old"}
	env.container["settings"] = &boundSettings{}

	var methodArg any
	env.statics.methods["Settings"] = map[string]Func{
		"SetColor": func(args ...any) (any, error) {
			methodArg = args[0]
			return nil, nil
		},
	}
	var funcArg any
	if err := env.functions.Register("store_color", func(args ...any) (any, error) {
		funcArg = args[0]
		return nil, nil
	}); err != nil {
		t.Fatalf("unexpected register error: %v", err)
	}

	registry := NewRegistry()
	registry.Register("color", Spec{
		Read: []Location{At(KindRequestVar, Name("color"))},
		Write: []Location{
			At(KindRequestVar, Name("color")),
			At(KindQueryVar, Name("color")),
			At(KindQueryProp, Name("color")),
			At(KindPluginOption, Name("color")),
			At(KindOption, Name("color")),
			At(KindTransient, Name("color")),
			At(KindConstant, Name("COLOR")),
			At(KindGlobalVar, Name("color")),
			At(KindStaticProp, Member("Settings", "Color")),
			At(KindStaticMethod, Member("Settings", "SetColor")),
			At(KindBoundProp, Member("settings", "Label")),
			At(KindBoundMethod, Member("settings", "SetShade")),
			At(KindFunc, Name("store_color")),
		},
	})
	ctx := newTestContext(t, env, registry)

	altered := ctx.Alter(map[string]any{"color": "green"})
	altered.DangerouslySetGlobalContext(nil, false)

	if env.request["color"] != "green" {
		t.Fatalf("request var not written: %v", env.request["color"])
	}
	if env.query.vars["color"] != "green" {
		t.Fatalf("query var not written: %v", env.query.vars["color"])
	}
	if env.query.props["color"] != "green" {
		t.Fatalf("query prop not written: %v", env.query.props["color"])
	}
	if env.pluginOpts["color"] != "green" {
		t.Fatalf("plugin option not written: %v", env.pluginOpts["color"])
	}
	if env.options["color"] != "green" {
		t.Fatalf("option not written: %v", env.options["color"])
	}
	if env.transients["color"] != "green" {
		t.Fatalf("transient not written: %v", env.transients["color"])
	}
	if env.constants["COLOR"] != "green" {
		t.Fatalf("constant not defined: %v", env.constants["COLOR"])
	}
	if env.globals["color"] != "green" {
		t.Fatalf("global not written: %v", env.globals["color"])
	}
	if env.statics.props["Settings"]["Color"] != "green" {
		t.Fatalf("static prop not written: %v", env.statics.props["Settings"]["Color"])
	}
	if methodArg != "green" {
		t.Fatalf("static method not invoked with value: %v", methodArg)
	}
	if obj := env.container["settings"].(*boundSettings); obj.Label != "green" {
		t.Fatalf("bound prop not written: %v", obj.Label)
	}
	if obj := env.container["settings"].(*boundSettings); obj.Shade != "green" {
		t.Fatalf("bound method not invoked with value: %v", obj.Shade)
	}
	if funcArg != "green" {
		t.Fatalf("function writer not invoked with value: %v", funcArg)
	}

	// Round-trip: a fresh instance re-reads the just-written value through
	// each readable kind's own strategy.
	reread := NewRegistry()
	for key, loc := range map[string]Location{
		"via_request_var": At(KindRequestVar, Name("color")),
		"via_query_var":   At(KindQueryVar, Name("color")),
		"via_query_prop":  At(KindQueryProp, Name("color")),
		"via_plugin_opt":  At(KindPluginOption, Name("color")),
		"via_option":      At(KindOption, Name("color")),
		"via_transient":   At(KindTransient, Name("color")),
		"via_constant":    At(KindConstant, Name("COLOR")),
		"via_static_prop": At(KindStaticProp, Member("Settings", "Color")),
		"via_bound_prop":  At(KindBoundProp, Member("settings", "Label")),
	} {
		reread.Register(key, Spec{Read: []Location{loc}})
	}
	fresh := newTestContext(t, env, reread)
	for _, key := range reread.Keys() {
		if got := fresh.Get(key, "red", false); got != "green" {
			t.Fatalf("expected round-trip green through %s, got %v", key, got)
		}
	}
}

func TestWriteBackConstantAlreadyDefinedIsNoop(t *testing.T) {
	env := newTestEnv()
	env.constants["COLOR"] = "original"

	registry := NewRegistry()
	registry.Register("color", Spec{
		Write: []Location{At(KindConstant, Name("COLOR"))},
	})
	ctx := newTestContext(t, env, registry)

	ctx.Alter(map[string]any{"color": "green"}).DangerouslySetGlobalContext(nil, false)
	if env.constants["COLOR"] != "original" {
		t.Fatalf("redefining a constant must be a silent no-op, got %v", env.constants["COLOR"])
	}
}

func TestWriteBackMissingTargetsAreSilent(t *testing.T) {
	env := newTestEnv()

	registry := NewRegistry()
	registry.Register("color", Spec{
		Write: []Location{
			At(KindStaticProp, Member("Missing", "Color")),
			At(KindBoundProp, Member("missing", "Color")),
			At(KindFunc, Name("missing")),
		},
	})
	ctx := newTestContext(t, env, registry)

	// Must not panic and must not report anything.
	ctx.Alter(map[string]any{"color": "green"}).DangerouslySetGlobalContext(nil, false)
}

func TestWriteBackScenarioColor(t *testing.T) {
	env := newTestEnv()
	env.request["color"] = "blue"

	registry := NewRegistry()
	registry.Register("color", Spec{
		Read:  []Location{At(KindRequestVar, Name("color"))},
		Write: []Location{At(KindRequestVar, Name("color"))},
	})
	ctx := newTestContext(t, env, registry)

	if got := ctx.Get("color", "red", false); got != "blue" {
		t.Fatalf("expected blue, got %v", got)
	}

	clone := ctx.Alter(map[string]any{"color": "green"})
	if got := clone.Get("color", "red", false); got != "green" {
		t.Fatalf("expected altered clone green, got %v", got)
	}

	fresh := newTestContext(t, env, registry)
	if got := fresh.Get("color", "red", false); got != "blue" {
		t.Fatalf("expected un-written source still blue, got %v", got)
	}
}
