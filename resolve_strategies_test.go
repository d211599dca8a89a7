package resolve

import (
	"errors"
	"testing"
)

func TestTransientStoredFalseFallsThrough(t *testing.T) {
	env := newTestEnv()
	env.transients["t1"] = false
	env.transients["t2"] = "x"

	registry := NewRegistry()
	registry.Register("flag", Spec{
		Read: []Location{At(KindTransient, Name("t1"), Name("t2"))},
	})
	ctx := newTestContext(t, env, registry)

	// A stored literal false is indistinguishable from absence, so the
	// first target is skipped and the second wins.
	if got := ctx.Get("flag", nil, false); got != "x" {
		t.Fatalf("expected stored false to fall through to %q, got %v", "x", got)
	}
}

func TestQueryVarAndQueryPropStrategies(t *testing.T) {
	env := newTestEnv()
	env.query.vars["paged"] = 3
	env.query.props["is_main"] = true

	registry := NewRegistry()
	registry.Register("page", Spec{
		Read: []Location{At(KindQueryVar, Name("paged"))},
	})
	registry.Register("is_main", Spec{
		Read: []Location{At(KindQueryProp, Name("is_main"))},
	})
	registry.Register("missing_var", Spec{
		Read: []Location{At(KindQueryVar, Name("nope"))},
	})
	registry.Register("missing_prop", Spec{
		Read: []Location{At(KindQueryProp, Name("nope"))},
	})
	ctx := newTestContext(t, env, registry)

	if got := ctx.Get("page", 1, false); got != 3 {
		t.Fatalf("expected query var 3, got %v", got)
	}
	if got := ctx.Get("is_main", false, false); got != true {
		t.Fatalf("expected query prop true, got %v", got)
	}
	if got := ctx.Get("missing_var", 1, false); got != 1 {
		t.Fatalf("expected missing query var to fall back, got %v", got)
	}
	if got := ctx.Get("missing_prop", "fallback", false); got != "fallback" {
		t.Fatalf("expected missing query prop to fall back, got %v", got)
	}
}

func TestConstantSupportsNamespacedNames(t *testing.T) {
	env := newTestEnv()
	env.constants["Settings::LIMIT"] = 50

	registry := NewRegistry()
	registry.Register("limit", Spec{
		Read: []Location{At(KindConstant, Name("Settings::LIMIT"))},
	})
	ctx := newTestContext(t, env, registry)

	if got := ctx.Get("limit", 0, false); got != 50 {
		t.Fatalf("expected 50, got %v", got)
	}
}

func TestStaticPropAndMethodStrategies(t *testing.T) {
	env := newTestEnv()
	env.statics.props["Settings"] = map[string]any{"PerPage": 12}
	env.statics.methods["Settings"] = map[string]Func{
		"DefaultView": func(...any) (any, error) { return "month", nil },
		"Broken":      func(...any) (any, error) { return nil, errors.New("boom") },
	}

	registry := NewRegistry()
	registry.Register("per_page", Spec{
		Read: []Location{At(KindStaticProp, Member("Settings", "PerPage"))},
	})
	registry.Register("view", Spec{
		Read: []Location{
			At(KindStaticMethod, Member("Settings", "Broken")),
			At(KindStaticMethod, Member("Settings", "DefaultView")),
		},
	})
	ctx := newTestContext(t, env, registry)

	if got := ctx.Get("per_page", 0, false); got != 12 {
		t.Fatalf("expected 12, got %v", got)
	}
	if got := ctx.Get("view", "list", false); got != "month" {
		t.Fatalf("expected erroring method to be skipped, got %v", got)
	}
}

type boundSettings struct {
	PerPage int
	Label   string
	Shade   string
}

func (b *boundSettings) View() string { return "week" }

func (b *boundSettings) SetShade(shade string) { b.Shade = shade }

func (b *boundSettings) Fails() (string, error) { return "", errors.New("nope") }

func TestBoundPropAndMethodStrategies(t *testing.T) {
	env := newTestEnv()
	env.container["settings"] = &boundSettings{PerPage: 9, Label: "bound"}

	registry := NewRegistry()
	registry.Register("per_page", Spec{
		Read: []Location{At(KindBoundProp, Member("settings", "PerPage"))},
	})
	registry.Register("view", Spec{
		Read: []Location{At(KindBoundMethod, Member("settings", "View"))},
	})
	registry.Register("broken", Spec{
		Read: []Location{At(KindBoundMethod, Member("settings", "Fails"))},
	})
	registry.Register("missing", Spec{
		Read: []Location{At(KindBoundProp, Member("settings", "Nope"))},
	})
	ctx := newTestContext(t, env, registry)

	if got := ctx.Get("per_page", 0, false); got != 9 {
		t.Fatalf("expected 9 from bound property, got %v", got)
	}
	if got := ctx.Get("view", "list", false); got != "week" {
		t.Fatalf("expected week from bound method, got %v", got)
	}
	if got := ctx.Get("broken", "fallback", false); got != "fallback" {
		t.Fatalf("expected erroring bound method to fall back, got %v", got)
	}
	if got := ctx.Get("missing", "fallback", false); got != "fallback" {
		t.Fatalf("expected missing bound property to fall back, got %v", got)
	}
}

func TestBoundPropOnMapBinding(t *testing.T) {
	env := newTestEnv()
	env.container["config"] = map[string]any{"region": "eu-west"}

	registry := NewRegistry()
	registry.Register("region", Spec{
		Read: []Location{At(KindBoundProp, Member("config", "region"))},
	})
	ctx := newTestContext(t, env, registry)

	if got := ctx.Get("region", "us-east", false); got != "eu-west" {
		t.Fatalf("expected eu-west from map binding, got %v", got)
	}
}

func TestFuncStrategyInlineAndRegistered(t *testing.T) {
	env := newTestEnv()
	if err := env.functions.Register("current_view", func(...any) (any, error) {
		return "day", nil
	}); err != nil {
		t.Fatalf("unexpected register error: %v", err)
	}

	registry := NewRegistry()
	registry.Register("inline", Spec{
		Read: []Location{At(KindFunc, Callback(func(...any) (any, error) {
			return "from-callback", nil
		}))},
	})
	registry.Register("registered", Spec{
		Read: []Location{At(KindFunc, Name("current_view"))},
	})
	registry.Register("unregistered", Spec{
		Read: []Location{At(KindFunc, Name("nope"))},
	})
	ctx := newTestContext(t, env, registry)

	if got := ctx.Get("inline", nil, false); got != "from-callback" {
		t.Fatalf("expected callback value, got %v", got)
	}
	if got := ctx.Get("registered", nil, false); got != "day" {
		t.Fatalf("expected registered function value, got %v", got)
	}
	if got := ctx.Get("unregistered", "fallback", false); got != "fallback" {
		t.Fatalf("expected missing function to fall back, got %v", got)
	}
}

func TestFilterStrategyAdoptsFirstNonDefault(t *testing.T) {
	env := newTestEnv()
	env.bus.Add("filters.noop", 10, func(value any, _ ...any) any {
		return value
	})
	env.bus.Add("filters.color", 10, func(value any, _ ...any) any {
		return "filtered"
	})

	registry := NewRegistry()
	registry.Register("color", Spec{
		Read: []Location{At(KindFilter, Name("filters.noop"), Name("filters.color"))},
	})
	ctx := newTestContext(t, env, registry)

	// The first tag returns the default unchanged and is skipped; the second
	// differs and wins.
	if got := ctx.Get("color", "red", false); got != "filtered" {
		t.Fatalf("expected filtered, got %v", got)
	}
}

func TestGlobalVarIsWriteOnly(t *testing.T) {
	env := newTestEnv()
	env.globals["color"] = "blue"

	registry := NewRegistry()
	registry.Register("color", Spec{
		Read: []Location{At(KindGlobalVar, Name("color"))},
	})
	ctx := newTestContext(t, env, registry)

	if got := ctx.Get("color", "red", false); got != "red" {
		t.Fatalf("expected global_var read location to fall through, got %v", got)
	}
}

func TestPluginOptionAndOptionAreSeparateStores(t *testing.T) {
	env := newTestEnv()
	env.pluginOpts["per_page"] = 5
	env.options["per_page"] = 11

	registry := NewRegistry()
	registry.Register("per_page", Spec{
		Read: []Location{
			At(KindPluginOption, Name("per_page")),
			At(KindOption, Name("per_page")),
		},
	})
	ctx := newTestContext(t, env, registry)

	if got := ctx.Get("per_page", 0, false); got != 5 {
		t.Fatalf("expected plugin option to win, got %v", got)
	}
}

func TestNilCollaboratorsReportAbsence(t *testing.T) {
	registry := NewRegistry()
	registry.Register("color", Spec{
		Read: []Location{
			At(KindRequestVar, Name("color")),
			At(KindTransient, Name("color")),
			At(KindConstant, Name("color")),
		},
	})
	ctx, err := New(registry, Environment{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := ctx.Get("color", "red", false); got != "red" {
		t.Fatalf("expected nil collaborators to fall back, got %v", got)
	}
}
