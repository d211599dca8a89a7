package resolve

import (
	"testing"
	"time"
)

var evaluatorFactories = []struct {
	name string
	new  func(cache ProgramCache, registry *FunctionRegistry) Evaluator
}{
	{
		name: "expr",
		new: func(cache ProgramCache, registry *FunctionRegistry) Evaluator {
			opts := []ExprEvaluatorOption{}
			if cache != nil {
				opts = append(opts, ExprWithProgramCache(cache))
			}
			if registry != nil {
				opts = append(opts, ExprWithFunctionRegistry(registry))
			}
			return NewExprEvaluator(opts...)
		},
	},
	{
		name: "cel",
		new: func(cache ProgramCache, registry *FunctionRegistry) Evaluator {
			opts := []CELEvaluatorOption{}
			if cache != nil {
				opts = append(opts, CELWithProgramCache(cache))
			}
			if registry != nil {
				opts = append(opts, CELWithFunctionRegistry(registry))
			}
			return NewCELEvaluator(opts...)
		},
	},
}

type fakeProgramCache struct {
	store  map[string]any
	hits   int
	misses int
}

func (c *fakeProgramCache) Get(key string) (any, bool) {
	if c.store == nil {
		c.store = make(map[string]any)
	}
	value, ok := c.store[key]
	if ok {
		c.hits++
		return value, true
	}
	c.misses++
	return nil, false
}

func (c *fakeProgramCache) Set(key string, value any) {
	if c.store == nil {
		c.store = make(map[string]any)
	}
	c.store[key] = value
}

func TestEvaluatorsSeeValueAndKey(t *testing.T) {
	for _, factory := range evaluatorFactories {
		t.Run(factory.name, func(t *testing.T) {
			evaluator := factory.new(nil, nil)
			result, err := evaluator.Evaluate(RuleContext{Value: 10, Key: "color"}, `value == 10 && key == "color"`)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != true {
				t.Fatalf("expected true, got %v (%T)", result, result)
			}
		})
	}
}

func TestEvaluatorsRejectEmptyExpression(t *testing.T) {
	for _, factory := range evaluatorFactories {
		t.Run(factory.name, func(t *testing.T) {
			evaluator := factory.new(nil, nil)
			if _, err := evaluator.Evaluate(RuleContext{}, ""); err == nil {
				t.Fatalf("expected error for empty expression")
			}
			if _, err := evaluator.Compile(""); err == nil {
				t.Fatalf("expected compile error for empty expression")
			}
		})
	}
}

func TestEvaluatorProgramCacheReuse(t *testing.T) {
	for _, factory := range evaluatorFactories {
		t.Run(factory.name, func(t *testing.T) {
			cache := &fakeProgramCache{}
			evaluator := factory.new(cache, nil)
			for i := 0; i < 3; i++ {
				if _, err := evaluator.Evaluate(RuleContext{Value: i}, "value >= 0"); err != nil {
					t.Fatalf("unexpected error on iteration %d: %v", i, err)
				}
			}
			if cache.misses != 1 {
				t.Fatalf("expected one compile miss, got %d", cache.misses)
			}
			if cache.hits != 2 {
				t.Fatalf("expected two cache hits, got %d", cache.hits)
			}
		})
	}
}

func TestEvaluatorsDefaultNow(t *testing.T) {
	ctx := RuleContext{}.withDefaults()
	if ctx.Now == nil {
		t.Fatalf("expected defaulted timestamp")
	}
	if time.Since(*ctx.Now) > time.Minute {
		t.Fatalf("defaulted timestamp too far in the past: %v", *ctx.Now)
	}
	if ctx.Args == nil || ctx.Metadata == nil {
		t.Fatalf("expected defaulted args and metadata maps")
	}
}

func TestExprEvaluatorFunctionRegistry(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("double", func(args ...any) (any, error) {
		return args[0].(int) * 2, nil
	}); err != nil {
		t.Fatalf("unexpected register error: %v", err)
	}

	evaluator := NewExprEvaluator(ExprWithFunctionRegistry(registry))
	result, err := evaluator.Evaluate(RuleContext{Value: 21}, "double(value)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != 42 {
		t.Fatalf("expected 42, got %v", result)
	}
}

func TestCELEvaluatorCallFunction(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("greet", func(args ...any) (any, error) {
		return "hello " + args[0].(string), nil
	}); err != nil {
		t.Fatalf("unexpected register error: %v", err)
	}

	if err := registry.Register("join", func(args ...any) (any, error) {
		return args[0].(string) + "-" + args[1].(string) + "-" + args[2].(string), nil
	}); err != nil {
		t.Fatalf("unexpected register error: %v", err)
	}

	evaluator := NewCELEvaluator(CELWithFunctionRegistry(registry))
	result, err := evaluator.Evaluate(RuleContext{}, `call("greet", "world")`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "hello world" {
		t.Fatalf("expected greeting, got %v", result)
	}

	// Each argument count dispatches through its own overload.
	result, err = evaluator.Evaluate(RuleContext{}, `call("join", "a", "b", "c")`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "a-b-c" {
		t.Fatalf("expected joined args, got %v", result)
	}
}

func TestCompiledRuleReusableAcrossContexts(t *testing.T) {
	for _, factory := range evaluatorFactories {
		t.Run(factory.name, func(t *testing.T) {
			evaluator := factory.new(nil, nil)
			rule, err := evaluator.Compile("value == 1")
			if err != nil {
				t.Fatalf("unexpected compile error: %v", err)
			}

			result, err := rule.Evaluate(RuleContext{Value: 1})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != true {
				t.Fatalf("expected true, got %v", result)
			}

			result, err = rule.Evaluate(RuleContext{Value: 2})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != false {
				t.Fatalf("expected false, got %v", result)
			}
		})
	}
}

func TestFunctionRegistryRejectsDuplicates(t *testing.T) {
	registry := NewFunctionRegistry()
	fn := func(...any) (any, error) { return nil, nil }
	if err := registry.Register("Lookup", fn); err != nil {
		t.Fatalf("unexpected register error: %v", err)
	}
	// Names are case-insensitive.
	if err := registry.Register("lookup", fn); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if !registry.Exists("LOOKUP") {
		t.Fatalf("expected case-insensitive lookup")
	}
}
