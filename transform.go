package resolve

import "github.com/goliatone/go-resolve/hooks"

// NewExprTransform builds a Transform backed by an expression evaluator. The
// expression sees the resolved value as "value" and the logical key as "key".
// Evaluation failures leave the value unchanged, matching the silent-fallback
// error model of the engines.
func NewExprTransform(evaluator Evaluator, expr string) Transform {
	if evaluator == nil || expr == "" {
		return nil
	}
	return func(value any) any {
		result, err := evaluator.Evaluate(RuleContext{Value: value}, expr)
		if err != nil {
			return value
		}
		return result
	}
}

// NewRuleFilter adapts an expression to a hook filter, letting declarative
// registries attach expression-backed callbacks to filter tags and extension
// points. Failures pass the value through untouched.
func NewRuleFilter(evaluator Evaluator, expr string) hooks.Filter {
	if evaluator == nil || expr == "" {
		return nil
	}
	return func(value any, args ...any) any {
		ctx := RuleContext{Value: value}
		if len(args) > 0 {
			if key, ok := args[0].(string); ok {
				ctx.Key = key
			}
		}
		result, err := evaluator.Evaluate(ctx, expr)
		if err != nil {
			return value
		}
		return result
	}
}

// ChainTransforms composes transforms left to right, skipping nil entries.
func ChainTransforms(transforms ...Transform) Transform {
	active := make([]Transform, 0, len(transforms))
	for _, t := range transforms {
		if t != nil {
			active = append(active, t)
		}
	}
	if len(active) == 0 {
		return nil
	}
	return func(value any) any {
		for _, t := range active {
			value = t(value)
		}
		return value
	}
}
