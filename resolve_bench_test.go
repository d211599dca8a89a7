package resolve

import (
	"fmt"
	"testing"
)

func BenchmarkGetLargeRegistry(b *testing.B) {
	env := newTestEnv()
	env.request["key_0"] = "hit"

	registry := NewRegistry()
	for i := 0; i < 500; i++ {
		name := fmt.Sprintf("key_%d", i)
		registry.Register(name, Spec{
			Read: []Location{At(KindRequestVar, Name(name))},
		})
	}
	ctx, err := New(registry, env.environment())
	if err != nil {
		b.Fatalf("context: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if got := ctx.Get("key_0", nil, true); got != "hit" {
			b.Fatalf("resolve: %v", got)
		}
	}
}
