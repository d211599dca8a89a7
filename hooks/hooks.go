// Package hooks provides an ordered filter dispatcher: named extension points
// through which values are threaded, callback by callback, in priority order.
// The resolve package uses it both as a location kind and as its named
// extension points.
package hooks

import (
	"sort"
	"sync"
)

// Filter receives the value threaded through the tag plus any extra
// positional arguments supplied at Apply time, and returns the (possibly
// replaced) value.
type Filter func(value any, args ...any) any

// Dispatcher applies named filter chains. Implementations must be safe for
// concurrent Apply calls.
type Dispatcher interface {
	// Apply threads value through every callback registered for tag, in
	// priority order, and returns the final result. An unknown tag returns
	// value unchanged.
	Apply(tag string, value any, args ...any) any
	// Has reports whether at least one callback is registered for tag.
	Has(tag string) bool
}

type registration struct {
	priority int
	seq      int
	fn       Filter
}

// Bus is the default Dispatcher: callbacks keyed by tag, ordered by ascending
// priority, registration order breaking ties.
type Bus struct {
	mu      sync.RWMutex
	chains  map[string][]registration
	nextSeq int
}

// NewBus constructs an empty dispatcher.
func NewBus() *Bus {
	return &Bus{chains: make(map[string][]registration)}
}

// Add registers fn on tag at the given priority. Lower priorities run first.
// Nil callbacks are dropped.
func (b *Bus) Add(tag string, priority int, fn Filter) {
	if fn == nil || tag == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.chains == nil {
		b.chains = make(map[string][]registration)
	}
	b.nextSeq++
	chain := append(b.chains[tag], registration{priority: priority, seq: b.nextSeq, fn: fn})
	sort.SliceStable(chain, func(i, j int) bool {
		if chain[i].priority == chain[j].priority {
			return chain[i].seq < chain[j].seq
		}
		return chain[i].priority < chain[j].priority
	})
	b.chains[tag] = chain
}

// Apply implements Dispatcher.
func (b *Bus) Apply(tag string, value any, args ...any) any {
	if b == nil {
		return value
	}
	b.mu.RLock()
	chain := b.chains[tag]
	b.mu.RUnlock()
	for _, reg := range chain {
		value = reg.fn(value, args...)
	}
	return value
}

// Has implements Dispatcher.
func (b *Bus) Has(tag string) bool {
	if b == nil {
		return false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.chains[tag]) > 0
}
