// Package memenv provides in-memory implementations of every collaborator
// interface the resolve package consumes. They are intended for tests and
// examples and make no persistence assumptions.
package memenv

import (
	"sync"
	"time"

	resolve "github.com/goliatone/go-resolve"
	"github.com/goliatone/go-resolve/hooks"
)

// Request is an in-memory request-parameter source. Parameters live in
// method-scoped buckets consulted in a fixed order, mirroring hosts that
// merge GET/POST/PUT/DELETE stores.
type Request struct {
	mu      sync.RWMutex
	buckets map[string]map[string]any
}

var bucketOrder = []string{"GET", "POST", "PUT", "DELETE"}

// NewRequest constructs an empty request source.
func NewRequest() *Request {
	return &Request{buckets: map[string]map[string]any{}}
}

// SetMethod stores a parameter in one method bucket.
func (r *Request) SetMethod(method, name string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bucket := r.buckets[method]
	if bucket == nil {
		bucket = map[string]any{}
		r.buckets[method] = bucket
	}
	bucket[name] = value
}

// Set stores a parameter in the GET bucket.
func (r *Request) Set(name string, value any) {
	r.SetMethod("GET", name, value)
}

// Lookup implements resolve.RequestSource, scanning buckets in order.
func (r *Request) Lookup(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, method := range bucketOrder {
		if value, ok := r.buckets[method][name]; ok {
			return value, true
		}
	}
	return nil, false
}

// Store implements resolve.RequestWriter, writing to the GET bucket.
func (r *Request) Store(name string, value any) {
	r.Set(name, value)
}

// Query is an in-memory query object with separate variable and property
// tables.
type Query struct {
	mu    sync.RWMutex
	vars  map[string]any
	props map[string]any
}

// NewQuery constructs an empty query object.
func NewQuery() *Query {
	return &Query{vars: map[string]any{}, props: map[string]any{}}
}

func (q *Query) Var(name string) (any, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	value, ok := q.vars[name]
	return value, ok
}

func (q *Query) SetVar(name string, value any) {
	q.mu.Lock()
	q.vars[name] = value
	q.mu.Unlock()
}

func (q *Query) Prop(name string) (any, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	value, ok := q.props[name]
	return value, ok
}

func (q *Query) SetProp(name string, value any) {
	q.mu.Lock()
	q.props[name] = value
	q.mu.Unlock()
}

// Options is an in-memory persisted option store.
type Options struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewOptions constructs an empty option store.
func NewOptions() *Options {
	return &Options{values: map[string]any{}}
}

func (o *Options) Get(name string) (any, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	value, ok := o.values[name]
	return value, ok
}

func (o *Options) Set(name string, value any) error {
	o.mu.Lock()
	o.values[name] = value
	o.mu.Unlock()
	return nil
}

type transientRecord struct {
	value     any
	expiresAt time.Time
}

// Transients is an in-memory expiring store. A zero TTL stores forever.
type Transients struct {
	mu      sync.RWMutex
	records map[string]transientRecord
	now     func() time.Time
}

// NewTransients constructs an empty transient store.
func NewTransients() *Transients {
	return &Transients{records: map[string]transientRecord{}, now: time.Now}
}

func (t *Transients) Get(name string) (any, bool) {
	t.mu.RLock()
	record, ok := t.records[name]
	t.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !record.expiresAt.IsZero() && t.now().After(record.expiresAt) {
		t.mu.Lock()
		delete(t.records, name)
		t.mu.Unlock()
		return nil, false
	}
	return record.value, true
}

func (t *Transients) Set(name string, value any, ttl time.Duration) error {
	record := transientRecord{value: value}
	if ttl > 0 {
		record.expiresAt = t.now().Add(ttl)
	}
	t.mu.Lock()
	t.records[name] = record
	t.mu.Unlock()
	return nil
}

// Constants is an in-memory constant table. Names may carry the namespaced
// "Owner::NAME" form; the table treats names as opaque.
type Constants struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConstants constructs an empty constant table.
func NewConstants() *Constants {
	return &Constants{values: map[string]any{}}
}

func (c *Constants) Defined(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.values[name]
	return ok
}

func (c *Constants) Value(name string) any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values[name]
}

// Define stores value under name. Redefining an existing constant is a
// silent no-op.
func (c *Constants) Define(name string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.values[name]; ok {
		return
	}
	c.values[name] = value
}

// Globals is an in-memory global-variable table.
type Globals struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewGlobals constructs an empty global table.
func NewGlobals() *Globals {
	return &Globals{values: map[string]any{}}
}

func (g *Globals) Get(name string) (any, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	value, ok := g.values[name]
	return value, ok
}

func (g *Globals) Set(name string, value any) {
	g.mu.Lock()
	g.values[name] = value
	g.mu.Unlock()
}

// Statics is an in-memory static registry: per-class property tables and
// method tables.
type Statics struct {
	mu      sync.RWMutex
	props   map[string]map[string]any
	methods map[string]map[string]resolve.Func
}

// NewStatics constructs an empty static registry.
func NewStatics() *Statics {
	return &Statics{
		props:   map[string]map[string]any{},
		methods: map[string]map[string]resolve.Func{},
	}
}

// RegisterClass makes class known, with optional initial properties.
func (s *Statics) RegisterClass(class string, props map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	table := s.props[class]
	if table == nil {
		table = map[string]any{}
		s.props[class] = table
	}
	for name, value := range props {
		table[name] = value
	}
}

// RegisterMethod attaches a static method to class, registering the class
// when needed.
func (s *Statics) RegisterMethod(class, method string, fn resolve.Func) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.props[class] == nil {
		s.props[class] = map[string]any{}
	}
	table := s.methods[class]
	if table == nil {
		table = map[string]resolve.Func{}
		s.methods[class] = table
	}
	table[method] = fn
}

func (s *Statics) ClassExists(class string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.props[class]
	return ok
}

func (s *Statics) StaticProp(class, prop string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.props[class][prop]
	return value, ok
}

func (s *Statics) SetStaticProp(class, prop string, value any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	table, ok := s.props[class]
	if !ok {
		return false
	}
	if _, ok := table[prop]; !ok {
		return false
	}
	table[prop] = value
	return true
}

func (s *Statics) CallStatic(class, method string, args ...any) (any, bool) {
	s.mu.RLock()
	fn := s.methods[class][method]
	s.mu.RUnlock()
	if fn == nil {
		return nil, false
	}
	value, err := fn(args...)
	if err != nil {
		return nil, false
	}
	return value, true
}

// Container is an in-memory dependency container.
type Container struct {
	mu       sync.RWMutex
	bindings map[string]any
}

// NewContainer constructs an empty container.
func NewContainer() *Container {
	return &Container{bindings: map[string]any{}}
}

// Bind registers obj under name.
func (c *Container) Bind(name string, obj any) {
	c.mu.Lock()
	c.bindings[name] = obj
	c.mu.Unlock()
}

func (c *Container) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.bindings[name]
	return ok
}

func (c *Container) Resolve(name string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	obj, ok := c.bindings[name]
	return obj, ok
}

// Env bundles one of everything.
type Env struct {
	Request    *Request
	Query      *Query
	PluginOpts *Options
	Options    *Options
	Transients *Transients
	Constants  *Constants
	Globals    *Globals
	Statics    *Statics
	Container  *Container
	Functions  *resolve.FunctionRegistry
	Hooks      *hooks.Bus
}

// New constructs a fully populated in-memory environment.
func New() *Env {
	return &Env{
		Request:    NewRequest(),
		Query:      NewQuery(),
		PluginOpts: NewOptions(),
		Options:    NewOptions(),
		Transients: NewTransients(),
		Constants:  NewConstants(),
		Globals:    NewGlobals(),
		Statics:    NewStatics(),
		Container:  NewContainer(),
		Functions:  resolve.NewFunctionRegistry(),
		Hooks:      hooks.NewBus(),
	}
}

// Environment adapts the bundle to the resolve.Environment the engines
// consume.
func (e *Env) Environment() resolve.Environment {
	return resolve.Environment{
		Request:       e.Request,
		Query:         e.Query,
		PluginOptions: e.PluginOpts,
		Options:       e.Options,
		Transients:    e.Transients,
		Constants:     e.Constants,
		Globals:       e.Globals,
		Statics:       e.Statics,
		Container:     e.Container,
		Functions:     e.Functions,
		Hooks:         e.Hooks,
	}
}
