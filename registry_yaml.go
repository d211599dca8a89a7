package resolve

import (
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidSpec indicates a declarative registry document that cannot be
// mapped onto the location model.
var ErrInvalidSpec = errors.New("resolve: invalid location spec")

// LoadOption configures the declarative registry loader.
type LoadOption func(*loadConfig)

type loadConfig struct {
	evaluator Evaluator
}

// LoadWithEvaluator sets the evaluator compiled orm_transform expressions run
// on. Defaults to the expr engine.
func LoadWithEvaluator(evaluator Evaluator) LoadOption {
	return func(cfg *loadConfig) {
		cfg.evaluator = evaluator
	}
}

// LoadRegistry builds a Registry from a YAML document. The document maps
// logical keys to read/write location lists:
//
//	keys:
//	  posts_per_page:
//	    orm_arg: posts_per_page
//	    orm_transform: "int(value)"
//	    read:
//	      - kind: request_var
//	        targets: [posts_per_page]
//	      - kind: static_prop
//	        targets:
//	          - owner: Settings
//	            member: PostsPerPage
//	    write:
//	      - kind: option
//	        targets: [posts_per_page]
//
// Targets are either bare names or mappings with name/owner, member, and ttl
// fields. orm_arg accepts a string alias or the literal false to drop the key
// from the ORM-args projection. orm_transform is an expression evaluated with
// the resolved value bound to "value".
func LoadRegistry(r io.Reader, opts ...LoadOption) (*Registry, error) {
	cfg := loadConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.evaluator == nil {
		cfg.evaluator = NewExprEvaluator()
	}

	var doc registryDoc
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}

	registry := NewRegistry()
	for key, entry := range doc.Keys {
		spec, err := entry.spec(cfg.evaluator)
		if err != nil {
			return nil, fmt.Errorf("%w: key %q: %v", ErrInvalidSpec, key, err)
		}
		registry.Register(key, spec)
	}
	return registry, nil
}

type registryDoc struct {
	Keys map[string]specDoc `yaml:"keys"`
}

type specDoc struct {
	Read         []locationDoc `yaml:"read"`
	Write        []locationDoc `yaml:"write"`
	ORMArg       any           `yaml:"orm_arg"`
	ORMTransform string        `yaml:"orm_transform"`
}

type locationDoc struct {
	Kind    string      `yaml:"kind"`
	Targets []targetDoc `yaml:"targets"`
}

type targetDoc struct {
	Name   string
	Member string
	TTL    time.Duration
}

// UnmarshalYAML accepts either a bare scalar name or a mapping with
// name/owner, member, and ttl fields.
func (t *targetDoc) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&t.Name)
	case yaml.MappingNode:
		var doc struct {
			Name   string `yaml:"name"`
			Owner  string `yaml:"owner"`
			Member string `yaml:"member"`
			TTL    string `yaml:"ttl"`
		}
		if err := node.Decode(&doc); err != nil {
			return err
		}
		t.Name = doc.Name
		if doc.Owner != "" {
			t.Name = doc.Owner
		}
		t.Member = doc.Member
		if doc.TTL != "" {
			ttl, err := time.ParseDuration(doc.TTL)
			if err != nil {
				return fmt.Errorf("invalid ttl %q: %w", doc.TTL, err)
			}
			t.TTL = ttl
		}
		return nil
	default:
		return fmt.Errorf("target must be a name or a mapping")
	}
}

func (d specDoc) spec(evaluator Evaluator) (Spec, error) {
	spec := Spec{}

	read, err := locations(d.Read)
	if err != nil {
		return Spec{}, err
	}
	write, err := locations(d.Write)
	if err != nil {
		return Spec{}, err
	}
	spec.Read = read
	spec.Write = write

	switch arg := d.ORMArg.(type) {
	case nil:
	case string:
		spec.ORMArg = arg
	case bool:
		if arg {
			return Spec{}, fmt.Errorf("orm_arg must be an alias or false")
		}
		spec.OmitORMArg = true
	default:
		return Spec{}, fmt.Errorf("orm_arg must be an alias or false")
	}

	if d.ORMTransform != "" {
		compiled, err := evaluator.Compile(d.ORMTransform)
		if err != nil {
			return Spec{}, err
		}
		spec.ORMTransform = func(value any) any {
			result, err := compiled.Evaluate(RuleContext{Value: value})
			if err != nil {
				return value
			}
			return result
		}
	}
	return spec, nil
}

func locations(docs []locationDoc) ([]Location, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	out := make([]Location, 0, len(docs))
	for _, doc := range docs {
		kind := ParseKind(doc.Kind)
		if kind == KindUnknown {
			return nil, fmt.Errorf("unknown location kind %q", doc.Kind)
		}
		if len(doc.Targets) == 0 {
			return nil, fmt.Errorf("location kind %q has no targets", doc.Kind)
		}
		targets := make([]Target, 0, len(doc.Targets))
		for _, target := range doc.Targets {
			targets = append(targets, Target{
				Name:   target.Name,
				Member: target.Member,
				TTL:    target.TTL,
			})
		}
		out = append(out, Location{Kind: kind, Targets: targets})
	}
	return out, nil
}
