package action

import (
	"fmt"
	"sync"

	"github.com/rnwolfe/blight/internal/errs"
	"github.com/rnwolfe/blight/internal/tool"
)

// Key is one setting in an action's schema.
type Key struct {
	Name     string
	Required bool
	Doc      string
}

// Spec registers an action under a stable name.
type Spec struct {
	Name  string
	Kinds tool.KindSet
	Doc   string
	Keys  []Key
	New   func(Config) (Action, error)
}

// Instance is a constructed action ready to run.
type Instance struct {
	Name   string
	Kinds  tool.KindSet
	Action Action
}

// Registry maps action names to their specs. It is populated explicitly at
// startup; nothing registers itself.
type Registry struct {
	mu    sync.RWMutex
	specs []Spec
	index map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: map[string]int{}}
}

// Register adds spec. Names must be unique.
func (r *Registry) Register(spec Spec) error {
	if spec.Name == "" || spec.New == nil {
		return fmt.Errorf("action spec %q needs a name and a constructor", spec.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.index[spec.Name]; dup {
		return fmt.Errorf("action %q already registered", spec.Name)
	}
	r.index[spec.Name] = len(r.specs)
	r.specs = append(r.specs, spec)
	return nil
}

// MustRegister is Register for static catalogues; it panics on error.
func (r *Registry) MustRegister(specs ...Spec) {
	for _, s := range specs {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the spec registered under name.
func (r *Registry) Lookup(name string) (Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[name]
	if !ok {
		return Spec{}, false
	}
	return r.specs[i], true
}

// Specs returns every spec in registration order.
func (r *Registry) Specs() []Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Spec, len(r.specs))
	copy(out, r.specs)
	return out
}

// Resolve deduplicates names and constructs each action with the settings
// settings(name) returns. Any unknown name, malformed or invalid settings,
// or constructor failure is a configuration error.
func (r *Registry) Resolve(names []string, settings func(name string) string) ([]Instance, error) {
	names = Dedup(names)
	out := make([]Instance, 0, len(names))
	for _, name := range names {
		spec, ok := r.Lookup(name)
		if !ok {
			return nil, errs.Configf(name, "unknown action")
		}
		raw := ""
		if settings != nil {
			raw = settings(name)
		}
		cfg, err := ParseConfig(name, raw)
		if err != nil {
			return nil, err
		}
		if err := validate(spec, cfg); err != nil {
			return nil, err
		}
		a, err := spec.New(cfg)
		if err != nil {
			if errs.IsConfig(err) {
				return nil, err
			}
			return nil, errs.Configf(name, "constructing action: %v", err)
		}
		out = append(out, Instance{Name: name, Kinds: spec.Kinds, Action: a})
	}
	return out, nil
}
