package gsim

import (
	"fmt"
	"sort"
)

// Registry holds the ground-motion models available to a single application
// instance, keyed by the name used in GSIM logic-tree branches.
type Registry struct {
	models map[string]Model
}

// New creates a Registry pre-populated with the built-in models.
func New() *Registry {
	r := &Registry{models: make(map[string]Model)}
	r.Register(&TruncNormal{})
	r.Register(&ExpDecay{})
	return r
}

// Register adds a model to the registry. Registering two models under the
// same name is a programmer error and panics.
func (r *Registry) Register(m Model) {
	if _, dup := r.models[m.Name()]; dup {
		panic(fmt.Sprintf("gsim: model %q registered twice", m.Name()))
	}
	r.models[m.Name()] = m
}

// Resolve performs a strict parity check between the names referenced by the
// GSIM logic tree and the registered Go implementations, and returns the
// resolved name -> model map. A name with no implementation is a fatal
// configuration error.
func (r *Registry) Resolve(names []string) (map[string]Model, error) {
	resolved := make(map[string]Model, len(names))
	var missing []string
	for _, name := range names {
		m, ok := r.models[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		resolved[name] = m
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("gsim: logic tree references unregistered models %v", missing)
	}
	return resolved, nil
}

// Names returns the registered model names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
