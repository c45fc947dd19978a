package sit

// Registry is an ordered, immutable collection of SIT definitions.
// Iteration order is registration order, which keeps planning and scoring
// deterministic regardless of Go map ordering.
type Registry struct {
	defs []*Definition
	byID map[string]*Definition
}

// NewRegistry builds a registry from definitions. Duplicate ids fail with
// ConfigError.
func NewRegistry(defs ...*Definition) (*Registry, error) {
	r := &Registry{
		defs: make([]*Definition, 0, len(defs)),
		byID: make(map[string]*Definition, len(defs)),
	}
	for _, d := range defs {
		if d == nil {
			continue
		}
		if _, dup := r.byID[d.ID()]; dup {
			return nil, &ConfigError{Key: d.ID(), Reason: "duplicate SIT id"}
		}
		r.defs = append(r.defs, d)
		r.byID[d.ID()] = d
	}
	return r, nil
}

// Get returns the definition for id.
func (r *Registry) Get(id string) (*Definition, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// IDs returns SIT ids in registration order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.defs))
	for i, d := range r.defs {
		ids[i] = d.ID()
	}
	return ids
}

// Definitions returns the registered definitions (for inspection/testing).
func (r *Registry) Definitions() []*Definition {
	out := make([]*Definition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Matchers returns every definition as a Matcher, in registration order.
func (r *Registry) Matchers() []Matcher {
	out := make([]Matcher, len(r.defs))
	for i, d := range r.defs {
		out[i] = d
	}
	return out
}

func (r *Registry) Len() int { return len(r.defs) }
