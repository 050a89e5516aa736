package fragment

import "sort"

// =============================================================================
// Registry
// =============================================================================

// Registry indexes the loaded service fragments by identifier.
type Registry struct {
	fragments map[string]*ServiceFragment
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{fragments: make(map[string]*ServiceFragment)}
}

// Add indexes a fragment. Returns ErrDuplicateServiceID (wrapped with
// both contributing sources) if the identifier is already taken.
func (r *Registry) Add(f *ServiceFragment) error {
	if existing, ok := r.fragments[f.ID]; ok {
		return NewFragmentError(
			f.Source, f.ID,
			"already defined in "+existing.Source,
			ErrDuplicateServiceID,
		)
	}
	r.fragments[f.ID] = f
	return nil
}

// Len returns the number of indexed fragments.
func (r *Registry) Len() int {
	return len(r.fragments)
}

// Get returns the fragment for id, if present.
func (r *Registry) Get(id string) (*ServiceFragment, bool) {
	f, ok := r.fragments[id]
	return f, ok
}

// IDs returns all service identifiers in lexicographic order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.fragments))
	for id := range r.fragments {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Fragments returns all fragments ordered lexicographically by
// identifier.
func (r *Registry) Fragments() []*ServiceFragment {
	out := make([]*ServiceFragment, 0, len(r.fragments))
	for _, id := range r.IDs() {
		out = append(out, r.fragments[id])
	}
	return out
}

// Select returns the fragments for the given identifiers in
// lexicographic order, regardless of selection order. Duplicate
// identifiers in the selection collapse to one entry. An identifier
// not present in the catalog fails with ErrUnknownService naming it;
// the engine does not guess or skip.
func (r *Registry) Select(ids []string) ([]*ServiceFragment, error) {
	seen := make(map[string]bool, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, ok := r.fragments[id]; !ok {
			return nil, NewFragmentError("", id, "not present in the catalog", ErrUnknownService)
		}
		unique = append(unique, id)
	}
	sort.Strings(unique)

	out := make([]*ServiceFragment, 0, len(unique))
	for _, id := range unique {
		out = append(out, r.fragments[id])
	}
	return out, nil
}
