package streams

import "sync"

// Registry tracks live subscription handles by id. It carries its own lock;
// nothing else may be held while calling into it.
type Registry struct {
	mu      sync.Mutex
	entries map[int64]*Handle
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[int64]*Handle)}
}

// Add registers a handle.
func (r *Registry) Add(h *Handle) {
	r.mu.Lock()
	r.entries[h.id] = h
	r.mu.Unlock()
}

// Remove deletes the handle with the given id, reporting whether it was
// present. The first remover wins; duplicate close notifications for the
// same handle are no-ops.
func (r *Registry) Remove(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return false
	}
	delete(r.entries, id)
	return true
}

// Get returns the handle with the given id.
func (r *Registry) Get(id int64) (*Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.entries[id]
	return h, ok
}

// Snapshot returns the currently live handles.
func (r *Registry) Snapshot() []*Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	handles := make([]*Handle, 0, len(r.entries))
	for _, h := range r.entries {
		handles = append(handles, h)
	}
	return handles
}

// Len returns the number of live handles.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
