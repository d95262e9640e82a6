package streams

import "sync"

// Role identifies the traffic class of a subscription.
type Role int

const (
	// RoleTopic is a public market-data subscription with a dedicated socket.
	RoleTopic Role = iota
	// RoleUserData is a private subscription on the shared user-data socket.
	RoleUserData
)

// String returns the string representation of the role.
func (r Role) String() string {
	switch r {
	case RoleTopic:
		return "topic"
	case RoleUserData:
		return "user-data"
	default:
		return "unknown"
	}
}

// Handle identifies one live subscription. Ids are process-lifetime unique
// and never reused; a closed handle stays closed.
type Handle struct {
	id    int64
	role  Role
	path  string
	state *State
	mgr   *Manager

	mu      sync.Mutex
	closeFn func() error
}

// ID returns the subscription id.
func (h *Handle) ID() int64 {
	return h.id
}

// Role returns the subscription's traffic class.
func (h *Handle) Role() Role {
	return h.role
}

// Path returns the stream path this handle subscribed to.
func (h *Handle) Path() string {
	return h.path
}

// State returns the transport's lifecycle state.
func (h *Handle) State() ConnState {
	return h.state.Load()
}

// Close tears down this subscription's transport. Closing an already closed
// handle is a no-op.
func (h *Handle) Close() {
	h.mgr.teardown(h)
}

func (h *Handle) setCloser(fn func() error) {
	h.mu.Lock()
	h.closeFn = fn
	h.mu.Unlock()
}

// closeTransport forces the underlying connection closed, at most once.
func (h *Handle) closeTransport() error {
	h.mu.Lock()
	fn := h.closeFn
	h.closeFn = nil
	h.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn()
}
