package streams

import "sync/atomic"

// ConnState represents the lifecycle state of a stream's transport.
type ConnState int32

// Stream lifecycle states. There is no reconnecting state: a closed stream
// stays closed, and the caller subscribes again for a fresh one.
const (
	// StateConnecting indicates the transport dial is in flight.
	StateConnecting ConnState = iota
	// StateOpen indicates the transport is established and delivering frames.
	StateOpen
	// StateClosed indicates the transport is gone. Terminal.
	StateClosed
)

// String returns the string representation of the connection state.
func (s ConnState) String() string {
	return [...]string{
		"connecting",
		"open",
		"closed",
	}[s]
}

// State provides thread-safe atomic access to a ConnState value.
type State struct {
	state atomic.Int32
}

// Load returns the current connection state.
func (s *State) Load() ConnState {
	return ConnState(s.state.Load())
}

// Store sets the connection state to the given value.
func (s *State) Store(state ConnState) {
	s.state.Store(int32(state))
}

// CompareAndSwap atomically compares the current state with old and swaps to
// new if equal. It returns true if the swap was performed.
func (s *State) CompareAndSwap(old, new ConnState) bool {
	return s.state.CompareAndSwap(int32(old), int32(new))
}
