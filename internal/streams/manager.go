// Package streams owns WebSocket subscription lifecycles: one socket per
// market-data topic, one shared socket for user-data events, and a registry
// of live handles. There is no automatic reconnection; a closed stream is
// permanently closed and the caller subscribes again.
package streams

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/lxzan/gws"
	"github.com/rs/zerolog"

	"mbx/pkg/core"
)

// DialFunc opens a WebSocket to addr and starts its read loop, delivering
// events to handler. It returns a function that forces the transport closed.
type DialFunc func(handler gws.Event, addr string) (func() error, error)

func gwsDial(handler gws.Event, addr string) (func() error, error) {
	socket, _, err := gws.NewClient(handler, &gws.ClientOption{Addr: addr})
	if err != nil {
		return nil, err
	}
	go socket.ReadLoop()
	return func() error { return socket.NetConn().Close() }, nil
}

// Config holds the stream manager's settings.
type Config struct {
	// BaseURL is the WebSocket root; stream paths are appended to it.
	BaseURL string
	// PingInterval and PongWait size the read deadline; the server pings on
	// its own schedule and each ping or pong pushes the deadline out again.
	PingInterval time.Duration
	PongWait     time.Duration
	// Dial replaces the gws dialer, for tests.
	Dial DialFunc
}

// Manager opens, tracks, and tears down stream subscriptions.
type Manager struct {
	cfg      Config
	logger   zerolog.Logger
	registry *Registry
	nextID   atomic.Int64
	dial     DialFunc

	userMu    sync.Mutex
	user      *Handle
	onAccount func([]byte)
	onOrder   func([]byte)
}

// NewManager creates a Manager. Zero-valued config fields get defaults.
func NewManager(cfg Config, logger zerolog.Logger) *Manager {
	if cfg.PingInterval == 0 {
		cfg.PingInterval = 3 * time.Minute
	}
	if cfg.PongWait == 0 {
		cfg.PongWait = 10 * time.Minute
	}
	dial := cfg.Dial
	if dial == nil {
		dial = gwsDial
	}
	return &Manager{
		cfg:      cfg,
		logger:   logger,
		registry: NewRegistry(),
		dial:     dial,
	}
}

// Subscribe opens a dedicated socket for a topic stream path. Every raw
// frame is delivered to onMessage on the socket's read-loop goroutine; the
// payload slice is reused after the callback returns.
func (m *Manager) Subscribe(path string, onMessage func([]byte)) (*Handle, error) {
	return m.open(RoleTopic, path, onMessage)
}

// SubscribeAccount attaches the account-update callback to the shared
// user-data socket, dialing it on first use.
func (m *Manager) SubscribeAccount(path string, onMessage func([]byte)) (*Handle, error) {
	return m.subscribeUser(path, onMessage, nil)
}

// SubscribeOrders attaches the order-update callback to the shared
// user-data socket, dialing it on first use.
func (m *Manager) SubscribeOrders(path string, onMessage func([]byte)) (*Handle, error) {
	return m.subscribeUser(path, nil, onMessage)
}

// UnsubscribeAccount clears the account callback. The user-data transport
// closes once neither callback remains.
func (m *Manager) UnsubscribeAccount() {
	m.clearUser(true, false)
}

// UnsubscribeOrders clears the order callback. The user-data transport
// closes once neither callback remains.
func (m *Manager) UnsubscribeOrders() {
	m.clearUser(false, true)
}

// Close tears down the subscription with the given id. Unknown ids are
// no-ops: the stream may already have closed from the remote side.
func (m *Manager) Close(id int64) {
	if h, ok := m.registry.Get(id); ok {
		m.teardown(h)
	}
}

// CloseAll tears down every live subscription and clears the user-data
// callbacks.
func (m *Manager) CloseAll() {
	for _, h := range m.registry.Snapshot() {
		m.teardown(h)
	}
	m.userMu.Lock()
	m.onAccount = nil
	m.onOrder = nil
	m.userMu.Unlock()
}

// Len returns the number of live subscriptions.
func (m *Manager) Len() int {
	return m.registry.Len()
}

func (m *Manager) open(role Role, path string, onMessage func([]byte)) (*Handle, error) {
	id := m.nextID.Add(1)
	h := &Handle{id: id, role: role, path: path, state: &State{}, mgr: m}
	h.state.Store(StateConnecting)
	m.registry.Add(h)

	closer, err := m.dial(&socketHandler{mgr: m, handle: h, onMessage: onMessage}, m.streamURL(path))
	if err != nil {
		m.registry.Remove(id)
		h.state.Store(StateClosed)
		m.logger.Error().Err(err).Str("path", path).Msg("stream dial failed")
		return nil, core.NewSocketOpenError(path, err)
	}
	h.setCloser(closer)
	if h.State() == StateClosed {
		// The read loop already ended between dial and now.
		_ = h.closeTransport()
	}

	m.logger.Info().
		Int64("stream_id", id).
		Str("path", path).
		Str("role", role.String()).
		Msg("stream subscribed")
	return h, nil
}

// subscribeUser attaches one callback to the shared user-data socket.
// Exactly one of onAccount and onOrder is non-nil per call. A live socket
// for the same path is reused; a different path (rotated listen key)
// replaces the transport while keeping the other role's callback.
func (m *Manager) subscribeUser(path string, onAccount, onOrder func([]byte)) (*Handle, error) {
	m.userMu.Lock()
	if m.user != nil && m.user.path == path && m.user.State() != StateClosed {
		m.setUserCallbacks(onAccount, onOrder)
		h := m.user
		m.userMu.Unlock()
		return h, nil
	}
	stale := m.user
	m.userMu.Unlock()

	if stale != nil {
		m.teardown(stale)
	}

	h, err := m.open(RoleUserData, path, m.dispatchUserData)
	if err != nil {
		return nil, err
	}

	m.userMu.Lock()
	m.setUserCallbacks(onAccount, onOrder)
	if m.user != nil && m.user.State() != StateClosed {
		// A racing subscription dialed first; keep its socket.
		winner := m.user
		m.userMu.Unlock()
		m.teardown(h)
		return winner, nil
	}
	m.user = h
	m.userMu.Unlock()
	return h, nil
}

// setUserCallbacks is called with userMu held.
func (m *Manager) setUserCallbacks(onAccount, onOrder func([]byte)) {
	if onAccount != nil {
		m.onAccount = onAccount
	}
	if onOrder != nil {
		m.onOrder = onOrder
	}
}

func (m *Manager) clearUser(account, orders bool) {
	m.userMu.Lock()
	if account {
		m.onAccount = nil
	}
	if orders {
		m.onOrder = nil
	}
	idle := m.onAccount == nil && m.onOrder == nil
	h := m.user
	m.userMu.Unlock()

	if idle && h != nil {
		m.teardown(h)
	}
}

// dispatchUserData routes a user-data frame by its "e" event marker. Unknown
// markers are dropped so new server-side event types stay harmless.
func (m *Manager) dispatchUserData(data []byte) {
	node, err := sonic.Get(data, "e")
	if err != nil {
		m.logger.Debug().Err(err).Msg("user-data frame without event marker")
		return
	}
	marker, err := node.String()
	if err != nil {
		return
	}

	m.userMu.Lock()
	var cb func([]byte)
	switch marker {
	case core.EventAccountUpdate:
		cb = m.onAccount
	case core.EventOrderUpdate:
		cb = m.onOrder
	}
	m.userMu.Unlock()

	if cb != nil {
		cb(data)
	}
}

// teardown removes the handle from the registry and closes its transport.
// Local closes and remote close notifications both funnel here; the first
// caller wins and the rest are no-ops.
func (m *Manager) teardown(h *Handle) {
	if !m.registry.Remove(h.id) {
		return
	}
	h.state.Store(StateClosed)
	if err := h.closeTransport(); err != nil {
		m.logger.Debug().Err(err).Int64("stream_id", h.id).Msg("transport close")
	}

	if h.role == RoleUserData {
		m.userMu.Lock()
		if m.user == h {
			// Callbacks stay registered; a later subscribe re-attaches them
			// to a fresh socket.
			m.user = nil
		}
		m.userMu.Unlock()
	}

	m.logger.Info().
		Int64("stream_id", h.id).
		Str("path", h.path).
		Str("role", h.role.String()).
		Msg("stream closed")
}

func (m *Manager) streamURL(path string) string {
	return strings.TrimRight(m.cfg.BaseURL, "/") + "/" + path
}

func (m *Manager) deadline() time.Duration {
	return m.cfg.PingInterval + m.cfg.PongWait
}

// socketHandler adapts one subscription to the gws event interface. All
// methods run on the socket's read-loop goroutine.
type socketHandler struct {
	mgr       *Manager
	handle    *Handle
	onMessage func([]byte)
}

func (h *socketHandler) OnOpen(socket *gws.Conn) {
	h.handle.state.CompareAndSwap(StateConnecting, StateOpen)
	_ = socket.SetDeadline(time.Now().Add(h.mgr.deadline()))
	h.mgr.logger.Info().
		Int64("stream_id", h.handle.id).
		Str("path", h.handle.path).
		Msg("stream connected")
}

func (h *socketHandler) OnClose(socket *gws.Conn, err error) {
	if err != nil {
		h.mgr.logger.Warn().
			Err(err).
			Int64("stream_id", h.handle.id).
			Str("path", h.handle.path).
			Msg("stream disconnected")
	}
	h.mgr.teardown(h.handle)
}

func (h *socketHandler) OnPing(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(h.mgr.deadline()))
	// The server expects its ping payload mirrored back.
	_ = socket.WritePong(payload)
}

func (h *socketHandler) OnPong(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(h.mgr.deadline()))
}

func (h *socketHandler) OnMessage(socket *gws.Conn, message *gws.Message) {
	defer message.Close()

	data := message.Bytes()
	if len(data) == 0 {
		return
	}
	h.onMessage(data)
}
