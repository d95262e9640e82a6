package streams

import (
	"errors"
	"sync"
	"testing"

	"github.com/lxzan/gws"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mbx/pkg/core"
)

// fakeDialer records every dial and hands back inspectable closers, so
// lifecycle tests run without sockets.
type fakeDialer struct {
	mu       sync.Mutex
	handlers []gws.Event
	addrs    []string
	closed   []int
	failNext bool
}

func (d *fakeDialer) dial(handler gws.Event, addr string) (func() error, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failNext {
		d.failNext = false
		return nil, errors.New("connection refused")
	}
	idx := len(d.handlers)
	d.handlers = append(d.handlers, handler)
	d.addrs = append(d.addrs, addr)
	return func() error {
		d.mu.Lock()
		d.closed = append(d.closed, idx)
		d.mu.Unlock()
		return nil
	}, nil
}

func (d *fakeDialer) dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.handlers)
}

func (d *fakeDialer) closedCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.closed)
}

func (d *fakeDialer) handler(i int) gws.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.handlers[i]
}

func newTestManager(d *fakeDialer) *Manager {
	return NewManager(Config{
		BaseURL: "wss://stream.test:9443/ws",
		Dial:    d.dial,
	}, zerolog.Nop())
}

func TestManager_SubscribeAssignsMonotonicIDs(t *testing.T) {
	d := &fakeDialer{}
	m := newTestManager(d)

	h1, err := m.Subscribe("btcusdt@aggTrade", func([]byte) {})
	require.NoError(t, err)
	h2, err := m.Subscribe("ethusdt@depth", func([]byte) {})
	require.NoError(t, err)

	assert.Equal(t, int64(1), h1.ID())
	assert.Equal(t, int64(2), h2.ID())
	assert.Equal(t, RoleTopic, h1.Role())
	assert.Equal(t, 2, m.Len())

	assert.Equal(t, "wss://stream.test:9443/ws/btcusdt@aggTrade", d.addrs[0])
	assert.Equal(t, "wss://stream.test:9443/ws/ethusdt@depth", d.addrs[1])
}

func TestManager_DialFailureConsumesID(t *testing.T) {
	d := &fakeDialer{failNext: true}
	m := newTestManager(d)

	_, err := m.Subscribe("btcusdt@kline_1m", func([]byte) {})
	require.Error(t, err)
	assert.True(t, core.IsSocketOpenFailed(err))
	assert.Contains(t, err.Error(), "btcusdt@kline_1m")
	assert.Equal(t, 0, m.Len())

	// The failed open still burned an id.
	h, err := m.Subscribe("btcusdt@kline_1m", func([]byte) {})
	require.NoError(t, err)
	assert.Equal(t, int64(2), h.ID())
}

func TestManager_CloseStream(t *testing.T) {
	d := &fakeDialer{}
	m := newTestManager(d)

	h, err := m.Subscribe("btcusdt@depth", func([]byte) {})
	require.NoError(t, err)

	m.Close(h.ID())
	assert.Equal(t, StateClosed, h.State())
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, 1, d.closedCount())

	// Closing again, or closing an unknown id, is a no-op.
	m.Close(h.ID())
	m.Close(9999)
	assert.Equal(t, 1, d.closedCount())
}

func TestManager_IndependentTeardown(t *testing.T) {
	d := &fakeDialer{}
	m := newTestManager(d)

	h1, err := m.Subscribe("btcusdt@aggTrade", func([]byte) {})
	require.NoError(t, err)
	h2, err := m.Subscribe("ethusdt@aggTrade", func([]byte) {})
	require.NoError(t, err)

	m.Close(h1.ID())

	assert.Equal(t, StateClosed, h1.State())
	assert.NotEqual(t, StateClosed, h2.State())
	assert.Equal(t, 1, m.Len())
}

func TestManager_RemoteCloseTearsDown(t *testing.T) {
	d := &fakeDialer{}
	m := newTestManager(d)

	h, err := m.Subscribe("bnbusdt@depth", func([]byte) {})
	require.NoError(t, err)

	d.handler(0).OnClose(nil, errors.New("unexpected EOF"))

	assert.Equal(t, StateClosed, h.State())
	assert.Equal(t, 0, m.Len())
}

func TestManager_UserDataSharesTransport(t *testing.T) {
	d := &fakeDialer{}
	m := newTestManager(d)

	h1, err := m.SubscribeAccount("listen-key-1", func([]byte) {})
	require.NoError(t, err)
	h2, err := m.SubscribeOrders("listen-key-1", func([]byte) {})
	require.NoError(t, err)

	assert.Equal(t, h1.ID(), h2.ID(), "both roles share one socket")
	assert.Equal(t, RoleUserData, h1.Role())
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 1, d.dials())
}

func TestManager_UserDataPresenceCountedClose(t *testing.T) {
	d := &fakeDialer{}
	m := newTestManager(d)

	_, err := m.SubscribeAccount("listen-key-1", func([]byte) {})
	require.NoError(t, err)
	_, err = m.SubscribeOrders("listen-key-1", func([]byte) {})
	require.NoError(t, err)

	m.UnsubscribeAccount()
	assert.Equal(t, 1, m.Len(), "one callback left keeps the transport open")
	assert.Equal(t, 0, d.closedCount())

	m.UnsubscribeOrders()
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, 1, d.closedCount())
}

func TestManager_UserDataListenKeyRotation(t *testing.T) {
	d := &fakeDialer{}
	m := newTestManager(d)

	h1, err := m.SubscribeAccount("listen-key-old", func([]byte) {})
	require.NoError(t, err)

	h2, err := m.SubscribeOrders("listen-key-new", func([]byte) {})
	require.NoError(t, err)

	assert.Greater(t, h2.ID(), h1.ID())
	assert.Equal(t, StateClosed, h1.State(), "the old key's socket is replaced")
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 2, d.dials())
}

func TestManager_DispatchUserData(t *testing.T) {
	d := &fakeDialer{}
	m := newTestManager(d)

	var accountEvents, orderEvents []string
	_, err := m.SubscribeAccount("listen-key-1", func(data []byte) {
		accountEvents = append(accountEvents, string(data))
	})
	require.NoError(t, err)
	_, err = m.SubscribeOrders("listen-key-1", func(data []byte) {
		orderEvents = append(orderEvents, string(data))
	})
	require.NoError(t, err)

	m.dispatchUserData([]byte(`{"e":"outboundAccountPosition","E":1591696384141}`))
	m.dispatchUserData([]byte(`{"e":"executionReport","E":1591696384141,"s":"BNBUSDT"}`))
	m.dispatchUserData([]byte(`{"e":"balanceUpdate","E":1591696384141}`))
	m.dispatchUserData([]byte(`not even json`))
	m.dispatchUserData([]byte(`{"E":1591696384141}`))

	require.Len(t, accountEvents, 1)
	assert.Contains(t, accountEvents[0], "outboundAccountPosition")
	require.Len(t, orderEvents, 1)
	assert.Contains(t, orderEvents[0], "executionReport")
}

func TestManager_DispatchAfterUnsubscribeDropsEvents(t *testing.T) {
	d := &fakeDialer{}
	m := newTestManager(d)

	delivered := 0
	_, err := m.SubscribeAccount("listen-key-1", func([]byte) { delivered++ })
	require.NoError(t, err)

	m.UnsubscribeAccount()
	m.dispatchUserData([]byte(`{"e":"outboundAccountPosition"}`))
	assert.Equal(t, 0, delivered)
}

func TestManager_CallbacksSurviveRemoteClose(t *testing.T) {
	d := &fakeDialer{}
	m := newTestManager(d)

	delivered := 0
	_, err := m.SubscribeAccount("listen-key-1", func([]byte) { delivered++ })
	require.NoError(t, err)

	// The server drops the socket; the registration must survive so a fresh
	// subscribe picks it back up.
	d.handler(0).OnClose(nil, errors.New("server went away"))
	assert.Equal(t, 0, m.Len())

	h, err := m.SubscribeAccount("listen-key-1", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, d.dials())
	assert.Equal(t, 1, m.Len())
	assert.NotNil(t, h)

	m.dispatchUserData([]byte(`{"e":"outboundAccountPosition"}`))
	assert.Equal(t, 1, delivered, "the original callback is still attached")
}

func TestManager_CloseAll(t *testing.T) {
	d := &fakeDialer{}
	m := newTestManager(d)

	_, err := m.Subscribe("btcusdt@aggTrade", func([]byte) {})
	require.NoError(t, err)
	_, err = m.Subscribe("ethusdt@depth", func([]byte) {})
	require.NoError(t, err)

	delivered := 0
	_, err = m.SubscribeOrders("listen-key-1", func([]byte) { delivered++ })
	require.NoError(t, err)

	m.CloseAll()

	assert.Equal(t, 0, m.Len())
	assert.Equal(t, 3, d.closedCount())

	// CloseAll also forgets the user-data callbacks.
	m.dispatchUserData([]byte(`{"e":"executionReport"}`))
	assert.Equal(t, 0, delivered)
}

func TestRole_String(t *testing.T) {
	assert.Equal(t, "topic", RoleTopic.String())
	assert.Equal(t, "user-data", RoleUserData.String())
	assert.Equal(t, "unknown", Role(42).String())
}

func TestConnState_String(t *testing.T) {
	assert.Equal(t, "connecting", StateConnecting.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "closed", StateClosed.String())
}
