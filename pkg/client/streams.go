package client

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"

	"mbx/pkg/core"
)

func streamName(symbol, topic string) string {
	return strings.ToLower(symbol) + "@" + topic
}

// decodeInto adapts a typed handler to the raw frame callback. Frames that do
// not decode are logged and dropped; the stream stays open.
func decodeInto[T any](c *Client, path string, handler func(*T)) func([]byte) {
	return func(data []byte) {
		ev := new(T)
		if err := sonic.Unmarshal(data, ev); err != nil {
			c.logger.Debug().Err(err).Str("stream", path).Msg("drop undecodable frame")
			return
		}
		handler(ev)
	}
}

// SubscribeKlines streams candlestick updates for the symbol at the given
// interval. The handler runs on the socket's read-loop goroutine, so events
// for one stream arrive in order; slow handlers delay that stream only.
func (c *Client) SubscribeKlines(symbol string, interval core.KlineInterval, handler func(*core.KlineEvent)) (*Stream, error) {
	if !interval.Valid() {
		return nil, core.NewAPIError(core.ErrKindInvalidArgument, fmt.Sprintf("invalid kline interval %q", interval))
	}
	path := streamName(symbol, "kline_"+interval.String())
	return c.streams.Subscribe(path, decodeInto(c, path, handler))
}

// SubscribeDepth streams incremental order book updates for the symbol.
func (c *Client) SubscribeDepth(symbol string, handler func(*core.DepthEvent)) (*Stream, error) {
	path := streamName(symbol, "depth")
	return c.streams.Subscribe(path, decodeInto(c, path, handler))
}

// SubscribeAggTrades streams compressed trades for the symbol.
func (c *Client) SubscribeAggTrades(symbol string, handler func(*core.TradeEvent)) (*Stream, error) {
	path := streamName(symbol, "aggTrade")
	return c.streams.Subscribe(path, decodeInto(c, path, handler))
}

// SubscribeAccountUpdates streams account balance changes for the listen key.
// Account and order subscriptions on the same key share one socket; the
// returned stream is that shared transport.
func (c *Client) SubscribeAccountUpdates(listenKey string, handler func(*core.AccountUpdateEvent)) (*Stream, error) {
	if listenKey == "" {
		return nil, core.NewAPIError(core.ErrKindInvalidArgument, "listenKey is required")
	}
	return c.streams.SubscribeAccount(listenKey, decodeInto(c, listenKey, handler))
}

// SubscribeOrderUpdates streams order execution reports for the listen key.
// Account and order subscriptions on the same key share one socket.
func (c *Client) SubscribeOrderUpdates(listenKey string, handler func(*core.OrderUpdateEvent)) (*Stream, error) {
	if listenKey == "" {
		return nil, core.NewAPIError(core.ErrKindInvalidArgument, "listenKey is required")
	}
	return c.streams.SubscribeOrders(listenKey, decodeInto(c, listenKey, handler))
}

// UnsubscribeAccountUpdates detaches the account handler. The shared
// user-data socket closes once no handler remains on it.
func (c *Client) UnsubscribeAccountUpdates() {
	c.streams.UnsubscribeAccount()
}

// UnsubscribeOrderUpdates detaches the order handler. The shared user-data
// socket closes once no handler remains on it.
func (c *Client) UnsubscribeOrderUpdates() {
	c.streams.UnsubscribeOrders()
}

// CloseStream tears down one stream by id. Closing an unknown or already
// closed stream is a no-op.
func (c *Client) CloseStream(id int64) {
	c.streams.Close(id)
}

// CloseAllStreams tears down every open stream and detaches the user-data
// handlers.
func (c *Client) CloseAllStreams() {
	c.streams.CloseAll()
}

// ActiveStreams returns the number of currently open streams.
func (c *Client) ActiveStreams() int {
	return c.streams.Len()
}
