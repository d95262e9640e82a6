package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"mbx/internal/rest"
	"mbx/pkg/core"
)

// Ping checks REST connectivity. It returns nil when the server answered.
func (c *Client) Ping(ctx context.Context) error {
	req := core.NewRequest(http.MethodGet, core.Version1, core.EndpointPing)
	_, err := c.exec.Execute(ctx, req)
	return err
}

// ServerTime returns the server's wall clock.
func (c *Client) ServerTime(ctx context.Context) (time.Time, error) {
	req := core.NewRequest(http.MethodGet, core.Version1, core.EndpointTime)
	st, err := rest.Do[core.ServerTime](ctx, c.exec, req)
	if err != nil {
		return time.Time{}, err
	}
	return st.Time(), nil
}

// OrderBook fetches a depth snapshot for the symbol. A zero limit leaves the
// server default in effect; limits of 500 and 1000 cost more request weight.
func (c *Client) OrderBook(ctx context.Context, symbol string, limit int) (*core.OrderBook, error) {
	req := core.NewRequest(http.MethodGet, core.Version1, core.EndpointDepth).
		SetQuery("symbol", symbol).
		SetWeight(depthWeight(limit))
	if limit > 0 {
		req.SetQuery("limit", limit)
	}
	book, err := rest.Do[core.OrderBook](ctx, c.exec, req)
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func depthWeight(limit int) int {
	switch {
	case limit >= 1000:
		return 10
	case limit >= 500:
		return 5
	default:
		return 1
	}
}

// AggTradesOptions narrows an AggregateTrades query. Zero-valued fields are
// omitted from the request.
type AggTradesOptions struct {
	// FromID returns trades with an aggregate id at or above this value.
	FromID int64
	// StartTime and EndTime bound the query in epoch milliseconds. The server
	// caps the window at one hour.
	StartTime int64
	EndTime   int64
	Limit     int
}

// AggregateTrades returns compressed trades for the symbol, oldest first.
func (c *Client) AggregateTrades(ctx context.Context, symbol string, opts *AggTradesOptions) ([]core.AggTrade, error) {
	req := core.NewRequest(http.MethodGet, core.Version1, core.EndpointAggTrades).
		SetQuery("symbol", symbol)
	if opts != nil {
		if opts.FromID > 0 {
			req.SetQuery("fromId", opts.FromID)
		}
		if opts.StartTime > 0 {
			req.SetQuery("startTime", opts.StartTime)
		}
		if opts.EndTime > 0 {
			req.SetQuery("endTime", opts.EndTime)
		}
		if opts.Limit > 0 {
			req.SetQuery("limit", opts.Limit)
		}
	}
	return rest.Do[[]core.AggTrade](ctx, c.exec, req)
}

// KlinesOptions narrows a Klines query. Zero-valued fields are omitted from
// the request.
type KlinesOptions struct {
	// StartTime and EndTime bound the query in epoch milliseconds.
	StartTime int64
	EndTime   int64
	Limit     int
}

// Klines returns candlesticks for the symbol at the given interval, oldest
// first. The interval is validated locally before any network traffic.
func (c *Client) Klines(ctx context.Context, symbol string, interval core.KlineInterval, opts *KlinesOptions) ([]core.Kline, error) {
	if !interval.Valid() {
		return nil, core.NewAPIError(core.ErrKindInvalidArgument, fmt.Sprintf("invalid kline interval %q", interval))
	}
	req := core.NewRequest(http.MethodGet, core.Version1, core.EndpointKlines).
		SetQuery("symbol", symbol).
		SetQuery("interval", interval)
	if opts != nil {
		if opts.StartTime > 0 {
			req.SetQuery("startTime", opts.StartTime)
		}
		if opts.EndTime > 0 {
			req.SetQuery("endTime", opts.EndTime)
		}
		if opts.Limit > 0 {
			req.SetQuery("limit", opts.Limit)
		}
	}
	return rest.Do[[]core.Kline](ctx, c.exec, req)
}

// Ticker24h returns the rolling 24-hour price statistics for one symbol.
func (c *Client) Ticker24h(ctx context.Context, symbol string) (*core.Ticker24h, error) {
	if symbol == "" {
		return nil, core.NewAPIError(core.ErrKindInvalidArgument, "symbol is required")
	}
	req := core.NewRequest(http.MethodGet, core.Version1, core.EndpointTicker24h).
		SetQuery("symbol", symbol)
	ticker, err := rest.Do[core.Ticker24h](ctx, c.exec, req)
	if err != nil {
		return nil, err
	}
	return &ticker, nil
}

// AllPrices returns the latest trade price for every symbol.
func (c *Client) AllPrices(ctx context.Context) ([]core.SymbolPrice, error) {
	req := core.NewRequest(http.MethodGet, core.Version1, core.EndpointAllPrices).
		SetWeight(2)
	return rest.Do[[]core.SymbolPrice](ctx, c.exec, req)
}

// AllBookTickers returns the best bid and ask for every symbol.
func (c *Client) AllBookTickers(ctx context.Context) ([]core.BookTicker, error) {
	req := core.NewRequest(http.MethodGet, core.Version1, core.EndpointBookTickers).
		SetWeight(2)
	return rest.Do[[]core.BookTicker](ctx, c.exec, req)
}
