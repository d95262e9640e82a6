package client

import (
	"context"
	"net/http"

	"mbx/internal/rest"
	"mbx/pkg/core"
)

// AccountInfo returns current balances and account flags. Requires signed
// credentials.
func (c *Client) AccountInfo(ctx context.Context) (*core.Account, error) {
	req := core.NewRequest(http.MethodGet, core.Version3, core.EndpointAccount).
		SetAuth(core.AuthSigned).
		SetWeight(5)
	account, err := rest.Do[core.Account](ctx, c.exec, req)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// MyTradesOptions narrows a MyTrades query. Zero-valued fields are omitted
// from the request.
type MyTradesOptions struct {
	// FromID returns trades with an id at or above this value.
	FromID int64
	Limit  int
}

// MyTrades returns the caller's executed trades for the symbol, oldest first.
// Requires signed credentials.
func (c *Client) MyTrades(ctx context.Context, symbol string, opts *MyTradesOptions) ([]core.AccountTrade, error) {
	req := core.NewRequest(http.MethodGet, core.Version3, core.EndpointMyTrades).
		SetAuth(core.AuthSigned).
		SetWeight(5).
		SetQuery("symbol", symbol)
	if opts != nil {
		if opts.FromID > 0 {
			req.SetQuery("fromId", opts.FromID)
		}
		if opts.Limit > 0 {
			req.SetQuery("limit", opts.Limit)
		}
	}
	return rest.Do[[]core.AccountTrade](ctx, c.exec, req)
}
