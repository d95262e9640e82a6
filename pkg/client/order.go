package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"

	"mbx/internal/rest"
	"mbx/pkg/core"
)

// OrderRef identifies an existing order either by the exchange-assigned id or
// by the client order id it was created with. OrderID takes precedence when
// both are set; a zero-valued ref is rejected locally.
type OrderRef struct {
	OrderID       int64
	ClientOrderID string
}

func (r OrderRef) apply(req *core.Request) error {
	switch {
	case r.OrderID > 0:
		req.SetQuery("orderId", r.OrderID)
	case r.ClientOrderID != "":
		req.SetQuery("origClientOrderId", r.ClientOrderID)
	default:
		return core.NewAPIError(core.ErrKindInvalidArgument, "either OrderID or ClientOrderID is required")
	}
	return nil
}

// OrderBuilder provides a fluent interface for constructing and submitting
// orders. It accumulates validation errors and reports them on Submit or Test.
//
// Example:
//
//	ack, err := c.NewOrder("BTCUSDT", core.SideBuy, core.TypeLimit).
//	    Price("50000").
//	    Quantity("0.001").
//	    Submit(ctx)
type OrderBuilder struct {
	client *Client

	symbol        string
	side          core.OrderSide
	typ           core.OrderType
	quantity      apd.Decimal
	price         apd.Decimal
	tif           core.TimeInForce
	tifSet        bool
	clientOrderID string
	stopPrice     apd.Decimal
	icebergQty    apd.Decimal

	err error
}

// NewOrder creates an order builder for the given symbol, side, and type.
// Nothing is sent until Submit or Test is called.
func (c *Client) NewOrder(symbol string, side core.OrderSide, typ core.OrderType) *OrderBuilder {
	return &OrderBuilder{
		client: c,
		symbol: symbol,
		side:   side,
		typ:    typ,
	}
}

// Quantity sets the order quantity from a string representation.
func (b *OrderBuilder) Quantity(qty string) *OrderBuilder {
	if b.err != nil {
		return b
	}
	if _, _, err := b.quantity.SetString(qty); err != nil {
		b.err = fmt.Errorf("parse quantity: %w", err)
	}
	return b
}

// QuantityDecimal sets the order quantity from an apd.Decimal value.
func (b *OrderBuilder) QuantityDecimal(qty apd.Decimal) *OrderBuilder {
	if b.err != nil {
		return b
	}
	b.quantity.Set(&qty)
	return b
}

// Price sets the order price from a string representation.
func (b *OrderBuilder) Price(price string) *OrderBuilder {
	if b.err != nil {
		return b
	}
	if _, _, err := b.price.SetString(price); err != nil {
		b.err = fmt.Errorf("parse price: %w", err)
	}
	return b
}

// PriceDecimal sets the order price from an apd.Decimal value.
func (b *OrderBuilder) PriceDecimal(price apd.Decimal) *OrderBuilder {
	if b.err != nil {
		return b
	}
	b.price.Set(&price)
	return b
}

// TimeInForce sets the time-in-force policy for the order. Limit orders
// default to GTC when no policy is set.
func (b *OrderBuilder) TimeInForce(tif core.TimeInForce) *OrderBuilder {
	if b.err != nil {
		return b
	}
	b.tif = tif
	b.tifSet = true
	return b
}

// GTC sets the time-in-force to Good-Till-Cancelled.
func (b *OrderBuilder) GTC() *OrderBuilder {
	return b.TimeInForce(core.GTC)
}

// IOC sets the time-in-force to Immediate-Or-Cancel.
func (b *OrderBuilder) IOC() *OrderBuilder {
	return b.TimeInForce(core.IOC)
}

// FOK sets the time-in-force to Fill-Or-Kill.
func (b *OrderBuilder) FOK() *OrderBuilder {
	return b.TimeInForce(core.FOK)
}

// ClientOrderID sets a client-assigned identifier for order tracking. A UUID
// is generated when none is supplied.
func (b *OrderBuilder) ClientOrderID(id string) *OrderBuilder {
	if b.err != nil {
		return b
	}
	b.clientOrderID = id
	return b
}

// StopPrice sets the trigger price for stop and take-profit orders.
func (b *OrderBuilder) StopPrice(price string) *OrderBuilder {
	if b.err != nil {
		return b
	}
	if _, _, err := b.stopPrice.SetString(price); err != nil {
		b.err = fmt.Errorf("parse stopPrice: %w", err)
	}
	return b
}

// IcebergQty sets the visible quantity for an iceberg order.
func (b *OrderBuilder) IcebergQty(qty string) *OrderBuilder {
	if b.err != nil {
		return b
	}
	if _, _, err := b.icebergQty.SetString(qty); err != nil {
		b.err = fmt.Errorf("parse icebergQty: %w", err)
	}
	return b
}

// Submit signs and sends the order, returning the exchange acknowledgment.
func (b *OrderBuilder) Submit(ctx context.Context) (*core.NewOrderResponse, error) {
	req, err := b.buildRequest(core.EndpointOrder)
	if err != nil {
		return nil, err
	}
	ack, err := rest.Do[core.NewOrderResponse](ctx, b.client.exec, req)
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// Test validates the order against the test endpoint without placing it.
// Signing, parameters, and balance checks run server-side; nothing executes.
func (b *OrderBuilder) Test(ctx context.Context) error {
	req, err := b.buildRequest(core.EndpointOrderTest)
	if err != nil {
		return err
	}
	_, err = b.client.exec.Execute(ctx, req)
	return err
}

func (b *OrderBuilder) buildRequest(path string) (*core.Request, error) {
	if b.err != nil {
		return nil, core.NewAPIError(core.ErrKindInvalidArgument, b.err.Error())
	}
	if err := b.validate(); err != nil {
		return nil, core.NewAPIError(core.ErrKindInvalidArgument, err.Error())
	}

	clientOrderID := b.clientOrderID
	if clientOrderID == "" {
		clientOrderID = uuid.NewString()
	}

	req := core.NewRequest(http.MethodPost, core.Version3, path).
		SetAuth(core.AuthSigned).
		SetQuery("symbol", b.symbol).
		SetQuery("side", b.side).
		SetQuery("type", b.typ)
	if takesTimeInForce(b.typ) {
		req.SetQuery("timeInForce", b.tif)
	}
	req.SetQuery("quantity", b.quantity)
	if requiresPrice(b.typ) {
		req.SetQuery("price", b.price)
	}
	req.SetQuery("newClientOrderId", clientOrderID)
	if !b.stopPrice.IsZero() {
		req.SetQuery("stopPrice", b.stopPrice)
	}
	if !b.icebergQty.IsZero() {
		req.SetQuery("icebergQty", b.icebergQty)
	}
	return req, nil
}

func (b *OrderBuilder) validate() error {
	if b.symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if b.side != core.SideBuy && b.side != core.SideSell {
		return fmt.Errorf("invalid order side")
	}
	if b.typ < core.TypeMarket || b.typ > core.TypeLimitMaker {
		return fmt.Errorf("invalid order type")
	}
	if b.quantity.IsZero() || b.quantity.Negative {
		return fmt.Errorf("quantity must be positive")
	}
	if requiresPrice(b.typ) && (b.price.IsZero() || b.price.Negative) {
		return fmt.Errorf("price must be positive for limit orders")
	}
	if b.tifSet && !takesTimeInForce(b.typ) {
		return fmt.Errorf("timeInForce is only valid for limit orders")
	}
	if requiresStopPrice(b.typ) && (b.stopPrice.IsZero() || b.stopPrice.Negative) {
		return fmt.Errorf("stopPrice is required for stop orders")
	}
	return nil
}

func requiresPrice(typ core.OrderType) bool {
	switch typ {
	case core.TypeLimit, core.TypeStopLossLimit, core.TypeTakeProfitLimit, core.TypeLimitMaker:
		return true
	}
	return false
}

// takesTimeInForce excludes LIMIT_MAKER, which the exchange rejects when the
// parameter is present.
func takesTimeInForce(typ core.OrderType) bool {
	switch typ {
	case core.TypeLimit, core.TypeStopLossLimit, core.TypeTakeProfitLimit:
		return true
	}
	return false
}

func requiresStopPrice(typ core.OrderType) bool {
	switch typ {
	case core.TypeStopLoss, core.TypeStopLossLimit, core.TypeTakeProfit, core.TypeTakeProfitLimit:
		return true
	}
	return false
}

// QueryOrder fetches one order's current state. The ref must carry either the
// exchange order id or the original client order id; an empty ref fails
// locally before any network traffic.
func (c *Client) QueryOrder(ctx context.Context, symbol string, ref OrderRef) (*core.Order, error) {
	req := core.NewRequest(http.MethodGet, core.Version3, core.EndpointOrder).
		SetAuth(core.AuthSigned).
		SetQuery("symbol", symbol)
	if err := ref.apply(req); err != nil {
		return nil, err
	}
	order, err := rest.Do[core.Order](ctx, c.exec, req)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CancelOrder cancels an open order. The ref identifies the order to cancel;
// newClientOrderID, when non-empty, names the cancel operation itself in
// subsequent execution reports.
func (c *Client) CancelOrder(ctx context.Context, symbol string, ref OrderRef, newClientOrderID string) (*core.CanceledOrder, error) {
	req := core.NewRequest(http.MethodDelete, core.Version3, core.EndpointOrder).
		SetAuth(core.AuthSigned).
		SetQuery("symbol", symbol)
	if err := ref.apply(req); err != nil {
		return nil, err
	}
	if newClientOrderID != "" {
		req.SetQuery("newClientOrderId", newClientOrderID)
	}
	canceled, err := rest.Do[core.CanceledOrder](ctx, c.exec, req)
	if err != nil {
		return nil, err
	}
	return &canceled, nil
}

// OpenOrders returns the caller's open orders. An empty symbol queries every
// symbol at a much higher request weight.
func (c *Client) OpenOrders(ctx context.Context, symbol string) ([]core.Order, error) {
	req := core.NewRequest(http.MethodGet, core.Version3, core.EndpointOpenOrders).
		SetAuth(core.AuthSigned)
	if symbol != "" {
		req.SetQuery("symbol", symbol)
	} else {
		req.SetWeight(40)
	}
	return rest.Do[[]core.Order](ctx, c.exec, req)
}

// AllOrdersOptions narrows an AllOrders query. Zero-valued fields are omitted
// from the request.
type AllOrdersOptions struct {
	// OrderID returns orders with an id at or above this value.
	OrderID int64
	Limit   int
}

// AllOrders returns the caller's orders for the symbol in every state: open,
// filled, canceled. Requires signed credentials.
func (c *Client) AllOrders(ctx context.Context, symbol string, opts *AllOrdersOptions) ([]core.Order, error) {
	req := core.NewRequest(http.MethodGet, core.Version3, core.EndpointAllOrders).
		SetAuth(core.AuthSigned).
		SetWeight(5).
		SetQuery("symbol", symbol)
	if opts != nil {
		if opts.OrderID > 0 {
			req.SetQuery("orderId", opts.OrderID)
		}
		if opts.Limit > 0 {
			req.SetQuery("limit", opts.Limit)
		}
	}
	return rest.Do[[]core.Order](ctx, c.exec, req)
}
