package core

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cockroachdb/apd/v3"
)

// OrderSide represents the direction of an order (buy or sell).
type OrderSide int

// Order side constants define the direction of a trade.
const (
	// SideBuy indicates an order to purchase an asset.
	SideBuy OrderSide = iota
	// SideSell indicates an order to sell an asset.
	SideSell
)

// String returns the string representation of the order side ("BUY" or "SELL").
func (s OrderSide) String() string {
	return [...]string{"BUY", "SELL"}[s]
}

// MarshalJSON implements json.Marshaler for OrderSide.
func (s OrderSide) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for OrderSide.
// It accepts both uppercase and lowercase formats.
func (s *OrderSide) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"BUY"`, `"buy"`:
		*s = SideBuy
	case `"SELL"`, `"sell"`:
		*s = SideSell
	}
	return nil
}

// OrderType represents how an order executes on the exchange.
type OrderType int

// Order type constants define how an order is executed.
const (
	// TypeMarket executes immediately at the best available price.
	TypeMarket OrderType = iota
	// TypeLimit executes at a specified price or better.
	TypeLimit
	// TypeStopLoss triggers a market order when price reaches stop price.
	TypeStopLoss
	// TypeStopLossLimit triggers a limit order when price reaches stop price.
	TypeStopLossLimit
	// TypeTakeProfit triggers a market order when price reaches target.
	TypeTakeProfit
	// TypeTakeProfitLimit triggers a limit order when price reaches target.
	TypeTakeProfitLimit
	// TypeLimitMaker is a limit order rejected if it would execute
	// immediately (post-only).
	TypeLimitMaker
)

// String returns the string representation of the order type.
func (t OrderType) String() string {
	return [...]string{"MARKET", "LIMIT", "STOP_LOSS", "STOP_LOSS_LIMIT", "TAKE_PROFIT", "TAKE_PROFIT_LIMIT", "LIMIT_MAKER"}[t]
}

// MarshalJSON implements json.Marshaler for OrderType.
func (t OrderType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for OrderType.
// It accepts both uppercase and lowercase formats.
func (t *OrderType) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"MARKET"`, `"market"`:
		*t = TypeMarket
	case `"LIMIT"`, `"limit"`:
		*t = TypeLimit
	case `"STOP_LOSS"`, `"stop_loss"`:
		*t = TypeStopLoss
	case `"STOP_LOSS_LIMIT"`, `"stop_loss_limit"`:
		*t = TypeStopLossLimit
	case `"TAKE_PROFIT"`, `"take_profit"`:
		*t = TypeTakeProfit
	case `"TAKE_PROFIT_LIMIT"`, `"take_profit_limit"`:
		*t = TypeTakeProfitLimit
	case `"LIMIT_MAKER"`, `"limit_maker"`:
		*t = TypeLimitMaker
	}
	return nil
}

// OrderStatus represents the current state of an order.
type OrderStatus int

// Order status constants define the lifecycle state of an order.
const (
	// StatusNew indicates the order has been accepted by the exchange.
	StatusNew OrderStatus = iota
	// StatusPartiallyFilled indicates the order has been partially filled.
	StatusPartiallyFilled
	// StatusFilled indicates the order has been completely filled.
	StatusFilled
	// StatusCanceled indicates the order has been canceled.
	StatusCanceled
	// StatusPendingCancel indicates a cancel request has been submitted.
	StatusPendingCancel
	// StatusRejected indicates the order was rejected by the exchange.
	StatusRejected
	// StatusExpired indicates the order has expired.
	StatusExpired
)

// String returns the string representation of the order status.
func (s OrderStatus) String() string {
	return [...]string{"NEW", "PARTIALLY_FILLED", "FILLED", "CANCELED", "PENDING_CANCEL", "REJECTED", "EXPIRED"}[s]
}

// IsTerminal returns true if the order is in a terminal state (no further changes possible).
func (s OrderStatus) IsTerminal() bool {
	return s == StatusFilled || s == StatusCanceled || s == StatusRejected || s == StatusExpired
}

// MarshalJSON implements json.Marshaler for OrderStatus.
func (s OrderStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for OrderStatus.
// It accepts both uppercase and lowercase formats.
func (s *OrderStatus) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"NEW"`, `"new"`:
		*s = StatusNew
	case `"PARTIALLY_FILLED"`, `"partially_filled"`:
		*s = StatusPartiallyFilled
	case `"FILLED"`, `"filled"`:
		*s = StatusFilled
	case `"CANCELED"`, `"canceled"`:
		*s = StatusCanceled
	case `"PENDING_CANCEL"`, `"pending_cancel"`:
		*s = StatusPendingCancel
	case `"REJECTED"`, `"rejected"`:
		*s = StatusRejected
	case `"EXPIRED"`, `"expired"`:
		*s = StatusExpired
	}
	return nil
}

// TimeInForce defines how long an order remains active.
type TimeInForce int

// Time in force constants define order lifetime behavior.
const (
	// GTC (Good Till Canceled) keeps the order active until filled or canceled.
	GTC TimeInForce = iota
	// IOC (Immediate Or Cancel) requires immediate execution; unfilled portion is canceled.
	IOC
	// FOK (Fill Or Kill) requires complete immediate execution or cancellation.
	FOK
)

// String returns the string representation of time in force.
func (t TimeInForce) String() string {
	return [...]string{"GTC", "IOC", "FOK"}[t]
}

// MarshalJSON implements json.Marshaler for TimeInForce.
func (t TimeInForce) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for TimeInForce.
// It accepts both uppercase and lowercase formats.
func (t *TimeInForce) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"GTC"`, `"gtc"`:
		*t = GTC
	case `"IOC"`, `"ioc"`:
		*t = IOC
	case `"FOK"`, `"fok"`:
		*t = FOK
	}
	return nil
}

// ServerTime is the server-time endpoint response.
type ServerTime struct {
	ServerTime int64 `json:"serverTime"`
}

// Time returns the server time as a time.Time.
func (t ServerTime) Time() time.Time {
	return time.UnixMilli(t.ServerTime)
}

// DepthLevel is a single price level in the order book. The wire format is a
// positional array: [price, quantity] plus trailing elements that are ignored.
type DepthLevel struct {
	Price    apd.Decimal
	Quantity apd.Decimal
}

// UnmarshalJSON implements json.Unmarshaler for DepthLevel.
func (l *DepthLevel) UnmarshalJSON(data []byte) error {
	var fields []json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("depth level: %w", err)
	}
	if len(fields) < 2 {
		return fmt.Errorf("depth level: want at least 2 elements, got %d", len(fields))
	}
	if err := json.Unmarshal(fields[0], &l.Price); err != nil {
		return fmt.Errorf("depth level price: %w", err)
	}
	if err := json.Unmarshal(fields[1], &l.Quantity); err != nil {
		return fmt.Errorf("depth level quantity: %w", err)
	}
	return nil
}

// OrderBook is an order book depth snapshot.
type OrderBook struct {
	// LastUpdateID anchors the snapshot against incremental depth events.
	LastUpdateID int64 `json:"lastUpdateId"`
	// Bids are buy levels sorted by price descending.
	Bids []DepthLevel `json:"bids"`
	// Asks are sell levels sorted by price ascending.
	Asks []DepthLevel `json:"asks"`
}

// Kline is a single candlestick. The wire format is a positional array:
// [openTime, open, high, low, close, volume, closeTime, quoteVolume,
// tradeCount, takerBuyBaseVolume, takerBuyQuoteVolume, ...].
type Kline struct {
	OpenTime            int64
	Open                apd.Decimal
	High                apd.Decimal
	Low                 apd.Decimal
	Close               apd.Decimal
	Volume              apd.Decimal
	CloseTime           int64
	QuoteVolume         apd.Decimal
	TradeCount          int64
	TakerBuyBaseVolume  apd.Decimal
	TakerBuyQuoteVolume apd.Decimal
}

// UnmarshalJSON implements json.Unmarshaler for Kline.
func (k *Kline) UnmarshalJSON(data []byte) error {
	var fields []json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("kline: %w", err)
	}
	if len(fields) < 11 {
		return fmt.Errorf("kline: want at least 11 elements, got %d", len(fields))
	}
	dests := []any{
		&k.OpenTime, &k.Open, &k.High, &k.Low, &k.Close, &k.Volume,
		&k.CloseTime, &k.QuoteVolume, &k.TradeCount,
		&k.TakerBuyBaseVolume, &k.TakerBuyQuoteVolume,
	}
	for i, dest := range dests {
		if err := json.Unmarshal(fields[i], dest); err != nil {
			return fmt.Errorf("kline element %d: %w", i, err)
		}
	}
	return nil
}

// Ticker24h is the rolling 24-hour price change statistics for a symbol.
type Ticker24h struct {
	Symbol             string      `json:"symbol"`
	PriceChange        apd.Decimal `json:"priceChange"`
	PriceChangePercent apd.Decimal `json:"priceChangePercent"`
	WeightedAvgPrice   apd.Decimal `json:"weightedAvgPrice"`
	PrevClosePrice     apd.Decimal `json:"prevClosePrice"`
	LastPrice          apd.Decimal `json:"lastPrice"`
	BidPrice           apd.Decimal `json:"bidPrice"`
	AskPrice           apd.Decimal `json:"askPrice"`
	OpenPrice          apd.Decimal `json:"openPrice"`
	HighPrice          apd.Decimal `json:"highPrice"`
	LowPrice           apd.Decimal `json:"lowPrice"`
	Volume             apd.Decimal `json:"volume"`
	OpenTime           int64       `json:"openTime"`
	CloseTime          int64       `json:"closeTime"`
	FirstTradeID       int64       `json:"firstId"`
	LastTradeID        int64       `json:"lastId"`
	TradeCount         int64       `json:"count"`
}

// SymbolPrice is the latest price for one symbol.
type SymbolPrice struct {
	Symbol string      `json:"symbol"`
	Price  apd.Decimal `json:"price"`
}

// BookTicker is the best bid and ask for one symbol.
type BookTicker struct {
	Symbol   string      `json:"symbol"`
	BidPrice apd.Decimal `json:"bidPrice"`
	BidQty   apd.Decimal `json:"bidQty"`
	AskPrice apd.Decimal `json:"askPrice"`
	AskQty   apd.Decimal `json:"askQty"`
}

// Balance is the account balance for a single asset.
type Balance struct {
	// Asset is the currency or token symbol (e.g. "BTC", "USDT").
	Asset string `json:"asset"`
	// Free is the balance available for trading.
	Free apd.Decimal `json:"free"`
	// Locked is the balance held by open orders.
	Locked apd.Decimal `json:"locked"`
}

// Account is the account information response: commission rates, permissions,
// and per-asset balances.
type Account struct {
	// Commission rates are in basis points.
	MakerCommission  int64     `json:"makerCommission"`
	TakerCommission  int64     `json:"takerCommission"`
	BuyerCommission  int64     `json:"buyerCommission"`
	SellerCommission int64     `json:"sellerCommission"`
	CanTrade         bool      `json:"canTrade"`
	CanWithdraw      bool      `json:"canWithdraw"`
	CanDeposit       bool      `json:"canDeposit"`
	Balances         []Balance `json:"balances"`
}

// Order is the exchange's view of an order, as returned by order queries.
type Order struct {
	Symbol        string      `json:"symbol"`
	OrderID       int64       `json:"orderId"`
	ClientOrderID string      `json:"clientOrderId"`
	Price         apd.Decimal `json:"price"`
	OrigQty       apd.Decimal `json:"origQty"`
	ExecutedQty   apd.Decimal `json:"executedQty"`
	Status        OrderStatus `json:"status"`
	TimeInForce   TimeInForce `json:"timeInForce"`
	Type          OrderType   `json:"type"`
	Side          OrderSide   `json:"side"`
	StopPrice     apd.Decimal `json:"stopPrice"`
	IcebergQty    apd.Decimal `json:"icebergQty"`
	Time          int64       `json:"time"`
}

// NewOrderResponse is the acknowledgment returned when an order is placed.
type NewOrderResponse struct {
	Symbol        string `json:"symbol"`
	OrderID       int64  `json:"orderId"`
	ClientOrderID string `json:"clientOrderId"`
	TransactTime  int64  `json:"transactTime"`
}

// CanceledOrder is the response to a cancel request.
type CanceledOrder struct {
	Symbol string `json:"symbol"`
	// OrigClientOrderID identifies the order that was canceled.
	OrigClientOrderID string `json:"origClientOrderId"`
	OrderID           int64  `json:"orderId"`
	// ClientOrderID is the id assigned to the cancel operation itself.
	ClientOrderID string `json:"clientOrderId"`
}

// AggTrade is a compressed trade: fills of the same taker order at the same
// price aggregated into one row.
type AggTrade struct {
	TradeID      int64       `json:"a"`
	Price        apd.Decimal `json:"p"`
	Quantity     apd.Decimal `json:"q"`
	FirstTradeID int64       `json:"f"`
	LastTradeID  int64       `json:"l"`
	Time         int64       `json:"T"`
	IsBuyerMaker bool        `json:"m"`
	IsBestMatch  bool        `json:"M"`
}

// AccountTrade is one of the caller's own executed trades.
type AccountTrade struct {
	ID              int64       `json:"id"`
	OrderID         int64       `json:"orderId"`
	Price           apd.Decimal `json:"price"`
	Quantity        apd.Decimal `json:"qty"`
	Commission      apd.Decimal `json:"commission"`
	CommissionAsset string      `json:"commissionAsset"`
	Time            int64       `json:"time"`
	IsBuyer         bool        `json:"isBuyer"`
	IsMaker         bool        `json:"isMaker"`
	IsBestMatch     bool        `json:"isBestMatch"`
}

// ListenKey is the handle to a user data stream returned by the start
// endpoint. It must be kept alive and is used as the stream path.
type ListenKey struct {
	ListenKey string `json:"listenKey"`
}
