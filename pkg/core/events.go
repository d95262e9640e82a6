package core

import "github.com/cockroachdb/apd/v3"

// Stream event markers carried in every frame's "e" field. User data frames
// are routed by marker; anything unrecognized is dropped so new server-side
// event types cannot break existing subscribers.
const (
	// EventKline marks a candlestick update frame.
	EventKline = "kline"
	// EventDepthUpdate marks an incremental order book frame.
	EventDepthUpdate = "depthUpdate"
	// EventAggTrade marks a compressed trade frame.
	EventAggTrade = "aggTrade"
	// EventAccountUpdate marks a user data account balance frame.
	EventAccountUpdate = "outboundAccountPosition"
	// EventOrderUpdate marks a user data order execution frame.
	EventOrderUpdate = "executionReport"
)

// StreamKline is the candle inside a KlineEvent.
type StreamKline struct {
	OpenTime     int64         `json:"t"`
	CloseTime    int64         `json:"T"`
	Symbol       string        `json:"s"`
	Interval     KlineInterval `json:"i"`
	FirstTradeID int64         `json:"f"`
	LastTradeID  int64         `json:"L"`
	Open         apd.Decimal   `json:"o"`
	Close        apd.Decimal   `json:"c"`
	High         apd.Decimal   `json:"h"`
	Low          apd.Decimal   `json:"l"`
	Volume       apd.Decimal   `json:"v"`
	TradeCount   int64         `json:"n"`
	// Final is true once the candle's interval has elapsed; earlier frames
	// for the same candle carry intermediate values.
	Final       bool        `json:"x"`
	QuoteVolume apd.Decimal `json:"q"`
}

// KlineEvent is a candlestick update from a kline topic stream.
type KlineEvent struct {
	Event     string      `json:"e"`
	EventTime int64       `json:"E"`
	Symbol    string      `json:"s"`
	Kline     StreamKline `json:"k"`
}

// DepthEvent is an incremental order book update from a depth topic stream.
type DepthEvent struct {
	Event         string       `json:"e"`
	EventTime     int64        `json:"E"`
	Symbol        string       `json:"s"`
	FirstUpdateID int64        `json:"U"`
	LastUpdateID  int64        `json:"u"`
	Bids          []DepthLevel `json:"b"`
	Asks          []DepthLevel `json:"a"`
}

// TradeEvent is a compressed trade from an aggTrade topic stream.
type TradeEvent struct {
	Event        string      `json:"e"`
	EventTime    int64       `json:"E"`
	Symbol       string      `json:"s"`
	TradeID      int64       `json:"a"`
	Price        apd.Decimal `json:"p"`
	Quantity     apd.Decimal `json:"q"`
	FirstTradeID int64       `json:"f"`
	LastTradeID  int64       `json:"l"`
	TradeTime    int64       `json:"T"`
	IsBuyerMaker bool        `json:"m"`
}

// StreamBalance is a per-asset balance inside an AccountUpdateEvent.
type StreamBalance struct {
	Asset  string      `json:"a"`
	Free   apd.Decimal `json:"f"`
	Locked apd.Decimal `json:"l"`
}

// AccountUpdateEvent is a user data frame carrying the full set of changed
// account balances.
type AccountUpdateEvent struct {
	Event      string          `json:"e"`
	EventTime  int64           `json:"E"`
	LastUpdate int64           `json:"u"`
	Balances   []StreamBalance `json:"B"`
}

// OrderUpdateEvent is a user data frame describing one order state change.
type OrderUpdateEvent struct {
	Event         string      `json:"e"`
	EventTime     int64       `json:"E"`
	Symbol        string      `json:"s"`
	ClientOrderID string      `json:"c"`
	Side          OrderSide   `json:"S"`
	Type          OrderType   `json:"o"`
	TimeInForce   TimeInForce `json:"f"`
	Quantity      apd.Decimal `json:"q"`
	Price         apd.Decimal `json:"p"`
	StopPrice     apd.Decimal `json:"P"`
	IcebergQty    apd.Decimal `json:"F"`
	// OrigClientOrderID is set on cancel reports and names the order being
	// canceled.
	OrigClientOrderID string `json:"C"`
	// ExecutionType is the change that produced this report: NEW, CANCELED,
	// REPLACED, REJECTED, TRADE, or EXPIRED.
	ExecutionType   string      `json:"x"`
	Status          OrderStatus `json:"X"`
	RejectReason    string      `json:"r"`
	OrderID         int64       `json:"i"`
	LastFilledQty   apd.Decimal `json:"l"`
	FilledQty       apd.Decimal `json:"z"`
	LastFilledPrice apd.Decimal `json:"L"`
	Commission      apd.Decimal `json:"n"`
	CommissionAsset string      `json:"N"`
	TransactTime    int64       `json:"T"`
	TradeID         int64       `json:"t"`
	IsWorking       bool        `json:"w"`
	IsMaker         bool        `json:"m"`
}
