package core

// API versions for the classic spot endpoint split: public market data and
// user stream endpoints live under v1, signed account/trade endpoints under v3.
const (
	Version1 = "1"
	Version3 = "3"
)

// Endpoint paths, relative to {BaseURL}/v{version}/.
const (
	EndpointPing           = "ping"
	EndpointTime           = "time"
	EndpointDepth          = "depth"
	EndpointAggTrades      = "aggTrades"
	EndpointKlines         = "klines"
	EndpointTicker24h      = "ticker/24hr"
	EndpointAllPrices      = "ticker/allPrices"
	EndpointBookTickers    = "ticker/allBookTickers"
	EndpointOrder          = "order"
	EndpointOrderTest      = "order/test"
	EndpointOpenOrders     = "openOrders"
	EndpointAllOrders      = "allOrders"
	EndpointAccount        = "account"
	EndpointMyTrades       = "myTrades"
	EndpointUserDataStream = "userDataStream"
)
