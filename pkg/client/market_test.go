package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mbx/pkg/core"
)

func TestClient_Ping(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)

	require.NoError(t, c.Ping(context.Background()))
	assert.Equal(t, "/api/v1/ping", gotPath)
}

func TestClient_ServerTime(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"serverTime":1499827319559}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)

	got, err := c.ServerTime(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.UnixMilli(1499827319559), got)
}

func TestClient_OrderBook(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{
			"lastUpdateId": 1027024,
			"bids": [["4.00000000", "431.00000000"]],
			"asks": [["4.00000200", "12.00000000"]]
		}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)

	book, err := c.OrderBook(context.Background(), "BTCUSDT", 5)
	require.NoError(t, err)
	assert.Equal(t, "symbol=BTCUSDT&limit=5", gotQuery)
	assert.Equal(t, int64(1027024), book.LastUpdateID)
	require.Len(t, book.Bids, 1)
	require.Len(t, book.Asks, 1)
	assert.Equal(t, "4.00000000", book.Bids[0].Price.Text('f'))
	assert.Equal(t, "431.00000000", book.Bids[0].Quantity.Text('f'))
	assert.Equal(t, "4.00000200", book.Asks[0].Price.Text('f'))
}

func TestClient_OrderBook_ZeroLimitUsesServerDefault(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"lastUpdateId":1,"bids":[],"asks":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)

	_, err := c.OrderBook(context.Background(), "BTCUSDT", 0)
	require.NoError(t, err)
	assert.Equal(t, "symbol=BTCUSDT", gotQuery)
}

func TestDepthWeight(t *testing.T) {
	tests := []struct {
		limit int
		want  int
	}{
		{0, 1},
		{100, 1},
		{499, 1},
		{500, 5},
		{1000, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, depthWeight(tt.limit), "limit %d", tt.limit)
	}
}

func TestClient_AggregateTrades(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[{
			"a": 26129, "p": "0.01633102", "q": "4.70443515",
			"f": 27781, "l": 27781, "T": 1498793709153, "m": true, "M": true
		}]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)

	trades, err := c.AggregateTrades(context.Background(), "ETHBTC", &AggTradesOptions{
		FromID:    26100,
		StartTime: 1498793700000,
		EndTime:   1498793710000,
		Limit:     10,
	})
	require.NoError(t, err)
	assert.Equal(t, "symbol=ETHBTC&fromId=26100&startTime=1498793700000&endTime=1498793710000&limit=10", gotQuery)
	require.Len(t, trades, 1)
	assert.Equal(t, int64(26129), trades[0].TradeID)
	assert.Equal(t, "0.01633102", trades[0].Price.Text('f'))
	assert.True(t, trades[0].IsBuyerMaker)
}

func TestClient_AggregateTrades_NilOptions(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)

	_, err := c.AggregateTrades(context.Background(), "ETHBTC", nil)
	require.NoError(t, err)
	assert.Equal(t, "symbol=ETHBTC", gotQuery)
}

func TestClient_Klines(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[[
			1499040000000, "0.01634790", "0.80000000", "0.01575800", "0.01577100",
			"148976.11427815", 1499644799999, "2434.19055334", 308,
			"1756.87402397", "28.46694368"
		]]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)

	klines, err := c.Klines(context.Background(), "LTCBTC", core.Interval1h, &KlinesOptions{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, "symbol=LTCBTC&interval=1h&limit=1", gotQuery)
	require.Len(t, klines, 1)
	assert.Equal(t, int64(1499040000000), klines[0].OpenTime)
	assert.Equal(t, "0.01634790", klines[0].Open.Text('f'))
	assert.Equal(t, "0.01577100", klines[0].Close.Text('f'))
	assert.Equal(t, int64(308), klines[0].TradeCount)
}

func TestClient_Klines_InvalidInterval(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)

	_, err := c.Klines(context.Background(), "LTCBTC", core.KlineInterval("7x"), nil)
	require.Error(t, err)
	assert.True(t, core.IsInvalidArgument(err))
	assert.Contains(t, err.Error(), "invalid kline interval")
	assert.Equal(t, 0, hits, "the interval must be rejected before any network traffic")
}

func TestClient_Ticker24h(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{
			"symbol": "BNBBTC",
			"priceChange": "-94.99999800",
			"priceChangePercent": "-95.960",
			"lastPrice": "4.00000200",
			"volume": "8913.30000000",
			"openTime": 1499783499040,
			"closeTime": 1499869899040,
			"firstId": 28385,
			"lastId": 28460,
			"count": 76
		}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)

	ticker, err := c.Ticker24h(context.Background(), "BNBBTC")
	require.NoError(t, err)
	assert.Equal(t, "symbol=BNBBTC", gotQuery)
	assert.Equal(t, "BNBBTC", ticker.Symbol)
	assert.Equal(t, "4.00000200", ticker.LastPrice.Text('f'))
	assert.Equal(t, int64(76), ticker.TradeCount)
}

func TestClient_Ticker24h_RequiresSymbol(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)

	_, err := c.Ticker24h(context.Background(), "")
	require.Error(t, err)
	assert.True(t, core.IsInvalidArgument(err))
	assert.Equal(t, 0, hits)
}

func TestClient_AllPrices(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`[
			{"symbol": "LTCBTC", "price": "4.00000200"},
			{"symbol": "ETHBTC", "price": "0.07946600"}
		]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)

	prices, err := c.AllPrices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/ticker/allPrices", gotPath)
	require.Len(t, prices, 2)
	assert.Equal(t, "LTCBTC", prices[0].Symbol)
	assert.Equal(t, "0.07946600", prices[1].Price.Text('f'))
}

func TestClient_AllBookTickers(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`[{
			"symbol": "LTCBTC",
			"bidPrice": "4.00000000", "bidQty": "431.00000000",
			"askPrice": "4.00000200", "askQty": "9.00000000"
		}]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)

	tickers, err := c.AllBookTickers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/ticker/allBookTickers", gotPath)
	require.Len(t, tickers, 1)
	assert.Equal(t, "4.00000000", tickers[0].BidPrice.Text('f'))
	assert.Equal(t, "9.00000000", tickers[0].AskQty.Text('f'))
}
