// Package client is the high-level entry point for the exchange API.
// It provides REST market data and trading endpoints plus WebSocket
// streaming over one shared configuration.
//
// The package includes:
//   - Client: REST endpoint methods with signing, clock sync, rate limiting,
//     and circuit breaking handled internally
//   - OrderBuilder: fluent construction and submission of new orders
//   - Typed stream subscriptions for klines, depth, trades, and user data
//
// Example usage:
//
//	cfg := core.DefaultConfig().WithCredentials(&core.Credentials{APIKey: key, SecretKey: secret})
//	c, err := client.New(cfg)
//	book, err := c.OrderBook(ctx, "BTCUSDT", 100)
package client
