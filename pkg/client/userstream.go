package client

import (
	"context"
	"net/http"

	"mbx/internal/rest"
	"mbx/pkg/core"
)

// StartUserDataStream opens a user data stream and returns its listen key.
// The key doubles as the stream path for SubscribeAccountUpdates and
// SubscribeOrderUpdates, and expires unless kept alive. Requires an API key.
func (c *Client) StartUserDataStream(ctx context.Context) (string, error) {
	req := core.NewRequest(http.MethodPost, core.Version1, core.EndpointUserDataStream).
		SetAuth(core.AuthAPIKey)
	key, err := rest.Do[core.ListenKey](ctx, c.exec, req)
	if err != nil {
		return "", err
	}
	return key.ListenKey, nil
}

// KeepAliveUserDataStream extends the listen key's lifetime. The server
// expires idle keys after roughly an hour; ping every thirty minutes.
func (c *Client) KeepAliveUserDataStream(ctx context.Context, listenKey string) error {
	if listenKey == "" {
		return core.NewAPIError(core.ErrKindInvalidArgument, "listenKey is required")
	}
	req := core.NewRequest(http.MethodPut, core.Version1, core.EndpointUserDataStream).
		SetAuth(core.AuthAPIKey).
		SetQuery("listenKey", listenKey)
	_, err := c.exec.Execute(ctx, req)
	return err
}

// CloseUserDataStream invalidates the listen key server-side. Any socket
// subscribed on it will be closed by the server shortly after.
func (c *Client) CloseUserDataStream(ctx context.Context, listenKey string) error {
	if listenKey == "" {
		return core.NewAPIError(core.ErrKindInvalidArgument, "listenKey is required")
	}
	req := core.NewRequest(http.MethodDelete, core.Version1, core.EndpointUserDataStream).
		SetAuth(core.AuthAPIKey).
		SetQuery("listenKey", listenKey)
	_, err := c.exec.Execute(ctx, req)
	return err
}
