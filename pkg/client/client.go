package client

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"mbx/internal/rest"
	"mbx/internal/streams"
	"mbx/pkg/core"
)

// Stream is a handle to one live WebSocket subscription. Closing it tears the
// underlying socket down; a closed stream never reconnects.
type Stream = streams.Handle

// Client is the exchange API client. It owns the request executor, the clock
// synchronizer, and the stream manager; one instance is safe for concurrent
// use and is normally shared across the whole program.
type Client struct {
	cfg     *core.Config
	exec    *rest.Executor
	streams *streams.Manager
	logger  zerolog.Logger
}

// Option is a functional option for configuring the Client.
type Option func(*Options)

// Options holds configuration options for the Client.
type Options struct {
	Logger zerolog.Logger
}

// WithLogger returns an option that sets the logger for the client.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// New creates a Client from the given configuration and options. A nil config
// uses DefaultConfig. The configuration is validated before anything is
// constructed; credentials are optional and only gate the private endpoints.
func New(cfg *core.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = core.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	options := &Options{
		Logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(options)
	}

	logger := options.Logger
	if cfg.LogLevel != "" {
		if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
			logger = logger.Level(level)
		}
	}

	if cfg.Credentials.Partial() {
		logger.Warn().Msg("partial credentials ignored; configure both API key and secret")
	}

	exec, err := rest.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create request executor: %w", err)
	}

	mgr := streams.NewManager(streams.Config{BaseURL: cfg.WSBaseURL}, logger)

	return &Client{
		cfg:     cfg,
		exec:    exec,
		streams: mgr,
		logger:  logger,
	}, nil
}

// SyncClock forces a clock synchronization round-trip against the server time
// endpoint. With AutoTimestamp enabled this happens implicitly before the
// first signed request; calling it up front moves the latency off that path.
func (c *Client) SyncClock(ctx context.Context) error {
	return c.exec.Clock().Sync(ctx)
}

// ClockOffset returns the measured server clock offset and whether a
// synchronization has completed.
func (c *Client) ClockOffset() (time.Duration, bool) {
	return c.exec.Clock().Offset()
}

// Close shuts the client down: every open stream is torn down and the HTTP
// transport is released. Requests after Close fail with ErrClientClosed.
func (c *Client) Close() error {
	c.streams.CloseAll()
	return c.exec.Close()
}
