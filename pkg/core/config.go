package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// Credentials holds the API key pair used for private endpoints.
type Credentials struct {
	// APIKey is the public key identifier, sent as a request header.
	APIKey string `json:"api_key" envconfig:"MBX_API_KEY"`
	// SecretKey is the private key used for signing. It is consumed at
	// client construction and never sent over the wire.
	SecretKey string `json:"secret_key" envconfig:"MBX_SECRET_KEY"`
}

// Configured reports whether a complete key pair is present.
func (c *Credentials) Configured() bool {
	return c != nil && c.APIKey != "" && c.SecretKey != ""
}

// Partial reports whether exactly one half of the key pair is present.
// Partial credentials authenticate nothing; they behave like absent ones.
func (c *Credentials) Partial() bool {
	if c == nil {
		return false
	}
	return (c.APIKey != "") != (c.SecretKey != "")
}

// String returns a redacted representation safe for logging.
func (c *Credentials) String() string {
	if c == nil {
		return "Credentials{}"
	}
	return fmt.Sprintf("Credentials{APIKey:%s}", maskKey(c.APIKey))
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}

// Config contains all configuration options for a client.
// It covers endpoints, authentication, timestamping, networking, rate
// limiting, and circuit breaker settings.
type Config struct {
	// BaseURL is the REST root including the API path segment; version and
	// endpoint are appended to it ("https://x/api" + v1 + "ping" becomes
	// "https://x/api/v1/ping").
	BaseURL string `json:"base_url" envconfig:"MBX_BASE_URL" validate:"required,url"`
	// WSBaseURL is the WebSocket root; stream paths are appended to it.
	WSBaseURL string `json:"ws_base_url" envconfig:"MBX_WS_BASE_URL" validate:"required,url"`

	Credentials *Credentials `json:"credentials,omitempty"`

	// AutoTimestamp makes the first signed request synchronize the clock
	// against the server before sending.
	AutoTimestamp bool `json:"auto_timestamp" envconfig:"MBX_AUTO_TIMESTAMP"`
	// RecvWindow, when positive, is sent with signed requests so the server
	// rejects any that arrive outside the window. Zero omits the parameter
	// and leaves the server default in effect.
	RecvWindow time.Duration `json:"recv_window" envconfig:"MBX_RECV_WINDOW" validate:"min=0"`

	// Timeout is the maximum duration for HTTP requests.
	Timeout      time.Duration `json:"timeout" envconfig:"MBX_TIMEOUT" validate:"min=1ms"`
	MaxRetries   int           `json:"max_retries" envconfig:"MBX_MAX_RETRIES" validate:"min=0"`
	RetryWaitMin time.Duration `json:"retry_wait_min" envconfig:"MBX_RETRY_WAIT_MIN" validate:"min=0"`
	RetryWaitMax time.Duration `json:"retry_wait_max" envconfig:"MBX_RETRY_WAIT_MAX" validate:"min=0"`

	// RateLimitWeight is the request weight budget per RateLimitPeriod.
	// Zero disables client-side limiting.
	RateLimitWeight int           `json:"rate_limit_weight" envconfig:"MBX_RATE_LIMIT_WEIGHT" validate:"min=0"`
	RateLimitPeriod time.Duration `json:"rate_limit_period" envconfig:"MBX_RATE_LIMIT_PERIOD" validate:"min=0"`

	CircuitBreakerEnabled          bool          `json:"circuit_breaker_enabled" envconfig:"MBX_CIRCUIT_BREAKER_ENABLED"`
	CircuitBreakerFailThreshold    int           `json:"circuit_breaker_fail_threshold" envconfig:"MBX_CIRCUIT_BREAKER_FAIL_THRESHOLD"`
	CircuitBreakerSuccessThreshold int           `json:"circuit_breaker_success_threshold" envconfig:"MBX_CIRCUIT_BREAKER_SUCCESS_THRESHOLD"`
	CircuitBreakerTimeout          time.Duration `json:"circuit_breaker_timeout" envconfig:"MBX_CIRCUIT_BREAKER_TIMEOUT"`

	LogLevel string `json:"log_level" envconfig:"MBX_LOG_LEVEL" validate:"omitempty,oneof=debug info warn error"`
}

// DefaultConfig returns a Config initialized with production endpoints and
// sensible defaults: auto timestamping on, 10s timeout, 3 retries,
// 100ms-1s retry wait, 1200 weight/min rate limit, circuit breaker with
// 5 failures/2 successes/30s timeout.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:   "https://api.binance.com/api",
		WSBaseURL: "wss://stream.binance.com:9443/ws",

		AutoTimestamp: true,

		Timeout:      10 * time.Second,
		MaxRetries:   3,
		RetryWaitMin: 100 * time.Millisecond,
		RetryWaitMax: 1 * time.Second,

		RateLimitWeight: 1200,
		RateLimitPeriod: time.Minute,

		CircuitBreakerEnabled:          true,
		CircuitBreakerFailThreshold:    5,
		CircuitBreakerSuccessThreshold: 2,
		CircuitBreakerTimeout:          30 * time.Second,

		LogLevel: "info",
	}
}

// FromEnv returns DefaultConfig overlaid with MBX_* environment variables
// (MBX_API_KEY, MBX_SECRET_KEY, MBX_BASE_URL, ...). The result is validated.
func FromEnv() (*Config, error) {
	cfg := DefaultConfig()
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("load config from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.RateLimitWeight > 0 && c.RateLimitPeriod <= 0 {
		return errors.New("RateLimitPeriod must be positive when rate limiting is enabled")
	}
	if c.CircuitBreakerEnabled {
		if c.CircuitBreakerFailThreshold <= 0 {
			return errors.New("CircuitBreakerFailThreshold must be positive when enabled")
		}
		if c.CircuitBreakerSuccessThreshold <= 0 {
			return errors.New("CircuitBreakerSuccessThreshold must be positive when enabled")
		}
		if c.CircuitBreakerTimeout <= 0 {
			return errors.New("CircuitBreakerTimeout must be positive when enabled")
		}
	}
	return nil
}

// WithCredentials sets the API credentials and returns the config for chaining.
func (c *Config) WithCredentials(creds *Credentials) *Config {
	c.Credentials = creds
	return c
}

// WithAutoTimestamp enables or disables clock auto-sync and returns the config
// for chaining.
func (c *Config) WithAutoTimestamp(enabled bool) *Config {
	c.AutoTimestamp = enabled
	return c
}

// WithRecvWindow sets the signed-request receive window and returns the config
// for chaining.
func (c *Config) WithRecvWindow(window time.Duration) *Config {
	c.RecvWindow = window
	return c
}

// WithTimeout sets the request timeout and returns the config for chaining.
func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.Timeout = timeout
	return c
}

// WithRateLimit sets the weight budget per period and returns the config for
// chaining.
func (c *Config) WithRateLimit(weight int, period time.Duration) *Config {
	c.RateLimitWeight = weight
	c.RateLimitPeriod = period
	return c
}
