// Package rest executes REST requests against the exchange. It owns the
// request pipeline: credential checks, timestamping, signing, rate limiting,
// circuit breaking, and normalization of every failure into the uniform
// error shape.
package rest

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
	"resty.dev/v3"

	"mbx/internal/circuitbreaker"
	"mbx/internal/clock"
	"mbx/internal/ratelimit"
	"mbx/internal/sign"
	"mbx/pkg/core"
)

const headerAPIKey = "X-MBX-APIKEY"

// Executor sends requests built by the client packages. A nil signer means
// no credentials were configured; private requests then fail locally.
type Executor struct {
	cfg     *core.Config
	base    string
	client  *resty.Client
	apiKey  string
	signer  *sign.Signer
	clock   *clock.Synchronizer
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.Breaker
	logger  zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// New creates an Executor from an already validated config.
func New(cfg *core.Config, logger zerolog.Logger) (*Executor, error) {
	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	client.SetRetryCount(cfg.MaxRetries)
	client.SetRetryWaitTime(cfg.RetryWaitMin)
	client.SetRetryMaxWaitTime(cfg.RetryWaitMax)

	e := &Executor{
		cfg:    cfg,
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		client: client,
		logger: logger,
	}

	if cfg.Credentials.Configured() {
		signer, err := sign.New(cfg.Credentials.SecretKey)
		if err != nil {
			return nil, err
		}
		e.signer = signer
		e.apiKey = cfg.Credentials.APIKey
	}

	e.clock = clock.New(e.fetchServerTime, logger)

	if cfg.RateLimitWeight > 0 {
		e.limiter = ratelimit.New(cfg.RateLimitWeight, cfg.RateLimitPeriod)
	}
	if cfg.CircuitBreakerEnabled {
		e.breaker = circuitbreaker.New(circuitbreaker.Config{
			FailThreshold:    cfg.CircuitBreakerFailThreshold,
			SuccessThreshold: cfg.CircuitBreakerSuccessThreshold,
			Timeout:          cfg.CircuitBreakerTimeout,
		})
	}

	client.AddRequestMiddleware(func(_ *resty.Client, req *resty.Request) error {
		logger.Debug().
			Str("method", req.Method).
			Str("url", req.URL).
			Msg("http request")
		return nil
	})
	client.AddResponseMiddleware(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug().
			Str("method", resp.Request.Method).
			Str("url", resp.Request.URL).
			Int("status", resp.StatusCode()).
			Int("size", len(resp.Bytes())).
			Msg("http response")
		return nil
	})

	return e, nil
}

// Execute runs a request through the full pipeline and returns the raw
// response body. Signed requests get recvWindow and timestamp appended when
// absent, and the signature is computed over the exact encoded query so the
// signed bytes and the sent bytes can never diverge.
func (e *Executor) Execute(ctx context.Context, req *core.Request) ([]byte, error) {
	e.mu.RLock()
	closed := e.closed
	e.mu.RUnlock()
	if closed {
		return nil, core.ErrClientClosed
	}

	if req.Auth != core.AuthNone && e.signer == nil {
		return nil, core.NewAPIError(core.ErrKindNotAuthenticated,
			fmt.Sprintf("%s /v%s/%s requires credentials", req.Method, req.Version, req.Path))
	}

	query := core.NewParams()
	if req.Query != nil {
		query = req.Query.Clone()
	}

	if req.Auth == core.AuthSigned {
		if e.cfg.RecvWindow > 0 && !query.Has("recvWindow") {
			query.Set("recvWindow", e.cfg.RecvWindow.Milliseconds())
		}
		if !query.Has("timestamp") {
			if err := e.ensureClock(ctx); err != nil {
				return nil, err
			}
			query.Set("timestamp", e.clock.Now().UnixMilli())
		}
	}

	rawQuery := query.Encode()
	if req.Auth == core.AuthSigned {
		signature := e.signer.Sign(rawQuery)
		if rawQuery == "" {
			rawQuery = "signature=" + signature
		} else {
			rawQuery += "&signature=" + signature
		}
	}

	if e.limiter != nil {
		if err := e.limiter.WaitN(ctx, req.Weight); err != nil {
			return nil, core.NewTransportError(err)
		}
	}
	if e.breaker != nil && !e.breaker.Allow() {
		return nil, core.NewAPIError(core.ErrKindTransport, "circuit breaker open")
	}

	resp, err := e.send(ctx, req.Method, e.endpointURL(req.Version, req.Path, rawQuery), req.Auth)
	if err != nil {
		e.record(false)
		return nil, core.NewTransportError(err)
	}

	status := resp.StatusCode()
	if status >= 200 && status < 300 {
		e.record(true)
		return resp.Bytes(), nil
	}

	// A 4xx means the service answered and is healthy; only 5xx counts
	// against the breaker.
	e.record(status < 500)
	return nil, parseErrorBody(status, resp.Status(), resp.Bytes())
}

// Do executes a request and decodes the JSON response body into T.
func Do[T any](ctx context.Context, e *Executor, req *core.Request) (T, error) {
	var out T
	data, err := e.Execute(ctx, req)
	if err != nil {
		return out, err
	}
	if len(data) == 0 {
		return out, nil
	}
	if err := sonic.Unmarshal(data, &out); err != nil {
		return out, core.NewDecodeError(err)
	}
	return out, nil
}

// Clock exposes the server-clock synchronizer.
func (e *Executor) Clock() *clock.Synchronizer {
	return e.clock
}

// Close releases the underlying HTTP resources. Later Execute calls return
// ErrClientClosed.
func (e *Executor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	return e.client.Close()
}

func (e *Executor) ensureClock(ctx context.Context) error {
	if !e.cfg.AutoTimestamp || e.clock.Synced() {
		return nil
	}
	if err := e.clock.Sync(ctx); err != nil {
		return fmt.Errorf("sync server clock: %w", err)
	}
	return nil
}

func (e *Executor) fetchServerTime(ctx context.Context) (int64, error) {
	req := core.NewRequest(http.MethodGet, core.Version1, core.EndpointTime)
	st, err := Do[core.ServerTime](ctx, e, req)
	if err != nil {
		return 0, err
	}
	return st.ServerTime, nil
}

func (e *Executor) endpointURL(version, path, rawQuery string) string {
	u := e.base + "/v" + version + "/" + path
	if rawQuery != "" {
		u += "?" + rawQuery
	}
	return u
}

func (e *Executor) send(ctx context.Context, method, url string, auth core.AuthLevel) (*resty.Response, error) {
	r := e.client.R().SetContext(ctx)
	if auth != core.AuthNone {
		r.SetHeader(headerAPIKey, e.apiKey)
	}
	switch method {
	case http.MethodGet:
		return r.Get(url)
	case http.MethodPost:
		return r.Post(url)
	case http.MethodPut:
		return r.Put(url)
	case http.MethodDelete:
		return r.Delete(url)
	default:
		return nil, fmt.Errorf("unsupported HTTP method %q", method)
	}
}

func (e *Executor) record(success bool) {
	if e.breaker != nil {
		e.breaker.Record(success)
	}
}

type wireError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// parseErrorBody maps a non-2xx response to the uniform error shape. Bodies
// carrying the exchange's {"code","msg"} envelope become server rejections;
// anything else is reported as a transport-level HTTP failure.
func parseErrorBody(status int, statusText string, body []byte) *core.APIError {
	var we wireError
	if err := sonic.Unmarshal(body, &we); err == nil && we.Code != 0 {
		return core.NewServerError(status, we.Code, we.Msg)
	}
	return &core.APIError{
		Kind:       core.ErrKindTransport,
		HTTPStatus: status,
		Message:    "HTTP error: " + statusText,
	}
}
