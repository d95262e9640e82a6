package ratelimit

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Limiter enforces the exchange's request-weight budget. Every REST endpoint
// carries a weight, and the server tracks the total weight consumed per
// rolling window; exceeding it earns an HTTP 429 and eventually an IP ban.
// The limiter spends the same budget locally so requests queue instead of
// getting rejected upstream.
type Limiter struct {
	global  *rate.Limiter
	budget  int
	period  time.Duration
	metrics *Metrics
}

// Metrics tracks statistics about limiter usage.
type Metrics struct {
	totalWaits     atomic.Int64
	allowedWaits   atomic.Int64
	deniedWaits    atomic.Int64
	weightConsumed atomic.Int64
}

// New creates a Limiter that allows budget units of request weight per period.
func New(budget int, period time.Duration) *Limiter {
	perSecond := float64(budget) / period.Seconds()
	return &Limiter{
		global:  rate.NewLimiter(rate.Limit(perSecond), budget),
		budget:  budget,
		period:  period,
		metrics: &Metrics{},
	}
}

// WaitN blocks until weight units are available or the context is cancelled.
// Weights below one count as one. Weights above the whole budget are clamped
// to it, so an oversized request waits for a full window rather than failing.
func (l *Limiter) WaitN(ctx context.Context, weight int) error {
	weight = l.clamp(weight)
	l.metrics.totalWaits.Add(1)
	if err := l.global.WaitN(ctx, weight); err != nil {
		l.metrics.deniedWaits.Add(1)
		return err
	}
	l.metrics.allowedWaits.Add(1)
	l.metrics.weightConsumed.Add(int64(weight))
	return nil
}

// AllowN reports whether weight units are available right now, consuming
// them if so.
func (l *Limiter) AllowN(weight int) bool {
	weight = l.clamp(weight)
	l.metrics.totalWaits.Add(1)
	if !l.global.AllowN(time.Now(), weight) {
		l.metrics.deniedWaits.Add(1)
		return false
	}
	l.metrics.allowedWaits.Add(1)
	l.metrics.weightConsumed.Add(int64(weight))
	return true
}

// Budget returns the configured weight budget per period.
func (l *Limiter) Budget() (int, time.Duration) {
	return l.budget, l.period
}

func (l *Limiter) clamp(weight int) int {
	if weight < 1 {
		return 1
	}
	if weight > l.budget {
		return l.budget
	}
	return weight
}

// Metrics returns a snapshot of the current limiter statistics.
func (l *Limiter) Metrics() MetricsSnapshot {
	return MetricsSnapshot{
		TotalWaits:     l.metrics.totalWaits.Load(),
		AllowedWaits:   l.metrics.allowedWaits.Load(),
		DeniedWaits:    l.metrics.deniedWaits.Load(),
		WeightConsumed: l.metrics.weightConsumed.Load(),
	}
}

// MetricsSnapshot is a point-in-time capture of limiter statistics.
type MetricsSnapshot struct {
	// TotalWaits is the total number of weight acquisitions attempted.
	TotalWaits int64
	// AllowedWaits is the number of acquisitions that succeeded.
	AllowedWaits int64
	// DeniedWaits is the number of acquisitions cancelled or rejected.
	DeniedWaits int64
	// WeightConsumed is the total request weight spent.
	WeightConsumed int64
}
