// Package clock keeps a running estimate of the offset between the local
// clock and the exchange's server clock. Signed endpoints reject requests
// whose timestamp drifts outside the server's receive window, so timestamps
// are generated from the adjusted clock rather than the local one.
package clock

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// TimeFunc returns the server's current time in epoch milliseconds.
type TimeFunc func(ctx context.Context) (int64, error)

// Synchronizer measures and stores the local-to-server clock offset.
// All methods are safe for concurrent use.
type Synchronizer struct {
	fetch  TimeFunc
	logger zerolog.Logger
	nowFn  func() time.Time

	mu           sync.Mutex
	offsetMillis int64
	synced       bool
}

// New creates a Synchronizer that measures the server clock through fetch.
// The offset is unknown until the first successful Sync.
func New(fetch TimeFunc, logger zerolog.Logger) *Synchronizer {
	return &Synchronizer{
		fetch:  fetch,
		logger: logger,
		nowFn:  time.Now,
	}
}

// Sync fetches the server time once and recomputes the offset, attributing
// half of the round trip to the outbound leg. The stored state is only
// replaced on success; a failed fetch leaves the previous offset in place.
// Concurrent calls are permitted and the last writer wins.
func (s *Synchronizer) Sync(ctx context.Context) error {
	start := s.nowFn()
	serverMillis, err := s.fetch(ctx)
	if err != nil {
		return err
	}
	elapsed := s.nowFn().Sub(start)
	offset := serverMillis - start.UnixMilli() - elapsed.Milliseconds()/2

	s.mu.Lock()
	s.offsetMillis = offset
	s.synced = true
	s.mu.Unlock()

	s.logger.Debug().
		Int64("offset_ms", offset).
		Dur("round_trip", elapsed).
		Msg("clock synchronized")
	return nil
}

// Synced reports whether at least one Sync has succeeded.
func (s *Synchronizer) Synced() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.synced
}

// Now returns the current time adjusted by the measured offset, or the raw
// local time if no sync has succeeded yet.
func (s *Synchronizer) Now() time.Time {
	s.mu.Lock()
	offset, synced := s.offsetMillis, s.synced
	s.mu.Unlock()

	now := s.nowFn()
	if !synced {
		return now
	}
	return now.Add(time.Duration(offset) * time.Millisecond)
}

// Offset returns the measured offset and whether it is valid.
func (s *Synchronizer) Offset() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Duration(s.offsetMillis) * time.Millisecond, s.synced
}
