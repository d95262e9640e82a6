package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKlineInterval_Valid(t *testing.T) {
	valid := []KlineInterval{
		Interval1m, Interval3m, Interval5m, Interval15m, Interval30m,
		Interval1h, Interval2h, Interval4h, Interval6h, Interval8h, Interval12h,
		Interval1d, Interval3d, Interval1w, Interval1M,
	}
	for _, interval := range valid {
		assert.True(t, interval.Valid(), "interval %s", interval)
	}

	assert.False(t, KlineInterval("").Valid())
	assert.False(t, KlineInterval("2m").Valid())
	assert.False(t, KlineInterval("1y").Valid())
	// The month token is case sensitive: "1M" is a month, "1m" a minute.
	assert.True(t, KlineInterval("1M").Valid())
}

func TestKlineInterval_String(t *testing.T) {
	assert.Equal(t, "1m", Interval1m.String())
	assert.Equal(t, "1M", Interval1M.String())
}
