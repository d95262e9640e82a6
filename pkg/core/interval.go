package core

// KlineInterval identifies the candle width of a kline query or stream.
// The value is the wire token used in both query parameters and stream paths.
type KlineInterval string

// Kline interval constants define the supported candle widths.
const (
	Interval1m  KlineInterval = "1m"
	Interval3m  KlineInterval = "3m"
	Interval5m  KlineInterval = "5m"
	Interval15m KlineInterval = "15m"
	Interval30m KlineInterval = "30m"
	Interval1h  KlineInterval = "1h"
	Interval2h  KlineInterval = "2h"
	Interval4h  KlineInterval = "4h"
	Interval6h  KlineInterval = "6h"
	Interval8h  KlineInterval = "8h"
	Interval12h KlineInterval = "12h"
	Interval1d  KlineInterval = "1d"
	Interval3d  KlineInterval = "3d"
	Interval1w  KlineInterval = "1w"
	Interval1M  KlineInterval = "1M"
)

// String returns the wire token for the interval.
func (i KlineInterval) String() string {
	return string(i)
}

// Valid reports whether the interval is one the exchange accepts.
func (i KlineInterval) Valid() bool {
	switch i {
	case Interval1m, Interval3m, Interval5m, Interval15m, Interval30m,
		Interval1h, Interval2h, Interval4h, Interval6h, Interval8h, Interval12h,
		Interval1d, Interval3d, Interval1w, Interval1M:
		return true
	}
	return false
}
