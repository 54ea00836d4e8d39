package models

import "time"

// IntervalDuration converts an exchange kline interval ("5m", "1h", "1d"...) into a duration.
// Unknown intervals return zero.
func IntervalDuration(interval string) time.Duration {
	switch interval {
	case "1m":
		return time.Minute
	case "3m":
		return 3 * time.Minute
	case "5m":
		return 5 * time.Minute
	case "15m":
		return 15 * time.Minute
	case "30m":
		return 30 * time.Minute
	case "1h":
		return time.Hour
	case "2h":
		return 2 * time.Hour
	case "4h":
		return 4 * time.Hour
	case "6h":
		return 6 * time.Hour
	case "8h":
		return 8 * time.Hour
	case "12h":
		return 12 * time.Hour
	case "1d":
		return 24 * time.Hour
	case "3d":
		return 72 * time.Hour
	case "1w":
		return 7 * 24 * time.Hour
	}
	return 0
}

// LookbackStart returns the Unix ms start time covering count candles of interval before now.
// Returns 0 (no start time) for unknown intervals.
func LookbackStart(now time.Time, interval string, count int) int64 {
	d := IntervalDuration(interval)
	if d == 0 || count <= 0 {
		return 0
	}
	return now.Add(-d * time.Duration(count)).UnixMilli()
}
