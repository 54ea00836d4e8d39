package calculate

import "github.com/Alias1177/ExplosionScreener/models"

// RSI computes the relative strength index over the last period close-to-close deltas
// using simple averages. Returns 50 when there are fewer than period+1 candles.
func RSI(candles []models.Candle, period int) float64 {
	if period <= 0 || len(candles) < period+1 {
		return 50.0 // Default value if not enough data
	}

	var gains, losses float64
	start := len(candles) - period
	for i := start; i < len(candles); i++ {
		change := candles[i].Close - candles[i-1].Close
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	if avgLoss == 0 {
		if avgGain > 0 {
			return 100.0
		}
		return 50.0 // flat market
	}

	rs := avgGain / avgLoss
	return clamp(Round(100.0-(100.0/(1.0+rs)), 0), 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
