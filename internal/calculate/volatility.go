package calculate

import "github.com/Alias1177/ExplosionScreener/models"

// IsCompressed reports whether recent price action is contracting: the population standard
// deviation of percent changes over the window is strictly below threshold.
func IsCompressed(candles []models.Candle, window int, threshold float64) bool {
	changes := PercentChanges(candles, window)
	if len(changes) < 2 {
		return false
	}
	return StdDev(changes) < threshold
}

// Volatility is the standard deviation of percent changes over the window, rounded to 2 decimals.
// Returns fallback when there is not enough history.
func Volatility(candles []models.Candle, window int, fallback float64) float64 {
	changes := PercentChanges(candles, window)
	if len(changes) < 2 {
		return fallback
	}
	return Round(StdDev(changes), 2)
}
