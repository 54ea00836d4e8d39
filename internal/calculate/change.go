package calculate

import "github.com/Alias1177/ExplosionScreener/models"

// PercentChange returns the change between the first and last close of the window, in percent.
func PercentChange(candles []models.Candle) float64 {
	if len(candles) < 2 {
		return 0
	}
	first := candles[0].Close
	last := candles[len(candles)-1].Close
	if first == 0 {
		return 0
	}
	return Round((last-first)/first*100, 2)
}

// PercentChanges returns the consecutive close-to-close changes, in percent,
// over the last window candles. Pairs with a zero previous close are skipped.
func PercentChanges(candles []models.Candle, window int) []float64 {
	if window > 0 && len(candles) > window {
		candles = candles[len(candles)-window:]
	}
	if len(candles) < 2 {
		return nil
	}

	changes := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		prev := candles[i-1].Close
		if prev == 0 {
			continue
		}
		changes = append(changes, (candles[i].Close-prev)/prev*100)
	}
	return changes
}
