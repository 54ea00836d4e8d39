package calculate

import "github.com/Alias1177/ExplosionScreener/models"

// VolumeRatio divides the current volume by the mean volume of the historical candles.
// The denominator is floored to 1 when the window is empty or carries no volume.
func VolumeRatio(currentVolume float64, candles []models.Candle) float64 {
	volumes := make([]float64, 0, len(candles))
	for _, c := range candles {
		volumes = append(volumes, c.Volume)
	}

	avg := calculateAverage(volumes)
	if avg <= 0 {
		avg = 1
	}
	return Round(currentVolume/avg, 2)
}
