package screener

import (
	"context"
	"sync"

	"github.com/Alias1177/ExplosionScreener/internal/calculate"
	"github.com/Alias1177/ExplosionScreener/models"
)

// indicators fetches the five kline windows for one symbol in parallel and derives the
// indicator set. A failed or short fetch degrades that indicator to its neutral default.
func (s *Screener) indicators(ctx context.Context, t models.TickerSnapshot) models.IndicatorSet {
	ind := models.IndicatorSet{
		RSI:         50,
		VolumeRatio: 1,
		Volatility:  s.cfg.VolatilityFallback,
	}
	rsiPeriod := positiveOr(s.cfg.RSIPeriod, 14)
	lookbackDays := positiveOr(s.cfg.VolumeLookbackDays, 7)
	window := positiveOr(s.cfg.VolatilityWindow, 20)

	// Each goroutine writes its own fields of ind
	var wg sync.WaitGroup
	wg.Add(5)

	go func() {
		defer wg.Done()
		if candles, ok := s.klines(ctx, t.Symbol, "change5m", "5m", 2, 0, 2); ok {
			ind.Change5m = calculate.PercentChange(candles)
		}
	}()

	go func() {
		defer wg.Done()
		if candles, ok := s.klines(ctx, t.Symbol, "change1h", "1h", 2, 0, 2); ok {
			ind.Change1h = calculate.PercentChange(candles)
		}
	}()

	go func() {
		defer wg.Done()
		if candles, ok := s.klines(ctx, t.Symbol, "rsi", s.cfg.RSIInterval, rsiPeriod+1, 0, rsiPeriod+1); ok {
			ind.RSI = calculate.RSI(candles, rsiPeriod)
		}
	}()

	go func() {
		defer wg.Done()
		start := models.LookbackStart(s.now(), "1d", lookbackDays)
		if candles, ok := s.klines(ctx, t.Symbol, "volumeRatio", "1d", lookbackDays, start, 1); ok {
			ind.VolumeRatio = calculate.VolumeRatio(t.Volume, candles)
		}
	}()

	go func() {
		defer wg.Done()
		if candles, ok := s.klines(ctx, t.Symbol, "volatility", s.cfg.VolatilityInterval, window, 0, 3); ok {
			ind.IsCompressed = calculate.IsCompressed(candles, window, s.cfg.CompressionThreshold)
			ind.Volatility = calculate.Volatility(candles, window, s.cfg.VolatilityFallback)
		}
	}()

	wg.Wait()
	return ind
}

// klines fetches one window. ok is false only when the fetch failed; short windows are
// returned as-is (the indicator functions fall back on their own) and logged.
func (s *Screener) klines(ctx context.Context, symbol, indicator, interval string, limit int, start int64, minLen int) ([]models.Candle, bool) {
	candles, err := s.market.FetchKlines(ctx, symbol, interval, limit, start)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("symbol", symbol).
			Str("indicator", indicator).
			Msg("Indicator fetch failed, using neutral default")
		return nil, false
	}
	if len(candles) < minLen {
		s.logger.Warn().
			Str("symbol", symbol).
			Str("indicator", indicator).
			Int("candles", len(candles)).
			Int("required", minLen).
			Msg("Insufficient history, using neutral default")
	}
	return candles, true
}
