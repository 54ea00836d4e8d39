package screener

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/Alias1177/ExplosionScreener/models"
)

// TopGainers ranks quote pairs by 24h price change. No indicators, no cache.
func (s *Screener) TopGainers(ctx context.Context) ([]models.TickerSnapshot, error) {
	tickers, err := s.market.FetchAllTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: tickers: %w", ErrUpstreamUnavailable, err)
	}

	gainers := make([]models.TickerSnapshot, 0, len(tickers))
	for _, t := range tickers {
		if s.isQuotePair(t.Symbol) && t.Volume > 0 && t.LastPrice > 0 {
			gainers = append(gainers, t)
		}
	}

	slices.SortStableFunc(gainers, func(a, b models.TickerSnapshot) int {
		if c := cmp.Compare(b.PriceChangePercent, a.PriceChangePercent); c != 0 {
			return c
		}
		return strings.Compare(a.Symbol, b.Symbol)
	})
	return take(gainers, positiveOr(s.cfg.TopN, defaultTopN)), nil
}
