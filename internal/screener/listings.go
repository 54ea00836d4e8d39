package screener

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/Alias1177/ExplosionScreener/internal/cache"
	"github.com/Alias1177/ExplosionScreener/models"
)

const statusTrading = "TRADING"

// NewListings returns the most recently onboarded tradable quote pairs, excluding popular
// tokens, newest first. The set is cached for the long TTL.
func (s *Screener) NewListings(ctx context.Context) ([]string, error) {
	if cached, ok := s.cache.Listings.Get(cache.ListingsKey); ok {
		return cached, nil
	}

	infos, err := s.market.FetchExchangeInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: exchange info: %w", ErrUpstreamUnavailable, err)
	}

	rows := make([]models.SymbolInfo, 0, len(infos))
	dated := false
	for _, info := range infos {
		if info.Status != "" && info.Status != statusTrading {
			continue
		}
		if !s.isQuotePair(info.Symbol) || s.popular.Contains(info.Symbol) {
			continue
		}
		if info.OnboardDate > 0 {
			dated = true
		}
		rows = append(rows, info)
	}

	if dated {
		slices.SortStableFunc(rows, func(a, b models.SymbolInfo) int {
			return cmp.Compare(b.OnboardDate, a.OnboardDate)
		})
	} else {
		// Without onboard dates the exchange lists symbols oldest first
		slices.Reverse(rows)
	}

	rows = take(rows, positiveOr(s.cfg.NewListingLimit, 30))
	symbols := make([]string, 0, len(rows))
	for _, r := range rows {
		symbols = append(symbols, r.Symbol)
	}

	s.cache.Listings.Set(cache.ListingsKey, symbols)
	s.logger.Debug().Int("count", len(symbols)).Msg("Refreshed new listings")
	return symbols, nil
}
