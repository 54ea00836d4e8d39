package screener

import (
	"context"
	"fmt"
	"strings"

	"github.com/Alias1177/ExplosionScreener/internal/scoring"
	"github.com/Alias1177/ExplosionScreener/models"
)

// Analyze scores exactly one symbol with the explosion formula and no admission filter.
// The symbol is upper-cased and the quote asset is appended when missing. Not cached.
func (s *Screener) Analyze(ctx context.Context, symbol string) (models.Candidate, error) {
	symbol = s.normalize(symbol)
	if symbol == "" {
		return models.Candidate{}, fmt.Errorf("%w: empty symbol", ErrSymbolNotFound)
	}

	tickers, err := s.market.FetchAllTickers(ctx)
	if err != nil {
		return models.Candidate{}, fmt.Errorf("%w: tickers: %w", ErrUpstreamUnavailable, err)
	}

	var (
		ticker models.TickerSnapshot
		found  bool
	)
	for _, t := range tickers {
		if t.Symbol == symbol {
			ticker, found = t, true
			break
		}
	}
	if !found {
		return models.Candidate{}, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}

	isNew := false
	if listings, err := s.NewListings(ctx); err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("New listings unavailable, scoring as established")
	} else {
		isNew = NewTokenSet(listings).Contains(symbol)
	}

	scenario := s.scenarios[scoring.KindAnalysis]
	ind := s.indicators(ctx, ticker)
	score := scenario.Score(ind, isNew)

	s.logger.Debug().Str("symbol", symbol).Int("score", score).Msg("Analyzed symbol")
	return s.candidate(scoring.KindAnalysis, ticker, ind, score, isNew), nil
}

func (s *Screener) normalize(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return ""
	}
	if !strings.HasSuffix(symbol, s.cfg.QuoteAsset) || symbol == s.cfg.QuoteAsset {
		symbol += s.cfg.QuoteAsset
	}
	return symbol
}
