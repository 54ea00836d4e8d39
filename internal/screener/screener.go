// Package screener scans the ticker universe for explosive tokens and ranks them.
package screener

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Alias1177/ExplosionScreener/internal/cache"
	"github.com/Alias1177/ExplosionScreener/internal/config"
	"github.com/Alias1177/ExplosionScreener/internal/metrics"
	"github.com/Alias1177/ExplosionScreener/internal/scoring"
	"github.com/Alias1177/ExplosionScreener/models"
)

// Fallbacks used when the configured value is not positive
const (
	defaultTopN          = 10
	defaultMaxCandidates = 50
	defaultConcurrency   = 8
)

// Screener runs the screening pipeline. It holds no per-run state; the cache is the
// only shared mutable state and is safe for concurrent use.
type Screener struct {
	market    models.MarketData
	cache     *cache.Tiered
	popular   TokenSet
	scenarios map[scoring.Kind]scoring.Scenario
	builder   scoring.RecommendationBuilder
	cfg       *config.Config
	now       func() time.Time
	logger    zerolog.Logger
}

// New creates a screener. popular is built once at startup and never mutated.
func New(market models.MarketData, c *cache.Tiered, popular TokenSet, cfg *config.Config) *Screener {
	return &Screener{
		market:  market,
		cache:   c,
		popular: popular,
		scenarios: map[scoring.Kind]scoring.Scenario{
			scoring.KindExplosion:    scoring.Explosion(cfg),
			scoring.KindPreExplosion: scoring.PreExplosion(cfg),
			scoring.KindAnalysis:     scoring.Analysis(cfg),
		},
		builder: scoring.NewRecommendationBuilder(cfg),
		cfg:     cfg,
		now:     time.Now,
		logger:  log.With().Str("component", "screener").Logger(),
	}
}

// Candidates returns the ranked candidates for a filtering scenario
// (explosion-candidates or pre-explosion-signals). Results are cached for the short TTL.
func (s *Screener) Candidates(ctx context.Context, kind scoring.Kind) ([]models.Candidate, error) {
	scenario, ok := s.scenarios[kind]
	if !ok || !scenario.Filter {
		return nil, fmt.Errorf("unknown screening scenario %q", kind)
	}
	key := string(kind)

	if cached, ok := s.cache.Candidates.Get(key); ok {
		metrics.RecordPipelineRun(key, "cache_hit", 0)
		s.logger.Debug().Str("scenario", key).Int("count", len(cached)).Msg("Serving cached candidates")
		return cached, nil
	}

	start := s.now()
	candidates, err := s.run(ctx, scenario)
	if err != nil {
		metrics.RecordPipelineRun(key, "error", 0)
		s.logger.Error().Err(err).Str("scenario", key).Msg("Screening run failed")
		return nil, err
	}

	s.cache.Candidates.Set(key, candidates)
	metrics.RecordPipelineRun(key, "computed", s.now().Sub(start))
	metrics.SetCandidates(key, len(candidates))
	s.logger.Info().
		Str("scenario", key).
		Int("count", len(candidates)).
		Dur("took", s.now().Sub(start)).
		Msg("Screening run completed")
	return candidates, nil
}

func (s *Screener) run(ctx context.Context, scenario scoring.Scenario) ([]models.Candidate, error) {
	var (
		tickers  []models.TickerSnapshot
		listings []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.market.FetchAllTickers(gctx)
		if err != nil {
			return fmt.Errorf("%w: tickers: %w", ErrUpstreamUnavailable, err)
		}
		tickers = t
		return nil
	})
	g.Go(func() error {
		l, err := s.NewListings(gctx)
		if err != nil {
			return err
		}
		listings = l
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	newListings := NewTokenSet(listings)

	var admitted []models.TickerSnapshot
	for _, t := range s.eligible(tickers) {
		if t.Volume < scenario.VolumeFloor {
			s.logger.Debug().
				Str("symbol", t.Symbol).
				Float64("volume", t.Volume).
				Float64("floor", scenario.VolumeFloor).
				Msg("Below volume floor, skipping")
			continue
		}
		admitted = append(admitted, t)
	}

	// Results are written by index so the pre-sort order is the ticker order
	results := make([]*models.Candidate, len(admitted))

	var pool errgroup.Group
	pool.SetLimit(positiveOr(s.cfg.Concurrency, defaultConcurrency))
	for i, t := range admitted {
		i, t := i, t // per-iteration copies (module targets go 1.21)
		pool.Go(func() error {
			ind := s.indicators(ctx, t)
			isNew := newListings.Contains(t.Symbol)
			score := scenario.Score(ind, isNew)
			if !scenario.Admit(ind, score) {
				return nil
			}
			c := s.candidate(scenario.Kind, t, ind, score, isNew)
			results[i] = &c
			return nil
		})
	}
	_ = pool.Wait()

	// A cancelled run degrades every indicator; do not let it reach the cache
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("screening interrupted: %w", err)
	}

	candidates := make([]models.Candidate, 0, len(results))
	for _, c := range results {
		if c != nil {
			candidates = append(candidates, *c)
		}
	}

	rank(candidates)
	return take(candidates, positiveOr(s.cfg.TopN, defaultTopN)), nil
}

// eligible keeps quote-asset pairs that are not popular, capped in raw ticker order.
// The cap bounds fan-out cost; it is not a top-K by volume.
func (s *Screener) eligible(tickers []models.TickerSnapshot) []models.TickerSnapshot {
	limit := positiveOr(s.cfg.MaxCandidates, defaultMaxCandidates)

	out := make([]models.TickerSnapshot, 0, limit)
	for _, t := range tickers {
		if len(out) == limit {
			break
		}
		if !s.isQuotePair(t.Symbol) || s.popular.Contains(t.Symbol) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (s *Screener) isQuotePair(symbol string) bool {
	return len(symbol) > len(s.cfg.QuoteAsset) && strings.HasSuffix(symbol, s.cfg.QuoteAsset)
}

func (s *Screener) candidate(kind scoring.Kind, t models.TickerSnapshot, ind models.IndicatorSet, score int, isNew bool) models.Candidate {
	return models.Candidate{
		Symbol:         t.Symbol,
		Price:          t.LastPrice,
		Change5m:       ind.Change5m,
		Change1h:       ind.Change1h,
		Volume:         t.Volume,
		VolumeRatio:    ind.VolumeRatio,
		RSI:            ind.RSI,
		Volatility:     ind.Volatility,
		Score:          score,
		IsNewListing:   isNew,
		IsCompressed:   ind.IsCompressed,
		Recommendation: s.builder.Build(kind, t.LastPrice, score),
	}
}

// rank orders by score descending; equal scores are ordered by symbol ascending
func rank(candidates []models.Candidate) {
	slices.SortStableFunc(candidates, func(a, b models.Candidate) int {
		if a.Score != b.Score {
			return cmp.Compare(b.Score, a.Score)
		}
		return strings.Compare(a.Symbol, b.Symbol)
	})
}

// take returns at most n leading elements as a new slice
func take[T any](items []T, n int) []T {
	if len(items) > n {
		items = items[:n]
	}
	return slices.Clone(items)
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
