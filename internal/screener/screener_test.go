package screener

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/ExplosionScreener/internal/cache"
	"github.com/Alias1177/ExplosionScreener/internal/config"
	"github.com/Alias1177/ExplosionScreener/internal/scoring"
	"github.com/Alias1177/ExplosionScreener/models"
)

// profile describes the synthetic market behavior of one symbol
type profile struct {
	change5m float64
	volume   float64 // 24h volume; daily history averages half of it (volume ratio 2)
}

type fakeMarket struct {
	mu sync.Mutex

	tickers    []models.TickerSnapshot
	tickerErr  error
	infos      []models.SymbolInfo
	infoErr    error
	profiles   map[string]profile
	failKlines map[string]bool

	tickerCalls int
	infoCalls   int
	klineCalls  map[string]int
}

func newFakeMarket() *fakeMarket {
	return &fakeMarket{
		profiles:   map[string]profile{},
		failKlines: map[string]bool{},
		klineCalls: map[string]int{},
	}
}

// hot adds a ticker whose indicators are: change5m as given, change1h 5, RSI 55,
// volume ratio 2, compressed. With change5m=4 this is the worked example scoring 48.
func (f *fakeMarket) hot(symbol string, change5m, volume float64) *fakeMarket {
	f.tickers = append(f.tickers, models.TickerSnapshot{Symbol: symbol, LastPrice: 1, PriceChangePercent: change5m, Volume: volume})
	f.profiles[symbol] = profile{change5m: change5m, volume: volume}
	return f
}

func (f *fakeMarket) FetchAllTickers(ctx context.Context) ([]models.TickerSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tickerCalls++
	if f.tickerErr != nil {
		return nil, f.tickerErr
	}
	return f.tickers, nil
}

func (f *fakeMarket) FetchExchangeInfo(ctx context.Context) ([]models.SymbolInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.infoCalls++
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	return f.infos, nil
}

func (f *fakeMarket) FetchKlines(ctx context.Context, symbol, interval string, limit int, startTime int64) ([]models.Candle, error) {
	f.mu.Lock()
	f.klineCalls[symbol]++
	fail := f.failKlines[symbol]
	p, ok := f.profiles[symbol]
	f.mu.Unlock()

	if fail {
		return nil, errors.New("upstream timeout")
	}
	if !ok {
		return nil, nil
	}

	switch {
	case interval == "5m":
		return closes(100, 100+p.change5m), nil
	case interval == "1h" && limit == 2:
		return closes(100, 105), nil
	case interval == "1h":
		// alternating +1.2 / -1 deltas: RS 1.2, RSI 55
		series := []float64{100}
		for i := 1; i < limit; i++ {
			step := -1.0
			if i%2 == 1 {
				step = 1.2
			}
			series = append(series, series[i-1]+step)
		}
		return closes(series...), nil
	case interval == "1d":
		candles := make([]models.Candle, limit)
		for i := range candles {
			candles[i] = models.Candle{Close: 1, Volume: p.volume / 2}
		}
		return candles, nil
	case interval == "15m":
		series := make([]float64, limit)
		for i := range series {
			series[i] = 100 + float64(i%2)*0.1
		}
		return closes(series...), nil
	}
	return nil, nil
}

func (f *fakeMarket) calls(symbol string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.klineCalls[symbol]
}

func closes(values ...float64) []models.Candle {
	candles := make([]models.Candle, len(values))
	for i, v := range values {
		candles[i] = models.Candle{OpenTime: int64(i), Open: v, High: v, Low: v, Close: v, Volume: 1}
	}
	return candles
}

func newTestScreener(market models.MarketData, mutate func(*config.Config)) *Screener {
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	return New(market, cache.NewTiered(cfg.CacheShortTTL, cfg.CacheLongTTL), NewTokenSet(DefaultPopularTokens), cfg)
}

func symbols(candidates []models.Candidate) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.Symbol)
	}
	return out
}

func TestCandidates_RanksByScore(t *testing.T) {
	market := newFakeMarket().
		hot("AAAUSDT", 4, 2_000_000).
		hot("BBBUSDT", 10, 2_000_000).
		hot("CCCUSDT", 7, 2_000_000)

	got, err := newTestScreener(market, nil).Candidates(context.Background(), scoring.KindExplosion)
	require.NoError(t, err)

	assert.Equal(t, []string{"BBBUSDT", "CCCUSDT", "AAAUSDT"}, symbols(got))
	assert.Equal(t, []int{56, 52, 48}, []int{got[0].Score, got[1].Score, got[2].Score})

	aaa := got[2]
	assert.Equal(t, 4.0, aaa.Change5m)
	assert.Equal(t, 5.0, aaa.Change1h)
	assert.Equal(t, 55.0, aaa.RSI)
	assert.Equal(t, 2.0, aaa.VolumeRatio)
	assert.True(t, aaa.IsCompressed)
	assert.False(t, aaa.IsNewListing)
	assert.Equal(t, models.ActionWatch, aaa.Recommendation.Action)
	assert.InDelta(t, 1.25, aaa.Recommendation.TargetPrice, 1e-9)
}

func TestCandidates_TieBreakBySymbol(t *testing.T) {
	market := newFakeMarket().
		hot("ZZZUSDT", 4, 2_000_000).
		hot("MMMUSDT", 4, 2_000_000).
		hot("QQQUSDT", 4, 2_000_000)

	got, err := newTestScreener(market, nil).Candidates(context.Background(), scoring.KindExplosion)
	require.NoError(t, err)
	assert.Equal(t, []string{"MMMUSDT", "QQQUSDT", "ZZZUSDT"}, symbols(got))
}

func TestCandidates_NeverExceedsTopN(t *testing.T) {
	market := newFakeMarket()
	for _, s := range []string{"A1USDT", "A2USDT", "A3USDT", "A4USDT", "A5USDT", "A6USDT"} {
		market.hot(s, 4, 2_000_000)
	}

	for _, topN := range []int{1, 3, 6, 10} {
		s := newTestScreener(market, func(c *config.Config) { c.TopN = topN })
		for _, kind := range []scoring.Kind{scoring.KindExplosion, scoring.KindPreExplosion} {
			got, err := s.Candidates(context.Background(), kind)
			require.NoError(t, err)
			assert.LessOrEqual(t, len(got), topN)
			assert.Len(t, got, min(topN, 6))
		}
	}
}

func TestCandidates_ExcludesPopularAndForeignQuotes(t *testing.T) {
	market := newFakeMarket().
		hot("BTCUSDT", 10, 50_000_000).
		hot("ETHBTC", 10, 50_000_000).
		hot("USDT", 10, 50_000_000).
		hot("AAAUSDT", 4, 2_000_000)

	got, err := newTestScreener(market, nil).Candidates(context.Background(), scoring.KindPreExplosion)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAAUSDT"}, symbols(got))
	assert.Zero(t, market.calls("BTCUSDT"), "popular tokens are never fetched")
	assert.Zero(t, market.calls("ETHBTC"))
}

func TestCandidates_VolumeFloorPerScenario(t *testing.T) {
	market := newFakeMarket().
		hot("BIGUSDT", 4, 2_000_000).
		hot("MIDUSDT", 4, 500_000).
		hot("LOWUSDT", 4, 100_000)
	s := newTestScreener(market, nil)

	explosion, err := s.Candidates(context.Background(), scoring.KindExplosion)
	require.NoError(t, err)
	assert.Equal(t, []string{"BIGUSDT"}, symbols(explosion))

	alerts, err := s.Candidates(context.Background(), scoring.KindPreExplosion)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"BIGUSDT", "MIDUSDT"}, symbols(alerts))

	assert.Zero(t, market.calls("LOWUSDT"), "symbols below every floor are never fetched")
}

func TestCandidates_AlertScoresCompressionHigher(t *testing.T) {
	market := newFakeMarket().hot("AAAUSDT", 4, 2_000_000)

	got, err := newTestScreener(market, nil).Candidates(context.Background(), scoring.KindPreExplosion)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 63, got[0].Score)
	assert.Equal(t, models.ActionMonitor, got[0].Recommendation.Action)
	assert.Zero(t, got[0].Recommendation.Support)
}

func TestCandidates_MaxCandidatesUsesTickerOrder(t *testing.T) {
	market := newFakeMarket().
		hot("AAAUSDT", 4, 2_000_000).
		hot("BBBUSDT", 4, 2_000_000).
		hot("CCCUSDT", 10, 2_000_000)

	got, err := newTestScreener(market, func(c *config.Config) { c.MaxCandidates = 2 }).
		Candidates(context.Background(), scoring.KindExplosion)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAAUSDT", "BBBUSDT"}, symbols(got))
	assert.Zero(t, market.calls("CCCUSDT"))
}

func TestCandidates_CacheHitShortCircuits(t *testing.T) {
	market := newFakeMarket().hot("AAAUSDT", 4, 2_000_000).hot("BBBUSDT", 10, 2_000_000)
	s := newTestScreener(market, nil)

	first, err := s.Candidates(context.Background(), scoring.KindExplosion)
	require.NoError(t, err)
	klineCalls := market.calls("AAAUSDT")

	second, err := s.Candidates(context.Background(), scoring.KindExplosion)
	require.NoError(t, err)

	firstJSON, _ := json.Marshal(first)
	secondJSON, _ := json.Marshal(second)
	assert.Equal(t, firstJSON, secondJSON)
	assert.Equal(t, 1, market.tickerCalls)
	assert.Equal(t, klineCalls, market.calls("AAAUSDT"))
}

func TestCandidates_CacheExpires(t *testing.T) {
	market := newFakeMarket().hot("AAAUSDT", 4, 2_000_000)
	s := newTestScreener(market, func(c *config.Config) { c.CacheShortTTL = 20 * time.Millisecond })

	_, err := s.Candidates(context.Background(), scoring.KindExplosion)
	require.NoError(t, err)
	time.Sleep(40 * time.Millisecond)
	_, err = s.Candidates(context.Background(), scoring.KindExplosion)
	require.NoError(t, err)

	assert.Equal(t, 2, market.tickerCalls)
	assert.Equal(t, 1, market.infoCalls, "listings live in the long tier")
}

func TestCandidates_IndicatorFailureDegrades(t *testing.T) {
	market := newFakeMarket().hot("AAAUSDT", 4, 2_000_000).hot("BADUSDT", 10, 2_000_000)
	market.failKlines["BADUSDT"] = true

	got, err := newTestScreener(market, nil).Candidates(context.Background(), scoring.KindExplosion)
	require.NoError(t, err, "one symbol's failure must not abort the batch")
	assert.Equal(t, []string{"AAAUSDT"}, symbols(got))
}

func TestCandidates_TickerFailureAborts(t *testing.T) {
	market := newFakeMarket().hot("AAAUSDT", 4, 2_000_000)
	market.tickerErr = errors.New("connection refused")
	s := newTestScreener(market, nil)

	_, err := s.Candidates(context.Background(), scoring.KindExplosion)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstreamUnavailable))

	_, ok := s.cache.Candidates.Get(string(scoring.KindExplosion))
	assert.False(t, ok, "failed runs are not cached")
}

func TestCandidates_ExchangeInfoFailureAborts(t *testing.T) {
	market := newFakeMarket().hot("AAAUSDT", 4, 2_000_000)
	market.infoErr = errors.New("timeout")

	_, err := newTestScreener(market, nil).Candidates(context.Background(), scoring.KindPreExplosion)
	assert.True(t, errors.Is(err, ErrUpstreamUnavailable))
}

func TestCandidates_NewListingBonus(t *testing.T) {
	market := newFakeMarket().hot("AAAUSDT", 4, 2_000_000).hot("NEWUSDT", 4, 2_000_000)
	market.infos = []models.SymbolInfo{{Symbol: "NEWUSDT", Status: "TRADING", QuoteAsset: "USDT", OnboardDate: 1}}

	got, err := newTestScreener(market, nil).Candidates(context.Background(), scoring.KindExplosion)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "NEWUSDT", got[0].Symbol)
	assert.True(t, got[0].IsNewListing)
	assert.Equal(t, 63, got[0].Score)
}

func TestCandidates_UnknownScenario(t *testing.T) {
	s := newTestScreener(newFakeMarket(), nil)
	_, err := s.Candidates(context.Background(), scoring.KindAnalysis)
	assert.Error(t, err)
}

func TestCandidates_CancelledRunIsNotCached(t *testing.T) {
	market := newFakeMarket().hot("AAAUSDT", 4, 2_000_000)
	s := newTestScreener(market, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Candidates(ctx, scoring.KindExplosion)
	require.Error(t, err)
	_, ok := s.cache.Candidates.Get(string(scoring.KindExplosion))
	assert.False(t, ok)
}
