package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	httpClient "github.com/Alias1177/ExplosionScreener/internal/platform/http"
	"github.com/Alias1177/ExplosionScreener/models"
)

const (
	tickerPath       = "/api/v3/ticker/24hr"
	klinesPath       = "/api/v3/klines"
	exchangeInfoPath = "/api/v3/exchangeInfo"
)

// Client is the Binance spot REST client
type Client struct {
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new Binance client
type ClientOptions struct {
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration
	RequestsPerSec float64
	Burst          int
	MaxRetries     int
	RetryDelay     time.Duration
}

// NewClient creates a new Binance API client
func NewClient(options ClientOptions) *Client {
	headers := map[string]string{}
	if options.APIKey != "" {
		headers["X-MBX-APIKEY"] = options.APIKey
	}

	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = "https://api.binance.com"
	}

	return &Client{
		baseURL: baseURL,
		httpClient: httpClient.NewClient(httpClient.ClientOptions{
			Timeout:        options.RequestTimeout,
			RequestsPerSec: options.RequestsPerSec,
			Burst:          options.Burst,
			MaxRetries:     options.MaxRetries,
			RetryDelay:     options.RetryDelay,
			Headers:        headers,
			Component:      "binance_client",
		}),
		logger: log.With().Str("component", "binance_client").Logger(),
	}
}

// FetchAllTickers returns the 24h ticker statistics for every symbol, in exchange order
func (c *Client) FetchAllTickers(ctx context.Context) ([]models.TickerSnapshot, error) {
	body, err := c.httpClient.GetJSON(ctx, c.baseURL+tickerPath)
	if err != nil {
		return nil, fmt.Errorf("fetching tickers: %w", err)
	}

	var rows []models.TickerResponse
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("parsing tickers: %w", err)
	}

	tickers := make([]models.TickerSnapshot, 0, len(rows))
	for _, r := range rows {
		tickers = append(tickers, models.TickerSnapshot{
			Symbol:             r.Symbol,
			LastPrice:          r.LastPrice,
			PriceChangePercent: r.PriceChangePercent,
			Volume:             r.Volume,
		})
	}

	c.logger.Debug().Int("count", len(tickers)).Msg("Fetched tickers")
	return tickers, nil
}

// FetchKlines fetches up to limit candles, oldest first. startTime is Unix ms and ignored when zero.
func (c *Client) FetchKlines(ctx context.Context, symbol, interval string, limit int, startTime int64) ([]models.Candle, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("limit", strconv.Itoa(limit))
	if startTime > 0 {
		q.Set("startTime", strconv.FormatInt(startTime, 10))
	}

	body, err := c.httpClient.GetJSON(ctx, c.baseURL+klinesPath+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("fetching klines %s %s: %w", symbol, interval, err)
	}

	candles, err := parseKlines(body)
	if err != nil {
		return nil, fmt.Errorf("parsing klines %s %s: %w", symbol, interval, err)
	}
	return candles, nil
}

// FetchExchangeInfo returns the symbol metadata used to rank new listings
func (c *Client) FetchExchangeInfo(ctx context.Context) ([]models.SymbolInfo, error) {
	body, err := c.httpClient.GetJSON(ctx, c.baseURL+exchangeInfoPath)
	if err != nil {
		return nil, fmt.Errorf("fetching exchange info: %w", err)
	}

	symbols := gjson.GetBytes(body, "symbols")
	if !symbols.IsArray() {
		return nil, fmt.Errorf("parsing exchange info: missing symbols array")
	}

	var infos []models.SymbolInfo
	symbols.ForEach(func(_, s gjson.Result) bool {
		infos = append(infos, models.SymbolInfo{
			Symbol:      s.Get("symbol").String(),
			Status:      s.Get("status").String(),
			QuoteAsset:  s.Get("quoteAsset").String(),
			OnboardDate: s.Get("onboardDate").Int(),
		})
		return true
	})

	c.logger.Debug().Int("count", len(infos)).Msg("Fetched exchange info")
	return infos, nil
}

// parseKlines converts the kline wire format into candles.
//
// Each kline is a mixed-type array:
//
//	[0] Open time (int64, Unix ms)
//	[1] Open      (string)
//	[2] High      (string)
//	[3] Low       (string)
//	[4] Close     (string)
//	[5] Volume    (string, base asset)
//	[6..] close time, quote volume, trades... (unused)
func parseKlines(body []byte) ([]models.Candle, error) {
	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return nil, fmt.Errorf("expected array, got %s", root.Type)
	}

	rows := root.Array()
	candles := make([]models.Candle, 0, len(rows))
	for i, r := range rows {
		fields := r.Array()
		if len(fields) < 6 {
			return nil, fmt.Errorf("kline[%d] has %d fields, want at least 6", i, len(fields))
		}
		candles = append(candles, models.Candle{
			OpenTime: fields[0].Int(),
			Open:     fields[1].Float(),
			High:     fields[2].Float(),
			Low:      fields[3].Float(),
			Close:    fields[4].Float(),
			Volume:   fields[5].Float(),
		})
	}
	return candles, nil
}
