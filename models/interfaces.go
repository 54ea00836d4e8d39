package models

import "context"

// MarketData is the upstream market-data capability used by the screener.
type MarketData interface {
	FetchAllTickers(ctx context.Context) ([]TickerSnapshot, error)
	FetchKlines(ctx context.Context, symbol, interval string, limit int, startTime int64) ([]Candle, error)
	FetchExchangeInfo(ctx context.Context) ([]SymbolInfo, error)
}
