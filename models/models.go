package models

// TickerSnapshot is one row of the exchange's 24h ticker statistics.
type TickerSnapshot struct {
	Symbol             string  `json:"symbol"`
	LastPrice          float64 `json:"lastPrice"`
	PriceChangePercent float64 `json:"priceChangePercent"`
	Volume             float64 `json:"volume"` // 24h base asset volume
}

// Candle represents a single OHLCV candle. OpenTime is Unix milliseconds.
type Candle struct {
	OpenTime int64   `json:"openTime"`
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	Volume   float64 `json:"volume"`
}

// TickerResponse is the wire format of a 24h ticker row. Binance encodes numbers as strings.
type TickerResponse struct {
	Symbol             string  `json:"symbol"`
	LastPrice          float64 `json:"lastPrice,string"`
	PriceChangePercent float64 `json:"priceChangePercent,string"`
	Volume             float64 `json:"volume,string"`
}

// SymbolInfo is the subset of exchange info needed to rank new listings.
type SymbolInfo struct {
	Symbol      string `json:"symbol"`
	Status      string `json:"status"`
	QuoteAsset  string `json:"quoteAsset"`
	OnboardDate int64  `json:"onboardDate,omitempty"` // Unix ms, zero when the exchange does not report it
}

// IndicatorSet holds the indicators derived for one symbol in one pipeline run
type IndicatorSet struct {
	Change5m     float64 `json:"change5m"`
	Change1h     float64 `json:"change1h"`
	RSI          float64 `json:"rsi"`
	VolumeRatio  float64 `json:"volumeRatio"`
	IsCompressed bool    `json:"isCompressed"`
	Volatility   float64 `json:"volatility"` // percent
}

// Recommendation contains human-facing trade levels derived from price and score
type Recommendation struct {
	Action      string  `json:"action"`
	TargetPrice float64 `json:"targetPrice"`
	StopLoss    float64 `json:"stopLoss"`
	Support     float64 `json:"support,omitempty"`
	Resistance  float64 `json:"resistance,omitempty"`
	Confidence  string  `json:"confidence"` // HIGH, MEDIUM, LOW
}

// Candidate is a symbol that passed a scenario's admission predicate
type Candidate struct {
	Symbol         string         `json:"symbol"`
	Price          float64        `json:"price"`
	Change5m       float64        `json:"change5m"`
	Change1h       float64        `json:"change1h"`
	Volume         float64        `json:"volume"`
	VolumeRatio    float64        `json:"volumeRatio"`
	RSI            float64        `json:"rsi"`
	Volatility     float64        `json:"volatility"`
	Score          int            `json:"score"`
	IsNewListing   bool           `json:"isNewListing"`
	IsCompressed   bool           `json:"isCompressed"`
	Recommendation Recommendation `json:"recommendation"`
}

// Recommendation actions
const (
	ActionStrongBuy    = "STRONG_BUY"
	ActionBuy          = "BUY"
	ActionWatch        = "WATCH"
	ActionPrepareEntry = "PREPARE_ENTRY"
	ActionMonitor      = "MONITOR"
)

// Confidence levels
const (
	ConfidenceHigh   = "HIGH"
	ConfidenceMedium = "MEDIUM"
	ConfidenceLow    = "LOW"
)
