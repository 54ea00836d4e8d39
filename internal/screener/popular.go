package screener

import "strings"

// DefaultPopularTokens are liquid, well-known pairs that are never treated as new or explosive
var DefaultPopularTokens = []string{
	"BTCUSDT", "ETHUSDT", "BNBUSDT", "XRPUSDT", "ADAUSDT", "SOLUSDT", "DOGEUSDT",
	"DOTUSDT", "MATICUSDT", "POLUSDT", "LTCUSDT", "TRXUSDT", "AVAXUSDT", "LINKUSDT",
	"ATOMUSDT", "UNIUSDT", "XLMUSDT", "ETCUSDT", "BCHUSDT", "FILUSDT", "NEARUSDT",
	"APTUSDT", "ARBUSDT", "OPUSDT", "TONUSDT", "SHIBUSDT", "USDCUSDT", "FDUSDUSDT",
	"TUSDUSDT", "DAIUSDT", "WBTCUSDT",
}

// TokenSet is an immutable set of symbols. Build it once at startup and share it.
type TokenSet struct {
	symbols map[string]struct{}
}

// NewTokenSet builds a set from symbols, case-insensitively
func NewTokenSet(symbols []string) TokenSet {
	set := TokenSet{symbols: make(map[string]struct{}, len(symbols))}
	for _, s := range symbols {
		set.symbols[strings.ToUpper(strings.TrimSpace(s))] = struct{}{}
	}
	return set
}

// Contains reports whether symbol is a member
func (t TokenSet) Contains(symbol string) bool {
	_, ok := t.symbols[strings.ToUpper(symbol)]
	return ok
}

// Len returns the number of members
func (t TokenSet) Len() int {
	return len(t.symbols)
}
