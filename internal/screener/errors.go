package screener

import "errors"

var (
	// ErrUpstreamUnavailable means the ticker snapshot or exchange info could not be fetched.
	// The pipeline run is aborted; there is no partial result without them.
	ErrUpstreamUnavailable = errors.New("upstream market data unavailable")

	// ErrSymbolNotFound means the requested symbol is not in the ticker snapshot
	ErrSymbolNotFound = errors.New("symbol not found")
)
