package server

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	maxTrackedClients = 10000
	clientIdleTTL     = 10 * time.Minute
)

// RateLimiter throttles inbound requests per client IP. At most maxTrackedClients
// limiters are kept; the least recently seen client is evicted first and idle
// clients expire after clientIdleTTL.
type RateLimiter struct {
	mu      sync.Mutex
	clients *expirable.LRU[string, *rate.Limiter]
	rate    rate.Limit
	burst   int
}

// NewRateLimiter creates a limiter allowing requestsPerSec per client with the given burst
func NewRateLimiter(requestsPerSec float64, burst int) *RateLimiter {
	return newRateLimiter(requestsPerSec, burst, maxTrackedClients, clientIdleTTL)
}

func newRateLimiter(requestsPerSec float64, burst, capacity int, idleTTL time.Duration) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		clients: expirable.NewLRU[string, *rate.Limiter](capacity, nil, idleTTL),
		rate:    rate.Limit(requestsPerSec),
		burst:   burst,
	}
}

// limiter returns the client's limiter, creating it on first sight. Every call
// re-adds the entry so active clients do not expire.
func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.clients.Get(key)
	if !ok {
		l = rate.NewLimiter(rl.rate, rl.burst)
	}
	rl.clients.Add(key, l)
	return l
}

// Handler returns the rate limiting middleware
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientIP(r)
		if !rl.limiter(key).Allow() {
			log.Warn().
				Str("component", "server").
				Str("client", key).
				Str("path", r.URL.Path).
				Msg("Rate limit exceeded")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
