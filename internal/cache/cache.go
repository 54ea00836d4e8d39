// Package cache holds the short- and long-lived TTL stores that throttle upstream load.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/Alias1177/ExplosionScreener/models"
)

// ListingsKey is the only key used in the long-lived store
const ListingsKey = "new-listings"

// capacity bounds each store; at most a handful of keys are ever in use
const capacity = 8

// Store is a TTL store. Expiry is the only invalidation.
type Store[V any] struct {
	lru *expirable.LRU[string, V]
	ttl time.Duration
}

// NewStore creates a store whose entries live for ttl
func NewStore[V any](ttl time.Duration) *Store[V] {
	return &Store[V]{
		lru: expirable.NewLRU[string, V](capacity, nil, ttl),
		ttl: ttl,
	}
}

// Get returns the value for key, or false on a miss or an expired entry
func (s *Store[V]) Get(key string) (V, bool) {
	return s.lru.Get(key)
}

// Set stores value under key for the store's TTL
func (s *Store[V]) Set(key string, value V) {
	s.lru.Add(key, value)
}

// TTL returns the lifetime of entries in this store
func (s *Store[V]) TTL() time.Duration {
	return s.ttl
}

// Tiered groups the two stores used by the screener
type Tiered struct {
	Candidates *Store[[]models.Candidate] // short TTL, keyed by scenario
	Listings   *Store[[]string]           // long TTL, keyed by ListingsKey
}

// NewTiered creates the short- and long-lived stores
func NewTiered(shortTTL, longTTL time.Duration) *Tiered {
	return &Tiered{
		Candidates: NewStore[[]models.Candidate](shortTTL),
		Listings:   NewStore[[]string](longTTL),
	}
}
