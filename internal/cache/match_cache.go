package cache

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/openroads/corridor/internal/lib/matching"
)

// DefaultMatchTTL keeps match results just long enough to absorb repeated
// requests for the same event between feed refreshes.
const DefaultMatchTTL = 60 * time.Second

// DefaultMatchCacheSize bounds the number of cached match results.
const DefaultMatchCacheSize = 4096

// MatchCache memoizes match results per event with a short TTL. Keys carry a
// fingerprint of the event's coordinates so an event that moves between
// requests never serves a stale sub-path under the same event ID.
type MatchCache struct {
	lru *expirable.LRU[string, matching.MatchedGeometry]
}

// NewMatchCache creates a MatchCache. Zero size or TTL select the defaults.
func NewMatchCache(size int, ttl time.Duration) *MatchCache {
	if size <= 0 {
		size = DefaultMatchCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultMatchTTL
	}
	return &MatchCache{
		lru: expirable.NewLRU[string, matching.MatchedGeometry](size, nil, ttl),
	}
}

// key fingerprints the event identity and geometry.
func key(ev matching.Event) string {
	var buf [32]byte
	binary.LittleEndian.PutUint64(buf[0:], math.Float64bits(ev.Start.Lon))
	binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(ev.Start.Lat))
	binary.LittleEndian.PutUint64(buf[16:], math.Float64bits(ev.End.Lon))
	binary.LittleEndian.PutUint64(buf[24:], math.Float64bits(ev.End.Lat))

	h := xxhash.New()
	_, _ = h.WriteString(ev.CorridorID)
	_, _ = h.Write(buf[:])
	return fmt.Sprintf("%s:%016x", ev.ID, h.Sum64())
}

// Get returns a cached result for the event, if fresh.
func (c *MatchCache) Get(ev matching.Event) (matching.MatchedGeometry, bool) {
	return c.lru.Get(key(ev))
}

// Put stores a match result for the event.
func (c *MatchCache) Put(ev matching.Event, mg matching.MatchedGeometry) {
	c.lru.Add(key(ev), mg)
}

// Purge drops every cached result. Called when any corridor is rebuilt, since
// cached sub-paths reference the replaced geometry.
func (c *MatchCache) Purge() {
	c.lru.Purge()
}

// Len returns the number of live entries.
func (c *MatchCache) Len() int {
	return c.lru.Len()
}
