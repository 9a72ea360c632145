// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package search

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/poiesic/coursegraph/core"
)

const (
	defaultCacheTTL     = 5 * time.Minute
	defaultCacheMaxSize = 100
)

// cacheEntry holds one cached result set with its storage time.
type cacheEntry struct {
	results  []*core.SearchResult
	storedAt time.Time
}

// ResultCache is a TTL and size bounded cache of ranked search results.
// Keys are derived from the query text and all ranking-relevant parameters,
// so two queries that could rank differently never share an entry.
type ResultCache struct {
	mu      sync.Mutex
	entries map[uint64]*cacheEntry
	ttl     time.Duration
	maxSize int

	// nowFunc is replaceable for TTL tests.
	nowFunc func() time.Time
}

// CacheStats summarizes the cache contents at a point in time.
type CacheStats struct {
	Total     int
	Valid     int
	Expired   int
	TTL       time.Duration
	MaxSize   int
	OldestAge time.Duration
	NewestAge time.Duration
}

// NewResultCache creates a cache with the given TTL and size bound.
// Non-positive values use the defaults of 5 minutes and 100 entries.
func NewResultCache(ttl time.Duration, maxSize int) *ResultCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if maxSize <= 0 {
		maxSize = defaultCacheMaxSize
	}
	return &ResultCache{
		entries: make(map[uint64]*cacheEntry),
		ttl:     ttl,
		maxSize: maxSize,
		nowFunc: time.Now,
	}
}

// cacheKey derives the cache key for a query and its parameters.
// Source types are sorted so filter order doesn't fragment the cache, and the
// threshold is hashed by its exact bits so no two distinct thresholds ever
// share an entry.
func cacheKey(query string, params Params) uint64 {
	types := make([]int, len(params.SourceTypes))
	for i, st := range params.SourceTypes {
		types[i] = int(st)
	}
	slices.Sort(types)

	var sb strings.Builder
	sb.WriteString(query)
	fmt.Fprintf(&sb, "|%d|%08x|", params.Limit, math.Float32bits(params.Threshold))
	for _, t := range types {
		fmt.Fprintf(&sb, "%d,", t)
	}
	return xxhash.Sum64String(sb.String())
}

// Get returns the cached results for key if present and not expired.
// Expired entries are removed on access.
func (c *ResultCache) Get(key uint64) ([]*core.SearchResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.nowFunc().Sub(entry.storedAt) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return entry.results, true
}

// Put stores results under key. When the cache exceeds its size bound the
// oldest entries are evicted in one batch, keeping the newest half.
func (c *ResultCache) Put(key uint64, results []*core.SearchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &cacheEntry{
		results:  results,
		storedAt: c.nowFunc(),
	}

	if len(c.entries) > c.maxSize {
		c.evictOldest()
	}
}

// evictOldest removes entries until only the newest maxSize/2 remain.
// Must be called with the lock held.
func (c *ResultCache) evictOldest() {
	type keyed struct {
		key      uint64
		storedAt time.Time
	}
	all := make([]keyed, 0, len(c.entries))
	for key, entry := range c.entries {
		all = append(all, keyed{key: key, storedAt: entry.storedAt})
	}
	slices.SortFunc(all, func(a, b keyed) int {
		return a.storedAt.Compare(b.storedAt)
	})

	keep := c.maxSize / 2
	for _, k := range all[:len(all)-keep] {
		delete(c.entries, k.key)
	}
}

// Clear removes all entries and returns how many were removed.
func (c *ResultCache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := len(c.entries)
	c.entries = make(map[uint64]*cacheEntry)
	return removed
}

// Stats reports the current cache contents without modifying them.
func (c *ResultCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.nowFunc()
	stats := CacheStats{
		Total:   len(c.entries),
		TTL:     c.ttl,
		MaxSize: c.maxSize,
	}

	first := true
	var oldest, newest time.Duration
	for _, entry := range c.entries {
		age := now.Sub(entry.storedAt)
		if age >= c.ttl {
			stats.Expired++
		} else {
			stats.Valid++
		}
		if first {
			oldest, newest = age, age
			first = false
			continue
		}
		if age > oldest {
			oldest = age
		}
		if age < newest {
			newest = age
		}
	}
	stats.OldestAge = oldest
	stats.NewestAge = newest
	return stats
}
