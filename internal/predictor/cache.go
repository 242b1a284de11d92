package predictor

import (
	"fmt"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
)

// CacheKey identifies a prediction by its full input and the model that produced it
type CacheKey struct {
	Input        Input
	ModelVersion string
}

// String returns string representation of cache key
func (k CacheKey) String() string {
	in := k.Input
	return fmt.Sprintf("%q|%q|%q|%q|%d|%d|%d|%d|%s",
		in.BattingTeam, in.BowlingTeam, in.Venue, in.Season,
		in.RunsLeft, in.BallsLeft, in.WicketsLeft, in.TotalRuns, k.ModelVersion)
}

// PredictionCache provides in-memory caching for predictions
type PredictionCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	maxSize   int
	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

// NewPredictionCache creates a new prediction cache
func NewPredictionCache(ttl time.Duration, maxSize int) *PredictionCache {
	return &PredictionCache{
		cache:   cache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get retrieves a cached prediction
func (pc *PredictionCache) Get(key CacheKey) (*Result, bool) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if item, found := pc.cache.Get(key.String()); found {
		if result, ok := item.(*Result); ok {
			pc.hitCount++
			return result, true
		}
	}

	pc.missCount++
	return nil, false
}

// Set stores a prediction; it is dropped when the cache is full of live entries
func (pc *PredictionCache) Set(key CacheKey, result *Result) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if pc.cache.ItemCount() >= pc.maxSize {
		// Remove expired items first
		pc.cache.DeleteExpired()
		if pc.cache.ItemCount() >= pc.maxSize {
			return
		}
	}

	pc.cache.Set(key.String(), result, pc.ttl)
}

// Clear flushes the entire cache
func (pc *PredictionCache) Clear() {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	pc.cache.Flush()
	pc.hitCount = 0
	pc.missCount = 0
}

// Stats returns cache statistics
func (pc *PredictionCache) Stats() (hits, misses uint64, ratio float64) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	hits = pc.hitCount
	misses = pc.missCount
	total := hits + misses
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of items in cache
func (pc *PredictionCache) ItemCount() int {
	return pc.cache.ItemCount()
}
