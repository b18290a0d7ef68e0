package hashing

import (
	"sync"

	"github.com/lgbarn/explosive-chess-go/internal/chess"
)

// ThreadSafeEvalCache wraps EvalCache with mutex protection so searches
// running on several workers can share one cache.
type ThreadSafeEvalCache struct {
	cache *EvalCache
	mu    sync.Mutex
}

// NewThreadSafeEvalCache creates a new thread-safe cache.
// maxCapacity of 0 means unlimited capacity.
func NewThreadSafeEvalCache(maxCapacity int) *ThreadSafeEvalCache {
	return &ThreadSafeEvalCache{
		cache: NewEvalCache(maxCapacity),
	}
}

// Get returns the cached score of board. It takes the write lock because
// lookups update the hit counters.
func (c *ThreadSafeEvalCache) Get(board chess.Board) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Get(board)
}

// Put stores the score of board.
func (c *ThreadSafeEvalCache) Put(board chess.Board, score int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Put(board, score)
}

// Len returns the number of cached positions.
func (c *ThreadSafeEvalCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Len()
}

// Stats returns the lookup hit and miss counts.
func (c *ThreadSafeEvalCache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Stats()
}
