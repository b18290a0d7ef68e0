package hashing

import (
	"github.com/lgbarn/explosive-chess-go/internal/chess"
)

// EvalCache memoises static evaluations by position.
type EvalCache struct {
	// table stores entries by Zobrist key
	table map[uint64]cacheEntry
	// maxCapacity bounds the table; 0 means unlimited
	maxCapacity int
	// hits and misses count lookups
	hits   int
	misses int
}

// cacheEntry pairs a score with the weak hash of the position it belongs to.
type cacheEntry struct {
	Score    int
	WeakHash uint32
}

// NewEvalCache creates a cache. maxCapacity of 0 means unlimited capacity.
func NewEvalCache(maxCapacity int) *EvalCache {
	return &EvalCache{
		table:       make(map[uint64]cacheEntry),
		maxCapacity: maxCapacity,
	}
}

// Get returns the cached score of board, if any.
func (c *EvalCache) Get(board chess.Board) (int, bool) {
	entry, ok := c.table[GenerateZobristHash(board)]
	if !ok || entry.WeakHash != WeakHash(board) {
		c.misses++
		return 0, false
	}
	c.hits++
	return entry.Score, true
}

// Put stores the score of board. A full cache is emptied before the insert.
func (c *EvalCache) Put(board chess.Board, score int) {
	if c.IsFull() {
		c.Reset()
	}
	c.table[GenerateZobristHash(board)] = cacheEntry{Score: score, WeakHash: WeakHash(board)}
}

// Len returns the number of cached positions.
func (c *EvalCache) Len() int {
	return len(c.table)
}

// Stats returns the lookup hit and miss counts.
func (c *EvalCache) Stats() (hits, misses int) {
	return c.hits, c.misses
}

// IsFull returns true if the cache has reached its capacity limit.
// Always returns false for unlimited capacity (maxCapacity = 0).
func (c *EvalCache) IsFull() bool {
	return c.maxCapacity > 0 && len(c.table) >= c.maxCapacity
}

// Reset clears the table. Counters are kept.
func (c *EvalCache) Reset() {
	c.table = make(map[uint64]cacheEntry)
}
