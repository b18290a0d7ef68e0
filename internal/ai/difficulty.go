// Package ai chooses moves for the explosive chess engine: a depth-bounded
// minimax search with alpha-beta pruning and a degraded random strategy.
package ai

import (
	"fmt"
	"strings"

	"golang.org/x/exp/constraints"

	"github.com/lgbarn/explosive-chess-go/internal/errors"
)

// Difficulty selects the search depth.
type Difficulty int

const (
	Easy Difficulty = iota + 1
	Medium
	Hard
)

// Search depth bounds.
const (
	MinDepth = 1
	MaxDepth = 3
)

// Depth returns the search depth of d.
func (d Difficulty) Depth() int {
	return clamp(int(d), MinDepth, MaxDepth)
}

// String returns the wire name of d.
func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	default:
		return "unknown"
	}
}

// ParseDifficulty parses "easy", "medium" or "hard".
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return Easy, nil
	case "medium":
		return Medium, nil
	case "hard":
		return Hard, nil
	}
	return 0, fmt.Errorf("difficulty %q: %w", s, errors.ErrInvalidConfig)
}

// DifficultyForDepth maps a depth back to its difficulty. Depths outside
// the supported range are clamped.
func DifficultyForDepth(depth int) Difficulty {
	return Difficulty(ClampDepth(depth))
}

// ClampDepth forces depth into [MinDepth, MaxDepth].
func ClampDepth(depth int) int {
	return clamp(depth, MinDepth, MaxDepth)
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
