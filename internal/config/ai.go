package config

import (
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/lgbarn/explosive-chess-go/internal/ai"
)

// AIConfig holds settings for the move search.
type AIConfig struct {
	// Difficulty is used when a request names no depth.
	Difficulty ai.Difficulty

	// Workers is the number of concurrent searches.
	Workers int

	// QueueSize is how many searches may wait for a worker.
	QueueSize int

	// CacheSize bounds the shared evaluation cache (0 = unbounded).
	CacheSize int

	// SearchTimeout bounds every search (0 = no bound).
	SearchTimeout time.Duration

	// Fallback plays a random legal move when a search times out.
	Fallback bool

	// Seed seeds the fallback strategy.
	Seed int64

	// TraceLimit records up to this many search nodes per search (0 = off).
	TraceLimit int
}

// NewAIConfig creates an AIConfig with default values.
func NewAIConfig() *AIConfig {
	return &AIConfig{
		Difficulty:    ai.Medium,
		Workers:       2,
		QueueSize:     16,
		CacheSize:     1 << 18,
		SearchTimeout: 10 * time.Second,
		Fallback:      true,
		Seed:          1,
	}
}

// Validate checks that the AI configuration is usable.
func (a *AIConfig) Validate() error {
	var result *multierror.Error
	if a.Difficulty < ai.Easy || a.Difficulty > ai.Hard {
		result = multierror.Append(result, invalid("unknown difficulty %d", int(a.Difficulty)))
	}
	if a.Workers < 1 {
		result = multierror.Append(result, invalid("workers must be at least 1, got %d", a.Workers))
	}
	if a.QueueSize < 1 {
		result = multierror.Append(result, invalid("queue size must be at least 1, got %d", a.QueueSize))
	}
	if a.CacheSize < 0 {
		result = multierror.Append(result, invalid("cache size must not be negative, got %d", a.CacheSize))
	}
	if a.SearchTimeout < 0 {
		result = multierror.Append(result, invalid("search timeout must not be negative, got %v", a.SearchTimeout))
	}
	if a.TraceLimit < 0 {
		result = multierror.Append(result, invalid("trace limit must not be negative, got %d", a.TraceLimit))
	}
	return result.ErrorOrNil()
}
