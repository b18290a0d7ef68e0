package config

import (
	"time"

	"github.com/lgbarn/explosive-chess-go/internal/ai"
)

// ConfigBuilder provides a fluent API for building Config instances.
type ConfigBuilder struct {
	cfg *Config
}

// NewConfigBuilder creates a new ConfigBuilder with default values.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		cfg: NewConfig(),
	}
}

// Edit returns a builder that modifies cfg in place, for layering
// overrides onto a Config that already holds defaults and environment values.
func Edit(cfg *Config) *ConfigBuilder {
	return &ConfigBuilder{cfg: cfg}
}

// Build returns the built Config.
func (b *ConfigBuilder) Build() *Config {
	return b.cfg
}

// WithAddr sets the listen address.
func (b *ConfigBuilder) WithAddr(addr string) *ConfigBuilder {
	b.cfg.Server.Addr = addr
	return b
}

// WithMaxBodyBytes caps request bodies.
func (b *ConfigBuilder) WithMaxBodyBytes(n int64) *ConfigBuilder {
	b.cfg.Server.MaxBodyBytes = n
	return b
}

// WithMaxSessions caps open games.
func (b *ConfigBuilder) WithMaxSessions(n int) *ConfigBuilder {
	b.cfg.Server.MaxSessions = n
	return b
}

// WithDifficulty sets the default difficulty.
func (b *ConfigBuilder) WithDifficulty(d ai.Difficulty) *ConfigBuilder {
	b.cfg.AI.Difficulty = d
	return b
}

// WithWorkers sets the search pool size and queue length.
func (b *ConfigBuilder) WithWorkers(workers, queue int) *ConfigBuilder {
	b.cfg.AI.Workers = workers
	b.cfg.AI.QueueSize = queue
	return b
}

// WithCacheSize bounds the evaluation cache.
func (b *ConfigBuilder) WithCacheSize(n int) *ConfigBuilder {
	b.cfg.AI.CacheSize = n
	return b
}

// WithSearchTimeout bounds every search.
func (b *ConfigBuilder) WithSearchTimeout(d time.Duration) *ConfigBuilder {
	b.cfg.AI.SearchTimeout = d
	return b
}

// WithFallback enables the random fallback strategy with seed.
func (b *ConfigBuilder) WithFallback(enabled bool, seed int64) *ConfigBuilder {
	b.cfg.AI.Fallback = enabled
	b.cfg.AI.Seed = seed
	return b
}

// WithTraceLimit enables search tracing.
func (b *ConfigBuilder) WithTraceLimit(n int) *ConfigBuilder {
	b.cfg.AI.TraceLimit = n
	return b
}

// WithVerbosity sets the verbosity level.
func (b *ConfigBuilder) WithVerbosity(level int) *ConfigBuilder {
	b.cfg.Verbosity = level
	return b
}
