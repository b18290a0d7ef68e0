// flags.go - Command-line flag definitions and configuration
package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/lgbarn/explosive-chess-go/internal/ai"
	"github.com/lgbarn/explosive-chess-go/internal/config"
)

var (
	// Server options
	addr        = flag.String("addr", ":8080", "HTTP listen address (serve)")
	maxSessions = flag.Int("max-sessions", 1024, "Maximum open games (0 = unlimited)")
	maxBody     = flag.Int64("max-body", 1<<20, "Maximum request body size in bytes")

	// AI options
	difficulty    = flag.String("difficulty", "medium", "AI difficulty: easy, medium, hard")
	depth         = flag.Int("depth", 0, "Search depth 1-3, overrides -difficulty (analyse)")
	workers       = flag.Int("workers", 2, "Number of search workers")
	queueSize     = flag.Int("queue", 16, "Pending search queue size")
	cacheSize     = flag.Int("cache", 1<<18, "Evaluation cache entries (0 = unlimited)")
	searchTimeout = flag.Duration("timeout", 10*time.Second, "Search deadline (0 = none)")
	fallback      = flag.Bool("fallback", true, "Play a random move when a search misses its deadline")
	seed          = flag.Int64("seed", 1, "Seed for the fallback strategy")
	traceLimit    = flag.Int("trace", 0, "Record up to N search tree nodes (0 = off)")

	// Analyse options
	fenInput   = flag.String("fen", "", "Starting position (analyse; default: initial position)")
	moveList   = flag.String("moves", "", "Comma-separated moves to play first, e.g. e2e4,d7d5 (analyse)")
	dotFile    = flag.String("dot", "", "Write the search tree as Graphviz DOT to this file (analyse)")
	jsonOutput = flag.Bool("J", false, "Output in JSON format (analyse)")
	lineLength = flag.Int("w", 80, "Maximum line length")

	// Logging
	logFile   = flag.String("l", "", "Write diagnostics to log file")
	appendLog = flag.String("L", "", "Append diagnostics to log file")
	verbosity = flag.Int("v", config.Lifecycle, "Verbosity: 0 quiet, 1 lifecycle, 2 moves")
	quiet     = flag.Bool("s", false, "Silent mode (same as -v 0)")

	// Other options
	help    = flag.Bool("h", false, "Show help")
	version = flag.Bool("version", false, "Show version")
)

// applyFlags copies explicitly set flags onto cfg. Flags left at their
// defaults do not override values taken from the environment.
func applyFlags(cfg *config.Config) error {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	applyServerFlags(cfg, set)
	applyLogFlags(cfg, set)
	return applyAIFlags(cfg, set)
}

// applyServerFlags configures the HTTP server.
func applyServerFlags(cfg *config.Config, set map[string]bool) {
	b := config.Edit(cfg)
	if set["addr"] {
		b.WithAddr(*addr)
	}
	if set["max-sessions"] {
		b.WithMaxSessions(*maxSessions)
	}
	if set["max-body"] {
		b.WithMaxBodyBytes(*maxBody)
	}
}

// applyAIFlags configures the search.
func applyAIFlags(cfg *config.Config, set map[string]bool) error {
	b := config.Edit(cfg)
	if set["difficulty"] {
		d, err := ai.ParseDifficulty(*difficulty)
		if err != nil {
			return fmt.Errorf("-difficulty: %w", err)
		}
		b.WithDifficulty(d)
	}
	if set["workers"] || set["queue"] {
		n, queue := cfg.AI.Workers, cfg.AI.QueueSize
		if set["workers"] {
			n = *workers
		}
		if set["queue"] {
			queue = *queueSize
		}
		b.WithWorkers(n, queue)
	}
	if set["cache"] {
		b.WithCacheSize(*cacheSize)
	}
	if set["timeout"] {
		b.WithSearchTimeout(*searchTimeout)
	}
	if set["fallback"] || set["seed"] {
		enabled, s := cfg.AI.Fallback, cfg.AI.Seed
		if set["fallback"] {
			enabled = *fallback
		}
		if set["seed"] {
			s = *seed
		}
		b.WithFallback(enabled, s)
	}
	if set["trace"] {
		b.WithTraceLimit(*traceLimit)
	}
	return nil
}

// applyLogFlags sets the verbosity.
func applyLogFlags(cfg *config.Config, set map[string]bool) {
	b := config.Edit(cfg)
	if set["v"] {
		b.WithVerbosity(*verbosity)
	}
	if *quiet {
		b.WithVerbosity(config.Quiet)
	}
}
