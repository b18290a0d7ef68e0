package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/lgbarn/explosive-chess-go/internal/ai"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "EXCHESS_"

// ApplyEnv overrides c with the EXCHESS_* variables that getenv reports
// as set. Unparsable values are collected and returned together; the
// remaining variables are still applied.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	var result *multierror.Error
	fail := func(key string, err error) {
		result = multierror.Append(result, invalid("%s%s: %v", EnvPrefix, key, err))
	}
	lookup := func(key string) (string, bool) {
		v := strings.TrimSpace(getenv(EnvPrefix + key))
		return v, v != ""
	}

	if v, ok := lookup("ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := lookup("MAX_SESSIONS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			fail("MAX_SESSIONS", err)
		} else {
			c.Server.MaxSessions = n
		}
	}
	if v, ok := lookup("DIFFICULTY"); ok {
		d, err := ai.ParseDifficulty(v)
		if err != nil {
			fail("DIFFICULTY", err)
		} else {
			c.AI.Difficulty = d
		}
	}
	if v, ok := lookup("WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			fail("WORKERS", err)
		} else {
			c.AI.Workers = n
		}
	}
	if v, ok := lookup("SEARCH_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			fail("SEARCH_TIMEOUT", err)
		} else {
			c.AI.SearchTimeout = d
		}
	}
	if v, ok := lookup("FALLBACK"); ok {
		b, ok := ParseBool(v)
		if !ok {
			fail("FALLBACK", strconv.ErrSyntax)
		} else {
			c.AI.Fallback = b
		}
	}
	if v, ok := lookup("VERBOSITY"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			fail("VERBOSITY", err)
		} else {
			c.Verbosity = n
		}
	}
	return result.ErrorOrNil()
}

// ParseBool accepts the usual spellings of yes and no.
func ParseBool(s string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "t", "yes", "y", "on":
		return true, true
	case "0", "false", "f", "no", "n", "off":
		return false, true
	}
	return false, false
}
