package config

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/lgbarn/explosive-chess-go/internal/errors"
)

// ServerConfig holds settings for the HTTP interface.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// MaxBodyBytes caps JSON request bodies.
	MaxBodyBytes int64

	// MaxSessions caps concurrently open games (0 = no limit).
	MaxSessions int
}

// NewServerConfig creates a ServerConfig with default values.
func NewServerConfig() *ServerConfig {
	return &ServerConfig{
		Addr:            ":8080",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		MaxBodyBytes:    1 << 20,
		MaxSessions:     1024,
	}
}

// Validate checks that the server configuration is usable.
func (s *ServerConfig) Validate() error {
	var result *multierror.Error
	if s.Addr == "" {
		result = multierror.Append(result, invalid("empty listen address"))
	}
	if s.MaxBodyBytes <= 0 {
		result = multierror.Append(result, invalid("max body bytes must be positive, got %d", s.MaxBodyBytes))
	}
	if s.MaxSessions < 0 {
		result = multierror.Append(result, invalid("max sessions must not be negative, got %d", s.MaxSessions))
	}
	for name, d := range map[string]time.Duration{
		"read timeout":     s.ReadTimeout,
		"write timeout":    s.WriteTimeout,
		"idle timeout":     s.IdleTimeout,
		"shutdown timeout": s.ShutdownTimeout,
	} {
		if d < 0 {
			result = multierror.Append(result, invalid("%s must not be negative, got %v", name, d))
		}
	}
	return result.ErrorOrNil()
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), errors.ErrInvalidConfig)
}
