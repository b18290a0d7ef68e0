// Package config provides configuration for the explosive chess server and
// its AI.
package config

import (
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
)

// Verbosity levels for LogFile.
const (
	Quiet     = 0 // Nothing
	Lifecycle = 1 // Startup, shutdown, sessions created and dropped
	Moves     = 2 // Running commentary of every move and search
)

// Config holds all program configuration.
type Config struct {
	// Server holds HTTP listener settings.
	Server *ServerConfig

	// AI holds search and worker pool settings.
	AI *AIConfig

	// Verbosity selects how much is written to LogFile.
	Verbosity int

	// LogFile receives diagnostic output.
	LogFile io.Writer
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Server:    NewServerConfig(),
		AI:        NewAIConfig(),
		Verbosity: Lifecycle,
		LogFile:   os.Stderr,
	}
}

// SetLogOutput sets the diagnostic writer.
func (c *Config) SetLogOutput(w io.Writer) {
	c.LogFile = w
}

// Validate checks every section and reports all problems together.
func (c *Config) Validate() error {
	var result *multierror.Error
	if err := c.Server.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.AI.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if c.Verbosity < Quiet || c.Verbosity > Moves {
		result = multierror.Append(result, invalid("verbosity %d outside [%d, %d]", c.Verbosity, Quiet, Moves))
	}
	return result.ErrorOrNil()
}
