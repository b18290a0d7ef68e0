// explosive-chess serves explosive chess games over HTTP and analyses
// positions from the command line.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/lgbarn/explosive-chess-go/internal/config"
	"github.com/lgbarn/explosive-chess-go/internal/httpx"
)

const programVersion = "0.1.0"

func main() {
	flag.Usage = usage
	flag.Parse()

	if *help {
		usage()
		os.Exit(0)
	}

	if *version {
		fmt.Printf("explosive-chess version %s\n", programVersion)
		os.Exit(0)
	}

	cfg, err := loadConfig(os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	setupLogFile(cfg)
	logger := newLogger(cfg)

	mode := "serve"
	if flag.NArg() > 0 {
		mode = flag.Arg(0)
	}

	switch mode {
	case "serve":
		err = serve(cfg, logger)
	case "analyse", "analyze":
		err = analyse(context.Background(), cfg, analyseOptions{
			FEN:        *fenInput,
			Moves:      *moveList,
			Depth:      *depth,
			DOTFile:    *dotFile,
			JSON:       *jsonOutput,
			LineLength: *lineLength,
		}, os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", mode)
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig builds the configuration from defaults, then the environment,
// then explicitly set flags, and validates the result.
func loadConfig(getenv func(string) string) (*config.Config, error) {
	cfg := config.NewConfig()
	if err := cfg.ApplyEnv(getenv); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if err := applyFlags(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogFile configures the log file based on command-line flags.
func setupLogFile(cfg *config.Config) {
	if *logFile != "" {
		file, err := os.Create(*logFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating log file %s: %v\n", *logFile, err)
			os.Exit(1)
		}
		cfg.SetLogOutput(file)
	}

	if *appendLog != "" {
		file, err := os.OpenFile(*appendLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644) //nolint:gosec // G302: 0644 is appropriate for user-created log files
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log file %s: %v\n", *appendLog, err)
			os.Exit(1)
		}
		cfg.SetLogOutput(file)
	}
}

// newLogger returns the diagnostic logger, or nil when nothing is to be
// logged.
func newLogger(cfg *config.Config) *log.Logger {
	if cfg.Verbosity == config.Quiet || cfg.LogFile == nil {
		return nil
	}
	return log.New(cfg.LogFile, "", log.LstdFlags)
}

// serve runs the HTTP API until interrupted.
func serve(cfg *config.Config, logger *log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := httpx.NewServer(cfg, logger)
	errc := make(chan error, 1)
	go func() { errc <- srv.Listen(cfg.Server.Addr) }()

	var listenErr error
	select {
	case listenErr = <-errc:
	case <-ctx.Done():
		if logger != nil {
			logger.Printf("shutting down")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Close(shutdownCtx); err != nil && listenErr == nil {
		return err
	}
	return listenErr
}

func usage() {
	writeUsage(os.Stderr)
}

func writeUsage(w io.Writer) {
	fmt.Fprintf(w, "Usage: explosive-chess [options] [serve|analyse]\n\n")
	fmt.Fprintf(w, "Explosive chess: every capture detonates the capturing square and its\n")
	fmt.Fprintf(w, "non-pawn neighbours. Destroying the enemy king wins.\n\n")
	fmt.Fprintf(w, "Commands:\n")
	fmt.Fprintf(w, "  serve    Serve the JSON API (default)\n")
	fmt.Fprintf(w, "  analyse  Print a position and the AI's best move\n\n")
	fmt.Fprintf(w, "Options:\n")
	flag.CommandLine.SetOutput(w)
	flag.PrintDefaults()
	flag.CommandLine.SetOutput(nil)
	fmt.Fprintf(w, "\nEnvironment (overridden by flags):\n")
	for _, name := range []string{"ADDR", "MAX_SESSIONS", "DIFFICULTY", "WORKERS", "SEARCH_TIMEOUT", "FALLBACK", "VERBOSITY"} {
		fmt.Fprintf(w, "  %s%s\n", config.EnvPrefix, name)
	}
}
