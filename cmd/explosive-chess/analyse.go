// analyse.go - One-shot position analysis
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lgbarn/explosive-chess-go/internal/ai"
	"github.com/lgbarn/explosive-chess-go/internal/config"
	"github.com/lgbarn/explosive-chess-go/internal/engine"
	"github.com/lgbarn/explosive-chess-go/internal/errors"
	"github.com/lgbarn/explosive-chess-go/internal/game"
	"github.com/lgbarn/explosive-chess-go/internal/hashing"
	"github.com/lgbarn/explosive-chess-go/internal/output"
	"github.com/lgbarn/explosive-chess-go/internal/processing"
)

// defaultDOTLimit bounds the recorded tree when -dot is given without -trace.
const defaultDOTLimit = 2000

type analyseOptions struct {
	FEN        string
	Moves      string
	Depth      int
	DOTFile    string
	JSON       bool
	LineLength int
}

// analysis is the JSON form of an analyse run.
type analysis struct {
	Game   output.JSONSnapshot  `json:"game"`
	Stats  *output.JSONAnalysis `json:"analysis,omitempty"`
	Search *output.JSONSearch   `json:"search,omitempty"`
}

// analyse sets up the position, plays any requested moves, then searches
// for the best reply and reports it on w.
func analyse(ctx context.Context, cfg *config.Config, opts analyseOptions, w io.Writer) error {
	sess, err := analysisSession(opts.FEN)
	if err != nil {
		return err
	}
	if err := playMoves(sess, opts.Moves); err != nil {
		return err
	}
	snap := sess.Snapshot()

	var stats *processing.GameAnalysis
	if len(snap.History) > 0 {
		if stats, err = processing.AnalyzeGame(snap.Start, snap.History); err != nil {
			return err
		}
	}

	var result *ai.Result
	if snap.State == game.AwaitingMove {
		r, err := search(ctx, cfg, snap, opts)
		if err != nil {
			return err
		}
		result = &r
	}

	if opts.DOTFile != "" && result != nil && result.Trace != nil {
		if err := writeDOT(opts.DOTFile, result.Trace); err != nil {
			return err
		}
	}

	if opts.JSON {
		a := analysis{Game: output.SnapshotToJSON(snap)}
		if stats != nil {
			js := output.AnalysisToJSON(stats)
			a.Stats = &js
		}
		if result != nil {
			js := output.SearchToJSON(*result)
			js.Trace = ""
			a.Search = &js
		}
		return output.WriteJSON(w, a, true)
	}

	writer := output.NewTextWriter(w, opts.LineLength)
	if err := writer.WriteSnapshot(snap); err != nil {
		return err
	}
	if stats != nil {
		output.WriteAnalysis(w, stats)
	}
	if result != nil {
		writeSearch(w, *result)
	}
	return writer.Close()
}

func analysisSession(fen string) (*game.Session, error) {
	if strings.TrimSpace(fen) == "" {
		return game.NewSession("analyse", nil), nil
	}
	board, err := engine.NewBoardFromFEN(fen)
	if err != nil {
		return nil, err
	}
	return game.NewSessionFromBoard("analyse", nil, board)
}

// playMoves plays a comma or space separated list of coordinate moves such
// as "e2e4,d7d5,b2b1q".
func playMoves(sess *game.Session, list string) error {
	fields := strings.FieldsFunc(list, func(r rune) bool { return r == ',' || r == ' ' })
	for _, tok := range fields {
		if len(tok) < 4 || len(tok) > 5 {
			return fmt.Errorf("move %q: %w", tok, errors.ErrInvalidSquare)
		}
		if _, err := sess.MakeMove(tok[0:2], tok[2:4], tok[4:]); err != nil {
			return err
		}
	}
	return nil
}

// search runs the configured search on the snapshot position. A search that
// misses its deadline falls back to a random move when that is enabled.
func search(ctx context.Context, cfg *config.Config, snap game.Snapshot, opts analyseOptions) (ai.Result, error) {
	limit := cfg.AI.TraceLimit
	if opts.DOTFile != "" && limit == 0 {
		limit = defaultDOTLimit
	}
	searcher := ai.NewSearcher(
		ai.WithCache(hashing.NewThreadSafeEvalCache(cfg.AI.CacheSize)),
		ai.WithTrace(limit),
	)

	searchCtx, cancel := ctx, context.CancelFunc(func() {})
	if cfg.AI.SearchTimeout > 0 {
		searchCtx, cancel = context.WithTimeout(ctx, cfg.AI.SearchTimeout)
	}
	defer cancel()

	depth := opts.Depth
	if depth <= 0 {
		depth = cfg.AI.Difficulty.Depth()
	}
	result, err := searcher.BestMove(searchCtx, snap.Board, depth)
	if errors.Is(err, context.DeadlineExceeded) && cfg.AI.Fallback {
		return ai.NewRandom(cfg.AI.Seed).BestMove(ctx, snap.Board, depth)
	}
	return result, err
}

func writeSearch(w io.Writer, r ai.Result) {
	fmt.Fprintf(w, "Best move: %s (%s, depth %d, %d nodes)\n", output.FormatMove(r.Move), r.Strategy, r.Depth, r.Nodes)
	fmt.Fprintf(w, "Score: %d, blast gain %d, white wins with probability %.2f\n", r.Score, r.BlastGain, r.WinProbability)
	if r.Degraded {
		fmt.Fprintln(w, "Search missed its deadline; move chosen at random")
	}
}

func writeDOT(path string, trace *ai.Trace) error {
	dot, err := trace.DOT()
	if err != nil {
		return errors.Wrap(err, "render search tree")
	}
	if err := os.WriteFile(path, []byte(dot), 0644); err != nil { //nolint:gosec // G306: user-requested output file
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}
