package ai

import (
	"context"

	rng "github.com/leesper/go_rng"

	"github.com/lgbarn/explosive-chess-go/internal/chess"
	"github.com/lgbarn/explosive-chess-go/internal/engine"
	"github.com/lgbarn/explosive-chess-go/internal/errors"
)

// Random is the degraded-mode strategy: a uniform pick among the legal
// moves reported by the engine. Its results are flagged Degraded.
type Random struct {
	gen *rng.UniformGenerator // Safe for concurrent use
}

// NewRandom creates a Random strategy with a fixed seed.
func NewRandom(seed int64) *Random {
	return &Random{gen: rng.NewUniformGenerator(seed)}
}

// Name implements Strategy.
func (r *Random) Name() string {
	return "random"
}

// BestMove implements Strategy. depth is ignored.
func (r *Random) BestMove(ctx context.Context, board chess.Board, depth int) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	moves := engine.AllLegalMoves(board)
	if len(moves) == 0 {
		return Result{}, errors.Wrap(errors.ErrNoLegalMoves, "random move")
	}

	m := moves[r.gen.Int64n(int64(len(moves)))]

	next, blast := engine.Apply(board, m)
	score := 0
	if status := engine.Evaluate(next); status.State.IsTerminal() {
		score = terminalScore(status, 1)
	} else {
		score = StaticEval(next)
	}

	return Result{
		Move:           m,
		Score:          score,
		Nodes:          1,
		BlastGain:      blastGain(blast, board.ToMove),
		WinProbability: WinProbability(score),
		Strategy:       r.Name(),
		Degraded:       true,
	}, nil
}
