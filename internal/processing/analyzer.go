// Package processing provides game analysis and validation: it replays a
// recorded history from its starting position and summarises what happened.
package processing

import (
	"github.com/lgbarn/explosive-chess-go/internal/chess"
	"github.com/lgbarn/explosive-chess-go/internal/engine"
	"github.com/lgbarn/explosive-chess-go/internal/errors"
	"github.com/lgbarn/explosive-chess-go/internal/game"
	"github.com/lgbarn/explosive-chess-go/internal/hashing"
)

// GameAnalysis holds analysis results from replaying a game.
type GameAnalysis struct {
	FinalBoard        chess.Board
	Plies             int
	Captures          int
	Lost              [2]int // Pieces removed per colour, indexed by Colour.Index()
	BiggestBlast      int    // Most pieces removed by a single capture
	BiggestBlastPly   int
	KingDestroyed     bool
	HasFiftyMoveRule  bool
	HasRepetition     bool
	HasUnderpromotion bool
	Positions         []uint64 // Zobrist hashes, starting position first
}

// FiftyMoveTriggered returns true if the halfmove clock reached 100.
func (ga *GameAnalysis) FiftyMoveTriggered() bool {
	return ga.HasFiftyMoveRule
}

// RepetitionDetected returns true if a position occurred three times.
func (ga *GameAnalysis) RepetitionDetected() bool {
	return ga.HasRepetition
}

// UnderpromotionFound returns true if any pawn promoted to non-queen.
func (ga *GameAnalysis) UnderpromotionFound() bool {
	return ga.HasUnderpromotion
}

// AnalyzeGame replays history from start and analyses it. Each record is
// checked against the replay; a record that disagrees is reported as an
// error naming its ply.
func AnalyzeGame(start chess.Board, history []game.MoveRecord) (*GameAnalysis, error) {
	board := start
	analysis := &GameAnalysis{}

	posHash := hashing.GenerateZobristHash(board)
	analysis.Positions = append(analysis.Positions, posHash)
	positionCount := map[uint64]int{posHash: 1}

	for i, r := range history {
		ply := i + 1
		outcome, err := engine.MakeMove(board, r.Move)
		if err != nil {
			return analysis, replayError(err, ply, r.Move)
		}
		board = outcome.After

		posHash = hashing.GenerateZobristHash(board)
		if posHash != r.Hash {
			return analysis, replayError(errors.Wrap(errors.ErrInvalidPosition, "position differs from record"), ply, r.Move)
		}
		analysis.Positions = append(analysis.Positions, posHash)
		positionCount[posHash]++
		analysis.Plies = ply

		if blast := outcome.Explosion; blast != nil {
			analysis.Captures++
			removed := len(blast.Destroyed)
			if !blast.Captured.IsEmpty() {
				analysis.Lost[blast.Captured.Colour.Index()]++
				removed++
			}
			for _, p := range blast.Destroyed {
				analysis.Lost[p.Colour.Index()]++
			}
			if removed > analysis.BiggestBlast {
				analysis.BiggestBlast = removed
				analysis.BiggestBlastPly = ply
			}
			if blast.KingDestroyed[0] || blast.KingDestroyed[1] {
				analysis.KingDestroyed = true
			}
		}

		// 50-move rule (100 half-moves); reported, never enforced
		if board.HalfmoveClock >= 100 {
			analysis.HasFiftyMoveRule = true
		}

		if r.Move.Promotion != chess.NoKind && r.Move.Promotion != chess.Queen {
			analysis.HasUnderpromotion = true
		}

		// 3-fold repetition
		if positionCount[posHash] >= 3 {
			analysis.HasRepetition = true
		}
	}

	analysis.FinalBoard = board
	return analysis, nil
}

// replayError stamps ply onto err as a MoveError.
func replayError(err error, ply int, m chess.Move) error {
	var me *errors.MoveError
	if errors.As(err, &me) {
		stamped := *me
		stamped.Ply = ply
		return &stamped
	}
	return &errors.MoveError{Err: err, From: m.From.String(), To: m.To.String(), Ply: ply}
}
